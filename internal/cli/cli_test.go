package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, exit, err := Parse([]string{"blink.hcl"}, &bytes.Buffer{})

	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, "blink.hcl", cfg.ProgramPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, time.Millisecond, cfg.TickInterval)
	assert.False(t, cfg.Debug.Enabled)
}

func TestParse_Flags(t *testing.T) {
	cfg, _, err := Parse([]string{
		"--program", "prog/",
		"--log-level", "TRACE",
		"--log-format", "json",
		"--tick-interval", "20ms",
		"--max-ticks", "5",
		"--http-port", "9090",
		"--debug-socket", "http://localhost:3000",
		"--debug-socket-event", "tweak",
		"--debug-queue", "8",
	}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "prog/", cfg.ProgramPath)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 20*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, uint64(5), cfg.MaxTicks)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:3000", cfg.Debug.SocketURL)
	assert.Equal(t, "tweak", cfg.Debug.SocketEvent)
	assert.Equal(t, 8, cfg.Debug.QueueSize)
	assert.True(t, cfg.Debug.Enabled, "a debug source enables the channel")
}

func TestParse_FlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xodrun.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
program: from-file.hcl
log_level: debug
max_ticks: 100
debug:
  enabled: true
  serial: /dev/ttyUSB0
`), 0o644))

	cfg, _, err := Parse([]string{"-c", path, "--max-ticks", "7"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "from-file.hcl", cfg.ProgramPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, uint64(7), cfg.MaxTicks)
	assert.True(t, cfg.Debug.Enabled)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Debug.Serial)
}

func TestParse_NoProgramPrintsUsage(t *testing.T) {
	out := &bytes.Buffer{}

	cfg, exit, err := Parse(nil, out)

	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Help(t *testing.T) {
	out := &bytes.Buffer{}

	_, exit, err := Parse([]string{"--help"}, out)

	require.NoError(t, err)
	assert.True(t, exit)
	assert.Contains(t, out.String(), "PROGRAM_PATH")
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"--nope"}, wantMsg: "unknown flag: --nope"},
		{name: "bad log level", args: []string{"--log-level", "loud", "x.hcl"}, wantMsg: "LogLevel"},
		{name: "bad log format", args: []string{"--log-format", "xml", "x.hcl"}, wantMsg: "LogFormat"},
		{name: "too many args", args: []string{"a.hcl", "b.hcl"}, wantMsg: "accepts at most 1 arg"},
		{name: "missing config file", args: []string{"-c", "/no/such/file.yaml", "x.hcl"}, wantMsg: "read config file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, exit, err := Parse(tc.args, &bytes.Buffer{})

			require.Error(t, err)
			assert.False(t, exit)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
