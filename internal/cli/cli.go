package cli

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vk/xodrun/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

type flags struct {
	program      string
	configPath   string
	httpPort     int
	logFormat    string
	logLevel     string
	tickInterval time.Duration
	maxTicks     uint64
	debug        bool
	serial       string
	socketURL    string
	socketNS     string
	socketEvent  string
	insecure     bool
	queueSize    int
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Flags override the config file, which overrides the defaults.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	def := app.DefaultConfig()
	var f flags
	var cfg *app.Config

	cmd := &cobra.Command{
		Use:   "xodrun [options] [PROGRAM_PATH]",
		Short: "Run an XOD dataflow program",
		Long: `xodrun runs an XOD-style dataflow program described in HCL.

PROGRAM_PATH is a single .hcl file or a directory containing .hcl files.
Debug tweaks ("+XOD:<id>:<value>") are read from a serial device, stdin or a
socket.io server when the debug channel is enabled.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolve(cmd, args, def, &f)
			if err != nil {
				return err
			}
			cfg = c
			return nil
		},
	}
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(output)
	cmd.SetErr(output)

	fs := cmd.Flags()
	fs.StringVarP(&f.program, "program", "p", "", "Path to the program file or directory.")
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to a YAML config file.")
	fs.IntVar(&f.httpPort, "http-port", def.HTTPPort, "Port for the health and metrics HTTP server. 0 is disabled.")
	fs.StringVar(&f.logFormat, "log-format", def.LogFormat, "Log output format. Options: 'text' or 'json'.")
	fs.StringVar(&f.logLevel, "log-level", def.LogLevel, "Set the logging level. Options: 'trace', 'debug', 'info', 'warn', 'error'.")
	fs.DurationVar(&f.tickInterval, "tick-interval", def.TickInterval, "Minimum time between transactions. 0 runs them back to back.")
	fs.Uint64Var(&f.maxTicks, "max-ticks", def.MaxTicks, "Stop after this many transactions. 0 runs until interrupted.")
	fs.BoolVar(&f.debug, "debug", def.Debug.Enabled, "Enable the debug channel.")
	fs.StringVar(&f.serial, "debug-serial", def.Debug.Serial, "Read tweak commands from this device or file, '-' for stdin.")
	fs.StringVar(&f.socketURL, "debug-socket", def.Debug.SocketURL, "Read tweak commands from this socket.io server.")
	fs.StringVar(&f.socketNS, "debug-socket-namespace", def.Debug.SocketNamespace, "socket.io namespace for tweak commands.")
	fs.StringVar(&f.socketEvent, "debug-socket-event", def.Debug.SocketEvent, "socket.io event carrying tweak commands.")
	fs.BoolVar(&f.insecure, "debug-socket-insecure", def.Debug.InsecureSkipVerify, "Skip TLS verification for the debug socket.")
	fs.IntVar(&f.queueSize, "debug-queue", def.Debug.QueueSize, "Maximum number of pending tweak commands.")

	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errNoProgram) {
			slog.Debug("No program path provided, printing usage and exiting.")
			_ = cmd.Usage()
			return nil, true, nil
		}
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if cfg == nil {
		// --help was handled by cobra.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}

var errNoProgram = errors.New("no program path")

// resolve layers the config file and the explicitly set flags over def.
func resolve(cmd *cobra.Command, args []string, def app.Config, f *flags) (*app.Config, error) {
	cfg := def
	if f.configPath != "" {
		loaded, err := app.LoadConfigFile(f.configPath, cfg)
		if err != nil {
			return nil, &ExitError{Code: 2, Message: err.Error()}
		}
		cfg = loaded
	}

	set := cmd.Flags().Changed
	switch {
	case f.program != "":
		cfg.ProgramPath = f.program
	case len(args) > 0:
		cfg.ProgramPath = args[0]
	}
	if set("http-port") {
		cfg.HTTPPort = f.httpPort
	}
	if set("log-format") {
		cfg.LogFormat = strings.ToLower(f.logFormat)
	}
	if set("log-level") {
		cfg.LogLevel = strings.ToLower(f.logLevel)
	}
	if set("tick-interval") {
		cfg.TickInterval = f.tickInterval
	}
	if set("max-ticks") {
		cfg.MaxTicks = f.maxTicks
	}
	if set("debug") {
		cfg.Debug.Enabled = f.debug
	}
	if set("debug-serial") {
		cfg.Debug.Serial = f.serial
	}
	if set("debug-socket") {
		cfg.Debug.SocketURL = f.socketURL
	}
	if set("debug-socket-namespace") {
		cfg.Debug.SocketNamespace = f.socketNS
	}
	if set("debug-socket-event") {
		cfg.Debug.SocketEvent = f.socketEvent
	}
	if set("debug-socket-insecure") {
		cfg.Debug.InsecureSkipVerify = f.insecure
	}
	if set("debug-queue") {
		cfg.Debug.QueueSize = f.queueSize
	}
	slog.Debug("Program path determined.", "path", cfg.ProgramPath)

	if cfg.ProgramPath == "" {
		return nil, errNoProgram
	}

	valid, err := app.NewConfig(cfg)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return valid, nil
}
