package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DebugConfig configures the debug channel.
type DebugConfig struct {
	Enabled bool `yaml:"enabled"`
	// Serial is a device or file to read tweak commands from, "-" for stdin.
	Serial string `yaml:"serial"`
	// SocketURL, when set, receives tweak commands as socket.io events.
	SocketURL          string `yaml:"socket_url" validate:"omitempty,url"`
	SocketNamespace    string `yaml:"socket_namespace"`
	SocketEvent        string `yaml:"socket_event"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	// QueueSize bounds the number of pending command lines.
	QueueSize int `yaml:"queue_size" validate:"gte=1,lte=4096"`
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProgramPath string `yaml:"program" validate:"required"`

	LogFormat string `yaml:"log_format" validate:"oneof=text json"`
	LogLevel  string `yaml:"log_level" validate:"oneof=trace debug info warn error"`

	// TickInterval paces transactions; zero runs them back to back.
	TickInterval time.Duration `yaml:"tick_interval" validate:"gte=0"`
	// MaxTicks stops the run after that many transactions; zero runs until
	// cancelled.
	MaxTicks uint64 `yaml:"max_ticks"`
	// HTTPPort serves /health and /metrics when positive.
	HTTPPort int `yaml:"http_port" validate:"gte=0,lte=65535"`

	Debug DebugConfig `yaml:"debug"`
}

// DefaultConfig returns the configuration every other source overrides.
func DefaultConfig() Config {
	return Config{
		LogFormat:    "text",
		LogLevel:     "info",
		TickInterval: time.Millisecond,
		Debug: DebugConfig{
			QueueSize: 64,
		},
	}
}

var validate = validator.New()

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProgramPath == "" {
		return nil, errors.New("ProgramPath is a required configuration field and cannot be empty")
	}
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed '%s' (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return nil, fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Debug.SocketURL != "" || cfg.Debug.Serial != "" {
		cfg.Debug.Enabled = true
	}
	return &cfg, nil
}

// LoadConfigFile overlays the YAML file at path onto base. Keys missing from
// the file keep their value from base.
func LoadConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config file: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}
