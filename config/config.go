// Package config loads the service configuration from YAML over defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MaxFileSize bounds the config file read from disk.
const MaxFileSize = 1024 * 1024

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Agent   AgentConfig   `yaml:"agent"`
	Players PlayersConfig `yaml:"players"`
	Stats   StatsConfig   `yaml:"stats"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
	// TickInterval is how often the driver polls the agent for results.
	TickInterval time.Duration `yaml:"tick_interval" validate:"gt=0"`
}

type AgentConfig struct {
	Pacing      bool          `yaml:"pacing"`
	PacingDelay time.Duration `yaml:"pacing_delay" validate:"gte=0"`
	Depth       int           `yaml:"depth" validate:"min=1,max=8"`
	// Seed 0 picks a time based seed.
	Seed int64 `yaml:"seed"`
}

type PlayersConfig struct {
	Black string `yaml:"black" validate:"oneof=human random minimax"`
	White string `yaml:"white" validate:"oneof=human random minimax"`
}

type StatsConfig struct {
	Path     string `yaml:"path" validate:"required_without=InMemory"`
	InMemory bool   `yaml:"in_memory"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			TickInterval: 100 * time.Millisecond,
		},
		Agent: AgentConfig{
			PacingDelay: time.Second,
			Depth:       3,
		},
		Players: PlayersConfig{
			Black: "human",
			White: "minimax",
		},
		Stats: StatsConfig{
			Path: "othello-stats",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	info, err := os.Stat(path)
	if err != nil {
		return cfg, fmt.Errorf("config: stat %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return cfg, fmt.Errorf("config: %s is larger than %d bytes", path, MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, cfg.Validate()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("config: invalid: %s", strings.Join(msgs, "; "))
}

func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger described by l.
func (l LogConfig) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
