// Package config loads parsons settings from a YAML file and PARSONS_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/parsons/internal/llm"
)

// Config is the full application configuration.
type Config struct {
	// DB is the SQLite database path. Empty means store.DefaultDBPath.
	DB string `yaml:"db"`

	// Addr is the listen address of the HTTP API.
	Addr string `yaml:"addr" validate:"required,hostname_port"`

	// ContentDir holds extra puzzle files loaded on top of the built-in
	// catalog.
	ContentDir string `yaml:"content_dir" validate:"omitempty,dir"`

	// Strict makes interactive sessions reject out-of-order placements.
	Strict bool `yaml:"strict"`

	Log LogConfig  `yaml:"log"`
	LLM llm.Config `yaml:"llm"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Addr: ":8080",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		LLM: llm.DefaultConfig(),
	}
}

// DefaultPath resolves the config file path:
// 1. PARSONS_CONFIG
// 2. $XDG_CONFIG_HOME/parsons/config.yaml
// 3. ~/.config/parsons/config.yaml
func DefaultPath(getenv func(string) string) (string, error) {
	if p := getenv("PARSONS_CONFIG"); p != "" {
		return p, nil
	}
	base := getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "parsons", "config.yaml"), nil
}

// Load reads the config file at path, or the default path when path is
// empty, then applies environment overrides. A missing file at the
// default path yields the defaults; a missing explicit path is an error.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath(getenv)
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg.ApplyEnv(getenv)
	if !cfg.LLM.Enabled() {
		cfg.LLM, _ = cfg.LLM.Discover(getenv)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from PARSONS_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.DB, "PARSONS_DB")
	set(&c.Addr, "PARSONS_ADDR")
	set(&c.ContentDir, "PARSONS_CONTENT_DIR")
	set(&c.Log.Level, "PARSONS_LOG_LEVEL")
	set(&c.Log.Format, "PARSONS_LOG_FORMAT")

	switch strings.ToLower(getenv("PARSONS_STRICT")) {
	case "1", "true", "yes":
		c.Strict = true
	case "0", "false", "no":
		c.Strict = false
	}

	c.LLM.ApplyEnv(getenv)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var problems []error

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Errorf("%s: invalid value %q (%s)",
				fieldPath(fe.Namespace()), fmt.Sprint(fe.Value()), fe.Tag()))
		}
	}
	if err := c.LLM.Validate(); err != nil {
		problems = append(problems, fmt.Errorf("llm: %w", err))
	}
	return errors.Join(problems...)
}

// fieldPath turns "Config.Log.Level" into "log.level".
func fieldPath(ns string) string {
	_, rest, _ := strings.Cut(ns, ".")
	return strings.ToLower(rest)
}

// NewLogger builds the process logger described by lc. Unknown levels fall
// back to info.
func NewLogger(w io.Writer, lc LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(lc.Level)}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name onto slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
