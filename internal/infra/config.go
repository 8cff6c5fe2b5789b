package infra

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"order_matching/internal/domain"
)

const (
	// DefaultConfigPath is used when MATCHER_CONFIG is unset.
	DefaultConfigPath = "configs/config.yaml"

	// EnvPrefix prefixes every environment override, e.g. MATCHER_SESSION_INPUT.
	EnvPrefix = "MATCHER_"
)

// Config holds every setting of the matcher.
// It is loaded from YAML, then overridden by the environment (and .env).
type Config struct {
	App struct {
		Name    string `yaml:"name" env:"NAME" validate:"required"`
		Version string `yaml:"version" env:"VERSION"`
	} `yaml:"app" envPrefix:"APP_"`

	Session struct {
		Input     string `yaml:"input" env:"INPUT" validate:"required"`
		Output    string `yaml:"output" env:"OUTPUT" validate:"required"`
		Strict    bool   `yaml:"strict" env:"STRICT"`
		InboxSize int    `yaml:"inbox_size" env:"INBOX_SIZE" validate:"min=1"`
		DumpFile  string `yaml:"dump_file" env:"DUMP_FILE"`
	} `yaml:"session" envPrefix:"SESSION_"`

	Display struct {
		Snapshots bool `yaml:"snapshots" env:"SNAPSHOTS"`
	} `yaml:"display" envPrefix:"DISPLAY_"`

	Journal struct {
		Enabled bool   `yaml:"enabled" env:"ENABLED"`
		Path    string `yaml:"path" env:"PATH" validate:"required_if=Enabled true"`
	} `yaml:"journal" envPrefix:"JOURNAL_"`

	Logging struct {
		Level      string `yaml:"level" env:"LEVEL" validate:"omitempty,oneof=debug info warn error"`
		Dir        string `yaml:"dir" env:"DIR"`
		File       string `yaml:"file" env:"FILE"`
		MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB" validate:"min=0"`
		MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS" validate:"min=0"`
		MaxAgeDays int    `yaml:"max_age_days" env:"MAX_AGE_DAYS" validate:"min=0"`
		Compress   bool   `yaml:"compress" env:"COMPRESS"`
	} `yaml:"logging" envPrefix:"LOGGING_"`
}

// DefaultConfig returns the settings used for keys absent from the file.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "order-matching"
	cfg.Session.Input = "input.txt"
	cfg.Session.Output = "output.txt"
	cfg.Session.InboxSize = 1024
	cfg.Journal.Path = "data/journal.db"
	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "logs"
	cfg.Logging.File = "matcher.log"
	cfg.Logging.MaxSizeMB = 10
	cfg.Logging.MaxBackups = 3
	cfg.Logging.MaxAgeDays = 28
	cfg.Logging.Compress = true
	return &cfg
}

// ConfigPath returns MATCHER_CONFIG or the default path.
func ConfigPath() string {
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p
	}
	return DefaultConfigPath
}

// LoadConfig reads and parses the config file, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// A missing .env is fine; variables already set in the process win.
	_ = godotenv.Load()
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks configuration validity. The first failing field is
// reported as a *domain.ConfigError.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.ConfigError{
			Field: fe.Namespace(),
			Err:   fmt.Errorf("failed %q (value %v)", fe.Tag(), fe.Value()),
		}
	}
	return &domain.ConfigError{Field: "config", Err: err}
}
