// Package config handles loading and validating resourcebot configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

func init() {
	// Load .env file if it exists
	_ = godotenv.Load()
}

// Config is the root configuration for the bot.
type Config struct {
	// BotToken comes from the TELEGRAM_BOT_TOKEN env var only; it is never
	// read from or written to a config file.
	BotToken string `json:"-" yaml:"-"`

	AdminID int64  `json:"admin_id" yaml:"admin_id"`                     // Telegram user ID of the single administrator.
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"` // Default: ~/.resourcebot/data. Override: RESOURCEBOT_DATA_DIR.

	Storage  *StorageConfig  `json:"storage,omitempty" yaml:"storage,omitempty"`   // nil = JSON files in DataDir
	Gateway  GatewayConfig   `json:"gateway" yaml:"gateway"`                       // polling by default
	Metrics  *MetricsConfig  `json:"metrics,omitempty" yaml:"metrics,omitempty"`   // nil = metrics disabled
	Reminder *ReminderConfig `json:"reminder,omitempty" yaml:"reminder,omitempty"` // nil = reminder disabled
}

// StorageConfig configures the record store backend.
type StorageConfig struct {
	Driver      string `json:"driver" yaml:"driver"`                                     // "json" (default), "sqlite", or "postgres".
	SQLitePath  string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`       // Default: <data_dir>/resourcebot.db.
	PostgresDSN string `json:"postgres_dsn,omitempty" yaml:"postgres_dsn,omitempty"`     // Required for the postgres driver.
}

// StorageDriver returns the configured driver, defaulting to "json".
func (s *StorageConfig) StorageDriver() string {
	if s != nil && s.Driver != "" {
		return s.Driver
	}
	return "json"
}

// GatewayConfig configures the Telegram transport.
type GatewayConfig struct {
	WebhookURL  string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"` // Empty = long polling.
	ListenAddr  string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"` // For webhook mode. Default: ":8081".
	PollTimeout int    `json:"poll_timeout,omitempty" yaml:"poll_timeout,omitempty"`
}

// MetricsConfig configures Prometheus metrics exposition.
type MetricsConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"` // Default: ":9090".
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`               // Default: "/metrics".
}

// Addr returns the exposition listen address, defaulting to ":9090".
func (m *MetricsConfig) Addr() string {
	if m != nil && m.ListenAddr != "" {
		return m.ListenAddr
	}
	return ":9090"
}

// MetricsPath returns the exposition path, defaulting to "/metrics".
func (m *MetricsConfig) MetricsPath() string {
	if m != nil && m.Path != "" {
		return m.Path
	}
	return "/metrics"
}

// ReminderConfig configures the pending-queue reminder job.
type ReminderConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Schedule string `json:"schedule,omitempty" yaml:"schedule,omitempty"` // Standard 5-field cron. Default: hourly.
}

// CronSchedule returns the reminder cron spec, defaulting to hourly.
func (r *ReminderConfig) CronSchedule() string {
	if r != nil && r.Schedule != "" {
		return r.Schedule
	}
	return "0 * * * *"
}

// DefaultConfigPath returns the default config file path (~/.resourcebot/config.yaml).
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "configs/resourcebot.yaml" // fallback for environments without a home dir
	}
	return filepath.Join(home, ".resourcebot", "config.yaml")
}

// Load reads a YAML or JSON config file and returns a validated Config.
// The format is detected by file extension: .yml/.yaml for YAML, everything
// else for JSON. A missing file is not an error: env vars alone can carry a
// complete configuration. Environment variables take precedence.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Env-only configuration.
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yml", ".yaml":
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing YAML config %s: %w", path, err)
			}
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing JSON config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv applies environment variable overrides. Env takes precedence
// over config file values.
func applyEnv(cfg *Config) {
	if tok := os.Getenv("TELEGRAM_BOT_TOKEN"); tok != "" {
		cfg.BotToken = tok
	}
	if admin := os.Getenv("RESOURCEBOT_ADMIN_ID"); admin != "" {
		if id, err := strconv.ParseInt(admin, 10, 64); err == nil {
			cfg.AdminID = id
		}
	}
	if dd := os.Getenv("RESOURCEBOT_DATA_DIR"); dd != "" {
		cfg.DataDir = dd
	}
	if dsn := os.Getenv("RESOURCEBOT_POSTGRES_DSN"); dsn != "" {
		if cfg.Storage == nil {
			cfg.Storage = &StorageConfig{Driver: "postgres"}
		}
		cfg.Storage.PostgresDSN = dsn
	}
}

func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.DataDir = filepath.Join(home, ".resourcebot", "data")
		} else {
			cfg.DataDir = "data"
		}
	}
	if cfg.Storage != nil && cfg.Storage.StorageDriver() == "sqlite" && cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = filepath.Join(cfg.DataDir, "resourcebot.db")
	}
	if cfg.Gateway.WebhookURL != "" && cfg.Gateway.ListenAddr == "" {
		cfg.Gateway.ListenAddr = ":8081"
	}
}

// Validate checks that the configuration is runnable.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.AdminID == 0 {
		return fmt.Errorf("admin_id is required (or RESOURCEBOT_ADMIN_ID)")
	}
	switch c.Storage.StorageDriver() {
	case "json", "sqlite":
	case "postgres":
		if c.Storage == nil || c.Storage.PostgresDSN == "" {
			return fmt.Errorf("postgres driver requires postgres_dsn")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
