package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok-123")
	t.Setenv("RESOURCEBOT_ADMIN_ID", "")
	t.Setenv("RESOURCEBOT_DATA_DIR", "")

	path := writeConfig(t, "config.yaml", `
admin_id: 5214922760
data_dir: /var/lib/resourcebot
storage:
  driver: sqlite
gateway:
  poll_timeout: 60
metrics:
  enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AdminID != 5214922760 {
		t.Errorf("admin id = %d", cfg.AdminID)
	}
	if cfg.BotToken != "tok-123" {
		t.Errorf("bot token = %q, want env value", cfg.BotToken)
	}
	if cfg.Storage.StorageDriver() != "sqlite" {
		t.Errorf("driver = %q", cfg.Storage.StorageDriver())
	}
	if cfg.Storage.SQLitePath != filepath.Join("/var/lib/resourcebot", "resourcebot.db") {
		t.Errorf("sqlite path = %q, want derived from data dir", cfg.Storage.SQLitePath)
	}
	if cfg.Gateway.PollTimeout != 60 {
		t.Errorf("poll timeout = %d", cfg.Gateway.PollTimeout)
	}
	if cfg.Metrics == nil || !cfg.Metrics.Enabled {
		t.Error("metrics not enabled")
	}
	if got := cfg.Metrics.Addr(); got != ":9090" {
		t.Errorf("metrics addr = %q, want default :9090", got)
	}
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok-123")
	t.Setenv("RESOURCEBOT_ADMIN_ID", "42")
	t.Setenv("RESOURCEBOT_DATA_DIR", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("load without file: %v", err)
	}
	if cfg.AdminID != 42 {
		t.Errorf("admin id = %d, want 42 from env", cfg.AdminID)
	}
	if cfg.Storage.StorageDriver() != "json" {
		t.Errorf("driver = %q, want json default", cfg.Storage.StorageDriver())
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok-123")
	t.Setenv("RESOURCEBOT_ADMIN_ID", "99")
	t.Setenv("RESOURCEBOT_DATA_DIR", "")

	path := writeConfig(t, "config.yaml", "admin_id: 1\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AdminID != 99 {
		t.Errorf("admin id = %d, want env override 99", cfg.AdminID)
	}
}

func TestValidation(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("RESOURCEBOT_ADMIN_ID", "")
	t.Setenv("RESOURCEBOT_POSTGRES_DSN", "")

	if _, err := Load(writeConfig(t, "c.yaml", "admin_id: 1\n")); err == nil {
		t.Error("missing bot token accepted")
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	if _, err := Load(writeConfig(t, "c.yaml", "data_dir: /tmp/x\n")); err == nil {
		t.Error("missing admin id accepted")
	}

	if _, err := Load(writeConfig(t, "c.yaml", "admin_id: 1\nstorage:\n  driver: postgres\n")); err == nil {
		t.Error("postgres without DSN accepted")
	}

	if _, err := Load(writeConfig(t, "c.yaml", "admin_id: 1\nstorage:\n  driver: oracle\n")); err == nil {
		t.Error("unknown driver accepted")
	}
}
