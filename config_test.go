package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// chdirTemp runs the test from an empty directory so a stray config.json or
// .env in the repo cannot leak in.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("HOST_NAME", "web-1")
	t.Setenv("BOT_TOKEN", "")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.CheckIntervalSeconds != 60 || cfg.CheckFirstDelaySeconds != 10 || cfg.AlertCooldownSeconds != 300 {
		t.Fatalf("check defaults = %d/%d/%d", cfg.CheckIntervalSeconds, cfg.CheckFirstDelaySeconds, cfg.AlertCooldownSeconds)
	}
	if cfg.Tail.IntervalSeconds != 10 || cfg.Tail.FirstDelaySeconds != 5 || cfg.Tail.MaxChars != 3000 {
		t.Fatalf("tail defaults = %+v", cfg.Tail)
	}
	if cfg.Tail.Source != "api" || cfg.DiskPath != "/" || cfg.LogLevel != "info" {
		t.Fatalf("defaults = %q %q %q", cfg.Tail.Source, cfg.DiskPath, cfg.LogLevel)
	}
	if cfg.HostName != "web-1" {
		t.Fatalf("HostName = %q", cfg.HostName)
	}
	if err := cfg.validate(); err != errMissingToken {
		t.Fatalf("validate = %v, want missing token", err)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("BOT_TOKEN", "abc")
	t.Setenv("TELEGRAM_USER_ID", "42")
	t.Setenv("ALLOWED_USER_IDS", "7,8")
	t.Setenv("CHECK_INTERVAL", "15")
	t.Setenv("ALERT_COOLDOWN_SECONDS", "0")
	t.Setenv("TAIL_SOURCE", "CLI")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.BotToken != "abc" || cfg.TelegramUserID != 42 {
		t.Fatalf("credentials = %q %d", cfg.BotToken, cfg.TelegramUserID)
	}
	if !reflect.DeepEqual(cfg.AllowedUserIDs, []int64{7, 8}) {
		t.Fatalf("AllowedUserIDs = %v", cfg.AllowedUserIDs)
	}
	if cfg.CheckIntervalSeconds != 15 {
		t.Fatalf("CheckIntervalSeconds = %d", cfg.CheckIntervalSeconds)
	}
	if cfg.AlertCooldownSeconds != 0 {
		t.Fatalf("zero cooldown should be kept, got %d", cfg.AlertCooldownSeconds)
	}
	if cfg.Tail.Source != "cli" {
		t.Fatalf("Tail.Source = %q", cfg.Tail.Source)
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !cfg.IsAuthorized(42) || !cfg.IsAuthorized(8) || cfg.IsAuthorized(9) || cfg.IsAuthorized(0) {
		t.Fatalf("IsAuthorized mismatch")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "bot.yaml")
	data := []byte(`bot_token: from-file
telegram_user_id: 5
host_name: db-2
tail:
  max_chars: 500
anomaly:
  window_size: 10
  min_samples: 50
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.BotToken != "from-env" {
		t.Fatalf("env should win over file, got %q", cfg.BotToken)
	}
	if cfg.TelegramUserID != 5 || cfg.HostName != "db-2" || cfg.Tail.MaxChars != 500 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Anomaly.MinSamples != 10 {
		t.Fatalf("MinSamples should be clamped to window, got %d", cfg.Anomaly.MinSamples)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	chdirTemp(t)
	if _, err := loadConfig("nope.json"); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HOST_NAME=from-dotenv\nTELEGRAM_USER_ID=9\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("TELEGRAM_USER_ID", "3")
	// t.Setenv restores HOST_NAME after the test even though .env sets it.
	t.Setenv("HOST_NAME", "")
	os.Unsetenv("HOST_NAME")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.HostName != "from-dotenv" {
		t.Fatalf("HostName = %q", cfg.HostName)
	}
	if cfg.TelegramUserID != 3 {
		t.Fatalf(".env must not override the environment, got %d", cfg.TelegramUserID)
	}
}

func TestRedacted(t *testing.T) {
	cfg := Config{BotToken: "secret", AllowedUserIDs: []int64{1}}
	r := cfg.Redacted()
	if r.BotToken != "<redacted>" || cfg.BotToken != "secret" {
		t.Fatalf("Redacted = %q, original = %q", r.BotToken, cfg.BotToken)
	}
	r.AllowedUserIDs[0] = 99
	if cfg.AllowedUserIDs[0] != 1 {
		t.Fatalf("Redacted shares the allowed list")
	}
}

func TestValidateMissingOperator(t *testing.T) {
	cfg := &Config{BotToken: "x"}
	if err := cfg.validate(); err != errMissingOperator {
		t.Fatalf("validate = %v", err)
	}
}
