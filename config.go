package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

var (
	errMissingToken    = errors.New("bot_token is required (BOT_TOKEN)")
	errMissingOperator = errors.New("telegram_user_id is required (TELEGRAM_USER_ID)")
)

// configEnv maps each config key to the environment variables that set it,
// highest priority first.
var configEnv = map[string][]string{
	"bot_token":                 {"BOT_TOKEN"},
	"telegram_user_id":          {"TELEGRAM_USER_ID"},
	"allowed_user_ids":          {"ALLOWED_USER_IDS"},
	"host_name":                 {"HOST_NAME"},
	"host_ip":                   {"HOST_IP"},
	"check_interval_seconds":    {"CHECK_INTERVAL", "CHECK_INTERVAL_SECONDS"},
	"check_first_delay_seconds": {"CHECK_FIRST_DELAY"},
	"alert_cooldown_seconds":    {"ALERT_COOLDOWN", "ALERT_COOLDOWN_SECONDS"},
	"disk_path":                 {"DISK_PATH"},
	"cpu_sample_ms":             {"CPU_SAMPLE_MS"},
	"tail.interval_seconds":     {"TAIL_INTERVAL_SECONDS"},
	"tail.first_delay_seconds":  {"TAIL_FIRST_DELAY_SECONDS"},
	"tail.max_chars":            {"TAIL_MAX_CHARS"},
	"tail.source":               {"TAIL_SOURCE"},
	"anomaly.window_size":       {"ANOMALY_WINDOW_SIZE"},
	"anomaly.min_samples":       {"ANOMALY_MIN_SAMPLES"},
	"anomaly.sigma_multiplier":  {"ANOMALY_SIGMA_MULTIPLIER"},
	"metrics_addr":              {"METRICS_ADDR"},
	"log_file":                  {"DEVOPSBOT_LOG_FILE"},
	"log_level":                 {"LOG_LEVEL"},
}

// loadConfig builds the effective configuration. Precedence: environment,
// then the config file (explicit path, or config.json when present), then
// defaults. A .env file in the working directory seeds unset variables.
func loadConfig(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setConfigDefaults(v)
	for key, envs := range configEnv {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyConfigDefaults(cfg)

	if path != "" {
		slog.Debug("Config loaded", "file", path)
	}
	return cfg, nil
}

func setConfigDefaults(v *viper.Viper) {
	d := defaultConfigTemplate()
	v.SetDefault("allowed_user_ids", d.AllowedUserIDs)
	v.SetDefault("check_interval_seconds", d.CheckIntervalSeconds)
	v.SetDefault("check_first_delay_seconds", d.CheckFirstDelaySeconds)
	v.SetDefault("alert_cooldown_seconds", d.AlertCooldownSeconds)
	v.SetDefault("disk_path", d.DiskPath)
	v.SetDefault("cpu_sample_ms", d.CPUSampleMS)
	v.SetDefault("tail.interval_seconds", d.Tail.IntervalSeconds)
	v.SetDefault("tail.first_delay_seconds", d.Tail.FirstDelaySeconds)
	v.SetDefault("tail.max_chars", d.Tail.MaxChars)
	v.SetDefault("tail.source", d.Tail.Source)
	v.SetDefault("anomaly.window_size", d.Anomaly.WindowSize)
	v.SetDefault("anomaly.min_samples", d.Anomaly.MinSamples)
	v.SetDefault("anomaly.sigma_multiplier", d.Anomaly.SigmaMultiplier)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)
}

// loadDotEnv exports KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is fine.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return fmt.Errorf("export %s: %w", name, err)
		}
	}
	return nil
}

// validate checks what the bot needs to talk to Telegram. The status and
// config subcommands run without it.
func (c *Config) validate() error {
	if strings.TrimSpace(c.BotToken) == "" {
		return errMissingToken
	}
	if c.TelegramUserID == 0 {
		return errMissingOperator
	}
	return nil
}
