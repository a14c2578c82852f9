package main

import "time"

type Config struct {
	BotToken       string  `mapstructure:"bot_token" yaml:"bot_token"`
	TelegramUserID int64   `mapstructure:"telegram_user_id" yaml:"telegram_user_id"`
	AllowedUserIDs []int64 `mapstructure:"allowed_user_ids" yaml:"allowed_user_ids"`

	HostName string `mapstructure:"host_name" yaml:"host_name"`
	HostIP   string `mapstructure:"host_ip" yaml:"host_ip"`

	CheckIntervalSeconds   int    `mapstructure:"check_interval_seconds" yaml:"check_interval_seconds"`
	CheckFirstDelaySeconds int    `mapstructure:"check_first_delay_seconds" yaml:"check_first_delay_seconds"`
	AlertCooldownSeconds   int    `mapstructure:"alert_cooldown_seconds" yaml:"alert_cooldown_seconds"`
	DiskPath               string `mapstructure:"disk_path" yaml:"disk_path"`
	CPUSampleMS            int    `mapstructure:"cpu_sample_ms" yaml:"cpu_sample_ms"`

	Tail    TailConfig    `mapstructure:"tail" yaml:"tail"`
	Anomaly AnomalyConfig `mapstructure:"anomaly" yaml:"anomaly"`

	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
}

type TailConfig struct {
	IntervalSeconds   int    `mapstructure:"interval_seconds" yaml:"interval_seconds"`
	FirstDelaySeconds int    `mapstructure:"first_delay_seconds" yaml:"first_delay_seconds"`
	MaxChars          int    `mapstructure:"max_chars" yaml:"max_chars"`
	Source            string `mapstructure:"source" yaml:"source"` // api | cli
}

type AnomalyConfig struct {
	WindowSize      int     `mapstructure:"window_size" yaml:"window_size"`
	MinSamples      int     `mapstructure:"min_samples" yaml:"min_samples"`
	SigmaMultiplier float64 `mapstructure:"sigma_multiplier" yaml:"sigma_multiplier"`
}

func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

func (c *Config) CheckFirstDelay() time.Duration {
	return time.Duration(c.CheckFirstDelaySeconds) * time.Second
}

func (c *Config) AlertCooldown() time.Duration {
	return time.Duration(c.AlertCooldownSeconds) * time.Second
}

func (c *Config) CPUSampleInterval() time.Duration {
	return time.Duration(c.CPUSampleMS) * time.Millisecond
}

func (t TailConfig) Interval() time.Duration {
	return time.Duration(t.IntervalSeconds) * time.Second
}

func (t TailConfig) FirstDelay() time.Duration {
	return time.Duration(t.FirstDelaySeconds) * time.Second
}

// IsAuthorized reports whether userID may use the bot: the operator plus
// anyone in allowed_user_ids.
func (c *Config) IsAuthorized(userID int64) bool {
	if userID == 0 {
		return false
	}
	if userID == c.TelegramUserID {
		return true
	}
	for _, id := range c.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.BotToken != "" {
		c.BotToken = "<redacted>"
	}
	c.AllowedUserIDs = append([]int64(nil), c.AllowedUserIDs...)
	return c
}
