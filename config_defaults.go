package main

import (
	"os"
	"strings"

	"devopsbot/internal/anomaly"
	"devopsbot/internal/logtail"
	"devopsbot/internal/scheduler"
)

const (
	defaultConfigFile   = "config.json"
	defaultLogFile      = "devopsbot.log"
	defaultCPUSampleMS  = 1000
	defaultDiskPath     = "/"
	defaultLogLevel     = "info"
	defaultHostFallback = "localhost"
)

func defaultConfigTemplate() Config {
	return Config{
		AllowedUserIDs:         []int64{},
		CheckIntervalSeconds:   int(scheduler.DefaultCheckInterval.Seconds()),
		CheckFirstDelaySeconds: int(scheduler.DefaultCheckFirstDelay.Seconds()),
		AlertCooldownSeconds:   int(scheduler.DefaultAlertCooldown.Seconds()),
		DiskPath:               defaultDiskPath,
		CPUSampleMS:            defaultCPUSampleMS,
		Tail: TailConfig{
			IntervalSeconds:   int(scheduler.DefaultTailInterval.Seconds()),
			FirstDelaySeconds: int(scheduler.DefaultTailFirstDelay.Seconds()),
			MaxChars:          scheduler.DefaultTailMaxChars,
			Source:            logtail.KindAPI,
		},
		Anomaly: AnomalyConfig{
			WindowSize:      anomaly.DefaultWindowSize,
			MinSamples:      anomaly.DefaultMinSamples,
			SigmaMultiplier: anomaly.DefaultSigma,
		},
		LogFile:  defaultLogFile,
		LogLevel: defaultLogLevel,
	}
}

// applyConfigDefaults replaces missing or out-of-range values. A zero
// alert cooldown is kept: it disables suppression across distinct ticks.
func applyConfigDefaults(cfg *Config) {
	d := defaultConfigTemplate()

	if cfg.HostName == "" {
		if h, err := os.Hostname(); err == nil && h != "" {
			cfg.HostName = h
		} else {
			cfg.HostName = defaultHostFallback
		}
	}
	if cfg.CheckIntervalSeconds <= 0 {
		cfg.CheckIntervalSeconds = d.CheckIntervalSeconds
	}
	if cfg.CheckFirstDelaySeconds < 0 {
		cfg.CheckFirstDelaySeconds = d.CheckFirstDelaySeconds
	}
	if cfg.AlertCooldownSeconds < 0 {
		cfg.AlertCooldownSeconds = d.AlertCooldownSeconds
	}
	if cfg.DiskPath == "" {
		cfg.DiskPath = d.DiskPath
	}
	if cfg.CPUSampleMS <= 0 {
		cfg.CPUSampleMS = d.CPUSampleMS
	}

	if cfg.Tail.IntervalSeconds <= 0 {
		cfg.Tail.IntervalSeconds = d.Tail.IntervalSeconds
	}
	if cfg.Tail.FirstDelaySeconds < 0 {
		cfg.Tail.FirstDelaySeconds = d.Tail.FirstDelaySeconds
	}
	if cfg.Tail.MaxChars <= 0 {
		cfg.Tail.MaxChars = d.Tail.MaxChars
	}
	switch strings.ToLower(cfg.Tail.Source) {
	case logtail.KindAPI, logtail.KindCLI:
		cfg.Tail.Source = strings.ToLower(cfg.Tail.Source)
	default:
		cfg.Tail.Source = d.Tail.Source
	}

	if cfg.Anomaly.WindowSize <= 0 {
		cfg.Anomaly.WindowSize = d.Anomaly.WindowSize
	}
	if cfg.Anomaly.MinSamples <= 0 {
		cfg.Anomaly.MinSamples = d.Anomaly.MinSamples
	}
	if cfg.Anomaly.MinSamples > cfg.Anomaly.WindowSize {
		cfg.Anomaly.MinSamples = cfg.Anomaly.WindowSize
	}
	if cfg.Anomaly.SigmaMultiplier <= 0 {
		cfg.Anomaly.SigmaMultiplier = d.Anomaly.SigmaMultiplier
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = d.LogLevel
	}
	if cfg.AllowedUserIDs == nil {
		cfg.AllowedUserIDs = []int64{}
	}
}
