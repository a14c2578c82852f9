package main

import (
	"time"

	"devopsbot/internal/alerts"
	"devopsbot/internal/anomaly"
	"devopsbot/internal/logtail"
	"devopsbot/internal/metrics"
	"devopsbot/internal/scheduler"
	"devopsbot/internal/telemetry"
)

// AppContext holds the application dependencies shared by command handlers.
type AppContext struct {
	Config    *Config
	Header    alerts.Header
	Source    metrics.Source
	Engine    *alerts.Engine
	Scheduler *scheduler.Scheduler
	Tails     logtail.Provider
	Telemetry *telemetry.Metrics
	StartTime time.Time
}

// InitApp wires the monitoring core for cfg. Alerts and tail chunks are
// delivered through bot.
func InitApp(cfg *Config, bot BotAPI, tel *telemetry.Metrics) *AppContext {
	source := metrics.NewHostSource(cfg.DiskPath, cfg.CPUSampleInterval())
	tails := logtail.Open(cfg.Tail.Source, moduleLogger("logtail"))
	return newAppContext(cfg, source, tails, telegramNotifier{bot: bot}, tel)
}

func newAppContext(cfg *Config, source metrics.Source, tails logtail.Provider, notifier scheduler.Notifier, tel *telemetry.Metrics) *AppContext {
	header := alerts.Header{Host: cfg.HostName, IP: cfg.HostIP}

	detector := anomaly.NewDetector(anomaly.Config{
		WindowSize: cfg.Anomaly.WindowSize,
		MinSamples: cfg.Anomaly.MinSamples,
		Sigma:      cfg.Anomaly.SigmaMultiplier,
	})
	engine := alerts.NewEngine(source, detector, moduleLogger("alerts"), tel)

	sched := scheduler.New(scheduler.Config{
		CheckInterval:   cfg.CheckInterval(),
		CheckFirstDelay: cfg.CheckFirstDelay(),
		AlertCooldown:   cfg.AlertCooldown(),
		TailInterval:    cfg.Tail.Interval(),
		TailFirstDelay:  cfg.Tail.FirstDelay(),
		TailMaxChars:    cfg.Tail.MaxChars,
		Operator:        cfg.TelegramUserID,
		Header:          header,
	}, scheduler.Deps{
		Alerts:   engine,
		Tails:    tails,
		Notifier: notifier,
		Logger:   moduleLogger("scheduler"),
		Recorder: tel,
	})

	return &AppContext{
		Config:    cfg,
		Header:    header,
		Source:    source,
		Engine:    engine,
		Scheduler: sched,
		Tails:     tails,
		Telemetry: tel,
		StartTime: time.Now(),
	}
}

// Close stops every tail session and releases the log source.
func (ctx *AppContext) Close() {
	ctx.Scheduler.Close()
	if err := ctx.Tails.Close(); err != nil {
		moduleLogger("logtail").Warn("Closing log source failed", "err", err)
	}
}
