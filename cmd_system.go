package main

import (
	"context"
	"log/slog"
	"time"

	"devopsbot/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const commandTimeout = 15 * time.Second

// sample reads the host for a one-off reply. On failure the user gets a
// short notice and ok is false.
func sample(ctx *AppContext, bot BotAPI, chatID int64) (model.MetricSample, bool) {
	c, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	s, err := ctx.Source.Sample(c)
	if err != nil {
		slog.Warn("Metric sample failed", "err", err)
		sendText(bot, chatID, metricsUnavailableText)
		return s, false
	}
	return s, true
}

type StartCmd struct{}

func (c *StartCmd) Execute(ctx *AppContext, bot BotAPI, msg *tgbotapi.Message, args []string) {
	sendText(bot, msg.Chat.ID, getStartText(msg.From.ID))
}
func (c *StartCmd) Description() string { return "Check access" }

type HelpCmd struct{}

func (c *HelpCmd) Execute(ctx *AppContext, bot BotAPI, msg *tgbotapi.Message, args []string) {
	sendMarkdown(bot, msg.Chat.ID, getHelpText(ctx.Config.HostName))
}
func (c *HelpCmd) Description() string { return "List commands" }

type StatusCmd struct{}

func (c *StatusCmd) Execute(ctx *AppContext, bot BotAPI, msg *tgbotapi.Message, args []string) {
	if s, ok := sample(ctx, bot, msg.Chat.ID); ok {
		footer := getBotFooter(time.Since(ctx.StartTime), len(ctx.Scheduler.Sessions()))
		sendMarkdown(bot, msg.Chat.ID, getStatusText(ctx.Header, s)+"\n\n"+footer)
	}
}
func (c *StatusCmd) Description() string { return "Server health summary" }

type CPUCmd struct{}

func (c *CPUCmd) Execute(ctx *AppContext, bot BotAPI, msg *tgbotapi.Message, args []string) {
	if s, ok := sample(ctx, bot, msg.Chat.ID); ok {
		sendText(bot, msg.Chat.ID, getCPUText(s))
	}
}
func (c *CPUCmd) Description() string { return "CPU usage" }

type RAMCmd struct{}

func (c *RAMCmd) Execute(ctx *AppContext, bot BotAPI, msg *tgbotapi.Message, args []string) {
	if s, ok := sample(ctx, bot, msg.Chat.ID); ok {
		sendText(bot, msg.Chat.ID, getRAMText(s))
	}
}
func (c *RAMCmd) Description() string { return "Memory usage" }

type DiskCmd struct{}

func (c *DiskCmd) Execute(ctx *AppContext, bot BotAPI, msg *tgbotapi.Message, args []string) {
	if s, ok := sample(ctx, bot, msg.Chat.ID); ok {
		sendText(bot, msg.Chat.ID, getDiskText(s))
	}
}
func (c *DiskCmd) Description() string { return "Disk usage" }

type UptimeCmd struct{}

func (c *UptimeCmd) Execute(ctx *AppContext, bot BotAPI, msg *tgbotapi.Message, args []string) {
	if s, ok := sample(ctx, bot, msg.Chat.ID); ok {
		sendText(bot, msg.Chat.ID, getUptimeText(s))
	}
}
func (c *UptimeCmd) Description() string { return "Server uptime" }

// AlertsCmd shows what would fire right now. It never touches cooldowns.
type AlertsCmd struct{}

func (c *AlertsCmd) Execute(ctx *AppContext, bot BotAPI, msg *tgbotapi.Message, args []string) {
	cc, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	st, err := ctx.Engine.EvaluateNow(cc)
	if err != nil {
		slog.Warn("Alert status failed", "err", err)
		sendText(bot, msg.Chat.ID, metricsUnavailableText)
		return
	}
	sendMarkdown(bot, msg.Chat.ID, getAlertsText(ctx.Header, st))
}
func (c *AlertsCmd) Description() string { return "Active alerts" }
