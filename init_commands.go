package main

import (
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func SetupCommandRegistry() *CommandRegistry {
	r := NewCommandRegistry()

	r.Register("start", &StartCmd{})
	r.Register("help", &HelpCmd{})

	// System
	r.Register("status", &StatusCmd{})
	r.Register("cpu", &CPUCmd{})
	r.Register("ram", &RAMCmd{})
	r.Register("disk", &DiskCmd{})
	r.Register("uptime", &UptimeCmd{})
	r.Register("alerts", &AlertsCmd{})

	// Docker
	r.Register("tail", &TailCmd{})
	r.Register("stoptail", &StopTailCmd{})
	r.Register("containers", &ContainersCmd{})

	return r
}

// registerBotCommands publishes the command menu shown next to the input box.
func registerBotCommands(bot BotAPI, r *CommandRegistry) {
	if bot == nil {
		return
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(r.BotCommands()...)); err != nil {
		slog.Warn("Failed to register bot commands", "err", err)
	}
}
