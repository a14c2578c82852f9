package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"devopsbot/internal/cmdexec"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// safeSend sends a Telegram message and logs any error
func safeSend(bot BotAPI, msg tgbotapi.Chattable) {
	if bot == nil {
		return
	}
	if _, err := bot.Send(msg); err != nil {
		slog.Error("Telegram send failed", "err", err)
	}
}

// detectHostIP returns the first address printed by `hostname -I`, or "" when
// it cannot be determined.
func detectHostIP(ctx context.Context) string {
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	out, err := cmdexec.Output(c, "hostname", "-I")
	if err != nil {
		slog.Debug("Host IP detection failed", "err", err)
		return ""
	}
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
