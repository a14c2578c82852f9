package main

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sendMarkdown sends text as Markdown and retries as plain text when
// Telegram rejects the entities.
func sendMarkdown(bot BotAPI, chatID int64, text string) {
	if err := deliverMarkdown(bot, chatID, text); err != nil {
		slog.Error("Telegram send failed", "chat", chatID, "err", err)
	}
}

func sendText(bot BotAPI, chatID int64, text string) {
	safeSend(bot, tgbotapi.NewMessage(chatID, text))
}

func deliverMarkdown(bot BotAPI, chatID int64, text string) error {
	if bot == nil {
		return fmt.Errorf("no bot")
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := bot.Send(msg); err != nil {
		slog.Warn("Error sending Markdown message. Retrying as plain text", "err", err)
		msg.ParseMode = ""
		if _, err := bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// telegramNotifier delivers scheduler output (alerts and tail chunks).
type telegramNotifier struct {
	bot BotAPI
}

func (n telegramNotifier) Deliver(_ context.Context, recipient int64, text string) error {
	return deliverMarkdown(n.bot, recipient, text)
}
