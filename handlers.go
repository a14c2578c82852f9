package main

import (
	"log/slog"
	"runtime/debug"
	"strings"

	"devopsbot/internal/router"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const accessDeniedText = "⛔ Access denied. You are not authorized."

// handleUpdate processes one Telegram update. Panics are contained so a
// single bad message cannot take the bot down.
func handleUpdate(ctx *AppContext, bot BotAPI, reg *CommandRegistry, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic recovered in update handler", "err", r, "stack", string(debug.Stack()))
		}
	}()
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	handleCommand(ctx, bot, reg, update.Message)
}

// handleCommand applies host routing, then access control, then dispatch.
// Instances that are not addressed stay silent.
func handleCommand(ctx *AppContext, bot BotAPI, reg *CommandRegistry, msg *tgbotapi.Message) {
	if ctx == nil || msg == nil || msg.Chat == nil {
		return
	}

	args := strings.Fields(msg.CommandArguments())
	host := ctx.Config.HostName
	if !router.IsTarget(args, host) {
		slog.Debug("Command addressed to another host", "command", msg.Command(), "target", args[0])
		return
	}
	args = router.Strip(args, host)

	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}
	if !ctx.Config.IsAuthorized(userID) {
		slog.Warn("Unauthorized access attempt", "user", userID, "command", msg.Command())
		sendText(bot, msg.Chat.ID, accessDeniedText)
		return
	}

	if reg.Execute(ctx, bot, msg, args) {
		ctx.Telemetry.CommandHandled(msg.Command())
		slog.Info("Command handled", "user", userID, "command", msg.Command())
		return
	}
	sendText(bot, msg.Chat.ID, "❓ Unknown command. Use /help")
}
