package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"devopsbot/internal/format"
	"devopsbot/internal/scheduler"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TailCmd starts streaming a container's recent log lines to the chat.
// The host argument has already been consumed by routing.
type TailCmd struct{}

func (c *TailCmd) Execute(ctx *AppContext, bot BotAPI, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		sendMarkdown(bot, msg.Chat.ID, fmt.Sprintf("Usage: `/tail %s <container>`", ctx.Config.HostName))
		return
	}
	container := args[0]

	err := ctx.Scheduler.StartTail(msg.From.ID, msg.Chat.ID, container, ctx.Config.HostName)
	switch {
	case err == nil:
		sendText(bot, msg.Chat.ID, fmt.Sprintf("📜 Tailing %s on %s every %s. Use /stoptail to stop.",
			container, ctx.Config.HostName, format.FormatPeriod(ctx.Config.Tail.IntervalSeconds)))
	case errors.Is(err, scheduler.ErrAlreadyActive):
		cur, _ := ctx.Scheduler.Active(msg.From.ID)
		sendText(bot, msg.Chat.ID, fmt.Sprintf("⚠️ Already tailing %s (for %s). Use /stoptail first.",
			cur.Container, format.FormatDuration(time.Since(cur.Started))))
	default:
		slog.Error("Tail start failed", "container", container, "err", err)
		sendText(bot, msg.Chat.ID, "❌ Could not start tail: "+err.Error())
	}
}
func (c *TailCmd) Description() string { return "Stream container logs" }

// StopTailCmd stops the caller's session. A bare /stoptail reaches every
// host, so only the host holding a session answers it.
type StopTailCmd struct{}

func (c *StopTailCmd) Execute(ctx *AppContext, bot BotAPI, msg *tgbotapi.Message, args []string) {
	if err := ctx.Scheduler.StopTail(msg.From.ID); err != nil {
		if len(strings.Fields(msg.CommandArguments())) == 0 {
			slog.Debug("No tail session to stop", "user", msg.From.ID)
			return
		}
		sendText(bot, msg.Chat.ID, "ℹ️ No active tail session.")
		return
	}
	sendText(bot, msg.Chat.ID, "🛑 Tail stopped.")
}
func (c *StopTailCmd) Description() string { return "Stop streaming logs" }

type ContainersCmd struct{}

func (c *ContainersCmd) Execute(ctx *AppContext, bot BotAPI, msg *tgbotapi.Message, args []string) {
	cc, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	list, err := ctx.Tails.List(cc)
	if err != nil {
		slog.Warn("Container list failed", "err", err)
		sendText(bot, msg.Chat.ID, "❌ Docker is not reachable on "+ctx.Config.HostName)
		return
	}
	sendMarkdown(bot, msg.Chat.ID, getContainersText(ctx.Config.HostName, list))
}
func (c *ContainersCmd) Description() string { return "List containers" }
