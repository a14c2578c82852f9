package main

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Command is the interface that all bot commands must implement. args has
// the routing host already removed.
type Command interface {
	Execute(ctx *AppContext, bot BotAPI, msg *tgbotapi.Message, args []string)
	Description() string
}

// CommandRegistry holds the commands in registration order.
type CommandRegistry struct {
	commands map[string]Command
	order    []string
}

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]Command),
	}
}

func (r *CommandRegistry) Register(name string, cmd Command) {
	if _, exists := r.commands[name]; !exists {
		r.order = append(r.order, name)
	}
	r.commands[name] = cmd
}

// Execute runs the command named by msg. It reports false when msg is not a
// registered command.
func (r *CommandRegistry) Execute(ctx *AppContext, bot BotAPI, msg *tgbotapi.Message, args []string) bool {
	if msg == nil {
		return false
	}
	cmdName := msg.Command()
	if cmdName == "" {
		return false
	}
	cmd, ok := r.commands[cmdName]
	if !ok {
		return false
	}
	cmd.Execute(ctx, bot, msg, args)
	return true
}

// BotCommands lists the registry for Telegram's command menu.
func (r *CommandRegistry) BotCommands() []tgbotapi.BotCommand {
	out := make([]tgbotapi.BotCommand, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, tgbotapi.BotCommand{Command: name, Description: r.commands[name].Description()})
	}
	return out
}
