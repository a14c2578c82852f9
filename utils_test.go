package main

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"devopsbot/internal/cmdexec"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type stubRunner struct {
	out []byte
	err error
}

func (s stubRunner) Exists(string) bool { return true }

func (s stubRunner) CombinedOutput(context.Context, string, ...string) ([]byte, error) {
	return s.out, s.err
}

func (s stubRunner) Output(context.Context, string, ...string) ([]byte, error) {
	return s.out, s.err
}

func TestDetectHostIP(t *testing.T) {
	cases := []struct {
		name   string
		runner stubRunner
		want   string
	}{
		{"first address", stubRunner{out: []byte("192.168.1.20 172.17.0.1 \n")}, "192.168.1.20"},
		{"empty", stubRunner{out: []byte("\n")}, ""},
		{"missing tool", stubRunner{err: cmdexec.ErrNotInstalled}, ""},
		{"failure", stubRunner{err: errors.New("exit status 1")}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defer cmdexec.SetRunner(tc.runner)()
			if got := detectHostIP(context.Background()); got != tc.want {
				t.Fatalf("detectHostIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSendMarkdownFallsBackToPlainText(t *testing.T) {
	bot := &rejectingBot{}
	if err := deliverMarkdown(bot, 1, "*bad"); err != nil {
		t.Fatalf("deliverMarkdown: %v", err)
	}
	if bot.calls != 2 || bot.lastMode != "" {
		t.Fatalf("calls = %d, mode = %q", bot.calls, bot.lastMode)
	}
}

// rejectingBot fails every Markdown send.
type rejectingBot struct {
	fakeBot
	calls    int
	lastMode string
}

func (b *rejectingBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.calls++
	m := c.(tgbotapi.MessageConfig)
	b.lastMode = m.ParseMode
	if m.ParseMode != "" {
		return tgbotapi.Message{}, errors.New("Bad Request: can't parse entities")
	}
	return b.fakeBot.Send(c)
}
