package main

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"devopsbot/internal/model"
	"devopsbot/internal/telemetry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// fakeBot records outgoing messages. Tail chunks arrive from scheduler
// goroutines, so access is locked.
type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	b.nextID++
	return tgbotapi.Message{MessageID: b.nextID, Chat: &tgbotapi.Chat{ID: 1}}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{}, nil
}

func (b *fakeBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, c := range b.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (b *fakeBot) last() string {
	texts := b.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// waitFor polls until some sent text contains substr.
func (b *fakeBot) waitFor(t *testing.T, substr string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, text := range b.texts() {
			if strings.Contains(text, substr) {
				return text
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no message containing %q, got %q", substr, b.texts())
	return ""
}

type fakeSource struct {
	sample model.MetricSample
	err    error
}

func (f *fakeSource) Sample(context.Context) (model.MetricSample, error) {
	return f.sample, f.err
}

type fakeTails struct {
	mu         sync.Mutex
	logs       map[string]string
	containers []model.ContainerInfo
	listErr    error
	closed     bool
}

func (f *fakeTails) Since(_ context.Context, name string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out, ok := f.logs[name]
	if !ok {
		return "", errors.New("container not found")
	}
	return out, nil
}

func (f *fakeTails) List(context.Context) ([]model.ContainerInfo, error) {
	return f.containers, f.listErr
}

func (f *fakeTails) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

const (
	testOperator = int64(1)
	testHost     = "web-1"
)

func newTestConfig() *Config {
	cfg := &Config{
		BotToken:       "token",
		TelegramUserID: testOperator,
		AllowedUserIDs: []int64{2},
		HostName:       testHost,
		HostIP:         "10.0.0.5",
	}
	applyConfigDefaults(cfg)
	cfg.Tail.FirstDelaySeconds = 0
	cfg.Tail.IntervalSeconds = 3600
	return cfg
}

func newTestAppContext(t *testing.T, bot BotAPI, src *fakeSource, tails *fakeTails) *AppContext {
	t.Helper()
	if src == nil {
		src = &fakeSource{sample: model.MetricSample{
			CPUPercent: 12.5,
			RAM:        model.Usage{Percent: 40, UsedGB: 3.2, TotalGB: 8},
			Disk:       model.Usage{Percent: 55, UsedGB: 110, TotalGB: 200},
			Load:       [3]float64{0.5, 0.4, 0.3},
			Uptime:     26 * time.Hour,
		}}
	}
	if tails == nil {
		tails = &fakeTails{logs: map[string]string{}}
	}
	app := newAppContext(newTestConfig(), src, tails, telegramNotifier{bot: bot}, telemetry.New())
	t.Cleanup(app.Close)
	return app
}

func commandMessage(from int64, text string) *tgbotapi.Message {
	cmd := strings.Fields(text)[0]
	return &tgbotapi.Message{
		Text:     text,
		From:     &tgbotapi.User{ID: from},
		Chat:     &tgbotapi.Chat{ID: from},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}
}
