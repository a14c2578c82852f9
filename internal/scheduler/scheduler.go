// Package scheduler runs the periodic alert check and the per-user log tail
// sessions.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"devopsbot/internal/alerts"
	"devopsbot/internal/logtail"
)

var (
	ErrAlreadyActive = errors.New("tail session already active")
	ErrNotFound      = errors.New("no active tail session")
	ErrClosed        = errors.New("scheduler closed")
)

const (
	DefaultCheckInterval   = 60 * time.Second
	DefaultCheckFirstDelay = 10 * time.Second
	DefaultAlertCooldown   = 300 * time.Second
	DefaultTailInterval    = 10 * time.Second
	DefaultTailFirstDelay  = 5 * time.Second
	DefaultTailMaxChars    = 3000
)

// Notifier hands text to the chat transport. Delivery is at most once.
type Notifier interface {
	Deliver(ctx context.Context, recipient int64, text string) error
}

// AlertChecker is the mutating side of the alert engine.
type AlertChecker interface {
	EvaluateAndFire(ctx context.Context, now time.Time, cooldown time.Duration) ([]alerts.Alert, error)
}

// Recorder receives job outcomes. *telemetry.Metrics satisfies it.
type Recorder interface {
	TickCompleted(job string, err error)
	TailSessions(n int)
}

type noopRecorder struct{}

func (noopRecorder) TickCompleted(string, error) {}
func (noopRecorder) TailSessions(int)            {}

type Config struct {
	CheckInterval   time.Duration
	CheckFirstDelay time.Duration
	// AlertCooldown may be zero, which only suppresses repeats at the same instant.
	AlertCooldown  time.Duration
	TailInterval   time.Duration
	TailFirstDelay time.Duration
	TailMaxChars   int
	// Operator receives every alert.
	Operator int64
	Header   alerts.Header
}

func (c Config) withDefaults() Config {
	if c.CheckInterval <= 0 {
		c.CheckInterval = DefaultCheckInterval
	}
	if c.CheckFirstDelay < 0 {
		c.CheckFirstDelay = DefaultCheckFirstDelay
	}
	if c.AlertCooldown < 0 {
		c.AlertCooldown = DefaultAlertCooldown
	}
	if c.TailInterval <= 0 {
		c.TailInterval = DefaultTailInterval
	}
	if c.TailFirstDelay < 0 {
		c.TailFirstDelay = DefaultTailFirstDelay
	}
	if c.TailMaxChars <= 0 {
		c.TailMaxChars = DefaultTailMaxChars
	}
	return c
}

type Deps struct {
	Alerts   AlertChecker
	Tails    logtail.Source
	Notifier Notifier
	Logger   *slog.Logger
	Recorder Recorder
	Now      func() time.Time
}

type Scheduler struct {
	cfg    Config
	alerts AlertChecker
	tails  logtail.Source
	notify Notifier
	log    *slog.Logger
	rec    Recorder
	now    func() time.Time

	base     context.Context
	stopBase context.CancelFunc
	wg       sync.WaitGroup

	mu       sync.Mutex
	sessions map[int64]*session
	closed   bool
}

func New(cfg Config, d Deps) *Scheduler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Recorder == nil {
		d.Recorder = noopRecorder{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	base, stop := context.WithCancel(context.Background())
	return &Scheduler{
		cfg:      cfg.withDefaults(),
		alerts:   d.Alerts,
		tails:    d.Tails,
		notify:   d.Notifier,
		log:      d.Logger,
		rec:      d.Recorder,
		now:      d.Now,
		base:     base,
		stopBase: stop,
		sessions: make(map[int64]*session),
	}
}

// Run drives the alert check until ctx is cancelled. The first check happens
// after CheckFirstDelay, then every CheckInterval.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("Alert loop started",
		"interval", s.cfg.CheckInterval,
		"first_delay", s.cfg.CheckFirstDelay,
		"cooldown", s.cfg.AlertCooldown)

	if !sleepWithContext(ctx, s.cfg.CheckFirstDelay) {
		return
	}
	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		s.checkAlerts(ctx)
		select {
		case <-ctx.Done():
			s.log.Info("Alert loop stopped")
			return
		case <-ticker.C:
		}
	}
}

// checkAlerts runs one tick. Nothing it does may stop the loop.
func (s *Scheduler) checkAlerts(ctx context.Context) {
	var tickErr error
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Panic recovered in alert check", "err", r, "stack", string(debug.Stack()))
			tickErr = errors.New("panic")
		}
		s.rec.TickCompleted("alerts", tickErr)
	}()

	fired, err := s.alerts.EvaluateAndFire(ctx, s.now(), s.cfg.AlertCooldown)
	if err != nil {
		tickErr = err
		s.log.Warn("Alert check skipped", "err", err)
		return
	}
	text, ok := alerts.Render(s.cfg.Header, fired)
	if !ok {
		return
	}
	if err := s.notify.Deliver(ctx, s.cfg.Operator, text); err != nil {
		tickErr = err
		s.log.Error("Alert delivery failed", "recipient", s.cfg.Operator, "err", err)
	}
}

// Close cancels every tail session and waits for their goroutines to exit.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	sessions := make([]*session, 0, len(s.sessions))
	for owner, sess := range s.sessions {
		sessions = append(sessions, sess)
		delete(s.sessions, owner)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.stop()
	}
	s.stopBase()
	s.wg.Wait()
	s.rec.TailSessions(0)
}

// Sessions returns a snapshot of the active tail sessions ordered by owner.
func (s *Scheduler) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Owner < out[j].Owner })
	return out
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
