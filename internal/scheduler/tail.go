package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"devopsbot/internal/format"
	"devopsbot/internal/logtail"
)

// Session describes one user's active log tail.
type Session struct {
	Owner     int64
	ChatID    int64
	Container string
	Host      string
	Started   time.Time
}

type session struct {
	Session
	ctx    context.Context
	cancel context.CancelFunc

	// deliverMu orders delivery against cancellation: once stop returns,
	// nothing more is delivered for this session.
	deliverMu sync.Mutex
	lastErr   string
}

func (t *session) stop() {
	t.deliverMu.Lock()
	t.cancel()
	t.deliverMu.Unlock()
}

// StartTail registers a tail session for owner and starts polling container.
// Chunks go to chatID. A second session for the same owner is rejected with
// ErrAlreadyActive and the running one is left alone.
func (s *Scheduler) StartTail(owner, chatID int64, container, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if cur, ok := s.sessions[owner]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyActive, cur.Container)
	}

	ctx, cancel := context.WithCancel(s.base)
	sess := &session{
		Session: Session{
			Owner:     owner,
			ChatID:    chatID,
			Container: container,
			Host:      host,
			Started:   s.now(),
		},
		ctx:    ctx,
		cancel: cancel,
	}
	s.sessions[owner] = sess
	s.rec.TailSessions(len(s.sessions))

	s.wg.Add(1)
	go s.runTail(sess)

	s.log.Info("Tail started", "owner", owner, "container", container, "host", host)
	return nil
}

// StopTail cancels the owner's session. It returns ErrNotFound when there is
// none.
func (s *Scheduler) StopTail(owner int64) error {
	s.mu.Lock()
	sess, ok := s.sessions[owner]
	if ok {
		delete(s.sessions, owner)
		s.rec.TailSessions(len(s.sessions))
	}
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	sess.stop()
	s.log.Info("Tail stopped", "owner", owner, "container", sess.Container)
	return nil
}

// Active reports the owner's session, if any.
func (s *Scheduler) Active(owner int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[owner]
	if !ok {
		return Session{}, false
	}
	return sess.Session, true
}

func (s *Scheduler) runTail(sess *session) {
	defer s.wg.Done()

	if !sleepWithContext(sess.ctx, s.cfg.TailFirstDelay) {
		return
	}
	ticker := time.NewTicker(s.cfg.TailInterval)
	defer ticker.Stop()

	for {
		s.tailTick(sess)
		select {
		case <-sess.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) tailTick(sess *session) {
	var tickErr error
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Panic recovered in tail", "owner", sess.Owner, "err", r, "stack", string(debug.Stack()))
			tickErr = errors.New("panic")
		}
		s.rec.TickCompleted("tail", tickErr)
	}()

	out, err := s.tails.Since(sess.ctx, sess.Container, s.cfg.TailInterval)
	if sess.ctx.Err() != nil {
		return
	}

	var text string
	if err != nil {
		tickErr = err
		s.log.Warn("Tail fetch failed", "owner", sess.Owner, "container", sess.Container, "err", err)
		msg := tailErrorText(sess.Session, err)
		// Report a persisting failure once rather than every tick.
		if msg == sess.lastErr {
			return
		}
		sess.lastErr = msg
		text = msg
	} else {
		sess.lastErr = ""
		out = strings.TrimSpace(out)
		if out == "" {
			return
		}
		text = tailChunk(sess.Session, format.TailChars(out, s.cfg.TailMaxChars))
	}

	s.deliver(sess, text)
}

func (s *Scheduler) deliver(sess *session, text string) {
	sess.deliverMu.Lock()
	defer sess.deliverMu.Unlock()

	if sess.ctx.Err() != nil {
		return
	}
	if err := s.notify.Deliver(sess.ctx, sess.ChatID, text); err != nil {
		s.log.Error("Tail delivery failed", "owner", sess.Owner, "err", err)
	}
}

// tailChunk formats output for legacy Markdown. Names go in code spans so
// underscores in them are not read as entities.
func tailChunk(sess Session, body string) string {
	return fmt.Sprintf("📜 `%s` @ `%s`\n```\n%s\n```", sess.Container, sess.Host, body)
}

func tailErrorText(sess Session, err error) string {
	var pe *logtail.ProcessError
	switch {
	case errors.Is(err, logtail.ErrContainerNotFound):
		return fmt.Sprintf("⚠️ Container `%s` not found on `%s`", sess.Container, sess.Host)
	case errors.As(err, &pe) && pe.Output != "":
		return fmt.Sprintf("⚠️ Log tail failed: %s", format.Truncate(pe.Output, 300))
	default:
		return fmt.Sprintf("⚠️ Log tail failed: %v", err)
	}
}
