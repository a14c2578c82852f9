// Package logtail fetches recent container output for tail sessions and lists
// the containers that can be tailed.
package logtail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"devopsbot/internal/model"
)

var ErrContainerNotFound = errors.New("container not found")

// ProcessError wraps a failed log retrieval together with whatever the
// underlying process or daemon printed.
type ProcessError struct {
	Output string
	Err    error
}

func (e *ProcessError) Error() string {
	if e.Output == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Output)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Source returns container output produced within the last d. An empty string
// means nothing was written.
type Source interface {
	Since(ctx context.Context, container string, d time.Duration) (string, error)
}

// Provider is a Source that can also enumerate containers.
type Provider interface {
	Source
	List(ctx context.Context) ([]model.ContainerInfo, error)
	Close() error
}

const (
	KindAPI = "api"
	KindCLI = "cli"
)

// Open returns the provider for kind. An unknown kind or a Docker client that
// cannot be built falls back to the docker CLI.
func Open(kind string, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.EqualFold(kind, KindCLI) {
		return NewCLISource()
	}
	src, err := NewDockerSource(logger)
	if err != nil {
		logger.Warn("Docker API unavailable, using docker CLI", "err", err)
		return NewCLISource()
	}
	return src
}

// sinceArg renders d as a relative --since value, never below one second.
func sinceArg(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("%ds", secs)
}
