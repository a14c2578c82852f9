package cmdexec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

var (
	ErrUnsupportedOS = errors.New("unsupported OS")
	ErrNotInstalled  = errors.New("command not installed")
)

// Runner abstracts external command execution.
type Runner interface {
	Exists(name string) bool
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

type defaultRunner struct{}

func (defaultRunner) Exists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func (defaultRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	if err := preflight(name); err != nil {
		return nil, err
	}
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func (defaultRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	if err := preflight(name); err != nil {
		return nil, err
	}
	return exec.CommandContext(ctx, name, args...).Output()
}

func preflight(name string) error {
	if runtime.GOOS == "windows" {
		return ErrUnsupportedOS
	}
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}
	return nil
}

var runner Runner = defaultRunner{}

// SetRunner swaps the active runner. Returns a restore func.
func SetRunner(r Runner) (restore func()) {
	prev := runner
	runner = r
	return func() { runner = prev }
}

func Exists(name string) bool {
	return runner.Exists(name)
}

func CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return runner.CombinedOutput(ctx, name, args...)
}

func Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return runner.Output(ctx, name, args...)
}
