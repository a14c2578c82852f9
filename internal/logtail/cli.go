package logtail

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"devopsbot/internal/cmdexec"
	"devopsbot/internal/model"
)

// CLISource shells out to the docker binary.
type CLISource struct{}

func NewCLISource() *CLISource { return &CLISource{} }

func (CLISource) Since(ctx context.Context, name string, d time.Duration) (string, error) {
	out, err := cmdexec.CombinedOutput(ctx, "docker", "logs", "--since", sinceArg(d), name)
	if err != nil {
		text := strings.TrimSpace(string(out))
		if strings.Contains(text, "No such container") {
			return "", fmt.Errorf("%w: %s", ErrContainerNotFound, name)
		}
		return "", &ProcessError{Output: text, Err: err}
	}
	return string(out), nil
}

func (CLISource) List(ctx context.Context) ([]model.ContainerInfo, error) {
	out, err := cmdexec.CombinedOutput(ctx, "docker", "ps", "-a", "--format", "{{.Names}}|{{.State}}|{{.Image}}|{{.ID}}")
	if err != nil {
		return nil, &ProcessError{Output: strings.TrimSpace(string(out)), Err: err}
	}
	return parsePS(string(out)), nil
}

func (CLISource) Close() error { return nil }

func parsePS(out string) []model.ContainerInfo {
	var containers []model.ContainerInfo
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.Split(line, "|")
		if len(parts) < 4 {
			continue
		}
		containers = append(containers, model.ContainerInfo{
			Name:    parts[0],
			State:   parts[1],
			Image:   parts[2],
			ID:      parts[3],
			Running: parts[1] == "running",
		})
	}
	sort.Slice(containers, func(i, j int) bool { return containers[i].Name < containers[j].Name })
	return containers
}
