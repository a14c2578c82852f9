package logtail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"devopsbot/internal/model"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
)

// dockerAPI is the subset of *client.Client used here.
type dockerAPI interface {
	ContainerLogs(ctx context.Context, container string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	Close() error
}

// DockerSource reads logs from the Docker Engine API.
type DockerSource struct {
	api dockerAPI
	log *slog.Logger
}

// NewDockerSource connects via DOCKER_HOST or the default socket.
func NewDockerSource(logger *slog.Logger) (*DockerSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}
	logger.Debug("Docker client created")
	return &DockerSource{api: cli, log: logger}, nil
}

func (s *DockerSource) Since(ctx context.Context, name string, d time.Duration) (string, error) {
	info, err := s.api.ContainerInspect(ctx, name)
	if err != nil {
		return "", s.wrap(name, err)
	}

	reader, err := s.api.ContainerLogs(ctx, name, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Since:      sinceArg(d),
	})
	if err != nil {
		return "", s.wrap(name, err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if info.Config != nil && info.Config.Tty {
		_, err = io.Copy(&buf, reader)
	} else {
		// Without a TTY the stream is multiplexed with 8-byte frame headers.
		_, err = stdcopy.StdCopy(&buf, &buf, reader)
	}
	if err != nil {
		return "", &ProcessError{Output: buf.String(), Err: fmt.Errorf("read logs: %w", err)}
	}
	return buf.String(), nil
}

func (s *DockerSource) List(ctx context.Context) ([]model.ContainerInfo, error) {
	list, err := s.api.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, &ProcessError{Err: fmt.Errorf("list containers: %w", err)}
	}

	out := make([]model.ContainerInfo, 0, len(list))
	for _, c := range list {
		name := c.ID
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		id := c.ID
		if len(id) > 12 {
			id = id[:12]
		}
		out = append(out, model.ContainerInfo{
			Name:    name,
			State:   c.State,
			Image:   c.Image,
			ID:      id,
			Running: c.State == "running",
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *DockerSource) Close() error {
	return s.api.Close()
}

func (s *DockerSource) wrap(name string, err error) error {
	if errdefs.IsNotFound(err) {
		return fmt.Errorf("%w: %s", ErrContainerNotFound, name)
	}
	s.log.Debug("Docker API call failed", "container", name, "err", err)
	return &ProcessError{Err: err}
}
