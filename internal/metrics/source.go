// Package metrics reads instantaneous host metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devopsbot/internal/format"
	"devopsbot/internal/model"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// ErrUnavailable marks a failed OS query. Callers skip the current tick.
var ErrUnavailable = errors.New("metric unavailable")

// Source supplies a fresh MetricSample on each call.
type Source interface {
	Sample(ctx context.Context) (model.MetricSample, error)
}

// HostSource reads the local host through gopsutil.
type HostSource struct {
	DiskPath    string
	CPUInterval time.Duration
}

func NewHostSource(diskPath string, cpuInterval time.Duration) *HostSource {
	if diskPath == "" {
		diskPath = "/"
	}
	return &HostSource{DiskPath: diskPath, CPUInterval: cpuInterval}
}

func (h *HostSource) Sample(ctx context.Context) (model.MetricSample, error) {
	var s model.MetricSample

	c, err := cpu.PercentWithContext(ctx, h.CPUInterval, false)
	if err != nil {
		return s, fmt.Errorf("%w: cpu: %v", ErrUnavailable, err)
	}
	s.CPUPercent = format.SafeFloat(c, 0)

	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return s, fmt.Errorf("%w: memory: %v", ErrUnavailable, err)
	}
	s.RAM = model.Usage{
		Percent: v.UsedPercent,
		UsedGB:  model.BytesToGB(v.Used),
		TotalGB: model.BytesToGB(v.Total),
	}

	d, err := disk.UsageWithContext(ctx, h.DiskPath)
	if err != nil {
		return s, fmt.Errorf("%w: disk %s: %v", ErrUnavailable, h.DiskPath, err)
	}
	s.Disk = model.Usage{
		Percent: d.UsedPercent,
		UsedGB:  model.BytesToGB(d.Used),
		TotalGB: model.BytesToGB(d.Total),
	}

	// Load and uptime are informational; a platform without them still alerts.
	if l, err := load.AvgWithContext(ctx); err == nil {
		s.Load = [3]float64{l.Load1, l.Load5, l.Load15}
	}
	if up, err := host.UptimeWithContext(ctx); err == nil {
		s.Uptime = time.Duration(up) * time.Second
	}

	return s, nil
}
