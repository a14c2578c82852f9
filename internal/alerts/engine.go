// Package alerts turns metric samples into alert lines with per-signal
// cooldown suppression.
package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"devopsbot/internal/anomaly"
	"devopsbot/internal/metrics"
	"devopsbot/internal/model"
)

type Signal string

const (
	SignalCPU  Signal = "cpu"
	SignalRAM  Signal = "ram"
	SignalDisk Signal = "disk"
)

// Signals lists every signal in evaluation order.
var Signals = []Signal{SignalCPU, SignalRAM, SignalDisk}

const (
	CPUThreshold  = 85.0
	RAMThreshold  = 90.0
	DiskThreshold = 90.0
)

// Alert is one firing signal. Anomaly is set when a CPU line was raised by
// the statistical detector rather than the fixed threshold.
type Alert struct {
	Signal    Signal
	Value     float64
	Threshold float64
	Anomaly   bool
	Message   string
}

// Header identifies the host an alert came from.
type Header struct {
	Host string
	IP   string
}

// Recorder receives evaluation events. *telemetry.Metrics satisfies it.
type Recorder interface {
	ObserveSample(s model.MetricSample)
	AlertFired(signal string)
	AnomalyDetected()
}

// CooldownState maps each signal to the last time it fired.
type CooldownState map[Signal]time.Time

func newCooldownState() CooldownState {
	epoch := time.Unix(0, 0)
	return CooldownState{SignalCPU: epoch, SignalRAM: epoch, SignalDisk: epoch}
}

// Status is a read-only view of the host produced by EvaluateNow.
type Status struct {
	Sample  model.MetricSample
	Alerts  []Alert
	Anomaly anomaly.Verdict
}

type Engine struct {
	source   metrics.Source
	detector *anomaly.Detector
	log      *slog.Logger
	rec      Recorder

	mu        sync.Mutex
	cooldowns CooldownState
}

func NewEngine(source metrics.Source, detector *anomaly.Detector, logger *slog.Logger, rec Recorder) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if detector == nil {
		detector = anomaly.NewDetector(anomaly.Config{})
	}
	return &Engine{
		source:    source,
		detector:  detector,
		log:       logger,
		rec:       rec,
		cooldowns: newCooldownState(),
	}
}

// EvaluateAndFire samples the host, ingests CPU into the anomaly window and
// returns the signals whose condition holds and whose last firing is more
// than cooldown before now. Each returned signal has its cooldown reset to now.
func (e *Engine) EvaluateAndFire(ctx context.Context, now time.Time, cooldown time.Duration) ([]Alert, error) {
	s, err := e.source.Sample(ctx)
	if err != nil {
		return nil, err
	}
	if e.rec != nil {
		e.rec.ObserveSample(s)
	}

	verdict := e.detector.Ingest(s.CPUPercent)
	if verdict.Status == anomaly.Anomalous && e.rec != nil {
		e.rec.AnomalyDetected()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var fired []Alert
	for _, a := range conditions(s, verdict) {
		if now.Sub(e.cooldowns[a.Signal]) <= cooldown {
			continue
		}
		e.cooldowns[a.Signal] = now
		fired = append(fired, a)
		e.log.Warn("Alert triggered", "signal", string(a.Signal), "value", a.Value, "anomaly", a.Anomaly)
		if e.rec != nil {
			e.rec.AlertFired(string(a.Signal))
		}
	}
	return fired, nil
}

// EvaluateNow reports the conditions that currently hold, ignoring cooldowns.
// It never writes cooldown state or the anomaly window.
func (e *Engine) EvaluateNow(ctx context.Context) (Status, error) {
	s, err := e.source.Sample(ctx)
	if err != nil {
		return Status{}, err
	}
	verdict := e.detector.Check(s.CPUPercent)
	return Status{Sample: s, Alerts: conditions(s, verdict), Anomaly: verdict}, nil
}

// LastFired returns when signal last fired; epoch zero means never.
func (e *Engine) LastFired(signal Signal) time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cooldowns[signal]
}

func conditions(s model.MetricSample, v anomaly.Verdict) []Alert {
	var out []Alert
	switch {
	case s.CPUPercent > CPUThreshold:
		out = append(out, Alert{
			Signal:    SignalCPU,
			Value:     s.CPUPercent,
			Threshold: CPUThreshold,
			Message:   fmt.Sprintf("🚨 ALERT: CPU > %.0f%% (Current: %.1f%%)", CPUThreshold, s.CPUPercent),
		})
	case v.Status == anomaly.Anomalous:
		out = append(out, Alert{
			Signal:    SignalCPU,
			Value:     s.CPUPercent,
			Threshold: v.Threshold,
			Anomaly:   true,
			Message: fmt.Sprintf("📈 ANOMALY: CPU spike %.1f%% (baseline %.1f%%, limit %.1f%%)",
				s.CPUPercent, v.Mean, v.Threshold),
		})
	}
	if s.RAM.Percent > RAMThreshold {
		out = append(out, Alert{
			Signal:    SignalRAM,
			Value:     s.RAM.Percent,
			Threshold: RAMThreshold,
			Message:   fmt.Sprintf("🚨 ALERT: RAM > %.0f%% (Current: %.1f%%)", RAMThreshold, s.RAM.Percent),
		})
	}
	if s.Disk.Percent > DiskThreshold {
		out = append(out, Alert{
			Signal:    SignalDisk,
			Value:     s.Disk.Percent,
			Threshold: DiskThreshold,
			Message:   fmt.Sprintf("🚨 ALERT: Disk > %.0f%% (Current: %.1f%%)", DiskThreshold, s.Disk.Percent),
		})
	}
	return out
}

// Render joins alert messages under the host header. ok is false when there
// is nothing to report.
func Render(h Header, alerts []Alert) (text string, ok bool) {
	if len(alerts) == 0 {
		return "", false
	}
	var b strings.Builder
	if line := h.String(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	for i, a := range alerts {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(a.Message)
	}
	return b.String(), true
}

func (h Header) String() string {
	switch {
	case h.Host == "":
		return ""
	case h.IP == "":
		return "🖥 " + h.Host
	default:
		return fmt.Sprintf("🖥 %s (%s)", h.Host, h.IP)
	}
}
