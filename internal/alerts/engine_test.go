package alerts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"devopsbot/internal/anomaly"
	"devopsbot/internal/metrics"
	"devopsbot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu     sync.Mutex
	sample model.MetricSample
	err    error
}

func (f *fakeSource) Sample(context.Context) (model.MetricSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sample, f.err
}

func (f *fakeSource) set(cpu, ram, disk float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sample = model.MetricSample{
		CPUPercent: cpu,
		RAM:        model.Usage{Percent: ram},
		Disk:       model.Usage{Percent: disk},
	}
}

type fakeRecorder struct {
	samples   int
	fired     []string
	anomalies int
}

func (r *fakeRecorder) ObserveSample(model.MetricSample) { r.samples++ }
func (r *fakeRecorder) AlertFired(s string)              { r.fired = append(r.fired, s) }
func (r *fakeRecorder) AnomalyDetected()                 { r.anomalies++ }

func newTestEngine(src metrics.Source, rec Recorder) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(src, anomaly.NewDetector(anomaly.Config{}), logger, rec)
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCooldownScenario(t *testing.T) {
	src := &fakeSource{}
	src.set(86, 50, 50)
	e := newTestEngine(src, nil)
	cooldown := 300 * time.Second

	got, err := e.EvaluateAndFire(context.Background(), t0, cooldown)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, SignalCPU, got[0].Signal)
	assert.Equal(t, "🚨 ALERT: CPU > 85% (Current: 86.0%)", got[0].Message)
	assert.Equal(t, t0, e.LastFired(SignalCPU))

	got, err = e.EvaluateAndFire(context.Background(), t0.Add(100*time.Second), cooldown)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, t0, e.LastFired(SignalCPU), "cooldown resets only on firing")

	got, err = e.EvaluateAndFire(context.Background(), t0.Add(301*time.Second), cooldown)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, t0.Add(301*time.Second), e.LastFired(SignalCPU))
}

func TestCooldownBoundaryIsExclusive(t *testing.T) {
	src := &fakeSource{}
	src.set(10, 95, 10)
	e := newTestEngine(src, nil)
	cooldown := time.Minute

	got, _ := e.EvaluateAndFire(context.Background(), t0, cooldown)
	require.Len(t, got, 1)
	got, _ = e.EvaluateAndFire(context.Background(), t0.Add(cooldown), cooldown)
	assert.Empty(t, got, "exactly cooldown apart must not fire")
}

func TestAtMostOnceWithinCooldown(t *testing.T) {
	src := &fakeSource{}
	src.set(99, 99, 99)
	e := newTestEngine(src, nil)
	cooldown := 120 * time.Second

	counts := map[Signal]int{}
	for i := 0; i <= 120; i += 7 {
		got, err := e.EvaluateAndFire(context.Background(), t0.Add(time.Duration(i)*time.Second), cooldown)
		require.NoError(t, err)
		for _, a := range got {
			counts[a.Signal]++
		}
	}
	for _, sig := range Signals {
		assert.Equal(t, 1, counts[sig], "signal %s", sig)
	}
}

func TestSignalsAreIndependent(t *testing.T) {
	src := &fakeSource{}
	src.set(90, 50, 50)
	e := newTestEngine(src, nil)
	cooldown := 300 * time.Second

	got, _ := e.EvaluateAndFire(context.Background(), t0, cooldown)
	require.Len(t, got, 1)

	src.set(90, 95, 95)
	got, _ = e.EvaluateAndFire(context.Background(), t0.Add(10*time.Second), cooldown)
	require.Len(t, got, 2)
	assert.Equal(t, SignalRAM, got[0].Signal)
	assert.Equal(t, SignalDisk, got[1].Signal)
}

func TestEvaluateNowNeverMutates(t *testing.T) {
	src := &fakeSource{}
	src.set(99, 99, 99)
	rec := &fakeRecorder{}
	e := newTestEngine(src, rec)

	for i := 0; i < 5; i++ {
		st, err := e.EvaluateNow(context.Background())
		require.NoError(t, err)
		assert.Len(t, st.Alerts, 3)
	}
	for _, sig := range Signals {
		assert.Equal(t, time.Unix(0, 0), e.LastFired(sig), "signal %s", sig)
	}
	assert.Zero(t, e.detector.Len())
	assert.Zero(t, rec.samples)

	got, err := e.EvaluateAndFire(context.Background(), t0, 300*time.Second)
	require.NoError(t, err)
	assert.Len(t, got, 3, "status queries must not consume the cooldown")
	assert.Equal(t, []string{"cpu", "ram", "disk"}, rec.fired)
}

func TestZeroCooldownStillSuppressesSameInstant(t *testing.T) {
	src := &fakeSource{}
	src.set(99, 10, 10)
	e := newTestEngine(src, nil)

	got, _ := e.EvaluateAndFire(context.Background(), t0, 0)
	require.Len(t, got, 1)
	got, _ = e.EvaluateAndFire(context.Background(), t0, 0)
	assert.Empty(t, got)
	got, _ = e.EvaluateAndFire(context.Background(), t0.Add(time.Second), 0)
	assert.Len(t, got, 1)
}

func TestSourceErrorLeavesStateUntouched(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("%w: cpu: boom", metrics.ErrUnavailable)}
	e := newTestEngine(src, nil)

	_, err := e.EvaluateAndFire(context.Background(), t0, time.Minute)
	require.Error(t, err)
	assert.True(t, errors.Is(err, metrics.ErrUnavailable))
	assert.Equal(t, time.Unix(0, 0), e.LastFired(SignalCPU))
	assert.Zero(t, e.detector.Len())

	_, err = e.EvaluateNow(context.Background())
	assert.ErrorIs(t, err, metrics.ErrUnavailable)
}

func TestAnomalyRaisesCPULine(t *testing.T) {
	src := &fakeSource{}
	rec := &fakeRecorder{}
	e := newTestEngine(src, rec)
	cooldown := 300 * time.Second

	src.set(10, 10, 10)
	for i := 0; i < 20; i++ {
		got, err := e.EvaluateAndFire(context.Background(), t0.Add(time.Duration(i)*time.Minute), cooldown)
		require.NoError(t, err)
		require.Empty(t, got)
	}

	src.set(60, 10, 10)
	got, err := e.EvaluateAndFire(context.Background(), t0.Add(30*time.Minute), cooldown)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Anomaly)
	assert.Equal(t, SignalCPU, got[0].Signal)
	assert.Contains(t, got[0].Message, "ANOMALY")
	assert.Equal(t, 1, rec.anomalies)
}

func TestAnomalyBaselineExcludesCurrentSample(t *testing.T) {
	src := &fakeSource{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewEngine(src, anomaly.NewDetector(anomaly.Config{Sigma: 5}), logger, nil)

	src.set(10, 10, 10)
	for i := 0; i < 20; i++ {
		_, err := e.EvaluateAndFire(context.Background(), t0.Add(time.Duration(i)*time.Minute), time.Minute)
		require.NoError(t, err)
	}

	src.set(80, 10, 10)
	st, err := e.EvaluateNow(context.Background())
	require.NoError(t, err)
	require.Len(t, st.Alerts, 1)
	assert.InDelta(t, 10, st.Anomaly.Mean, 1e-9)

	got, err := e.EvaluateAndFire(context.Background(), t0.Add(time.Hour), time.Minute)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Anomaly)
	assert.InDelta(t, 10, got[0].Threshold, 1e-9)
	assert.Equal(t, "📈 ANOMALY: CPU spike 80.0% (baseline 10.0%, limit 10.0%)", got[0].Message)
}

func TestThresholdWinsOverAnomaly(t *testing.T) {
	v := anomaly.Verdict{Status: anomaly.Anomalous, Current: 95, Threshold: 30, Mean: 10}
	got := conditions(model.MetricSample{CPUPercent: 95}, v)
	require.Len(t, got, 1)
	assert.False(t, got[0].Anomaly)
	assert.Equal(t, CPUThreshold, got[0].Threshold)
}

func TestRender(t *testing.T) {
	_, ok := Render(Header{Host: "web-1"}, nil)
	assert.False(t, ok)

	alerts := []Alert{{Message: "a"}, {Message: "b"}}
	text, ok := Render(Header{}, alerts)
	require.True(t, ok)
	assert.Equal(t, "a\nb", text)

	text, _ = Render(Header{Host: "web-1", IP: "10.0.0.5"}, alerts)
	assert.Equal(t, "🖥 web-1 (10.0.0.5)\na\nb", text)

	text, _ = Render(Header{Host: "web-1"}, alerts[:1])
	assert.Equal(t, "🖥 web-1\na", text)
}
