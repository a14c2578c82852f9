// Package anomaly flags CPU samples that sit far above the recent baseline.
package anomaly

import (
	"math"
	"sync"
)

const (
	DefaultWindowSize = 100
	DefaultMinSamples = 20
	DefaultSigma      = 2.0

	// idleFloor keeps near-zero jitter on an idle host from registering.
	idleFloor = 20.0
)

// Status is the outcome of one verdict.
type Status int

const (
	Insufficient Status = iota
	Normal
	Anomalous
)

func (s Status) String() string {
	switch s {
	case Insufficient:
		return "insufficient"
	case Normal:
		return "normal"
	case Anomalous:
		return "anomalous"
	default:
		return "unknown"
	}
}

// Verdict describes how a sample compares to the window that preceded it.
// Samples counts that window. Threshold and Mean are zero while Status is
// Insufficient.
type Verdict struct {
	Status    Status
	Current   float64
	Threshold float64
	Mean      float64
	Samples   int
}

type Config struct {
	WindowSize int
	MinSamples int
	Sigma      float64
}

func (c Config) withDefaults() Config {
	if c.WindowSize <= 0 {
		c.WindowSize = DefaultWindowSize
	}
	if c.MinSamples <= 0 {
		c.MinSamples = DefaultMinSamples
	}
	if c.MinSamples > c.WindowSize {
		c.MinSamples = c.WindowSize
	}
	if c.Sigma <= 0 {
		c.Sigma = DefaultSigma
	}
	return c
}

// Detector keeps a FIFO ring of the most recent CPU samples.
type Detector struct {
	mu    sync.Mutex
	cfg   Config
	ring  []float64
	head  int // index of the oldest sample
	count int
}

func NewDetector(cfg Config) *Detector {
	cfg = cfg.withDefaults()
	return &Detector{
		cfg:  cfg,
		ring: make([]float64, cfg.WindowSize),
	}
}

// Ingest judges cpu against the samples seen so far, then appends it to the
// window, evicting the oldest sample when full.
func (d *Detector) Ingest(cpu float64) Verdict {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := d.judge(cpu, d.values())

	if d.count < len(d.ring) {
		d.ring[(d.head+d.count)%len(d.ring)] = cpu
		d.count++
	} else {
		d.ring[d.head] = cpu
		d.head = (d.head + 1) % len(d.ring)
	}
	return v
}

// Check returns the verdict Ingest would return for cpu without touching the
// window.
func (d *Detector) Check(cpu float64) Verdict {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.judge(cpu, d.values())
}

// Len reports how many samples the window currently holds.
func (d *Detector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// values returns the window oldest-first. Caller holds d.mu.
func (d *Detector) values() []float64 {
	out := make([]float64, 0, d.count)
	for i := 0; i < d.count; i++ {
		out = append(out, d.ring[(d.head+i)%len(d.ring)])
	}
	return out
}

func (d *Detector) judge(cpu float64, window []float64) Verdict {
	v := Verdict{Status: Insufficient, Current: cpu, Samples: len(window)}
	if len(window) < d.cfg.MinSamples {
		return v
	}

	mean, stdev := meanStdev(window)
	v.Mean = mean
	v.Threshold = mean + d.cfg.Sigma*stdev
	v.Status = Normal
	if cpu > v.Threshold && cpu > idleFloor {
		v.Status = Anomalous
	}
	return v
}

// meanStdev returns the arithmetic mean and the sample (n-1) standard
// deviation.
func meanStdev(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	if len(vals) < 2 {
		return mean, 0
	}

	var variance float64
	for _, v := range vals {
		diff := v - mean
		variance += diff * diff
	}
	return mean, math.Sqrt(variance / float64(len(vals)-1))
}
