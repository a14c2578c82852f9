// Package telemetry exports bot and host gauges to Prometheus.
package telemetry

import (
	"devopsbot/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "devopsbot"

// Metrics owns a private registry so tests and multiple instances never
// collide on the global one. All methods are safe on a nil receiver.
type Metrics struct {
	reg *prometheus.Registry

	cpu, ram, disk prometheus.Gauge
	samples        prometheus.Counter
	alertsFired    *prometheus.CounterVec
	anomalies      prometheus.Counter
	ticks          *prometheus.CounterVec
	tailSessions   prometheus.Gauge
	commands       *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		cpu: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_percent",
			Help:      "Last sampled CPU utilisation",
		}),
		ram: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ram_percent",
			Help:      "Last sampled RAM utilisation",
		}),
		disk: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "disk_percent",
			Help:      "Last sampled disk utilisation",
		}),
		samples: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Metric samples taken by the alert loop",
		}),
		alertsFired: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_fired_total",
			Help:      "Alerts fired past their cooldown",
		}, []string{"signal"}),
		anomalies: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_detected_total",
			Help:      "CPU samples judged anomalous",
		}),
		ticks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_ticks_total",
			Help:      "Scheduled job executions",
		}, []string{"job", "result"}),
		tailSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tail_sessions",
			Help:      "Active log tail sessions",
		}),
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Chat commands handled",
		}, []string{"command"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) ObserveSample(s model.MetricSample) {
	if m == nil {
		return
	}
	m.samples.Inc()
	m.cpu.Set(s.CPUPercent)
	m.ram.Set(s.RAM.Percent)
	m.disk.Set(s.Disk.Percent)
}

func (m *Metrics) AlertFired(signal string) {
	if m == nil {
		return
	}
	m.alertsFired.WithLabelValues(signal).Inc()
}

func (m *Metrics) AnomalyDetected() {
	if m == nil {
		return
	}
	m.anomalies.Inc()
}

func (m *Metrics) TickCompleted(job string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ticks.WithLabelValues(job, result).Inc()
}

func (m *Metrics) TailSessions(n int) {
	if m == nil {
		return
	}
	m.tailSessions.Set(float64(n))
}

func (m *Metrics) CommandHandled(command string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command).Inc()
}
