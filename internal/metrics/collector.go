// Package metrics aggregates batch outcomes into a Prometheus registry that
// is written out as a node-exporter textfile at the end of a run.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/technosupport/mxtools/internal/batch"
)

// Collector is a batch.Observer feeding its own registry.
type Collector struct {
	registry *prometheus.Registry

	mu sync.Mutex

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	lastRun    *prometheus.GaugeVec
	devices    *prometheus.GaugeVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{registry: reg}

	c.operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mx_device_operations_total",
		Help: "Device operations by tool and outcome kind",
	}, []string{"tool", "kind"})
	reg.MustRegister(c.operations)

	c.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mx_device_operation_duration_seconds",
		Help:    "Time spent on one device",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"tool"})
	reg.MustRegister(c.duration)

	c.lastRun = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mx_last_run_timestamp_seconds",
		Help: "Unix time the last run of a tool finished",
	}, []string{"tool"})
	reg.MustRegister(c.lastRun)

	c.devices = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mx_last_run_devices",
		Help: "Devices in the last run by state",
	}, []string{"tool", "state"})
	reg.MustRegister(c.devices)

	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Observe(r batch.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.operations.WithLabelValues(r.Tool, string(r.Kind)).Inc()
	c.duration.WithLabelValues(r.Tool).Observe(r.Duration.Seconds())
}

// Finish records the run totals.
func (c *Collector) Finish(rep batch.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastRun.WithLabelValues(rep.Tool).SetToCurrentTime()
	c.devices.WithLabelValues(rep.Tool, "ok").Set(float64(rep.Count(batch.KindOK)))
	c.devices.WithLabelValues(rep.Tool, "failed").Set(float64(rep.Failures()))
	c.devices.WithLabelValues(rep.Tool, "skipped").Set(float64(rep.Count(batch.KindSkipped)))
	c.devices.WithLabelValues(rep.Tool, "disabled").Set(float64(rep.Disabled))
}

// WriteTextfile atomically writes the registry in text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", path, err)
	}
	return nil
}
