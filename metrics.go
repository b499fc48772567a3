package diaglog

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes logger counters as Prometheus metrics
type Collector struct {
	logger *Logger

	recorded        *prometheus.Desc
	evicted         *prometheus.Desc
	buffered        *prometheus.Desc
	persistWrites   *prometheus.Desc
	persistFailures *prometheus.Desc
	persistDegraded *prometheus.Desc
	faults          *prometheus.Desc
	recordPanics    *prometheus.Desc
	consoleFailures *prometheus.Desc
}

// NewCollector creates a collector over l; register it with a prometheus.Registerer
func NewCollector(l *Logger) *Collector {
	return &Collector{
		logger:          l,
		recorded:        prometheus.NewDesc("diaglog_entries_recorded_total", "Entries appended to the in-memory store.", nil, nil),
		evicted:         prometheus.NewDesc("diaglog_entries_evicted_total", "Entries dropped by FIFO eviction.", nil, nil),
		buffered:        prometheus.NewDesc("diaglog_entries_buffered", "Entries currently held in memory.", nil, nil),
		persistWrites:   prometheus.NewDesc("diaglog_persist_writes_total", "Successful persistent appends.", nil, nil),
		persistFailures: prometheus.NewDesc("diaglog_persist_failures_total", "Failed persistent reads or writes.", nil, nil),
		persistDegraded: prometheus.NewDesc("diaglog_persist_degraded", "1 when persistence is disabled for this process.", nil, nil),
		faults:          prometheus.NewDesc("diaglog_faults_total", "Fault hook invocations by outcome.", []string{"outcome"}, nil),
		recordPanics:    prometheus.NewDesc("diaglog_record_panics_total", "Panics recovered while recording.", nil, nil),
		consoleFailures: prometheus.NewDesc("diaglog_console_failures_total", "Console writes that failed.", nil, nil),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.recorded
	ch <- c.evicted
	ch <- c.buffered
	ch <- c.persistWrites
	ch <- c.persistFailures
	ch <- c.persistDegraded
	ch <- c.faults
	ch <- c.recordPanics
	ch <- c.consoleFailures
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.logger.Stats()

	degraded := 0.0
	if s.PersistDegraded {
		degraded = 1
	}

	ch <- prometheus.MustNewConstMetric(c.recorded, prometheus.CounterValue, float64(s.TotalRecorded))
	ch <- prometheus.MustNewConstMetric(c.evicted, prometheus.CounterValue, float64(s.TotalEvicted))
	ch <- prometheus.MustNewConstMetric(c.buffered, prometheus.GaugeValue, float64(s.Buffered))
	ch <- prometheus.MustNewConstMetric(c.persistWrites, prometheus.CounterValue, float64(s.PersistWrites))
	ch <- prometheus.MustNewConstMetric(c.persistFailures, prometheus.CounterValue, float64(s.PersistFailures))
	ch <- prometheus.MustNewConstMetric(c.persistDegraded, prometheus.GaugeValue, degraded)
	ch <- prometheus.MustNewConstMetric(c.faults, prometheus.CounterValue, float64(s.FaultsCaptured), "captured")
	ch <- prometheus.MustNewConstMetric(c.faults, prometheus.CounterValue, float64(s.FaultsDiscarded), "discarded")
	ch <- prometheus.MustNewConstMetric(c.recordPanics, prometheus.CounterValue, float64(s.RecordPanics))
	ch <- prometheus.MustNewConstMetric(c.consoleFailures, prometheus.CounterValue, float64(s.ConsoleFailures))
}
