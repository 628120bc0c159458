package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector reports static build information and process uptime.
type Collector struct {
	buildInfo *prometheus.Desc
	uptime    *prometheus.Desc
	labels    []string
	started   time.Time
}

// NewCollector creates a collector labelled with the given build and node
// identity.
func NewCollector(version, commit, nodeID string) *Collector {
	return &Collector{
		buildInfo: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "build_info"),
			"Build information of the running server; always 1.",
			[]string{"version", "commit", "node_id"}, nil,
		),
		uptime: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "uptime_seconds"),
			"Seconds since the server started.",
			nil, nil,
		),
		labels:  []string{version, commit, nodeID},
		started: time.Now(),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.buildInfo
	ch <- c.uptime
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.buildInfo, prometheus.GaugeValue, 1, c.labels...)
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, time.Since(c.started).Seconds())
}
