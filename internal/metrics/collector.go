package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ClipStats provides the metrics collector access to live clip-store state.
type ClipStats interface {
	ClipCount() int
	ClipBytes() int64
}

// Collector implements prometheus.Collector to read live gauges at scrape time.
type Collector struct {
	stats ClipStats

	// Descriptors for scrape-time gauges.
	clipFiles *prometheus.Desc
	clipBytes *prometheus.Desc
}

// NewCollector creates a collector that reads clip-store state at scrape time.
// stats may be nil (metrics will report 0).
func NewCollector(stats ClipStats) *Collector {
	return &Collector{
		stats: stats,
		clipFiles: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "clip_files"),
			"Current number of stored clip files.",
			nil, nil,
		),
		clipBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "clip_bytes"),
			"Total bytes of stored clip files.",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.clipFiles
	ch <- c.clipBytes
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.stats != nil {
		ch <- prometheus.MustNewConstMetric(c.clipFiles, prometheus.GaugeValue, float64(c.stats.ClipCount()))
		ch <- prometheus.MustNewConstMetric(c.clipBytes, prometheus.GaugeValue, float64(c.stats.ClipBytes()))
	} else {
		ch <- prometheus.MustNewConstMetric(c.clipFiles, prometheus.GaugeValue, 0)
		ch <- prometheus.MustNewConstMetric(c.clipBytes, prometheus.GaugeValue, 0)
	}
}
