package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StatusFunc reports the current session status name.
type StatusFunc func() string

// SessionCollector exports the session status as a one-hot gauge,
// read at scrape time.
type SessionCollector struct {
	status   StatusFunc
	statuses []string
	desc     *prometheus.Desc
}

// NewSessionCollector returns a collector over status. statuses lists every
// possible value so absent ones are exported as 0.
func NewSessionCollector(status StatusFunc, statuses ...string) *SessionCollector {
	return &SessionCollector{
		status:   status,
		statuses: statuses,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "status"),
			"Current session status (1 for the active status).",
			[]string{"status"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *SessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *SessionCollector) Collect(ch chan<- prometheus.Metric) {
	current := c.status()
	for _, s := range c.statuses {
		v := 0.0
		if s == current {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, v, s)
	}
}
