package metric

import "github.com/prometheus/client_golang/prometheus"

// KeyspaceStats is a snapshot of keyspace sizes.
type KeyspaceStats struct {
	Strings      int
	Lists        int
	ExpiredTotal uint64
}

// Collector reports keyspace statistics at scrape time.
type Collector struct {
	stats func() KeyspaceStats

	strings *prometheus.Desc
	lists   *prometheus.Desc
	expired *prometheus.Desc
}

// NewCollector returns a collector that calls stats on every scrape.
func NewCollector(stats func() KeyspaceStats) *Collector {
	return &Collector{
		stats: stats,
		strings: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "keyspace", "strings"),
			"Number of string keys, including expired keys not yet read.",
			nil, nil,
		),
		lists: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "keyspace", "lists"),
			"Number of list keys.",
			nil, nil,
		),
		expired: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "keyspace", "expired_total"),
			"String keys removed by lazy expiry.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.strings
	ch <- c.lists
	ch <- c.expired
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(c.strings, prometheus.GaugeValue, float64(s.Strings))
	ch <- prometheus.MustNewConstMetric(c.lists, prometheus.GaugeValue, float64(s.Lists))
	ch <- prometheus.MustNewConstMetric(c.expired, prometheus.CounterValue, float64(s.ExpiredTotal))
}
