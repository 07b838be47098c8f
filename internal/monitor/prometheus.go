package monitor

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes the monitor's per-cache counters and health as Prometheus gauges.
// Counters reset when a cache is cleared, so they are reported as gauges rather than counters.
type Collector struct {
	monitor *CacheMonitor

	hits    *prometheus.Desc
	misses  *prometheus.Desc
	errors  *prometheus.Desc
	hitRate *prometheus.Desc
	health  *prometheus.Desc
}

// NewCollector creates a collector reading m on every scrape.
func NewCollector(namespace string, m *CacheMonitor) *Collector {
	labels := []string{"cache"}
	return &Collector{
		monitor: m,
		hits:    prometheus.NewDesc(prometheus.BuildFQName(namespace, "cache", "hits"), "Cache hits since the last clear", labels, nil),
		misses:  prometheus.NewDesc(prometheus.BuildFQName(namespace, "cache", "misses"), "Cache misses since the last clear", labels, nil),
		errors:  prometheus.NewDesc(prometheus.BuildFQName(namespace, "cache", "errors"), "Cache errors since the last clear", labels, nil),
		hitRate: prometheus.NewDesc(prometheus.BuildFQName(namespace, "cache", "hit_rate"), "Hit rate over hits and misses", labels, nil),
		health: prometheus.NewDesc(prometheus.BuildFQName(namespace, "cache", "health_severity"),
			"Overall cache health: 0 healthy, 1 warning, 2 critical", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.errors
	ch <- c.hitRate
	ch <- c.health
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for name, m := range c.monitor.Metrics() {
		ch <- prometheus.MustNewConstMetric(c.hits, prometheus.GaugeValue, float64(m.Hits), name)
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.GaugeValue, float64(m.Misses), name)
		ch <- prometheus.MustNewConstMetric(c.errors, prometheus.GaugeValue, float64(m.Errors), name)
		ch <- prometheus.MustNewConstMetric(c.hitRate, prometheus.GaugeValue, m.HitRate, name)
	}
	ch <- prometheus.MustNewConstMetric(c.health, prometheus.GaugeValue, float64(c.monitor.Health().Status.Severity()))
}
