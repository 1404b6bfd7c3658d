// Package selfstats merges a handful of process self-observability
// gauges into the exporter's own Prometheus output, so a scrape reports
// not just the measurement it triggered but also the health of the
// process that took it.
package selfstats

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/netqual/exporter/internal/prom"
)

// Collector tracks the process start time and samples a small set of Go
// runtime gauges at scrape time. It deliberately bypasses
// client_golang's Desc/Collector/Registry machinery — there is no
// second /metrics endpoint to Gather() into here, only this request's
// own exposition text — so each gauge is read directly via Write(),
// client_golang's own escape hatch for callers that want a metric's raw
// value without registering it anywhere.
type Collector struct {
	startTime  time.Time
	uptime     prometheus.Gauge
	goroutines prometheus.Gauge
	heapBytes  prometheus.Gauge
}

// New returns a Collector whose start time is fixed to now; every
// scrape through the returned Collector's WriteProm reports uptime
// relative to this moment.
func New() *Collector {
	return &Collector{
		startTime: time.Now(),
		uptime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "process_uptime_seconds",
			Help: "seconds since the exporter process started",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "go_goroutines",
			Help: "number of goroutines currently running",
		}),
		heapBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "go_memstats_heap_alloc_bytes",
			Help: "bytes of allocated heap objects",
		}),
	}
}

// WriteProm samples the runtime and appends the resulting gauges to b.
func (c *Collector) WriteProm(b *prom.Builder) {
	c.uptime.Set(time.Since(c.startTime).Seconds())
	c.goroutines.Set(float64(runtime.NumGoroutine()))

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	c.heapBytes.Set(float64(mem.HeapAlloc))

	b.AddMetric(prom.MustName("process_start_time_seconds"), prom.TypeGauge, "unix time the exporter process started", func(g *prom.MetricGroup) {
		g.AddLine(float64(c.startTime.Unix()), nil)
	})
	b.AddMetric(prom.MustName("process_uptime_seconds"), prom.TypeGauge, "seconds since the exporter process started", func(g *prom.MetricGroup) {
		g.AddLine(gaugeValue(c.uptime), nil)
	})
	b.AddMetric(prom.MustName("go_goroutines"), prom.TypeGauge, "number of goroutines currently running", func(g *prom.MetricGroup) {
		g.AddLine(gaugeValue(c.goroutines), nil)
	})
	b.AddMetric(prom.MustName("go_memstats_heap_alloc_bytes"), prom.TypeGauge, "bytes of allocated heap objects", func(g *prom.MetricGroup) {
		g.AddLine(gaugeValue(c.heapBytes), nil)
	})
}

// gaugeValue reads g's current value through client_golang's own wire
// representation instead of keeping a shadow copy in Collector.
func gaugeValue(g prometheus.Gauge) float64 {
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}
