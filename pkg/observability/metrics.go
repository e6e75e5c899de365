package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records pipeline and cache events as Prometheus metrics on its own
// registry. It implements both [PipelineHooks] and [CacheHooks]:
//
//	m := observability.NewMetrics()
//	observability.SetPipelineHooks(m)
//	observability.SetCacheHooks(m)
//	defer m.WriteTextfile("/var/lib/node_exporter/storyflow.prom")
type Metrics struct {
	Registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	graphNodes    prometheus.Gauge
	graphEdges    prometheus.Gauge
	cacheEvents   *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
}

// NewMetrics creates the storyflow collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storyflow_stage_duration_seconds",
				Help:    "Duration of pipeline stages",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"stage", "status"},
		),
		graphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storyflow_graph_nodes",
			Help: "Screens in the most recently built graph",
		}),
		graphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storyflow_graph_edges",
			Help: "Transitions in the most recently built graph",
		}),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storyflow_cache_events_total",
				Help: "Artifact cache lookups and writes",
			},
			[]string{"event", "format"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storyflow_cache_written_bytes_total",
				Help: "Bytes written to the artifact cache",
			},
			[]string{"format"},
		),
	}
	m.Registry.MustRegister(m.stageDuration, m.graphNodes, m.graphEdges, m.cacheEvents, m.cacheBytes)
	return m
}

// WriteTextfile writes the current metric values in the text exposition
// format, suitable for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

func (m *Metrics) observe(stage string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.stageDuration.WithLabelValues(stage, status).Observe(d.Seconds())
}

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, _ string, d time.Duration, err error) {
	m.observe("load", d, err)
}

func (m *Metrics) OnBuildStart(context.Context, string) {}

func (m *Metrics) OnBuildComplete(_ context.Context, _ string, nodes, edges int, d time.Duration, err error) {
	m.observe("build", d, err)
	if err == nil {
		m.graphNodes.Set(float64(nodes))
		m.graphEdges.Set(float64(edges))
	}
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.observe("render", d, err)
}

func (m *Metrics) OnCacheHit(_ context.Context, format string) {
	m.cacheEvents.WithLabelValues("hit", format).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, format string) {
	m.cacheEvents.WithLabelValues("miss", format).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, format string, size int) {
	m.cacheEvents.WithLabelValues("set", format).Inc()
	m.cacheBytes.WithLabelValues(format).Add(float64(size))
}
