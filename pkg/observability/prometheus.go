package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks exports pipeline, palette and HTTP events as Prometheus
// metrics.
type PrometheusHooks struct {
	layouts         prometheus.Counter
	layoutNodes     prometheus.Histogram
	layoutDuration  prometheus.Histogram
	renders         *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	paletteAssigned *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewPrometheusHooks registers the forcegraph metrics on reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		layouts: f.NewCounter(prometheus.CounterOpts{
			Name: "forcegraph_layouts_total",
			Help: "Total number of force layouts computed",
		}),
		layoutNodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "forcegraph_layout_nodes",
			Help:    "Node count per computed layout",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		layoutDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "forcegraph_layout_duration_seconds",
			Help:    "Time spent in the force simulation",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "forcegraph_renders_total",
			Help: "Total number of render runs by formats and outcome",
		}, []string{"formats", "status"}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "forcegraph_render_duration_seconds",
			Help:    "Time spent producing render artifacts",
			Buckets: prometheus.DefBuckets,
		}, []string{"formats"}),
		paletteAssigned: f.NewCounterVec(prometheus.CounterOpts{
			Name: "forcegraph_palette_assignments_total",
			Help: "Node types assigned a color, by strategy",
		}, []string{"strategy"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "forcegraph_http_requests_total",
			Help: "Total number of HTTP requests processed",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "forcegraph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
	}
}

func (p *PrometheusHooks) OnLayoutStart(context.Context, int, int) {}

func (p *PrometheusHooks) OnLayoutComplete(_ context.Context, nodeCount int, d time.Duration) {
	p.layouts.Inc()
	p.layoutNodes.Observe(float64(nodeCount))
	p.layoutDuration.Observe(d.Seconds())
}

func (p *PrometheusHooks) OnRenderStart(context.Context, []string) {}

func (p *PrometheusHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	label := strings.Join(formats, ",")
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.renders.WithLabelValues(label, status).Inc()
	p.renderDuration.WithLabelValues(label).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnAssign(_ context.Context, _, _, strategy string) {
	p.paletteAssigned.WithLabelValues(strategy).Inc()
}

func (p *PrometheusHooks) OnRequest(context.Context, string, string) {}

func (p *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ PaletteHooks  = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
