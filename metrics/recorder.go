package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

type Recorder interface {
	ObserveTool(name string, duration time.Duration, err error)
	ObservePages(source string, count int)
}

type NoopRecorder struct{}

func (NoopRecorder) ObserveTool(string, time.Duration, error) {}
func (NoopRecorder) ObservePages(string, int)                 {}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once         sync.Once
	toolDuration *prom.HistogramVec
	toolResults  *prom.CounterVec
	pages        *prom.GaugeVec
}

// NewPrometheusRecorder constructs and registers the metrics on reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.toolDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docgraph",
			Name:      "tool_duration_seconds",
			Help:      "Duration of tool invocations",
			Buckets:   prom.DefBuckets,
		}, []string{"tool"})
		pr.toolResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docgraph",
			Name:      "tool_results_total",
			Help:      "Tool invocations by result",
		}, []string{"tool", "result"})
		pr.pages = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "docgraph",
			Name:      "snapshot_pages",
			Help:      "Number of pages in the last snapshot read from a repository",
		}, []string{"source"})
		reg.MustRegister(pr.toolDuration, pr.toolResults, pr.pages)
	})
	return pr
}

func (pr *PrometheusRecorder) ObserveTool(name string, duration time.Duration, err error) {
	pr.toolDuration.WithLabelValues(name).Observe(duration.Seconds())
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	pr.toolResults.WithLabelValues(name, result).Inc()
}

func (pr *PrometheusRecorder) ObservePages(source string, count int) {
	pr.pages.WithLabelValues(source).Set(float64(count))
}

// HTTPHandler returns an http.Handler that serves the metrics gathered by reg.
func HTTPHandler(reg prom.Gatherer) http.Handler {
	if reg == nil {
		reg = prom.DefaultGatherer
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
