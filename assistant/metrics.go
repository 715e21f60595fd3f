package assistant

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics provides Prometheus-compatible metrics for assistant
// runs.
//
// Metrics exposed (all namespaced with "assistant_"):
//
//  1. runs_total (counter): completed runs. Labels: status (success/error).
//  2. llm_latency_ms (histogram): model call duration. Labels: provider, status.
//  3. retrieval_latency_ms (histogram): knowledge base search duration.
//  4. tool_calls_total (counter): tool executions. Labels: tool, status.
//  5. tokens_total (counter): token usage. Labels: provider, direction (input/output).
//  6. documents_indexed_total (counter): documents written to the vector database.
//
// Usage:
//
//	registry := prometheus.NewRegistry()
//	metrics := assistant.NewPrometheusMetrics(registry)
//	a := assistant.New(m, assistant.WithMetrics(metrics))
//
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
//
// Thread-safe.
type PrometheusMetrics struct {
	runs             *prometheus.CounterVec
	llmLatency       *prometheus.HistogramVec
	retrievalLatency prometheus.Histogram
	toolCalls        *prometheus.CounterVec
	tokens           *prometheus.CounterVec
	documentsIndexed prometheus.Counter

	registry prometheus.Registerer

	mu      sync.RWMutex
	enabled bool
}

// NewPrometheusMetrics creates and registers all assistant metrics with
// the provided registry. A nil registry uses
// prometheus.DefaultRegisterer.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	pm := &PrometheusMetrics{
		registry: registry,
		enabled:  true,
	}

	pm.runs = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistant",
		Name:      "runs_total",
		Help:      "Completed assistant runs",
	}, []string{"status"}) // status: success, error

	pm.llmLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "assistant",
		Name:      "llm_latency_ms",
		Help:      "Model call duration in milliseconds",
		Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000, 60000},
	}, []string{"provider", "status"})

	pm.retrievalLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "assistant",
		Name:      "retrieval_latency_ms",
		Help:      "Knowledge base search duration in milliseconds",
		Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
	})

	pm.toolCalls = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistant",
		Name:      "tool_calls_total",
		Help:      "Tool executions requested by the model",
	}, []string{"tool", "status"}) // status: success, error

	pm.tokens = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistant",
		Name:      "tokens_total",
		Help:      "Token usage reported by providers",
	}, []string{"provider", "direction"}) // direction: input, output

	pm.documentsIndexed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "assistant",
		Name:      "documents_indexed_total",
		Help:      "Documents written to the vector database",
	})

	return pm
}

// RecordRun counts a completed run with the given status.
func (pm *PrometheusMetrics) RecordRun(status string) {
	if !pm.isEnabled() {
		return
	}
	pm.runs.WithLabelValues(status).Inc()
}

// RecordLLMLatency records the duration of one model call.
func (pm *PrometheusMetrics) RecordLLMLatency(provider string, latency time.Duration, status string) {
	if !pm.isEnabled() {
		return
	}
	pm.llmLatency.WithLabelValues(provider, status).Observe(float64(latency.Milliseconds()))
}

// RecordRetrievalLatency records the duration of one knowledge search.
func (pm *PrometheusMetrics) RecordRetrievalLatency(latency time.Duration) {
	if !pm.isEnabled() {
		return
	}
	pm.retrievalLatency.Observe(float64(latency.Milliseconds()))
}

// RecordToolCall counts one tool execution.
func (pm *PrometheusMetrics) RecordToolCall(tool, status string) {
	if !pm.isEnabled() {
		return
	}
	pm.toolCalls.WithLabelValues(tool, status).Inc()
}

// RecordTokens counts token usage for one model call.
func (pm *PrometheusMetrics) RecordTokens(provider string, input, output int) {
	if !pm.isEnabled() {
		return
	}
	if input > 0 {
		pm.tokens.WithLabelValues(provider, "input").Add(float64(input))
	}
	if output > 0 {
		pm.tokens.WithLabelValues(provider, "output").Add(float64(output))
	}
}

// RecordDocumentsIndexed counts documents written to the vector database.
func (pm *PrometheusMetrics) RecordDocumentsIndexed(n int) {
	if !pm.isEnabled() {
		return
	}
	pm.documentsIndexed.Add(float64(n))
}

// Disable temporarily disables metric recording (useful for testing).
func (pm *PrometheusMetrics) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = false
}

// Enable re-enables metric recording after Disable().
func (pm *PrometheusMetrics) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = true
}

func (pm *PrometheusMetrics) isEnabled() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.enabled
}
