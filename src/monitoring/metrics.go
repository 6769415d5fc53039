package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	signalsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papertrader_signals_received_total",
			Help: "Total number of webhook signals accepted into the pipeline",
		},
		[]string{"symbol", "action"},
	)

	signalsExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papertrader_signals_executed_total",
			Help: "Total number of signals that produced an executed order",
		},
		[]string{"symbol", "action"},
	)

	signalsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papertrader_signals_rejected_total",
			Help: "Total number of signals rejected before execution",
		},
		[]string{"reason"},
	)

	executionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papertrader_execution_errors_total",
			Help: "Total number of admitted signals that failed to commit",
		},
		[]string{"symbol"},
	)

	pipelineLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "papertrader_pipeline_latency_seconds",
			Help:    "End-to-end signal pipeline latency",
			Buckets: prometheus.DefBuckets,
		},
	)

	cachedPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "papertrader_cached_price",
			Help: "Last traded price currently held in the price cache",
		},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(signalsReceived)
	prometheus.MustRegister(signalsExecuted)
	prometheus.MustRegister(signalsRejected)
	prometheus.MustRegister(executionErrors)
	prometheus.MustRegister(pipelineLatency)
	prometheus.MustRegister(cachedPrice)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordSignalReceived(symbol, action string) {
	signalsReceived.WithLabelValues(symbol, action).Inc()
}

func RecordSignalExecuted(symbol, action string) {
	signalsExecuted.WithLabelValues(symbol, action).Inc()
}

func RecordSignalRejected(reason string) {
	signalsRejected.WithLabelValues(reason).Inc()
}

func RecordExecutionError(symbol string) {
	executionErrors.WithLabelValues(symbol).Inc()
}

func RecordPipelineLatency(d time.Duration) {
	pipelineLatency.Observe(d.Seconds())
}

func RecordCachedPrice(symbol string, price float64) {
	cachedPrice.WithLabelValues(symbol).Set(price)
}
