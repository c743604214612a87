package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the timestamp server.
type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     prometheus.Counter
	errorsTotal       prometheus.Counter
	messagesTotal     *prometheus.CounterVec
	timestampsSaved   prometheus.Counter
	timestampsDeleted prometheus.Counter
	storedVideos      prometheus.Gauge
}

// New creates and registers Prometheus metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vidmark_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vidmark_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	messagesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vidmark_messages_total",
		Help: "Messages handled, by type and result",
	}, []string{"type", "result"})
	timestampsSaved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vidmark_timestamps_saved_total",
		Help: "Total number of timestamps saved",
	})
	timestampsDeleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vidmark_timestamps_deleted_total",
		Help: "Total number of timestamps deleted",
	})
	storedVideos := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vidmark_stored_videos",
		Help: "Number of video keys with at least one timestamp",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		messagesTotal,
		timestampsSaved,
		timestampsDeleted,
		storedVideos,
	)

	return &Metrics{
		registry:          registry,
		requestsTotal:     requestsTotal,
		errorsTotal:       errorsTotal,
		messagesTotal:     messagesTotal,
		timestampsSaved:   timestampsSaved,
		timestampsDeleted: timestampsDeleted,
		storedVideos:      storedVideos,
	}
}

func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// ObserveMessage counts one handled message. result is "ok" or the failure kind.
func (m *Metrics) ObserveMessage(msgType, result string) {
	m.messagesTotal.WithLabelValues(msgType, result).Inc()
	if result != "ok" {
		return
	}
	switch msgType {
	case "SAVE_TIMESTAMP":
		m.timestampsSaved.Inc()
	case "DELETE_TIMESTAMP", "DELETE_TIMESTAMP_BY_ID":
		m.timestampsDeleted.Inc()
	}
}

func (m *Metrics) SetStoredVideos(n int) {
	m.storedVideos.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
