package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "linekv"

// Close reasons used as the "reason" label of ConnectionsClosed.
const (
	ReasonPeerClosed = "peer_closed"
	ReasonHangup     = "hangup"
	ReasonIOError    = "io_error"
	ReasonProtocol   = "protocol"
	ReasonShutdown   = "shutdown"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Connection metrics
	ConnectionsActive   prometheus.Gauge
	ConnectionsAccepted prometheus.Counter
	ConnectionsRejected prometheus.Counter
	ConnectionsClosed   *prometheus.CounterVec

	// Command metrics
	Commands *prometheus.CounterVec

	// Loop metrics
	BytesRead     prometheus.Counter
	BytesWritten  prometheus.Counter
	PollBatchSize prometheus.Histogram

	// Store metrics
	StoreKeys prometheus.Gauge
}

// NewRegistry creates a registry with every linekv metric plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Client connections currently registered with the event loop.",
		}),
		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "Client connections accepted.",
		}),
		ConnectionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_rejected_total",
			Help:      "Client connections refused because the connection limit was reached.",
		}),
		ConnectionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_closed_total",
			Help:      "Client connections torn down, by reason.",
		}, []string{"reason"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands processed, by operation and result.",
		}, []string{"op", "result"}),
		BytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_read_total",
			Help:      "Bytes read from client sockets.",
		}),
		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written_total",
			Help:      "Bytes written to client sockets.",
		}),
		PollBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_batch_size",
			Help:      "Readiness events delivered per non-empty poll.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		StoreKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_keys",
			Help:      "Keys held by the in-memory store.",
		}),
	}

	r.registry.MustRegister(
		r.ConnectionsActive,
		r.ConnectionsAccepted,
		r.ConnectionsRejected,
		r.ConnectionsClosed,
		r.Commands,
		r.BytesRead,
		r.BytesWritten,
		r.PollBatchSize,
		r.StoreKeys,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// MustRegister adds extra collectors to the registry.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry: r.registry,
	})
}
