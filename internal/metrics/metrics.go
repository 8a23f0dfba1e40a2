// Package metrics — прикладные метрики Prometheus сервиса комментариев.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "comments"

// Metrics — набор счётчиков и гистограмм; регистрируется один раз при старте.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	CommentsCreated prometheus.Counter
	CommentsDeleted prometheus.Counter
	OrphansDropped  prometheus.Counter
	Violations      *prometheus.CounterVec
	StorageRetries  prometheus.Counter
	// MalformedSkipped — документы, пропущенные при чтении из-за неканонической иерархии.
	MalformedSkipped prometheus.Counter
}

// New регистрирует метрики в reg. Для тестов — prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		CommentsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "created_total",
			Help:      "Comments created.",
		}),
		CommentsDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deleted_total",
			Help:      "Comments removed, including cascaded descendants.",
		}),
		OrphansDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tree_orphans_dropped_total",
			Help:      "Replies left out of a tree because their parent was missing.",
		}),
		Violations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_violations_total",
			Help:      "Hierarchy violations found by the consistency validator.",
		}, []string{"kind"}),
		StorageRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_read_retries_total",
			Help:      "Read attempts retried after the store was unavailable.",
		}),
		MalformedSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_malformed_skipped_total",
			Help:      "Stored comments skipped on read because parentId or path failed to decode.",
		}),
	}
}
