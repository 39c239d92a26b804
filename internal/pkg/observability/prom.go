package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ServiceName = "boxstats"
)

var (
	SeasonWriteDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "season", "write_duration_seconds"),
		Help:    "Duration of season writes, including lock acquisition, in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"operation"})
	SeasonWriteOutcome = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "season", "write_outcome_total"),
		Help: "Season writes by operation and result",
	}, []string{"operation", "result"})
	StatsComputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "stats", "compute_duration_seconds"),
		Help:    "Duration of statistics view computation on cache miss in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"view"})
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "cache", "lookups_total"),
		Help: "Statistics cache lookups by cache name and result",
	}, []string{"cache", "result"})
	WorkerWarmDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "worker", "warm_duration_seconds"),
		Help:    "Duration of warming an owner's statistics after a season event in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{"result"})
	WorkerMessagingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "worker", "messaging_latency_seconds"),
		Help:    "Latency between a season event being published and consumed in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)
