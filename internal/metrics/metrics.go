package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 上游调用结果
const (
	OutcomeSuccess = "success"
	OutcomeTimeout = "timeout"
	OutcomeFailure = "failure"
)

var (
	providerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinematch_provider_requests_total",
		Help: "Requests sent to the movie metadata provider.",
	}, []string{"operation", "outcome"})

	providerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cinematch_provider_request_duration_seconds",
		Help:    "Latency of requests sent to the movie metadata provider.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	activeSessionsSource atomic.Pointer[func() int]

	activeSessions = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "cinematch_active_sessions",
		Help: "Login sessions currently registered.",
	}, func() float64 {
		if fn := activeSessionsSource.Load(); fn != nil {
			return float64((*fn)())
		}
		return 0
	})
)

// TrackActiveSessions 设置活跃会话数的来源，后设置的覆盖先前的
func TrackActiveSessions(fn func() int) {
	activeSessionsSource.Store(&fn)
}

// ObserveProvider 记录一次上游调用
func ObserveProvider(operation, outcome string, elapsed time.Duration) {
	providerRequests.WithLabelValues(operation, outcome).Inc()
	providerLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}
