package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"starbot/internal/models"
	"starbot/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCommandsTotal(command string)
	IncInteractionsTotal(action string)
	IncStarsRecorded()
	IncNotificationsTotal(outcome string)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	commandsTotal       *prometheus.CounterVec
	interactionsTotal   *prometheus.CounterVec
	starsRecorded       prometheus.Counter
	notificationsTotal  *prometheus.CounterVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCommandsTotal(command string) {
	m.commandsTotal.WithLabelValues(command).Inc()
}

func (m *MetricsProvider) IncInteractionsTotal(action string) {
	m.interactionsTotal.WithLabelValues(action).Inc()
}

func (m *MetricsProvider) IncStarsRecorded() {
	m.starsRecorded.Inc()
}

func (m *MetricsProvider) IncNotificationsTotal(outcome string) {
	m.notificationsTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, store models.StarStoreInterface) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "starbot_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "starbot_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		commandsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "starbot_commands_total",
			Help: "Total number of recognized slash commands",
		}, []string{"command"}),

		interactionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "starbot_interactions_total",
			Help: "Total number of confirm/cancel interactions",
		}, []string{"action"}),

		starsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "starbot_stars_recorded_total",
			Help: "Total number of star increments",
		}),

		notificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "starbot_notifications_total",
			Help: "Total number of deferred response_url deliveries",
		}, []string{"outcome"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "starbot_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "starbot_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "starbot_persistence_duration_seconds",
			Help:    "Duration of snapshot persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "starbot_users_total",
		Help: "Number of known users",
	}, func() float64 {
		return float64(store.CountUsers())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "starbot_stars_total",
		Help: "Total stars across all users and days",
	}, func() float64 {
		return float64(store.CountStars())
	})

	return m
}

type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCommandsTotal(_ string)                        {}
func (n *noopMetrics) IncInteractionsTotal(_ string)                    {}
func (n *noopMetrics) IncStarsRecorded()                                {}
func (n *noopMetrics) IncNotificationsTotal(_ string)                   {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
