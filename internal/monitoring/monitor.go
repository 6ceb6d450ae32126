package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	QuizStarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizx_quiz_starts_total",
			Help: "Quiz start intents by outcome",
		},
		[]string{"outcome"}, // accepted, quota_exceeded, ignored
	)

	QuizGenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quizx_quiz_generation_seconds",
			Help:    "Latency of quiz source calls",
			Buckets: []float64{1, 2, 5, 10, 20, 40},
		},
		[]string{"result"},
	)

	AttemptsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizx_attempts_recorded_total",
			Help: "Attempts appended to history",
		},
		[]string{"subject", "identity"}, // identity: user or guest
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quizx_active_sessions",
			Help: "Session controllers currently held in memory",
		},
	)
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(QuizStarts)
		prometheus.MustRegister(QuizGenerationDuration)
		prometheus.MustRegister(AttemptsRecorded)
		prometheus.MustRegister(ActiveSessions)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
