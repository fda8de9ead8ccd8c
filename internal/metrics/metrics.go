package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paintquote",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paintquote",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// Floor plan analysis metrics
	analysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paintquote",
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total number of floor plan analysis runs",
		},
		[]string{"status"},
	)

	analysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "paintquote",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Duration of a floor plan analysis run in seconds",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120},
		},
	)

	extractionFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "paintquote",
			Subsystem: "analysis",
			Name:      "extraction_fallback_total",
			Help:      "Analyses where the strict parse found nothing and the lenient pass ran",
		},
	)

	roomsExtracted = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "paintquote",
			Subsystem: "analysis",
			Name:      "rooms_extracted",
			Help:      "Number of rooms extracted per analysis",
			Buckets:   []float64{0, 1, 2, 4, 6, 8, 12, 20},
		},
	)

	// Quote metrics
	quotesGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "paintquote",
			Subsystem: "quotes",
			Name:      "generated_total",
			Help:      "Total number of quotes generated",
		},
	)

	quotesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "paintquote",
			Subsystem: "quotes",
			Name:      "sent_total",
			Help:      "Total number of quotes emailed to clients",
		},
	)

	// Billing metrics
	checkoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paintquote",
			Subsystem: "billing",
			Name:      "checkouts_total",
			Help:      "Checkout sessions by plan and outcome",
		},
		[]string{"plan", "outcome"},
	)

	subscriptionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "paintquote",
			Subsystem: "billing",
			Name:      "subscriptions_expired_total",
			Help:      "Subscriptions marked expired by the background worker",
		},
	)
)

// RecordAnalysis учитывает прогон анализа плана
func RecordAnalysis(status string, duration time.Duration, roomCount int) {
	analysesTotal.WithLabelValues(status).Inc()
	analysisDuration.Observe(duration.Seconds())
	if status == "completed" {
		roomsExtracted.Observe(float64(roomCount))
	}
}

// RecordExtractionFallback учитывает срабатывание мягкого парсера
func RecordExtractionFallback() {
	extractionFallbackTotal.Inc()
}

// RecordQuoteGenerated учитывает созданную смету
func RecordQuoteGenerated() {
	quotesGeneratedTotal.Inc()
}

// RecordQuoteSent учитывает отправленную смету
func RecordQuoteSent() {
	quotesSentTotal.Inc()
}

// RecordCheckout учитывает исход checkout-сессии
func RecordCheckout(plan, outcome string) {
	checkoutsTotal.WithLabelValues(plan, outcome).Inc()
}

// RecordSubscriptionExpired учитывает истекшую подписку
func RecordSubscriptionExpired() {
	subscriptionsExpired.Inc()
}

// Middleware собирает HTTP метрики по каждому запросу
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Handler возвращает обработчик /metrics
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
