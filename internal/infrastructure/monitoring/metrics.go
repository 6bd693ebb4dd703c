package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "plan_generator"

// Metrics 計畫服務的 Prometheus 指標，使用獨立的 registry
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 計畫組裝
	plansTotal        *prometheus.CounterVec
	planDuration      *prometheus.HistogramVec
	toleranceMisses   prometheus.Counter
	relaxationsTotal  *prometheus.CounterVec
	fallbacksTotal    *prometheus.CounterVec
	shoppingListItems prometheus.Histogram
}

// NewMetrics 建立指標並註冊到新的 registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		plansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plans_generated_total",
				Help:      "Total number of generated plans by kind",
			},
			[]string{"kind"},
		),
		planDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plan_generation_duration_seconds",
				Help:      "Plan generation latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"kind"},
		),
		toleranceMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tolerance_misses_total",
				Help:      "Days that stayed outside calorie or macro tolerance after repair",
			},
		),
		relaxationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "filter_relaxations_total",
				Help:      "Filter stages dropped to find candidates",
			},
			[]string{"domain", "stage"},
		),
		fallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_fallbacks_total",
				Help:      "Calls served by a deterministic fallback instead of the external provider",
			},
			[]string{"reason"},
		),
		shoppingListItems: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "shopping_list_items",
				Help:      "Number of consolidated items per shopping list",
				Buckets:   prometheus.LinearBuckets(0, 10, 10),
			},
		),
	}
}

// Registry 指標 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePlan 記錄一次計畫組裝
func (m *Metrics) ObservePlan(kind string, d time.Duration) {
	m.plansTotal.WithLabelValues(kind).Inc()
	m.planDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// IncToleranceMiss 修正後仍超出容許範圍
func (m *Metrics) IncToleranceMiss() {
	m.toleranceMisses.Inc()
}

// IncRelaxation 篩選條件放寬，供 matcher.Options.OnRelaxation 使用
func (m *Metrics) IncRelaxation(domain, stage string) {
	m.relaxationsTotal.WithLabelValues(domain, stage).Inc()
}

// IncFallback 改用備援，供 embedding 與建議服務使用
func (m *Metrics) IncFallback(reason string) {
	m.fallbacksTotal.WithLabelValues(reason).Inc()
}

// ObserveShoppingList 記錄購物清單大小
func (m *Metrics) ObserveShoppingList(items int) {
	m.shoppingListItems.Observe(float64(items))
}

// HTTPMiddleware 記錄 HTTP 請求數與延遲
func (m *Metrics) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
