package monitoring

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.ObservePlan("meal_weekly", 20*time.Millisecond)
	m.ObservePlan("meal_weekly", 30*time.Millisecond)
	m.ObservePlan("workout_weekly", 5*time.Millisecond)
	m.IncToleranceMiss()
	m.IncRelaxation("meal", "dietary")
	m.IncRelaxation("meal", "dietary")
	m.IncFallback("embedding")
	m.ObserveShoppingList(12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.plansTotal.WithLabelValues("meal_weekly")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.plansTotal.WithLabelValues("workout_weekly")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toleranceMisses))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.relaxationsTotal.WithLabelValues("meal", "dietary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacksTotal.WithLabelValues("embedding")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.planDuration))
}

func TestMetricsHTTP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(m.HTTPMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/ping", "200")))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.True(t, strings.Contains(string(body), "plan_generator_http_requests_total"))
}
