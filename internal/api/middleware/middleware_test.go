package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"plan-generator/internal/infrastructure/config"
	"plan-generator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path, body, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if ip != "" {
		req.RemoteAddr = ip + ":40000"
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterPerClient(t *testing.T) {
	now := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "other clients have their own bucket")

	now = now.Add(45 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"), "tokens refill over the window")
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(1, time.Hour))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", "", "192.0.2.1").Code)
	w := serve(r, http.MethodGet, "/ping", "", "192.0.2.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))

	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, common.ErrCodeTooManyRequests, resp.Code)
}

func TestDeduplication(t *testing.T) {
	r := gin.New()
	r.Use(Deduplication(&config.Config{DedupWindow: time.Hour}))
	r.POST("/plans", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})
	r.GET("/plans", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := serve(r, http.MethodPost, "/plans", `{"a":1}`, "192.0.2.1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, `{"a":1}`, first.Body.String(), "body is restored for the handler")

	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/plans", `{"a":1}`, "192.0.2.1").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/plans", `{"a":2}`, "192.0.2.1").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/plans", `{"a":1}`, "192.0.2.9").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/plans", "", "192.0.2.1").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/plans", "", "192.0.2.1").Code)
}

func TestDeduplicatorWindow(t *testing.T) {
	now := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	d := NewDeduplicator(0)
	d.now = func() time.Time { return now }

	assert.False(t, d.Seen("x"))
	assert.True(t, d.Seen("x"))
	now = now.Add(2 * time.Second)
	assert.False(t, d.Seen("x"), "default window is one second")
}

func TestBodySizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodySizeLimit(8))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/echo", "short", "").Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(r, http.MethodPost, "/echo", "much too long", "").Code)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, http.MethodGet, "/slow", "", "")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, common.ErrCodeGatewayTimeout, resp.Code)

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/fast", "", "").Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), Logger())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/boom", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeInternalError)
}

func TestInject(t *testing.T) {
	r := gin.New()
	r.Use(Inject(map[string]interface{}{"answer": 42}))
	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"answer": c.GetInt("answer")}) })

	w := serve(r, http.MethodGet, "/", "", "")
	assert.JSONEq(t, `{"answer":42}`, w.Body.String())
}
