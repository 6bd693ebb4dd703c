package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"plan-generator/internal/infrastructure/config"
	"plan-generator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 由路由注入的 context 鍵
const (
	KeyConfig     = "config"
	KeyStore      = "store"
	KeyEmbedding  = "embedding_index"
	KeySuggestion = "suggestion_service"
)

// Pinger 可檢查連線的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// Provider 外部模型依賴的狀態
type Provider interface {
	ProviderName() string
	Degraded() bool
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                  `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Version   string                  `json:"version"`
	Runtime   map[string]interface{}  `json:"runtime"`
	Providers map[string]ProviderInfo `json:"providers,omitempty"`
}

// ProviderInfo 外部模型狀態，degraded 表示目前使用備援
type ProviderInfo struct {
	Name     string `json:"name"`
	Degraded bool   `json:"degraded"`
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	cfg, exists := c.Get(KeyConfig)
	if !exists {
		common.LogError("Configuration not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Configuration not found",
		})
		return
	}
	conf, ok := cfg.(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Invalid configuration type",
		})
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   conf.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Providers: map[string]ProviderInfo{},
	}

	// 備援中仍可服務，狀態標為 degraded
	for key, label := range map[string]string{KeyEmbedding: "embedding", KeySuggestion: "suggestion"} {
		v, ok := c.Get(key)
		if !ok {
			continue
		}
		p, ok := v.(Provider)
		if !ok {
			continue
		}
		response.Providers[label] = ProviderInfo{Name: p.ProviderName(), Degraded: p.Degraded()}
		if p.Degraded() {
			response.Status = "degraded"
		}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("status", response.Status),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，資料庫無法連線時回傳 503
func ReadinessCheck(c *gin.Context) {
	if v, ok := c.Get(KeyStore); ok {
		if p, ok := v.(Pinger); ok {
			if err := p.Ping(c.Request.Context()); err != nil {
				common.LogWarn("Readiness check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "not_ready",
					"error":  "database unavailable",
				})
				return
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
