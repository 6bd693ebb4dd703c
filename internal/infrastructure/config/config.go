package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 外部服務提供者名稱
const (
	ProviderNone       = "none"
	ProviderHTTP       = "http"
	ProviderOllama     = "ollama"
	ProviderOpenRouter = "openrouter"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Ollama      OllamaConfig     `mapstructure:"ollama"`
	Embedding   EmbeddingConfig  `mapstructure:"embedding"`
	Suggestion  SuggestionConfig `mapstructure:"suggestion"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Planner     PlannerConfig    `mapstructure:"planner"`
	Catalog     CatalogConfig    `mapstructure:"catalog"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// OllamaConfig 本地 Ollama 配置
type OllamaConfig struct {
	ServerURL      string `mapstructure:"server_url"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// EmbeddingConfig 向量服務配置
type EmbeddingConfig struct {
	Provider string        `mapstructure:"provider"`
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Cooldown time.Duration `mapstructure:"cooldown"`
}

// SuggestionConfig 生成式建議配置
type SuggestionConfig struct {
	Provider  string        `mapstructure:"provider"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Cooldown  time.Duration `mapstructure:"cooldown"`
}

// CacheConfig 建議快取配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig 向量二級快取
type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// PlannerConfig 計畫組裝參數
type PlannerConfig struct {
	CalorieTolerance         float64 `mapstructure:"calorie_tolerance"`
	MacroTolerance           float64 `mapstructure:"macro_tolerance"`
	RepairAttempts           int     `mapstructure:"repair_attempts"`
	ExtraSnacks              int     `mapstructure:"extra_snacks"`
	DefaultMaxWorkoutMinutes int     `mapstructure:"default_max_workout_minutes"`
}

// CatalogConfig 目錄資料來源
type CatalogConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	SeedFile     string `mapstructure:"seed_file"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定，.env 不存在時只使用環境變數與預設值
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// logger 尚未初始化
	fmt.Println("Loading configuration",
		"embedding_provider:", config.Embedding.Provider,
		"suggestion_provider:", config.Suggestion.Provider,
		"openrouter_api_key:", maskAPIKey(config.OpenRouter.APIKey),
	)

	return &config, nil
}

// bindEnv 綁定常用的無前綴環境變數
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("openrouter.api_key", "APP_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	_ = v.BindEnv("openrouter.model", "APP_OPENROUTER_MODEL", "OPENROUTER_MODEL")
	_ = v.BindEnv("suggestion.max_tokens", "APP_SUGGESTION_MAX_TOKENS", "MODEL_MAX_TOKENS")
	_ = v.BindEnv("ollama.server_url", "APP_OLLAMA_SERVER_URL", "OLLAMA_HOST")
	_ = v.BindEnv("embedding.api_key", "APP_EMBEDDING_API_KEY", "EMBEDDING_API_KEY")
	_ = v.BindEnv("redis.addr", "APP_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "APP_REDIS_PASSWORD", "REDIS_PASSWORD")
	_ = v.BindEnv("cache.enabled", "APP_CACHE_ENABLED", "CACHE_ENABLED")
	_ = v.BindEnv("rate_limit.enabled", "APP_RATE_LIMIT_ENABLED", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "APP_RATE_LIMIT_REQUESTS", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "APP_RATE_LIMIT_WINDOW", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("dedup_window", "APP_DEDUP_WINDOW", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "APP_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("catalog.database_path", "APP_CATALOG_DATABASE_PATH", "DATABASE_PATH")
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "plan-generator")
	v.SetDefault("log_level", "info")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// OpenRouter 設定
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "qwen/qwen-2.5-7b-instruct:free")

	// Ollama 設定
	v.SetDefault("ollama.server_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2")
	v.SetDefault("ollama.embedding_model", "nomic-embed-text")

	// 向量設定
	v.SetDefault("embedding.provider", ProviderNone)
	v.SetDefault("embedding.base_url", "https://api.openai.com/v1")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.timeout", "5s")
	v.SetDefault("embedding.cooldown", "1m")

	// 建議設定
	v.SetDefault("suggestion.provider", ProviderNone)
	v.SetDefault("suggestion.timeout", "10s")
	v.SetDefault("suggestion.max_tokens", 200)
	v.SetDefault("suggestion.cooldown", "1m")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// Redis 設定
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "168h")
	v.SetDefault("redis.key_prefix", "plan-generator:embedding")

	// 計畫設定
	v.SetDefault("planner.calorie_tolerance", 0.10)
	v.SetDefault("planner.macro_tolerance", 0.15)
	v.SetDefault("planner.repair_attempts", 3)
	v.SetDefault("planner.extra_snacks", 0)
	v.SetDefault("planner.default_max_workout_minutes", 60)

	// 目錄設定
	v.SetDefault("catalog.database_path", "data/plan-generator.db")
	v.SetDefault("catalog.seed_file", "data/catalog.json")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", config.Server.Port)
	}
	if config.Server.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout")
	}

	switch config.Embedding.Provider {
	case ProviderNone, ProviderHTTP, ProviderOllama:
	default:
		return fmt.Errorf("unknown embedding provider %q", config.Embedding.Provider)
	}
	if config.Embedding.Provider == ProviderHTTP && config.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding base url is required")
	}
	if config.Embedding.Provider != ProviderNone && config.Embedding.Timeout <= 0 {
		return fmt.Errorf("invalid embedding timeout")
	}

	switch config.Suggestion.Provider {
	case ProviderNone, ProviderOpenRouter, ProviderOllama:
	default:
		return fmt.Errorf("unknown suggestion provider %q", config.Suggestion.Provider)
	}
	if config.Suggestion.Provider == ProviderOpenRouter && config.OpenRouter.APIKey == "" {
		return fmt.Errorf("openrouter api key is required")
	}
	if config.Suggestion.Provider != ProviderNone && config.Suggestion.Timeout <= 0 {
		return fmt.Errorf("invalid suggestion timeout")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.Redis.Enabled && config.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}

	// 驗證計畫設定
	p := config.Planner
	if p.CalorieTolerance <= 0 || p.CalorieTolerance >= 1 {
		return fmt.Errorf("calorie tolerance must be in (0, 1)")
	}
	if p.MacroTolerance <= 0 || p.MacroTolerance >= 1 {
		return fmt.Errorf("macro tolerance must be in (0, 1)")
	}
	if p.RepairAttempts < 0 {
		return fmt.Errorf("invalid repair attempts")
	}
	if p.ExtraSnacks < 0 {
		return fmt.Errorf("invalid extra snacks")
	}
	if p.DefaultMaxWorkoutMinutes <= 0 {
		return fmt.Errorf("invalid default max workout minutes")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	return nil
}
