package api

import (
	"fmt"
	"time"

	"plan-generator/internal/api/handlers/health"
	"plan-generator/internal/api/handlers/plan"
	"plan-generator/internal/api/handlers/search"
	"plan-generator/internal/api/middleware"
	"plan-generator/internal/core/ai/service"
	"plan-generator/internal/core/embedding"
	"plan-generator/internal/core/matcher"
	"plan-generator/internal/core/planner"
	"plan-generator/internal/core/shopping"
	"plan-generator/internal/infrastructure/config"
	"plan-generator/internal/infrastructure/monitoring"
	"plan-generator/internal/infrastructure/persistence"
	"plan-generator/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services 路由使用的服務，Store、Index、Suggestions 與 Metrics 可為 nil
type Services struct {
	Meals          *matcher.MealMatcher
	Workouts       *matcher.WorkoutMatcher
	MealPlanner    *planner.MealPlanner
	WorkoutPlanner *planner.WorkoutPlanner
	Shopping       *shopping.Reducer
	Store          *persistence.Store
	Index          *embedding.Index
	Suggestions    *service.SuggestionService
	Metrics        *monitoring.Metrics
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc Services) (*gin.Engine, error) {
	if svc.Meals == nil || svc.Workouts == nil || svc.MealPlanner == nil || svc.WorkoutPlanner == nil || svc.Shopping == nil {
		return nil, fmt.Errorf("matchers, planners and shopping reducer are required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	if svc.Metrics != nil {
		router.Use(svc.Metrics.HTTPMiddleware())
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	injected := map[string]interface{}{health.KeyConfig: cfg}
	if svc.Store != nil {
		injected[health.KeyStore] = svc.Store
	}
	if svc.Index != nil {
		injected[health.KeyEmbedding] = svc.Index
	}
	if svc.Suggestions != nil {
		injected[health.KeySuggestion] = svc.Suggestions
	}
	router.Use(middleware.Inject(injected))

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)
	if svc.Metrics != nil {
		router.GET("/metrics", gin.WrapH(svc.Metrics.Handler()))
	}

	opts := plan.Options{}
	if svc.Store != nil {
		opts.Store = svc.Store
	}
	if svc.Metrics != nil {
		opts.Recorder = svc.Metrics
	}
	planHandler := plan.NewHandler(svc.MealPlanner, svc.WorkoutPlanner, svc.Shopping, opts)
	searchHandler := search.NewHandler(svc.Meals, svc.Workouts)

	api := router.Group("/api/v1")
	api.Use(middleware.Deduplication(cfg))
	{
		meals := api.Group("/meal-plans")
		{
			meals.POST("/daily", planHandler.HandleDailyMealPlan)
			meals.POST("/weekly", planHandler.HandleWeeklyMealPlan)
			meals.GET("/:id", planHandler.HandleGetMealPlan)
		}

		workouts := api.Group("/workout-plans")
		{
			workouts.POST("/weekly", planHandler.HandleWeeklyWorkoutPlan)
			workouts.GET("/:id", planHandler.HandleGetWorkoutPlan)
		}

		api.POST("/shopping-list", planHandler.HandleShoppingList)
		api.GET("/recipes/search", searchHandler.HandleRecipeSearch)
		api.GET("/workouts/search", searchHandler.HandleWorkoutSearch)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("store_enabled", svc.Store != nil),
		zap.Bool("metrics_enabled", svc.Metrics != nil),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
