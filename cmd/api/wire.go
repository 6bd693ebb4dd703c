package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"plan-generator/internal/api"
	"plan-generator/internal/core/ai/cache"
	"plan-generator/internal/core/ai/ollama"
	"plan-generator/internal/core/ai/openrouter"
	"plan-generator/internal/core/ai/provider"
	"plan-generator/internal/core/ai/service"
	"plan-generator/internal/core/catalog"
	"plan-generator/internal/core/embedding"
	"plan-generator/internal/core/matcher"
	"plan-generator/internal/core/planner"
	"plan-generator/internal/core/shopping"
	"plan-generator/internal/infrastructure/config"
	"plan-generator/internal/infrastructure/monitoring"
	"plan-generator/internal/infrastructure/persistence"
	"plan-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// app 行程內的所有元件，closers 依建立的反向順序關閉
type app struct {
	services api.Services
	closers  []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			common.LogWarn("Failed to close component", zap.Error(err))
		}
	}
}

// build 依設定組裝目錄、向量索引、比對器、組裝器與建議服務
func build(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	metrics := monitoring.NewMetrics()

	store, err := openStore(cfg.Catalog.DatabasePath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	if _, _, err := store.ImportSeed(ctx, cfg.Catalog.SeedFile); err != nil {
		a.Close()
		return nil, err
	}
	recipes, workouts, err := loadCatalogs(ctx, store)
	if err != nil {
		a.Close()
		return nil, err
	}

	index, err := buildIndex(ctx, cfg, store, recipes, workouts, metrics, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	mOpts := matcher.Options{OnRelaxation: metrics.IncRelaxation}
	meals := matcher.NewMealMatcher(recipes, index, mOpts)
	workoutMatcher := matcher.NewWorkoutMatcher(workouts, index, mOpts)

	suggestions, err := buildSuggestions(cfg, metrics, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	pOpts := planner.Options{
		CalorieTolerance:  cfg.Planner.CalorieTolerance,
		MacroTolerance:    cfg.Planner.MacroTolerance,
		RepairAttempts:    cfg.Planner.RepairAttempts,
		ExtraSnacks:       cfg.Planner.ExtraSnacks,
		MaxWorkoutMinutes: cfg.Planner.DefaultMaxWorkoutMinutes,
		Suggester:         suggestions,
		Recorder:          metrics,
	}

	a.services = api.Services{
		Meals:          meals,
		Workouts:       workoutMatcher,
		MealPlanner:    planner.NewMealPlanner(meals, pOpts),
		WorkoutPlanner: planner.NewWorkoutPlanner(workoutMatcher, pOpts),
		Shopping:       shopping.NewReducer(),
		Store:          store,
		Index:          index,
		Suggestions:    suggestions,
		Metrics:        metrics,
	}
	return a, nil
}

func openStore(path string) (*persistence.Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return persistence.Open(path)
}

func loadCatalogs(ctx context.Context, store *persistence.Store) (*catalog.RecipeCatalog, *catalog.WorkoutCatalog, error) {
	rawRecipes, err := store.LoadRecipes(ctx)
	if err != nil {
		return nil, nil, err
	}
	rawWorkouts, err := store.LoadWorkouts(ctx)
	if err != nil {
		return nil, nil, err
	}

	// 無效項目已由 catalog 逐筆記錄
	recipes, _ := catalog.NewRecipeCatalog(rawRecipes)
	workouts, _ := catalog.NewWorkoutCatalog(rawWorkouts)
	if recipes.Len() == 0 || workouts.Len() == 0 {
		return nil, nil, fmt.Errorf("catalog is empty: %d recipes, %d workouts", recipes.Len(), workouts.Len())
	}
	return recipes, workouts, nil
}

// buildIndex 建立向量索引，以資料庫中預先計算的向量填入快取並在預熱後寫回
func buildIndex(ctx context.Context, cfg *config.Config, store *persistence.Store, recipes *catalog.RecipeCatalog, workouts *catalog.WorkoutCatalog, metrics *monitoring.Metrics, a *app) (*embedding.Index, error) {
	corpus := catalog.Corpus(recipes, workouts)
	vectors := embedding.NewCache()

	var p embedding.Provider
	switch cfg.Embedding.Provider {
	case config.ProviderHTTP:
		p = embedding.NewHTTPProvider(cfg.Embedding.BaseURL, cfg.Embedding.APIKey, cfg.Embedding.Model, cfg.Embedding.Timeout)
	case config.ProviderOllama:
		op, err := embedding.NewOllamaProvider(cfg.Ollama.ServerURL, cfg.Ollama.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		p = op
	}

	opts := embedding.Options{
		Timeout:    cfg.Embedding.Timeout,
		Cooldown:   cfg.Embedding.Cooldown,
		OnFallback: func(reason string) { metrics.IncFallback("embedding_" + reason) },
	}

	if p != nil {
		precomputed, err := store.LoadEmbeddings(ctx, p.Name())
		if err != nil {
			return nil, err
		}
		vectors.Seed(p.Name(), precomputed)
		common.LogInfo("預先計算的向量已載入",
			zap.String("provider", p.Name()),
			zap.Int("vectors", len(precomputed)),
		)

		if cfg.Redis.Enabled {
			rs, err := embedding.NewRedisStore(ctx, embedding.RedisOptions{
				Addr:      cfg.Redis.Addr,
				Password:  cfg.Redis.Password,
				DB:        cfg.Redis.DB,
				TTL:       cfg.Redis.TTL,
				KeyPrefix: cfg.Redis.KeyPrefix,
			})
			if err != nil {
				// 共用快取不可用時仍可啟動
				common.LogWarn("Redis vector store unavailable", zap.Error(err))
			} else {
				opts.Store = rs
				a.closers = append(a.closers, rs.Close)
			}
		}
	}

	index := embedding.NewIndex(p, vectors, embedding.NewVocabulary(corpus), opts)
	catalog.Warm(ctx, index, recipes, workouts)

	if p != nil && !index.Degraded() {
		if err := store.SaveEmbeddings(ctx, p.Name(), vectors.Snapshot(p.Name(), corpus)); err != nil {
			common.LogWarn("Failed to persist embeddings", zap.Error(err))
		}
	}
	return index, nil
}

// buildSuggestions 依設定選擇 OpenRouter、Ollama 或只使用範本
func buildSuggestions(cfg *config.Config, metrics *monitoring.Metrics, a *app) (*service.SuggestionService, error) {
	var p provider.Provider
	switch cfg.Suggestion.Provider {
	case config.ProviderOpenRouter:
		p = openrouter.NewClient(provider.Config{
			BaseURL: cfg.OpenRouter.BaseURL,
			APIKey:  cfg.OpenRouter.APIKey,
			Model:   cfg.OpenRouter.Model,
			Timeout: cfg.Suggestion.Timeout,
		})
	case config.ProviderOllama:
		oc, err := ollama.NewClient(provider.Config{
			BaseURL: cfg.Ollama.ServerURL,
			Model:   cfg.Ollama.Model,
			Timeout: cfg.Suggestion.Timeout,
		})
		if err != nil {
			return nil, err
		}
		p = oc
	}
	if p != nil {
		a.closers = append(a.closers, p.Close)
	}

	cm := cache.NewManager(cfg.Cache)
	if cm != nil {
		a.closers = append(a.closers, cm.Close)
	}

	return service.NewSuggestionService(p, cm, service.Options{
		Timeout:           cfg.Suggestion.Timeout,
		MaxTokens:         cfg.Suggestion.MaxTokens,
		Cooldown:          cfg.Suggestion.Cooldown,
		MaxWorkoutMinutes: cfg.Planner.DefaultMaxWorkoutMinutes,
		OnFallback:        metrics.IncFallback,
	}), nil
}
