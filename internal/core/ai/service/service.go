// Package service produces short meal and workout suggestions from a generative
// provider, falling back to deterministic templates when the provider is absent or failing.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"plan-generator/internal/core/ai/cache"
	"plan-generator/internal/core/ai/provider"
	"plan-generator/internal/pkg/common"

	"github.com/tmc/langchaingo/prompts"
	"go.uber.org/zap"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultMaxTokens = 200
	defaultCooldown  = time.Minute
	maxSuggestionLen = 400
)

const systemPrompt = "You are a concise nutrition and fitness coach. Answer with one or two sentences and no lists."

var (
	mealPrompt = prompts.NewPromptTemplate(
		"Suggest one {{.meal_type}} for someone who wants: {{.summary}}. "+
			"Aim for about {{.calories}} kcal.{{if .avoid}} It must not contain {{.avoid}}.{{end}}",
		[]string{"meal_type", "summary", "calories", "avoid"},
	)
	workoutPrompt = prompts.NewPromptTemplate(
		"Suggest one {{.workout_type}} session of at most {{.minutes}} minutes for a {{.summary}}. "+
			"{{if .equipment}}Available equipment: {{.equipment}}.{{else}}Bodyweight only.{{end}}",
		[]string{"workout_type", "minutes", "summary", "equipment"},
	)
)

// Options 建議服務設定
type Options struct {
	Timeout           time.Duration
	MaxTokens         int
	Cooldown          time.Duration // 失敗後暫停呼叫提供者的時間
	MaxWorkoutMinutes int
	OnFallback        func(reason string)
}

// SuggestionService 生成式建議，實作 planner.Suggester
type SuggestionService struct {
	provider provider.Provider
	cache    *cache.CacheManager
	opts     Options

	mu            sync.Mutex
	degradedUntil time.Time
	now           func() time.Time
}

// NewSuggestionService 創建建議服務，provider 與 cacheManager 皆可為 nil
func NewSuggestionService(p provider.Provider, cacheManager *cache.CacheManager, opts Options) *SuggestionService {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = defaultCooldown
	}
	if opts.MaxWorkoutMinutes <= 0 {
		opts.MaxWorkoutMinutes = 60
	}
	return &SuggestionService{
		provider: p,
		cache:    cacheManager,
		opts:     opts,
		now:      time.Now,
	}
}

// ProviderName 目前的生成模型，沒有時為 "template"
func (s *SuggestionService) ProviderName() string {
	if s.provider == nil {
		return "template"
	}
	return s.provider.GetModel()
}

// Degraded 提供者是否在冷卻期內
func (s *SuggestionService) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Before(s.degradedUntil)
}

// SuggestMeal 建議一道餐點
func (s *SuggestionService) SuggestMeal(ctx context.Context, p *common.Profile, mealType common.MealType) (string, error) {
	if p == nil {
		return "", common.NewValidationError("profile is required")
	}
	calories := int(p.DailyCalorieTarget / float64(p.MealsOrDefault()))
	prompt, err := mealPrompt.Format(map[string]any{
		"meal_type": string(mealType),
		"summary":   p.MealSummary(mealType),
		"calories":  calories,
		"avoid":     strings.Join(p.Allergies, ", "),
	})
	if err != nil {
		return "", fmt.Errorf("failed to format meal prompt: %w", err)
	}
	return s.suggest(ctx, prompt, func() string { return mealTemplate(p, mealType, calories) }), nil
}

// SuggestWorkout 建議一次運動
func (s *SuggestionService) SuggestWorkout(ctx context.Context, p *common.Profile, workoutType common.WorkoutType) (string, error) {
	if p == nil {
		return "", common.NewValidationError("profile is required")
	}
	minutes := p.MaxWorkoutMinutes
	if minutes <= 0 {
		minutes = s.opts.MaxWorkoutMinutes
	}
	prompt, err := workoutPrompt.Format(map[string]any{
		"workout_type": string(workoutType),
		"minutes":      minutes,
		"summary":      p.GoalSummary(),
		"equipment":    equipmentList(p.Equipment),
	})
	if err != nil {
		return "", fmt.Errorf("failed to format workout prompt: %w", err)
	}
	return s.suggest(ctx, prompt, func() string { return workoutTemplate(p, workoutType, minutes) }), nil
}

// suggest 依序嘗試快取、提供者，失敗時使用範本
func (s *SuggestionService) suggest(ctx context.Context, prompt string, fallback func() string) string {
	if s.provider == nil {
		return fallback()
	}

	key := s.provider.GetModel() + "|" + prompt
	if val, err := s.cache.Get(ctx, key); err == nil && val != "" {
		return val
	}

	if s.Degraded() {
		return fallback()
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	resp, err := s.provider.Generate(callCtx, provider.NewPrompt(systemPrompt, prompt, s.opts.MaxTokens))
	if err == nil {
		if text := clean(resp.Content); text != "" {
			if err := s.cache.Set(ctx, key, text); err != nil {
				common.LogDebug("Suggestion not cached", zap.Error(err))
			}
			return text
		}
		err = fmt.Errorf("empty suggestion")
	}

	s.markDegraded(err)
	return fallback()
}

// markDegraded 進入冷卻期，冷卻期內只記錄一次
func (s *SuggestionService) markDegraded(err error) {
	s.mu.Lock()
	now := s.now()
	first := !now.Before(s.degradedUntil)
	s.degradedUntil = now.Add(s.opts.Cooldown)
	s.mu.Unlock()

	if first {
		common.LogProviderFallback(s.ProviderName(), fmt.Errorf("%w: %v", common.ErrProviderDegraded, err))
	}
	if s.opts.OnFallback != nil {
		s.opts.OnFallback("suggestion")
	}
}

// clean 合併空白並限制長度
func clean(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxSuggestionLen {
		cut := strings.LastIndex(text[:maxSuggestionLen], " ")
		if cut <= 0 {
			cut = maxSuggestionLen
		}
		text = text[:cut]
	}
	return text
}

func equipmentList(eq []common.Equipment) string {
	names := make([]string, 0, len(eq))
	for _, e := range eq {
		if e == common.EquipBodyweight {
			continue
		}
		names = append(names, strings.ReplaceAll(string(e), "_", " "))
	}
	return strings.Join(names, ", ")
}
