// Package search exposes semantic catalog search.
package search

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"plan-generator/internal/api/handlers"
	"plan-generator/internal/core/matcher"
	"plan-generator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultTopK = 10
	maxTopK     = 50

	defaultMaxDuration = 120
)

// RecipeSearcher 由 matcher.MealMatcher 實作
type RecipeSearcher interface {
	Search(ctx context.Context, p *common.Profile, query string, mealType common.MealType, topK int) []matcher.ScoredRecipe
}

// WorkoutSearcher 由 matcher.WorkoutMatcher 實作
type WorkoutSearcher interface {
	Search(ctx context.Context, p *common.Profile, query string, workoutType common.WorkoutType, maxDuration, topK int) []matcher.ScoredWorkout
}

// Handler 搜尋處理程序
type Handler struct {
	recipes  RecipeSearcher
	workouts WorkoutSearcher
}

// NewHandler 創建搜尋處理程序
func NewHandler(recipes RecipeSearcher, workouts WorkoutSearcher) *Handler {
	return &Handler{recipes: recipes, workouts: workouts}
}

// HandleRecipeSearch GET /recipes/search?q=&meal_type=&allergies=&top_k=
func (h *Handler) HandleRecipeSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		handlers.RespondError(c, common.NewValidationError("q is required"))
		return
	}
	topK, err := parseTopK(c.Query("top_k"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	var mealType common.MealType
	if raw := c.Query("meal_type"); raw != "" {
		if mealType, err = common.ParseMealType(raw); err != nil {
			handlers.RespondError(c, common.NewValidationError(err.Error()))
			return
		}
	}
	// 過敏原一律為硬性條件
	profile := &common.Profile{Allergies: handlers.SplitList(c.Query("allergies"))}

	results := h.recipes.Search(c.Request.Context(), profile, query, mealType, topK)
	common.LogDebug("Recipe search",
		zap.String("query", query),
		zap.String("meal_type", string(mealType)),
		zap.Int("results", len(results)),
	)
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
	})
}

// HandleWorkoutSearch GET /workouts/search?q=&workout_type=&equipment=&max_duration=&top_k=
func (h *Handler) HandleWorkoutSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		handlers.RespondError(c, common.NewValidationError("q is required"))
		return
	}
	topK, err := parseTopK(c.Query("top_k"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	maxDuration := defaultMaxDuration
	if raw := c.Query("max_duration"); raw != "" {
		if maxDuration, err = strconv.Atoi(raw); err != nil || maxDuration < 1 {
			handlers.RespondError(c, common.NewValidationError("max_duration must be a positive number of minutes"))
			return
		}
	}

	var workoutType common.WorkoutType
	if raw := c.Query("workout_type"); raw != "" {
		if workoutType, err = common.ParseWorkoutType(raw); err != nil {
			handlers.RespondError(c, common.NewValidationError(err.Error()))
			return
		}
	}

	// 未指定器材時不過濾
	var profile *common.Profile
	if raw := c.Query("equipment"); raw != "" {
		profile = &common.Profile{}
		for _, name := range handlers.SplitList(raw) {
			eq, err := common.ParseEquipment(name)
			if err != nil {
				handlers.RespondError(c, common.NewValidationError(err.Error()))
				return
			}
			profile.Equipment = append(profile.Equipment, eq)
		}
	}

	results := h.workouts.Search(c.Request.Context(), profile, query, workoutType, maxDuration, topK)
	common.LogDebug("Workout search",
		zap.String("query", query),
		zap.String("workout_type", string(workoutType)),
		zap.Int("max_duration", maxDuration),
		zap.Int("results", len(results)),
	)
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
	})
}

func parseTopK(raw string) (int, error) {
	if raw == "" {
		return defaultTopK, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxTopK {
		return 0, common.NewValidationError("top_k must be between 1 and 50")
	}
	return n, nil
}
