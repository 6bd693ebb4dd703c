// Package plan exposes meal plan, workout plan and shopping list endpoints.
package plan

import (
	"context"
	"net/http"
	"time"

	"plan-generator/internal/api/handlers"
	"plan-generator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MealPlanner 由 planner.MealPlanner 實作
type MealPlanner interface {
	GenerateDailyPlan(ctx context.Context, profile *common.Profile, date time.Time) (*common.MealPlan, error)
	GenerateWeeklyPlan(ctx context.Context, profile *common.Profile, start time.Time) (*common.MealPlan, error)
}

// WorkoutPlanner 由 planner.WorkoutPlanner 實作
type WorkoutPlanner interface {
	GenerateWeeklyPlan(ctx context.Context, profile *common.Profile, start time.Time, workoutDays int) (*common.WorkoutPlan, error)
}

// ShoppingReducer 由 shopping.Reducer 實作
type ShoppingReducer interface {
	Generate(plan *common.MealPlan, pantryItems []string) (*common.ShoppingList, error)
}

// Store 由 persistence.Store 實作，可為 nil
type Store interface {
	SaveMealPlan(ctx context.Context, plan *common.MealPlan) error
	GetMealPlan(ctx context.Context, id string) (*common.MealPlan, error)
	SaveWorkoutPlan(ctx context.Context, plan *common.WorkoutPlan) error
	GetWorkoutPlan(ctx context.Context, id string) (*common.WorkoutPlan, error)
}

// ShoppingRecorder 購物清單統計
type ShoppingRecorder interface {
	ObserveShoppingList(items int)
}

// MealPlanRequest 產生餐點計畫
type MealPlanRequest struct {
	Profile *common.Profile     `json:"profile" binding:"required"`
	Body    *common.BodyMetrics `json:"body,omitempty"`       // 未提供熱量目標時用於估算
	Date    string              `json:"start_date,omitempty"` // YYYY-MM-DD，預設今天
}

// WorkoutPlanRequest 產生運動計畫
type WorkoutPlanRequest struct {
	Profile     *common.Profile `json:"profile" binding:"required"`
	Date        string          `json:"start_date,omitempty"`
	WorkoutDays int             `json:"workout_days" binding:"min=0,max=7"`
}

// ShoppingListRequest 以計畫 ID 或完整計畫產生購物清單
type ShoppingListRequest struct {
	PlanID      string           `json:"plan_id,omitempty"`
	Plan        *common.MealPlan `json:"plan,omitempty"`
	PantryItems []string         `json:"pantry_items,omitempty"`
}

// MealPlanResponse 餐點計畫與未達標的日期
type MealPlanResponse struct {
	Plan        *common.MealPlan `json:"plan"`
	FlaggedDays []string         `json:"flagged_days"`
}

// WorkoutPlanResponse 運動計畫與估計消耗
type WorkoutPlanResponse struct {
	Plan              *common.WorkoutPlan `json:"plan"`
	WorkoutDays       int                 `json:"workout_days"`
	EstimatedCalories float64             `json:"estimated_calories,omitempty"`
}

// Options Handler 的選用依賴
type Options struct {
	Store    Store
	Recorder ShoppingRecorder
	Now      func() time.Time
}

// Handler 計畫處理程序
type Handler struct {
	meals    MealPlanner
	workouts WorkoutPlanner
	shopping ShoppingReducer
	store    Store
	recorder ShoppingRecorder
	now      func() time.Time
}

// NewHandler 創建計畫處理程序
func NewHandler(meals MealPlanner, workouts WorkoutPlanner, shopping ShoppingReducer, opts Options) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{
		meals:    meals,
		workouts: workouts,
		shopping: shopping,
		store:    opts.Store,
		recorder: opts.Recorder,
		now:      opts.Now,
	}
}

// HandleDailyMealPlan POST /meal-plans/daily
func (h *Handler) HandleDailyMealPlan(c *gin.Context) {
	h.handleMealPlan(c, h.meals.GenerateDailyPlan)
}

// HandleWeeklyMealPlan POST /meal-plans/weekly
func (h *Handler) HandleWeeklyMealPlan(c *gin.Context) {
	h.handleMealPlan(c, h.meals.GenerateWeeklyPlan)
}

type generateFunc func(ctx context.Context, profile *common.Profile, start time.Time) (*common.MealPlan, error)

func (h *Handler) handleMealPlan(c *gin.Context, generate generateFunc) {
	var req MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}
	profile, err := resolveProfile(req.Profile, req.Body)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	start, err := h.startDate(req.Date)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	plan, err := generate(c.Request.Context(), profile, start)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if h.store != nil {
		if err := h.store.SaveMealPlan(c.Request.Context(), plan); err != nil {
			handlers.RespondError(c, err)
			return
		}
	}

	flagged := make([]string, 0)
	for _, d := range plan.FlaggedDays() {
		flagged = append(flagged, common.FormatDate(d))
	}
	common.LogInfo("餐點計畫已產生",
		zap.String("plan_id", plan.ID),
		zap.Int("days", len(plan.Days)),
		zap.Int("flagged_days", len(flagged)),
		zap.String("request_id", handlers.RequestID(c)),
	)
	c.JSON(http.StatusOK, MealPlanResponse{Plan: plan, FlaggedDays: flagged})
}

// HandleGetMealPlan GET /meal-plans/:id
func (h *Handler) HandleGetMealPlan(c *gin.Context) {
	if h.store == nil {
		handlers.RespondError(c, common.ErrServiceUnavailable)
		return
	}
	plan, err := h.store.GetMealPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// HandleWeeklyWorkoutPlan POST /workout-plans/weekly
func (h *Handler) HandleWeeklyWorkoutPlan(c *gin.Context) {
	var req WorkoutPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}
	start, err := h.startDate(req.Date)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	plan, err := h.workouts.GenerateWeeklyPlan(c.Request.Context(), req.Profile, start, req.WorkoutDays)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if h.store != nil {
		if err := h.store.SaveWorkoutPlan(c.Request.Context(), plan); err != nil {
			handlers.RespondError(c, err)
			return
		}
	}

	resp := WorkoutPlanResponse{Plan: plan, WorkoutDays: plan.WorkoutDays()}
	if req.Profile.WeightKg > 0 {
		resp.EstimatedCalories = plan.EstimatedCalories(req.Profile.WeightKg)
	}
	common.LogInfo("運動計畫已產生",
		zap.String("plan_id", plan.ID),
		zap.Int("workout_days", resp.WorkoutDays),
		zap.Strings("adjustments", plan.Adjustments),
		zap.String("request_id", handlers.RequestID(c)),
	)
	c.JSON(http.StatusOK, resp)
}

// HandleGetWorkoutPlan GET /workout-plans/:id
func (h *Handler) HandleGetWorkoutPlan(c *gin.Context) {
	if h.store == nil {
		handlers.RespondError(c, common.ErrServiceUnavailable)
		return
	}
	plan, err := h.store.GetWorkoutPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// HandleShoppingList POST /shopping-list
func (h *Handler) HandleShoppingList(c *gin.Context) {
	var req ShoppingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}

	plan := req.Plan
	if plan == nil {
		if req.PlanID == "" {
			handlers.RespondError(c, common.NewValidationError("plan_id or plan is required"))
			return
		}
		if h.store == nil {
			handlers.RespondError(c, common.ErrServiceUnavailable)
			return
		}
		stored, err := h.store.GetMealPlan(c.Request.Context(), req.PlanID)
		if err != nil {
			handlers.RespondError(c, err)
			return
		}
		plan = stored
	}

	list, err := h.shopping.Generate(plan, req.PantryItems)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if h.recorder != nil {
		h.recorder.ObserveShoppingList(list.Len())
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) startDate(raw string) (time.Time, error) {
	if raw == "" {
		return common.Date(h.now()), nil
	}
	d, err := common.ParseDate(raw)
	if err != nil {
		return time.Time{}, common.NewValidationError("start_date must be YYYY-MM-DD")
	}
	return d, nil
}

// resolveProfile 補上預設的營養素比例，未提供熱量目標時以身體數據估算
func resolveProfile(p *common.Profile, body *common.BodyMetrics) (*common.Profile, error) {
	prof := *p
	if prof.Macros == (common.MacroRatios{}) {
		prof.Macros = common.DefaultMacroRatios
	}
	if prof.DailyCalorieTarget <= 0 {
		if body == nil {
			return nil, common.NewValidationError("daily_calorie_target or body metrics are required")
		}
		target, err := common.EstimateCalorieTarget(*body, prof.FitnessGoals)
		if err != nil {
			return nil, err
		}
		prof.DailyCalorieTarget = target
		if prof.WeightKg == 0 {
			prof.WeightKg = body.WeightKg
		}
	}
	return &prof, nil
}
