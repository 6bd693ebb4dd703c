package catalog

import (
	"context"
	"errors"

	"plan-generator/internal/core/embedding"
	"plan-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// RecipeCatalog 唯讀的食譜目錄，建立後不再修改
type RecipeCatalog struct {
	recipes []*common.Recipe
	byID    map[string]*common.Recipe
}

// NewRecipeCatalog 驗證並載入食譜，無效項目會被排除並回傳
func NewRecipeCatalog(recipes []common.Recipe) (*RecipeCatalog, []*common.InvalidEntityError) {
	c := &RecipeCatalog{byID: make(map[string]*common.Recipe, len(recipes))}
	var invalid []*common.InvalidEntityError

	for i := range recipes {
		r := recipes[i]
		if err := ValidateRecipe(&r); err != nil {
			invalid = append(invalid, reject(err))
			continue
		}
		if _, dup := c.byID[r.ID]; dup {
			invalid = append(invalid, reject(&common.InvalidEntityError{Kind: "recipe", ID: r.ID, Reason: "duplicate id"}))
			continue
		}
		if r.SearchableText == "" {
			r.SearchableText = r.BuildSearchableText()
		}
		c.recipes = append(c.recipes, &r)
		c.byID[r.ID] = &r
	}

	common.LogInfo("食譜目錄已載入",
		zap.Int("count", len(c.recipes)),
		zap.Int("invalid", len(invalid)),
	)
	return c, invalid
}

// All 所有食譜，依載入順序
func (c *RecipeCatalog) All() []*common.Recipe {
	return append([]*common.Recipe(nil), c.recipes...)
}

// Get 依 ID 取得食譜
func (c *RecipeCatalog) Get(id string) (*common.Recipe, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// Len 食譜數量
func (c *RecipeCatalog) Len() int {
	return len(c.recipes)
}

// Texts 搜尋文字，依載入順序
func (c *RecipeCatalog) Texts() []string {
	out := make([]string, len(c.recipes))
	for i, r := range c.recipes {
		out[i] = r.SearchableText
	}
	return out
}

// WorkoutCatalog 唯讀的課表目錄
type WorkoutCatalog struct {
	workouts []*common.Workout
	byID     map[string]*common.Workout
}

// NewWorkoutCatalog 驗證並載入課表，缺少 reps/duration 或休息秒數的動作會使整份課表被排除
func NewWorkoutCatalog(workouts []common.Workout) (*WorkoutCatalog, []*common.InvalidEntityError) {
	c := &WorkoutCatalog{byID: make(map[string]*common.Workout, len(workouts))}
	var invalid []*common.InvalidEntityError

	for i := range workouts {
		w := workouts[i]
		if err := ValidateWorkout(&w); err != nil {
			invalid = append(invalid, reject(err))
			continue
		}
		if _, dup := c.byID[w.ID]; dup {
			invalid = append(invalid, reject(&common.InvalidEntityError{Kind: "workout", ID: w.ID, Reason: "duplicate id"}))
			continue
		}
		if w.SearchableText == "" {
			w.SearchableText = w.BuildSearchableText()
		}
		c.workouts = append(c.workouts, &w)
		c.byID[w.ID] = &w
	}

	common.LogInfo("課表目錄已載入",
		zap.Int("count", len(c.workouts)),
		zap.Int("invalid", len(invalid)),
	)
	return c, invalid
}

// All 所有課表，依載入順序
func (c *WorkoutCatalog) All() []*common.Workout {
	return append([]*common.Workout(nil), c.workouts...)
}

// Get 依 ID 取得課表
func (c *WorkoutCatalog) Get(id string) (*common.Workout, bool) {
	w, ok := c.byID[id]
	return w, ok
}

// Len 課表數量
func (c *WorkoutCatalog) Len() int {
	return len(c.workouts)
}

// Texts 搜尋文字，依載入順序
func (c *WorkoutCatalog) Texts() []string {
	out := make([]string, len(c.workouts))
	for i, w := range c.workouts {
		out[i] = w.SearchableText
	}
	return out
}

// Corpus 兩個目錄的所有搜尋文字，用於建立詞表
func Corpus(recipes *RecipeCatalog, workouts *WorkoutCatalog) []string {
	var out []string
	if recipes != nil {
		out = append(out, recipes.Texts()...)
	}
	if workouts != nil {
		out = append(out, workouts.Texts()...)
	}
	return out
}

// Warm 預先計算目錄內所有文字的向量
func Warm(ctx context.Context, idx *embedding.Index, recipes *RecipeCatalog, workouts *WorkoutCatalog) {
	idx.Warm(ctx, Corpus(recipes, workouts))
}

func reject(err error) *common.InvalidEntityError {
	var invalid *common.InvalidEntityError
	if !errors.As(err, &invalid) {
		invalid = &common.InvalidEntityError{Reason: err.Error()}
	}
	common.LogWarn("Invalid catalog entity excluded",
		zap.String("kind", invalid.Kind),
		zap.String("id", invalid.ID),
		zap.String("reason", invalid.Reason),
	)
	return invalid
}
