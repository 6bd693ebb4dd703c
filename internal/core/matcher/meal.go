package matcher

import (
	"context"
	"math"
	"sort"
	"strings"

	"plan-generator/internal/core/catalog"
	"plan-generator/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	pantryWeight   = 0.4
	semanticWeight = 0.6

	StageAllergen       = "allergen"
	StageMealType       = "meal_type"
	StageAllergenFamily = "allergen_family"
	StageDietary        = "dietary"
)

// allergenFamilies 過敏原 -> 相關食材與標籤（可放寬）
var allergenFamilies = map[string][]string{
	"peanut":    {"nut", "peanut", "groundnut"},
	"nut":       {"nut", "almond", "cashew", "walnut", "pecan", "pistachio", "hazelnut", "macadamia"},
	"tree nut":  {"nut", "almond", "cashew", "walnut", "pecan", "pistachio", "hazelnut", "macadamia"},
	"dairy":     {"milk", "cheese", "butter", "cream", "yogurt", "whey", "ghee", "dairy"},
	"milk":      {"milk", "cheese", "butter", "cream", "yogurt", "whey", "ghee", "dairy"},
	"lactose":   {"milk", "cheese", "butter", "cream", "yogurt", "dairy"},
	"shellfish": {"shrimp", "prawn", "crab", "lobster", "clam", "mussel", "oyster", "scallop", "shellfish"},
	"fish":      {"fish", "salmon", "tuna", "cod", "tilapia", "anchovy", "sardine", "trout"},
	"egg":       {"egg", "mayonnaise", "mayo", "meringue", "aioli"},
	"gluten":    {"wheat", "flour", "bread", "pasta", "barley", "rye", "couscous", "seitan"},
	"wheat":     {"wheat", "flour", "bread", "pasta", "couscous", "seitan"},
	"soy":       {"soy", "tofu", "tempeh", "edamame", "miso"},
	"sesame":    {"sesame", "tahini"},
}

// AllergenFamily 過敏原的相關詞，未知過敏原只包含自己
func AllergenFamily(allergy string) []string {
	key := common.IngredientKey(allergy)
	if fam, ok := allergenFamilies[key]; ok {
		return fam
	}
	return []string{key}
}

// MealQuery 餐點查詢
type MealQuery struct {
	MealType common.MealType `json:"meal_type,omitempty"`
	Query    string          `json:"query,omitempty"`
	TopK     int             `json:"top_k,omitempty"`
	// TargetCalories 同分時比較的熱量目標，未設定時為每日熱量 / 餐數
	TargetCalories float64 `json:"target_calories,omitempty"`
}

// ScoredRecipe 評分後的食譜
type ScoredRecipe struct {
	Recipe        *common.Recipe `json:"recipe"`
	Score         float64        `json:"score"`
	PantryOverlap float64        `json:"pantry_overlap"`
	Semantic      float64        `json:"semantic"`
}

// MealResult 食譜比對結果
type MealResult struct {
	Matches []ScoredRecipe `json:"matches"`
	Relaxed []string       `json:"relaxed,omitempty"`
}

// Options 比對器設定
type Options struct {
	OnRelaxation RelaxationHook
}

// MealMatcher 食譜比對器，無狀態
// --------------------------------------------------
type MealMatcher struct {
	catalog *catalog.RecipeCatalog
	index   Searcher
	opts    Options
}

// NewMealMatcher 創建食譜比對器
func NewMealMatcher(c *catalog.RecipeCatalog, index Searcher, opts Options) *MealMatcher {
	return &MealMatcher{catalog: c, index: index, opts: opts}
}

// Match 依檔案篩選並排序食譜
// 沒有任何食譜通過時依 meal_type、allergen_family、dietary 的順序放寬，過敏原永不放寬
func (m *MealMatcher) Match(ctx context.Context, p *common.Profile, q MealQuery) (*MealResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if q.MealType != "" && !q.MealType.Valid() {
		return nil, common.NewValidationError("unknown meal type " + string(q.MealType))
	}

	pipe := m.pipeline(p, q.MealType, true)
	survivors, trail := pipe.run(m.catalog.All())
	if len(trail) > 0 {
		common.LogRelaxation("meal", string(q.MealType), trail)
		for _, s := range trail {
			if m.opts.OnRelaxation != nil {
				m.opts.OnRelaxation("meal", s)
			}
		}
	}
	if len(survivors) == 0 {
		return nil, &common.ConstraintError{Domain: "meal", Slot: string(q.MealType), Trail: trail}
	}

	query := strings.TrimSpace(q.Query)
	if query == "" {
		query = p.MealSummary(q.MealType)
	}
	target := q.TargetCalories
	if target <= 0 {
		target = p.DailyCalorieTarget / float64(p.MealsOrDefault())
	}

	scored := m.score(ctx, survivors, query, p.PantryItems)
	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].Score != scored[b].Score {
			return scored[a].Score > scored[b].Score
		}
		da := math.Abs(scored[a].Recipe.Nutrition.Calories - target)
		db := math.Abs(scored[b].Recipe.Nutrition.Calories - target)
		return da < db
	})
	if q.TopK > 0 && q.TopK < len(scored) {
		scored = scored[:q.TopK]
	}

	common.LogDebug("食譜比對完成",
		zap.String("meal_type", string(q.MealType)),
		zap.Int("candidates", len(survivors)),
		zap.Strings("relaxed", trail),
	)
	return &MealResult{Matches: scored, Relaxed: trail}, nil
}

// Search 語意搜尋食譜，只套用過敏原與餐別條件，不放寬
func (m *MealMatcher) Search(ctx context.Context, p *common.Profile, query string, mealType common.MealType, topK int) []ScoredRecipe {
	var pipe pipeline[*common.Recipe]
	if p != nil {
		pipe = m.pipeline(p, mealType, false)
	} else if mealType != "" {
		pipe.add(StageMealType, true, func(r *common.Recipe) bool { return r.MealType == mealType })
	}

	survivors := pipe.filter(m.catalog.All(), nil)
	if len(survivors) == 0 {
		return []ScoredRecipe{}
	}
	texts := make([]string, len(survivors))
	for i, r := range survivors {
		texts[i] = r.Text()
	}
	sem := semanticScores(ctx, m.index, query, texts)

	out := make([]ScoredRecipe, len(survivors))
	for i, r := range survivors {
		s := roundScore(sem[i])
		out[i] = ScoredRecipe{Recipe: r, Score: s, Semantic: s}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	if topK > 0 && topK < len(out) {
		out = out[:topK]
	}
	return out
}

// pipeline 建立篩選步驟；full 為 false 時只保留過敏原與餐別
func (m *MealMatcher) pipeline(p *common.Profile, mealType common.MealType, full bool) pipeline[*common.Recipe] {
	var pipe pipeline[*common.Recipe]

	allergies := allergyKeys(p.Allergies)
	if len(allergies) > 0 {
		pipe.add(StageAllergen, true, func(r *common.Recipe) bool {
			return !containsAllergen(r, allergies)
		})
	}
	if mealType != "" {
		pipe.add(StageMealType, !full, func(r *common.Recipe) bool {
			return r.MealType == mealType
		})
	}
	if !full {
		return pipe
	}

	if len(allergies) > 0 {
		var family []string
		for _, a := range allergies {
			family = append(family, AllergenFamily(a)...)
		}
		pipe.add(StageAllergenFamily, false, func(r *common.Recipe) bool {
			return !touchesFamily(r, family)
		})
	}

	var prefs []common.DietaryTag
	for _, d := range p.DietaryPreferences {
		if d != "" && d != common.DietNone {
			prefs = append(prefs, d)
		}
	}
	if len(prefs) > 0 {
		pipe.add(StageDietary, false, func(r *common.Recipe) bool {
			for _, d := range prefs {
				if !d.SatisfiedBy(r.DietaryTags) {
					return false
				}
			}
			return true
		})
	}
	return pipe
}

// score 計算 0.4*食材覆蓋率 + 0.6*語意分數，保持輸入順序
func (m *MealMatcher) score(ctx context.Context, recipes []*common.Recipe, query string, pantry []string) []ScoredRecipe {
	texts := make([]string, len(recipes))
	for i, r := range recipes {
		texts[i] = r.Text()
	}
	sem := semanticScores(ctx, m.index, query, texts)

	out := make([]ScoredRecipe, len(recipes))
	for i, r := range recipes {
		overlap := PantryOverlap(r, pantry)
		out[i] = ScoredRecipe{
			Recipe:        r,
			Score:         roundScore(pantryWeight*overlap + semanticWeight*sem[i]),
			PantryOverlap: overlap,
			Semantic:      sem[i],
		}
	}
	return out
}

// PantryOverlap 被 pantry 涵蓋的食材數 / 食材總數
func PantryOverlap(r *common.Recipe, pantry []string) float64 {
	if len(r.Ingredients) == 0 || len(pantry) == 0 {
		return 0
	}
	covered := 0
	for _, ing := range r.Ingredients {
		for _, item := range pantry {
			if common.IngredientCovers(item, ing.Name) {
				covered++
				break
			}
		}
	}
	return float64(covered) / float64(len(r.Ingredients))
}

func allergyKeys(allergies []string) []string {
	var out []string
	for _, a := range allergies {
		if k := common.IngredientKey(a); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// containsAllergen 任一食材名稱包含過敏原字串（不分大小寫、單複數）
func containsAllergen(r *common.Recipe, allergies []string) bool {
	for _, ing := range r.Ingredients {
		key := common.IngredientKey(ing.Name)
		for _, a := range allergies {
			if strings.Contains(key, a) {
				return true
			}
		}
	}
	return false
}

// touchesFamily 食材或自由標籤屬於過敏原家族
func touchesFamily(r *common.Recipe, family []string) bool {
	for _, term := range family {
		for _, ing := range r.Ingredients {
			if common.ContainsTerm(ing.Name, term) {
				return true
			}
		}
		for _, tag := range r.Tags {
			if common.ContainsTerm(tag, term) {
				return true
			}
		}
	}
	return false
}
