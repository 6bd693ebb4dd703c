// Package shopping reduces an assembled meal plan to a categorized shopping list.
package shopping

import (
	"strings"

	"plan-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// placeholders 不是實際食材的佔位文字
var placeholders = []string{
	"various ingredients",
	"mixed ingredients",
	"as described",
	"as needed",
}

// Reducer 購物清單產生器，無狀態
type Reducer struct{}

// NewReducer 創建購物清單產生器
func NewReducer() *Reducer {
	return &Reducer{}
}

// Generate 由餐點計畫產生購物清單
// 重複出現的食譜每次都計入數量；pantry 中已有的食材整項排除，不做扣減
func (r *Reducer) Generate(plan *common.MealPlan, pantryItems []string) (*common.ShoppingList, error) {
	if plan == nil {
		return nil, common.NewValidationError("meal plan is required")
	}
	var recipes []*common.Recipe
	for _, day := range plan.Days {
		recipes = append(recipes, day.Recipes()...)
	}
	list := r.FromRecipes(recipes, pantryItems)
	list.PlanID = plan.ID

	common.LogInfo("購物清單已產生",
		zap.String("plan_id", plan.ID),
		zap.Int("recipes", len(recipes)),
		zap.Int("items", list.Len()),
		zap.Int("pantry_excluded", len(list.PantryExcluded)),
	)
	return list, nil
}

// lineKey 合併鍵：正規化名稱 + 正規化單位
type lineKey struct {
	name string
	unit string
}

// FromRecipes 攤平、排除 pantry、依 (名稱, 單位) 合併後分類
func (r *Reducer) FromRecipes(recipes []*common.Recipe, pantryItems []string) *common.ShoppingList {
	pantry := make(map[string]struct{}, len(pantryItems))
	for _, p := range pantryItems {
		if k := common.IngredientKey(p); k != "" {
			pantry[k] = struct{}{}
		}
	}

	var (
		order    []lineKey
		lines    = make(map[lineKey]*common.ShoppingItem)
		excluded []string
		seenEx   = make(map[string]struct{})
	)

	for _, recipe := range recipes {
		if recipe == nil {
			continue
		}
		for _, ing := range recipe.Ingredients {
			name := strings.TrimSpace(ing.Name)
			if name == "" || isPlaceholder(name) {
				continue
			}
			key := common.IngredientKey(name)
			if _, ok := pantry[key]; ok {
				if _, dup := seenEx[key]; !dup {
					seenEx[key] = struct{}{}
					excluded = append(excluded, name)
				}
				continue
			}

			lk := lineKey{name: key, unit: common.NormalizeUnit(ing.Unit)}
			item, ok := lines[lk]
			if !ok {
				item = &common.ShoppingItem{
					Name:     name,
					Unit:     lk.unit,
					Category: Categorize(name),
					Optional: true,
				}
				lines[lk] = item
				order = append(order, lk)
			}
			item.Quantity += ing.Quantity
			// 只要有一份食譜必須使用，整項就不是選用
			item.Optional = item.Optional && ing.Optional
			if !containsString(item.Recipes, recipe.Name) {
				item.Recipes = append(item.Recipes, recipe.Name)
			}
		}
	}

	list := &common.ShoppingList{
		Items:          make(map[common.Category][]common.ShoppingItem),
		PantryExcluded: excluded,
	}
	for _, lk := range order {
		item := lines[lk]
		list.Items[item.Category] = append(list.Items[item.Category], *item)
	}
	return list
}

func isPlaceholder(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range placeholders {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
