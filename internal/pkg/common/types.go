package common

import (
	"fmt"
	"strings"
)

// Ingredient 食材
type Ingredient struct {
	Name     string  `json:"name" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Unit     string  `json:"unit"`
	Optional bool    `json:"optional,omitempty"`
}

// Nutrition 每份營養成分
type Nutrition struct {
	Calories float64 `json:"calories" validate:"gte=0"`
	Protein  float64 `json:"protein" validate:"gte=0"`
	Carbs    float64 `json:"carbs" validate:"gte=0"`
	Fat      float64 `json:"fat" validate:"gte=0"`
	Fiber    float64 `json:"fiber" validate:"gte=0"`
	Sugar    float64 `json:"sugar" validate:"gte=0"`
	Sodium   float64 `json:"sodium" validate:"gte=0"`
}

// Add 累加營養成分
func (n Nutrition) Add(o Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
		Fiber:    n.Fiber + o.Fiber,
		Sugar:    n.Sugar + o.Sugar,
		Sodium:   n.Sodium + o.Sodium,
	}
}

// Macros 營養素克數
func (n Nutrition) Macros() MacroGrams {
	return MacroGrams{Protein: n.Protein, Carbs: n.Carbs, Fat: n.Fat}
}

// Recipe 食譜，載入目錄後不可變更
type Recipe struct {
	ID             string       `json:"id" validate:"required"`
	Name           string       `json:"name" validate:"required"`
	Description    string       `json:"description,omitempty"`
	Ingredients    []Ingredient `json:"ingredients" validate:"min=1,dive"`
	Instructions   []string     `json:"instructions,omitempty"`
	Nutrition      Nutrition    `json:"nutrition"`
	MealType       MealType     `json:"meal_type" validate:"enum"`
	DietaryTags    []DietaryTag `json:"dietary_tags,omitempty" validate:"dive,enum"`
	Tags           []string     `json:"tags,omitempty"`
	PrepMinutes    int          `json:"prep_minutes,omitempty" validate:"gte=0"`
	CookMinutes    int          `json:"cook_minutes,omitempty" validate:"gte=0"`
	Servings       int          `json:"servings,omitempty" validate:"gte=0"`
	SearchableText string       `json:"searchable_text,omitempty"`
}

// BuildSearchableText 名稱 + 描述 + 標籤，用於向量化
func (r *Recipe) BuildSearchableText() string {
	parts := []string{r.Name}
	if r.Description != "" {
		parts = append(parts, r.Description)
	}
	parts = append(parts, string(r.MealType))
	for _, d := range r.DietaryTags {
		parts = append(parts, strings.ReplaceAll(string(d), "_", " "))
	}
	parts = append(parts, r.Tags...)
	for _, ing := range r.Ingredients {
		parts = append(parts, ing.Name)
	}
	return strings.Join(parts, " ")
}

// Text 已預先計算的搜尋文字，否則即時組合
func (r *Recipe) Text() string {
	if r.SearchableText != "" {
		return r.SearchableText
	}
	return r.BuildSearchableText()
}

// IngredientNames 所有食材名稱
func (r *Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names = append(names, ing.Name)
	}
	return names
}

// TotalMinutes 準備加烹調時間
func (r *Recipe) TotalMinutes() int {
	return r.PrepMinutes + r.CookMinutes
}

func (r *Recipe) String() string {
	return fmt.Sprintf("%s(%s, %.0f kcal)", r.Name, r.MealType, r.Nutrition.Calories)
}

// StringSliceToString 將字符串切片轉換為逗號分隔的字符串
func StringSliceToString(slice []string) string {
	if len(slice) == 0 {
		return ""
	}
	return strings.Join(slice, ", ")
}

// IngredientSliceToString 將食材切片轉換為格式化的字符串
func IngredientSliceToString(ingredients []Ingredient) string {
	if len(ingredients) == 0 {
		return ""
	}

	var parts []string
	for _, ing := range ingredients {
		part := ing.Name
		if ing.Quantity > 0 {
			part = fmt.Sprintf("%s %g%s", ing.Name, ing.Quantity, unitSuffix(ing.Unit))
		}
		if ing.Optional {
			part += " (optional)"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

func unitSuffix(unit string) string {
	if unit == "" {
		return ""
	}
	return " " + unit
}
