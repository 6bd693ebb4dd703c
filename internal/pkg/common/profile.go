package common

import (
	"fmt"
	"math"
	"strings"
)

const (
	// kcal per gram
	ProteinKcalPerGram = 4.0
	CarbsKcalPerGram   = 4.0
	FatKcalPerGram     = 9.0

	macroSumTolerance = 0.01
)

// MacroRatios 三大營養素熱量比例，總和應為 1
type MacroRatios struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// DefaultMacroRatios 預設比例（30/40/30）
var DefaultMacroRatios = MacroRatios{Protein: 0.3, Carbs: 0.4, Fat: 0.3}

// Grams 依每日熱量換算各營養素的目標克數
func (m MacroRatios) Grams(calories float64) MacroGrams {
	return MacroGrams{
		Protein: calories * m.Protein / ProteinKcalPerGram,
		Carbs:   calories * m.Carbs / CarbsKcalPerGram,
		Fat:     calories * m.Fat / FatKcalPerGram,
	}
}

// MacroGrams 營養素克數
type MacroGrams struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// Profile 使用者檔案，由外部建立，核心只讀
type Profile struct {
	Name               string        `json:"name,omitempty"`
	DietaryPreferences []DietaryTag  `json:"dietary_preferences,omitempty"`
	Allergies          []string      `json:"allergies,omitempty"`
	PantryItems        []string      `json:"pantry_items,omitempty"`
	Equipment          []Equipment   `json:"equipment,omitempty"`
	FitnessLevel       FitnessLevel  `json:"fitness_level,omitempty"`
	FitnessGoals       []FitnessGoal `json:"fitness_goals,omitempty"`
	DailyCalorieTarget float64       `json:"daily_calorie_target"`
	Macros             MacroRatios   `json:"macros"`
	MealsPerDay        int           `json:"meals_per_day,omitempty"`
	MaxWorkoutMinutes  int           `json:"max_workout_minutes,omitempty"`
	WeightKg           float64       `json:"weight_kg,omitempty"`
}

// Validate 檢查熱量目標與營養素比例
func (p *Profile) Validate() error {
	if p == nil {
		return NewValidationError("profile is required")
	}
	if p.DailyCalorieTarget <= 0 {
		return NewValidationError("daily calorie target must be positive")
	}
	m := p.Macros
	if m.Protein < 0 || m.Carbs < 0 || m.Fat < 0 {
		return NewValidationError("macro ratios must be non-negative")
	}
	if sum := m.Protein + m.Carbs + m.Fat; math.Abs(sum-1) > macroSumTolerance {
		return NewValidationError(fmt.Sprintf("macro ratios must sum to 1.0, got %.3f", sum))
	}
	if p.MealsPerDay < 0 {
		return NewValidationError("meals per day must not be negative")
	}
	return p.ValidateFitness()
}

// ValidateFitness 檢查體能程度、目標與器材，運動計畫不需要熱量目標
func (p *Profile) ValidateFitness() error {
	if p == nil {
		return NewValidationError("profile is required")
	}
	if p.FitnessLevel != "" && !p.FitnessLevel.Valid() {
		return NewValidationError(fmt.Sprintf("unknown fitness level %q", p.FitnessLevel))
	}
	for _, g := range p.FitnessGoals {
		if !g.Valid() {
			return NewValidationError(fmt.Sprintf("unknown fitness goal %q", g))
		}
	}
	for _, e := range p.Equipment {
		if !e.Valid() {
			return NewValidationError(fmt.Sprintf("unknown equipment %q", e))
		}
	}
	if p.MaxWorkoutMinutes < 0 {
		return NewValidationError("max workout minutes must not be negative")
	}
	return nil
}

// MealsOrDefault 每日餐數，未設定時為 3
func (p *Profile) MealsOrDefault() int {
	if p.MealsPerDay <= 0 {
		return 3
	}
	return p.MealsPerDay
}

// Level 體能程度，未設定時視為 beginner
func (p *Profile) Level() FitnessLevel {
	if p.FitnessLevel == "" {
		return LevelBeginner
	}
	return p.FitnessLevel
}

// MealSummary 沒有查詢字串時用於語意比對的檔案摘要
func (p *Profile) MealSummary(mealType MealType) string {
	parts := []string{}
	for _, d := range p.DietaryPreferences {
		if d != DietNone {
			parts = append(parts, strings.ReplaceAll(string(d), "_", " "))
		}
	}
	if mealType != "" {
		parts = append(parts, string(mealType))
	}
	parts = append(parts, "meal")
	if len(p.PantryItems) > 0 {
		parts = append(parts, "with")
		parts = append(parts, p.PantryItems...)
	}
	return strings.Join(parts, " ")
}

// GoalSummary 沒有查詢字串時用於運動語意比對的目標摘要
func (p *Profile) GoalSummary() string {
	parts := []string{string(p.Level())}
	goals := p.FitnessGoals
	if len(goals) == 0 {
		goals = []FitnessGoal{GoalGeneralFitness}
	}
	for _, g := range goals {
		parts = append(parts, strings.ReplaceAll(string(g), "_", " "))
	}
	for _, m := range GoalMuscleGroups(goals) {
		parts = append(parts, strings.ReplaceAll(string(m), "_", " "))
	}
	parts = append(parts, "workout")
	return strings.Join(parts, " ")
}

// BodyMetrics 估算熱量目標所需的身體資料
type BodyMetrics struct {
	WeightKg      float64 `json:"weight_kg"`
	HeightCm      float64 `json:"height_cm"`
	Age           int     `json:"age"`
	Sex           string  `json:"sex"`
	ActivityLevel string  `json:"activity_level"`
}

var activityFactors = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// EstimateCalorieTarget 以 Mifflin-St Jeor 公式估算每日熱量，並依目標調整
func EstimateCalorieTarget(b BodyMetrics, goals []FitnessGoal) (float64, error) {
	if b.WeightKg <= 0 || b.HeightCm <= 0 || b.Age <= 0 {
		return 0, NewValidationError("weight, height and age are required to estimate calories")
	}
	bmr := 10*b.WeightKg + 6.25*b.HeightCm - 5*float64(b.Age)
	switch strings.ToLower(b.Sex) {
	case "male", "m":
		bmr += 5
	default:
		bmr -= 161
	}
	factor, ok := activityFactors[normalizeTag(b.ActivityLevel)]
	if !ok {
		factor = activityFactors["moderate"]
	}
	tdee := bmr * factor
	for _, g := range goals {
		switch g {
		case GoalWeightLoss:
			tdee -= 500
		case GoalMuscleGain:
			tdee += 300
		}
	}
	return math.Round(math.Max(tdee, 1200)), nil
}
