package common

import (
	"fmt"
	"strings"
)

const (
	// HighIntensityMinutes 超過此時長視為高強度
	HighIntensityMinutes = 60

	referenceWeightKg      = 70.0
	secondsPerRep          = 3
	defaultExerciseMinutes = 5.0
)

// Exercise 單一動作
// Reps 與 DurationSeconds 必須剛好設定其中一個
type Exercise struct {
	Name              string        `json:"name" validate:"required"`
	MuscleGroups      []MuscleGroup `json:"muscle_groups,omitempty" validate:"dive,enum"`
	Equipment         []Equipment   `json:"equipment,omitempty" validate:"dive,enum"`
	Sets              int           `json:"sets" validate:"gte=1"`
	Reps              *int          `json:"reps,omitempty"`
	DurationSeconds   *int          `json:"duration_seconds,omitempty"`
	RestSeconds       *int          `json:"rest_seconds"`
	Difficulty        Difficulty    `json:"difficulty,omitempty" validate:"omitempty,enum"`
	CaloriesPerMinute float64       `json:"calories_per_minute" validate:"gt=0"`
	Instructions      string        `json:"instructions,omitempty"`
}

// Minutes 估算動作所需分鐘數
func (e *Exercise) Minutes() float64 {
	switch {
	case e.DurationSeconds != nil:
		return float64(*e.DurationSeconds) / 60
	case e.Reps != nil:
		return float64(max(e.Sets, 1)*(*e.Reps)*secondsPerRep) / 60
	}
	return defaultExerciseMinutes
}

// Workout 運動課表，載入目錄後不可變更
type Workout struct {
	ID              string        `json:"id" validate:"required"`
	Name            string        `json:"name" validate:"required"`
	Description     string        `json:"description,omitempty"`
	Exercises       []Exercise    `json:"exercises" validate:"min=1,dive"`
	Type            WorkoutType   `json:"workout_type" validate:"enum"`
	Difficulty      Difficulty    `json:"difficulty" validate:"enum"`
	DurationMinutes int           `json:"duration_minutes" validate:"gt=0"`
	TargetMuscles   []MuscleGroup `json:"target_muscles,omitempty" validate:"dive,enum"`
	Equipment       []Equipment   `json:"equipment,omitempty" validate:"dive,enum"`
	SearchableText  string        `json:"searchable_text,omitempty"`
}

// RequiredEquipment 課表與所有動作需要的器材聯集
func (w *Workout) RequiredEquipment() []Equipment {
	seen := make(map[Equipment]struct{})
	var out []Equipment
	add := func(list []Equipment) {
		for _, e := range list {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	add(w.Equipment)
	for i := range w.Exercises {
		add(w.Exercises[i].Equipment)
	}
	return out
}

// IsHighIntensity HIIT 或時長超過 60 分鐘
func (w *Workout) IsHighIntensity() bool {
	return w.Type == WorkoutHIIT || w.DurationMinutes > HighIntensityMinutes
}

// EstimateCalories 依體重估算消耗熱量，體重未知時以 70kg 計
func (w *Workout) EstimateCalories(weightKg float64) float64 {
	if weightKg <= 0 {
		weightKg = referenceWeightKg
	}
	total := 0.0
	for i := range w.Exercises {
		ex := &w.Exercises[i]
		total += ex.CaloriesPerMinute * ex.Minutes()
	}
	return total * weightKg / referenceWeightKg
}

// BuildSearchableText 名稱 + 描述 + 類型 + 肌群 + 動作名稱
func (w *Workout) BuildSearchableText() string {
	parts := []string{w.Name}
	if w.Description != "" {
		parts = append(parts, w.Description)
	}
	parts = append(parts, string(w.Type), string(w.Difficulty))
	for _, m := range w.TargetMuscles {
		parts = append(parts, strings.ReplaceAll(string(m), "_", " "))
	}
	for i := range w.Exercises {
		parts = append(parts, w.Exercises[i].Name)
	}
	return strings.Join(parts, " ")
}

// Text 已預先計算的搜尋文字，否則即時組合
func (w *Workout) Text() string {
	if w.SearchableText != "" {
		return w.SearchableText
	}
	return w.BuildSearchableText()
}

func (w *Workout) String() string {
	return fmt.Sprintf("%s(%s/%s, %dmin)", w.Name, w.Type, w.Difficulty, w.DurationMinutes)
}
