package common

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date 只保留日期（UTC 午夜）
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return t, nil
}

// FormatDate 格式化為 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ToleranceMiss 修正後仍超出容許範圍的日計畫標記
type ToleranceMiss struct {
	CalorieMiss    bool       `json:"calorie_miss"`
	MacroMiss      bool       `json:"macro_miss"`
	Calories       float64    `json:"calories"`
	TargetCalories float64    `json:"target_calories"`
	Macros         MacroGrams `json:"macros"`
	TargetMacros   MacroGrams `json:"target_macros"`
	RepairAttempts int        `json:"repair_attempts"`
}

// DailyMealPlan 一日餐點
type DailyMealPlan struct {
	Date      time.Time            `json:"date"`
	Meals     map[MealType]*Recipe `json:"meals"`
	Snacks    []*Recipe            `json:"snacks,omitempty"`
	Notes     []string             `json:"notes,omitempty"`
	Tolerance *ToleranceMiss       `json:"tolerance_miss,omitempty"`
}

// Recipes 依 早餐、午餐、晚餐、點心 的順序列出所有食譜
func (d *DailyMealPlan) Recipes() []*Recipe {
	out := make([]*Recipe, 0, len(d.Meals)+len(d.Snacks))
	for _, mt := range MainMealTypes {
		if r, ok := d.Meals[mt]; ok && r != nil {
			out = append(out, r)
		}
	}
	for _, r := range d.Snacks {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// TotalNutrition 由所引用的食譜即時計算，不另外儲存
func (d *DailyMealPlan) TotalNutrition() Nutrition {
	var total Nutrition
	for _, r := range d.Recipes() {
		total = total.Add(r.Nutrition)
	}
	return total
}

// Flagged 是否被標記為超出容許範圍
func (d *DailyMealPlan) Flagged() bool {
	return d.Tolerance != nil
}

// MealPlan 多日餐點計畫
type MealPlan struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	StartDate          time.Time        `json:"start_date"`
	EndDate            time.Time        `json:"end_date"`
	Days               []*DailyMealPlan `json:"days"`
	DailyCalorieTarget float64          `json:"daily_calorie_target"`
	Macros             MacroRatios      `json:"macros"`
	CreatedAt          time.Time        `json:"created_at"`
}

// FlaggedDays 被標記的日期
func (p *MealPlan) FlaggedDays() []time.Time {
	var out []time.Time
	for _, d := range p.Days {
		if d.Flagged() {
			out = append(out, d.Date)
		}
	}
	return out
}

// Validate 日期連續且數量等於 end-start+1
func (p *MealPlan) Validate() error {
	dates := make([]time.Time, len(p.Days))
	for i, d := range p.Days {
		dates[i] = d.Date
	}
	return validateSequence(p.StartDate, p.EndDate, dates)
}

// DailyWorkoutPlan 一日運動
type DailyWorkoutPlan struct {
	Date     time.Time  `json:"date"`
	Workouts []*Workout `json:"workouts,omitempty"`
	RestDay  bool       `json:"rest_day"`
	Notes    string     `json:"notes,omitempty"`
}

// HighIntensity 當日是否包含高強度課表
func (d *DailyWorkoutPlan) HighIntensity() bool {
	for _, w := range d.Workouts {
		if w.IsHighIntensity() {
			return true
		}
	}
	return false
}

// TotalMinutes 當日運動總時長
func (d *DailyWorkoutPlan) TotalMinutes() int {
	total := 0
	for _, w := range d.Workouts {
		total += w.DurationMinutes
	}
	return total
}

// WorkoutPlan 週運動計畫
type WorkoutPlan struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	StartDate          time.Time           `json:"start_date"`
	EndDate            time.Time           `json:"end_date"`
	Days               []*DailyWorkoutPlan `json:"days"`
	WorkoutDaysPerWeek int                 `json:"workout_days_per_week"`
	FitnessGoals       []FitnessGoal       `json:"fitness_goals,omitempty"`
	Adjustments        []string            `json:"adjustments,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

// WorkoutDays 有排課的天數
func (p *WorkoutPlan) WorkoutDays() int {
	n := 0
	for _, d := range p.Days {
		if len(d.Workouts) > 0 {
			n++
		}
	}
	return n
}

// EstimatedCalories 整週估計消耗熱量
func (p *WorkoutPlan) EstimatedCalories(weightKg float64) float64 {
	total := 0.0
	for _, d := range p.Days {
		for _, w := range d.Workouts {
			total += w.EstimateCalories(weightKg)
		}
	}
	return total
}

// Validate 日期連續、休息日不含課表
func (p *WorkoutPlan) Validate() error {
	dates := make([]time.Time, len(p.Days))
	for i, d := range p.Days {
		if d.RestDay && len(d.Workouts) > 0 {
			return fmt.Errorf("day %s is a rest day with workouts", FormatDate(d.Date))
		}
		dates[i] = d.Date
	}
	return validateSequence(p.StartDate, p.EndDate, dates)
}

func validateSequence(start, end time.Time, dates []time.Time) error {
	want := int(Date(end).Sub(Date(start)).Hours()/24) + 1
	if len(dates) != want {
		return fmt.Errorf("plan has %d days, expected %d", len(dates), want)
	}
	for i, d := range dates {
		if expect := Date(start).AddDate(0, 0, i); !Date(d).Equal(expect) {
			return fmt.Errorf("day %d is %s, expected %s", i, FormatDate(d), FormatDate(expect))
		}
	}
	return nil
}
