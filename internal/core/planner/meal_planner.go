package planner

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"plan-generator/internal/core/matcher"
	"plan-generator/internal/pkg/common"

	"go.uber.org/zap"
)

const eps = 1e-9

// slotShares 各餐別的熱量比例，實際使用時依出現的餐別重新正規化
var slotShares = map[common.MealType]float64{
	common.MealBreakfast: 0.25,
	common.MealLunch:     0.35,
	common.MealDinner:    0.35,
	common.MealSnack:     0.10,
}

// Slot 一日中的一個餐點位置
type Slot struct {
	Type  common.MealType `json:"meal_type"`
	Share float64         `json:"share"`
}

// Slots 依每日餐數決定餐點位置
// 1 餐為晚餐，2 餐為午晚餐，3 餐以上為三餐加 (n-3) 份點心，extraSnacks 另外追加
func Slots(mealsPerDay, extraSnacks int) []Slot {
	var types []common.MealType
	switch {
	case mealsPerDay <= 1:
		types = []common.MealType{common.MealDinner}
	case mealsPerDay == 2:
		types = []common.MealType{common.MealLunch, common.MealDinner}
	default:
		types = append(types, common.MainMealTypes...)
		for i := 3; i < mealsPerDay; i++ {
			types = append(types, common.MealSnack)
		}
	}
	for i := 0; i < extraSnacks; i++ {
		types = append(types, common.MealSnack)
	}

	total := 0.0
	for _, t := range types {
		total += slotShares[t]
	}
	slots := make([]Slot, len(types))
	for i, t := range types {
		slots[i] = Slot{Type: t, Share: slotShares[t] / total}
	}
	return slots
}

// MealPlanner 餐點計畫組裝器
// --------------------------------------------------
type MealPlanner struct {
	matcher MealRanker
	opts    Options
}

// NewMealPlanner 創建餐點計畫組裝器
func NewMealPlanner(m MealRanker, opts Options) *MealPlanner {
	return &MealPlanner{matcher: m, opts: opts.withDefaults()}
}

// GenerateDailyPlan 產生單日計畫
func (p *MealPlanner) GenerateDailyPlan(ctx context.Context, profile *common.Profile, date time.Time) (*common.MealPlan, error) {
	return p.GeneratePlan(ctx, profile, date, 1)
}

// GenerateWeeklyPlan 產生七日計畫
func (p *MealPlanner) GenerateWeeklyPlan(ctx context.Context, profile *common.Profile, start time.Time) (*common.MealPlan, error) {
	return p.GeneratePlan(ctx, profile, start, 7)
}

// mealTargets 一日的熱量與營養素目標
type mealTargets struct {
	calories float64
	macros   common.MacroGrams
	slots    []float64 // 每個位置的熱量目標
}

// GeneratePlan 產生 days 天的餐點計畫
func (p *MealPlanner) GeneratePlan(ctx context.Context, profile *common.Profile, start time.Time, days int) (*common.MealPlan, error) {
	begin := time.Now()
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if days < 1 {
		return nil, common.NewValidationError("days must be at least 1")
	}

	slots := Slots(profile.MealsOrDefault(), p.opts.ExtraSnacks)
	targets := mealTargets{
		calories: profile.DailyCalorieTarget,
		macros:   profile.Macros.Grams(profile.DailyCalorieTarget),
		slots:    make([]float64, len(slots)),
	}
	for i, s := range slots {
		targets.slots[i] = profile.DailyCalorieTarget * s.Share
	}

	rankings := make(map[common.MealType][]*common.Recipe)
	var notes []string
	for i, s := range slots {
		if _, ok := rankings[s.Type]; ok {
			continue
		}
		res, err := p.matcher.Match(ctx, profile, matcher.MealQuery{
			MealType:       s.Type,
			TargetCalories: targets.slots[i],
		})
		if err != nil {
			return nil, fmt.Errorf("rank %s recipes: %w", s.Type, err)
		}
		ranked := make([]*common.Recipe, len(res.Matches))
		for n, m := range res.Matches {
			ranked[n] = m.Recipe
		}
		rankings[s.Type] = ranked

		if len(res.Relaxed) > 0 {
			notes = append(notes, fmt.Sprintf("%s: relaxed %s", s.Type, strings.Join(res.Relaxed, ", ")))
			if p.opts.Suggester != nil {
				if text := suggestion(func() (string, error) {
					return p.opts.Suggester.SuggestMeal(ctx, profile, s.Type)
				}); text != "" {
					notes = append(notes, fmt.Sprintf("%s suggestion: %s", s.Type, text))
				}
			}
		}
	}

	startDate := common.Date(start)
	plan := &common.MealPlan{
		ID:                 common.GenerateID("mp_"),
		Name:               fmt.Sprintf("%d-day meal plan from %s", days, common.FormatDate(startDate)),
		StartDate:          startDate,
		EndDate:            startDate.AddDate(0, 0, days-1),
		Days:               make([]*common.DailyMealPlan, 0, days),
		DailyCalorieTarget: profile.DailyCalorieTarget,
		Macros:             profile.Macros,
		CreatedAt:          p.opts.Now(),
	}

	// 候選數少於整個計畫的位置數時才允許重複
	reuse := make(map[common.MealType]bool, len(rankings))
	perDay := make(map[common.MealType]int, len(rankings))
	for _, s := range slots {
		perDay[s.Type]++
	}
	for mt, ranked := range rankings {
		reuse[mt] = len(ranked) < days*perDay[mt]
	}

	u := newUsage()
	for d := 0; d < days; d++ {
		day := p.assembleDay(startDate.AddDate(0, 0, d), slots, rankings, reuse, targets, u)
		if d == 0 {
			day.Notes = append(day.Notes, notes...)
		}
		plan.Days = append(plan.Days, day)
	}

	if p.opts.Recorder != nil {
		p.opts.Recorder.ObservePlan("meal", time.Since(begin))
	}
	common.LogInfo("餐點計畫已產生",
		zap.String("plan_id", plan.ID),
		zap.Int("days", days),
		zap.Int("slots", len(slots)),
		zap.Int("flagged_days", len(plan.FlaggedDays())),
		zap.Duration("耗時", time.Since(begin)),
	)
	return plan, nil
}

// assembleDay 依序填入每個位置，必要時修正，仍超出範圍則標記
func (p *MealPlanner) assembleDay(date time.Time, slots []Slot, rankings map[common.MealType][]*common.Recipe, reuse map[common.MealType]bool, t mealTargets, u *usage) *common.DailyMealPlan {
	picks := make([]*common.Recipe, len(slots))
	for i, s := range slots {
		ranked := rankings[s.Type]
		inDay := func(n int) bool { return containsRecipe(picks[:i], ranked[n].ID) }
		idx := u.pick(len(ranked), func(n int) string { return ranked[n].ID }, inDay)
		if idx < 0 {
			idx = u.pick(len(ranked), func(n int) string { return ranked[n].ID }, nil)
		}
		picks[i] = ranked[idx]
		u.touch(picks[i].ID)
	}

	// 熱量與營養素都超出範圍才修正
	attempts := 0
	for attempt := 0; attempt < p.opts.RepairAttempts; attempt++ {
		if !p.calorieMiss(picks, t) || !p.macroMiss(picks, t) {
			break
		}
		attempts++
		if !p.repair(picks, slots, rankings, reuse, t, u) {
			break
		}
	}

	day := &common.DailyMealPlan{
		Date:  date,
		Meals: make(map[common.MealType]*common.Recipe, len(common.MainMealTypes)),
	}
	for i, s := range slots {
		if s.Type == common.MealSnack {
			day.Snacks = append(day.Snacks, picks[i])
			continue
		}
		day.Meals[s.Type] = picks[i]
	}

	if !p.within(picks, t) {
		total := sumNutrition(picks)
		day.Tolerance = &common.ToleranceMiss{
			CalorieMiss:    p.calorieMiss(picks, t),
			MacroMiss:      p.macroMiss(picks, t),
			Calories:       total.Calories,
			TargetCalories: t.calories,
			Macros:         total.Macros(),
			TargetMacros:   t.macros,
			RepairAttempts: attempts,
		}
		common.LogWarn("日計畫超出容許範圍",
			zap.String("date", common.FormatDate(date)),
			zap.Float64("calories", total.Calories),
			zap.Float64("target", t.calories),
			zap.Int("repair_attempts", attempts),
		)
		if p.opts.Recorder != nil {
			p.opts.Recorder.IncToleranceMiss()
		}
	}
	return day
}

// repair 依熱量偏差由大到小嘗試替換一個位置，只接受能改善整日偏差的替換
// 只有允許重複的餐別才會考慮計畫中已用過的食譜
func (p *MealPlanner) repair(picks []*common.Recipe, slots []Slot, rankings map[common.MealType][]*common.Recipe, reuse map[common.MealType]bool, t mealTargets, u *usage) bool {
	current := p.objective(picks, t)
	total := sumNutrition(picks).Calories

	order := make([]int, len(picks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(picks[order[a]].Nutrition.Calories-t.slots[order[a]]) >
			math.Abs(picks[order[b]].Nutrition.Calories-t.slots[order[b]])
	})

	trial := make([]*common.Recipe, len(picks))
	for _, slot := range order {
		need := picks[slot].Nutrition.Calories + (t.calories - total)
		mt := slots[slot].Type
		ranked := rankings[mt]
		passes := []bool{true}
		if reuse[mt] {
			passes = append(passes, false)
		}

		for _, unusedOnly := range passes {
			best, bestObj, bestDist := -1, current, 0.0
			for n, cand := range ranked {
				if containsRecipe(picks, cand.ID) {
					continue
				}
				if unusedOnly && u.used(cand.ID) {
					continue
				}
				copy(trial, picks)
				trial[slot] = cand
				obj := p.objective(trial, t)
				dist := math.Abs(cand.Nutrition.Calories - need)
				switch {
				case obj < bestObj-eps:
					best, bestObj, bestDist = n, obj, dist
				case best >= 0 && math.Abs(obj-bestObj) <= eps && dist < bestDist:
					best, bestObj, bestDist = n, obj, dist
				}
			}
			if best >= 0 {
				if !reuse[mt] {
					// 被換下的食譜不在計畫中，之後的日子仍可選用
					u.release(picks[slot].ID)
				}
				picks[slot] = ranked[best]
				u.touch(ranked[best].ID)
				return true
			}
		}
	}
	return false
}

// within 熱量與營養素都在容許範圍內
func (p *MealPlanner) within(picks []*common.Recipe, t mealTargets) bool {
	total := sumNutrition(picks)
	return withinRatio(total.Calories, t.calories, p.opts.CalorieTolerance) &&
		p.macrosWithin(total.Macros(), t.macros)
}

func (p *MealPlanner) calorieMiss(picks []*common.Recipe, t mealTargets) bool {
	return !withinRatio(sumNutrition(picks).Calories, t.calories, p.opts.CalorieTolerance)
}

func (p *MealPlanner) macroMiss(picks []*common.Recipe, t mealTargets) bool {
	return !p.macrosWithin(sumNutrition(picks).Macros(), t.macros)
}

// macrosWithin 目標為 0 的營養素不檢查
func (p *MealPlanner) macrosWithin(have, want common.MacroGrams) bool {
	check := func(h, w float64) bool {
		return w <= 0 || withinRatio(h, w, p.opts.MacroTolerance)
	}
	return check(have.Protein, want.Protein) && check(have.Carbs, want.Carbs) && check(have.Fat, want.Fat)
}

// objective 熱量與營養素的相對偏差總和
func (p *MealPlanner) objective(picks []*common.Recipe, t mealTargets) float64 {
	total := sumNutrition(picks)
	rel := func(h, w float64) float64 {
		if w <= 0 {
			return 0
		}
		return math.Abs(h-w) / w
	}
	m := total.Macros()
	return rel(total.Calories, t.calories) +
		rel(m.Protein, t.macros.Protein) +
		rel(m.Carbs, t.macros.Carbs) +
		rel(m.Fat, t.macros.Fat)
}

func withinRatio(have, want, tolerance float64) bool {
	return math.Abs(have-want) <= tolerance*want+eps
}

func sumNutrition(recipes []*common.Recipe) common.Nutrition {
	var total common.Nutrition
	for _, r := range recipes {
		if r != nil {
			total = total.Add(r.Nutrition)
		}
	}
	return total
}

func containsRecipe(recipes []*common.Recipe, id string) bool {
	for _, r := range recipes {
		if r != nil && r.ID == id {
			return true
		}
	}
	return false
}
