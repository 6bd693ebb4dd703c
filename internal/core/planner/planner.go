// Package planner assembles multi-day meal and workout plans from matcher rankings.
package planner

import (
	"context"
	"time"

	"plan-generator/internal/core/matcher"
	"plan-generator/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	DefaultCalorieTolerance  = 0.10
	DefaultMacroTolerance    = 0.15
	DefaultRepairAttempts    = 3
	DefaultMaxWorkoutMinutes = 60
)

// MealRanker 食譜排序來源，由 matcher.MealMatcher 實作
type MealRanker interface {
	Match(ctx context.Context, p *common.Profile, q matcher.MealQuery) (*matcher.MealResult, error)
}

// WorkoutRanker 課表排序來源，由 matcher.WorkoutMatcher 實作
type WorkoutRanker interface {
	Match(ctx context.Context, p *common.Profile, q matcher.WorkoutQuery) (*matcher.WorkoutResult, error)
}

// Suggester 生成式建議，失敗時計畫仍照常產生
type Suggester interface {
	SuggestMeal(ctx context.Context, p *common.Profile, mealType common.MealType) (string, error)
	SuggestWorkout(ctx context.Context, p *common.Profile, workoutType common.WorkoutType) (string, error)
}

// Recorder 計畫產生的統計，由 monitoring.Metrics 實作
type Recorder interface {
	ObservePlan(kind string, d time.Duration)
	IncToleranceMiss()
}

// Options 組裝器設定
type Options struct {
	CalorieTolerance  float64
	MacroTolerance    float64
	RepairAttempts    int // 0 使用預設值，負數停用修正
	ExtraSnacks       int
	MaxWorkoutMinutes int // 檔案未設定時的預設運動時長上限
	Suggester         Suggester
	Recorder          Recorder
	Now               func() time.Time
}

func (o Options) withDefaults() Options {
	if o.CalorieTolerance <= 0 {
		o.CalorieTolerance = DefaultCalorieTolerance
	}
	if o.MacroTolerance <= 0 {
		o.MacroTolerance = DefaultMacroTolerance
	}
	switch {
	case o.RepairAttempts == 0:
		o.RepairAttempts = DefaultRepairAttempts
	case o.RepairAttempts < 0:
		o.RepairAttempts = 0
	}
	if o.ExtraSnacks < 0 {
		o.ExtraSnacks = 0
	}
	if o.MaxWorkoutMinutes <= 0 {
		o.MaxWorkoutMinutes = DefaultMaxWorkoutMinutes
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// usage 記錄每個項目最後一次被使用的序號，用於避免重複與 LRU 重用
type usage struct {
	seq  int
	last map[string]int
}

func newUsage() *usage {
	return &usage{last: make(map[string]int)}
}

func (u *usage) used(id string) bool {
	_, ok := u.last[id]
	return ok
}

func (u *usage) touch(id string) {
	u.seq++
	u.last[id] = u.seq
}

func (u *usage) release(id string) {
	delete(u.last, id)
}

// pick 回傳第一個未使用的索引，全部都用過時回傳最久未使用的
// skip 為 true 的項目不列入考慮；沒有可選項目時回傳 -1
func (u *usage) pick(n int, id func(int) string, skip func(int) bool) int {
	lru, lruSeq := -1, 0
	for i := 0; i < n; i++ {
		if skip != nil && skip(i) {
			continue
		}
		key := id(i)
		seq, ok := u.last[key]
		if !ok {
			return i
		}
		if lru < 0 || seq < lruSeq {
			lru, lruSeq = i, seq
		}
	}
	return lru
}

// suggestion 取得建議文字，錯誤一律忽略
func suggestion(fn func() (string, error)) string {
	text, err := fn()
	if err != nil {
		common.LogDebug("Suggestion unavailable", zap.Error(err))
		return ""
	}
	return text
}
