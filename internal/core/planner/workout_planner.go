package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"plan-generator/internal/core/matcher"
	"plan-generator/internal/pkg/common"

	"go.uber.org/zap"
)

const daysPerWeek = 7

const (
	restNote           = "Rest day"
	activeRecoveryNote = "Active recovery: light walking and mobility work"
)

// ScheduleOffsets n 個運動日在一週內的位置，round_half_up(i*7/n)
// 例如 4 天為 0, 2, 4, 5（週一、三、五、六）
func ScheduleOffsets(n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = (2*i*daysPerWeek + n) / (2 * n)
	}
	return out
}

// WorkoutPlanner 週運動計畫組裝器
// --------------------------------------------------
type WorkoutPlanner struct {
	matcher WorkoutRanker
	opts    Options
}

// NewWorkoutPlanner 創建週運動計畫組裝器
func NewWorkoutPlanner(m WorkoutRanker, opts Options) *WorkoutPlanner {
	return &WorkoutPlanner{matcher: m, opts: opts.withDefaults()}
}

// GenerateWeeklyPlan 產生七日運動計畫
// 相鄰的兩個運動日不會都是高強度
func (p *WorkoutPlanner) GenerateWeeklyPlan(ctx context.Context, profile *common.Profile, start time.Time, workoutDays int) (*common.WorkoutPlan, error) {
	begin := time.Now()
	if err := profile.ValidateFitness(); err != nil {
		return nil, err
	}
	if workoutDays < 0 || workoutDays > daysPerWeek {
		return nil, common.NewValidationError(fmt.Sprintf("workout days per week must be between 0 and 7, got %d", workoutDays))
	}

	prof := *profile
	if prof.MaxWorkoutMinutes <= 0 {
		prof.MaxWorkoutMinutes = p.opts.MaxWorkoutMinutes
	}

	startDate := common.Date(start)
	plan := &common.WorkoutPlan{
		ID:                 common.GenerateID("wp_"),
		Name:               fmt.Sprintf("%d-day workout week from %s", workoutDays, common.FormatDate(startDate)),
		StartDate:          startDate,
		EndDate:            startDate.AddDate(0, 0, daysPerWeek-1),
		Days:               make([]*common.DailyWorkoutPlan, daysPerWeek),
		WorkoutDaysPerWeek: workoutDays,
		FitnessGoals:       prof.FitnessGoals,
		CreatedAt:          p.opts.Now(),
	}
	for d := range plan.Days {
		plan.Days[d] = &common.DailyWorkoutPlan{
			Date:    startDate.AddDate(0, 0, d),
			RestDay: true,
			Notes:   restNote,
		}
	}

	rankings := make(map[common.WorkoutType]*matcher.WorkoutResult)
	rank := func(t common.WorkoutType) (*matcher.WorkoutResult, error) {
		if res, ok := rankings[t]; ok {
			return res, nil
		}
		res, err := p.matcher.Match(ctx, &prof, matcher.WorkoutQuery{Type: t})
		if err != nil {
			return nil, err
		}
		rankings[t] = res
		return res, nil
	}

	types := common.GoalWorkoutTypes(prof.FitnessGoals)
	u := newUsage()
	suggested := make(map[common.WorkoutType]bool)
	prevHigh := false

	for i, offset := range ScheduleOffsets(workoutDays) {
		day := plan.Days[offset]
		wt := types[i%len(types)]

		res, err := rank(wt)
		if err != nil {
			return nil, fmt.Errorf("rank %s workouts: %w", wt, err)
		}
		var notes []string
		if len(res.Relaxed) > 0 {
			plan.Adjustments = append(plan.Adjustments, fmt.Sprintf("%s: %s relaxed %s",
				common.FormatDate(day.Date), wt, strings.Join(res.Relaxed, ", ")))
			if p.opts.Suggester != nil && !suggested[wt] {
				suggested[wt] = true
				if text := suggestion(func() (string, error) {
					return p.opts.Suggester.SuggestWorkout(ctx, &prof, wt)
				}); text != "" {
					notes = append(notes, text)
				}
			}
		}

		chosen := pickWorkout(res, u, prevHigh)
		if chosen == nil {
			// 排名內都是高強度，改找低強度替代
			chosen = p.lowIntensitySubstitute(rank, u)
			if chosen != nil {
				notes = append(notes, fmt.Sprintf("Low-intensity %s substitute after a high-intensity day", chosen.Type))
				plan.Adjustments = append(plan.Adjustments, fmt.Sprintf("%s: %s replaced by %s to balance intensity",
					common.FormatDate(day.Date), wt, chosen.Name))
			}
		}

		if chosen == nil {
			day.Notes = activeRecoveryNote
			plan.Adjustments = append(plan.Adjustments, fmt.Sprintf("%s: no low-intensity workout available, scheduled active recovery",
				common.FormatDate(day.Date)))
			continue
		}

		u.touch(chosen.ID)
		day.Workouts = []*common.Workout{chosen}
		day.RestDay = false
		day.Notes = strings.Join(notes, "; ")
		prevHigh = chosen.IsHighIntensity()
	}

	if p.opts.Recorder != nil {
		p.opts.Recorder.ObservePlan("workout", time.Since(begin))
	}
	common.LogInfo("運動計畫已產生",
		zap.String("plan_id", plan.ID),
		zap.Int("workout_days", plan.WorkoutDays()),
		zap.Int("adjustments", len(plan.Adjustments)),
		zap.Duration("耗時", time.Since(begin)),
	)
	return plan, nil
}

// lowIntensitySubstitute 先找伸展類，再找任何類型的低強度課表
func (p *WorkoutPlanner) lowIntensitySubstitute(rank func(common.WorkoutType) (*matcher.WorkoutResult, error), u *usage) *common.Workout {
	for _, t := range []common.WorkoutType{common.WorkoutFlexibility, ""} {
		res, err := rank(t)
		if err != nil {
			var c *common.ConstraintError
			if !errors.As(err, &c) {
				common.LogDebug("Substitute ranking failed", zap.Error(err))
			}
			continue
		}
		// 放寬類型後的結果不一定是伸展類，仍只接受低強度
		if w := pickWorkout(res, u, true); w != nil {
			return w
		}
	}
	return nil
}

// pickWorkout 依排名挑選未使用的課表，avoidHigh 時略過高強度
func pickWorkout(res *matcher.WorkoutResult, u *usage, avoidHigh bool) *common.Workout {
	var skip func(int) bool
	if avoidHigh {
		skip = func(n int) bool { return res.Matches[n].Workout.IsHighIntensity() }
	}
	idx := u.pick(len(res.Matches), func(n int) string { return res.Matches[n].Workout.ID }, skip)
	if idx < 0 {
		return nil
	}
	return res.Matches[idx].Workout
}
