package matcher

import (
	"context"
	"sort"
	"strings"

	"plan-generator/internal/core/catalog"
	"plan-generator/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	alignmentWeight = 0.4

	StageEquipment   = "equipment"
	StageWorkoutType = "workout_type"
	StageDuration    = "duration"
	StageDifficulty  = "difficulty"
)

// WorkoutQuery 運動查詢
type WorkoutQuery struct {
	Type  common.WorkoutType `json:"workout_type,omitempty"`
	Query string             `json:"query,omitempty"`
	// MaxDuration 分鐘，未設定時使用檔案的 MaxWorkoutMinutes
	MaxDuration int `json:"max_duration,omitempty"`
	TopK        int `json:"top_k,omitempty"`
}

// ScoredWorkout 評分後的課表
type ScoredWorkout struct {
	Workout   *common.Workout `json:"workout"`
	Score     float64         `json:"score"`
	Alignment float64         `json:"alignment"`
	Semantic  float64         `json:"semantic"`
}

// WorkoutResult 課表比對結果
type WorkoutResult struct {
	Matches []ScoredWorkout `json:"matches"`
	Relaxed []string        `json:"relaxed,omitempty"`
}

// WorkoutMatcher 課表比對器，無狀態
// --------------------------------------------------
type WorkoutMatcher struct {
	catalog *catalog.WorkoutCatalog
	index   Searcher
	opts    Options
}

// NewWorkoutMatcher 創建課表比對器
func NewWorkoutMatcher(c *catalog.WorkoutCatalog, index Searcher, opts Options) *WorkoutMatcher {
	return &WorkoutMatcher{catalog: c, index: index, opts: opts}
}

// Match 依檔案篩選並排序課表
// 器材永不放寬，其餘依 workout_type、duration、difficulty 的順序放寬
func (m *WorkoutMatcher) Match(ctx context.Context, p *common.Profile, q WorkoutQuery) (*WorkoutResult, error) {
	if err := p.ValidateFitness(); err != nil {
		return nil, err
	}
	if q.Type != "" && !q.Type.Valid() {
		return nil, common.NewValidationError("unknown workout type " + string(q.Type))
	}

	maxMinutes := q.MaxDuration
	if maxMinutes <= 0 {
		maxMinutes = p.MaxWorkoutMinutes
	}

	var pipe pipeline[*common.Workout]
	pipe.add(StageEquipment, true, func(w *common.Workout) bool {
		return common.EquipmentSubset(w.RequiredEquipment(), p.Equipment)
	})
	if q.Type != "" {
		pipe.add(StageWorkoutType, false, func(w *common.Workout) bool { return w.Type == q.Type })
	}
	if maxMinutes > 0 {
		pipe.add(StageDuration, false, func(w *common.Workout) bool { return w.DurationMinutes <= maxMinutes })
	}
	level := p.Level()
	pipe.add(StageDifficulty, false, func(w *common.Workout) bool { return level.Allows(w.Difficulty) })

	survivors, trail := pipe.run(m.catalog.All())
	if len(trail) > 0 {
		common.LogRelaxation("workout", string(q.Type), trail)
		for _, s := range trail {
			if m.opts.OnRelaxation != nil {
				m.opts.OnRelaxation("workout", s)
			}
		}
	}
	if len(survivors) == 0 {
		return nil, &common.ConstraintError{Domain: "workout", Slot: string(q.Type), Trail: trail}
	}

	query := strings.TrimSpace(q.Query)
	if query == "" {
		query = p.GoalSummary()
		if q.Type != "" {
			query = string(q.Type) + " " + query
		}
	}

	scored := m.score(ctx, survivors, query, common.GoalMuscleGroups(p.FitnessGoals))
	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].Score != scored[b].Score {
			return scored[a].Score > scored[b].Score
		}
		return scored[a].Workout.DurationMinutes < scored[b].Workout.DurationMinutes
	})
	if q.TopK > 0 && q.TopK < len(scored) {
		scored = scored[:q.TopK]
	}

	common.LogDebug("課表比對完成",
		zap.String("workout_type", string(q.Type)),
		zap.Int("candidates", len(survivors)),
		zap.Strings("relaxed", trail),
	)
	return &WorkoutResult{Matches: scored, Relaxed: trail}, nil
}

// Search 語意搜尋課表，只套用器材、類型與時長上限，不放寬
// maxDuration <= 0 表示不限時長
func (m *WorkoutMatcher) Search(ctx context.Context, p *common.Profile, query string, workoutType common.WorkoutType, maxDuration, topK int) []ScoredWorkout {
	var pipe pipeline[*common.Workout]
	if p != nil {
		pipe.add(StageEquipment, true, func(w *common.Workout) bool {
			return common.EquipmentSubset(w.RequiredEquipment(), p.Equipment)
		})
	}
	if workoutType != "" {
		pipe.add(StageWorkoutType, true, func(w *common.Workout) bool { return w.Type == workoutType })
	}
	if maxDuration > 0 {
		pipe.add(StageDuration, true, func(w *common.Workout) bool { return w.DurationMinutes <= maxDuration })
	}

	survivors := pipe.filter(m.catalog.All(), nil)
	if len(survivors) == 0 {
		return []ScoredWorkout{}
	}
	texts := make([]string, len(survivors))
	for i, w := range survivors {
		texts[i] = w.Text()
	}
	sem := semanticScores(ctx, m.index, query, texts)

	out := make([]ScoredWorkout, len(survivors))
	for i, w := range survivors {
		s := roundScore(sem[i])
		out[i] = ScoredWorkout{Workout: w, Score: s, Semantic: s}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	if topK > 0 && topK < len(out) {
		out = out[:topK]
	}
	return out
}

// score 計算 0.4*目標肌群比例 + 0.6*語意分數，保持輸入順序
func (m *WorkoutMatcher) score(ctx context.Context, workouts []*common.Workout, query string, targets []common.MuscleGroup) []ScoredWorkout {
	texts := make([]string, len(workouts))
	for i, w := range workouts {
		texts[i] = w.Text()
	}
	sem := semanticScores(ctx, m.index, query, texts)

	out := make([]ScoredWorkout, len(workouts))
	for i, w := range workouts {
		align := GoalAlignment(w, targets)
		out[i] = ScoredWorkout{
			Workout:   w,
			Score:     roundScore(alignmentWeight*align + semanticWeight*sem[i]),
			Alignment: align,
			Semantic:  sem[i],
		}
	}
	return out
}

// GoalAlignment |課表肌群 ∩ 目標肌群| / max(|課表肌群|, 1)
func GoalAlignment(w *common.Workout, targets []common.MuscleGroup) float64 {
	want := make(map[common.MuscleGroup]struct{}, len(targets))
	for _, t := range targets {
		want[t] = struct{}{}
	}
	hit := 0
	for _, mg := range w.TargetMuscles {
		if _, ok := want[mg]; ok {
			hit++
		}
	}
	return float64(hit) / float64(max(len(w.TargetMuscles), 1))
}
