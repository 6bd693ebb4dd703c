// Package matcher ranks catalog items against a user profile.
package matcher

import (
	"context"

	"plan-generator/internal/core/embedding"
)

// Searcher 語意相似度查詢，由 embedding.Index 實作
type Searcher interface {
	FindSimilar(ctx context.Context, query string, candidates []string, topK int) []embedding.Match
}

// RelaxationHook 每放寬一個篩選條件呼叫一次
type RelaxationHook func(domain, stage string)

// stage 一個具名的篩選步驟
type stage[T any] struct {
	name string
	hard bool // 永遠不放寬
	keep func(T) bool
}

// pipeline 依序套用篩選步驟，沒有結果時依序停用可放寬的步驟
// --------------------------------------------------
type pipeline[T any] struct {
	stages []stage[T]
}

func (p *pipeline[T]) add(name string, hard bool, keep func(T) bool) {
	p.stages = append(p.stages, stage[T]{name: name, hard: hard, keep: keep})
}

// filter 以目前啟用的步驟篩選
func (p *pipeline[T]) filter(items []T, disabled map[string]bool) []T {
	var out []T
next:
	for _, it := range items {
		for _, s := range p.stages {
			if disabled[s.name] {
				continue
			}
			if !s.keep(it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}

// run 回傳通過篩選的項目與被放寬的步驟（依放寬順序）
// 放寬到只剩硬性條件仍沒有結果時回傳 nil
func (p *pipeline[T]) run(items []T) ([]T, []string) {
	disabled := make(map[string]bool)
	var trail []string

	if out := p.filter(items, disabled); len(out) > 0 {
		return out, nil
	}
	for _, s := range p.stages {
		if s.hard {
			continue
		}
		disabled[s.name] = true
		trail = append(trail, s.name)
		if out := p.filter(items, disabled); len(out) > 0 {
			return out, trail
		}
	}
	return nil, trail
}

// semanticScores 依候選順序回傳語意分數
func semanticScores(ctx context.Context, s Searcher, query string, texts []string) []float64 {
	scores := make([]float64, len(texts))
	if s == nil || len(texts) == 0 {
		return scores
	}
	for _, m := range s.FindSimilar(ctx, query, texts, 0) {
		scores[m.Index] = m.Score
	}
	return scores
}

// roundScore 固定小數位，避免浮點誤差影響同分比較
func roundScore(v float64) float64 {
	const scale = 1e6
	if v < 0 {
		return -float64(int64(-v*scale+0.5)) / scale
	}
	return float64(int64(v*scale+0.5)) / scale
}
