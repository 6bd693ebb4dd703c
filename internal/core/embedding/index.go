package embedding

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"plan-generator/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	defaultTimeout  = 5 * time.Second
	defaultCooldown = 30 * time.Second
)

// Options 索引設定
type Options struct {
	Timeout  time.Duration // 單次呼叫 provider 的逾時
	Cooldown time.Duration // provider 失敗後暫停呼叫的時間
	Store    VectorStore   // 可為 nil
	// OnFallback 每次改用詞頻向量時呼叫，reason 為 "absent" 或 "degraded"
	OnFallback func(reason string)
}

// Match 相似度查詢結果
type Match struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Index 向量索引，包裝 provider、快取與詞頻備援
type Index struct {
	provider      Provider
	cache         *Cache
	vocab         *Vocabulary
	store         VectorStore
	timeout       time.Duration
	cooldown      time.Duration
	onFallback    func(string)
	degradedUntil atomic.Int64
}

// NewIndex 建立索引，provider 可為 nil（永遠使用詞頻向量）
func NewIndex(provider Provider, cache *Cache, vocab *Vocabulary, opts Options) *Index {
	if cache == nil {
		cache = NewCache()
	}
	if vocab == nil {
		vocab = NewVocabulary(nil)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = defaultCooldown
	}
	idx := &Index{
		provider:   provider,
		cache:      cache,
		vocab:      vocab,
		store:      opts.Store,
		timeout:    opts.Timeout,
		cooldown:   opts.Cooldown,
		onFallback: opts.OnFallback,
	}

	name := FallbackName
	if provider != nil {
		name = provider.Name()
	}
	common.LogInfo("向量索引已初始化",
		zap.String("provider", name),
		zap.Int("vocabulary_size", vocab.Size()),
		zap.Duration("timeout", opts.Timeout),
		zap.Bool("shared_store", opts.Store != nil),
	)
	return idx
}

// Cache 索引使用的快取
func (i *Index) Cache() *Cache {
	return i.cache
}

// ProviderName 目前的向量來源名稱
func (i *Index) ProviderName() string {
	if i.provider == nil {
		return FallbackName
	}
	return i.provider.Name()
}

// Degraded provider 是否處於失敗冷卻期
func (i *Index) Degraded() bool {
	return time.Now().UnixNano() < i.degradedUntil.Load()
}

// Embed 取得文字向量，永遠不會失敗
func (i *Index) Embed(ctx context.Context, text string) []float32 {
	if v, ok := i.providerVector(ctx, text); ok {
		return v
	}
	i.fallbackUsed()
	return i.fallbackVector(text)
}

// Warm 預先計算並快取一批文字的向量
func (i *Index) Warm(ctx context.Context, texts []string) {
	start := time.Now()
	for _, t := range texts {
		i.Embed(ctx, t)
	}
	common.LogInfo("向量預熱完成",
		zap.Int("count", len(texts)),
		zap.Duration("耗時", time.Since(start)),
		zap.Bool("degraded", i.Degraded()),
	)
}

// FindSimilar 依相似度由高到低排序候選文字，同分時維持原順序
// 同一次查詢內所有向量都來自同一個來源
func (i *Index) FindSimilar(ctx context.Context, query string, candidates []string, topK int) []Match {
	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, query)
	texts = append(texts, candidates...)

	vecs := make([][]float32, len(texts))
	consistent := true
	for n, t := range texts {
		v, ok := i.providerVector(ctx, t)
		if !ok {
			consistent = false
			break
		}
		vecs[n] = v
	}
	if !consistent {
		i.fallbackUsed()
		for n, t := range texts {
			vecs[n] = i.fallbackVector(t)
		}
	}

	matches := make([]Match, len(candidates))
	for n := range candidates {
		matches[n] = Match{
			Index: n,
			Text:  candidates[n],
			Score: Similarity(vecs[0], vecs[n+1]),
		}
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	if topK > 0 && topK < len(matches) {
		matches = matches[:topK]
	}
	return matches
}

// Similarity 餘弦相似度，維度不同或零向量時為 0
func Similarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for n := range a {
		x, y := float64(a[n]), float64(b[n])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(-1, math.Min(1, s))
}

func (i *Index) providerVector(ctx context.Context, text string) ([]float32, bool) {
	if i.provider == nil {
		return nil, false
	}
	ns := i.provider.Name()
	if v, ok := i.cache.Get(ns, text); ok {
		return v, true
	}
	if i.Degraded() {
		return nil, false
	}

	if i.store != nil {
		if v, err := i.store.Get(ctx, ns, text); err == nil && len(v) > 0 {
			i.cache.Put(ns, text, v)
			return v, true
		} else if err != nil && !errors.Is(err, common.ErrCacheMiss) {
			common.LogDebug("Shared vector store lookup failed", zap.Error(err))
		}
	}

	cctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()
	v, err := i.provider.Embed(cctx, text)
	if err == nil && len(v) == 0 {
		err = errors.New("provider returned an empty vector")
	}
	if err != nil {
		i.degrade(ns, err)
		return nil, false
	}

	i.cache.Put(ns, text, v)
	if i.store != nil {
		if err := i.store.Set(ctx, ns, text, v); err != nil {
			common.LogDebug("Shared vector store write failed", zap.Error(err))
		}
	}
	return v, true
}

func (i *Index) fallbackVector(text string) []float32 {
	if v, ok := i.cache.Get(FallbackName, text); ok {
		return v
	}
	v := i.vocab.Vector(text)
	i.cache.Put(FallbackName, text, v)
	return v
}

// degrade 進入冷卻期，只在狀態轉換時記錄一次
func (i *Index) degrade(provider string, err error) {
	now := time.Now().UnixNano()
	prev := i.degradedUntil.Swap(now + i.cooldown.Nanoseconds())
	if prev < now {
		common.LogProviderFallback(provider, errors.Join(common.ErrProviderDegraded, err))
	}
}

func (i *Index) fallbackUsed() {
	if i.onFallback == nil {
		return
	}
	reason := "absent"
	if i.provider != nil {
		reason = "degraded"
	}
	i.onFallback(reason)
}
