package embedding

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProvider for testing
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) Name() string {
	return "mock"
}

var corpus = []string{
	"vegetarian lentil soup with carrots",
	"grilled chicken salad",
	"overnight oats with berries",
	"lentil and rice bowl",
}

func TestSimilarity(t *testing.T) {
	t.Run("identical vectors score 1", func(t *testing.T) {
		assert.InDelta(t, 1.0, Similarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	})

	t.Run("opposite vectors score -1", func(t *testing.T) {
		assert.InDelta(t, -1.0, Similarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	})

	t.Run("orthogonal vectors score 0", func(t *testing.T) {
		assert.InDelta(t, 0.0, Similarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	})

	t.Run("zero or mismatched vectors score 0", func(t *testing.T) {
		assert.Equal(t, 0.0, Similarity([]float32{0, 0}, []float32{1, 1}))
		assert.Equal(t, 0.0, Similarity([]float32{1, 2}, []float32{1, 2, 3}))
		assert.Equal(t, 0.0, Similarity(nil, nil))
	})
}

func TestVocabulary(t *testing.T) {
	vocab := NewVocabulary(corpus)

	t.Run("vectors are deterministic and normalized", func(t *testing.T) {
		a := vocab.Vector("lentil soup")
		b := vocab.Vector("lentil soup")
		assert.Equal(t, a, b)
		assert.Len(t, a, vocab.Size())
		assert.InDelta(t, 1.0, Similarity(a, a), 1e-6)
	})

	t.Run("plural forms share a term", func(t *testing.T) {
		assert.InDelta(t, 1.0, Similarity(vocab.Vector("carrots"), vocab.Vector("carrot")), 1e-6)
	})

	t.Run("out of vocabulary text yields a zero vector", func(t *testing.T) {
		v := vocab.Vector("zzz qqq")
		assert.Equal(t, 0.0, Similarity(v, vocab.Vector("lentil")))
	})

	t.Run("stopwords are ignored", func(t *testing.T) {
		assert.Equal(t, vocab.Vector("lentil"), vocab.Vector("the lentil"))
	})
}

func TestFindSimilarFallback(t *testing.T) {
	idx := NewIndex(nil, NewCache(), NewVocabulary(corpus), Options{})

	matches := idx.FindSimilar(context.Background(), "lentil", corpus, 0)
	require.Len(t, matches, len(corpus))

	// 兩個含 lentil 的文字排在前面
	top := []int{matches[0].Index, matches[1].Index}
	assert.ElementsMatch(t, []int{0, 3}, top)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}

	t.Run("top k truncates", func(t *testing.T) {
		assert.Len(t, idx.FindSimilar(context.Background(), "lentil", corpus, 2), 2)
	})

	t.Run("ties keep catalog order", func(t *testing.T) {
		same := []string{"oats", "oats", "oats"}
		got := idx.FindSimilar(context.Background(), "oats", same, 0)
		assert.Equal(t, []int{0, 1, 2}, []int{got[0].Index, got[1].Index, got[2].Index})
	})
}

func TestIndexUsesProviderAndCache(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Embed", mock.Anything, "a").Return([]float32{1, 0}, nil).Once()
	provider.On("Embed", mock.Anything, "b").Return([]float32{0.9, 0.1}, nil).Once()
	provider.On("Embed", mock.Anything, "c").Return([]float32{0, 1}, nil).Once()

	cache := NewCache()
	idx := NewIndex(provider, cache, NewVocabulary(corpus), Options{})

	first := idx.FindSimilar(context.Background(), "a", []string{"c", "b"}, 0)
	second := idx.FindSimilar(context.Background(), "a", []string{"c", "b"}, 0)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, first[0].Index, "b should rank above c")
	assert.Equal(t, 3, cache.Len())
	provider.AssertExpectations(t)
}

func TestIndexFallsBackOnProviderFailure(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	var reasons []string
	var mu sync.Mutex
	idx := NewIndex(provider, NewCache(), NewVocabulary(corpus), Options{
		OnFallback: func(reason string) {
			mu.Lock()
			reasons = append(reasons, reason)
			mu.Unlock()
		},
	})

	matches := idx.FindSimilar(context.Background(), "lentil", corpus, 1)
	require.Len(t, matches, 1)
	assert.Contains(t, []int{0, 3}, matches[0].Index)
	assert.True(t, idx.Degraded())
	assert.Equal(t, []string{"degraded"}, reasons)

	// 冷卻期間不再呼叫 provider
	_ = idx.Embed(context.Background(), "grilled chicken")
	provider.AssertNumberOfCalls(t, "Embed", 1)
}

func TestIndexFallsBackOnTimeout(t *testing.T) {
	idx := NewIndex(slowProvider{}, NewCache(), NewVocabulary(corpus), Options{Timeout: 1})
	v := idx.Embed(context.Background(), "lentil soup")
	assert.Len(t, v, NewVocabulary(corpus).Size())
}

type slowProvider struct{}

func (slowProvider) Name() string { return "slow" }

func (slowProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCache(t *testing.T) {
	c := NewCache()
	_, ok := c.Get("ns", "x")
	assert.False(t, ok)

	c.Put("ns", "x", []float32{1})
	v, ok := c.Get("ns", "x")
	assert.True(t, ok)
	assert.Equal(t, []float32{1}, v)

	_, ok = c.Get("other", "x")
	assert.False(t, ok, "namespaces are isolated")

	c.Seed("ns", map[string][]float32{"y": {2}, "empty": nil})
	assert.Equal(t, 2, c.Len())

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCacheConcurrentAccess(t *testing.T) {
	idx := NewIndex(nil, NewCache(), NewVocabulary(corpus), Options{})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx.FindSimilar(context.Background(), "rice bowl", corpus, 2)
		}()
	}
	wg.Wait()
	assert.Equal(t, len(corpus)+1, idx.Cache().Len())
}
