package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheSeedAndSnapshot(t *testing.T) {
	c := NewCache()
	c.Seed("http:test", map[string][]float32{
		"oat bowl": {1, 0},
		"empty":    nil,
	})
	c.Put("ollama:other", "oat bowl", []float32{0, 1})

	assert.Equal(t, 2, c.Len())
	snap := c.Snapshot("http:test", []string{"oat bowl", "missing", "empty"})
	assert.Equal(t, map[string][]float32{"oat bowl": {1, 0}}, snap)
	assert.Equal(t, CacheStats{Size: 2}, c.Stats(), "snapshot does not touch hit counters")

	_, ok := c.Get("http:test", "missing")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Misses)

	c.Clear()
	assert.Zero(t, c.Len())
}
