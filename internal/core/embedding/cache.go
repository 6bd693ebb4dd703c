package embedding

import (
	"sync"
	"sync/atomic"

	"plan-generator/internal/pkg/common"
)

// Cache 以完整文字為鍵的向量快取，容量不設上限，需要時呼叫 Clear
// 寫入後不再修改；併發寫入同一鍵時以最後一次為準（值相同）
type Cache struct {
	entries sync.Map
	hits    atomic.Int64
	misses  atomic.Int64
}

// CacheStats 快取統計
type CacheStats struct {
	Size   int   `json:"size"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// NewCache 建立空快取，生命週期由呼叫端管理
func NewCache() *Cache {
	return &Cache{}
}

func cacheKey(namespace, text string) string {
	return namespace + "\x00" + text
}

// Get 讀取向量
func (c *Cache) Get(namespace, text string) ([]float32, bool) {
	v, ok := c.entries.Load(cacheKey(namespace, text))
	if !ok {
		c.misses.Add(1)
		common.LogCacheMiss(namespace)
		return nil, false
	}
	c.hits.Add(1)
	return v.([]float32), true
}

// Put 寫入向量
func (c *Cache) Put(namespace, text string, vec []float32) {
	c.entries.Store(cacheKey(namespace, text), vec)
}

// Seed 批次寫入預先計算的向量
func (c *Cache) Seed(namespace string, vectors map[string][]float32) {
	for text, vec := range vectors {
		if len(vec) == 0 {
			continue
		}
		c.Put(namespace, text, vec)
	}
}

// Snapshot 取出指定文字已快取的向量，不計入命中統計
func (c *Cache) Snapshot(namespace string, texts []string) map[string][]float32 {
	out := make(map[string][]float32, len(texts))
	for _, t := range texts {
		if v, ok := c.entries.Load(cacheKey(namespace, t)); ok {
			out[t] = v.([]float32)
		}
	}
	return out
}

// Len 目前項目數
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Clear 清空快取
func (c *Cache) Clear() {
	c.entries.Clear()
}

// Stats 取得統計
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Size:   c.Len(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
