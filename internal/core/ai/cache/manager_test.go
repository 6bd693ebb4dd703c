package cache

import (
	"context"
	"testing"
	"time"

	"plan-generator/internal/infrastructure/config"
	"plan-generator/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, maxSize int) (*CacheManager, *time.Time) {
	m := NewManager(config.CacheConfig{Enabled: true, MaxSize: maxSize, TTL: time.Hour})
	require.NotNil(t, m)
	now := time.Date(2026, 10, 12, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	t.Cleanup(func() { _ = m.Close() })
	return m, &now
}

func TestCacheManagerGetSet(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 10)

	_, err := m.Get(ctx, "breakfast")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "breakfast", "overnight oats"))
	val, err := m.Get(ctx, "breakfast")
	require.NoError(t, err)
	assert.Equal(t, "overnight oats", val)

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
	assert.Equal(t, 1, stats["size"])
}

func TestCacheManagerExpiry(t *testing.T) {
	ctx := context.Background()
	m, now := newTestManager(t, 10)

	require.NoError(t, m.Set(ctx, "lunch", "lentil soup"))
	*now = now.Add(2 * time.Hour)

	_, err := m.Get(ctx, "lunch")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.Equal(t, 0, m.Len())
}

func TestCacheManagerEvictsLeastUsed(t *testing.T) {
	ctx := context.Background()
	m, now := newTestManager(t, 2)

	require.NoError(t, m.Set(ctx, "a", "1"))
	*now = now.Add(time.Minute)
	require.NoError(t, m.Set(ctx, "b", "2"))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "3"))
	assert.Equal(t, 2, m.Len())

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss, "b was never read and is evicted first")
	val, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
}

func TestCacheManagerDisabled(t *testing.T) {
	m := NewManager(config.CacheConfig{Enabled: false})
	assert.Nil(t, m)

	_, err := m.Get(context.Background(), "x")
	assert.ErrorIs(t, err, common.ErrCacheDisabled)
	assert.NoError(t, m.Set(context.Background(), "x", "y"))
	assert.Equal(t, false, m.GetStats()["enabled"])
	assert.NoError(t, m.Close())
}
