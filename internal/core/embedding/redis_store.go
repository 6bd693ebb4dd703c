package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"plan-generator/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"github.com/pgvector/pgvector-go"
)

// RedisOptions Redis 連線設定
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	TTL       time.Duration
	KeyPrefix string
}

// RedisStore 以 Redis 保存向量，供多個行程共用
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore 建立連線並測試
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "embedding"
	}
	return &RedisStore{
		client: client,
		ttl:    opts.TTL,
		prefix: prefix,
	}, nil
}

// Get 讀取向量，不存在時回傳 ErrCacheMiss
func (s *RedisStore) Get(ctx context.Context, namespace, text string) ([]float32, error) {
	data, err := s.client.Get(ctx, s.key(namespace, text)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, common.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get vector: %w", err)
	}

	var vec pgvector.Vector
	if err := vec.Scan(data); err != nil {
		return nil, fmt.Errorf("failed to decode vector: %w", err)
	}
	return vec.Slice(), nil
}

// Set 寫入向量
func (s *RedisStore) Set(ctx context.Context, namespace, text string, vec []float32) error {
	encoded, err := pgvector.NewVector(vec).Value()
	if err != nil {
		return fmt.Errorf("failed to encode vector: %w", err)
	}
	if err := s.client.Set(ctx, s.key(namespace, text), encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set vector: %w", err)
	}
	return nil
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// key 生成快取鍵
func (s *RedisStore) key(namespace, text string) string {
	hash := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s:%s:%s", s.prefix, namespace, hex.EncodeToString(hash[:]))
}
