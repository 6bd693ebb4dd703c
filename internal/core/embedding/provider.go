package embedding

import (
	"context"
)

// Provider 外部向量化服務
// 相同文字在同一個行程內必須回傳相同向量
type Provider interface {
	// Embed 將文字轉為固定長度向量
	Embed(ctx context.Context, text string) ([]float32, error)

	// Name 提供者名稱，用於快取命名空間與日誌
	Name() string
}

// VectorStore 跨行程共用的第二層向量快取（例如 Redis）
type VectorStore interface {
	Get(ctx context.Context, namespace, text string) ([]float32, error)
	Set(ctx context.Context, namespace, text string, vec []float32) error
}
