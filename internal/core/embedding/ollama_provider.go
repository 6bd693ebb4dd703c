package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaProvider 透過 langchaingo 呼叫本地 Ollama 向量模型
type OllamaProvider struct {
	embedder embeddings.Embedder
	model    string
}

// NewOllamaProvider 創建 Ollama 向量服務
func NewOllamaProvider(serverURL, model string) (*OllamaProvider, error) {
	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(serverURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama embedder: %w", err)
	}
	return &OllamaProvider{
		embedder: embedder,
		model:    model,
	}, nil
}

// Name 提供者名稱
func (p *OllamaProvider) Name() string {
	return "ollama:" + p.model
}

// Embed 取得查詢向量
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding failed: %w", err)
	}
	return vec, nil
}
