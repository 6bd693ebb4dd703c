package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPProvider OpenAI 相容的 /embeddings 端點
type HTTPProvider struct {
	client *resty.Client
	model  string
}

// NewHTTPProvider 創建 HTTP 向量服務
func NewHTTPProvider(baseURL, apiKey, model string, timeout time.Duration) *HTTPProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	}
	return &HTTPProvider{
		client: client,
		model:  model,
	}
}

// Name 提供者名稱
func (p *HTTPProvider) Name() string {
	return "http:" + p.model
}

// Embed 呼叫 /embeddings
func (p *HTTPProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"model": p.model,
			"input": text,
		}).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("failed to send embedding request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("embedding API returned %d: %s", resp.StatusCode(), resp.String())
	}

	// 解析回應
	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}
	return result.Data[0].Embedding, nil
}
