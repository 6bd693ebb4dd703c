package ollama

import (
	"context"
	"fmt"
	"time"

	"plan-generator/internal/core/ai/provider"
	"plan-generator/internal/pkg/common"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Client 透過 langchaingo 呼叫本地 Ollama 生成模型
type Client struct {
	llm     *ollama.LLM
	model   string
	timeout time.Duration
}

// NewClient 創建 Ollama 客戶端，不會在建立時連線
func NewClient(cfg provider.Config) (*Client, error) {
	llm, err := ollama.New(
		ollama.WithModel(cfg.Model),
		ollama.WithServerURL(cfg.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	return &Client{
		llm:     llm,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Generate 將消息攤平為單一 prompt 後生成
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	opts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	start := time.Now()
	content, err := llms.GenerateFromSinglePrompt(ctx, c.llm, req.Flatten(), opts...)
	common.LogAICall("ollama", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("ollama generation failed: %w", err)
	}
	if content == "" {
		return nil, fmt.Errorf("no content in ollama response")
	}
	return &provider.Response{Content: content, Model: c.model}, nil
}

// GetModel 模型名稱
func (c *Client) GetModel() string {
	return c.model
}

// GetTimeout 請求超時
func (c *Client) GetTimeout() time.Duration {
	return c.timeout
}

// Close 無需釋放
func (c *Client) Close() error {
	return nil
}
