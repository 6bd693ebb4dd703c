package provider

import (
	"context"
	"strings"
	"time"
)

// Message 對話消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 發送到生成模型的請求
type Request struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Usage token 用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response 生成模型的回應
type Response struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Provider 生成式文字提供者
type Provider interface {
	// Generate 生成回應
	Generate(ctx context.Context, req *Request) (*Response, error)

	// GetModel 當前使用的模型名稱
	GetModel() string

	// GetTimeout 單次請求的超時
	GetTimeout() time.Duration

	// Close 釋放連線
	Close() error
}

// Config 提供者配置
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewPrompt 由 system 與 user 內容組成請求
func NewPrompt(system, user string, maxTokens int) *Request {
	req := &Request{MaxTokens: maxTokens, Temperature: 0.7}
	if system != "" {
		req.Messages = append(req.Messages, Message{Role: "system", Content: system})
	}
	req.Messages = append(req.Messages, Message{Role: "user", Content: user})
	return req
}

// Flatten 將所有消息串成單一提示文字，供只接受單一 prompt 的模型使用
func (r *Request) Flatten() string {
	parts := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		parts = append(parts, strings.TrimSpace(m.Content))
	}
	return strings.Join(parts, "\n\n")
}
