// Package llm 托管大模型聊天接口的统一抽象，支持OpenAI与DashScope。
package llm

import (
	"context"
	"errors"

	"github.com/vlabhub/labchat-go/internal/config"
)

// Message 聊天消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 一次补全请求
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Response 补全结果
type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Provider 聊天补全提供商抽象。实现方按配置的模型降级链逐个重试。
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Ready() bool
	Name() string
}

// NewProvider 根据配置选择提供商
func NewProvider(cfg *config.Config) Provider {
	switch cfg.AI.Provider {
	case "dashscope":
		return NewDashScopeProvider(cfg.AI.DashScopeAPIKey, cfg.AI.Models)
	default:
		return NewOpenAIProvider(cfg.AI.OpenAIAPIKey, cfg.AI.Models)
	}
}

// NoopProvider 未配置API key时的占位实现
type NoopProvider struct{}

func (n *NoopProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	return nil, errors.New("llm provider not configured")
}

func (n *NoopProvider) Ready() bool { return false }

func (n *NoopProvider) Name() string { return "noop" }
