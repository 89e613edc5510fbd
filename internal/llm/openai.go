package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/vlabhub/labchat-go/internal/logger"
)

// OpenAIProvider 通过官方API生成回答
type OpenAIProvider struct {
	client *openai.Client
	models []string
}

// NewOpenAIProvider 创建OpenAI提供商
func NewOpenAIProvider(apiKey string, models []string) Provider {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &NoopProvider{}
	}
	if len(models) == 0 {
		models = []string{"gpt-4o-mini"}
	}
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		models: models,
	}
}

// Complete 沿模型降级链逐个尝试，全部失败才返回错误
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if p.client == nil {
		return nil, errors.New("openai client not initialized")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("messages are empty")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	var lastErr error
	for _, model := range p.models {
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       model,
			Messages:    messages,
			MaxTokens:   req.MaxTokens,
			Temperature: float32(req.Temperature),
		})
		if err != nil {
			lastErr = err
			logger.Warn("openai completion failed, trying next model",
				zap.String("model", model), zap.Error(err))
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = errors.New("completion response empty")
			continue
		}
		return &Response{
			Content:          resp.Choices[0].Message.Content,
			Model:            model,
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		}, nil
	}

	return nil, fmt.Errorf("all models failed: %w", lastErr)
}

func (p *OpenAIProvider) Ready() bool {
	return p.client != nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}
