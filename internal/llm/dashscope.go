package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vlabhub/labchat-go/internal/logger"
)

// DashScopeProvider 调用DashScope的OpenAI兼容模式接口
type DashScopeProvider struct {
	apiKey  string
	baseURL string
	models  []string
	client  *http.Client
	limiter sync.Mutex
}

type dashScopeChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type dashScopeChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int     `json:"index"`
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type dashScopeError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// NewDashScopeProvider 创建DashScope提供商
func NewDashScopeProvider(apiKey string, models []string) Provider {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &NoopProvider{}
	}
	if len(models) == 0 {
		models = []string{"qwen-plus"}
	}
	return &DashScopeProvider{
		apiKey:  apiKey,
		baseURL: "https://dashscope.aliyuncs.com",
		models:  models,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SetBaseURL 覆盖API地址（测试用）
func (p *DashScopeProvider) SetBaseURL(url string) {
	p.baseURL = strings.TrimSuffix(url, "/")
}

// Complete 沿模型降级链逐个尝试
func (p *DashScopeProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if p.client == nil {
		return nil, errors.New("dashscope client not initialized")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("messages are empty")
	}

	p.limiter.Lock()
	defer p.limiter.Unlock()

	var lastErr error
	for _, model := range p.models {
		resp, err := p.chatCompletion(ctx, model, req)
		if err != nil {
			lastErr = err
			logger.Warn("dashscope completion failed, trying next model",
				zap.String("model", model), zap.Error(err))
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("all models failed: %w", lastErr)
}

func (p *DashScopeProvider) chatCompletion(ctx context.Context, model string, req Request) (*Response, error) {
	body := dashScopeChatRequest{
		Model:    model,
		Messages: req.Messages,
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = &req.MaxTokens
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	url := fmt.Sprintf("%s/compatible-mode/v1/chat/completions", p.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr dashScopeError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("dashscope error %s: %s", apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("dashscope http %d: %s", httpResp.StatusCode, string(raw))
	}

	var chatResp dashScopeChatResponse
	if err := json.Unmarshal(raw, &chatResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, errors.New("completion response empty")
	}

	return &Response{
		Content:          chatResp.Choices[0].Message.Content,
		Model:            model,
		PromptTokens:     chatResp.Usage.PromptTokens,
		CompletionTokens: chatResp.Usage.CompletionTokens,
	}, nil
}

func (p *DashScopeProvider) Ready() bool {
	return p.client != nil
}

func (p *DashScopeProvider) Name() string {
	return "dashscope"
}
