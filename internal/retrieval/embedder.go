package retrieval

import (
	"context"
	"errors"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vlabhub/labchat-go/internal/config"
)

// Embedder 定义文本向量化接口
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Ready() bool
}

// NoopEmbedder 默认占位实现
type NoopEmbedder struct{}

func (n *NoopEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedding provider not configured")
}

func (n *NoopEmbedder) Dimensions() int {
	return 0
}

func (n *NoopEmbedder) Ready() bool {
	return false
}

var embeddingDimensions = map[string]int{
	"text-embedding-3-large": 3072,
	"text-embedding-3-small": 1536,
	"text-embedding-ada-002": 1536,
	"text-embedding-v3":      1024,
	"text-embedding-v2":      1536,
}

// dashScopeCompatBaseURL DashScope的OpenAI兼容模式端点
const dashScopeCompatBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

// openAIEmbedder 通过OpenAI协议的Embedding API生成向量，
// 同时覆盖OpenAI本家与DashScope兼容模式
type openAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	limiter    sync.Mutex
}

// NewEmbedder 根据配置选择嵌入提供商
func NewEmbedder(cfg *config.Config) Embedder {
	switch cfg.Retrieval.Embedding.Provider {
	case "dashscope":
		return NewDashScopeEmbedder(cfg.AI.DashScopeAPIKey, cfg.Retrieval.Embedding.Model)
	default:
		return NewOpenAIEmbedder(cfg.AI.OpenAIAPIKey, cfg.Retrieval.Embedding.Model)
	}
}

// NewOpenAIEmbedder 创建OpenAI嵌入向量生成器
func NewOpenAIEmbedder(apiKey, model string) Embedder {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &NoopEmbedder{}
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	return newCompatEmbedder(openai.NewClient(apiKey), model)
}

// NewDashScopeEmbedder 创建DashScope嵌入向量生成器（兼容模式）
func NewDashScopeEmbedder(apiKey, model string) Embedder {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &NoopEmbedder{}
	}
	if model == "" {
		model = "text-embedding-v3"
	}
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = dashScopeCompatBaseURL
	return newCompatEmbedder(openai.NewClientWithConfig(clientCfg), model)
}

func newCompatEmbedder(client *openai.Client, model string) Embedder {
	dims, ok := embeddingDimensions[model]
	if !ok {
		dims = 1536
	}
	return &openAIEmbedder{
		client:     client,
		model:      model,
		dimensions: dims,
	}
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text is empty")
	}
	if e.client == nil {
		return nil, errors.New("embedding client not initialized")
	}

	e.limiter.Lock()
	defer e.limiter.Unlock()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("embedding response empty")
	}

	embedding := resp.Data[0].Embedding
	result := make([]float32, len(embedding))
	copy(result, embedding)
	return result, nil
}

func (e *openAIEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *openAIEmbedder) Ready() bool {
	return e.client != nil
}
