package services

import (
	"context"

	"github.com/vlabhub/labchat-go/internal/config"
	"github.com/vlabhub/labchat-go/internal/retrieval"
)

// Retriever 问答链路需要的检索能力
type Retriever interface {
	Search(ctx context.Context, query string) ([]retrieval.SearchMatch, error)
}

// RetrievalService 在混合检索器之上应用配置的topK与阈值
type RetrievalService struct {
	retriever *retrieval.HybridRetriever
	topK      int
	threshold float64
}

// NewRetrievalService 创建检索服务
func NewRetrievalService(retriever *retrieval.HybridRetriever, cfg *config.Config) *RetrievalService {
	topK := cfg.Retrieval.TopK
	if topK <= 0 {
		topK = 6
	}
	retriever.SetWeights(cfg.Retrieval.VectorWeight, cfg.Retrieval.FulltextWeight)

	return &RetrievalService{
		retriever: retriever,
		topK:      topK,
		threshold: cfg.Retrieval.VectorThreshold,
	}
}

// Search 按配置执行混合检索
func (s *RetrievalService) Search(ctx context.Context, query string) ([]retrieval.SearchMatch, error) {
	return s.retriever.Search(ctx, retrieval.HybridSearchRequest{
		Query:           query,
		Limit:           s.topK,
		VectorThreshold: s.threshold,
	})
}
