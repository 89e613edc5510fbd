package retrieval

import (
	"context"
	"math"
	"sort"
	"sync"
)

// memoryVectorStore 进程内向量存储：余弦相似度暴力检索。
// 用于本地开发与测试，没有外部向量库时的默认provider。
type memoryVectorStore struct {
	mu     sync.RWMutex
	chunks map[uint]VectorChunk
}

// NewMemoryVectorStore 创建内存向量存储
func NewMemoryVectorStore() VectorStore {
	return &memoryVectorStore{
		chunks: make(map[uint]VectorChunk),
	}
}

func (s *memoryVectorStore) UpsertChunk(ctx context.Context, chunk VectorChunk) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[chunk.ChunkID] = chunk
	return "memory", nil
}

func (s *memoryVectorStore) DeleteDocument(ctx context.Context, documentID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, chunk := range s.chunks {
		if chunk.DocumentID == documentID {
			delete(s.chunks, id)
		}
	}
	return nil
}

func (s *memoryVectorStore) Search(ctx context.Context, req VectorSearchRequest) ([]SearchMatch, error) {
	if len(req.QueryEmbedding) == 0 {
		return nil, nil
	}
	if req.Limit == 0 {
		req.Limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]SearchMatch, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		score := cosineSimilarity(req.QueryEmbedding, chunk.Embedding)
		if req.Threshold > 0 && score < req.Threshold {
			continue
		}
		results = append(results, SearchMatch{
			ChunkID:    chunk.ChunkID,
			DocumentID: chunk.DocumentID,
			Content:    chunk.Text,
			Score:      score,
			Metadata:   make(map[string]interface{}),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

func (s *memoryVectorStore) Ready() bool {
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
