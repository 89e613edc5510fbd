// Package retrieval 实验知识检索：向量检索、全文检索与两者的加权融合。
package retrieval

import (
	"context"
	"time"
)

// VectorChunk 向量存储用的分块结构
type VectorChunk struct {
	ChunkID    uint
	DocumentID uint
	Text       string
	Embedding  []float32
}

// VectorSearchRequest 向量检索请求
type VectorSearchRequest struct {
	QueryEmbedding []float32
	Limit          int
	Threshold      float64 // 相似度阈值，仅返回 >= Threshold 的结果
}

// VectorStore 向量存储抽象
type VectorStore interface {
	UpsertChunk(ctx context.Context, chunk VectorChunk) (string, error)
	DeleteDocument(ctx context.Context, documentID uint) error
	Search(ctx context.Context, req VectorSearchRequest) ([]SearchMatch, error)
	Ready() bool
}

// FulltextChunk 全文索引用的分块结构
type FulltextChunk struct {
	ChunkID    uint
	DocumentID uint
	Content    string
	ChunkIndex int
	Metadata   map[string]interface{}
	CreatedAt  time.Time
}

// FulltextSearchRequest 全文搜索请求
type FulltextSearchRequest struct {
	Query string
	Limit int
}

// SearchMatch 搜索结果
type SearchMatch struct {
	ChunkID    uint
	DocumentID uint
	Content    string
	Score      float64
	Highlight  string
	Metadata   map[string]interface{}
}

// FulltextIndexer 全文索引接口
type FulltextIndexer interface {
	IndexChunk(ctx context.Context, chunk FulltextChunk) error
	RemoveDocument(ctx context.Context, documentID uint) error
	Search(ctx context.Context, req FulltextSearchRequest) ([]SearchMatch, error)
	Ready() bool
}
