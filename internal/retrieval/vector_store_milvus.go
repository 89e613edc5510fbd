package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/vlabhub/labchat-go/internal/logger"
)

// MilvusOptions Milvus客户端配置
type MilvusOptions struct {
	Address    string
	Username   string
	Password   string
	Collection string
	Database   string
	VectorSize int
	UseTLS     bool
	Timeout    time.Duration
}

type milvusVectorStore struct {
	milvusClient client.Client
	collection   string
	vectorSize   int
}

// NewMilvusVectorStore 创建Milvus向量存储
func NewMilvusVectorStore(opts MilvusOptions) (VectorStore, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.Collection == "" {
		opts.Collection = "lab_chunks"
	}
	if opts.Database == "" {
		opts.Database = "default"
	}
	if opts.VectorSize == 0 {
		opts.VectorSize = 1536
	}

	milvusClient, err := client.NewClient(
		context.Background(),
		client.Config{
			Address:       opts.Address,
			DBName:        opts.Database,
			Username:      opts.Username,
			Password:      opts.Password,
			EnableTLSAuth: opts.UseTLS,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	return &milvusVectorStore{
		milvusClient: milvusClient,
		collection:   opts.Collection,
		vectorSize:   opts.VectorSize,
	}, nil
}

func (s *milvusVectorStore) ensureCollection(ctx context.Context) error {
	hasCollection, err := s.milvusClient.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if hasCollection {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: s.collection,
		Description:    "Lab document chunk vectors",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     false,
			},
			{
				Name:     "chunk_id",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "document_id",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", s.vectorSize),
				},
			},
		},
	}

	if err := s.milvusClient.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	var index entity.Index
	index, err = entity.NewIndexHNSW(entity.COSINE, 8, 64)
	if err != nil {
		// HNSW不可用时退回IVF_FLAT
		index, err = entity.NewIndexIvfFlat(entity.COSINE, 128)
		if err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	if err := s.milvusClient.CreateIndex(ctx, s.collection, "vector", index, false); err != nil {
		logger.Warn("failed to create milvus index", zap.String("collection", s.collection), zap.Error(err))
	}

	return nil
}

func (s *milvusVectorStore) UpsertChunk(ctx context.Context, chunk VectorChunk) (string, error) {
	if len(chunk.Embedding) == 0 {
		return "", fmt.Errorf("embedding is empty")
	}
	if len(chunk.Embedding) != s.vectorSize {
		embedding := make([]float32, s.vectorSize)
		copy(embedding, chunk.Embedding)
		chunk.Embedding = embedding
	}

	if err := s.ensureCollection(ctx); err != nil {
		return "", err
	}

	idColumn := entity.NewColumnInt64("id", []int64{int64(chunk.ChunkID)})
	chunkIDColumn := entity.NewColumnInt64("chunk_id", []int64{int64(chunk.ChunkID)})
	documentIDColumn := entity.NewColumnInt64("document_id", []int64{int64(chunk.DocumentID)})
	contentColumn := entity.NewColumnVarChar("content", []string{chunk.Text})
	vectorColumn := entity.NewColumnFloatVector("vector", s.vectorSize, [][]float32{chunk.Embedding})

	_, err := s.milvusClient.Insert(ctx, s.collection, "", idColumn, chunkIDColumn, documentIDColumn, contentColumn, vectorColumn)
	if err != nil {
		return "", fmt.Errorf("milvus insert failed: %w", err)
	}

	if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
		logger.Warn("failed to flush milvus collection", zap.String("collection", s.collection), zap.Error(err))
	}

	return fmt.Sprintf("milvus_%d", chunk.ChunkID), nil
}

func (s *milvusVectorStore) DeleteDocument(ctx context.Context, documentID uint) error {
	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	expr := fmt.Sprintf("document_id == %d", documentID)
	if err := s.milvusClient.Delete(ctx, s.collection, "", expr); err != nil {
		return fmt.Errorf("milvus delete failed: %w", err)
	}

	if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
		logger.Warn("failed to flush after delete", zap.Error(err))
	}

	return nil
}

func (s *milvusVectorStore) Search(ctx context.Context, req VectorSearchRequest) ([]SearchMatch, error) {
	if len(req.QueryEmbedding) == 0 {
		return nil, nil
	}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	if req.Limit == 0 {
		req.Limit = 10
	}

	sp, _ := entity.NewIndexHNSWSearchParam(64)
	queryVector := entity.FloatVector(req.QueryEmbedding)
	searchResults, err := s.milvusClient.Search(
		ctx,
		s.collection,
		[]string{},
		"",
		[]string{"chunk_id", "document_id", "content"},
		[]entity.Vector{queryVector},
		"vector",
		entity.COSINE,
		req.Limit,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	if len(searchResults) == 0 {
		return []SearchMatch{}, nil
	}
	result := searchResults[0]
	if result.Err != nil {
		return nil, fmt.Errorf("milvus search error: %w", result.Err)
	}
	if result.ResultCount == 0 {
		return []SearchMatch{}, nil
	}

	var ids []int64
	if idCol, ok := result.IDs.(*entity.ColumnInt64); ok {
		ids = idCol.Data()
	}

	var chunkIDs, documentIDs []int64
	var contents []string
	for _, field := range result.Fields {
		switch field.Name() {
		case "chunk_id":
			if val, ok := field.(*entity.ColumnInt64); ok {
				chunkIDs = val.Data()
			}
		case "document_id":
			if val, ok := field.(*entity.ColumnInt64); ok {
				documentIDs = val.Data()
			}
		case "content":
			if val, ok := field.(*entity.ColumnVarChar); ok {
				contents = val.Data()
			}
		}
	}

	results := make([]SearchMatch, 0, result.ResultCount)
	for i := 0; i < result.ResultCount; i++ {
		match := SearchMatch{Metadata: make(map[string]interface{})}

		if i < len(chunkIDs) {
			match.ChunkID = uint(chunkIDs[i])
		} else if i < len(ids) {
			match.ChunkID = uint(ids[i])
		}
		if i < len(documentIDs) {
			match.DocumentID = uint(documentIDs[i])
		}
		if i < len(contents) {
			match.Content = contents[i]
		}
		if i < len(result.Scores) {
			match.Score = float64(result.Scores[i])
		}

		if req.Threshold > 0 && match.Score < req.Threshold {
			continue
		}
		results = append(results, match)
	}

	return results, nil
}

func (s *milvusVectorStore) Ready() bool {
	if s.milvusClient == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.milvusClient.ListCollections(ctx)
	return err == nil
}
