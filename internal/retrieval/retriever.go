package retrieval

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/vlabhub/labchat-go/internal/config"
	"github.com/vlabhub/labchat-go/internal/models"
)

// HybridSearchRequest 混合检索请求
type HybridSearchRequest struct {
	Query           string
	Limit           int
	VectorThreshold float64
}

// HybridRetriever 组合向量检索与全文检索，加权融合结果
type HybridRetriever struct {
	indexer        FulltextIndexer
	vectorStore    VectorStore
	embedder       Embedder
	vectorWeight   float64
	fulltextWeight float64
}

// NewHybridRetriever 创建混合检索器
func NewHybridRetriever(indexer FulltextIndexer, vectorStore VectorStore, embedder Embedder) *HybridRetriever {
	return &HybridRetriever{
		indexer:        indexer,
		vectorStore:    vectorStore,
		embedder:       embedder,
		vectorWeight:   0.6,
		fulltextWeight: 0.4,
	}
}

// NewVectorStore 根据配置选择向量存储provider
func NewVectorStore(cfg *config.Config) (VectorStore, error) {
	vs := cfg.Retrieval.VectorStore
	switch vs.Provider {
	case "milvus":
		return NewMilvusVectorStore(MilvusOptions{
			Address:    vs.Milvus.Address,
			Username:   vs.Milvus.Username,
			Password:   vs.Milvus.Password,
			Collection: vs.Milvus.Collection,
			Database:   vs.Milvus.Database,
			VectorSize: vs.Milvus.VectorSize,
			UseTLS:     vs.Milvus.TLS,
		})
	case "qdrant":
		return NewQdrantVectorStore(QdrantOptions{
			Endpoint:   vs.Qdrant.Endpoint,
			APIKey:     vs.Qdrant.APIKey,
			Collection: vs.Qdrant.Collection,
			VectorSize: vs.Qdrant.VectorSize,
			Distance:   vs.Qdrant.Distance,
		})
	default:
		return NewMemoryVectorStore(), nil
	}
}

// SetWeights 设置混合检索权重，内部做归一化
func (r *HybridRetriever) SetWeights(vectorWeight, fulltextWeight float64) {
	if vectorWeight > 0 && fulltextWeight > 0 {
		total := vectorWeight + fulltextWeight
		r.vectorWeight = vectorWeight / total
		r.fulltextWeight = fulltextWeight / total
	}
}

// Search 混合检索。任一引擎失败时降级为另一个，两个都不可用才报错。
func (r *HybridRetriever) Search(ctx context.Context, req HybridSearchRequest) ([]SearchMatch, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.New("query cannot be empty")
	}
	if req.Limit == 0 {
		req.Limit = 10
	}

	useVector := r.vectorStore != nil && r.vectorStore.Ready() && r.embedder != nil && r.embedder.Ready()
	useFulltext := r.indexer != nil && r.indexer.Ready()

	if !useVector && !useFulltext {
		return nil, errors.New("no search engine configured")
	}

	var vectorResults, fullResults []SearchMatch

	if useVector {
		embedding, err := r.embedder.Embed(ctx, req.Query)
		if err == nil {
			vectorResults, err = r.vectorStore.Search(ctx, VectorSearchRequest{
				QueryEmbedding: embedding,
				Limit:          req.Limit * 2,
				Threshold:      req.VectorThreshold,
			})
		}
		if err != nil {
			if !useFulltext {
				return nil, err
			}
			useVector = false
			vectorResults = nil
		}
	}

	if useFulltext {
		var err error
		fullResults, err = r.indexer.Search(ctx, FulltextSearchRequest{
			Query: req.Query,
			Limit: req.Limit * 2,
		})
		if err != nil {
			if !useVector {
				return nil, err
			}
			useFulltext = false
			fullResults = nil
		}
	}

	if !useFulltext && useVector {
		if len(vectorResults) > req.Limit {
			vectorResults = vectorResults[:req.Limit]
		}
		return vectorResults, nil
	}
	if !useVector && useFulltext {
		if len(fullResults) > req.Limit {
			fullResults = fullResults[:req.Limit]
		}
		return fullResults, nil
	}

	results := r.mergeResults(vectorResults, fullResults)
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

// mergeResults 加权融合：向量×vectorWeight + 全文×fulltextWeight。
// ES的BM25得分先按本次结果的最大值归一化到0-1。
func (r *HybridRetriever) mergeResults(vectorResults, fullResults []SearchMatch) []SearchMatch {
	var maxFullScore float64
	for _, m := range fullResults {
		if m.Score > maxFullScore {
			maxFullScore = m.Score
		}
	}

	scoreMap := make(map[uint]*SearchMatch)
	for _, item := range vectorResults {
		chunk := item
		chunk.Score = chunk.Score * r.vectorWeight
		scoreMap[chunk.ChunkID] = &chunk
	}

	for _, item := range fullResults {
		normalized := normalizeScore(item.Score, maxFullScore)
		if existing, ok := scoreMap[item.ChunkID]; ok {
			existing.Score += normalized * r.fulltextWeight
			if existing.Highlight == "" {
				existing.Highlight = item.Highlight
			}
		} else {
			chunk := item
			chunk.Score = normalized * r.fulltextWeight
			scoreMap[chunk.ChunkID] = &chunk
		}
	}

	results := make([]SearchMatch, 0, len(scoreMap))
	for _, m := range scoreMap {
		results = append(results, *m)
	}
	sortMatchesByScore(results)
	return results
}

func normalizeScore(score, maxScore float64) float64 {
	if maxScore == 0 {
		return 0
	}
	normalized := score / maxScore
	if normalized > 1.0 {
		normalized = 1.0
	}
	return normalized
}

func sortMatchesByScore(matches []SearchMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}

var nonWordPattern = regexp.MustCompile(`[\s,;，；、。]+`)

// MatchImages 用关键词启发式从图库中挑出与问题相关的实验图。
// 图片的Keywords字段为逗号分隔的关键词表，任一关键词命中问题文本即匹配。
func MatchImages(question string, images []models.LabImage) []models.LabImage {
	question = strings.ToLower(question)
	if strings.TrimSpace(question) == "" {
		return nil
	}

	matched := make([]models.LabImage, 0)
	for _, img := range images {
		for _, kw := range nonWordPattern.Split(strings.ToLower(img.Keywords), -1) {
			if kw == "" {
				continue
			}
			if strings.Contains(question, kw) {
				matched = append(matched, img)
				break
			}
		}
	}
	return matched
}
