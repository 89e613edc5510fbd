package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vlabhub/labchat-go/internal/errors"
	"github.com/vlabhub/labchat-go/internal/kafka"
	"github.com/vlabhub/labchat-go/internal/llm"
	"github.com/vlabhub/labchat-go/internal/logger"
	"github.com/vlabhub/labchat-go/internal/models"
	"github.com/vlabhub/labchat-go/internal/resistor"
	"github.com/vlabhub/labchat-go/internal/retrieval"
	"github.com/vlabhub/labchat-go/internal/websearch"
)

// FallbackAnswer 检索与计算都无法给出答案时的兜底回复
const FallbackAnswer = "抱歉，这个问题我还回答不了。可以换个问法，或者查阅实验讲义里的相关章节。"

// AskRequest 一次提问
type AskRequest struct {
	SessionID string
	UserID    string
	LabID     string
	Question  string
}

// Source 回答引用的来源
type Source struct {
	Type  string `json:"type"` // passage | web
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
	Score float64 `json:"score,omitempty"`
}

// AskResponse 一次回答
type AskResponse struct {
	Answer  string   `json:"answer"`
	Route   string   `json:"route"`
	Model   string   `json:"model,omitempty"`
	Cached  bool     `json:"cached"`
	Sources []Source `json:"sources,omitempty"`
}

// ChatService 问答编排：路由、计算/检索、生成、落库、缓存与用量上报
type ChatService struct {
	router    *QuestionRouter
	prompts   *PromptBuilder
	retriever Retriever
	images    ImageFinder
	provider  llm.Provider
	search    *websearch.Client
	db        *gorm.DB
	cache     *redis.Client
	cacheTTL  time.Duration
	metrics   *Metrics

	maxTokens   int
	temperature float64
}

// ChatServiceOptions 依赖注入
type ChatServiceOptions struct {
	Retriever   Retriever
	Images      ImageFinder
	Provider    llm.Provider
	Search      *websearch.Client
	DB          *gorm.DB
	Cache       *redis.Client
	CacheTTL    time.Duration
	Metrics     *Metrics
	MaxTokens   int
	Temperature float64
}

// NewChatService 创建问答服务
func NewChatService(opts ChatServiceOptions) *ChatService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	return &ChatService{
		router:      NewQuestionRouter(),
		prompts:     NewPromptBuilder(),
		retriever:   opts.Retriever,
		images:      opts.Images,
		provider:    opts.Provider,
		search:      opts.Search,
		db:          opts.DB,
		cache:       opts.Cache,
		cacheTTL:    opts.CacheTTL,
		metrics:     opts.Metrics,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}
}

// Ask 处理一次提问
func (s *ChatService) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, errors.NewValidationError("question is required")
	}

	route := s.router.Route(question)
	s.metrics.ObserveQuestion(route)

	if resp := s.cachedAnswer(ctx, question); resp != nil {
		s.metrics.ObserveCacheHit()
		s.emitUsage(req, resp, nil)
		return resp, nil
	}

	var resp *AskResponse
	var usage *llm.Response
	switch route {
	case RouteResistor:
		resp = s.answerResistor(question)
	default:
		resp, usage = s.answerRAG(ctx, question, route)
	}

	if resp.Answer == FallbackAnswer {
		s.metrics.ObserveFallback()
	}

	s.persistExchange(ctx, req, question, resp)
	s.storeAnswer(ctx, question, resp)
	s.emitUsage(req, resp, usage)

	return resp, nil
}

// answerResistor 色环电阻的确定性计算路径
func (s *ChatService) answerResistor(question string) *AskResponse {
	values := resistor.ExtractOhmValues(question)
	answer, ok := resistor.FormatAnswer(values)
	if !ok {
		return &AskResponse{Answer: FallbackAnswer, Route: string(RouteResistor)}
	}
	return &AskResponse{Answer: answer, Route: string(RouteResistor)}
}

// answerRAG 检索增强生成路径
func (s *ChatService) answerRAG(ctx context.Context, question string, route RouteKind) (*AskResponse, *llm.Response) {
	resp := &AskResponse{Route: string(route)}

	matches, err := s.searchPassages(ctx, question)
	if err != nil {
		logger.Warn("retrieval failed, continuing without passages", zap.Error(err))
	}

	var images []ImageRef
	if s.images != nil {
		images, err = s.images.Find(ctx, question)
		if err != nil {
			logger.Warn("image matching failed", zap.Error(err))
		}
	}

	// 语料不足时用受限网页搜索补充
	var webResults []websearch.Result
	if s.search.Enabled() && len(matches) < 2 {
		webResults, err = s.search.Search(ctx, question)
		if err != nil {
			logger.Warn("web search failed", zap.Error(err))
		}
	}

	if s.provider == nil || !s.provider.Ready() {
		resp.Answer = FallbackAnswer
		return resp, nil
	}

	messages := s.prompts.Build(question, matches, images, webResults)
	completion, err := s.provider.Complete(ctx, llm.Request{
		Messages:    messages,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		s.metrics.ObserveProviderError()
		logger.Error("llm completion failed", zap.Error(err))
		resp.Answer = FallbackAnswer
		return resp, nil
	}

	resp.Answer = completion.Content
	resp.Model = completion.Model
	for _, m := range matches {
		resp.Sources = append(resp.Sources, Source{Type: "passage", Title: truncateRunes(m.Content, 80), Score: m.Score})
	}
	for _, r := range webResults {
		resp.Sources = append(resp.Sources, Source{Type: "web", Title: r.Title, URL: r.URL})
	}
	return resp, completion
}

func (s *ChatService) searchPassages(ctx context.Context, question string) ([]retrieval.SearchMatch, error) {
	if s.retriever == nil {
		return nil, nil
	}
	return s.retriever.Search(ctx, question)
}

// cachedAnswer 查询Redis答案缓存
func (s *ChatService) cachedAnswer(ctx context.Context, question string) *AskResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, answerCacheKey(question)).Result()
	if err != nil {
		return nil
	}
	var resp AskResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil
	}
	resp.Cached = true
	return &resp
}

// storeAnswer 写入Redis答案缓存，失败只记日志
func (s *ChatService) storeAnswer(ctx context.Context, question string, resp *AskResponse) {
	if s.cache == nil || resp == nil || resp.Answer == FallbackAnswer {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, answerCacheKey(question), data, s.cacheTTL).Err(); err != nil {
		logger.Warn("failed to cache answer", zap.Error(err))
	}
}

func answerCacheKey(question string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(question))))
	return "labchat:answer:" + hex.EncodeToString(sum[:])
}

// persistExchange 把问答写入会话表，失败只记日志
func (s *ChatService) persistExchange(ctx context.Context, req AskRequest, question string, resp *AskResponse) {
	if s.db == nil || resp == nil {
		return
	}

	now := time.Now()
	session := models.ChatSession{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		LabID:     req.LabID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).
		Where(models.ChatSession{SessionID: req.SessionID}).
		FirstOrCreate(&session).Error; err != nil {
		logger.Warn("failed to upsert chat session", zap.Error(err))
	}

	sources, _ := json.Marshal(resp.Sources)
	messages := []models.ChatMessage{
		{SessionID: req.SessionID, Role: "user", Content: question, Route: resp.Route, CreatedAt: now},
		{SessionID: req.SessionID, Role: "assistant", Content: resp.Answer, Route: resp.Route, Sources: string(sources), CreatedAt: now},
	}
	if err := s.db.WithContext(ctx).Create(&messages).Error; err != nil {
		logger.Warn("failed to persist chat messages", zap.Error(err))
	}
}

// emitUsage 异步上报用量事件，不阻塞请求
func (s *ChatService) emitUsage(req AskRequest, resp *AskResponse, usage *llm.Response) {
	event := &kafka.ChatUsageEvent{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Route:     resp.Route,
		Cached:    resp.Cached,
		Timestamp: time.Now(),
	}
	if usage != nil {
		event.Model = usage.Model
		event.PromptTokens = usage.PromptTokens
		event.CompletionTokens = usage.CompletionTokens
	}
	if s.provider != nil {
		event.Provider = s.provider.Name()
	}

	go func() {
		if err := kafka.SendChatUsage(event); err != nil {
			logger.Warn("failed to send usage event", zap.Error(err))
		}
	}()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
