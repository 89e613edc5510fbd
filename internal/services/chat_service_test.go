package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlabhub/labchat-go/internal/llm"
	"github.com/vlabhub/labchat-go/internal/retrieval"
)

// fakeRetriever 返回预置片段
type fakeRetriever struct {
	matches []retrieval.SearchMatch
	err     error
}

func (f *fakeRetriever) Search(ctx context.Context, query string) ([]retrieval.SearchMatch, error) {
	return f.matches, f.err
}

// fakeImageFinder 返回预置实验图
type fakeImageFinder struct {
	refs []ImageRef
}

func (f *fakeImageFinder) Find(ctx context.Context, question string) ([]ImageRef, error) {
	return f.refs, nil
}

// fakeProvider 记录收到的消息并返回固定回答
type fakeProvider struct {
	lastRequest llm.Request
	response    *llm.Response
	err         error
}

func (f *fakeProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeProvider) Ready() bool  { return true }
func (f *fakeProvider) Name() string { return "fake" }

func newTestChatService(provider llm.Provider, retriever Retriever, images ImageFinder) *ChatService {
	return NewChatService(ChatServiceOptions{
		Retriever: retriever,
		Images:    images,
		Provider:  provider,
	})
}

func TestChatService_AskResistorRoute(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestChatService(provider, &fakeRetriever{}, &fakeImageFinder{})

	resp, err := svc.Ask(context.Background(), AskRequest{
		SessionID: "s-1",
		UserID:    "u-1",
		Question:  "What is the color code for a 220 ohm and a 4.7k resistor?",
	})
	require.NoError(t, err)
	assert.Equal(t, string(RouteResistor), resp.Route)
	assert.Contains(t, resp.Answer, "220 Ω: 4-band: Red - Red - Brown - Gold (±5%)")
	assert.Contains(t, resp.Answer, "4700 Ω: 4-band: Yellow - Violet - Red - Gold (±5%)")
	// 确定性路径不调用LLM
	assert.Empty(t, provider.lastRequest.Messages)
}

func TestChatService_AskResistorRouteUnresolvable(t *testing.T) {
	svc := newTestChatService(&fakeProvider{}, &fakeRetriever{}, &fakeImageFinder{})

	resp, err := svc.Ask(context.Background(), AskRequest{
		Question: "explain the resistor color code system in general",
	})
	require.NoError(t, err)
	assert.Equal(t, string(RouteResistor), resp.Route)
	assert.Equal(t, FallbackAnswer, resp.Answer)
}

func TestChatService_AskRAGRoute(t *testing.T) {
	provider := &fakeProvider{response: &llm.Response{
		Content: "欧姆定律是U=IR。[1]",
		Model:   "gpt-4o",
	}}
	retriever := &fakeRetriever{matches: []retrieval.SearchMatch{
		{ChunkID: 1, DocumentID: 1, Content: "欧姆定律：电压等于电流乘以电阻。", Score: 0.92},
	}}
	images := &fakeImageFinder{refs: []ImageRef{{Caption: "电路图", URL: "https://minio.local/ohm.png"}}}

	svc := newTestChatService(provider, retriever, images)
	resp, err := svc.Ask(context.Background(), AskRequest{Question: "欧姆定律是什么"})
	require.NoError(t, err)

	assert.Equal(t, string(RouteRAG), resp.Route)
	assert.Equal(t, "欧姆定律是U=IR。[1]", resp.Answer)
	assert.Equal(t, "gpt-4o", resp.Model)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "passage", resp.Sources[0].Type)

	// 提示词里带上了检索片段与实验图
	require.Len(t, provider.lastRequest.Messages, 2)
	assert.Contains(t, provider.lastRequest.Messages[1].Content, "欧姆定律：电压等于电流乘以电阻。")
	assert.Contains(t, provider.lastRequest.Messages[1].Content, "![电路图](https://minio.local/ohm.png)")
}

func TestChatService_AskProviderFailureFallsBack(t *testing.T) {
	provider := &fakeProvider{err: errors.New("all models failed")}
	svc := newTestChatService(provider, &fakeRetriever{}, &fakeImageFinder{})

	resp, err := svc.Ask(context.Background(), AskRequest{Question: "什么是示波器"})
	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, resp.Answer)
}

func TestChatService_AskRetrievalFailureStillAnswers(t *testing.T) {
	provider := &fakeProvider{response: &llm.Response{Content: "ok", Model: "m"}}
	retriever := &fakeRetriever{err: errors.New("search backend down")}

	svc := newTestChatService(provider, retriever, &fakeImageFinder{})
	resp, err := svc.Ask(context.Background(), AskRequest{Question: "万用表怎么用"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Answer)
}

func TestChatService_AskEmptyQuestion(t *testing.T) {
	svc := newTestChatService(&fakeProvider{}, &fakeRetriever{}, &fakeImageFinder{})
	_, err := svc.Ask(context.Background(), AskRequest{Question: "   "})
	assert.Error(t, err)
}
