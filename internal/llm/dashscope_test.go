package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashScopeProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/compatible-mode/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req dashScopeChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "qwen-plus", req.Model)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "chatcmpl-1",
			"model": req.Model,
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "电阻的色环表示阻值。"}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 8, "total_tokens": 20},
		})
	}))
	defer server.Close()

	provider := NewDashScopeProvider("test-key", []string{"qwen-plus"}).(*DashScopeProvider)
	provider.SetBaseURL(server.URL)

	resp, err := provider.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "什么是色环电阻？"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "电阻的色环表示阻值。", resp.Content)
	assert.Equal(t, "qwen-plus", resp.Model)
	assert.Equal(t, 12, resp.PromptTokens)
}

func TestDashScopeProvider_FallbackChain(t *testing.T) {
	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req dashScopeChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		calls = append(calls, req.Model)

		if req.Model == "qwen-max" {
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"code": "Throttling", "message": "rate limited"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"model": req.Model,
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "ok"}, "finish_reason": "stop"},
			},
		})
	}))
	defer server.Close()

	provider := NewDashScopeProvider("test-key", []string{"qwen-max", "qwen-plus"}).(*DashScopeProvider)
	provider.SetBaseURL(server.URL)

	resp, err := provider.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "qwen-plus", resp.Model)
	assert.Equal(t, []string{"qwen-max", "qwen-plus"}, calls)
}

func TestDashScopeProvider_AllModelsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"code": "InternalError", "message": "boom"})
	}))
	defer server.Close()

	provider := NewDashScopeProvider("test-key", []string{"qwen-max", "qwen-plus"}).(*DashScopeProvider)
	provider.SetBaseURL(server.URL)

	_, err := provider.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all models failed")
}

func TestNewProviderSelection(t *testing.T) {
	assert.IsType(t, &NoopProvider{}, NewDashScopeProvider("", nil))
	assert.IsType(t, &NoopProvider{}, NewOpenAIProvider("  ", nil))
	assert.Equal(t, "dashscope", NewDashScopeProvider("k", nil).Name())
	assert.Equal(t, "openai", NewOpenAIProvider("k", nil).Name())
}
