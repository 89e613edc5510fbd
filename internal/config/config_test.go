package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetEnv(t *testing.T) {
	t.Helper()
	viper.Reset()
	for _, key := range []string{
		"PORT", "APP_ENV", "DATABASE_URL", "REDIS_HOST", "REDIS_PORT",
		"JWT_SECRET", "KAFKA_BROKERS", "OPENAI_API_KEY", "DASHSCOPE_API_KEY",
		"AI_PROVIDER", "AI_MODELS", "VECTOR_STORE", "MILVUS_ADDRESS",
		"QDRANT_ENDPOINT", "QDRANT_API_KEY", "ELASTICSEARCH_ADDRESSES",
		"ELASTICSEARCH_API_KEY", "WEBSEARCH_API_KEY", "WEBSEARCH_BASE_URL",
		"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetEnv(t)

	require.NoError(t, LoadConfig())

	assert.Equal(t, "8080", AppConfig.Server.Port)
	assert.False(t, AppConfig.IsProduction())
	assert.Equal(t, "openai", AppConfig.AI.Provider)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini", "gpt-3.5-turbo"}, AppConfig.AI.Models)
	assert.Equal(t, "memory", AppConfig.Retrieval.VectorStore.Provider)
	assert.Equal(t, 6, AppConfig.Retrieval.TopK)
	assert.InDelta(t, 0.6, AppConfig.Retrieval.VectorWeight, 1e-9)
	assert.InDelta(t, 0.4, AppConfig.Retrieval.FulltextWeight, 1e-9)
	assert.False(t, AppConfig.Kafka.Enabled)
	assert.Equal(t, 600, AppConfig.Redis.TTL)
	assert.False(t, AppConfig.WebSearch.Enabled)
	assert.True(t, AppConfig.Metrics.Enabled)
}

func TestLoadConfig_DashScopeFallback(t *testing.T) {
	resetEnv(t)
	t.Setenv("DASHSCOPE_API_KEY", "sk-test")

	require.NoError(t, LoadConfig())

	assert.Equal(t, "dashscope", AppConfig.AI.Provider)
	assert.Equal(t, "sk-test", AppConfig.AI.DashScopeAPIKey)
	assert.Equal(t, []string{"qwen-max", "qwen-plus", "qwen-turbo"}, AppConfig.AI.Models)
	assert.Equal(t, "dashscope", AppConfig.Retrieval.Embedding.Provider)
	assert.Equal(t, "text-embedding-v3", AppConfig.Retrieval.Embedding.Model)
}

func TestLoadConfig_OpenAIKeyTakesPriority(t *testing.T) {
	resetEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("DASHSCOPE_API_KEY", "sk-dashscope")

	require.NoError(t, LoadConfig())

	assert.Equal(t, "openai", AppConfig.AI.Provider)
	assert.Equal(t, "sk-openai", AppConfig.AI.OpenAIAPIKey)
	assert.Equal(t, "sk-dashscope", AppConfig.AI.DashScopeAPIKey)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	resetEnv(t)
	t.Setenv("PORT", "9001")
	t.Setenv("APP_ENV", "production")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("MILVUS_ADDRESS", "milvus:19530")
	t.Setenv("WEBSEARCH_API_KEY", "tvly-test")

	require.NoError(t, LoadConfig())

	assert.Equal(t, "9001", AppConfig.Server.Port)
	assert.True(t, AppConfig.IsProduction())
	assert.True(t, AppConfig.Kafka.Enabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, AppConfig.Kafka.Brokers)
	assert.Equal(t, "milvus", AppConfig.Retrieval.VectorStore.Provider)
	assert.Equal(t, "milvus:19530", AppConfig.Retrieval.VectorStore.Milvus.Address)
	assert.True(t, AppConfig.WebSearch.Enabled)
	assert.Equal(t, "tvly-test", AppConfig.WebSearch.APIKey)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , b ,"))
	assert.Empty(t, splitAndTrim("  ,  "))
}
