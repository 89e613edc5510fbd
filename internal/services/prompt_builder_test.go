package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlabhub/labchat-go/internal/retrieval"
	"github.com/vlabhub/labchat-go/internal/websearch"
)

func TestPromptBuilder_Build(t *testing.T) {
	b := NewPromptBuilder()

	passages := []retrieval.SearchMatch{
		{ChunkID: 1, Content: "欧姆定律：U = IR。"},
		{ChunkID: 2, Content: "电阻的色环从左到右读取。"},
	}
	images := []ImageRef{{Caption: "欧姆定律电路图", URL: "https://minio.local/ohm.png"}}
	web := []websearch.Result{{Title: "Ohm's law", URL: "https://en.wikipedia.org/wiki/Ohm%27s_law", Content: "V = IR"}}

	messages := b.Build("欧姆定律怎么验证？", passages, images, web)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "user", messages[1].Role)

	user := messages[1].Content
	assert.Contains(t, user, "[1] 欧姆定律：U = IR。")
	assert.Contains(t, user, "[2] 电阻的色环从左到右读取。")
	assert.Contains(t, user, "![欧姆定律电路图](https://minio.local/ohm.png)")
	// 网页来源编号接在讲义片段之后
	assert.Contains(t, user, "[3] Ohm's law")
	assert.Contains(t, user, "## 学生提问\n欧姆定律怎么验证？")
}

func TestPromptBuilder_BuildWithoutContext(t *testing.T) {
	b := NewPromptBuilder()
	messages := b.Build("什么是示波器？", nil, nil, nil)
	require.Len(t, messages, 2)
	assert.Equal(t, "什么是示波器？", messages[1].Content)
}
