package services

import (
	"fmt"
	"strings"

	"github.com/vlabhub/labchat-go/internal/llm"
	"github.com/vlabhub/labchat-go/internal/retrieval"
	"github.com/vlabhub/labchat-go/internal/websearch"
)

// ImageRef 已解析为可访问URL的实验图引用
type ImageRef struct {
	Caption string `json:"caption"`
	URL     string `json:"url"`
}

const systemPrompt = `你是虚拟仿真实验教学平台的实验助教。请只依据下面提供的资料回答学生的问题：
- 回答使用Markdown格式，公式用行内LaTeX。
- 引用资料时标注来源编号，如[1]。
- 如果提供了实验图，请用Markdown图片语法把图插入到回答中合适的位置。
- 资料不足以回答时，直接说明你不知道，不要编造。`

// PromptBuilder 组装检索增强的提示词
type PromptBuilder struct{}

// NewPromptBuilder 创建提示词构建器
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// Build 把检索片段、实验图与网页摘要拼成带来源编号的对话消息
func (b *PromptBuilder) Build(question string, passages []retrieval.SearchMatch, images []ImageRef, webResults []websearch.Result) []llm.Message {
	var sb strings.Builder

	idx := 1
	if len(passages) > 0 {
		sb.WriteString("## 实验讲义片段\n")
		for _, p := range passages {
			fmt.Fprintf(&sb, "[%d] %s\n\n", idx, strings.TrimSpace(p.Content))
			idx++
		}
	}

	if len(images) > 0 {
		sb.WriteString("## 实验图\n")
		for _, img := range images {
			fmt.Fprintf(&sb, "![%s](%s)\n", img.Caption, img.URL)
		}
		sb.WriteString("\n")
	}

	if len(webResults) > 0 {
		sb.WriteString("## 网页参考\n")
		for _, r := range webResults {
			fmt.Fprintf(&sb, "[%d] %s（%s）: %s\n\n", idx, r.Title, r.URL, strings.TrimSpace(r.Content))
			idx++
		}
	}

	var userContent string
	if sb.Len() > 0 {
		userContent = fmt.Sprintf("%s\n## 学生提问\n%s", sb.String(), question)
	} else {
		userContent = question
	}

	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userContent},
	}
}
