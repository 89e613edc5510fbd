package services

import (
	"regexp"
	"strings"
)

// RouteKind 问题路由类型
type RouteKind string

const (
	// RouteResistor 色环电阻计算：走确定性计算路径，不调用LLM
	RouteResistor RouteKind = "resistor"
	// RouteFigure 图示类问题：RAG路径并强制附带实验图匹配
	RouteFigure RouteKind = "figure"
	// RouteRAG 默认检索增强问答路径
	RouteRAG RouteKind = "rag"
)

// resistorPattern 色环电阻意图：提到色环/color code/band且上下文是电阻
var resistorPattern = regexp.MustCompile(`(?i)colou?r[\s-]?(code|band)s?|resistor\s+band|色环|電阻色環`)

// figurePattern 图示意图：要求电路图/装置图/示意图
var figurePattern = regexp.MustCompile(`(?i)diagram|schematic|figure|电路图|装置图|示意图|接线图|原理图`)

// QuestionRouter 基于正则启发式的问题路由
type QuestionRouter struct{}

// NewQuestionRouter 创建问题路由器
func NewQuestionRouter() *QuestionRouter {
	return &QuestionRouter{}
}

// Route 判定问题走哪条处理路径
func (r *QuestionRouter) Route(question string) RouteKind {
	question = strings.TrimSpace(question)
	if question == "" {
		return RouteRAG
	}
	if resistorPattern.MatchString(question) {
		return RouteResistor
	}
	if figurePattern.MatchString(question) {
		return RouteFigure
	}
	return RouteRAG
}
