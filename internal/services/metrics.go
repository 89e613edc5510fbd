package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 问答链路的Prometheus指标
type Metrics struct {
	questionsTotal *prometheus.CounterVec
	cacheHits      prometheus.Counter
	providerErrors prometheus.Counter
	fallbacks      prometheus.Counter
}

// NewMetrics 注册并返回指标集合
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		questionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "labchat_questions_total",
			Help: "Total questions received, labelled by route.",
		}, []string{"route"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "labchat_answer_cache_hits_total",
			Help: "Answers served from the Redis cache.",
		}),
		providerErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "labchat_provider_errors_total",
			Help: "LLM provider calls that failed after the full model chain.",
		}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "labchat_fallback_answers_total",
			Help: "Questions answered with the generic fallback.",
		}),
	}
}

// ObserveQuestion 记录一次提问
func (m *Metrics) ObserveQuestion(route RouteKind) {
	if m == nil {
		return
	}
	m.questionsTotal.WithLabelValues(string(route)).Inc()
}

// ObserveCacheHit 记录一次缓存命中
func (m *Metrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// ObserveProviderError 记录一次LLM提供商失败
func (m *Metrics) ObserveProviderError() {
	if m == nil {
		return
	}
	m.providerErrors.Inc()
}

// ObserveFallback 记录一次兜底回答
func (m *Metrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}
