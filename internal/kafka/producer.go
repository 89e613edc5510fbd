package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/vlabhub/labchat-go/internal/logger"
)

// Producer Kafka生产者
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// ChatUsageEvent 问答用量事件：门户侧做学习分析与成本核算
type ChatUsageEvent struct {
	SessionID        string    `json:"session_id"`
	UserID           string    `json:"user_id"`
	Route            string    `json:"route"`
	Provider         string    `json:"provider"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	Cached           bool      `json:"cached"`
	Timestamp        time.Time `json:"timestamp"`
}

var globalProducer *Producer

// InitProducer 初始化Kafka生产者
func InitProducer(brokers []string, topic string) error {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Timeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return fmt.Errorf("创建Kafka生产者失败: %w", err)
	}

	globalProducer = &Producer{
		producer: producer,
		topic:    topic,
	}

	logger.Info("Kafka生产者初始化成功", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return nil
}

// GetProducer 获取全局生产者实例
func GetProducer() *Producer {
	return globalProducer
}

// SendUsageEvent 发送用量事件到Kafka
func (p *Producer) SendUsageEvent(event *ChatUsageEvent) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("Kafka生产者未初始化")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	kafkaMsg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(fmt.Sprintf("%s-%s", event.UserID, event.SessionID)),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("route"),
				Value: []byte(event.Route),
			},
		},
	}

	partition, offset, err := p.producer.SendMessage(kafkaMsg)
	if err != nil {
		logger.Error("发送Kafka消息失败", zap.Error(err))
		return fmt.Errorf("发送消息失败: %w", err)
	}

	logger.Debug("Kafka消息发送成功",
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		zap.String("session_id", event.SessionID))

	return nil
}

// Close 关闭生产者
func (p *Producer) Close() error {
	if p != nil && p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// SendChatUsage 发送用量事件（便捷方法）。Kafka未配置时静默跳过，不影响主流程。
func SendChatUsage(event *ChatUsageEvent) error {
	producer := GetProducer()
	if producer == nil {
		logger.Debug("Kafka生产者未初始化，跳过消息发送")
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return producer.SendUsageEvent(event)
}
