package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"speech_to_act/backend/go/internal/models"
	"speech_to_act/backend/go/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// MessageWriter 是 kafka.Writer 中被发布器使用的部分，测试时可以替换。
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher 负责把意图生命周期事件发布到 Kafka。
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
	logger *logger.Logger
}

// NewKafkaPublisher 创建一个新的 KafkaPublisher。
func NewKafkaPublisher(brokers []string, topic string, logger *logger.Logger) *KafkaPublisher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	})
	return NewKafkaPublisherWithWriter(writer, topic, logger)
}

// NewKafkaPublisherWithWriter 使用给定的 writer 创建发布器。
func NewKafkaPublisherWithWriter(writer MessageWriter, topic string, logger *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic, logger: logger}
}

// Publish 发送一条事件，分区键为待确认 id（或提交回执 id），同一意图的事件保持有序。
func (p *KafkaPublisher) Publish(ctx context.Context, event *models.IntentEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Failed to marshal intent event for Kafka")
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key()),
		Value: msgBytes,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		p.logger.WithError(models.ErrorInfo{Message: err.Error()}).
			WithPayload(map[string]interface{}{"topic": p.topic, "event_type": string(event.Type)}).
			Error("Failed to write intent event to Kafka")
		return fmt.Errorf("写入 Kafka 失败: %w", err)
	}
	return nil
}

// Close 关闭底层的 Kafka writer。
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher 丢弃所有事件，未配置 Kafka 时使用。
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *models.IntentEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
