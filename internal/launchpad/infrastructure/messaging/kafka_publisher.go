// Package messaging 领域事件的 Kafka 发布实现
package messaging

import (
	"context"
	"time"

	"github.com/wyfcoding/launchpad/internal/launchpad/domain"
	"github.com/wyfcoding/launchpad/pkg/mq"
)

// envelope 事件信封，携带类型标识供下游按需解码
type envelope struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type kafkaPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaPublisher 创建 Kafka 事件发布者
func NewKafkaPublisher(producer *mq.KafkaProducer, topic string) domain.EventPublisher {
	return &kafkaPublisher{
		producer: producer,
		topic:    topic,
	}
}

// Publish 以 key 分区发布事件，同一代币的事件保持有序
func (p *kafkaPublisher) Publish(ctx context.Context, eventType, key string, event any) error {
	return p.producer.SendMessage(ctx, p.topic, key, envelope{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      event,
	})
}
