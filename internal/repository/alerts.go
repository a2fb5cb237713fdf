package repository

import (
	"context"
	"fmt"

	"rrtracker/internal/domain/models"
	"rrtracker/pkg/kafka"
)

// KafkaAlertPublisher emits crossing events to the audit topic, keyed by
// symbol so per-ticker ordering holds.
type KafkaAlertPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaAlertPublisher(producer *kafka.Producer, topic string) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) PublishCrossing(ctx context.Context, ev *models.CrossingEvent) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(ev.Symbol), ev); err != nil {
		return fmt.Errorf("publish crossing %s: %w", ev.Symbol, err)
	}
	return nil
}

func (p *KafkaAlertPublisher) Close() error {
	return p.producer.Close()
}
