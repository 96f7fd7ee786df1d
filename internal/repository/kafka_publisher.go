package repository

import (
	"context"

	"volscan/internal/domain/models"
	"volscan/internal/domain/repository"
	pkgkafka "volscan/pkg/kafka"
)

// KafkaPublisher implements ResultSink for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka result sink.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.ResultSink {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, r *models.PerformerResult) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.Symbol), map[string]interface{}{
		"symbol":      r.Symbol,
		"moves":       r.Moves,
		"turnover":    r.Turnover,
		"fundingRate": r.FundingRate,
		"at":          r.At.UnixMilli(),
	})
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
