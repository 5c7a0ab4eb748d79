package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/admarket/moderation/config"
	"github.com/admarket/moderation/internal/adapters/kafkaq"
)

// NewProducer constructs the Kafka producer for the work and DLQ topics.
func NewProducer(cfg config.KafkaConfig, logger *slog.Logger) (*kafkaq.Producer, error) {
	producer, err := kafkaq.NewProducer(kafkaq.ProducerOptions{
		Brokers:   cfg.Brokers,
		WorkTopic: cfg.ModerationTopic,
		DLQTopic:  cfg.DLQTopic,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return producer, nil
}

// NewConsumer constructs the Kafka consumer group reader for the work topic.
func NewConsumer(cfg config.KafkaConfig, logger *slog.Logger) (*kafkaq.Consumer, error) {
	consumer, err := kafkaq.NewConsumer(kafkaq.ConsumerOptions{
		Brokers: cfg.Brokers,
		Topic:   cfg.ModerationTopic,
		GroupID: cfg.GroupID,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return consumer, nil
}
