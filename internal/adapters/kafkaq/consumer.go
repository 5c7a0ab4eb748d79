package kafkaq

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/admarket/moderation/internal/domain/model"
)

// MessageReader is the subset of kafka.Reader the consumer relies on.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// ConsumerOptions configures the Kafka consumer adapter.
type ConsumerOptions struct {
	Brokers []string
	Topic   string
	GroupID string
	Logger  *slog.Logger

	// Optional reader injection for tests/decoupling.
	Reader MessageReader
}

// Consumer yields work messages from the moderation topic as part of a
// consumer group. ReadMessage commits the offset as each message is handed to
// the caller, so a crash between handoff and processing completion redelivers
// the message on restart (at-least-once).
type Consumer struct {
	reader MessageReader
	logger *slog.Logger
}

// NewConsumer constructs a Consumer joined to the given consumer group.
func NewConsumer(opts ConsumerOptions) (*Consumer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reader := opts.Reader
	if reader == nil {
		if len(opts.Brokers) == 0 {
			return nil, errors.New("at least one broker is required")
		}
		if opts.Topic == "" || opts.GroupID == "" {
			return nil, errors.New("topic and group id are required")
		}
		reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:        opts.Brokers,
			GroupID:        opts.GroupID,
			Topic:          opts.Topic,
			MinBytes:       1,
			MaxBytes:       1e6,
			MaxWait:        250 * time.Millisecond,
			CommitInterval: 0, // synchronous commits
		})
	}

	return &Consumer{
		reader: reader,
		logger: logger.With("component", "kafka_consumer"),
	}, nil
}

// Fetch blocks until the next decodable work message arrives or the context
// is cancelled. Undecodable payloads are logged and skipped; their offsets are
// already committed, which keeps a poison pill from wedging the partition.
func (c *Consumer) Fetch(ctx context.Context) (model.WorkMessage, error) {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return model.WorkMessage{}, err
		}

		var msg model.WorkMessage
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			c.logger.ErrorContext(ctx, "skipping undecodable work message",
				"partition", m.Partition, "offset", m.Offset, "error", err)
			continue
		}
		return msg, nil
	}
}

// Close leaves the consumer group and releases the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
