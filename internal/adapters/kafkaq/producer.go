// Package kafkaq adapts the queue transport contract onto Kafka using
// segmentio/kafka-go. Two logical topics are involved: the moderation work
// topic and its dead-letter companion. Delivery is at-least-once; nothing here
// couples a publish transactionally to any database write.
package kafkaq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/admarket/moderation/internal/domain/model"
)

// MessageWriter is the subset of kafka.Writer the producer relies on, kept as
// an interface so tests can capture published messages.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerOptions configures the Kafka producer adapter.
type ProducerOptions struct {
	Brokers   []string
	WorkTopic string
	DLQTopic  string
	Logger    *slog.Logger

	// Optional writer injection for tests/decoupling. When set, Brokers and
	// the topic names are ignored for that writer.
	WorkWriter MessageWriter
	DLQWriter  MessageWriter

	// Now overrides the timestamp source; defaults to time.Now.
	Now func() time.Time
}

// Producer publishes work and dead-letter messages.
type Producer struct {
	work   MessageWriter
	dlq    MessageWriter
	logger *slog.Logger
	now    func() time.Time
}

// NewProducer wires writers for both topics and constructs a Producer.
func NewProducer(opts ProducerOptions) (*Producer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	work := opts.WorkWriter
	dlq := opts.DLQWriter
	if work == nil || dlq == nil {
		if len(opts.Brokers) == 0 {
			return nil, errors.New("at least one broker is required")
		}
		if opts.WorkTopic == "" || opts.DLQTopic == "" {
			return nil, errors.New("work and DLQ topics are required")
		}
		if work == nil {
			work = newWriter(opts.Brokers, opts.WorkTopic)
		}
		if dlq == nil {
			dlq = newWriter(opts.Brokers, opts.DLQTopic)
		}
	}

	return &Producer{
		work:   work,
		dlq:    dlq,
		logger: logger.With("component", "kafka_producer"),
		now:    now,
	}, nil
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// SendModerationRequest publishes a work message for the task. Messages are
// keyed by listing id so all tasks of one listing land on the same partition.
func (p *Producer) SendModerationRequest(ctx context.Context, itemID, taskID int64) error {
	msg := model.WorkMessage{
		ItemID:    itemID,
		TaskID:    taskID,
		Timestamp: p.now().UTC(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal work message: %w", err)
	}

	if err := p.work.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(itemID, 10)),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("publish work message: %w", err)
	}

	p.logger.InfoContext(ctx, "sent moderation request", "item_id", itemID, "task_id", taskID)
	return nil
}

// SendToDLQ publishes a dead-letter message carrying the original work message
// and the terminal error.
func (p *Producer) SendToDLQ(ctx context.Context, msg model.WorkMessage, errMsg string, retryCount int) error {
	dlqMsg := model.DeadLetterMessage{
		OriginalMessage: msg,
		Error:           errMsg,
		Timestamp:       p.now().UTC(),
		RetryCount:      retryCount,
	}
	payload, err := json.Marshal(dlqMsg)
	if err != nil {
		return fmt.Errorf("marshal dead-letter message: %w", err)
	}

	if err := p.dlq.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(msg.ItemID, 10)),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("publish dead-letter message: %w", err)
	}

	p.logger.WarnContext(ctx, "sent message to DLQ",
		"item_id", msg.ItemID, "task_id", msg.TaskID, "retry_count", retryCount, "error", errMsg)
	return nil
}

// Close flushes and closes both writers.
func (p *Producer) Close() error {
	return errors.Join(p.work.Close(), p.dlq.Close())
}
