package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	notifyBatchTimeout = 10 * time.Millisecond
	notifyBatchSize    = 100
)

// KafkaNotifier publishes order state changes to a shared orders topic.
// Delivery is at-most-once and fire-and-forget: the caller treats publish
// failures as log-only and never reverts the committed state change.
type KafkaNotifier struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaNotifier creates a notifier writing to the given broker and topic
func NewKafkaNotifier(broker, topic string, logger *zap.Logger) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           notifyBatchTimeout,
		BatchSize:              notifyBatchSize,
		AllowAutoTopicCreation: true,
	}
	return &KafkaNotifier{writer: writer, logger: logger}
}

// PublishOrderStateChanged publishes one state-change payload keyed by order
// ID so per-order ordering is preserved within a partition.
func (n *KafkaNotifier) PublishOrderStateChanged(ctx context.Context, change OrderStateChanged) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to encode order state change: %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(change.OrderID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish order state change for %s: %w", change.OrderID, err)
	}

	n.logger.Debug("published order state change",
		zap.String("order_id", change.OrderID),
		zap.String("new_state", change.NewState))
	return nil
}

// Close flushes and closes the underlying writer
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// LoggingNotifier is a notifier for deployments without a broker: state
// changes are written to the log only.
type LoggingNotifier struct {
	logger *zap.Logger
}

func NewLoggingNotifier(logger *zap.Logger) *LoggingNotifier {
	return &LoggingNotifier{logger: logger}
}

func (n *LoggingNotifier) PublishOrderStateChanged(ctx context.Context, change OrderStateChanged) error {
	n.logger.Info("order state changed",
		zap.String("order_id", change.OrderID),
		zap.String("order_number", change.OrderNumber),
		zap.String("new_state", change.NewState),
		zap.Time("timestamp", change.Timestamp))
	return nil
}
