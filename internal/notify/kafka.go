package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// Writer is the subset of kafka.Writer the dispatcher needs; tests inject a
// fake.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDispatcher publishes notifications to a Kafka topic, keyed by
// registration id so all outcomes for one registration land in one
// partition.
type KafkaDispatcher struct {
	writer Writer
}

// NewKafkaDispatcher creates a dispatcher writing to the given broker and
// topic.
func NewKafkaDispatcher(brokerAddr, topic string) *KafkaDispatcher {
	return &KafkaDispatcher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokerAddr),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// NewKafkaDispatcherWithWriter injects a Writer. Used by tests.
func NewKafkaDispatcherWithWriter(w Writer) *KafkaDispatcher {
	return &KafkaDispatcher{writer: w}
}

// Dispatch marshals the notification to JSON and writes one Kafka message.
func (d *KafkaDispatcher) Dispatch(ctx context.Context, n Notification) error {
	value, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(n.RegistrationID),
		Value: value,
	}
	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	return nil
}

// Close closes the underlying writer.
func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
