package outbox

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer publishes claimed outbox batches. One shared writer serves
// every topic; records are routed by the topic stamped on each message, and
// the hash balancer keeps a user's workout events on one partition so the
// consumer sees them in order.
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer against the given brokers.
func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// WriteMessages publishes the batch to the given topic.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	stampTopic(topic, msgs)
	return p.writer.WriteMessages(ctx, msgs...)
}

func stampTopic(topic string, msgs []kafka.Message) {
	for i := range msgs {
		msgs[i].Topic = topic
	}
}

// Close flushes and releases the writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
