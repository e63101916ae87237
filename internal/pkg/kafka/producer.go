package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"shortly/internal/entity"
)

// Producer publishes click events to Kafka. It satisfies the worker
// Collector contract: writes are async and failures are only logged, so
// the redirect path never waits on the broker.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		// Async writes report their outcome here, not from
		// WriteMessages.
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logrus.Errorf("Failed to deliver %d click event(s) to Kafka: %v", len(messages), err)
			}
		},
	}

	logrus.Infof("Kafka click producer configured for brokers: %v", brokers)

	if len(brokers) == 0 {
		logrus.Warn("Kafka enabled without brokers, skipping connection check")
		return &Producer{writer: writer}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		logrus.Warnf("Kafka connection check failed: %v", err)
		return &Producer{writer: writer}
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logrus.Warnf("Could not create topic (might already exist): %v", err)
	}

	return &Producer{writer: writer}
}

func (p *Producer) Collect(click entity.Click) {
	data, err := json.Marshal(click)
	if err != nil {
		logrus.Errorf("Failed to marshal click event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(click.LinkID),
		Value: data,
		Time:  click.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logrus.Errorf("Failed to write click event to Kafka: %v", err)
	}
}

func (p *Producer) Close() {
	if err := p.writer.Close(); err != nil {
		logrus.Errorf("Failed to close Kafka writer: %v", err)
	}
}
