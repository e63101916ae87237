package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"shortly/internal/entity"
	"shortly/internal/worker"
)

// Consumer reads click events back off Kafka and feeds them into the
// same channel collector the batch worker drains, so both the in-process
// and the brokered pipeline share one persistence path.
type Consumer struct {
	reader    *kafka.Reader
	collector *worker.ChannelCollector
}

func NewConsumer(brokers []string, topic, groupID string, collector *worker.ChannelCollector) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		collector: collector,
	}
}

func (c *Consumer) Run(ctx context.Context) {
	logrus.Info("Kafka click consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logrus.Info("Kafka click consumer stopped")
				return
			}
			logrus.Errorf("Kafka read failed: %v", err)
			continue
		}

		var click entity.Click
		if err := json.Unmarshal(msg.Value, &click); err != nil {
			logrus.Errorf("Failed to unmarshal click event: %v", err)
			continue
		}
		c.collector.Collect(click)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		logrus.Errorf("Failed to close Kafka reader: %v", err)
	}
}
