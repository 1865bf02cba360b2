package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/letsco/splithub/db/models"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes settlement events to a kafka topic, keyed by charge id so
// the events of one charge stay ordered within a partition.
type Publisher struct {
	writer messageWriter
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *Publisher) PublishSettlement(ctx context.Context, event *models.SettlementEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(event.ChargeID),
			Value: data,
			Time:  event.OccurredAt,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(event.ID)},
			},
		},
	)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
