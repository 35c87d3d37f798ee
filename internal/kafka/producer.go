package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// Reservation lifecycle event types.
const (
	EventReservationCreated   = "reservation_created"
	EventPaymentConfirmed     = "payment_confirmed"
	EventReservationCancelled = "reservation_cancelled"
	EventVehicleExited        = "vehicle_exited"
)

type ReservationEvent struct {
	Type       string          `json:"type"`
	ExternalID string          `json:"external_id"`
	Slot       string          `json:"slot"`
	Plate      string          `json:"plate"`
	Email      string          `json:"email"`
	Vehicle    string          `json:"vehicle"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	Reason     string          `json:"reason,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message to kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
