package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sanosuguru/nomado-booking-ledger/internal/config"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/booking"
	"github.com/sanosuguru/nomado-booking-ledger/internal/pkg/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer は予約イベントを Kafka に送信する
// キーは予約番号で、同じ予約のイベントは同じパーティションに順序通り入る
type Producer struct {
	writer messageWriter
	topic  string
}

func NewProducer(cfg *config.KafkaConfig) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{writer: writer, topic: cfg.Topic}
}

// PublishBookingEvent はイベントをJSONで送信する
func (p *Producer) PublishBookingEvent(ctx context.Context, event booking.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("イベントのシリアライズに失敗: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.BookingID),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("Kafkaへの送信に失敗: %w", err)
	}

	logger.Debug("予約イベントを送信しました",
		zap.String("topic", p.topic),
		zap.String("booking_id", event.BookingID),
		zap.String("type", string(event.Type)),
	)
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
