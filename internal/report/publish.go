package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"worklog-bot/internal/flow"
	"worklog-bot/internal/logger"
)

// Publisher pushes serialized records to downstream consumers.
type Publisher interface {
	Publish(body []byte) error
	Close() error
}

// AMQPPublisher fans records out on a durable fanout exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewAMQPPublisher connects to the broker and declares the exchange.
func NewAMQPPublisher(amqpURL, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("report: failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("report: failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("report: failed to declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(body []byte) error {
	return p.channel.Publish(
		p.exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// recordEnvelope is the published JSON shape. Field names match the
// reports table columns.
type recordEnvelope struct {
	UserID     string    `json:"user_id"`
	Work       string    `json:"work"`
	Shift      string    `json:"shift"`
	Hours      string    `json:"hours"`
	RecordedAt time.Time `json:"recorded_at"`
}

// BroadcastRecorder decorates a Recorder so every successful save is
// also published to the exchange. Publishing is best-effort: a broker
// failure is logged and never undoes or fails the save.
type BroadcastRecorder struct {
	next Recorder
	pub  Publisher
}

func NewBroadcastRecorder(next Recorder, pub Publisher) *BroadcastRecorder {
	return &BroadcastRecorder{next: next, pub: pub}
}

func (b *BroadcastRecorder) Save(ctx context.Context, rec flow.CompletedRecord) error {
	if err := b.next.Save(ctx, rec); err != nil {
		return err
	}

	body, err := json.Marshal(recordEnvelope{
		UserID:     rec.UserID,
		Work:       rec.Work,
		Shift:      rec.Shift,
		Hours:      rec.Hours,
		RecordedAt: rec.RecordedAt,
	})
	if err != nil {
		logger.Error("record marshal for publish failed", map[string]any{
			"user":  rec.UserID,
			"error": err.Error(),
		})
		return nil
	}

	if err := b.pub.Publish(body); err != nil {
		logger.Error("record publish failed", map[string]any{
			"user":  rec.UserID,
			"error": err.Error(),
		})
	}
	return nil
}

func (b *BroadcastRecorder) Recent(ctx context.Context, userID string, n int) ([]flow.CompletedRecord, error) {
	return b.next.Recent(ctx, userID, n)
}
