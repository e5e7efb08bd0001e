package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"holistica/internal/model"
)

// HistoryPublisher sends answered questions to the history queue so the ask
// path never blocks on history bookkeeping.
type HistoryPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewHistoryPublisher(conn *amqp.Connection, queueName string) *HistoryPublisher {
	return &HistoryPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *HistoryPublisher) Publish(ctx context.Context, record model.SearchRecord) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal search record failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish search record failed: %w", err)
	}
	return nil
}
