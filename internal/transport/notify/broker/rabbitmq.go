package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/bookstore/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	rabbitExchangeType  = "topic"
	rabbitDialAttempts  = 5
	rabbitRetryInterval = 2 * time.Second
)

// RabbitPublisher публикует уведомления в topic exchange RabbitMQ. Routing key - вид уведомления.
type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	l        *logrus.Entry
}

// NewRabbitPublisher подключается к RabbitMQ, повторяя попытки пока брокер не станет доступен, и объявляет
// exchange.
func NewRabbitPublisher(ctx context.Context, url, exchange string, l *logrus.Logger) (*RabbitPublisher, error) {
	if _, err := amqp.ParseURI(url); err != nil {
		return nil, fmt.Errorf("parse rabbitmq url: %w", err)
	}
	entry := l.WithFields(logrus.Fields{
		"component": "notify",
		"module":    "rabbitmq",
	})

	conn, err := dialRabbit(ctx, url, entry)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		rabbitExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare rabbitmq exchange %s: %w", exchange, err)
	}

	entry.WithField("exchange", exchange).Info("RabbitMQ publisher initialized")
	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange, l: entry}, nil
}

func dialRabbit(ctx context.Context, url string, l *logrus.Entry) (*amqp.Connection, error) {
	var lastErr error
	for attempt := 1; attempt <= rabbitDialAttempts; attempt++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		l.WithError(err).
			WithField("CurrentAttempt", fmt.Sprintf("#%d / %d", attempt, rabbitDialAttempts)).
			Warn("connect to rabbitmq error, retrying")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to rabbitmq: %w", ctx.Err())
		case <-time.After(rabbitRetryInterval):
		}
	}
	return nil, fmt.Errorf("connect to rabbitmq after %d attempts: %w", rabbitDialAttempts, lastErr)
}

func (p *RabbitPublisher) Publish(ctx context.Context, n domain.Notification) error {
	err := p.ch.PublishWithContext(ctx,
		p.exchange,
		string(n.Kind), // routing key
		false,          // mandatory
		false,          // immediate
		rabbitMessage(n),
	)
	if err != nil {
		return fmt.Errorf("publish notification %s: %w", n.ID, err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.l.WithError(err).Warn("close rabbitmq channel")
	}
	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("close rabbitmq connection: %w", err)
	}
	return nil
}

func rabbitMessage(n domain.Notification) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    n.ID,
		Timestamp:    n.CreatedAt,
		Type:         string(n.Kind),
		Headers:      amqp.Table{"orderId": n.OrderID},
		Body:         n.Payload,
	}
}
