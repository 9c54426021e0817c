package broker

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

var ErrNoBrokers = errors.New("kafka brokers are not set")

// KafkaPublisher публикует уведомления в топик Kafka. Ключ сообщения - id заказа, поэтому события
// одного заказа попадают в одну партицию и читаются по порядку.
type KafkaPublisher struct {
	writer *kafka.Writer
	l      *logrus.Entry
}

func NewKafkaPublisher(brokers []string, topic string, l *logrus.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if topic == "" {
		return nil, errors.New("kafka topic is not set")
	}

	entry := l.WithFields(logrus.Fields{
		"component": "notify",
		"module":    "kafka",
	})
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Logger:       kafka.LoggerFunc(entry.Debugf),
		ErrorLogger:  kafka.LoggerFunc(entry.Errorf),
	}

	entry.WithField("brokers", brokers).WithField("topic", topic).Info("Kafka publisher initialized")
	return &KafkaPublisher{writer: writer, l: entry}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, n domain.Notification) error {
	err := p.writer.WriteMessages(ctx, kafkaMessage(n))
	if err != nil {
		return fmt.Errorf("produce notification %s: %w", n.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}
	p.l.Info("Kafka publisher closed")
	return nil
}

func kafkaMessage(n domain.Notification) kafka.Message {
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(n.OrderID, 10)),
		Value: n.Payload,
		Time:  n.CreatedAt,
		Headers: []kafka.Header{
			{Key: "id", Value: []byte(n.ID)},
			{Key: "kind", Value: []byte(n.Kind)},
		},
	}
}
