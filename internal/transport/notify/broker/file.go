// Package broker содержит приемники уведомлений: файл, Kafka и RabbitMQ.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsdevblog/bookstore/internal/domain"
)

// FilePublisher дописывает уведомления в файл построчно в формате JSON.
type FilePublisher struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

type fileRecord struct {
	ID        string                      `json:"id"`
	CreatedAt time.Time                   `json:"createdAt"`
	OrderID   int64                       `json:"orderId"`
	Kind      domain.NotificationKindType `json:"kind"`
	Payload   json.RawMessage             `json:"payload"`
}

func NewFilePublisher(path string) (*FilePublisher, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec,mnd
	if err != nil {
		return nil, fmt.Errorf("open notification file: %w", err)
	}
	return &FilePublisher{f: f, enc: json.NewEncoder(f)}, nil
}

func (p *FilePublisher) Publish(ctx context.Context, n domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.enc.Encode(fileRecord{
		ID:        n.ID,
		CreatedAt: n.CreatedAt,
		OrderID:   n.OrderID,
		Kind:      n.Kind,
		Payload:   n.Payload,
	}); err != nil {
		return fmt.Errorf("write notification %s: %w", n.ID, err)
	}
	return nil
}

func (p *FilePublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.f.Close() //nolint:wrapcheck
}
