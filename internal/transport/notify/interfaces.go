package notify

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/service"
)

// Publisher доставляет уведомление во внешний приемник.
type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
	Close() error
}

type Servicer interface {
	Unsent(ctx context.Context, limit uint) ([]domain.Notification, error)
	ReportDelivery(ctx context.Context, results []service.DeliveryResult) error
}
