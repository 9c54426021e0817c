package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/service"
)

type OrderServicer interface {
	PlaceOrder(ctx context.Context, args service.PlaceOrderArgs) (*service.PlacedOrder, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatusType) (*domain.Order, error)
	GetDetails(ctx context.Context, orderID int64) ([]domain.OrderDetail, error)
	GetOrder(ctx context.Context, orderID int64) (*domain.OrderSummary, error)
}

// AdminServicer интерфейс исключительно для моков.
type AdminServicer interface {
	Login(ctx context.Context, args service.LoginArgs) (*domain.Admin, string, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}
