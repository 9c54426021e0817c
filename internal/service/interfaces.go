package service

import (
	"context"
	"time"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/repository/repoargs"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password string, hashedPassword string) bool
}

type CustomerRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Customer, error)
}

type BookRepository interface {
	ReserveStock(ctx context.Context, bookID, quantity int64) (decimal.Decimal, error)
	ReleaseStock(ctx context.Context, bookID, quantity int64) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, customerID int64) (*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatusType) (*domain.Order, error)
	CreateLineItem(ctx context.Context, args repoargs.CreateLineItem) (*domain.OrderLineItem, error)
	GetLineItems(ctx context.Context, orderID int64) ([]domain.OrderLineItem, error)
	GetDetails(ctx context.Context, orderID int64) ([]domain.OrderDetail, error)
	GetSummary(ctx context.Context, orderID int64) (*domain.OrderSummary, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, args repoargs.CreatePayment) (*domain.Payment, error)
}

type AuditLogRepository interface {
	Append(ctx context.Context, orderID int64, method domain.PaymentMethodType) (*domain.AuditLogEntry, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, args repoargs.CreateNotification) error
	ClaimUnsent(ctx context.Context, limit, maxAttempts int32, lease time.Duration) ([]domain.Notification, error)
	MarkSent(ctx context.Context, ids []string) error
	IncrementAttempts(ctx context.Context, ids []string) error
}

type AdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Admin, error)
}
