package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID        int64
	CreatedAt time.Time
	Name      string
	Email     string
}

type Book struct {
	ID          int64
	Title       string
	AuthorID    int64
	PublisherID int64
	Price       decimal.Decimal
	Stock       int64
}

type Order struct {
	ID         int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CustomerID int64
	Status     OrderStatusType
}

// OrderLineItem строка заказа. UnitPrice - цена книги на момент оформления заказа.
type OrderLineItem struct {
	ID        int64
	OrderID   int64
	BookID    int64
	Quantity  int64
	UnitPrice decimal.Decimal
}

// LineTotal сумма строки заказа.
func (i OrderLineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

type Payment struct {
	ID        int64
	CreatedAt time.Time
	OrderID   int64
	Method    PaymentMethodType
	Amount    decimal.Decimal
}

type AuditLogEntry struct {
	ID            int64
	CreatedAt     time.Time
	OrderID       int64
	PaymentMethod PaymentMethodType
}

// OrderSummary заказ вместе с данными его платежа.
type OrderSummary struct {
	Order
	TotalAmount   decimal.Decimal
	PaymentMethod PaymentMethodType
}

// OrderDetail строка заказа, дополненная данными книги для отображения.
type OrderDetail struct {
	BookID     int64
	Title      string
	AuthorName string
	Quantity   int64
	UnitPrice  decimal.Decimal
	LineTotal  decimal.Decimal
}

type Admin struct {
	ID                int64
	CreatedAt         time.Time
	Username          string
	EncryptedPassword string
}

// Notification сообщение outbox, которое будет отправлено во внешний приемник.
type Notification struct {
	ID        string
	CreatedAt time.Time
	SentAt    *time.Time
	OrderID   int64
	Kind      NotificationKindType
	Payload   []byte
	Attempts  int32
}
