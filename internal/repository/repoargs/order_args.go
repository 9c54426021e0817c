package repoargs

import (
	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateLineItem struct {
	OrderID   int64
	BookID    int64
	Quantity  int64
	UnitPrice decimal.Decimal
}

type CreatePayment struct {
	OrderID int64
	Method  domain.PaymentMethodType
	Amount  decimal.Decimal
}
