package pgrepo

import (
	"context"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/repository/repoargs"
	"github.com/fsdevblog/bookstore/pkg/uow"
)

type PaymentRepository struct {
	db uow.DBTX
}

func NewPaymentRepository(db uow.DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create записывает платеж по заказу. Повторный платеж по тому же заказу вернет domain.ErrDuplicateKey.
func (p *PaymentRepository) Create(ctx context.Context, args repoargs.CreatePayment) (*domain.Payment, error) {
	payment := domain.Payment{
		OrderID: args.OrderID,
		Method:  args.Method,
	}
	err := p.db.QueryRow(ctx,
		`INSERT INTO payments (order_id, method, amount)
		 VALUES ($1, $2::payment_method_type, $3)
		 RETURNING id, created_at, amount`,
		args.OrderID, string(args.Method), args.Amount,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.Amount)
	if err != nil {
		return nil, convertErr(err, "creating payment for order %d", args.OrderID)
	}
	return &payment, nil
}
