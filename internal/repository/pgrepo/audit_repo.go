package pgrepo

import (
	"context"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/pkg/uow"
)

type AuditLogRepository struct {
	db uow.DBTX
}

func NewAuditLogRepository(db uow.DBTX) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Append добавляет запись журнала для заказа. Журнал только дополняется, запись на заказ одна.
func (a *AuditLogRepository) Append(
	ctx context.Context,
	orderID int64,
	method domain.PaymentMethodType,
) (*domain.AuditLogEntry, error) {
	entry := domain.AuditLogEntry{
		OrderID:       orderID,
		PaymentMethod: method,
	}
	err := a.db.QueryRow(ctx,
		`INSERT INTO audit_log (order_id, payment_method)
		 VALUES ($1, $2::payment_method_type)
		 RETURNING id, created_at`,
		orderID, string(method),
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, convertErr(err, "appending audit log entry for order %d", orderID)
	}
	return &entry, nil
}
