package pgrepo

import (
	"context"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/pkg/uow"
)

type CustomerRepository struct {
	db uow.DBTX
}

func NewCustomerRepository(db uow.DBTX) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// FindByID возвращает покупателя или ошибку domain.ErrRecordNotFound.
func (c *CustomerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var customer domain.Customer
	err := c.db.QueryRow(ctx,
		`SELECT id, created_at, name, email FROM customers WHERE id = $1`,
		id,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.Name, &customer.Email)
	if err != nil {
		return nil, convertErr(err, "finding customer %d", id)
	}
	return &customer, nil
}
