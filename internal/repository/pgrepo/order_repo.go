package pgrepo

import (
	"context"
	"fmt"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/repository/repoargs"
	"github.com/fsdevblog/bookstore/pkg/uow"
	"github.com/jackc/pgx/v5"
)

type OrderRepository struct {
	db uow.DBTX
}

func NewOrderRepository(db uow.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, created_at, updated_at, customer_id, status::text`

// CreateOrder создает заказ покупателя в статусе domain.OrderStatusPending.
func (o *OrderRepository) CreateOrder(ctx context.Context, customerID int64) (*domain.Order, error) {
	row := o.db.QueryRow(ctx,
		`INSERT INTO orders (customer_id, status) VALUES ($1, 'Pending') RETURNING `+orderColumns,
		customerID,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating order for customer %d", customerID)
	}
	return order, nil
}

func (o *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := scanOrder(o.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, convertErr(err, "finding order %d", id)
	}
	return order, nil
}

// FindByIDForUpdate как FindByID, но блокирует строку заказа до конца транзакции.
func (o *OrderRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := scanOrder(o.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, convertErr(err, "finding order %d for update", id)
	}
	return order, nil
}

func (o *OrderRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.OrderStatusType,
) (*domain.Order, error) {
	row := o.db.QueryRow(ctx,
		`UPDATE orders SET status = $2::order_status_type, updated_at = NOW() WHERE id = $1 RETURNING `+orderColumns,
		id, string(status),
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "updating order %d status to %s", id, status)
	}
	return order, nil
}

// CreateLineItem добавляет строку заказа. Строки заказа после создания не изменяются.
func (o *OrderRepository) CreateLineItem(
	ctx context.Context,
	args repoargs.CreateLineItem,
) (*domain.OrderLineItem, error) {
	item := domain.OrderLineItem{
		OrderID:   args.OrderID,
		BookID:    args.BookID,
		Quantity:  args.Quantity,
		UnitPrice: args.UnitPrice,
	}
	err := o.db.QueryRow(ctx,
		`INSERT INTO order_details (order_id, book_id, quantity, unit_price) VALUES ($1, $2, $3, $4) RETURNING id`,
		args.OrderID, args.BookID, args.Quantity, args.UnitPrice,
	).Scan(&item.ID)
	if err != nil {
		return nil, convertErr(err, "creating line item for order %d book %d", args.OrderID, args.BookID)
	}
	return &item, nil
}

func (o *OrderRepository) GetLineItems(ctx context.Context, orderID int64) ([]domain.OrderLineItem, error) {
	rows, err := o.db.Query(ctx,
		`SELECT id, order_id, book_id, quantity, unit_price FROM order_details WHERE order_id = $1 ORDER BY book_id`,
		orderID,
	)
	if err != nil {
		return nil, convertErr(err, "getting line items of order %d", orderID)
	}
	items, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OrderLineItem, error) {
		var item domain.OrderLineItem
		scanErr := row.Scan(&item.ID, &item.OrderID, &item.BookID, &item.Quantity, &item.UnitPrice)
		return item, scanErr
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "scanning line items of order %d", orderID)
	}
	return items, nil
}

// GetDetails возвращает строки заказа с названием книги и именем автора. Пустой результат не является ошибкой.
func (o *OrderRepository) GetDetails(ctx context.Context, orderID int64) ([]domain.OrderDetail, error) {
	rows, err := o.db.Query(ctx, `
		SELECT d.book_id, b.title, a.name, d.quantity, d.unit_price, d.unit_price * d.quantity
		FROM order_details d
		         JOIN books b ON b.id = d.book_id
		         JOIN authors a ON a.id = b.author_id
		WHERE d.order_id = $1
		ORDER BY d.id`,
		orderID,
	)
	if err != nil {
		return nil, convertErr(err, "getting details of order %d", orderID)
	}
	details, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OrderDetail, error) {
		var d domain.OrderDetail
		scanErr := row.Scan(&d.BookID, &d.Title, &d.AuthorName, &d.Quantity, &d.UnitPrice, &d.LineTotal)
		return d, scanErr
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "scanning details of order %d", orderID)
	}
	return details, nil
}

// GetSummary возвращает заказ вместе с суммой и способом оплаты.
func (o *OrderRepository) GetSummary(ctx context.Context, orderID int64) (*domain.OrderSummary, error) {
	var summary domain.OrderSummary
	var status, method string
	err := o.db.QueryRow(ctx, `
		SELECT o.id, o.created_at, o.updated_at, o.customer_id, o.status::text, p.amount, p.method::text
		FROM orders o
		         JOIN payments p ON p.order_id = o.id
		WHERE o.id = $1`,
		orderID,
	).Scan(
		&summary.ID,
		&summary.CreatedAt,
		&summary.UpdatedAt,
		&summary.CustomerID,
		&status,
		&summary.TotalAmount,
		&method,
	)
	if err != nil {
		return nil, convertErr(err, "getting summary of order %d", orderID)
	}
	summary.Status = domain.OrderStatusType(status)
	summary.PaymentMethod = domain.PaymentMethodType(method)
	return &summary, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	var status string
	if err := row.Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt, &order.CustomerID, &status); err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	order.Status = domain.OrderStatusType(status)
	return &order, nil
}
