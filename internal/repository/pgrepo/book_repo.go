package pgrepo

import (
	"context"
	"errors"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type BookRepository struct {
	db uow.DBTX
}

func NewBookRepository(db uow.DBTX) *BookRepository {
	return &BookRepository{db: db}
}

const reserveStockSQL = `
UPDATE books
SET stock      = stock - $2,
    updated_at = NOW()
WHERE id = $1
  AND stock >= $2
RETURNING price`

// ReserveStock атомарно списывает quantity единиц книги bookID со склада, если их достаточно,
// и возвращает цену книги на момент списания. Проверка остатка и списание выполняются одним условным UPDATE,
// поэтому два конкурентных заказа не могут зарезервировать одну и ту же последнюю единицу.
//
// Возвращает domain.ErrRecordNotFound если книги нет и *domain.InsufficientStockError если остатка не хватает.
func (b *BookRepository) ReserveStock(ctx context.Context, bookID, quantity int64) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := b.db.QueryRow(ctx, reserveStockSQL, bookID, quantity).Scan(&price)
	if err == nil {
		return price, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, convertErr(err, "reserving %d units of book %d", quantity, bookID)
	}

	// UPDATE не затронул строк: либо книги нет, либо остатка недостаточно.
	exists, existsErr := b.exists(ctx, bookID)
	if existsErr != nil {
		return decimal.Zero, existsErr
	}
	if !exists {
		return decimal.Zero, convertErr(pgx.ErrNoRows, "reserving book %d", bookID)
	}
	return decimal.Zero, domain.NewInsufficientStockError(bookID, quantity)
}

// ReleaseStock возвращает quantity единиц книги на склад.
func (b *BookRepository) ReleaseStock(ctx context.Context, bookID, quantity int64) error {
	tag, err := b.db.Exec(ctx,
		`UPDATE books SET stock = stock + $2, updated_at = NOW() WHERE id = $1`,
		bookID, quantity,
	)
	if err != nil {
		return convertErr(err, "releasing %d units of book %d", quantity, bookID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "releasing book %d", bookID)
	}
	return nil
}

func (b *BookRepository) FindByID(ctx context.Context, bookID int64) (*domain.Book, error) {
	var book domain.Book
	var publisherID *int64
	err := b.db.QueryRow(ctx,
		`SELECT id, title, author_id, publisher_id, price, stock FROM books WHERE id = $1`,
		bookID,
	).Scan(&book.ID, &book.Title, &book.AuthorID, &publisherID, &book.Price, &book.Stock)
	if err != nil {
		return nil, convertErr(err, "finding book %d", bookID)
	}
	if publisherID != nil {
		book.PublisherID = *publisherID
	}
	return &book, nil
}

func (b *BookRepository) exists(ctx context.Context, bookID int64) (bool, error) {
	var exists bool
	if err := b.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, bookID).Scan(&exists); err != nil {
		return false, convertErr(err, "checking book %d existence", bookID)
	}
	return exists, nil
}
