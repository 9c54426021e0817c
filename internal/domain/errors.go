package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrRecordNotFound     = errors.New("record not found")
	ErrPasswordMissMatch  = errors.New("password mismatch")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrConflict           = errors.New("data conflict")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrUnknown            = errors.New("unknown error")

	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// NewValidationError возвращает ошибку валидации поля field. Ошибка совместима с errors.Is(err, ErrValidation).
func NewValidationError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}

// InsufficientStockError книги BookID на складе меньше, чем запрошено.
type InsufficientStockError struct {
	BookID    int64
	Requested int64
}

func NewInsufficientStockError(bookID, requested int64) error {
	return &InsufficientStockError{BookID: bookID, Requested: requested}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for book %d: requested %d", e.BookID, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

type StatusTransitionError struct {
	From OrderStatusType
	To   OrderStatusType
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("order status can't be changed from %s to %s", e.From, e.To)
}

func (e *StatusTransitionError) Unwrap() error {
	return ErrInvalidStatusTransition
}
