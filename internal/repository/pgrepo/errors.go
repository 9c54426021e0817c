package pgrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	serializationFailCode   = "40001"
	deadlockDetectedCode    = "40P01"
	tooManyConnectionsCode  = "53300"
	adminShutdownCode       = "57P01"
	cannotConnectNowCode    = "57P03"
	connectionExceptionCls  = "08"
)

// convertErr преобразует ошибку к стандартному виду для слоя репозитория.
// Добавляет форматированное сообщение контекста, тип бизнес-ошибки и оригинальное сообщение.
// Особенности:
//   - Для ошибок отсутствия данных (pgx.ErrNoRows) возвращает ErrRecordNotFound из domain.
//   - Нарушение уникальности - ErrDuplicateKey, внешнего ключа, check-ограничения, сериализации и дедлок - ErrConflict.
//   - Проблемы соединения и таймауты - ErrStorageUnavailable.
//   - Все остальные ошибки возвращаются как ErrUnknown с оригинальным сообщением.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errKind(err), err.Error())
}

func errKind(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolationCode:
			return domain.ErrDuplicateKey
		case pgErr.Code == foreignKeyViolationCode,
			pgErr.Code == checkViolationCode,
			pgErr.Code == serializationFailCode,
			pgErr.Code == deadlockDetectedCode:
			return domain.ErrConflict
		case pgErr.Code == tooManyConnectionsCode,
			pgErr.Code == adminShutdownCode,
			pgErr.Code == cannotConnectNowCode,
			strings.HasPrefix(pgErr.Code, connectionExceptionCls):
			return domain.ErrStorageUnavailable
		}
		return domain.ErrUnknown
	}

	if isUnavailableErr(err) {
		return domain.ErrStorageUnavailable
	}
	return domain.ErrUnknown
}

// isUnavailableErr ошибки уровня соединения, не дошедшие до сервера.
func isUnavailableErr(err error) bool {
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr) ||
		pgconn.Timeout(err) ||
		errors.Is(err, context.DeadlineExceeded)
}
