package service

import (
	"errors"
	"fmt"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/repository/repoargs"
	"github.com/fsdevblog/bookstore/pkg/uow"
)

// wrapTxErr приводит ошибки открытия и фиксации транзакции к domain.ErrStorageUnavailable. Остальные ошибки
// возвращаются без изменений: их тип уже определил репозиторий.
func wrapTxErr(err error) error {
	if errors.Is(err, uow.ErrBeginTx) || errors.Is(err, uow.ErrCommitTx) {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return err
}

// txRepo достает из транзакции репозиторий name с типом T.
func txRepo[T any](tx uow.TX, name repoargs.RepositoryName) (T, error) {
	return uow.GetAs[T](tx, uow.RepositoryName(name)) //nolint:wrapcheck
}
