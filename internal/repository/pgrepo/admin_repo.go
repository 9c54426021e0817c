package pgrepo

import (
	"context"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/pkg/uow"
)

type AdminRepository struct {
	db uow.DBTX
}

func NewAdminRepository(db uow.DBTX) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByUsername ищет администратора по логину. Возвращает ошибку domain.ErrRecordNotFound если запись не найдена.
func (a *AdminRepository) FindByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	var admin domain.Admin
	err := a.db.QueryRow(ctx,
		`SELECT id, created_at, username, encrypted_password FROM admins WHERE username = $1`,
		username,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.Username, &admin.EncryptedPassword)
	if err != nil {
		return nil, convertErr(err, "finding admin by username %s", username)
	}
	return &admin, nil
}
