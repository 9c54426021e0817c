package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/repository/repoargs"
	"github.com/fsdevblog/bookstore/internal/service/tokens"
	"github.com/fsdevblog/bookstore/pkg/uow"
)

const AdminTokenExpire = 12 * time.Hour

type AdminService struct {
	adminRepo      AdminRepository
	psswd          PasswordHasher
	jwtTokenSecret []byte
}

func NewAdminService(u uow.UOW, jwtTokenSecret []byte, psswd PasswordHasher) (*AdminService, error) {
	adminRepo, err := uow.GetRepositoryAs[AdminRepository](u, uow.RepositoryName(repoargs.AdminRepoName))
	if err != nil {
		return nil, err
	}
	return &AdminService{
		adminRepo:      adminRepo,
		psswd:          psswd,
		jwtTokenSecret: jwtTokenSecret,
	}, nil
}

type LoginArgs struct {
	Username string
	Password string
}

// Login проверяет логин и пароль администратора и выдает jwt токен. Возвращает найденного
// администратора, токен и ошибку: domain.ErrRecordNotFound если логина нет, domain.ErrPasswordMissMatch
// если пароль не подошел.
func (s *AdminService) Login(ctx context.Context, args LoginArgs) (*domain.Admin, string, error) {
	admin, err := s.adminRepo.FindByUsername(ctx, args.Username)
	if err != nil {
		return nil, "", fmt.Errorf("admin login: %w", err)
	}
	if !s.psswd.ComparePassword(args.Password, admin.EncryptedPassword) {
		return nil, "", fmt.Errorf("admin login: %w", domain.ErrPasswordMissMatch)
	}

	token, tokenErr := tokens.GenerateAdminJWT(admin.ID, admin.Username, AdminTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		return nil, "", fmt.Errorf("admin login: %w", tokenErr)
	}
	return admin, token, nil
}
