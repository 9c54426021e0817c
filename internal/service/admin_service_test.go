package service

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/repository/repoargs"
	"github.com/fsdevblog/bookstore/internal/service/mocks"
	"github.com/fsdevblog/bookstore/internal/service/tokens"
	"github.com/fsdevblog/bookstore/pkg/uow"
	uowmocks "github.com/fsdevblog/bookstore/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type AdminServiceTestSuite struct {
	suite.Suite
	mockUOW       *uowmocks.MockUOW
	mockAdminRepo *mocks.MockAdminRepository
	mockPsswd     *mocks.MockPasswordHasher
	jwtSecret     []byte
	adminService  *AdminService
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceTestSuite))
}

func (s *AdminServiceTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(mockCtrl)
	s.mockAdminRepo = mocks.NewMockAdminRepository(mockCtrl)
	s.mockPsswd = mocks.NewMockPasswordHasher(mockCtrl)

	s.jwtSecret = []byte("secret")

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.AdminRepoName)).
		Return(s.mockAdminRepo, nil).AnyTimes()

	adminService, err := NewAdminService(s.mockUOW, s.jwtSecret, s.mockPsswd)
	s.Require().NoError(err)
	s.adminService = adminService
}

func (s *AdminServiceTestSuite) TestLogin() {
	username := gofakeit.Username()
	password := gofakeit.Password(true, true, true, false, false, 12)
	validHash := "hash ok"

	savedAdmin := domain.Admin{
		ID:                1,
		CreatedAt:         time.Now(),
		Username:          username,
		EncryptedPassword: validHash,
	}

	argsOk := LoginArgs{Username: username, Password: password}
	argsWrongUsername := LoginArgs{Username: "wrong", Password: password}
	argsWrongPass := LoginArgs{Username: username, Password: "wrong pass"}

	s.mockPsswd.EXPECT().ComparePassword(argsOk.Password, validHash).Return(true)
	s.mockPsswd.EXPECT().ComparePassword(argsWrongPass.Password, validHash).Return(false)

	s.mockAdminRepo.EXPECT().FindByUsername(gomock.Any(), username).Return(&savedAdmin, nil).Times(2)
	s.mockAdminRepo.EXPECT().FindByUsername(gomock.Any(), argsWrongUsername.Username).
		Return(nil, domain.ErrRecordNotFound)

	cases := []struct {
		name    string
		args    LoginArgs
		wantErr error
	}{
		{name: "ok", args: argsOk},
		{name: "wrong username", args: argsWrongUsername, wantErr: domain.ErrRecordNotFound},
		{name: "wrong password", args: argsWrongPass, wantErr: domain.ErrPasswordMissMatch},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			admin, tokenStr, err := s.adminService.Login(s.T().Context(), t.args)
			s.Require().ErrorIs(err, t.wantErr)

			if t.wantErr != nil {
				s.Nil(admin)
				s.Empty(tokenStr)
				return
			}
			s.Equal(savedAdmin.ID, admin.ID)

			claims, tokenErr := tokens.ValidateAdminJWT(tokenStr, s.jwtSecret)
			s.Require().NoError(tokenErr)
			s.Equal(savedAdmin.ID, claims.ID)
			s.Equal(username, claims.Username)
		})
	}
}
