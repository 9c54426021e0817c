package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/service"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService AdminServicer
}

func NewAdminHandler(adminService AdminServicer) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

type AdminLoginParams struct {
	Username string `binding:"required,min=1,max=64"  json:"login"`
	Password string `binding:"required,min=6,max=255" json:"password"`
}

type AdminResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"login"`
}

// Login POST AdminLoginRoute. Аутентификация администратора по паре логин/пароль.
func (h *AdminHandler) Login(c *gin.Context) {
	var params AdminLoginParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	admin, token, err := h.adminService.Login(ctx, service.LoginArgs{
		Username: params.Username,
		Password: params.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) || errors.Is(err, domain.ErrPasswordMissMatch) {
			_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		abortWithServiceError(c, err)
		return
	}

	c.Header("Authorization", "Bearer "+token)
	c.JSON(http.StatusOK, gin.H{"admin": AdminResponse{ID: admin.ID, Username: admin.Username}})
}
