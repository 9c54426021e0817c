package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var errInvalidOrderID = errors.New("order id must be a positive integer")

// orderIDParam читает id заказа из пути. В случае ошибки прерывает запрос с 400 и возвращает false.
func orderIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		_ = c.AbortWithError(http.StatusBadRequest, errInvalidOrderID).SetType(gin.ErrorTypePublic)
		return 0, false
	}
	return id, true
}

// abortWithBindError прерывает запрос с 400. Ошибки валидатора отдаются клиенту списком полей.
func abortWithBindError(c *gin.Context, err error) {
	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		fields := make([]string, len(valErrs))
		for i, fe := range valErrs {
			// первый сегмент - имя структуры параметров.
			_, ns, _ := strings.Cut(fe.Namespace(), ".")
			fields[i] = fmt.Sprintf("%s failed on '%s'", ns, fe.Tag())
		}
		_ = c.AbortWithError(http.StatusBadRequest, errors.New(strings.Join(fields, "; "))).
			SetType(gin.ErrorTypePublic)
		return
	}
	_ = c.AbortWithError(http.StatusBadRequest, err).SetType(gin.ErrorTypeBind)
}

// abortWithServiceError переводит ошибку сервисного слоя в http статус.
func abortWithServiceError(c *gin.Context, err error) {
	var stockErr *domain.InsufficientStockError
	var transitionErr *domain.StatusTransitionError

	switch {
	case errors.As(err, &stockErr):
		_ = c.AbortWithError(http.StatusBadRequest, stockErr).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrValidation):
		_ = c.AbortWithError(http.StatusBadRequest, err).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrRecordNotFound):
		_ = c.AbortWithError(http.StatusNotFound, err).SetType(gin.ErrorTypePrivate)
	case errors.As(err, &transitionErr):
		_ = c.AbortWithError(http.StatusConflict, transitionErr).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicateKey):
		_ = c.AbortWithError(http.StatusConflict, err).SetType(gin.ErrorTypePrivate)
	case errors.Is(err, domain.ErrStorageUnavailable), errors.Is(err, context.DeadlineExceeded):
		_ = c.AbortWithError(http.StatusServiceUnavailable, err).SetType(gin.ErrorTypePrivate)
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}
