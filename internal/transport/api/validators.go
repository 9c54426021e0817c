package api

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// validatePaymentMethod проверяет, что строка является одним из поддерживаемых способов оплаты.
func validatePaymentMethod(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return domain.PaymentMethodType(str).IsValid()
}

func validateOrderStatus(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return domain.OrderStatusType(str).IsValid()
}

// jsonTagName использует имя поля из json тэга в ошибках валидации.
func jsonTagName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("validator registration: unexpected engine %T", binding.Validator.Engine())
	}
	v.RegisterTagNameFunc(jsonTagName)
	if err := v.RegisterValidation("payment_method", validatePaymentMethod); err != nil {
		return fmt.Errorf("validator registration: %s", err.Error())
	}
	if err := v.RegisterValidation("order_status", validateOrderStatus); err != nil {
		return fmt.Errorf("validator registration: %s", err.Error())
	}
	return nil
}
