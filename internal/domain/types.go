package domain

import "slices"

type OrderStatusType string

const (
	OrderStatusPending   OrderStatusType = "Pending"
	OrderStatusCompleted OrderStatusType = "Completed"
	OrderStatusCancelled OrderStatusType = "Cancelled"
)

// orderTransitions допустимые переходы статусов заказа. Из финальных статусов переходов нет.
var orderTransitions = map[OrderStatusType][]OrderStatusType{
	OrderStatusPending: {OrderStatusCompleted, OrderStatusCancelled},
}

// IsValid проверяет, что статус входит в перечисление.
func (s OrderStatusType) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo сообщает, разрешен ли переход из текущего статуса в next.
func (s OrderStatusType) CanTransitionTo(next OrderStatusType) bool {
	return slices.Contains(orderTransitions[s], next)
}

type PaymentMethodType string

const (
	PaymentMethodSadaPay   PaymentMethodType = "SadaPay"
	PaymentMethodEasyPaisa PaymentMethodType = "EasyPaisa"
	PaymentMethodJazzCash  PaymentMethodType = "JazzCash"
	PaymentMethodCard      PaymentMethodType = "Card"
	PaymentMethodCash      PaymentMethodType = "Cash"
)

func (m PaymentMethodType) IsValid() bool {
	switch m {
	case PaymentMethodSadaPay, PaymentMethodEasyPaisa, PaymentMethodJazzCash, PaymentMethodCard, PaymentMethodCash:
		return true
	default:
		return false
	}
}

type NotificationKindType string

const (
	NotificationOrderPlaced        NotificationKindType = "order.placed"
	NotificationOrderStatusChanged NotificationKindType = "order.status_changed"
)
