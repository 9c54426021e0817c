package service

import (
	"fmt"

	"github.com/fsdevblog/bookstore/internal/service/psswd"
	"github.com/fsdevblog/bookstore/pkg/uow"
)

type AppServices struct {
	OrderService        *OrderService
	AdminService        *AdminService
	NotificationService *NotificationService
}

type FactoryArgs struct {
	AdminJWTSecret      []byte
	MaxDeliveryAttempts int32
}

func Factory(unitOfWork uow.UOW, args FactoryArgs) (*AppServices, error) {
	orderService, orderServiceErr := NewOrderService(unitOfWork)
	if orderServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", orderServiceErr.Error())
	}

	adminService, adminServiceErr := NewAdminService(unitOfWork, args.AdminJWTSecret, psswd.PasswordHash(""))
	if adminServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", adminServiceErr.Error())
	}

	notificationService, notificationServiceErr := NewNotificationService(unitOfWork, args.MaxDeliveryAttempts)
	if notificationServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", notificationServiceErr.Error())
	}

	return &AppServices{
		OrderService:        orderService,
		AdminService:        adminService,
		NotificationService: notificationService,
	}, nil
}
