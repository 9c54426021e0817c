package api

import (
	"fmt"
	"time"

	"github.com/fsdevblog/bookstore/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 5 * time.Second
)

const (
	OrdersRoute       = "/orders"
	OrderRoute        = "/orders/:id"
	OrderDetailsRoute = "/orders/:id/details"
	OrderStatusRoute  = "/orders/:id/status"
	AdminLoginRoute   = "/admins/login"
	PingRoute         = "/ping"
)

type RouterArgs struct {
	Logger       *logrus.Logger
	OrderService OrderServicer
	AdminService AdminServicer
	Pinger       Pinger
	// AdminJWTSecret если задан, смена статуса заказа доступна только администратору.
	AdminJWTSecret []byte
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	ordersHandler := NewOrdersHandler(args.OrderService)

	r.POST(OrdersRoute, ordersHandler.Create)
	r.GET(OrderRoute, ordersHandler.Show)
	r.GET(OrderDetailsRoute, ordersHandler.Details)

	statusHandlers := []gin.HandlerFunc{ordersHandler.UpdateStatus}
	if len(args.AdminJWTSecret) > 0 {
		statusHandlers = append([]gin.HandlerFunc{middlewares.AdminRequired(args.AdminJWTSecret)}, statusHandlers...)
	}
	r.PUT(OrderStatusRoute, statusHandlers...)

	if args.AdminService != nil {
		adminHandler := NewAdminHandler(args.AdminService)
		r.POST(AdminLoginRoute, adminHandler.Login)
	}
	if args.Pinger != nil {
		r.GET(PingRoute, Ping(args.Pinger))
	}
	return r, nil
}
