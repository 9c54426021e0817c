package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/service"
	"github.com/gin-gonic/gin"
)

type OrdersHandler struct {
	orderSvs OrderServicer
}

func NewOrdersHandler(orderSvs OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		orderSvs: orderSvs,
	}
}

type OrderItemParams struct {
	BookID   int64 `binding:"required,gt=0" json:"bookId"`
	Quantity int64 `binding:"required,gt=0,max=10000" json:"quantity"`
}

type CreateOrderParams struct {
	CustomerID    int64             `binding:"required,gt=0"                json:"customerId"`
	Items         []OrderItemParams `binding:"required,min=1,dive"          json:"items"`
	PaymentMethod string            `binding:"required,payment_method"      json:"paymentMethod"`
}

type CreateOrderResponse struct {
	OrderID     int64   `json:"orderId"`
	TotalAmount float64 `json:"totalAmount"`
}

// Create POST OrdersRoute. Оформляет заказ.
func (o *OrdersHandler) Create(c *gin.Context) {
	var params CreateOrderParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	items := make([]service.OrderItemArgs, len(params.Items))
	for i, item := range params.Items {
		items[i] = service.OrderItemArgs{BookID: item.BookID, Quantity: item.Quantity}
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	placed, err := o.orderSvs.PlaceOrder(reqCtx, service.PlaceOrderArgs{
		CustomerID:    params.CustomerID,
		Items:         items,
		PaymentMethod: domain.PaymentMethodType(params.PaymentMethod),
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateOrderResponse{
		OrderID:     placed.Order.ID,
		TotalAmount: placed.TotalAmount.InexactFloat64(),
	})
}

type OrderResponse struct {
	CreatedAt     time.Time                `json:"createdAt"`
	OrderID       int64                    `json:"orderId"`
	CustomerID    int64                    `json:"customerId"`
	Status        domain.OrderStatusType   `json:"status"`
	TotalAmount   float64                  `json:"totalAmount"`
	PaymentMethod domain.PaymentMethodType `json:"paymentMethod"`
}

// Show GET OrderRoute.
func (o *OrdersHandler) Show(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	summary, err := o.orderSvs.GetOrder(reqCtx, orderID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, OrderResponse{
		CreatedAt:     summary.CreatedAt,
		OrderID:       summary.ID,
		CustomerID:    summary.CustomerID,
		Status:        summary.Status,
		TotalAmount:   summary.TotalAmount.InexactFloat64(),
		PaymentMethod: summary.PaymentMethod,
	})
}

type OrderDetailResponse struct {
	BookID    int64   `json:"bookId"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

// Details GET OrderDetailsRoute. Строки заказа с данными книг.
func (o *OrdersHandler) Details(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	details, err := o.orderSvs.GetDetails(reqCtx, orderID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	var response = make([]OrderDetailResponse, len(details))
	for i, d := range details {
		response[i] = OrderDetailResponse{
			BookID:    d.BookID,
			Title:     d.Title,
			Author:    d.AuthorName,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice.InexactFloat64(),
			LineTotal: d.LineTotal.InexactFloat64(),
		}
	}
	c.JSON(http.StatusOK, response)
}

type UpdateStatusParams struct {
	Status string `binding:"required,order_status" json:"status"`
}

type UpdateStatusResponse struct {
	OrderID int64                  `json:"orderId"`
	Status  domain.OrderStatusType `json:"status"`
}

// UpdateStatus PUT OrderStatusRoute.
func (o *OrdersHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var params UpdateStatusParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.orderSvs.UpdateStatus(reqCtx, orderID, domain.OrderStatusType(params.Status))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, UpdateStatusResponse{OrderID: order.ID, Status: order.Status})
}
