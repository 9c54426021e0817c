package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/repository/repoargs"
	"github.com/fsdevblog/bookstore/internal/service/mocks"
	"github.com/fsdevblog/bookstore/pkg/uow"
	uowmocks "github.com/fsdevblog/bookstore/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type OrderServiceTestSuite struct {
	suite.Suite
	mockUOW          *uowmocks.MockUOW
	mockTX           *uowmocks.MockTX
	mockCustomerRepo *mocks.MockCustomerRepository
	mockBookRepo     *mocks.MockBookRepository
	mockOrderRepo    *mocks.MockOrderRepository
	mockPaymentRepo  *mocks.MockPaymentRepository
	mockAuditRepo    *mocks.MockAuditLogRepository
	mockNotifyRepo   *mocks.MockNotificationRepository
	orderService     *OrderService
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (s *OrderServiceTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(mockCtrl)
	s.mockTX = uowmocks.NewMockTX(mockCtrl)
	s.mockCustomerRepo = mocks.NewMockCustomerRepository(mockCtrl)
	s.mockBookRepo = mocks.NewMockBookRepository(mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(mockCtrl)
	s.mockPaymentRepo = mocks.NewMockPaymentRepository(mockCtrl)
	s.mockAuditRepo = mocks.NewMockAuditLogRepository(mockCtrl)
	s.mockNotifyRepo = mocks.NewMockNotificationRepository(mockCtrl)

	// Мок получения репозитория из uow. Выполняется в инициализации сервиса.
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()

	// Репозитории внутри транзакции.
	txRepos := map[repoargs.RepositoryName]uow.Repository{
		repoargs.CustomerRepoName:     s.mockCustomerRepo,
		repoargs.BookRepoName:         s.mockBookRepo,
		repoargs.OrderRepoName:        s.mockOrderRepo,
		repoargs.PaymentRepoName:      s.mockPaymentRepo,
		repoargs.AuditLogRepoName:     s.mockAuditRepo,
		repoargs.NotificationRepoName: s.mockNotifyRepo,
	}
	for name, repo := range txRepos {
		s.mockTX.EXPECT().Get(uow.RepositoryName(name)).Return(repo, nil).AnyTimes()
	}

	orderService, err := NewOrderService(s.mockUOW)
	s.Require().NoError(err)
	s.orderService = orderService
}

// expectTx мок uow, выполняющий fn с mockTX и возвращающий ее ошибку.
func (s *OrderServiceTestSuite) expectTx() {
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		})
}

func (s *OrderServiceTestSuite) pendingOrder(id, customerID int64) *domain.Order {
	return &domain.Order{
		ID:         id,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		CustomerID: customerID,
		Status:     domain.OrderStatusPending,
	}
}

func (s *OrderServiceTestSuite) TestPlaceOrderSingleItem() {
	customerID := int64(1)
	bookID := int64(gofakeit.Number(1, 1000))
	orderID := int64(gofakeit.Number(1, 1000))
	price := decimal.RequireFromString("900.00")

	s.expectTx()
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), customerID).
		Return(&domain.Customer{ID: customerID}, nil)
	s.mockOrderRepo.EXPECT().CreateOrder(gomock.Any(), customerID).
		Return(s.pendingOrder(orderID, customerID), nil)
	s.mockBookRepo.EXPECT().ReserveStock(gomock.Any(), bookID, int64(1)).Return(price, nil)
	s.mockOrderRepo.EXPECT().
		CreateLineItem(gomock.Any(), repoargs.CreateLineItem{
			OrderID:   orderID,
			BookID:    bookID,
			Quantity:  1,
			UnitPrice: price,
		}).
		Return(&domain.OrderLineItem{ID: 1, OrderID: orderID, BookID: bookID, Quantity: 1, UnitPrice: price}, nil)
	s.mockPaymentRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CreatePayment) (*domain.Payment, error) {
			s.Equal(orderID, args.OrderID)
			s.Equal(domain.PaymentMethodCash, args.Method)
			s.True(args.Amount.Equal(price), "payment amount %s", args.Amount)
			return &domain.Payment{ID: 1, OrderID: orderID, Method: args.Method, Amount: args.Amount}, nil
		})
	s.mockAuditRepo.EXPECT().Append(gomock.Any(), orderID, domain.PaymentMethodCash).
		Return(&domain.AuditLogEntry{ID: 1, OrderID: orderID}, nil)
	s.mockNotifyRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CreateNotification) error {
			s.NotEmpty(args.ID)
			s.Equal(orderID, args.OrderID)
			s.Equal(domain.NotificationOrderPlaced, args.Kind)

			var payload map[string]any
			s.Require().NoError(json.Unmarshal(args.Payload, &payload))
			s.EqualValues(orderID, payload["orderId"])
			s.Equal("900", payload["totalAmount"])
			return nil
		})

	placed, err := s.orderService.PlaceOrder(s.T().Context(), PlaceOrderArgs{
		CustomerID:    customerID,
		Items:         []OrderItemArgs{{BookID: bookID, Quantity: 1}},
		PaymentMethod: domain.PaymentMethodCash,
	})
	s.Require().NoError(err)
	s.Equal(orderID, placed.Order.ID)
	s.Equal(domain.OrderStatusPending, placed.Order.Status)
	s.Require().Len(placed.Items, 1)
	s.True(placed.TotalAmount.Equal(price))
	s.True(placed.Payment.Amount.Equal(placed.TotalAmount))
}

func (s *OrderServiceTestSuite) TestPlaceOrderMergesAndSortsItems() {
	customerID := int64(gofakeit.Number(1, 1000))
	orderID := int64(gofakeit.Number(1, 1000))
	priceA := decimal.RequireFromString("10.50")
	priceB := decimal.RequireFromString("3.25")

	s.expectTx()
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), customerID).Return(&domain.Customer{ID: customerID}, nil)
	s.mockOrderRepo.EXPECT().CreateOrder(gomock.Any(), customerID).Return(s.pendingOrder(orderID, customerID), nil)

	// Книги резервируются по возрастанию id, дубликаты суммируются.
	gomock.InOrder(
		s.mockBookRepo.EXPECT().ReserveStock(gomock.Any(), int64(1), int64(2)).Return(priceA, nil),
		s.mockBookRepo.EXPECT().ReserveStock(gomock.Any(), int64(3), int64(3)).Return(priceB, nil),
	)
	s.mockOrderRepo.EXPECT().CreateLineItem(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CreateLineItem) (*domain.OrderLineItem, error) {
			return &domain.OrderLineItem{
				OrderID:   args.OrderID,
				BookID:    args.BookID,
				Quantity:  args.Quantity,
				UnitPrice: args.UnitPrice,
			}, nil
		}).Times(2)

	// 10.50 * 2 + 3.25 * 3 = 30.75
	wantTotal := decimal.RequireFromString("30.75")
	s.mockPaymentRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CreatePayment) (*domain.Payment, error) {
			s.True(args.Amount.Equal(wantTotal), "payment amount %s", args.Amount)
			return &domain.Payment{OrderID: args.OrderID, Method: args.Method, Amount: args.Amount}, nil
		})
	s.mockAuditRepo.EXPECT().Append(gomock.Any(), orderID, domain.PaymentMethodCard).
		Return(&domain.AuditLogEntry{OrderID: orderID}, nil)
	s.mockNotifyRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	placed, err := s.orderService.PlaceOrder(s.T().Context(), PlaceOrderArgs{
		CustomerID: customerID,
		Items: []OrderItemArgs{
			{BookID: 3, Quantity: 1},
			{BookID: 1, Quantity: 2},
			{BookID: 3, Quantity: 2},
		},
		PaymentMethod: domain.PaymentMethodCard,
	})
	s.Require().NoError(err)
	s.Len(placed.Items, 2)
	s.True(placed.TotalAmount.Equal(wantTotal))
}

func (s *OrderServiceTestSuite) TestPlaceOrderValidation() {
	cases := []struct {
		name string
		args PlaceOrderArgs
	}{
		{
			name: "zero quantity",
			args: PlaceOrderArgs{
				CustomerID:    1,
				Items:         []OrderItemArgs{{BookID: 1, Quantity: 0}},
				PaymentMethod: domain.PaymentMethodCash,
			},
		},
		{
			name: "negative book id",
			args: PlaceOrderArgs{
				CustomerID:    1,
				Items:         []OrderItemArgs{{BookID: -1, Quantity: 1}},
				PaymentMethod: domain.PaymentMethodCash,
			},
		},
		{
			name: "no items",
			args: PlaceOrderArgs{CustomerID: 1, PaymentMethod: domain.PaymentMethodCash},
		},
		{
			name: "zero customer",
			args: PlaceOrderArgs{
				Items:         []OrderItemArgs{{BookID: 1, Quantity: 1}},
				PaymentMethod: domain.PaymentMethodCash,
			},
		},
		{
			name: "merged quantity overflows",
			args: PlaceOrderArgs{
				CustomerID:    1,
				Items:         []OrderItemArgs{{BookID: 7, Quantity: math.MaxInt64}, {BookID: 7, Quantity: 2}},
				PaymentMethod: domain.PaymentMethodCash,
			},
		},
		{
			name: "merged quantity above limit",
			args: PlaceOrderArgs{
				CustomerID: 1,
				Items: []OrderItemArgs{
					{BookID: 7, Quantity: MaxBookQuantity},
					{BookID: 8, Quantity: 1},
					{BookID: 7, Quantity: 1},
				},
				PaymentMethod: domain.PaymentMethodCash,
			},
		},
		{
			name: "single item above limit",
			args: PlaceOrderArgs{
				CustomerID:    1,
				Items:         []OrderItemArgs{{BookID: 7, Quantity: MaxBookQuantity + 1}},
				PaymentMethod: domain.PaymentMethodCash,
			},
		},
		{
			name: "unknown payment method",
			args: PlaceOrderArgs{
				CustomerID:    1,
				Items:         []OrderItemArgs{{BookID: 1, Quantity: 1}},
				PaymentMethod: "Barter",
			},
		},
	}

	// Транзакция не должна открываться.
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).Times(0)

	for _, t := range cases {
		s.Run(t.name, func() {
			placed, err := s.orderService.PlaceOrder(s.T().Context(), t.args)
			s.Require().ErrorIs(err, domain.ErrValidation)
			s.Nil(placed)
		})
	}
}

func (s *OrderServiceTestSuite) TestPlaceOrderInsufficientStock() {
	customerID := int64(gofakeit.Number(1, 1000))
	orderID := int64(gofakeit.Number(1, 1000))

	s.expectTx()
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), customerID).Return(&domain.Customer{ID: customerID}, nil)
	s.mockOrderRepo.EXPECT().CreateOrder(gomock.Any(), customerID).Return(s.pendingOrder(orderID, customerID), nil)
	s.mockBookRepo.EXPECT().ReserveStock(gomock.Any(), int64(7), int64(5)).
		Return(decimal.Zero, domain.NewInsufficientStockError(7, 5))
	s.mockOrderRepo.EXPECT().CreateLineItem(gomock.Any(), gomock.Any()).Times(0)
	s.mockPaymentRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
	s.mockAuditRepo.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.mockNotifyRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	placed, err := s.orderService.PlaceOrder(s.T().Context(), PlaceOrderArgs{
		CustomerID:    customerID,
		Items:         []OrderItemArgs{{BookID: 7, Quantity: 5}},
		PaymentMethod: domain.PaymentMethodJazzCash,
	})
	s.Require().ErrorIs(err, domain.ErrInsufficientStock)
	s.Nil(placed)

	var stockErr *domain.InsufficientStockError
	s.Require().ErrorAs(err, &stockErr)
	s.Equal(int64(7), stockErr.BookID)
}

func (s *OrderServiceTestSuite) TestPlaceOrderUnknownCustomer() {
	s.expectTx()
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(404)).Return(nil, domain.ErrRecordNotFound)
	s.mockOrderRepo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.orderService.PlaceOrder(s.T().Context(), PlaceOrderArgs{
		CustomerID:    404,
		Items:         []OrderItemArgs{{BookID: 1, Quantity: 1}},
		PaymentMethod: domain.PaymentMethodSadaPay,
	})
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *OrderServiceTestSuite) TestPlaceOrderCommitFailure() {
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("%w: %w", uow.ErrCommitTx, errors.New("connection reset")))

	_, err := s.orderService.PlaceOrder(s.T().Context(), PlaceOrderArgs{
		CustomerID:    1,
		Items:         []OrderItemArgs{{BookID: 1, Quantity: 1}},
		PaymentMethod: domain.PaymentMethodEasyPaisa,
	})
	s.Require().ErrorIs(err, domain.ErrStorageUnavailable)
}

func (s *OrderServiceTestSuite) TestUpdateStatus() {
	orderID := int64(gofakeit.Number(1, 1000))
	customerID := int64(gofakeit.Number(1, 1000))

	s.Run("pending to completed", func() {
		s.expectTx()
		s.mockOrderRepo.EXPECT().FindByIDForUpdate(gomock.Any(), orderID).
			Return(s.pendingOrder(orderID, customerID), nil)
		s.mockOrderRepo.EXPECT().GetLineItems(gomock.Any(), gomock.Any()).Times(0)
		s.mockOrderRepo.EXPECT().UpdateStatus(gomock.Any(), orderID, domain.OrderStatusCompleted).
			Return(&domain.Order{ID: orderID, CustomerID: customerID, Status: domain.OrderStatusCompleted}, nil)
		s.mockNotifyRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, args repoargs.CreateNotification) error {
				s.Equal(domain.NotificationOrderStatusChanged, args.Kind)
				s.JSONEq(fmt.Sprintf(`{"orderId":%d,"from":"Pending","to":"Completed"}`, orderID), string(args.Payload))
				return nil
			})

		order, err := s.orderService.UpdateStatus(s.T().Context(), orderID, domain.OrderStatusCompleted)
		s.Require().NoError(err)
		s.Equal(domain.OrderStatusCompleted, order.Status)
	})

	s.Run("pending to cancelled releases stock", func() {
		s.expectTx()
		s.mockOrderRepo.EXPECT().FindByIDForUpdate(gomock.Any(), orderID).
			Return(s.pendingOrder(orderID, customerID), nil)
		s.mockOrderRepo.EXPECT().GetLineItems(gomock.Any(), orderID).Return([]domain.OrderLineItem{
			{OrderID: orderID, BookID: 2, Quantity: 4},
			{OrderID: orderID, BookID: 9, Quantity: 1},
		}, nil)
		s.mockBookRepo.EXPECT().ReleaseStock(gomock.Any(), int64(2), int64(4)).Return(nil)
		s.mockBookRepo.EXPECT().ReleaseStock(gomock.Any(), int64(9), int64(1)).Return(nil)
		s.mockOrderRepo.EXPECT().UpdateStatus(gomock.Any(), orderID, domain.OrderStatusCancelled).
			Return(&domain.Order{ID: orderID, Status: domain.OrderStatusCancelled}, nil)
		s.mockNotifyRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		order, err := s.orderService.UpdateStatus(s.T().Context(), orderID, domain.OrderStatusCancelled)
		s.Require().NoError(err)
		s.Equal(domain.OrderStatusCancelled, order.Status)
	})

	s.Run("same status is noop", func() {
		s.expectTx()
		s.mockOrderRepo.EXPECT().FindByIDForUpdate(gomock.Any(), orderID).
			Return(s.pendingOrder(orderID, customerID), nil)

		order, err := s.orderService.UpdateStatus(s.T().Context(), orderID, domain.OrderStatusPending)
		s.Require().NoError(err)
		s.Equal(domain.OrderStatusPending, order.Status)
	})

	s.Run("completed to cancelled", func() {
		s.expectTx()
		s.mockOrderRepo.EXPECT().FindByIDForUpdate(gomock.Any(), orderID).
			Return(&domain.Order{ID: orderID, Status: domain.OrderStatusCompleted}, nil)

		_, err := s.orderService.UpdateStatus(s.T().Context(), orderID, domain.OrderStatusCancelled)
		s.Require().ErrorIs(err, domain.ErrInvalidStatusTransition)

		var trErr *domain.StatusTransitionError
		s.Require().ErrorAs(err, &trErr)
		s.Equal(domain.OrderStatusCompleted, trErr.From)
		s.Equal(domain.OrderStatusCancelled, trErr.To)
	})

	s.Run("order not found", func() {
		s.expectTx()
		s.mockOrderRepo.EXPECT().FindByIDForUpdate(gomock.Any(), int64(404)).Return(nil, domain.ErrRecordNotFound)

		_, err := s.orderService.UpdateStatus(s.T().Context(), 404, domain.OrderStatusCompleted)
		s.Require().ErrorIs(err, domain.ErrRecordNotFound)
	})

	s.Run("unknown status", func() {
		_, err := s.orderService.UpdateStatus(s.T().Context(), orderID, "Shipped")
		s.Require().ErrorIs(err, domain.ErrValidation)
	})
}

func (s *OrderServiceTestSuite) TestGetDetails() {
	orderID := int64(gofakeit.Number(1, 1000))
	details := []domain.OrderDetail{
		{
			BookID:     1,
			Title:      gofakeit.BookTitle(),
			AuthorName: gofakeit.Name(),
			Quantity:   2,
			UnitPrice:  decimal.RequireFromString("5.00"),
			LineTotal:  decimal.RequireFromString("10.00"),
		},
	}

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), orderID).Return(&domain.Order{ID: orderID}, nil)
	s.mockOrderRepo.EXPECT().GetDetails(gomock.Any(), orderID).Return(details, nil)
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(404)).Return(nil, domain.ErrRecordNotFound)

	got, err := s.orderService.GetDetails(s.T().Context(), orderID)
	s.Require().NoError(err)
	s.Equal(details, got)

	_, notFoundErr := s.orderService.GetDetails(s.T().Context(), 404)
	s.Require().ErrorIs(notFoundErr, domain.ErrRecordNotFound)
}

func TestMergeOrderItems(t *testing.T) {
	merged := mergeOrderItems([]OrderItemArgs{
		{BookID: 5, Quantity: 1},
		{BookID: 2, Quantity: 1},
		{BookID: 5, Quantity: 3},
	})
	require.Equal(t, []OrderItemArgs{{BookID: 2, Quantity: 1}, {BookID: 5, Quantity: 4}}, merged)
}
