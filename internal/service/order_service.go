package service

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/repository/repoargs"
	"github.com/fsdevblog/bookstore/pkg/uow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxBookQuantity ограничивает кол-во экземпляров одной книги в заказе (с учетом повторяющихся строк).
const MaxBookQuantity int64 = 10_000

type OrderService struct {
	uow       uow.UOW
	orderRepo OrderRepository
}

func NewOrderService(u uow.UOW) (*OrderService, error) {
	orderRepo, err := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if err != nil {
		return nil, err
	}
	return &OrderService{
		uow:       u,
		orderRepo: orderRepo,
	}, nil
}

type OrderItemArgs struct {
	BookID   int64
	Quantity int64
}

type PlaceOrderArgs struct {
	CustomerID    int64
	Items         []OrderItemArgs
	PaymentMethod domain.PaymentMethodType
}

type PlacedOrder struct {
	Order       domain.Order
	Items       []domain.OrderLineItem
	Payment     domain.Payment
	TotalAmount decimal.Decimal
}

// PlaceOrder оформляет заказ покупателя.
//
// Параметры:
//   - ctx: контекст для управления жизненным циклом
//   - args: покупатель, строки заказа и способ оплаты.
//
// Алгоритм работы:
//  1. Валидирует аргументы до начала транзакции. Ошибки совместимы с domain.ErrValidation.
//  2. В одной транзакции: проверяет покупателя, создает заказ, для каждой книги (в порядке возрастания id)
//     атомарно списывает остаток и фиксирует цену, создает строки заказа, платеж на всю сумму,
//     запись журнала и уведомление в outbox.
//  3. Любая ошибка откатывает транзакцию целиком.
//
// Возможные ошибки: domain.ErrValidation, domain.ErrRecordNotFound (покупатель или книга),
// *domain.InsufficientStockError, domain.ErrConflict, domain.ErrStorageUnavailable, domain.ErrUnknown.
func (o *OrderService) PlaceOrder(ctx context.Context, args PlaceOrderArgs) (*PlacedOrder, error) {
	if err := validatePlaceOrder(args); err != nil {
		return nil, fmt.Errorf("placing order: %w", err)
	}
	items := mergeOrderItems(args.Items)

	var placed *PlacedOrder
	txErr := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var err error
		placed, err = o.placeOrderTx(c, tx, args.CustomerID, items, args.PaymentMethod)
		return err
	})
	if txErr != nil {
		return nil, fmt.Errorf("placing order: %w", wrapTxErr(txErr))
	}
	return placed, nil
}

func (o *OrderService) placeOrderTx(
	ctx context.Context,
	tx uow.TX,
	customerID int64,
	items []OrderItemArgs,
	method domain.PaymentMethodType,
) (*PlacedOrder, error) {
	customerRepo, err := txRepo[CustomerRepository](tx, repoargs.CustomerRepoName)
	if err != nil {
		return nil, err
	}
	orderRepo, err := txRepo[OrderRepository](tx, repoargs.OrderRepoName)
	if err != nil {
		return nil, err
	}
	bookRepo, err := txRepo[BookRepository](tx, repoargs.BookRepoName)
	if err != nil {
		return nil, err
	}
	paymentRepo, err := txRepo[PaymentRepository](tx, repoargs.PaymentRepoName)
	if err != nil {
		return nil, err
	}
	auditRepo, err := txRepo[AuditLogRepository](tx, repoargs.AuditLogRepoName)
	if err != nil {
		return nil, err
	}

	if _, findErr := customerRepo.FindByID(ctx, customerID); findErr != nil {
		return nil, findErr //nolint:wrapcheck
	}

	order, createErr := orderRepo.CreateOrder(ctx, customerID)
	if createErr != nil {
		return nil, createErr //nolint:wrapcheck
	}

	placed := PlacedOrder{
		Order:       *order,
		Items:       make([]domain.OrderLineItem, 0, len(items)),
		TotalAmount: decimal.Zero,
	}
	for _, item := range items {
		price, reserveErr := bookRepo.ReserveStock(ctx, item.BookID, item.Quantity)
		if reserveErr != nil {
			return nil, reserveErr //nolint:wrapcheck
		}
		lineItem, lineErr := orderRepo.CreateLineItem(ctx, repoargs.CreateLineItem{
			OrderID:   order.ID,
			BookID:    item.BookID,
			Quantity:  item.Quantity,
			UnitPrice: price,
		})
		if lineErr != nil {
			return nil, lineErr //nolint:wrapcheck
		}
		placed.Items = append(placed.Items, *lineItem)
		placed.TotalAmount = placed.TotalAmount.Add(lineItem.LineTotal())
	}

	payment, paymentErr := paymentRepo.Create(ctx, repoargs.CreatePayment{
		OrderID: order.ID,
		Method:  method,
		Amount:  placed.TotalAmount,
	})
	if paymentErr != nil {
		return nil, paymentErr //nolint:wrapcheck
	}
	placed.Payment = *payment

	if _, auditErr := auditRepo.Append(ctx, order.ID, method); auditErr != nil {
		return nil, auditErr //nolint:wrapcheck
	}

	if notifyErr := createNotification(ctx, tx, order.ID, domain.NotificationOrderPlaced, orderPlacedPayload{
		OrderID:       order.ID,
		CustomerID:    customerID,
		TotalAmount:   placed.TotalAmount,
		PaymentMethod: method,
		Items:         toPlacedItems(placed.Items),
	}); notifyErr != nil {
		return nil, notifyErr
	}

	return &placed, nil
}

// UpdateStatus переводит заказ в статус status. Разрешены только переходы из domain.OrderStatusPending.
// Повторная установка текущего статуса ничего не меняет и не считается ошибкой.
// При отмене заказа зарезервированные книги возвращаются на склад.
//
// Возможные ошибки: domain.ErrValidation, domain.ErrRecordNotFound, *domain.StatusTransitionError,
// domain.ErrStorageUnavailable, domain.ErrUnknown.
func (o *OrderService) UpdateStatus(
	ctx context.Context,
	orderID int64,
	status domain.OrderStatusType,
) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("updating order status: %w", domain.NewValidationError("orderId", "must be positive"))
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("updating order status: %w", domain.NewValidationError("status", "is unknown"))
	}

	var updated *domain.Order
	txErr := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, repoErr := txRepo[OrderRepository](tx, repoargs.OrderRepoName)
		if repoErr != nil {
			return repoErr
		}

		order, findErr := orderRepo.FindByIDForUpdate(c, orderID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if order.Status == status {
			updated = order
			return nil
		}
		if !order.Status.CanTransitionTo(status) {
			return &domain.StatusTransitionError{From: order.Status, To: status}
		}

		if status == domain.OrderStatusCancelled {
			if releaseErr := o.releaseStock(c, tx, orderRepo, orderID); releaseErr != nil {
				return releaseErr
			}
		}

		var updErr error
		updated, updErr = orderRepo.UpdateStatus(c, orderID, status)
		if updErr != nil {
			return updErr //nolint:wrapcheck
		}

		return createNotification(c, tx, orderID, domain.NotificationOrderStatusChanged, orderStatusPayload{
			OrderID: orderID,
			From:    order.Status,
			To:      status,
		})
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating order status: %w", wrapTxErr(txErr))
	}
	return updated, nil
}

// releaseStock возвращает на склад все книги заказа.
func (o *OrderService) releaseStock(ctx context.Context, tx uow.TX, orderRepo OrderRepository, orderID int64) error {
	bookRepo, err := txRepo[BookRepository](tx, repoargs.BookRepoName)
	if err != nil {
		return err
	}
	items, itemsErr := orderRepo.GetLineItems(ctx, orderID)
	if itemsErr != nil {
		return itemsErr //nolint:wrapcheck
	}
	for _, item := range items {
		if releaseErr := bookRepo.ReleaseStock(ctx, item.BookID, item.Quantity); releaseErr != nil {
			return releaseErr //nolint:wrapcheck
		}
	}
	return nil
}

// GetDetails возвращает строки заказа с данными книг. Если заказа нет - domain.ErrRecordNotFound.
func (o *OrderService) GetDetails(ctx context.Context, orderID int64) ([]domain.OrderDetail, error) {
	if _, err := o.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, fmt.Errorf("getting order details: %w", err)
	}
	details, err := o.orderRepo.GetDetails(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("getting order details: %w", err)
	}
	return details, nil
}

func (o *OrderService) GetOrder(ctx context.Context, orderID int64) (*domain.OrderSummary, error) {
	summary, err := o.orderRepo.GetSummary(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}
	return summary, nil
}

func validatePlaceOrder(args PlaceOrderArgs) error {
	if args.CustomerID <= 0 {
		return domain.NewValidationError("customerId", "must be positive")
	}
	if len(args.Items) == 0 {
		return domain.NewValidationError("items", "must not be empty")
	}
	perBook := make(map[int64]int64, len(args.Items))
	for i, item := range args.Items {
		if item.BookID <= 0 {
			return domain.NewValidationError(fmt.Sprintf("items[%d].bookId", i), "must be positive")
		}
		if item.Quantity <= 0 {
			return domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}
		// perBook не превышает MaxBookQuantity, поэтому сравнение ниже не переполняется.
		if item.Quantity > MaxBookQuantity-perBook[item.BookID] {
			return domain.NewValidationError(
				fmt.Sprintf("items[%d].quantity", i),
				fmt.Sprintf("exceeds %d copies of book %d per order", MaxBookQuantity, item.BookID),
			)
		}
		perBook[item.BookID] += item.Quantity
	}
	if !args.PaymentMethod.IsValid() {
		return domain.NewValidationError("paymentMethod", "is unknown")
	}
	return nil
}

// mergeOrderItems объединяет строки с одинаковой книгой и сортирует их по id книги. Единый порядок
// блокировок строк books исключает взаимные блокировки конкурентных заказов.
func mergeOrderItems(items []OrderItemArgs) []OrderItemArgs {
	quantities := make(map[int64]int64, len(items))
	for _, item := range items {
		quantities[item.BookID] += item.Quantity
	}
	merged := make([]OrderItemArgs, 0, len(quantities))
	for bookID, quantity := range quantities {
		merged = append(merged, OrderItemArgs{BookID: bookID, Quantity: quantity})
	}
	slices.SortFunc(merged, func(a, b OrderItemArgs) int {
		return cmp.Compare(a.BookID, b.BookID)
	})
	return merged
}

type orderPlacedPayload struct {
	OrderID       int64                    `json:"orderId"`
	CustomerID    int64                    `json:"customerId"`
	TotalAmount   decimal.Decimal          `json:"totalAmount"`
	PaymentMethod domain.PaymentMethodType `json:"paymentMethod"`
	Items         []orderPlacedItem        `json:"items"`
}

type orderPlacedItem struct {
	BookID    int64           `json:"bookId"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type orderStatusPayload struct {
	OrderID int64                  `json:"orderId"`
	From    domain.OrderStatusType `json:"from"`
	To      domain.OrderStatusType `json:"to"`
}

func toPlacedItems(items []domain.OrderLineItem) []orderPlacedItem {
	res := make([]orderPlacedItem, len(items))
	for i, item := range items {
		res[i] = orderPlacedItem{BookID: item.BookID, Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	return res
}

// createNotification кладет уведомление kind в outbox в рамках транзакции tx.
func createNotification(
	ctx context.Context,
	tx uow.TX,
	orderID int64,
	kind domain.NotificationKindType,
	payload any,
) error {
	notifyRepo, err := txRepo[NotificationRepository](tx, repoargs.NotificationRepoName)
	if err != nil {
		return err
	}
	body, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return fmt.Errorf("marshal %s notification payload: %w", kind, marshalErr)
	}
	return notifyRepo.Create(ctx, repoargs.CreateNotification{ //nolint:wrapcheck
		ID:      uuid.NewString(),
		OrderID: orderID,
		Kind:    kind,
		Payload: body,
	})
}
