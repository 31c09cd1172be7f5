package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

type TransactionManager interface {
	WithinTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error
}

type ProductRepository interface {
	FindByIDsForUpdate(ctx context.Context, tx *sql.Tx, ids []int64) ([]domain.Product, error)
	DecrementStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error
	IncrementStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error
}

type CouponRepository interface {
	FindByCodeForUpdate(ctx context.Context, tx *sql.Tx, code string) (*domain.Coupon, error)
	IncrementUsage(ctx context.Context, tx *sql.Tx, id int64) error
	DecrementUsage(ctx context.Context, tx *sql.Tx, id int64) error
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, o *domain.Order) error
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status domain.OrderStatus) error
	InsertHistory(ctx context.Context, tx *sql.Tx, orderID int64, status domain.OrderStatus, changedBy *int64) error
}

type OrderItemRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (int64, error)
	ListByOrder(ctx context.Context, tx *sql.Tx, orderID int64) ([]domain.OrderItem, error)
}

type Outbox interface {
	Enqueue(ctx context.Context, tx *sql.Tx, eventID, eventType string, payload []byte) error
}

// DiscardOutbox drops order events. It is used when no dispatcher drains the
// outbox table.
type DiscardOutbox struct{}

func (DiscardOutbox) Enqueue(ctx context.Context, tx *sql.Tx, eventID, eventType string, payload []byte) error {
	return nil
}

// Line is a requested quantity of one product.
type Line struct {
	ProductID int64
	Quantity  int
}

type PlaceOrder struct {
	UserID       int64
	Items        []Line
	Delivery     domain.DeliveryDetails
	CouponCode   string
	DeliveryDate *time.Time
	GiftMessage  *string
	Notes        *string
}

type OrderService struct {
	db        TransactionManager
	products  ProductRepository
	coupons   CouponRepository
	orders    OrderRepository
	items     OrderItemRepository
	outbox    Outbox
	logger    *zap.Logger
	txTimeout time.Duration
	now       func() time.Time
}

func NewOrderService(
	db TransactionManager,
	products ProductRepository,
	coupons CouponRepository,
	orders OrderRepository,
	items OrderItemRepository,
	outbox Outbox,
	logger *zap.Logger,
	txTimeout time.Duration,
) *OrderService {
	return &OrderService{
		db:        db,
		products:  products,
		coupons:   coupons,
		orders:    orders,
		items:     items,
		outbox:    outbox,
		logger:    logger,
		txTimeout: txTimeout,
		now:       time.Now,
	}
}

func txOptions() *sql.TxOptions {
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
}

// PlaceOrder writes the order, its items and its first history row, takes
// the stock and redeems the coupon, all in one transaction. in.Items must be
// sorted by product id.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrder, settings domain.Settings) (*domain.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var order *domain.Order
	err := s.db.WithinTx(txCtx, txOptions(), func(tx *sql.Tx) error {
		ids := make([]int64, len(in.Items))
		for i, line := range in.Items {
			ids[i] = line.ProductID
		}

		products, err := s.products.FindByIDsForUpdate(txCtx, tx, ids)
		if err != nil {
			return err
		}
		byID := make(map[int64]domain.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		items, err := s.checkAvailability(in.Items, byID)
		if err != nil {
			return err
		}

		for _, item := range items {
			if err := s.products.DecrementStock(txCtx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		subtotal := domain.Subtotal(items)
		discount := decimal.Zero
		var coupon *domain.Coupon
		if in.CouponCode != "" {
			coupon, err = s.coupons.FindByCodeForUpdate(txCtx, tx, domain.NormalizeCouponCode(in.CouponCode))
			if err != nil {
				return err
			}
			if err := coupon.Validate(subtotal, s.now()); err != nil {
				return err
			}
			if err := s.coupons.IncrementUsage(txCtx, tx, coupon.ID); err != nil {
				return err
			}
			discount = coupon.Discount(subtotal)
		}

		totals := domain.CalculateTotals(subtotal, discount, settings)
		now := s.now().UTC().Truncate(time.Second)
		order = &domain.Order{
			OrderNumber:  domain.NewOrderNumber(now),
			UserID:       in.UserID,
			Status:       domain.OrderStatusPending,
			Subtotal:     totals.Subtotal,
			Discount:     totals.Discount,
			ShippingCost: totals.Shipping,
			Total:        totals.Total,
			Delivery:     in.Delivery,
			DeliveryDate: in.DeliveryDate,
			GiftMessage:  in.GiftMessage,
			Notes:        in.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if coupon != nil {
			order.CouponID = &coupon.ID
			order.CouponCode = &coupon.Code
		}

		if err := s.orders.Insert(txCtx, tx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
			id, err := s.items.Insert(txCtx, tx, items[i])
			if err != nil {
				return err
			}
			items[i].ID = id
		}
		order.Items = items

		if err := s.orders.InsertHistory(txCtx, tx, order.ID, order.Status, &in.UserID); err != nil {
			return err
		}
		order.History = []domain.OrderStatusChange{{OrderID: order.ID, Status: order.Status, ChangedBy: &in.UserID, CreatedAt: now}}

		return s.enqueue(txCtx, tx, domain.EventOrderPlaced, *order, "")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.Int64("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber),
		zap.Int64("userId", order.UserID),
		zap.Int("itemCount", len(order.Items)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

// checkAvailability turns the requested lines into order items priced from
// the locked products. Missing products are a 404; inactive or short lines
// are reported together as a conflict.
func (s *OrderService) checkAvailability(lines []Line, byID map[int64]domain.Product) ([]domain.OrderItem, error) {
	var failures []domain.ItemFailure
	items := make([]domain.OrderItem, 0, len(lines))

	for _, line := range lines {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", line.ProductID))
		}

		switch {
		case !p.IsActive:
			failures = append(failures, domain.ItemFailure{ProductID: p.ID, Requested: line.Quantity, Reason: domain.ReasonProductInactive})
		case !p.CanFulfil(line.Quantity):
			failures = append(failures, domain.ItemFailure{ProductID: p.ID, Requested: line.Quantity, Available: p.Stock, Reason: domain.ReasonInsufficientStock})
		default:
			items = append(items, domain.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				UnitPrice:   p.Price,
				Quantity:    line.Quantity,
			})
		}
	}

	if len(failures) > 0 {
		s.logger.Warn("checkout rejected", zap.Int("failureCount", len(failures)))
		return nil, &apperrors.ConflictError{
			Message: "some items cannot be fulfilled",
			Code:    domain.ReasonInsufficientStock,
			Details: failures,
		}
	}
	return items, nil
}

// CancelOwn lets the buyer cancel an order that has not been processed yet.
func (s *OrderService) CancelOwn(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	return s.transition(ctx, orderID, userID, func(o *domain.Order) error {
		if o.UserID != userID {
			return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", orderID))
		}
		if !o.Status.CustomerCancellable() {
			return &apperrors.ConflictError{
				Message: fmt.Sprintf("order is %s and can no longer be cancelled", o.Status),
				Code:    domain.ReasonOrderNotCancelable,
			}
		}
		return nil
	}, domain.OrderStatusCancelled)
}

// ChangeStatus is the admin transition. Leaving a terminal status is refused.
func (s *OrderService) ChangeStatus(ctx context.Context, orderID int64, next domain.OrderStatus, actorID int64) (*domain.Order, error) {
	return s.transition(ctx, orderID, actorID, func(o *domain.Order) error {
		return o.Status.CheckTransition(next)
	}, next)
}

func (s *OrderService) transition(ctx context.Context, orderID, actorID int64, check func(*domain.Order) error, next domain.OrderStatus) (*domain.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var order *domain.Order
	var previous domain.OrderStatus
	err := s.db.WithinTx(txCtx, txOptions(), func(tx *sql.Tx) error {
		o, err := s.orders.FindByIDForUpdate(txCtx, tx, orderID)
		if err != nil {
			return err
		}
		if err := check(o); err != nil {
			return err
		}
		previous = o.Status

		if next == domain.OrderStatusCancelled {
			if err := s.release(txCtx, tx, o); err != nil {
				return err
			}
		}

		if err := s.orders.UpdateStatus(txCtx, tx, o.ID, next); err != nil {
			return err
		}
		if err := s.orders.InsertHistory(txCtx, tx, o.ID, next, &actorID); err != nil {
			return err
		}

		o.Status = next
		o.UpdatedAt = s.now().UTC()
		order = o
		return s.enqueue(txCtx, tx, domain.EventOrderStatusChanged, *o, previous)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.Int64("orderId", order.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(order.Status)),
		zap.Int64("actorId", actorID),
	)
	return order, nil
}

// release puts the stock of a cancelled order back and frees its coupon
// redemption. Products are touched in ascending id order like checkout.
func (s *OrderService) release(ctx context.Context, tx *sql.Tx, o *domain.Order) error {
	items, err := s.items.ListByOrder(ctx, tx, o.ID)
	if err != nil {
		return err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	for _, item := range items {
		if err := s.products.IncrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	if o.CouponID != nil {
		if err := s.coupons.DecrementUsage(ctx, tx, *o.CouponID); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) enqueue(ctx context.Context, tx *sql.Tx, eventType string, o domain.Order, previous domain.OrderStatus) error {
	event := domain.OrderEvent{
		EventID:     uuid.New().String(),
		Type:        eventType,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Status:      o.Status,
		Previous:    previous,
		Total:       o.Total,
		OccurredAt:  s.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", eventType, err)
	}
	return s.outbox.Enqueue(ctx, tx, event.EventID, eventType, payload)
}
