package usecase

import (
	"context"
	"database/sql"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"bloom/internal/commons"
	"bloom/internal/domain"
	"bloom/internal/dto"
	apperrors "bloom/internal/errors"
	"bloom/internal/infrastructure/mysql"
	"bloom/internal/order/service"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, in service.PlaceOrder, settings domain.Settings) (*domain.Order, error)
	CancelOwn(ctx context.Context, orderID, userID int64) (*domain.Order, error)
	ChangeStatus(ctx context.Context, orderID int64, next domain.OrderStatus, actorID int64) (*domain.Order, error)
}

type OrderRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, userID *int64, status *domain.OrderStatus, limit, offset int) ([]domain.Order, int, error)
	History(ctx context.Context, orderID int64) ([]domain.OrderStatusChange, error)
}

type OrderItemRepository interface {
	ListByOrder(ctx context.Context, tx *sql.Tx, orderID int64) ([]domain.OrderItem, error)
}

type AddressRepository interface {
	FindForUser(ctx context.Context, id, userID int64) (*domain.Address, error)
}

type SettingsReader interface {
	Get(ctx context.Context) (*domain.Settings, error)
}

type Cart interface {
	Clear(ctx context.Context, userID int64) error
}

type StatusPublisher interface {
	Publish(orderID int64, status domain.OrderStatus)
}

// Viewer identifies who is reading an order.
type Viewer struct {
	UserID  int64
	IsAdmin bool
}

type OrderUseCase struct {
	service          OrderService
	orders           OrderRepository
	items            OrderItemRepository
	addresses        AddressRepository
	settings         SettingsReader
	cart             Cart
	publisher        StatusPublisher
	logger           *zap.Logger
	maxRetryAttempts int
	sleep            func(ctx context.Context, d time.Duration) error
}

func NewOrderUseCase(
	svc OrderService,
	orders OrderRepository,
	items OrderItemRepository,
	addresses AddressRepository,
	settings SettingsReader,
	cart Cart,
	publisher StatusPublisher,
	logger *zap.Logger,
	maxRetryAttempts int,
) *OrderUseCase {
	if maxRetryAttempts < 1 {
		maxRetryAttempts = 1
	}
	return &OrderUseCase{
		service:          svc,
		orders:           orders,
		items:            items,
		addresses:        addresses,
		settings:         settings,
		cart:             cart,
		publisher:        publisher,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
		sleep:            sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Checkout places an order for userID. The request must already be shape
// validated; delivery comes from a saved address or the inline details.
func (uc *OrderUseCase) Checkout(ctx context.Context, userID int64, req dto.CheckoutRequest) (*dto.OrderDTO, error) {
	uc.logger.Info("checkout started", zap.Int64("userId", userID), zap.Int("itemCount", len(req.Items)))

	delivery, err := uc.resolveDelivery(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	in := service.PlaceOrder{
		UserID:      userID,
		Delivery:    delivery,
		CouponCode:  strings.TrimSpace(req.CouponCode),
		GiftMessage: trimmed(req.GiftMessage),
		Notes:       trimmed(req.Notes),
	}
	if req.DeliveryDate != nil && *req.DeliveryDate != "" {
		d, err := time.Parse(dto.DateLayout, *req.DeliveryDate)
		if err != nil {
			return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:   "deliveryDate",
				Message: "deliveryDate must be formatted YYYY-MM-DD",
			})
		}
		if d.Before(time.Now().UTC().Truncate(24 * time.Hour)) {
			return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:   "deliveryDate",
				Message: "deliveryDate must not be in the past",
			})
		}
		in.DeliveryDate = &d
	}

	// Lock rows in ascending product id order.
	for _, item := range req.Items {
		in.Items = append(in.Items, service.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	sort.Slice(in.Items, func(i, j int) bool { return in.Items[i].ProductID < in.Items[j].ProductID })

	settings, err := uc.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	order, err := withRetry(ctx, uc, "checkout", func() (*domain.Order, error) {
		return uc.service.PlaceOrder(ctx, in, *settings)
	})
	if err != nil {
		return nil, err
	}

	if err := uc.cart.Clear(ctx, userID); err != nil {
		uc.logger.Warn("failed to clear cart after checkout", zap.Int64("userId", userID), zap.Error(err))
	}
	uc.publisher.Publish(order.ID, order.Status)

	out := dto.FromOrder(*order)
	return &out, nil
}

func (uc *OrderUseCase) resolveDelivery(ctx context.Context, userID int64, req dto.CheckoutRequest) (domain.DeliveryDetails, error) {
	if req.AddressID != nil {
		a, err := uc.addresses.FindForUser(ctx, *req.AddressID, userID)
		if err != nil {
			return domain.DeliveryDetails{}, err
		}
		return domain.DeliveryDetails{
			RecipientName: a.RecipientName,
			Phone:         a.Phone,
			Street:        a.Street,
			City:          a.City,
			State:         a.State,
			PostalCode:    a.PostalCode,
		}, nil
	}

	d := req.Delivery
	return domain.DeliveryDetails{
		RecipientName: strings.TrimSpace(d.RecipientName),
		Phone:         strings.TrimSpace(d.Phone),
		Street:        strings.TrimSpace(d.Street),
		City:          strings.TrimSpace(d.City),
		State:         strings.TrimSpace(d.State),
		PostalCode:    strings.TrimSpace(d.PostalCode),
	}, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (uc *OrderUseCase) Cancel(ctx context.Context, orderID, userID int64) (*dto.OrderDTO, error) {
	order, err := withRetry(ctx, uc, "cancel", func() (*domain.Order, error) {
		return uc.service.CancelOwn(ctx, orderID, userID)
	})
	if err != nil {
		return nil, err
	}
	uc.publisher.Publish(order.ID, order.Status)
	return uc.detail(ctx, order)
}

func (uc *OrderUseCase) ChangeStatus(ctx context.Context, orderID int64, status string, actorID int64) (*dto.OrderDTO, error) {
	next, ok := domain.ParseOrderStatus(status)
	if !ok {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of PENDING, CONFIRMED, PROCESSING, SHIPPED, DELIVERED, CANCELLED",
		})
	}

	order, err := withRetry(ctx, uc, "status change", func() (*domain.Order, error) {
		return uc.service.ChangeStatus(ctx, orderID, next, actorID)
	})
	if err != nil {
		return nil, err
	}
	uc.publisher.Publish(order.ID, order.Status)
	return uc.detail(ctx, order)
}

// Get returns an order with its items and history. Orders of other users
// look missing to customers.
func (uc *OrderUseCase) Get(ctx context.Context, orderID int64, viewer Viewer) (*dto.OrderDTO, error) {
	order, err := uc.Visible(ctx, orderID, viewer)
	if err != nil {
		return nil, err
	}
	return uc.detail(ctx, order)
}

// Visible loads the order header when viewer may see it.
func (uc *OrderUseCase) Visible(ctx context.Context, orderID int64, viewer Viewer) (*domain.Order, error) {
	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin && order.UserID != viewer.UserID {
		return nil, apperrors.NewNotFoundError("order not found")
	}
	return order, nil
}

func (uc *OrderUseCase) detail(ctx context.Context, order *domain.Order) (*dto.OrderDTO, error) {
	items, err := uc.items.ListByOrder(ctx, nil, order.ID)
	if err != nil {
		return nil, err
	}
	history, err := uc.orders.History(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	order.History = history

	out := dto.FromOrder(*order)
	return &out, nil
}

func (uc *OrderUseCase) ListOwn(ctx context.Context, userID int64, page commons.Page) (*commons.PagedResponse[dto.OrderSummaryDTO], error) {
	orders, total, err := uc.orders.List(ctx, &userID, nil, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	resp := commons.NewPagedResponse(dto.FromOrderSummaries(orders), total, page)
	return &resp, nil
}

func (uc *OrderUseCase) ListAll(ctx context.Context, status string, page commons.Page) (*commons.PagedResponse[dto.OrderSummaryDTO], error) {
	var filter *domain.OrderStatus
	if status != "" {
		st, ok := domain.ParseOrderStatus(status)
		if !ok {
			return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:   "status",
				Message: "unknown order status",
			})
		}
		filter = &st
	}

	orders, total, err := uc.orders.List(ctx, nil, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	resp := commons.NewPagedResponse(dto.FromOrderSummaries(orders), total, page)
	return &resp, nil
}

// withRetry reruns op while MySQL reports a deadlock or lock wait timeout.
// Backoff grows 50ms, 100ms, 200ms... with +-20% jitter.
func withRetry(ctx context.Context, uc *OrderUseCase, op string, fn func() (*domain.Order, error)) (*domain.Order, error) {
	base := 50 * time.Millisecond

	for attempt := 1; attempt <= uc.maxRetryAttempts; attempt++ {
		order, err := fn()
		if err == nil {
			return order, nil
		}
		if !mysql.IsDeadlock(err) {
			return nil, err
		}
		if attempt == uc.maxRetryAttempts {
			break
		}

		backoff := base << (attempt - 1)
		jitter := time.Duration(float64(backoff) * (rand.Float64()*0.4 - 0.2))
		uc.logger.Warn("deadlock detected, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", uc.maxRetryAttempts),
		)
		if err := uc.sleep(ctx, backoff+jitter); err != nil {
			return nil, err
		}
	}

	uc.logger.Error("deadlock retries exhausted", zap.String("operation", op), zap.Int("attempts", uc.maxRetryAttempts))
	return nil, apperrors.NewDeadlockError("the order could not be processed due to contention, please retry")
}
