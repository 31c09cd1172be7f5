package controller

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"bloom/internal/auth"
	"bloom/internal/commons"
	"bloom/internal/domain"
	"bloom/internal/dto"
	apperrors "bloom/internal/errors"
	"bloom/internal/order/usecase"
)

const (
	maxCheckoutItems = 50
	maxItemQuantity  = 100
)

type UseCase interface {
	Checkout(ctx context.Context, userID int64, req dto.CheckoutRequest) (*dto.OrderDTO, error)
	Cancel(ctx context.Context, orderID, userID int64) (*dto.OrderDTO, error)
	ChangeStatus(ctx context.Context, orderID int64, status string, actorID int64) (*dto.OrderDTO, error)
	Get(ctx context.Context, orderID int64, viewer usecase.Viewer) (*dto.OrderDTO, error)
	Visible(ctx context.Context, orderID int64, viewer usecase.Viewer) (*domain.Order, error)
	ListOwn(ctx context.Context, userID int64, page commons.Page) (*commons.PagedResponse[dto.OrderSummaryDTO], error)
	ListAll(ctx context.Context, status string, page commons.Page) (*commons.PagedResponse[dto.OrderSummaryDTO], error)
}

// Watcher streams status changes of one order over a websocket.
type Watcher interface {
	Attach(ctx context.Context, conn *websocket.Conn, orderID int64, current domain.OrderStatus)
}

type Controller struct {
	useCase  UseCase
	watcher  Watcher
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewController(useCase UseCase, watcher Watcher, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		watcher: watcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

func viewerOf(r *http.Request) usecase.Viewer {
	session, _ := auth.SessionFromContext(r.Context())
	return usecase.Viewer{UserID: session.UserID, IsAdmin: session.IsAdmin()}
}

func (c *Controller) Checkout(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	var req dto.CheckoutRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	if err := validateCheckout(req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	order, err := c.useCase.Checkout(r.Context(), session.UserID, req)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	c.logger.Info("order placed",
		zap.String("traceId", commons.TraceID(r.Context())),
		zap.Int64("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber),
	)
	commons.WriteJSON(w, http.StatusCreated, order, c.logger)
}

func validateCheckout(req dto.CheckoutRequest) error {
	var details []apperrors.ValidationDetail

	if len(req.Items) == 0 {
		details = append(details, apperrors.ValidationDetail{Field: "items", Message: "items must not be empty"})
	}
	if len(req.Items) > maxCheckoutItems {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items exceeds maximum of " + strconv.Itoa(maxCheckoutItems),
		})
	}

	seen := make(map[int64]bool)
	for idx, item := range req.Items {
		prefix := "items[" + strconv.Itoa(idx) + "]"
		if item.ProductID <= 0 {
			details = append(details, apperrors.ValidationDetail{Field: prefix + ".productId", Message: "each productId must be a positive integer"})
		}
		if seen[item.ProductID] {
			details = append(details, apperrors.ValidationDetail{Field: prefix + ".productId", Message: "productId must not be duplicated"})
		}
		seen[item.ProductID] = true

		if item.Quantity < 1 || item.Quantity > maxItemQuantity {
			details = append(details, apperrors.ValidationDetail{
				Field:   prefix + ".quantity",
				Message: "quantity must be between 1 and " + strconv.Itoa(maxItemQuantity),
			})
		}
	}

	switch {
	case req.AddressID != nil:
		if *req.AddressID <= 0 {
			details = append(details, apperrors.ValidationDetail{Field: "addressId", Message: "addressId must be a positive integer"})
		}
	case req.Delivery != nil:
		required := []struct{ field, value string }{
			{"delivery.recipientName", req.Delivery.RecipientName},
			{"delivery.phone", req.Delivery.Phone},
			{"delivery.street", req.Delivery.Street},
			{"delivery.city", req.Delivery.City},
			{"delivery.postalCode", req.Delivery.PostalCode},
		}
		for _, f := range required {
			if strings.TrimSpace(f.value) == "" {
				details = append(details, apperrors.ValidationDetail{Field: f.field, Message: f.field + " is required"})
			}
		}
	default:
		details = append(details, apperrors.ValidationDetail{Field: "addressId", Message: "addressId or delivery is required"})
	}

	if req.GiftMessage != nil && len(*req.GiftMessage) > 500 {
		details = append(details, apperrors.ValidationDetail{Field: "giftMessage", Message: "giftMessage must be at most 500 characters"})
	}
	if req.Notes != nil && len(*req.Notes) > 1000 {
		details = append(details, apperrors.ValidationDetail{Field: "notes", Message: "notes must be at most 1000 characters"})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	page, err := commons.ParsePage(r)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.ListOwn(r.Context(), session.UserID, page)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	order, err := c.useCase.Get(r.Context(), orderID, viewerOf(r))
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, order, c.logger)
}

func (c *Controller) Cancel(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	orderID, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	order, err := c.useCase.Cancel(r.Context(), orderID, session.UserID)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, order, c.logger)
}

func (c *Controller) AdminList(w http.ResponseWriter, r *http.Request) {
	page, err := commons.ParsePage(r)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.ListAll(r.Context(), r.URL.Query().Get("status"), page)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *Controller) AdminSetStatus(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	orderID, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	var req dto.StatusRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		commons.WriteValidationError(w, r, c.logger, "validation failed", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status is required",
		})
		return
	}

	order, err := c.useCase.ChangeStatus(r.Context(), orderID, req.Status, session.UserID)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, order, c.logger)
}

// Watch upgrades to a websocket that receives {orderId, status} messages.
func (c *Controller) Watch(w http.ResponseWriter, r *http.Request) {
	orderID, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	order, err := c.useCase.Visible(r.Context(), orderID, viewerOf(r))
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		c.logger.Warn("websocket upgrade failed", zap.Int64("orderId", order.ID), zap.Error(err))
		return
	}

	c.watcher.Attach(r.Context(), conn, order.ID, order.Status)
}
