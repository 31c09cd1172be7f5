package controller

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"bloom/internal/auth"
	"bloom/internal/cart/service"
	"bloom/internal/commons"
	"bloom/internal/dto"
	apperrors "bloom/internal/errors"
)

type Service interface {
	Get(ctx context.Context, userID int64) (*service.Cart, error)
	SetItem(ctx context.Context, userID, productID int64, quantity int) (*service.Cart, error)
	RemoveItem(ctx context.Context, userID, productID int64) (*service.Cart, error)
	Clear(ctx context.Context, userID int64) error
	Quote(ctx context.Context, userID int64, couponCode string) (*service.Quote, error)
}

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{service: service, logger: logger}
}

func toCartDTO(c *service.Cart) dto.CartDTO {
	out := dto.CartDTO{Items: make([]dto.CartLineDTO, 0, len(c.Lines)), Subtotal: dto.NewMoney(c.Subtotal)}
	for _, l := range c.Lines {
		out.Items = append(out.Items, dto.CartLineDTO{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Slug:      l.Product.Slug,
			ImageURL:  l.Product.ImageURL,
			UnitPrice: dto.NewMoney(l.Product.Price),
			Stock:     l.Product.Stock,
			Quantity:  l.Quantity,
			LineTotal: dto.NewMoney(l.Total()),
		})
		out.ItemCount += l.Quantity
	}
	return out
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	cart, err := c.service.Get(r.Context(), session.UserID)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, toCartDTO(cart), c.logger)
}

func (c *Controller) SetItem(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	var req dto.CartItemRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	var details []apperrors.ValidationDetail
	if req.ProductID <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "productId", Message: "productId must be a positive integer"})
	}
	if req.Quantity == nil {
		details = append(details, apperrors.ValidationDetail{Field: "quantity", Message: "quantity is required"})
	}
	if len(details) > 0 {
		commons.WriteValidationError(w, r, c.logger, "validation failed", details...)
		return
	}

	cart, err := c.service.SetItem(r.Context(), session.UserID, req.ProductID, *req.Quantity)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, toCartDTO(cart), c.logger)
}

func (c *Controller) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	productID, err := commons.PathID(r, "productId")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	cart, err := c.service.RemoveItem(r.Context(), session.UserID, productID)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, toCartDTO(cart), c.logger)
}

func (c *Controller) Clear(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	if err := c.service.Clear(r.Context(), session.UserID); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) Quote(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	var req dto.CartQuoteRequest
	if r.ContentLength != 0 {
		if err := commons.DecodeJSON(r, &req); err != nil {
			commons.WriteError(w, r, c.logger, err)
			return
		}
	}

	q, err := c.service.Quote(r.Context(), session.UserID, req.CouponCode)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.QuoteDTO{
		CouponCode: q.CouponCode,
		Subtotal:   dto.NewMoney(q.Subtotal),
		Discount:   dto.NewMoney(q.Discount),
		Shipping:   dto.NewMoney(q.Shipping),
		Total:      dto.NewMoney(q.Total),
	}, c.logger)
}
