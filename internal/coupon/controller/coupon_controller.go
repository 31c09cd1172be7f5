package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bloom/internal/commons"
	"bloom/internal/coupon/service"
	"bloom/internal/domain"
	"bloom/internal/dto"
	apperrors "bloom/internal/errors"
)

type Service interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*service.Quote, error)
	List(ctx context.Context, limit, offset int) ([]domain.Coupon, int, error)
	Create(ctx context.Context, c domain.Coupon) (*domain.Coupon, error)
	Update(ctx context.Context, id int64, c domain.Coupon) (*domain.Coupon, error)
	Delete(ctx context.Context, id int64) error
}

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{service: service, logger: logger}
}

// Validate answers POST /api/coupons/validate. A rejected coupon is a 400
// whose error code names the failed rule.
func (c *Controller) Validate(w http.ResponseWriter, r *http.Request) {
	var req dto.CouponValidateRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		commons.WriteValidationError(w, r, c.logger, "validation failed", apperrors.ValidationDetail{
			Field:   "code",
			Message: "code is required",
		})
		return
	}

	quote, err := c.service.Validate(r.Context(), req.Code, req.Subtotal)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.CouponValidateResponse{
		Code:     quote.Coupon.Code,
		Type:     string(quote.Coupon.Type),
		Value:    dto.NewMoney(quote.Coupon.Value),
		Discount: dto.NewMoney(quote.Discount),
		Total:    dto.NewMoney(quote.Total),
	}, c.logger)
}

func (c *Controller) AdminList(w http.ResponseWriter, r *http.Request) {
	page, err := commons.ParsePage(r)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	coupons, total, err := c.service.List(r.Context(), page.Limit, page.Offset())
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	items := make([]dto.CouponDTO, 0, len(coupons))
	for _, cp := range coupons {
		items = append(items, dto.FromCoupon(cp))
	}
	commons.WriteJSON(w, http.StatusOK, commons.NewPagedResponse(items, total, page), c.logger)
}

func (c *Controller) AdminCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CouponRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	coupon, err := c.service.Create(r.Context(), req.ToDomain())
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusCreated, dto.FromCoupon(*coupon), c.logger)
}

func (c *Controller) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	var req dto.CouponRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	coupon, err := c.service.Update(r.Context(), id, req.ToDomain())
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.FromCoupon(*coupon), c.logger)
}

func (c *Controller) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	if err := c.service.Delete(r.Context(), id); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
