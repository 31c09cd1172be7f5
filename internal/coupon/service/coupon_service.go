package service

import (
	"context"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,40}$`)

type Repository interface {
	List(ctx context.Context, limit, offset int) ([]domain.Coupon, int, error)
	FindByID(ctx context.Context, id int64) (*domain.Coupon, error)
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)
	Create(ctx context.Context, c *domain.Coupon) error
	Update(ctx context.Context, c *domain.Coupon) error
	Delete(ctx context.Context, id int64) error
}

// Quote is the outcome of applying a coupon to a subtotal.
type Quote struct {
	Coupon   domain.Coupon
	Discount decimal.Decimal
	Total    decimal.Decimal
}

type CouponService struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewCouponService(repo Repository, logger *zap.Logger) *CouponService {
	return &CouponService{repo: repo, logger: logger, now: time.Now}
}

// Validate checks code against subtotal without redeeming it.
func (s *CouponService) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Quote, error) {
	if subtotal.IsNegative() {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "subtotal",
			Message: "subtotal must be zero or greater",
		})
	}

	c, err := s.repo.FindByCode(ctx, domain.NormalizeCouponCode(code))
	if err != nil {
		return nil, err
	}
	if err := c.Validate(subtotal, s.now()); err != nil {
		return nil, err
	}

	discount := c.Discount(subtotal)
	return &Quote{Coupon: *c, Discount: discount, Total: subtotal.Sub(discount)}, nil
}

func (s *CouponService) List(ctx context.Context, limit, offset int) ([]domain.Coupon, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *CouponService) Create(ctx context.Context, c domain.Coupon) (*domain.Coupon, error) {
	c.Code = domain.NormalizeCouponCode(c.Code)
	if err := ValidateCoupon(c); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, err
	}

	s.logger.Info("coupon created", zap.Int64("couponId", c.ID), zap.String("code", c.Code))
	return s.repo.FindByID(ctx, c.ID)
}

func (s *CouponService) Update(ctx context.Context, id int64, c domain.Coupon) (*domain.Coupon, error) {
	c.ID = id
	c.Code = domain.NormalizeCouponCode(c.Code)
	if err := ValidateCoupon(c); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &c); err != nil {
		return nil, err
	}

	s.logger.Info("coupon updated", zap.Int64("couponId", id))
	return s.repo.FindByID(ctx, id)
}

func (s *CouponService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("coupon deleted", zap.Int64("couponId", id))
	return nil
}

// ValidateCoupon checks the admin-editable fields of a coupon.
func ValidateCoupon(c domain.Coupon) error {
	var details []apperrors.ValidationDetail
	add := func(field, msg string) {
		details = append(details, apperrors.ValidationDetail{Field: field, Message: msg})
	}

	if !codePattern.MatchString(c.Code) {
		add("code", "code must be 3 to 40 letters, digits, dashes or underscores")
	}
	if _, ok := domain.ParseCouponType(string(c.Type)); !ok {
		add("type", "type must be PERCENTAGE or FIXED")
	}
	if !c.Value.IsPositive() {
		add("value", "value must be greater than zero")
	} else if c.Type == domain.CouponPercentage && c.Value.GreaterThan(decimal.NewFromInt(100)) {
		add("value", "percentage value must be at most 100")
	}
	if c.MinPurchase.Valid && c.MinPurchase.Decimal.IsNegative() {
		add("minPurchase", "minPurchase must be zero or greater")
	}
	if c.MaxDiscount.Valid && !c.MaxDiscount.Decimal.IsPositive() {
		add("maxDiscount", "maxDiscount must be greater than zero")
	}
	if c.UsageLimit != nil && *c.UsageLimit < 1 {
		add("usageLimit", "usageLimit must be at least 1")
	}
	if c.StartDate != nil && c.EndDate != nil && !c.EndDate.After(*c.StartDate) {
		add("endDate", "endDate must be after startDate")
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
