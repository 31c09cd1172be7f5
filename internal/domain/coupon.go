package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "bloom/internal/errors"
)

type CouponType string

const (
	CouponPercentage CouponType = "PERCENTAGE"
	CouponFixed      CouponType = "FIXED"
)

func ParseCouponType(s string) (CouponType, bool) {
	switch CouponType(strings.ToUpper(s)) {
	case CouponPercentage:
		return CouponPercentage, true
	case CouponFixed:
		return CouponFixed, true
	}
	return "", false
}

const (
	ReasonCouponInactive      = "COUPON_INACTIVE"
	ReasonCouponNotStarted    = "COUPON_NOT_STARTED"
	ReasonCouponExpired       = "COUPON_EXPIRED"
	ReasonCouponUsageExceeded = "COUPON_USAGE_EXCEEDED"
	ReasonCouponMinPurchase   = "COUPON_MIN_PURCHASE"
)

var hundred = decimal.NewFromInt(100)

type Coupon struct {
	ID          int64
	Code        string
	Description string
	Type        CouponType
	Value       decimal.Decimal
	MinPurchase decimal.NullDecimal
	MaxDiscount decimal.NullDecimal
	UsageLimit  *int
	UsedCount   int
	StartDate   *time.Time
	EndDate     *time.Time
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeCouponCode makes codes case-insensitive.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks that the coupon can be applied to subtotal at now.
// Rejections are rule errors whose code names the failed check.
func (c Coupon) Validate(subtotal decimal.Decimal, now time.Time) error {
	if !c.IsActive {
		return apperrors.NewRuleError(ReasonCouponInactive, "coupon is not active")
	}
	if c.StartDate != nil && now.Before(*c.StartDate) {
		return apperrors.NewRuleError(ReasonCouponNotStarted, "coupon is not valid yet")
	}
	if c.EndDate != nil && now.After(*c.EndDate) {
		return apperrors.NewRuleError(ReasonCouponExpired, "coupon has expired")
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return apperrors.NewRuleError(ReasonCouponUsageExceeded, "coupon usage limit reached")
	}
	if c.MinPurchase.Valid && subtotal.LessThan(c.MinPurchase.Decimal) {
		return apperrors.NewRuleError(ReasonCouponMinPurchase,
			fmt.Sprintf("minimum purchase of %s required", c.MinPurchase.Decimal.StringFixed(2)))
	}
	return nil
}

// Discount returns the amount taken off subtotal. It never exceeds subtotal
// and never goes below zero.
func (c Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch c.Type {
	case CouponPercentage:
		discount = subtotal.Mul(c.Value).Div(hundred).Round(2)
		if c.MaxDiscount.Valid && discount.GreaterThan(c.MaxDiscount.Decimal) {
			discount = c.MaxDiscount.Decimal
		}
	case CouponFixed:
		discount = c.Value
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(discount, subtotal)
}

// Remaining is the number of redemptions left, nil when unlimited.
func (c Coupon) Remaining() *int {
	if c.UsageLimit == nil {
		return nil
	}
	left := *c.UsageLimit - c.UsedCount
	if left < 0 {
		left = 0
	}
	return &left
}
