package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bloom/internal/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func intPtr(i int) *int {
	return &i
}

func TestCoupon_Discount(t *testing.T) {
	tests := []struct {
		name     string
		coupon   Coupon
		subtotal string
		want     string
	}{
		{
			name:     "percentage without cap",
			coupon:   Coupon{Type: CouponPercentage, Value: dec("10")},
			subtotal: "250.00",
			want:     "25.00",
		},
		{
			name:     "percentage capped by max discount",
			coupon:   Coupon{Type: CouponPercentage, Value: dec("50"), MaxDiscount: nullDec("20")},
			subtotal: "100.00",
			want:     "20.00",
		},
		{
			name:     "percentage below cap",
			coupon:   Coupon{Type: CouponPercentage, Value: dec("15"), MaxDiscount: nullDec("100")},
			subtotal: "80.00",
			want:     "12.00",
		},
		{
			name:     "percentage rounds to cents",
			coupon:   Coupon{Type: CouponPercentage, Value: dec("15")},
			subtotal: "33.33",
			want:     "5.00",
		},
		{
			name:     "fixed amount",
			coupon:   Coupon{Type: CouponFixed, Value: dec("15")},
			subtotal: "60.00",
			want:     "15.00",
		},
		{
			name:     "fixed amount clamped to subtotal",
			coupon:   Coupon{Type: CouponFixed, Value: dec("50")},
			subtotal: "30.00",
			want:     "30.00",
		},
		{
			name:     "zero subtotal",
			coupon:   Coupon{Type: CouponFixed, Value: dec("10")},
			subtotal: "0",
			want:     "0.00",
		},
		{
			name:     "unknown type",
			coupon:   Coupon{Type: "BOGO", Value: dec("10")},
			subtotal: "10",
			want:     "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.coupon.Discount(dec(tt.subtotal))
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestCoupon_Discount_NeverExceedsSubtotal(t *testing.T) {
	subtotals := []string{"0.01", "1", "9.99", "49.50", "100", "1234.56"}
	coupons := []Coupon{
		{Type: CouponPercentage, Value: dec("100")},
		{Type: CouponPercentage, Value: dec("35"), MaxDiscount: nullDec("40")},
		{Type: CouponFixed, Value: dec("5")},
		{Type: CouponFixed, Value: dec("5000")},
	}

	for _, c := range coupons {
		for _, s := range subtotals {
			subtotal := dec(s)
			d := c.Discount(subtotal)
			assert.True(t, d.LessThanOrEqual(subtotal), "%s %s on %s gave %s", c.Type, c.Value, s, d)
			assert.False(t, d.IsNegative())
			if c.Type == CouponPercentage && c.MaxDiscount.Valid {
				assert.True(t, d.LessThanOrEqual(c.MaxDiscount.Decimal))
			}
		}
	}
}

func TestCoupon_Validate(t *testing.T) {
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	base := Coupon{Code: "LOVE10", Type: CouponPercentage, Value: dec("10"), IsActive: true}

	tests := []struct {
		name     string
		mutate   func(c *Coupon)
		subtotal string
		reason   string
	}{
		{name: "valid", mutate: func(c *Coupon) {}, subtotal: "50"},
		{name: "inside window", mutate: func(c *Coupon) { c.StartDate = &yesterday; c.EndDate = &tomorrow }, subtotal: "50"},
		{name: "inactive", mutate: func(c *Coupon) { c.IsActive = false }, subtotal: "50", reason: ReasonCouponInactive},
		{name: "not started", mutate: func(c *Coupon) { c.StartDate = &tomorrow }, subtotal: "50", reason: ReasonCouponNotStarted},
		{name: "expired", mutate: func(c *Coupon) { c.EndDate = &yesterday }, subtotal: "50", reason: ReasonCouponExpired},
		{name: "usage exceeded", mutate: func(c *Coupon) { c.UsageLimit = intPtr(3); c.UsedCount = 3 }, subtotal: "50", reason: ReasonCouponUsageExceeded},
		{name: "usage left", mutate: func(c *Coupon) { c.UsageLimit = intPtr(3); c.UsedCount = 2 }, subtotal: "50"},
		{name: "below min purchase", mutate: func(c *Coupon) { c.MinPurchase = nullDec("75") }, subtotal: "74.99", reason: ReasonCouponMinPurchase},
		{name: "exactly min purchase", mutate: func(c *Coupon) { c.MinPurchase = nullDec("75") }, subtotal: "75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)

			err := c.Validate(dec(tt.subtotal), now)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			ve, ok := apperrors.IsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, tt.reason, ve.Code)
		})
	}
}

func TestCoupon_Remaining(t *testing.T) {
	assert.Nil(t, Coupon{}.Remaining())
	assert.Equal(t, 2, *Coupon{UsageLimit: intPtr(5), UsedCount: 3}.Remaining())
	assert.Equal(t, 0, *Coupon{UsageLimit: intPtr(1), UsedCount: 4}.Remaining())
}

func TestNormalizeCouponCode(t *testing.T) {
	assert.Equal(t, "SPRING20", NormalizeCouponCode("  spring20 "))
}

func TestParseCouponType(t *testing.T) {
	ct, ok := ParseCouponType("percentage")
	assert.True(t, ok)
	assert.Equal(t, CouponPercentage, ct)

	_, ok = ParseCouponType("free")
	assert.False(t, ok)
}
