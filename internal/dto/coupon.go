package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"bloom/internal/domain"
)

type CouponValidateRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CouponValidateResponse struct {
	Code     string `json:"code"`
	Type     string `json:"type"`
	Value    Money  `json:"value"`
	Discount Money  `json:"discount"`
	Total    Money  `json:"total"`
}

type CouponRequest struct {
	Code        string              `json:"code"`
	Description string              `json:"description"`
	Type        string              `json:"type"`
	Value       decimal.Decimal     `json:"value"`
	MinPurchase decimal.NullDecimal `json:"minPurchase"`
	MaxDiscount decimal.NullDecimal `json:"maxDiscount"`
	UsageLimit  *int                `json:"usageLimit"`
	StartDate   *time.Time          `json:"startDate"`
	EndDate     *time.Time          `json:"endDate"`
	IsActive    *bool               `json:"isActive"`
}

func (r CouponRequest) ToDomain() domain.Coupon {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	couponType, _ := domain.ParseCouponType(r.Type)
	if couponType == "" {
		couponType = domain.CouponType(r.Type)
	}
	return domain.Coupon{
		Code:        r.Code,
		Description: r.Description,
		Type:        couponType,
		Value:       r.Value,
		MinPurchase: r.MinPurchase,
		MaxDiscount: r.MaxDiscount,
		UsageLimit:  r.UsageLimit,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		IsActive:    active,
	}
}

type CouponDTO struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Value       Money      `json:"value"`
	MinPurchase *Money     `json:"minPurchase"`
	MaxDiscount *Money     `json:"maxDiscount"`
	UsageLimit  *int       `json:"usageLimit"`
	UsedCount   int        `json:"usedCount"`
	Remaining   *int       `json:"remaining"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func FromCoupon(c domain.Coupon) CouponDTO {
	return CouponDTO{
		ID:          c.ID,
		Code:        c.Code,
		Description: c.Description,
		Type:        string(c.Type),
		Value:       NewMoney(c.Value),
		MinPurchase: NewNullMoney(c.MinPurchase),
		MaxDiscount: NewNullMoney(c.MaxDiscount),
		UsageLimit:  c.UsageLimit,
		UsedCount:   c.UsedCount,
		Remaining:   c.Remaining(),
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
	}
}
