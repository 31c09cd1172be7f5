package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	couponservice "bloom/internal/coupon/service"
	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

type memoryCart struct {
	items map[int64]int
}

func (m *memoryCart) Items(ctx context.Context, userID int64) (map[int64]int, error) {
	out := map[int64]int{}
	for k, v := range m.items {
		out[k] = v
	}
	return out, nil
}

func (m *memoryCart) Set(ctx context.Context, userID, productID int64, quantity int) error {
	m.items[productID] = quantity
	return nil
}

func (m *memoryCart) Remove(ctx context.Context, userID int64, productIDs ...int64) error {
	for _, id := range productIDs {
		delete(m.items, id)
	}
	return nil
}

func (m *memoryCart) Clear(ctx context.Context, userID int64) error {
	m.items = map[int64]int{}
	return nil
}

type memoryProducts map[int64]domain.Product

func (m memoryProducts) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := m[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	return &p, nil
}

func (m memoryProducts) FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := m[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockCoupons struct {
	ValidateFunc func(ctx context.Context, code string, subtotal decimal.Decimal) (*couponservice.Quote, error)
}

func (m *mockCoupons) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*couponservice.Quote, error) {
	return m.ValidateFunc(ctx, code, subtotal)
}

type fixedSettings domain.Settings

func (f fixedSettings) Get(ctx context.Context) (*domain.Settings, error) {
	s := domain.Settings(f)
	return &s, nil
}

func catalog() memoryProducts {
	return memoryProducts{
		1: {ID: 1, Name: "Red Roses", Price: decimal.RequireFromString("25.00"), Stock: 10, IsActive: true},
		2: {ID: 2, Name: "Tulips", Price: decimal.RequireFromString("12.50"), Stock: 2, IsActive: true},
		3: {ID: 3, Name: "Retired Lilies", Price: decimal.RequireFromString("9.00"), Stock: 5, IsActive: false},
	}
}

func newService(cart *memoryCart, coupons CouponValidator) *CartService {
	settings := fixedSettings{
		ShippingCost:          decimal.RequireFromString("6.00"),
		FreeShippingThreshold: decimal.NewNullDecimal(decimal.NewFromInt(100)),
	}
	return NewCartService(cart, catalog(), coupons, settings, zap.NewNop())
}

func TestGet_JoinsProductsAndDropsStaleLines(t *testing.T) {
	cart := &memoryCart{items: map[int64]int{1: 2, 2: 1, 3: 1, 99: 4}}
	svc := newService(cart, nil)

	got, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, got.Lines, 2)
	assert.Equal(t, int64(1), got.Lines[0].Product.ID)
	assert.True(t, got.Subtotal.Equal(decimal.RequireFromString("62.50")))
	assert.Equal(t, map[int64]int{1: 2, 2: 1}, cart.items)
}

func TestSetItem(t *testing.T) {
	tests := []struct {
		name      string
		productID int64
		quantity  int
		wantErr   func(error) bool
	}{
		{"adds line", 1, 3, nil},
		{"exceeds stock", 2, 3, func(err error) bool { _, ok := apperrors.IsValidationError(err); return ok }},
		{"negative", 1, -1, func(err error) bool { _, ok := apperrors.IsValidationError(err); return ok }},
		{"inactive product", 3, 1, func(err error) bool { _, ok := apperrors.IsNotFoundError(err); return ok }},
		{"unknown product", 42, 1, func(err error) bool { _, ok := apperrors.IsNotFoundError(err); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(&memoryCart{items: map[int64]int{}}, nil)
			_, err := svc.SetItem(context.Background(), 7, tt.productID, tt.quantity)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, tt.wantErr(err), "unexpected error %v", err)
		})
	}
}

func TestSetItem_ZeroRemoves(t *testing.T) {
	cart := &memoryCart{items: map[int64]int{1: 2}}
	svc := newService(cart, nil)

	got, err := svc.SetItem(context.Background(), 7, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, got.Lines)
	assert.Empty(t, cart.items)
}

func TestQuote_WithCouponAndShipping(t *testing.T) {
	coupons := &mockCoupons{
		ValidateFunc: func(ctx context.Context, code string, subtotal decimal.Decimal) (*couponservice.Quote, error) {
			assert.True(t, subtotal.Equal(decimal.NewFromInt(100)))
			return &couponservice.Quote{
				Coupon:   domain.Coupon{Code: "TEN"},
				Discount: decimal.NewFromInt(10),
			}, nil
		},
	}
	svc := newService(&memoryCart{items: map[int64]int{1: 4}}, coupons)

	q, err := svc.Quote(context.Background(), 7, "ten")
	require.NoError(t, err)

	require.NotNil(t, q.CouponCode)
	assert.Equal(t, "TEN", *q.CouponCode)
	// 90 after discount is under the free shipping threshold.
	assert.True(t, q.Shipping.Equal(decimal.RequireFromString("6.00")))
	assert.True(t, q.Total.Equal(decimal.RequireFromString("96.00")))
}

func TestQuote_FreeShippingWithoutCoupon(t *testing.T) {
	svc := newService(&memoryCart{items: map[int64]int{1: 4}}, nil)

	q, err := svc.Quote(context.Background(), 7, "")
	require.NoError(t, err)
	assert.Nil(t, q.CouponCode)
	assert.True(t, q.Shipping.IsZero())
	assert.True(t, q.Total.Equal(decimal.NewFromInt(100)))
}

func TestQuote_EmptyCart(t *testing.T) {
	svc := newService(&memoryCart{items: map[int64]int{}}, nil)

	_, err := svc.Quote(context.Background(), 7, "")
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}
