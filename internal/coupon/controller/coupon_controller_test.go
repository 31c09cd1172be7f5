package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bloom/internal/commons"
	"bloom/internal/coupon/service"
	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

type mockService struct {
	Service
	ValidateFunc func(ctx context.Context, code string, subtotal decimal.Decimal) (*service.Quote, error)
}

func (m *mockService) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*service.Quote, error) {
	return m.ValidateFunc(ctx, code, subtotal)
}

func TestValidate_ReturnsDiscount(t *testing.T) {
	svc := &mockService{
		ValidateFunc: func(ctx context.Context, code string, subtotal decimal.Decimal) (*service.Quote, error) {
			assert.True(t, subtotal.Equal(decimal.RequireFromString("80.00")))
			return &service.Quote{
				Coupon:   domain.Coupon{Code: "SPRING", Type: domain.CouponFixed, Value: decimal.NewFromInt(10)},
				Discount: decimal.NewFromInt(10),
				Total:    decimal.NewFromInt(70),
			}, nil
		},
	}
	ctrl := NewController(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Validate(rec, httptest.NewRequest(http.MethodPost, "/api/coupons/validate", strings.NewReader(`{"code":"spring","subtotal":80.00}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":"SPRING","type":"FIXED","value":10.00,"discount":10.00,"total":70.00}`, rec.Body.String())
}

func TestValidate_RuleRejection(t *testing.T) {
	svc := &mockService{
		ValidateFunc: func(ctx context.Context, code string, subtotal decimal.Decimal) (*service.Quote, error) {
			return nil, apperrors.NewRuleError(domain.ReasonCouponMinPurchase, "minimum purchase of 50.00 required")
		},
	}
	ctrl := NewController(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Validate(rec, httptest.NewRequest(http.MethodPost, "/api/coupons/validate", strings.NewReader(`{"code":"BIG","subtotal":"20"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body commons.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, domain.ReasonCouponMinPurchase, body.Error)
}

func TestValidate_MissingCode(t *testing.T) {
	ctrl := NewController(&mockService{}, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Validate(rec, httptest.NewRequest(http.MethodPost, "/api/coupons/validate", strings.NewReader(`{"subtotal":20}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
