package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	couponservice "bloom/internal/coupon/service"
	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

const MaxLineQuantity = 100

type Repository interface {
	Items(ctx context.Context, userID int64) (map[int64]int, error)
	Set(ctx context.Context, userID, productID int64, quantity int) error
	Remove(ctx context.Context, userID int64, productIDs ...int64) error
	Clear(ctx context.Context, userID int64) error
}

type ProductReader interface {
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
}

type CouponValidator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*couponservice.Quote, error)
}

type SettingsReader interface {
	Get(ctx context.Context) (*domain.Settings, error)
}

type Line struct {
	Product  domain.Product
	Quantity int
}

func (l Line) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Lines    []Line
	Subtotal decimal.Decimal
}

type Quote struct {
	CouponCode *string
	domain.Totals
}

type CartService struct {
	repo     Repository
	products ProductReader
	coupons  CouponValidator
	settings SettingsReader
	logger   *zap.Logger
}

func NewCartService(repo Repository, products ProductReader, coupons CouponValidator, settings SettingsReader, logger *zap.Logger) *CartService {
	return &CartService{repo: repo, products: products, coupons: coupons, settings: settings, logger: logger}
}

// Get joins the stored quantities with current product data. Lines whose
// product was deleted or deactivated are dropped from the cart.
func (s *CartService) Get(ctx context.Context, userID int64) (*Cart, error) {
	items, err := s.repo.Items(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart := &Cart{Lines: []Line{}, Subtotal: decimal.Zero}
	if len(items) == 0 {
		return cart, nil
	}

	ids := make([]int64, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	found := make(map[int64]bool, len(products))
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		found[p.ID] = true
		line := Line{Product: p, Quantity: items[p.ID]}
		cart.Lines = append(cart.Lines, line)
		cart.Subtotal = cart.Subtotal.Add(line.Total())
	}

	var stale []int64
	for _, id := range ids {
		if !found[id] {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := s.repo.Remove(ctx, userID, stale...); err != nil {
			s.logger.Warn("failed to drop stale cart lines", zap.Int64("userId", userID), zap.Error(err))
		}
	}

	sort.Slice(cart.Lines, func(i, j int) bool { return cart.Lines[i].Product.ID < cart.Lines[j].Product.ID })
	return cart, nil
}

// SetItem sets the quantity of a product; zero removes the line.
func (s *CartService) SetItem(ctx context.Context, userID, productID int64, quantity int) (*Cart, error) {
	if quantity < 0 || quantity > MaxLineQuantity {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: fmt.Sprintf("quantity must be between 0 and %d", MaxLineQuantity),
		})
	}

	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", productID))
	}
	if quantity > product.Stock {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: fmt.Sprintf("only %d of %s in stock", product.Stock, product.Name),
		})
	}

	if err := s.repo.Set(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) (*Cart, error) {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}

// Quote prices the current cart with an optional coupon and the store shipping rules.
func (s *CartService) Quote(ctx context.Context, userID int64, couponCode string) (*Quote, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, apperrors.NewValidationError("cart is empty")
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	quote := &Quote{}
	discount := decimal.Zero
	if code := strings.TrimSpace(couponCode); code != "" {
		cq, err := s.coupons.Validate(ctx, code, cart.Subtotal)
		if err != nil {
			return nil, err
		}
		discount = cq.Discount
		quote.CouponCode = &cq.Coupon.Code
	}

	quote.Totals = domain.CalculateTotals(cart.Subtotal, discount, *settings)
	return quote, nil
}
