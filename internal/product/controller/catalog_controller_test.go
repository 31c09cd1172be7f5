package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bloom/internal/commons"
	"bloom/internal/domain"
	"bloom/internal/dto"
	apperrors "bloom/internal/errors"
)

type mockCatalogUseCase struct {
	ListProductsFunc   func(ctx context.Context, f domain.ProductFilter, page commons.Page) (*commons.PagedResponse[dto.ProductDTO], error)
	GetProductFunc     func(ctx context.Context, slug string) (*dto.ProductDetailDTO, error)
	ListCategoriesFunc func(ctx context.Context) ([]dto.CategoryDTO, error)
	GetCategoryFunc    func(ctx context.Context, slug string) (*dto.CategoryDTO, error)
}

func (m *mockCatalogUseCase) ListProducts(ctx context.Context, f domain.ProductFilter, page commons.Page) (*commons.PagedResponse[dto.ProductDTO], error) {
	return m.ListProductsFunc(ctx, f, page)
}

func (m *mockCatalogUseCase) GetProduct(ctx context.Context, slug string) (*dto.ProductDetailDTO, error) {
	return m.GetProductFunc(ctx, slug)
}

func (m *mockCatalogUseCase) ListCategories(ctx context.Context) ([]dto.CategoryDTO, error) {
	return m.ListCategoriesFunc(ctx)
}

func (m *mockCatalogUseCase) GetCategory(ctx context.Context, slug string) (*dto.CategoryDTO, error) {
	return m.GetCategoryFunc(ctx, slug)
}

func newCatalogRouter(uc CatalogUseCase) http.Handler {
	ctrl := NewCatalogController(uc, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/api/products", ctrl.ListProducts)
	r.Get("/api/products/{product}", ctrl.GetProduct)
	return r
}

func TestListProducts_ParsesFilters(t *testing.T) {
	var gotFilter domain.ProductFilter
	var gotPage commons.Page
	uc := &mockCatalogUseCase{
		ListProductsFunc: func(ctx context.Context, f domain.ProductFilter, page commons.Page) (*commons.PagedResponse[dto.ProductDTO], error) {
			gotFilter, gotPage = f, page
			resp := commons.NewPagedResponse([]dto.ProductDTO{}, 0, page)
			return &resp, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products?category=roses&q=red&minPrice=10&maxPrice=50.5&featured=true&inStock=true&sort=price_desc&page=2&limit=6", nil)
	newCatalogRouter(uc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "roses", gotFilter.CategorySlug)
	assert.Equal(t, "red", gotFilter.Query)
	assert.Equal(t, "10", gotFilter.MinPrice.Decimal.String())
	assert.Equal(t, "50.5", gotFilter.MaxPrice.Decimal.String())
	require.NotNil(t, gotFilter.Featured)
	assert.True(t, *gotFilter.Featured)
	assert.True(t, gotFilter.InStock)
	assert.Equal(t, domain.SortPriceDesc, gotFilter.Sort)
	assert.False(t, gotFilter.IncludeInactive)
	assert.Equal(t, commons.Page{Page: 2, Limit: 6}, gotPage)
}

func TestListProducts_InvalidQuery(t *testing.T) {
	uc := &mockCatalogUseCase{}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products?sort=random&minPrice=abc&limit=1000", nil)
	newCatalogRouter(uc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body commons.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "VALIDATION_ERROR", body.Error)
	assert.Len(t, body.Details, 3)
}

func TestGetProduct_NotFound(t *testing.T) {
	uc := &mockCatalogUseCase{
		GetProductFunc: func(ctx context.Context, slug string) (*dto.ProductDetailDTO, error) {
			return nil, apperrors.NewNotFoundError("product " + slug + " not found")
		},
	}

	rec := httptest.NewRecorder()
	newCatalogRouter(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/ghost", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "ghost"))
}
