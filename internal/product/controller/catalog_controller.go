package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bloom/internal/commons"
	"bloom/internal/domain"
	"bloom/internal/dto"
	apperrors "bloom/internal/errors"
)

type CatalogUseCase interface {
	ListProducts(ctx context.Context, f domain.ProductFilter, page commons.Page) (*commons.PagedResponse[dto.ProductDTO], error)
	GetProduct(ctx context.Context, slug string) (*dto.ProductDetailDTO, error)
	ListCategories(ctx context.Context) ([]dto.CategoryDTO, error)
	GetCategory(ctx context.Context, slug string) (*dto.CategoryDTO, error)
}

type CatalogController struct {
	useCase CatalogUseCase
	logger  *zap.Logger
}

func NewCatalogController(useCase CatalogUseCase, logger *zap.Logger) *CatalogController {
	return &CatalogController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *CatalogController) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, page, err := parseProductQuery(r)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.ListProducts(r.Context(), filter, page)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

// GetProduct serves /api/products/{product}, where product is the slug. The
// param shares its name with the review routes nested under the same path.
func (c *CatalogController) GetProduct(w http.ResponseWriter, r *http.Request) {
	resp, err := c.useCase.GetProduct(r.Context(), chi.URLParam(r, "product"))
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *CatalogController) ListCategories(w http.ResponseWriter, r *http.Request) {
	resp, err := c.useCase.ListCategories(r.Context())
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *CatalogController) GetCategory(w http.ResponseWriter, r *http.Request) {
	resp, err := c.useCase.GetCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

// parseProductQuery reads the storefront listing filters from the query string.
func parseProductQuery(r *http.Request) (domain.ProductFilter, commons.Page, error) {
	page, pageErr := commons.ParsePage(r)

	var details []apperrors.ValidationDetail
	if ve, ok := apperrors.IsValidationError(pageErr); ok {
		details = append(details, ve.Details...)
	}

	q := r.URL.Query()
	filter := domain.ProductFilter{
		CategorySlug: q.Get("category"),
		Query:        q.Get("q"),
	}

	sort, ok := domain.ParseProductSort(q.Get("sort"))
	if !ok {
		details = append(details, apperrors.ValidationDetail{
			Field:   "sort",
			Message: "sort must be one of newest, price_asc, price_desc, name",
		})
	}
	filter.Sort = sort

	for _, bound := range []struct {
		name string
		dst  *decimal.NullDecimal
	}{
		{"minPrice", &filter.MinPrice},
		{"maxPrice", &filter.MaxPrice},
	} {
		raw := q.Get(bound.name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			details = append(details, apperrors.ValidationDetail{
				Field:   bound.name,
				Message: bound.name + " must be a non-negative number",
			})
			continue
		}
		*bound.dst = decimal.NewNullDecimal(d)
	}

	if raw := q.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{Field: "featured", Message: "featured must be true or false"})
		} else {
			filter.Featured = &featured
		}
	}
	if raw := q.Get("inStock"); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{Field: "inStock", Message: "inStock must be true or false"})
		} else {
			filter.InStock = inStock
		}
	}

	if len(details) > 0 {
		return filter, page, apperrors.NewValidationError("validation failed", details...)
	}
	return filter, page, nil
}
