package controller

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"bloom/internal/commons"
	"bloom/internal/domain"
	"bloom/internal/dto"
	apperrors "bloom/internal/errors"
)

type AdminUseCase interface {
	ListProducts(ctx context.Context, f domain.ProductFilter, page commons.Page) (*commons.PagedResponse[dto.ProductDTO], error)
	CreateProduct(ctx context.Context, req dto.ProductRequest) (*dto.ProductDTO, error)
	UpdateProduct(ctx context.Context, id int64, req dto.ProductRequest) (*dto.ProductDTO, error)
	SetStock(ctx context.Context, id int64, stock int) (*dto.ProductDTO, error)
	DeleteProduct(ctx context.Context, id int64) error
	CreateCategory(ctx context.Context, req dto.CategoryRequest) (*dto.CategoryDTO, error)
	UpdateCategory(ctx context.Context, id int64, req dto.CategoryRequest) (*dto.CategoryDTO, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type AdminController struct {
	useCase AdminUseCase
	logger  *zap.Logger
}

func NewAdminController(useCase AdminUseCase, logger *zap.Logger) *AdminController {
	return &AdminController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *AdminController) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, page, err := parseProductQuery(r)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	filter.IncludeInactive = true

	resp, err := c.useCase.ListProducts(r.Context(), filter, page)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *AdminController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	if err := validateProductRequest(req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.CreateProduct(r.Context(), req)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusCreated, resp, c.logger)
}

func (c *AdminController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	var req dto.ProductRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	if err := validateProductRequest(req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.UpdateProduct(r.Context(), id, req)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *AdminController) SetStock(w http.ResponseWriter, r *http.Request) {
	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	var req dto.StockRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	if req.Stock == nil || *req.Stock < 0 {
		commons.WriteValidationError(w, r, c.logger, "validation failed", apperrors.ValidationDetail{
			Field:   "stock",
			Message: "stock is required and must be zero or greater",
		})
		return
	}

	resp, err := c.useCase.SetStock(r.Context(), id, *req.Stock)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *AdminController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	if err := c.useCase.DeleteProduct(r.Context(), id); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *AdminController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	if err := validateCategoryRequest(req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.CreateCategory(r.Context(), req)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusCreated, resp, c.logger)
}

func (c *AdminController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	var req dto.CategoryRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	if err := validateCategoryRequest(req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	resp, err := c.useCase.UpdateCategory(r.Context(), id, req)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, resp, c.logger)
}

func (c *AdminController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	if err := c.useCase.DeleteCategory(r.Context(), id); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateProductRequest(req dto.ProductRequest) error {
	var details []apperrors.ValidationDetail

	if strings.TrimSpace(req.Name) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	} else if len(req.Name) > 200 {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name must be at most 200 characters"})
	}

	if !req.Price.IsPositive() {
		details = append(details, apperrors.ValidationDetail{Field: "price", Message: "price must be greater than zero"})
	}

	if req.CompareAtPrice.Valid && !req.CompareAtPrice.Decimal.GreaterThan(req.Price) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "compareAtPrice",
			Message: "compareAtPrice must be greater than price",
		})
	}

	if req.Stock < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "stock", Message: "stock must be zero or greater"})
	}

	if req.CategoryID != nil && *req.CategoryID <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "categoryId", Message: "categoryId must be a positive integer"})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func validateCategoryRequest(req dto.CategoryRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		})
	}
	return nil
}
