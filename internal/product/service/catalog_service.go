package service

import (
	"context"

	"go.uber.org/zap"

	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

type ProductRepository interface {
	List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	SetStock(ctx context.Context, id int64, stock int) error
	Delete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id int64) error
}

type CatalogService struct {
	products   ProductRepository
	categories CategoryRepository
	logger     *zap.Logger
}

func NewCatalogService(products ProductRepository, categories CategoryRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		logger:     logger,
	}
}

func (s *CatalogService) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	return s.products.List(ctx, f)
}

// GetActiveProduct hides inactive products from the storefront.
func (s *CatalogService) GetActiveProduct(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, apperrors.NewNotFoundError("product " + slug + " not found")
	}
	return p, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *domain.Product) error {
	if err := s.prepareProduct(ctx, p); err != nil {
		return err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return err
	}

	s.logger.Info("product created", zap.Int64("productId", p.ID), zap.String("slug", p.Slug))
	return nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p *domain.Product) error {
	if _, err := s.products.FindByID(ctx, p.ID); err != nil {
		return err
	}
	if err := s.prepareProduct(ctx, p); err != nil {
		return err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return err
	}

	s.logger.Info("product updated", zap.Int64("productId", p.ID))
	return nil
}

func (s *CatalogService) SetStock(ctx context.Context, id int64, stock int) (*domain.Product, error) {
	if stock < 0 {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "stock",
			Message: "stock must be zero or greater",
		})
	}
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.products.SetStock(ctx, id, stock); err != nil {
		return nil, err
	}

	s.logger.Info("product stock set", zap.Int64("productId", id), zap.Int("stock", stock))
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.Int64("productId", id))
	return nil
}

func (s *CatalogService) prepareProduct(ctx context.Context, p *domain.Product) error {
	slug, err := resolveSlug(p.Slug, p.Name)
	if err != nil {
		return err
	}
	p.Slug = slug

	if p.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *p.CategoryID); err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
					Field:   "categoryId",
					Message: "category does not exist",
				})
			}
			return err
		}
	}
	return nil
}

// resolveSlug normalizes an explicit slug or derives one from name.
func resolveSlug(slug, name string) (string, error) {
	source := slug
	if source == "" {
		source = name
	}
	out := domain.Slugify(source)
	if out == "" {
		return "", apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "slug",
			Message: "slug must contain letters or digits",
		})
	}
	return out, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, slug string) (*domain.Category, error) {
	return s.categories.FindBySlug(ctx, slug)
}

func (s *CatalogService) CreateCategory(ctx context.Context, c *domain.Category) error {
	slug, err := resolveSlug(c.Slug, c.Name)
	if err != nil {
		return err
	}
	c.Slug = slug

	if err := s.categories.Create(ctx, c); err != nil {
		return err
	}
	s.logger.Info("category created", zap.Int64("categoryId", c.ID), zap.String("slug", c.Slug))
	return nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, c *domain.Category) error {
	if _, err := s.categories.FindByID(ctx, c.ID); err != nil {
		return err
	}
	slug, err := resolveSlug(c.Slug, c.Name)
	if err != nil {
		return err
	}
	c.Slug = slug

	if err := s.categories.Update(ctx, c); err != nil {
		return err
	}
	s.logger.Info("category updated", zap.Int64("categoryId", c.ID))
	return nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("category deleted", zap.Int64("categoryId", id))
	return nil
}
