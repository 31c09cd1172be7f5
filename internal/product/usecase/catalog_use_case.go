package usecase

import (
	"context"

	"bloom/internal/commons"
	"bloom/internal/domain"
	"bloom/internal/dto"
)

type Service interface {
	ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error)
	GetActiveProduct(ctx context.Context, slug string) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	SetStock(ctx context.Context, id int64, stock int) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, slug string) (*domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id int64) error
}

type RatingReader interface {
	RatingFor(ctx context.Context, productID int64) (domain.ProductRating, error)
}

type CatalogUseCase struct {
	service Service
	ratings RatingReader
}

func NewCatalogUseCase(service Service, ratings RatingReader) *CatalogUseCase {
	return &CatalogUseCase{service: service, ratings: ratings}
}

func (uc *CatalogUseCase) ListProducts(ctx context.Context, f domain.ProductFilter, page commons.Page) (*commons.PagedResponse[dto.ProductDTO], error) {
	f.Limit = page.Limit
	f.Offset = page.Offset()

	products, total, err := uc.service.ListProducts(ctx, f)
	if err != nil {
		return nil, err
	}

	resp := commons.NewPagedResponse(dto.FromProducts(products), total, page)
	return &resp, nil
}

func (uc *CatalogUseCase) GetProduct(ctx context.Context, slug string) (*dto.ProductDetailDTO, error) {
	p, err := uc.service.GetActiveProduct(ctx, slug)
	if err != nil {
		return nil, err
	}

	rating, err := uc.ratings.RatingFor(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	return &dto.ProductDetailDTO{
		ProductDTO: dto.FromProduct(*p),
		Rating:     dto.RatingDTO{Average: rating.Average, Count: rating.Count},
	}, nil
}

func (uc *CatalogUseCase) CreateProduct(ctx context.Context, req dto.ProductRequest) (*dto.ProductDTO, error) {
	p := productFromRequest(req)
	if err := uc.service.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}
	return uc.reloadProduct(ctx, p.ID)
}

func (uc *CatalogUseCase) UpdateProduct(ctx context.Context, id int64, req dto.ProductRequest) (*dto.ProductDTO, error) {
	p := productFromRequest(req)
	p.ID = id
	if err := uc.service.UpdateProduct(ctx, &p); err != nil {
		return nil, err
	}
	return uc.reloadProduct(ctx, id)
}

func (uc *CatalogUseCase) SetStock(ctx context.Context, id int64, stock int) (*dto.ProductDTO, error) {
	p, err := uc.service.SetStock(ctx, id, stock)
	if err != nil {
		return nil, err
	}
	out := dto.FromProduct(*p)
	return &out, nil
}

func (uc *CatalogUseCase) DeleteProduct(ctx context.Context, id int64) error {
	return uc.service.DeleteProduct(ctx, id)
}

func (uc *CatalogUseCase) reloadProduct(ctx context.Context, id int64) (*dto.ProductDTO, error) {
	p, err := uc.service.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromProduct(*p)
	return &out, nil
}

func productFromRequest(req dto.ProductRequest) domain.Product {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return domain.Product{
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		Stock:          req.Stock,
		ImageURL:       req.ImageURL,
		IsActive:       active,
		IsFeatured:     req.IsFeatured,
	}
}

func (uc *CatalogUseCase) ListCategories(ctx context.Context) ([]dto.CategoryDTO, error) {
	categories, err := uc.service.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CategoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, dto.FromCategory(c))
	}
	return out, nil
}

func (uc *CatalogUseCase) GetCategory(ctx context.Context, slug string) (*dto.CategoryDTO, error) {
	c, err := uc.service.GetCategory(ctx, slug)
	if err != nil {
		return nil, err
	}
	out := dto.FromCategory(*c)
	return &out, nil
}

func (uc *CatalogUseCase) CreateCategory(ctx context.Context, req dto.CategoryRequest) (*dto.CategoryDTO, error) {
	c := categoryFromRequest(req)
	if err := uc.service.CreateCategory(ctx, &c); err != nil {
		return nil, err
	}
	return uc.GetCategory(ctx, c.Slug)
}

func (uc *CatalogUseCase) UpdateCategory(ctx context.Context, id int64, req dto.CategoryRequest) (*dto.CategoryDTO, error) {
	c := categoryFromRequest(req)
	c.ID = id
	if err := uc.service.UpdateCategory(ctx, &c); err != nil {
		return nil, err
	}
	return uc.GetCategory(ctx, c.Slug)
}

func (uc *CatalogUseCase) DeleteCategory(ctx context.Context, id int64) error {
	return uc.service.DeleteCategory(ctx, id)
}

func categoryFromRequest(req dto.CategoryRequest) domain.Category {
	return domain.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
}
