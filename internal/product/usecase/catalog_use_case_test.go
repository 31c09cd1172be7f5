package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloom/internal/commons"
	"bloom/internal/domain"
	"bloom/internal/dto"
)

// mockService overrides only the methods a test needs.
type mockService struct {
	Service
	ListProductsFunc     func(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error)
	GetActiveProductFunc func(ctx context.Context, slug string) (*domain.Product, error)
	GetProductFunc       func(ctx context.Context, id int64) (*domain.Product, error)
	CreateProductFunc    func(ctx context.Context, p *domain.Product) error
}

func (m *mockService) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	return m.ListProductsFunc(ctx, f)
}

func (m *mockService) GetActiveProduct(ctx context.Context, slug string) (*domain.Product, error) {
	return m.GetActiveProductFunc(ctx, slug)
}

func (m *mockService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return m.GetProductFunc(ctx, id)
}

func (m *mockService) CreateProduct(ctx context.Context, p *domain.Product) error {
	return m.CreateProductFunc(ctx, p)
}

type mockRatingReader struct {
	RatingForFunc func(ctx context.Context, productID int64) (domain.ProductRating, error)
}

func (m *mockRatingReader) RatingFor(ctx context.Context, productID int64) (domain.ProductRating, error) {
	return m.RatingForFunc(ctx, productID)
}

func TestListProducts_AppliesPage(t *testing.T) {
	var got domain.ProductFilter
	svc := &mockService{
		ListProductsFunc: func(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
			got = f
			return []domain.Product{{ID: 1, Name: "Roses", Price: decimal.NewFromInt(10), Stock: 2}}, 31, nil
		},
	}
	uc := NewCatalogUseCase(svc, &mockRatingReader{})

	resp, err := uc.ListProducts(context.Background(), domain.ProductFilter{CategorySlug: "roses"}, commons.Page{Page: 3, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, 10, got.Limit)
	assert.Equal(t, 20, got.Offset)
	assert.Equal(t, "roses", got.CategorySlug)
	assert.Equal(t, 31, resp.Total)
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].InStock)
}

func TestGetProduct_IncludesRating(t *testing.T) {
	svc := &mockService{
		GetActiveProductFunc: func(ctx context.Context, slug string) (*domain.Product, error) {
			return &domain.Product{ID: 4, Slug: slug, IsActive: true}, nil
		},
	}
	ratings := &mockRatingReader{
		RatingForFunc: func(ctx context.Context, productID int64) (domain.ProductRating, error) {
			assert.Equal(t, int64(4), productID)
			return domain.ProductRating{Average: 4.5, Count: 2}, nil
		},
	}
	uc := NewCatalogUseCase(svc, ratings)

	detail, err := uc.GetProduct(context.Background(), "sunflowers")
	require.NoError(t, err)
	assert.Equal(t, 4.5, detail.Rating.Average)
	assert.Equal(t, 2, detail.Rating.Count)
}

func TestCreateProduct_DefaultsToActive(t *testing.T) {
	var created domain.Product
	svc := &mockService{
		CreateProductFunc: func(ctx context.Context, p *domain.Product) error {
			p.ID = 12
			created = *p
			return nil
		},
		GetProductFunc: func(ctx context.Context, id int64) (*domain.Product, error) {
			p := created
			return &p, nil
		},
	}
	uc := NewCatalogUseCase(svc, &mockRatingReader{})

	out, err := uc.CreateProduct(context.Background(), dto.ProductRequest{Name: "Daisies", Price: decimal.NewFromInt(12)})
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Equal(t, int64(12), out.ID)
}
