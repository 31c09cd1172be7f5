package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

type memoryCatalog struct {
	categories map[string]*domain.Category
	products   map[string]*domain.Product
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{categories: map[string]*domain.Category{}, products: map[string]*domain.Product{}}
}

func (m *memoryCatalog) GetCategory(ctx context.Context, slug string) (*domain.Category, error) {
	c, ok := m.categories[slug]
	if !ok {
		return nil, apperrors.NewNotFoundError("category not found")
	}
	return c, nil
}

func (m *memoryCatalog) CreateCategory(ctx context.Context, c *domain.Category) error {
	if c.Slug == "" {
		c.Slug = domain.Slugify(c.Name)
	}
	if _, ok := m.categories[c.Slug]; ok {
		return apperrors.NewConflictError("slug taken")
	}
	c.ID = int64(len(m.categories) + 1)
	m.categories[c.Slug] = c
	return nil
}

func (m *memoryCatalog) CreateProduct(ctx context.Context, p *domain.Product) error {
	if p.Slug == "" {
		p.Slug = domain.Slugify(p.Name)
	}
	if _, ok := m.products[p.Slug]; ok {
		return apperrors.NewConflictError("slug taken")
	}
	m.products[p.Slug] = p
	return nil
}

const sample = `
categories:
  - name: Ramos
  - name: Orquídeas
products:
  - name: Ramo de Rosas Rojas
    category: Ramos
    price: "35.90"
    compareAtPrice: "42.00"
    stock: 12
    featured: true
  - name: Orquídea Blanca
    category: orquideas
    price: "28"
    stock: 4
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	return path
}

func TestApply(t *testing.T) {
	f, err := LoadFile(writeSample(t))
	require.NoError(t, err)

	catalog := newMemoryCatalog()
	res, err := NewSeeder(catalog, zap.NewNop()).Apply(context.Background(), *f)
	require.NoError(t, err)

	assert.Equal(t, Result{Categories: 2, Products: 2}, res)

	roses := catalog.products["ramo-de-rosas-rojas"]
	require.NotNil(t, roses)
	assert.Equal(t, "35.9", roses.Price.String())
	assert.True(t, roses.CompareAtPrice.Valid)
	assert.True(t, roses.IsFeatured)
	assert.Equal(t, catalog.categories["ramos"].ID, *roses.CategoryID)

	orchid := catalog.products["orquidea-blanca"]
	require.NotNil(t, orchid)
	assert.Equal(t, catalog.categories["orquideas"].ID, *orchid.CategoryID)
}

func TestApply_Idempotent(t *testing.T) {
	f, err := LoadFile(writeSample(t))
	require.NoError(t, err)

	catalog := newMemoryCatalog()
	seeder := NewSeeder(catalog, zap.NewNop())
	_, err = seeder.Apply(context.Background(), *f)
	require.NoError(t, err)

	res, err := seeder.Apply(context.Background(), *f)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 4}, res)
}

func TestApply_UnknownCategory(t *testing.T) {
	_, err := NewSeeder(newMemoryCatalog(), zap.NewNop()).Apply(context.Background(), File{
		Products: []Product{{Name: "Tulips", Category: "missing", Price: "10"}},
	})
	assert.Error(t, err)
}

func TestApply_BadPrice(t *testing.T) {
	_, err := NewSeeder(newMemoryCatalog(), zap.NewNop()).Apply(context.Background(), File{
		Products: []Product{{Name: "Tulips", Price: "ten"}},
	})
	assert.Error(t, err)
}
