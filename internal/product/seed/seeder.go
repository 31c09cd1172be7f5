package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bloom/internal/commons"
	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

// File is the layout of a catalog seed file.
type File struct {
	Categories []Category `yaml:"categories"`
	Products   []Product  `yaml:"products"`
}

type Category struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"imageUrl"`
}

type Product struct {
	Name           string `yaml:"name"`
	Slug           string `yaml:"slug"`
	Category       string `yaml:"category"`
	Description    string `yaml:"description"`
	Price          string `yaml:"price"`
	CompareAtPrice string `yaml:"compareAtPrice"`
	Stock          int    `yaml:"stock"`
	ImageURL       string `yaml:"imageUrl"`
	Featured       bool   `yaml:"featured"`
}

type Catalog interface {
	GetCategory(ctx context.Context, slug string) (*domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	CreateProduct(ctx context.Context, p *domain.Product) error
}

type Result struct {
	Categories int
	Products   int
	Skipped    int
}

type Seeder struct {
	catalog Catalog
	logger  *zap.Logger
}

func NewSeeder(catalog Catalog, logger *zap.Logger) *Seeder {
	return &Seeder{catalog: catalog, logger: logger}
}

// LoadFile reads a seed file from disk.
func LoadFile(path string) (*File, error) {
	var f File
	if err := commons.LoadYAML(path, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply creates the categories and products of f. Entries whose slug already
// exists are skipped, so a file can be applied more than once.
func (s *Seeder) Apply(ctx context.Context, f File) (Result, error) {
	var res Result

	for _, c := range f.Categories {
		cat := &domain.Category{Name: c.Name, Slug: c.Slug, Description: c.Description, ImageURL: c.ImageURL}
		if err := s.catalog.CreateCategory(ctx, cat); err != nil {
			if _, ok := apperrors.IsConflictError(err); ok {
				s.logger.Info("category exists, skipping", zap.String("name", c.Name))
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("creating category %q: %w", c.Name, err)
		}
		res.Categories++
	}

	categoryIDs := map[string]int64{}
	for _, p := range f.Products {
		product, err := s.toProduct(ctx, p, categoryIDs)
		if err != nil {
			return res, err
		}
		if err := s.catalog.CreateProduct(ctx, product); err != nil {
			if _, ok := apperrors.IsConflictError(err); ok {
				s.logger.Info("product exists, skipping", zap.String("name", p.Name))
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("creating product %q: %w", p.Name, err)
		}
		res.Products++
	}

	return res, nil
}

func (s *Seeder) toProduct(ctx context.Context, p Product, categoryIDs map[string]int64) (*domain.Product, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
	if err != nil {
		return nil, fmt.Errorf("product %q: invalid price %q", p.Name, p.Price)
	}

	out := &domain.Product{
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		IsActive:    true,
		IsFeatured:  p.Featured,
	}
	if p.CompareAtPrice != "" {
		cmp, err := decimal.NewFromString(p.CompareAtPrice)
		if err != nil {
			return nil, fmt.Errorf("product %q: invalid compareAtPrice %q", p.Name, p.CompareAtPrice)
		}
		out.CompareAtPrice = decimal.NewNullDecimal(cmp)
	}

	if p.Category != "" {
		slug := domain.Slugify(p.Category)
		id, ok := categoryIDs[slug]
		if !ok {
			cat, err := s.catalog.GetCategory(ctx, slug)
			if err != nil {
				return nil, fmt.Errorf("product %q: category %q: %w", p.Name, p.Category, err)
			}
			id = cat.ID
			categoryIDs[slug] = id
		}
		out.CategoryID = &id
	}
	return out, nil
}
