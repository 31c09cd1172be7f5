package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"bloom/internal/domain"
)

type ProductRequest struct {
	CategoryID     *int64              `json:"categoryId"`
	Name           string              `json:"name"`
	Slug           string              `json:"slug"`
	Description    string              `json:"description"`
	Price          decimal.Decimal     `json:"price"`
	CompareAtPrice decimal.NullDecimal `json:"compareAtPrice"`
	Stock          int                 `json:"stock"`
	ImageURL       string              `json:"imageUrl"`
	IsActive       *bool               `json:"isActive"`
	IsFeatured     bool                `json:"isFeatured"`
}

type StockRequest struct {
	Stock *int `json:"stock"`
}

type ProductDTO struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	Slug           string       `json:"slug"`
	Description    string       `json:"description"`
	Price          Money        `json:"price"`
	CompareAtPrice *Money       `json:"compareAtPrice"`
	Stock          int          `json:"stock"`
	InStock        bool         `json:"inStock"`
	ImageURL       string       `json:"imageUrl"`
	IsActive       bool         `json:"isActive"`
	IsFeatured     bool         `json:"isFeatured"`
	Category       *CategoryRef `json:"category"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ProductDetailDTO struct {
	ProductDTO
	Rating RatingDTO `json:"rating"`
}

type RatingDTO struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

type CategoryDTO struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	ImageURL     string `json:"imageUrl"`
	ProductCount int    `json:"productCount"`
}

func FromProduct(p domain.Product) ProductDTO {
	out := ProductDTO{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Price:          NewMoney(p.Price),
		CompareAtPrice: NewNullMoney(p.CompareAtPrice),
		Stock:          p.Stock,
		InStock:        p.InStock(),
		ImageURL:       p.ImageURL,
		IsActive:       p.IsActive,
		IsFeatured:     p.IsFeatured,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.CategoryID != nil {
		ref := &CategoryRef{ID: *p.CategoryID}
		if p.CategoryName != nil {
			ref.Name = *p.CategoryName
		}
		if p.CategorySlug != nil {
			ref.Slug = *p.CategorySlug
		}
		out.Category = ref
	}
	return out
}

func FromProducts(products []domain.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, FromProduct(p))
	}
	return out
}

func FromCategory(c domain.Category) CategoryDTO {
	return CategoryDTO{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Description:  c.Description,
		ImageURL:     c.ImageURL,
		ProductCount: c.ProductCount,
	}
}
