package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID             int64
	CategoryID     *int64
	CategoryName   *string
	CategorySlug   *string
	Name           string
	Slug           string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice decimal.NullDecimal
	Stock          int
	ImageURL       string
	IsActive       bool
	IsFeatured     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CanFulfil reports whether quantity units can be sold right now.
func (p Product) CanFulfil(quantity int) bool {
	return p.IsActive && quantity > 0 && p.Stock >= quantity
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

// ProductRating is the aggregate of a product's reviews.
type ProductRating struct {
	Average float64
	Count   int
}

type Category struct {
	ID           int64
	Name         string
	Slug         string
	Description  string
	ImageURL     string
	ProductCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortName      ProductSort = "name"
)

func ParseProductSort(s string) (ProductSort, bool) {
	switch ProductSort(s) {
	case "":
		return SortNewest, true
	case SortNewest, SortPriceAsc, SortPriceDesc, SortName:
		return ProductSort(s), true
	}
	return "", false
}

type ProductFilter struct {
	CategorySlug    string
	Query           string
	MinPrice        decimal.NullDecimal
	MaxPrice        decimal.NullDecimal
	Featured        *bool
	InStock         bool
	IncludeInactive bool
	Sort            ProductSort
	Limit           int
	Offset          int
}
