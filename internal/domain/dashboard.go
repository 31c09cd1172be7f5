package domain

import "github.com/shopspring/decimal"

// Dashboard is the admin overview of the store.
type Dashboard struct {
	OrdersByStatus map[OrderStatus]int
	Revenue        decimal.Decimal
	ProductCount   int
	LowStock       []Product
	RecentOrders   []Order
}
