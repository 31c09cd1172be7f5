package dto

import "bloom/internal/domain"

type LowStockDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Stock int    `json:"stock"`
}

type DashboardDTO struct {
	OrdersByStatus map[string]int    `json:"ordersByStatus"`
	TotalOrders    int               `json:"totalOrders"`
	Revenue        Money             `json:"revenue"`
	ProductCount   int               `json:"productCount"`
	LowStock       []LowStockDTO     `json:"lowStock"`
	RecentOrders   []OrderSummaryDTO `json:"recentOrders"`
}

func FromDashboard(d domain.Dashboard) DashboardDTO {
	out := DashboardDTO{
		OrdersByStatus: make(map[string]int, len(d.OrdersByStatus)),
		Revenue:        NewMoney(d.Revenue),
		ProductCount:   d.ProductCount,
		LowStock:       make([]LowStockDTO, 0, len(d.LowStock)),
		RecentOrders:   FromOrderSummaries(d.RecentOrders),
	}
	for st, n := range d.OrdersByStatus {
		out.OrdersByStatus[string(st)] = n
		out.TotalOrders += n
	}
	for _, p := range d.LowStock {
		out.LowStock = append(out.LowStock, LowStockDTO{ID: p.ID, Name: p.Name, Slug: p.Slug, Stock: p.Stock})
	}
	return out
}
