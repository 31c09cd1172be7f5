package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bloom/internal/domain"
)

const recentOrderCount = 5

type Repository interface {
	OrderCounts(ctx context.Context) (map[domain.OrderStatus]int, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
	ProductCount(ctx context.Context) (int, error)
	LowStock(ctx context.Context, threshold int) ([]domain.Product, error)
}

type OrderLister interface {
	List(ctx context.Context, userID *int64, status *domain.OrderStatus, limit, offset int) ([]domain.Order, int, error)
}

type DashboardService struct {
	repo              Repository
	orders            OrderLister
	lowStockThreshold int
	logger            *zap.Logger
}

func NewDashboardService(repo Repository, orders OrderLister, lowStockThreshold int, logger *zap.Logger) *DashboardService {
	return &DashboardService{repo: repo, orders: orders, lowStockThreshold: lowStockThreshold, logger: logger}
}

// Summary collects the admin overview. Every known status is present in
// OrdersByStatus, with zero when no order has it.
func (s *DashboardService) Summary(ctx context.Context) (*domain.Dashboard, error) {
	counts, err := s.repo.OrderCounts(ctx)
	if err != nil {
		return nil, err
	}
	byStatus := make(map[domain.OrderStatus]int, len(domain.OrderStatuses))
	for _, st := range domain.OrderStatuses {
		byStatus[st] = counts[st]
	}

	revenue, err := s.repo.Revenue(ctx)
	if err != nil {
		return nil, err
	}
	productCount, err := s.repo.ProductCount(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.repo.LowStock(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	recent, _, err := s.orders.List(ctx, nil, nil, recentOrderCount, 0)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("dashboard computed", zap.Int("lowStock", len(lowStock)), zap.Int("products", productCount))

	return &domain.Dashboard{
		OrdersByStatus: byStatus,
		Revenue:        revenue,
		ProductCount:   productCount,
		LowStock:       lowStock,
		RecentOrders:   recent,
	}, nil
}
