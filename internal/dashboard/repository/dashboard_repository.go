package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"bloom/internal/domain"
)

type MySQLDashboardRepository struct {
	db *sql.DB
}

func NewMySQLDashboardRepository(db *sql.DB) *MySQLDashboardRepository {
	return &MySQLDashboardRepository{db: db}
}

func (r *MySQLDashboardRepository) OrderCounts(ctx context.Context) (map[domain.OrderStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting orders: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.OrderStatus]int)
	for rows.Next() {
		var status domain.OrderStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning order count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order counts: %w", err)
	}
	return counts, nil
}

// Revenue sums the totals of every order that was not cancelled.
func (r *MySQLDashboardRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM orders WHERE status <> ?`, domain.OrderStatusCancelled,
	).Scan(&revenue)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing revenue: %w", err)
	}
	return revenue, nil
}

func (r *MySQLDashboardRepository) ProductCount(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

// LowStock lists active products whose stock is at or below threshold, emptiest first.
func (r *MySQLDashboardRepository) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, slug, price, stock, image_url, is_active
		FROM products
		WHERE is_active = TRUE AND stock <= ?
		ORDER BY stock ASC, id ASC`, threshold)
	if err != nil {
		return nil, fmt.Errorf("querying low stock products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Price, &p.Stock, &p.ImageURL, &p.IsActive); err != nil {
			return nil, fmt.Errorf("scanning low stock product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating low stock products: %w", err)
	}
	return products, nil
}
