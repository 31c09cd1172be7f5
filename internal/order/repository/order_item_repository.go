package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bloom/internal/domain"
)

type MySQLOrderItemRepository struct {
	db *sql.DB
}

func NewMySQLOrderItemRepository(db *sql.DB) *MySQLOrderItemRepository {
	return &MySQLOrderItemRepository{db: db}
}

func (r *MySQLOrderItemRepository) Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (int64, error) {
	query := `INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity) VALUES (?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query, item.OrderID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity)
	if err != nil {
		return 0, fmt.Errorf("inserting order item: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return lastInsertID, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ListByOrder reads the items of an order, inside tx when one is given.
func (r *MySQLOrderItemRepository) ListByOrder(ctx context.Context, tx *sql.Tx, orderID int64) ([]domain.OrderItem, error) {
	var q queryer = r.db
	if tx != nil {
		q = tx
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_name, unit_price, quantity FROM order_items WHERE order_id = ? ORDER BY product_id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
