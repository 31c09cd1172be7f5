package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bloom/internal/domain"
	"bloom/internal/errors"
	"bloom/internal/infrastructure/mysql"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

// Toggle removes the favorite when present and adds it otherwise. It reports
// whether the product is a favorite afterwards.
func (r *MySQLRepository) Toggle(ctx context.Context, userID, productID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND product_id = ?`, userID, productID)
	if err != nil {
		return false, fmt.Errorf("deleting favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking deleted favorite: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx, `INSERT IGNORE INTO favorites (user_id, product_id) VALUES (?, ?)`, userID, productID)
	if mysql.IsForeignKeyViolation(err) {
		return false, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", productID))
	}
	if err != nil {
		return false, fmt.Errorf("inserting favorite: %w", err)
	}
	return true, nil
}

// ListProducts returns the user's active favorite products, most recent first.
func (r *MySQLRepository) ListProducts(ctx context.Context, userID int64) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.category_id, c.name, c.slug, p.name, p.slug, p.description, p.price,
		       p.compare_at_price, p.stock, p.image_url, p.is_active, p.is_featured,
		       p.created_at, p.updated_at
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE f.user_id = ? AND p.is_active = 1
		ORDER BY f.created_at DESC, p.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying favorites: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.CategoryID, &p.CategoryName, &p.CategorySlug, &p.Name, &p.Slug, &p.Description, &p.Price,
			&p.CompareAtPrice, &p.Stock, &p.ImageURL, &p.IsActive, &p.IsFeatured,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning favorite row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating favorite rows: %w", err)
	}
	return products, nil
}
