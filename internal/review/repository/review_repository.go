package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bloom/internal/domain"
	"bloom/internal/errors"
	"bloom/internal/infrastructure/mysql"
)

const reviewSelect = `
	SELECT r.id, r.product_id, r.user_id, u.name, p.name, r.rating, r.comment, r.created_at
	FROM reviews r
	JOIN users u ON u.id = r.user_id
	JOIN products p ON p.id = r.product_id`

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) query(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.UserName, &rv.ProductName,
			&rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating review rows: %w", err)
	}
	return reviews, nil
}

// ListByProduct returns the product's reviews, newest first.
func (r *MySQLRepository) ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	return r.query(ctx, reviewSelect+" WHERE r.product_id = ? ORDER BY r.created_at DESC, r.id DESC", productID)
}

func (r *MySQLRepository) List(ctx context.Context, limit, offset int) ([]domain.Review, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting reviews: %w", err)
	}

	reviews, err := r.query(ctx, reviewSelect+" ORDER BY r.created_at DESC, r.id DESC LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id int64) (*domain.Review, error) {
	reviews, err := r.query(ctx, reviewSelect+" WHERE r.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("review with id %d not found", id))
	}
	return &reviews[0], nil
}

func (r *MySQLRepository) Create(ctx context.Context, rv *domain.Review) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (product_id, user_id, rating, comment) VALUES (?, ?, ?, ?)`,
		rv.ProductID, rv.UserID, rv.Rating, rv.Comment,
	)
	if mysql.IsDuplicateKey(err) {
		return errors.NewConflictError("you have already reviewed this product")
	}
	if err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading review id: %w", err)
	}
	rv.ID = id
	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted review: %w", err)
	}
	if n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("review with id %d not found", id))
	}
	return nil
}

// RatingFor aggregates the reviews of a product. A product without reviews
// has a zero average.
func (r *MySQLRepository) RatingFor(ctx context.Context, productID int64) (domain.ProductRating, error) {
	var avg sql.NullFloat64
	var rating domain.ProductRating
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(rating), COUNT(*) FROM reviews WHERE product_id = ?`, productID,
	).Scan(&avg, &rating.Count)
	if err != nil {
		return rating, fmt.Errorf("aggregating reviews: %w", err)
	}
	if avg.Valid {
		rating.Average = avg.Float64
	}
	return rating, nil
}
