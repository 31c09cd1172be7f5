package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bloom/internal/domain"
	"bloom/internal/errors"
)

const categorySelect = `
	SELECT c.id, c.name, c.slug, c.description, c.image_url,
	       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id AND p.is_active = 1),
	       c.created_at, c.updated_at
	FROM categories c`

type MySQLCategoryRepository struct {
	db *sql.DB
}

func NewMySQLCategoryRepository(db *sql.DB) *MySQLCategoryRepository {
	return &MySQLCategoryRepository{db: db}
}

func scanCategory(row rowScanner) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.ProductCount, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *MySQLCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, categorySelect+" ORDER BY c.name")
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}
	return categories, nil
}

func (r *MySQLCategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, categorySelect+" WHERE c.slug = ?", slug))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("category %q not found", slug))
	}
	if err != nil {
		return nil, fmt.Errorf("querying category by slug: %w", err)
	}
	return &c, nil
}

func (r *MySQLCategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, categorySelect+" WHERE c.id = ?", id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("category with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying category by id: %w", err)
	}
	return &c, nil
}

func (r *MySQLCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, slug, description, image_url) VALUES (?, ?, ?, ?)`,
		c.Name, c.Slug, c.Description, c.ImageURL,
	)
	if err != nil {
		return mapWriteError("category", c.Slug, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading category id: %w", err)
	}
	c.ID = id
	return nil
}

func (r *MySQLCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, slug = ?, description = ?, image_url = ? WHERE id = ?`,
		c.Name, c.Slug, c.Description, c.ImageURL, c.ID,
	)
	if err != nil {
		return mapWriteError("category", c.Slug, err)
	}
	return nil
}

// Delete removes the category. Its products stay, uncategorized.
func (r *MySQLCategoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted category: %w", err)
	}
	if n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("category with id %d not found", id))
	}
	return nil
}
