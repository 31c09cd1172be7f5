package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bloom/internal/domain"
	"bloom/internal/errors"
	"bloom/internal/infrastructure/mysql"
)

const productColumns = `
	p.id, p.category_id, c.name, c.slug, p.name, p.slug, p.description, p.price,
	p.compare_at_price, p.stock, p.image_url, p.is_active, p.is_featured,
	p.created_at, p.updated_at`

const productFrom = `
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.CategoryName, &p.CategorySlug, &p.Name, &p.Slug, &p.Description, &p.Price,
		&p.CompareAtPrice, &p.Stock, &p.ImageURL, &p.IsActive, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func productWhere(f domain.ProductFilter) (string, []any) {
	var conds []string
	var args []any

	if !f.IncludeInactive {
		conds = append(conds, "p.is_active = 1")
	}
	if f.CategorySlug != "" {
		conds = append(conds, "c.slug = ?")
		args = append(args, f.CategorySlug)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + escapeLike(q) + "%"
		conds = append(conds, "(p.name LIKE ? ESCAPE '!' OR p.description LIKE ? ESCAPE '!')")
		args = append(args, like, like)
	}
	if f.MinPrice.Valid {
		conds = append(conds, "p.price >= ?")
		args = append(args, f.MinPrice.Decimal)
	}
	if f.MaxPrice.Valid {
		conds = append(conds, "p.price <= ?")
		args = append(args, f.MaxPrice.Decimal)
	}
	if f.Featured != nil {
		conds = append(conds, "p.is_featured = ?")
		args = append(args, *f.Featured)
	}
	if f.InStock {
		conds = append(conds, "p.stock > 0")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func productOrder(sort domain.ProductSort) string {
	switch sort {
	case domain.SortPriceAsc:
		return " ORDER BY p.price ASC, p.id ASC"
	case domain.SortPriceDesc:
		return " ORDER BY p.price DESC, p.id ASC"
	case domain.SortName:
		return " ORDER BY p.name ASC, p.id ASC"
	default:
		return " ORDER BY p.created_at DESC, p.id DESC"
	}
}

// List returns one page of products matching f and the total match count.
func (r *MySQLRepository) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	where, args := productWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+productFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	query := "SELECT" + productColumns + productFrom + where + productOrder(f.Sort) + " LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func collectProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}
	return products, nil
}

func (r *MySQLRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, "SELECT"+productColumns+productFrom+" WHERE p.slug = ?", slug))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product %q not found", slug))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by slug: %w", err)
	}
	return &p, nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, "SELECT"+productColumns+productFrom+" WHERE p.id = ?", id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}
	return &p, nil
}

func inClause(ids []int64) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ", "), args
}

// FindByIDs returns the products among ids that exist, in id order.
func (r *MySQLRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	in, args := inClause(ids)
	rows, err := r.db.QueryContext(ctx, "SELECT"+productColumns+productFrom+" WHERE p.id IN ("+in+") ORDER BY p.id", args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// FindByIDsForUpdate locks the product rows in ascending id order so that
// concurrent checkouts over overlapping products acquire locks consistently.
func (r *MySQLRepository) FindByIDsForUpdate(ctx context.Context, tx *sql.Tx, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	in, args := inClause(ids)
	query := fmt.Sprintf(`
		SELECT p.id, p.category_id, NULL, NULL, p.name, p.slug, p.description, p.price,
		       p.compare_at_price, p.stock, p.image_url, p.is_active, p.is_featured,
		       p.created_at, p.updated_at
		FROM products p
		WHERE p.id IN (%s)
		ORDER BY p.id
		FOR UPDATE`, in)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("locking products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// DecrementStock takes quantity units out of stock. The guard in the WHERE
// clause keeps stock from going negative even without a prior lock.
func (r *MySQLRepository) DecrementStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
		quantity, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("decrementing stock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking decremented stock: %w", err)
	}
	if n == 0 {
		return errors.NewConflictError(fmt.Sprintf("insufficient stock for product %d", productID))
	}
	return nil
}

func (r *MySQLRepository) IncrementStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	if _, err := tx.ExecContext(ctx, `UPDATE products SET stock = stock + ? WHERE id = ?`, quantity, productID); err != nil {
		return fmt.Errorf("incrementing stock: %w", err)
	}
	return nil
}

func (r *MySQLRepository) Create(ctx context.Context, p *domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO products (category_id, name, slug, description, price, compare_at_price,
		                      stock, image_url, is_active, is_featured)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.CategoryID, p.Name, p.Slug, p.Description, p.Price, p.CompareAtPrice,
		p.Stock, p.ImageURL, p.IsActive, p.IsFeatured,
	)
	if err != nil {
		return mapWriteError("product", p.Slug, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading product id: %w", err)
	}
	p.ID = id
	return nil
}

func (r *MySQLRepository) Update(ctx context.Context, p *domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET category_id = ?, name = ?, slug = ?, description = ?, price = ?, compare_at_price = ?,
		    stock = ?, image_url = ?, is_active = ?, is_featured = ?
		WHERE id = ?`,
		p.CategoryID, p.Name, p.Slug, p.Description, p.Price, p.CompareAtPrice,
		p.Stock, p.ImageURL, p.IsActive, p.IsFeatured, p.ID,
	)
	if err != nil {
		return mapWriteError("product", p.Slug, err)
	}
	return nil
}

func (r *MySQLRepository) SetStock(ctx context.Context, id int64, stock int) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE products SET stock = ? WHERE id = ?`, stock, id); err != nil {
		return fmt.Errorf("setting stock: %w", err)
	}
	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted product: %w", err)
	}
	if n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	return nil
}

func mapWriteError(entity, slug string, err error) error {
	if mysql.IsDuplicateKey(err) {
		return errors.NewConflictError(fmt.Sprintf("%s slug %q already exists", entity, slug))
	}
	if mysql.IsForeignKeyViolation(err) {
		return errors.NewValidationError("validation failed", errors.ValidationDetail{
			Field:   "categoryId",
			Message: "category does not exist",
		})
	}
	return fmt.Errorf("writing %s: %w", entity, err)
}
