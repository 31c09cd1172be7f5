package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bloom/internal/domain"
	"bloom/internal/errors"
	"bloom/internal/infrastructure/mysql"
)

const couponSelect = `
	SELECT id, code, description, type, value, min_purchase, max_discount, usage_limit,
	       used_count, start_date, end_date, is_active, created_at, updated_at
	FROM coupons`

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoupon(row rowScanner) (*domain.Coupon, error) {
	var c domain.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.Description, &c.Type, &c.Value, &c.MinPurchase, &c.MaxDiscount,
		&c.UsageLimit, &c.UsedCount, &c.StartDate, &c.EndDate, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func notFound(err error, what string) error {
	if err == sql.ErrNoRows {
		return errors.NewNotFoundError(what + " not found")
	}
	return fmt.Errorf("querying coupon: %w", err)
}

func (r *MySQLRepository) List(ctx context.Context, limit, offset int) ([]domain.Coupon, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM coupons`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting coupons: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, couponSelect+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("querying coupons: %w", err)
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning coupon row: %w", err)
		}
		coupons = append(coupons, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating coupon rows: %w", err)
	}
	return coupons, total, nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id int64) (*domain.Coupon, error) {
	c, err := scanCoupon(r.db.QueryRowContext(ctx, couponSelect+" WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("coupon with id %d", id))
	}
	return c, nil
}

// FindByCode looks up a normalized (upper-case) code.
func (r *MySQLRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	c, err := scanCoupon(r.db.QueryRowContext(ctx, couponSelect+" WHERE code = ?", code))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("coupon %q", code))
	}
	return c, nil
}

func (r *MySQLRepository) FindByCodeForUpdate(ctx context.Context, tx *sql.Tx, code string) (*domain.Coupon, error) {
	c, err := scanCoupon(tx.QueryRowContext(ctx, couponSelect+" WHERE code = ? FOR UPDATE", code))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("coupon %q", code))
	}
	return c, nil
}

// IncrementUsage records one redemption. The WHERE guard refuses to go past
// the usage limit even if the caller skipped validation.
func (r *MySQLRepository) IncrementUsage(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE coupons SET used_count = used_count + 1
		WHERE id = ? AND (usage_limit IS NULL OR used_count < usage_limit)`, id)
	if err != nil {
		return fmt.Errorf("incrementing coupon usage: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking coupon usage: %w", err)
	}
	if n == 0 {
		return errors.NewRuleError(domain.ReasonCouponUsageExceeded, "coupon usage limit reached")
	}
	return nil
}

// DecrementUsage releases one redemption, never below zero.
func (r *MySQLRepository) DecrementUsage(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx, `UPDATE coupons SET used_count = used_count - 1 WHERE id = ? AND used_count > 0`, id); err != nil {
		return fmt.Errorf("decrementing coupon usage: %w", err)
	}
	return nil
}

func (r *MySQLRepository) Create(ctx context.Context, c *domain.Coupon) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO coupons (code, description, type, value, min_purchase, max_discount, usage_limit,
		                     start_date, end_date, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Code, c.Description, c.Type, c.Value, c.MinPurchase, c.MaxDiscount, c.UsageLimit,
		c.StartDate, c.EndDate, c.IsActive,
	)
	if mysql.IsDuplicateKey(err) {
		return errors.NewConflictError(fmt.Sprintf("coupon code %q already exists", c.Code))
	}
	if err != nil {
		return fmt.Errorf("inserting coupon: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading coupon id: %w", err)
	}
	c.ID = id
	return nil
}

func (r *MySQLRepository) Update(ctx context.Context, c *domain.Coupon) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE coupons
		SET code = ?, description = ?, type = ?, value = ?, min_purchase = ?, max_discount = ?,
		    usage_limit = ?, start_date = ?, end_date = ?, is_active = ?
		WHERE id = ?`,
		c.Code, c.Description, c.Type, c.Value, c.MinPurchase, c.MaxDiscount,
		c.UsageLimit, c.StartDate, c.EndDate, c.IsActive, c.ID,
	)
	if mysql.IsDuplicateKey(err) {
		return errors.NewConflictError(fmt.Sprintf("coupon code %q already exists", c.Code))
	}
	if err != nil {
		return fmt.Errorf("updating coupon: %w", err)
	}
	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting coupon: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted coupon: %w", err)
	}
	if n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("coupon with id %d not found", id))
	}
	return nil
}
