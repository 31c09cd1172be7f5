package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bloom/internal/domain"
	"bloom/internal/errors"
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

const orderColumns = `
	id, order_number, user_id, status, subtotal, discount, shipping_cost, total,
	coupon_id, coupon_code, recipient_name, phone, street, city, state, postal_code,
	delivery_date, gift_message, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.Subtotal, &o.Discount, &o.ShippingCost, &o.Total,
		&o.CouponID, &o.CouponCode, &o.Delivery.RecipientName, &o.Delivery.Phone, &o.Delivery.Street,
		&o.Delivery.City, &o.Delivery.State, &o.Delivery.PostalCode,
		&o.DeliveryDate, &o.GiftMessage, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, o *domain.Order) error {
	query := `
		INSERT INTO orders (order_number, user_id, status, subtotal, discount, shipping_cost, total,
			coupon_id, coupon_code, recipient_name, phone, street, city, state, postal_code,
			delivery_date, gift_message, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		o.OrderNumber, o.UserID, o.Status, o.Subtotal, o.Discount, o.ShippingCost, o.Total,
		o.CouponID, o.CouponCode, o.Delivery.RecipientName, o.Delivery.Phone, o.Delivery.Street,
		o.Delivery.City, o.Delivery.State, o.Delivery.PostalCode,
		o.DeliveryDate, o.GiftMessage, o.Notes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	o.ID = id
	return nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}
	return &o, nil
}

// FindByIDForUpdate locks the order row for a status change.
func (r *MySQLOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error) {
	o, err := scanOrder(tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ? FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("locking order: %w", err)
	}
	return &o, nil
}

func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}

// List returns orders newest first. userID and status narrow the result
// when set.
func (r *MySQLOrderRepository) List(ctx context.Context, userID *int64, status *domain.OrderStatus, limit, offset int) ([]domain.Order, int, error) {
	var conds []string
	var args []any
	if userID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, *userID)
	}
	if status != nil {
		conds = append(conds, "status = ?")
		args = append(args, *status)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating orders: %w", err)
	}
	return orders, total, nil
}

func (r *MySQLOrderRepository) InsertHistory(ctx context.Context, tx *sql.Tx, orderID int64, status domain.OrderStatus, changedBy *int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO order_status_history (order_id, status, changed_by, created_at) VALUES (?, ?, ?, UTC_TIMESTAMP())`,
		orderID, status, changedBy,
	)
	if err != nil {
		return fmt.Errorf("inserting order status history: %w", err)
	}
	return nil
}

func (r *MySQLOrderRepository) History(ctx context.Context, orderID int64) ([]domain.OrderStatusChange, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, status, changed_by, created_at FROM order_status_history WHERE order_id = ? ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying order history: %w", err)
	}
	defer rows.Close()

	history := []domain.OrderStatusChange{}
	for rows.Next() {
		var h domain.OrderStatusChange
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.ChangedBy, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning order history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
