package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bloom/internal/domain"
	"bloom/internal/errors"
)

const addressSelect = `
	SELECT id, user_id, label, recipient_name, phone, street, city, state, postal_code,
	       is_default, created_at, updated_at
	FROM addresses`

type MySQLAddressRepository struct {
	db *sql.DB
}

func NewMySQLAddressRepository(db *sql.DB) *MySQLAddressRepository {
	return &MySQLAddressRepository{db: db}
}

func scanAddress(row rowScanner) (domain.Address, error) {
	var a domain.Address
	err := row.Scan(&a.ID, &a.UserID, &a.Label, &a.RecipientName, &a.Phone, &a.Street, &a.City,
		&a.State, &a.PostalCode, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// ListByUser returns the default address first, then the rest oldest first.
func (r *MySQLAddressRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Address, error) {
	rows, err := r.db.QueryContext(ctx, addressSelect+" WHERE user_id = ? ORDER BY is_default DESC, id ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("querying addresses: %w", err)
	}
	defer rows.Close()

	var addresses []domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning address row: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating address rows: %w", err)
	}
	return addresses, nil
}

// FindForUser only finds addresses owned by userID, so foreign addresses
// look the same as missing ones.
func (r *MySQLAddressRepository) FindForUser(ctx context.Context, id, userID int64) (*domain.Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx, addressSelect+" WHERE id = ? AND user_id = ?", id, userID))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("address with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying address: %w", err)
	}
	return &a, nil
}

// LockOwner serializes address writes of one user on the users row.
func (r *MySQLAddressRepository) LockOwner(ctx context.Context, tx *sql.Tx, userID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ? FOR UPDATE`, userID).Scan(&id)
	if err == sql.ErrNoRows {
		return errors.NewNotFoundError(fmt.Sprintf("user with id %d not found", userID))
	}
	if err != nil {
		return fmt.Errorf("locking address owner: %w", err)
	}
	return nil
}

func (r *MySQLAddressRepository) CountByUser(ctx context.Context, tx *sql.Tx, userID int64) (int, error) {
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM addresses WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting addresses: %w", err)
	}
	return n, nil
}

func (r *MySQLAddressRepository) Create(ctx context.Context, tx *sql.Tx, a *domain.Address) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO addresses (user_id, label, recipient_name, phone, street, city, state, postal_code, is_default)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Label, a.RecipientName, a.Phone, a.Street, a.City, a.State, a.PostalCode, a.IsDefault,
	)
	if err != nil {
		return fmt.Errorf("inserting address: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading address id: %w", err)
	}
	a.ID = id
	return nil
}

func (r *MySQLAddressRepository) Update(ctx context.Context, tx *sql.Tx, a *domain.Address) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE addresses
		SET label = ?, recipient_name = ?, phone = ?, street = ?, city = ?, state = ?, postal_code = ?, is_default = ?
		WHERE id = ? AND user_id = ?`,
		a.Label, a.RecipientName, a.Phone, a.Street, a.City, a.State, a.PostalCode, a.IsDefault, a.ID, a.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating address: %w", err)
	}
	return nil
}

func (r *MySQLAddressRepository) Delete(ctx context.Context, tx *sql.Tx, id, userID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM addresses WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("deleting address: %w", err)
	}
	return nil
}

// ClearDefault unsets the default flag on every address of userID except keepID.
func (r *MySQLAddressRepository) ClearDefault(ctx context.Context, tx *sql.Tx, userID, keepID int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE addresses SET is_default = 0 WHERE user_id = ? AND id <> ? AND is_default = 1`, userID, keepID)
	if err != nil {
		return fmt.Errorf("clearing default address: %w", err)
	}
	return nil
}

// PromoteOldest makes the oldest remaining address the default one.
func (r *MySQLAddressRepository) PromoteOldest(ctx context.Context, tx *sql.Tx, userID int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE addresses SET is_default = 1 WHERE user_id = ? ORDER BY id ASC LIMIT 1`, userID)
	if err != nil {
		return fmt.Errorf("promoting default address: %w", err)
	}
	return nil
}
