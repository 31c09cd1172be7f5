package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bloom/internal/domain"
	"bloom/internal/errors"
)

type MySQLSettingsRepository struct {
	db *sql.DB
}

func NewMySQLSettingsRepository(db *sql.DB) *MySQLSettingsRepository {
	return &MySQLSettingsRepository{db: db}
}

func (r *MySQLSettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	query := `
		SELECT id, store_name, currency, shipping_cost, free_shipping_threshold,
			smtp_host, smtp_port, smtp_user, smtp_password, smtp_from,
			meta_title, meta_description, meta_keywords, updated_at
		FROM settings
		WHERE id = ?
	`

	var s domain.Settings
	err := r.db.QueryRowContext(ctx, query, domain.SettingsID).Scan(
		&s.ID, &s.StoreName, &s.Currency, &s.ShippingCost, &s.FreeShippingThreshold,
		&s.SMTP.Host, &s.SMTP.Port, &s.SMTP.User, &s.SMTP.Password, &s.SMTP.From,
		&s.SEO.MetaTitle, &s.SEO.MetaDescription, &s.SEO.MetaKeywords, &s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("store settings not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}

	return &s, nil
}

func (r *MySQLSettingsRepository) Update(ctx context.Context, s *domain.Settings) error {
	query := `
		UPDATE settings SET
			store_name = ?, currency = ?, shipping_cost = ?, free_shipping_threshold = ?,
			smtp_host = ?, smtp_port = ?, smtp_user = ?, smtp_password = ?, smtp_from = ?,
			meta_title = ?, meta_description = ?, meta_keywords = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		s.StoreName, s.Currency, s.ShippingCost, s.FreeShippingThreshold,
		s.SMTP.Host, s.SMTP.Port, s.SMTP.User, s.SMTP.Password, s.SMTP.From,
		s.SEO.MetaTitle, s.SEO.MetaDescription, s.SEO.MetaKeywords,
		domain.SettingsID,
	)
	if err != nil {
		return fmt.Errorf("updating settings: %w", err)
	}
	return nil
}
