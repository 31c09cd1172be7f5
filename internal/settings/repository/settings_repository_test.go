package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloom/internal/domain"
	"bloom/internal/testutil"
)

// Unit Tests

func TestNewMySQLSettingsRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLSettingsRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

func TestSettingsRepository_Get_SeededRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLSettingsRepository(db)

	s, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(domain.SettingsID), s.ID)
	assert.Equal(t, "Bloom", s.StoreName)
	assert.False(t, s.FreeShippingThreshold.Valid)
}

func TestSettingsRepository_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLSettingsRepository(db)
	ctx := context.Background()

	s, err := repo.Get(ctx)
	require.NoError(t, err)

	s.StoreName = "Petal & Stem"
	s.ShippingCost = decimal.RequireFromString("7.50")
	s.FreeShippingThreshold = decimal.NewNullDecimal(decimal.NewFromInt(60))
	s.SMTP = domain.SMTPSettings{Host: "smtp.example.com", Port: 587, User: "mailer", Password: "pw", From: "shop@example.com"}
	s.SEO.MetaTitle = "Fresh flowers"
	require.NoError(t, repo.Update(ctx, s))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Petal & Stem", got.StoreName)
	assert.True(t, got.ShippingCost.Equal(decimal.RequireFromString("7.50")))
	require.True(t, got.FreeShippingThreshold.Valid)
	assert.True(t, got.FreeShippingThreshold.Decimal.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, 587, got.SMTP.Port)
	assert.Equal(t, "pw", got.SMTP.Password)
	assert.Equal(t, "Fresh flowers", got.SEO.MetaTitle)
}
