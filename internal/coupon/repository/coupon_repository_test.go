package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
	"bloom/internal/testutil"
)

func TestRepository_IncrementUsage_RespectsLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ctx := context.Background()
	repo := NewMySQLRepository(db)

	limit := 1
	c := &domain.Coupon{Code: "SPRING", Type: domain.CouponPercentage, Value: decimal.NewFromInt(10), UsageLimit: &limit, IsActive: true}
	require.NoError(t, repo.Create(ctx, c))

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	locked, err := repo.FindByCodeForUpdate(ctx, tx, "SPRING")
	require.NoError(t, err)
	assert.Equal(t, c.ID, locked.ID)

	require.NoError(t, repo.IncrementUsage(ctx, tx, c.ID))
	err = repo.IncrementUsage(ctx, tx, c.ID)
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ReasonCouponUsageExceeded, ve.Code)

	require.NoError(t, repo.DecrementUsage(ctx, tx, c.ID))
	require.NoError(t, repo.DecrementUsage(ctx, tx, c.ID))
	require.NoError(t, tx.Commit())

	stored, err := repo.FindByCode(ctx, "SPRING")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.UsedCount)
}

func TestRepository_Create_DuplicateCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ctx := context.Background()
	repo := NewMySQLRepository(db)

	require.NoError(t, repo.Create(ctx, &domain.Coupon{Code: "FIVE", Type: domain.CouponFixed, Value: decimal.NewFromInt(5), IsActive: true}))
	err := repo.Create(ctx, &domain.Coupon{Code: "FIVE", Type: domain.CouponFixed, Value: decimal.NewFromInt(5), IsActive: true})
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)

	_, err = repo.FindByCode(ctx, "NOPE")
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
