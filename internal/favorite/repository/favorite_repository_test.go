package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bloom/internal/errors"
	"bloom/internal/testutil"
)

func TestRepository_ToggleTwiceRestoresState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ctx := context.Background()
	repo := NewMySQLRepository(db)
	userID := testutil.InsertUser(t, db, "ana@example.com")
	productID := testutil.InsertProduct(t, db, "roses", "10.00", 1)

	on, err := repo.Toggle(ctx, userID, productID)
	require.NoError(t, err)
	assert.True(t, on)

	products, err := repo.ListProducts(ctx, userID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, productID, products[0].ID)

	on, err = repo.Toggle(ctx, userID, productID)
	require.NoError(t, err)
	assert.False(t, on)

	products, err = repo.ListProducts(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRepository_ToggleUnknownProduct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	userID := testutil.InsertUser(t, db, "ana@example.com")

	_, err := NewMySQLRepository(db).Toggle(context.Background(), userID, 999999)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
