package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
	"bloom/internal/testutil"
)

func TestRepository_CreateListAndRate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ctx := context.Background()
	repo := NewMySQLRepository(db)
	productID := testutil.InsertProduct(t, db, "roses", "10.00", 5)
	ana := testutil.InsertUser(t, db, "ana@example.com")
	ben := testutil.InsertUser(t, db, "ben@example.com")

	rating, err := repo.RatingFor(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductRating{}, rating)

	require.NoError(t, repo.Create(ctx, &domain.Review{ProductID: productID, UserID: ana, Rating: 5, Comment: "lovely"}))
	require.NoError(t, repo.Create(ctx, &domain.Review{ProductID: productID, UserID: ben, Rating: 4}))

	err = repo.Create(ctx, &domain.Review{ProductID: productID, UserID: ana, Rating: 1})
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)

	reviews, err := repo.ListByProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "Test User", reviews[0].UserName)

	rating, err = repo.RatingFor(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 2, rating.Count)
	assert.InDelta(t, 4.5, rating.Average, 0.001)

	require.NoError(t, repo.Delete(ctx, reviews[0].ID))
	err = repo.Delete(ctx, reviews[0].ID)
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
