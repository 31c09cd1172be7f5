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

func TestUserRepository_CreateAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ctx := context.Background()
	repo := NewMySQLUserRepository(db)

	u := &domain.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "hash", Role: domain.RoleCustomer}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)

	err := repo.Create(ctx, &domain.User{Name: "Ana 2", Email: "ana@example.com", PasswordHash: "hash", Role: domain.RoleCustomer})
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)

	found, err := repo.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Nil(t, found.Phone)

	require.NoError(t, repo.UpdateRole(ctx, u.ID, domain.RoleAdmin))
	found, err = repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, found.IsAdmin())
}

func TestAddressRepository_DefaultHandling(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ctx := context.Background()
	repo := NewMySQLAddressRepository(db)
	userID := testutil.InsertUser(t, db, "ana@example.com")
	otherID := testutil.InsertUser(t, db, "ben@example.com")

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.LockOwner(ctx, tx, userID))

	first := &domain.Address{UserID: userID, RecipientName: "Ana", Phone: "1", Street: "A", City: "B", PostalCode: "1", IsDefault: true}
	second := &domain.Address{UserID: userID, RecipientName: "Ana", Phone: "1", Street: "C", City: "D", PostalCode: "2", IsDefault: true}
	require.NoError(t, repo.Create(ctx, tx, first))
	require.NoError(t, repo.Create(ctx, tx, second))
	require.NoError(t, repo.ClearDefault(ctx, tx, userID, second.ID))

	n, err := repo.CountByUser(ctx, tx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, tx.Commit())

	list, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.False(t, list[1].IsDefault)

	_, err = repo.FindForUser(ctx, first.ID, otherID)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
