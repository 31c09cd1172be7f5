package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloom/internal/domain"
	"bloom/internal/testutil"
)

func TestDashboardRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	ctx := context.Background()
	userID := testutil.InsertUser(t, db, "dash@example.com")
	testutil.InsertProduct(t, db, "roses", "10.00", 2)
	testutil.InsertProduct(t, db, "tulips", "8.00", 40)

	insertOrder := func(number string, status domain.OrderStatus, total string) {
		_, err := db.Exec(`INSERT INTO orders (order_number, user_id, status, subtotal, total, recipient_name, phone, street, city, postal_code)
			VALUES (?, ?, ?, ?, ?, 'A', '1', 'S', 'C', 'P')`, number, userID, status, total, total)
		require.NoError(t, err)
	}
	insertOrder("BLM-A", domain.OrderStatusPending, "20.00")
	insertOrder("BLM-B", domain.OrderStatusDelivered, "15.50")
	insertOrder("BLM-C", domain.OrderStatusCancelled, "100.00")

	repo := NewMySQLDashboardRepository(db)

	counts, err := repo.OrderCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.OrderStatusPending])
	assert.Equal(t, 1, counts[domain.OrderStatusCancelled])

	revenue, err := repo.Revenue(ctx)
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.RequireFromString("35.50")), "got %s", revenue)

	n, err := repo.ProductCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	low, err := repo.LowStock(ctx, 5)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "roses", low[0].Slug)
}
