package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	couponrepo "bloom/internal/coupon/repository"
	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
	"bloom/internal/infrastructure/mysql"
	notificationrepo "bloom/internal/notification/repository"
	orderrepo "bloom/internal/order/repository"
	productrepo "bloom/internal/product/repository"
	"bloom/internal/testutil"
)

// Integration Tests

func TestOrderService_ConcurrentCheckoutNeverOversells(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewOrderService(
		mysql.NewTxManager(db),
		productrepo.NewMySQLRepository(db),
		couponrepo.NewMySQLRepository(db),
		orderrepo.NewMySQLOrderRepository(db),
		orderrepo.NewMySQLOrderItemRepository(db),
		notificationrepo.NewMySQLOutboxRepository(db),
		zap.NewNop(),
		10*time.Second,
	)

	const stock = 5
	userID := testutil.InsertUser(t, db, "rush@example.com")
	productID := testutil.InsertProduct(t, db, "last-roses", "12.00", stock)

	var wg sync.WaitGroup
	var mu sync.Mutex
	placed := 0
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := placeInput("", Line{productID, 1})
			in.UserID = userID
			_, err := svc.PlaceOrder(context.Background(), in, settings())
			if err == nil {
				mu.Lock()
				placed++
				mu.Unlock()
				return
			}
			_, conflict := apperrors.IsConflictError(err)
			assert.True(t, conflict || mysql.IsDeadlock(err), "unexpected error %v", err)
		}()
	}
	wg.Wait()

	var left int
	require.NoError(t, db.QueryRow(`SELECT stock FROM products WHERE id = ?`, productID).Scan(&left))
	assert.GreaterOrEqual(t, left, 0)
	assert.Equal(t, stock, placed+left)

	var events int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM outbox_events WHERE event_type = ?`, domain.EventOrderPlaced).Scan(&events))
	assert.Equal(t, placed, events)
}

func TestOrderService_CancelRestoresStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewOrderService(
		mysql.NewTxManager(db),
		productrepo.NewMySQLRepository(db),
		couponrepo.NewMySQLRepository(db),
		orderrepo.NewMySQLOrderRepository(db),
		orderrepo.NewMySQLOrderItemRepository(db),
		notificationrepo.NewMySQLOutboxRepository(db),
		zap.NewNop(),
		10*time.Second,
	)

	userID := testutil.InsertUser(t, db, "buyer@example.com")
	productID := testutil.InsertProduct(t, db, "peonies", "20.00", 8)
	_, err := db.Exec(`INSERT INTO coupons (code, type, value, usage_limit) VALUES ('SPRING', 'FIXED', 5, 10)`)
	require.NoError(t, err)

	in := placeInput("spring", Line{productID, 3})
	in.UserID = userID
	order, err := svc.PlaceOrder(context.Background(), in, settings())
	require.NoError(t, err)

	var stock, used int
	require.NoError(t, db.QueryRow(`SELECT stock FROM products WHERE id = ?`, productID).Scan(&stock))
	require.NoError(t, db.QueryRow(`SELECT used_count FROM coupons WHERE code = 'SPRING'`).Scan(&used))
	assert.Equal(t, 5, stock)
	assert.Equal(t, 1, used)

	_, err = svc.CancelOwn(context.Background(), order.ID, userID)
	require.NoError(t, err)

	require.NoError(t, db.QueryRow(`SELECT stock FROM products WHERE id = ?`, productID).Scan(&stock))
	require.NoError(t, db.QueryRow(`SELECT used_count FROM coupons WHERE code = 'SPRING'`).Scan(&used))
	assert.Equal(t, 8, stock)
	assert.Equal(t, 0, used)
}
