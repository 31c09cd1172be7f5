package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"bloom/internal/infrastructure/mysql"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/bloom_test?parseTime=true&loc=UTC"

// SetupTestDB opens the integration database. TEST_DB_DSN overrides the
// default local DSN; the test is skipped when nothing answers.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// SetupTestTables applies the service migrations.
func SetupTestTables(t *testing.T, db *sql.DB) {
	t.Helper()

	if _, err := mysql.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	truncate(t, db)
}

// CleanupTestDB empties every table and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}
	truncate(t, db)
	db.Close()
}

func truncate(t *testing.T, db *sql.DB) {
	tables := []string{
		"outbox_events", "order_status_history", "order_items", "orders",
		"favorites", "reviews", "addresses", "coupons", "products", "categories", "users",
	}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
	if _, err := db.Exec(`UPDATE settings SET store_name = 'Bloom', currency = 'USD', shipping_cost = 0,
		free_shipping_threshold = NULL, smtp_host = '', smtp_port = 0, smtp_user = '', smtp_password = '',
		smtp_from = '', meta_title = '', meta_description = '', meta_keywords = '' WHERE id = 1`); err != nil {
		t.Logf("failed to reset settings: %v", err)
	}
}

// InsertUser creates a customer and returns its id.
func InsertUser(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, 'x', 'CUSTOMER')`, "Test User", email)
	if err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// InsertProduct creates an active product and returns its id.
func InsertProduct(t *testing.T, db *sql.DB, slug string, price string, stock int) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO products (name, slug, description, price, stock) VALUES (?, ?, '', ?, ?)`,
		slug, slug, price, stock)
	if err != nil {
		t.Fatalf("failed to insert product: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}
