package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

type mockRepository struct {
	settings  domain.Settings
	gets      int
	updateErr error
}

func (m *mockRepository) Get(ctx context.Context) (*domain.Settings, error) {
	m.gets++
	s := m.settings
	return &s, nil
}

func (m *mockRepository) Update(ctx context.Context, s *domain.Settings) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.settings = *s
	return nil
}

type memoryCache struct {
	values  map[string]string
	failGet bool
}

func newMemoryCache() *memoryCache { return &memoryCache{values: map[string]string{}} }

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	switch v := value.(type) {
	case []byte:
		c.values[key] = string(v)
	case string:
		c.values[key] = v
	}
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	if c.failGet {
		return "", errors.New("redis down")
	}
	return c.values[key], nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func (c *memoryCache) GenerateKey(operation, key string) string { return "test:" + operation + ":" + key }

func seeded() domain.Settings {
	return domain.Settings{
		ID:           domain.SettingsID,
		StoreName:    "Bloom",
		Currency:     "USD",
		ShippingCost: decimal.RequireFromString("5.00"),
		SMTP:         domain.SMTPSettings{Host: "smtp.example.com", Port: 587, Password: "stored"},
	}
}

func TestGet_CachesAfterFirstRead(t *testing.T) {
	repo := &mockRepository{settings: seeded()}
	svc := NewSettingsService(repo, newMemoryCache(), zap.NewNop())

	first, err := svc.Get(context.Background())
	require.NoError(t, err)
	second, err := svc.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, repo.gets)
	assert.Equal(t, first.StoreName, second.StoreName)
	assert.True(t, second.ShippingCost.Equal(decimal.RequireFromString("5.00")))
}

func TestGet_FallsBackWhenCacheFails(t *testing.T) {
	repo := &mockRepository{settings: seeded()}
	c := newMemoryCache()
	c.failGet = true
	svc := NewSettingsService(repo, c, zap.NewNop())

	s, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bloom", s.StoreName)
}

func TestUpdate_KeepsPasswordAndInvalidatesCache(t *testing.T) {
	repo := &mockRepository{settings: seeded()}
	c := newMemoryCache()
	svc := NewSettingsService(repo, c, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Len(t, c.values, 1)

	in := seeded()
	in.StoreName = "  Petal  "
	in.SMTP.Password = ""
	updated, err := svc.Update(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "Petal", updated.StoreName)
	assert.Equal(t, "stored", updated.SMTP.Password)
	assert.Empty(t, c.values)
}

func TestUpdate_Validation(t *testing.T) {
	svc := NewSettingsService(&mockRepository{settings: seeded()}, newMemoryCache(), zap.NewNop())

	in := seeded()
	in.ShippingCost = decimal.NewFromInt(-1)
	in.SMTP.Port = 70000
	_, err := svc.Update(context.Background(), in)

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Details, 2)
}
