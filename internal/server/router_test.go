package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bloom/internal/auth"
	"bloom/internal/domain"
)

type fakeSessions map[string]*auth.Session

func (f fakeSessions) Get(ctx context.Context, token string) (*auth.Session, error) {
	return f[token], nil
}

func newTestRouter(health map[string]Pinger) http.Handler {
	sessions := fakeSessions{
		"customer": {Token: "customer", UserID: 1, Role: domain.RoleCustomer},
	}
	return NewRouter(Handlers{}, sessions, health, zap.NewNop())
}

func TestHealth(t *testing.T) {
	router := newTestRouter(map[string]Pinger{
		"mysql": PingFunc(func(ctx context.Context) error { return nil }),
		"redis": PingFunc(func(ctx context.Context) error { return nil }),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "up", body.Checks["redis"])
}

func TestHealth_Degraded(t *testing.T) {
	router := newTestRouter(map[string]Pinger{
		"mysql": PingFunc(func(ctx context.Context) error { return errors.New("refused") }),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mysql":"down"`)
}

func TestProtectedRoutes(t *testing.T) {
	router := newTestRouter(nil)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"cart anonymous", http.MethodGet, "/api/cart", "", http.StatusUnauthorized},
		{"orders anonymous", http.MethodPost, "/api/orders", "", http.StatusUnauthorized},
		{"admin anonymous", http.MethodGet, "/api/admin/dashboard", "", http.StatusUnauthorized},
		{"admin as customer", http.MethodGet, "/api/admin/dashboard", "customer", http.StatusForbidden},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
