package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"bloom/internal/commons"
	apperrors "bloom/internal/errors"
)

const SessionCookie = "session"

type SessionReader interface {
	Get(ctx context.Context, token string) (*Session, error)
}

type sessionKeyType struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKeyType{}, s)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKeyType{}).(*Session)
	return s, ok && s != nil
}

// TokenFromRequest reads a bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate attaches the caller's session to the context when the
// request carries a valid token. Anonymous requests pass through.
func Authenticate(store SessionReader, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := store.Get(r.Context(), token)
			if err != nil {
				commons.WriteError(w, r, logger, err)
				return
			}
			if session == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

func RequireAuth(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := SessionFromContext(r.Context()); !ok {
				commons.WriteError(w, r, logger, apperrors.NewUnauthorizedError("authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				commons.WriteError(w, r, logger, apperrors.NewUnauthorizedError("authentication required"))
				return
			}
			if !session.IsAdmin() {
				commons.WriteError(w, r, logger, apperrors.NewForbiddenError("admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
