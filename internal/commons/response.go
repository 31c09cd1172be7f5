package commons

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "bloom/internal/errors"
)

type traceIDKey struct{}

// TraceIDHeader is echoed on every response so clients can quote it.
const TraceIDHeader = "X-Trace-ID"

// TraceMiddleware assigns a trace id to each request.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.New().String()
		}
		w.Header().Set(TraceIDHeader, traceID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), traceIDKey{}, traceID)))
	})
}

func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

type ErrorResponse struct {
	TraceID   string                       `json:"traceId,omitempty"`
	Status    int                          `json:"status"`
	Error     string                       `json:"error"`
	Message   string                       `json:"message"`
	Details   []apperrors.ValidationDetail `json:"details,omitempty"`
	Data      any                          `json:"data,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}

func WriteJSON(w http.ResponseWriter, status int, data any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func WriteValidationError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, message string, details ...apperrors.ValidationDetail) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		TraceID:   TraceID(r.Context()),
		Status:    http.StatusBadRequest,
		Error:     "VALIDATION_ERROR",
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}, logger)
}

// WriteError maps application errors to HTTP responses. Unknown errors are
// logged and reported as a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	resp := ErrorResponse{
		TraceID:   TraceID(r.Context()),
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	}

	if ve, ok := apperrors.IsValidationError(err); ok {
		resp.Status = http.StatusBadRequest
		resp.Error = "VALIDATION_ERROR"
		if ve.Code != "" {
			resp.Error = ve.Code
		}
		resp.Details = ve.Details
	} else if _, ok := apperrors.IsUnauthorizedError(err); ok {
		resp.Status = http.StatusUnauthorized
		resp.Error = "UNAUTHORIZED"
	} else if _, ok := apperrors.IsForbiddenError(err); ok {
		resp.Status = http.StatusForbidden
		resp.Error = "FORBIDDEN"
	} else if _, ok := apperrors.IsNotFoundError(err); ok {
		resp.Status = http.StatusNotFound
		resp.Error = "NOT_FOUND"
	} else if ce, ok := apperrors.IsConflictError(err); ok {
		resp.Status = http.StatusConflict
		resp.Error = "CONFLICT"
		if ce.Code != "" {
			resp.Error = ce.Code
		}
		resp.Data = ce.Details
	} else if _, ok := apperrors.IsDeadlockError(err); ok {
		resp.Status = http.StatusConflict
		resp.Error = "DEADLOCK"
	} else {
		logger.Error("unexpected error",
			zap.String("traceId", resp.TraceID),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		resp.Status = http.StatusInternalServerError
		resp.Error = "INTERNAL_ERROR"
		resp.Message = "an unexpected error occurred"
	}

	WriteJSON(w, resp.Status, resp, logger)
}
