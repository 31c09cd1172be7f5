package commons

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "bloom/internal/errors"
)

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100

	MaxBodyBytes = 1 << 20
)

type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields and
// bodies larger than MaxBodyBytes.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.NewValidationError("request body too large", apperrors.ValidationDetail{
				Field:   "body",
				Message: "request body must not exceed 1 MiB",
			})
		}
		return apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
	}
	return nil
}

// PathID parses a positive integer URL parameter.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, apperrors.ValidationDetail{
			Field:   name,
			Message: name + " must be a positive integer",
		})
	}
	return id, nil
}

// ParsePage reads page and limit query parameters.
func ParsePage(r *http.Request) (Page, error) {
	page := Page{Page: 1, Limit: DefaultPageLimit}
	var details []apperrors.ValidationDetail

	q := r.URL.Query()
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			details = append(details, apperrors.ValidationDetail{Field: "page", Message: "page must be a positive integer"})
		} else {
			page.Page = n
		}
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPageLimit {
			details = append(details, apperrors.ValidationDetail{Field: "limit", Message: "limit must be between 1 and 100"})
		} else {
			page.Limit = n
		}
	}

	if len(details) > 0 {
		return page, apperrors.NewValidationError("validation failed", details...)
	}
	return page, nil
}

type PagedResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func NewPagedResponse[T any](items []T, total int, page Page) PagedResponse[T] {
	if items == nil {
		items = []T{}
	}
	return PagedResponse[T]{Items: items, Total: total, Page: page.Page, Limit: page.Limit}
}
