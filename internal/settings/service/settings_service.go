package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
	"bloom/internal/infrastructure/cache"
)

const cacheTTL = 10 * time.Minute

type Repository interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, s *domain.Settings) error
}

type SettingsService struct {
	repo   Repository
	cache  cache.Cache
	logger *zap.Logger
}

func NewSettingsService(repo Repository, c cache.Cache, logger *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, cache: c, logger: logger}
}

func (s *SettingsService) cacheKey() string {
	return s.cache.GenerateKey("settings", "1")
}

// Get returns the store settings, served from Redis when warm. Cache
// failures fall through to MySQL.
func (s *SettingsService) Get(ctx context.Context) (*domain.Settings, error) {
	if raw, err := s.cache.Get(ctx, s.cacheKey()); err != nil {
		s.logger.Warn("settings cache read failed", zap.Error(err))
	} else if raw != "" {
		var cached domain.Settings
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
		s.logger.Warn("discarding malformed cached settings")
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if body, err := json.Marshal(settings); err == nil {
		if err := s.cache.Set(ctx, s.cacheKey(), body, cacheTTL); err != nil {
			s.logger.Warn("settings cache write failed", zap.Error(err))
		}
	}
	return settings, nil
}

// Update replaces the settings. An empty SMTP password keeps the stored one.
func (s *SettingsService) Update(ctx context.Context, in domain.Settings) (*domain.Settings, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	in.StoreName = strings.TrimSpace(in.StoreName)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = current.Currency
	}
	if in.SMTP.Password == "" {
		in.SMTP.Password = current.SMTP.Password
	}
	if err := ValidateSettings(in); err != nil {
		return nil, err
	}

	in.ID = domain.SettingsID
	if err := s.repo.Update(ctx, &in); err != nil {
		return nil, err
	}
	if err := s.cache.Delete(ctx, s.cacheKey()); err != nil {
		s.logger.Warn("settings cache invalidation failed", zap.Error(err))
	}

	s.logger.Info("settings updated", zap.String("storeName", in.StoreName))
	return s.repo.Get(ctx)
}

func ValidateSettings(in domain.Settings) error {
	var details []apperrors.ValidationDetail
	if in.StoreName == "" {
		details = append(details, apperrors.ValidationDetail{Field: "storeName", Message: "storeName is required"})
	}
	if len(in.Currency) != 3 {
		details = append(details, apperrors.ValidationDetail{Field: "currency", Message: "currency must be a 3 letter code"})
	}
	if in.ShippingCost.IsNegative() {
		details = append(details, apperrors.ValidationDetail{Field: "shippingCost", Message: "shippingCost must not be negative"})
	}
	if in.FreeShippingThreshold.Valid && in.FreeShippingThreshold.Decimal.LessThan(decimal.Zero) {
		details = append(details, apperrors.ValidationDetail{Field: "freeShippingThreshold", Message: "freeShippingThreshold must not be negative"})
	}
	if in.SMTP.Port < 0 || in.SMTP.Port > 65535 {
		details = append(details, apperrors.ValidationDetail{Field: "smtp.port", Message: "smtp.port must be between 0 and 65535"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
