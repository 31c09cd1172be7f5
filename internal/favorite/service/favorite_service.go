package service

import (
	"context"

	"go.uber.org/zap"

	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

type Repository interface {
	Toggle(ctx context.Context, userID, productID int64) (bool, error)
	ListProducts(ctx context.Context, userID int64) ([]domain.Product, error)
}

type ProductReader interface {
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
}

type FavoriteService struct {
	repo     Repository
	products ProductReader
	logger   *zap.Logger
}

func NewFavoriteService(repo Repository, products ProductReader, logger *zap.Logger) *FavoriteService {
	return &FavoriteService{repo: repo, products: products, logger: logger}
}

func (s *FavoriteService) List(ctx context.Context, userID int64) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, userID)
}

// Toggle flips the favorite state of productID for userID.
func (s *FavoriteService) Toggle(ctx context.Context, userID, productID int64) (bool, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return false, err
	}
	if !p.IsActive {
		return false, apperrors.NewNotFoundError("product not found")
	}

	favorited, err := s.repo.Toggle(ctx, userID, productID)
	if err != nil {
		return false, err
	}

	s.logger.Debug("favorite toggled", zap.Int64("userId", userID), zap.Int64("productId", productID), zap.Bool("favorited", favorited))
	return favorited, nil
}
