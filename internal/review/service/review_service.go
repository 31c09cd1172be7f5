package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

const MaxCommentLength = 2000

type Repository interface {
	ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error)
	List(ctx context.Context, limit, offset int) ([]domain.Review, int, error)
	FindByID(ctx context.Context, id int64) (*domain.Review, error)
	Create(ctx context.Context, rv *domain.Review) error
	Delete(ctx context.Context, id int64) error
}

type ProductReader interface {
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
}

type ReviewService struct {
	repo     Repository
	products ProductReader
	logger   *zap.Logger
}

func NewReviewService(repo Repository, products ProductReader, logger *zap.Logger) *ReviewService {
	return &ReviewService{repo: repo, products: products, logger: logger}
}

func (s *ReviewService) ListForProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	if _, err := s.activeProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.ListByProduct(ctx, productID)
}

// Create stores a review. A user may review each product once.
func (s *ReviewService) Create(ctx context.Context, userID, productID int64, rating int, comment string) (*domain.Review, error) {
	comment = strings.TrimSpace(comment)
	if err := validateReview(rating, comment); err != nil {
		return nil, err
	}
	if _, err := s.activeProduct(ctx, productID); err != nil {
		return nil, err
	}

	rv := &domain.Review{ProductID: productID, UserID: userID, Rating: rating, Comment: comment}
	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, err
	}

	s.logger.Info("review created", zap.Int64("reviewId", rv.ID), zap.Int64("productId", productID), zap.Int64("userId", userID))
	return s.repo.FindByID(ctx, rv.ID)
}

func (s *ReviewService) List(ctx context.Context, limit, offset int) ([]domain.Review, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *ReviewService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("review deleted", zap.Int64("reviewId", id))
	return nil
}

func (s *ReviewService) activeProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, apperrors.NewNotFoundError("product not found")
	}
	return p, nil
}

func validateReview(rating int, comment string) error {
	var details []apperrors.ValidationDetail
	if rating < domain.MinRating || rating > domain.MaxRating {
		details = append(details, apperrors.ValidationDetail{Field: "rating", Message: "rating must be between 1 and 5"})
	}
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		details = append(details, apperrors.ValidationDetail{Field: "comment", Message: "comment must be at most 2000 characters"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
