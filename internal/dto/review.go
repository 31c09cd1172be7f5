package dto

import (
	"time"

	"bloom/internal/domain"
)

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ReviewDTO struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"productId"`
	ProductName string    `json:"productName,omitempty"`
	UserName    string    `json:"userName"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"createdAt"`
}

func FromReviews(reviews []domain.Review) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, FromReview(r))
	}
	return out
}

func FromReview(r domain.Review) ReviewDTO {
	return ReviewDTO{
		ID:          r.ID,
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		UserName:    r.UserName,
		Rating:      r.Rating,
		Comment:     r.Comment,
		CreatedAt:   r.CreatedAt,
	}
}
