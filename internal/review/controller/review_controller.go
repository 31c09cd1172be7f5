package controller

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"bloom/internal/auth"
	"bloom/internal/commons"
	"bloom/internal/domain"
	"bloom/internal/dto"
)

type Service interface {
	ListForProduct(ctx context.Context, productID int64) ([]domain.Review, error)
	Create(ctx context.Context, userID, productID int64, rating int, comment string) (*domain.Review, error)
	List(ctx context.Context, limit, offset int) ([]domain.Review, int, error)
	Delete(ctx context.Context, id int64) error
}

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{service: service, logger: logger}
}

func (c *Controller) ListForProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := commons.PathID(r, "product")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	reviews, err := c.service.ListForProduct(r.Context(), productID)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.FromReviews(reviews), c.logger)
}

func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	productID, err := commons.PathID(r, "product")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	var req dto.ReviewRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	review, err := c.service.Create(r.Context(), session.UserID, productID, req.Rating, req.Comment)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusCreated, dto.FromReview(*review), c.logger)
}

func (c *Controller) AdminList(w http.ResponseWriter, r *http.Request) {
	page, err := commons.ParsePage(r)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	reviews, total, err := c.service.List(r.Context(), page.Limit, page.Offset())
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, commons.NewPagedResponse(dto.FromReviews(reviews), total, page), c.logger)
}

func (c *Controller) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	if err := c.service.Delete(r.Context(), id); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
