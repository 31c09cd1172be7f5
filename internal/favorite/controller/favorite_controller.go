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
	List(ctx context.Context, userID int64) ([]domain.Product, error)
	Toggle(ctx context.Context, userID, productID int64) (bool, error)
}

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{service: service, logger: logger}
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	products, err := c.service.List(r.Context(), session.UserID)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.FromProducts(products), c.logger)
}

func (c *Controller) Toggle(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	productID, err := commons.PathID(r, "productId")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	favorited, err := c.service.Toggle(r.Context(), session.UserID, productID)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.FavoriteToggleResponse{
		ProductID: productID,
		Favorited: favorited,
	}, c.logger)
}
