package controller

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"bloom/internal/commons"
	"bloom/internal/domain"
	"bloom/internal/dto"
)

type Service interface {
	Summary(ctx context.Context) (*domain.Dashboard, error)
}

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{service: service, logger: logger}
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	d, err := c.service.Summary(r.Context())
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.FromDashboard(*d), c.logger)
}
