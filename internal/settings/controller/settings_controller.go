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
	Get(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, in domain.Settings) (*domain.Settings, error)
}

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{service: service, logger: logger}
}

func (c *Controller) GetPublic(w http.ResponseWriter, r *http.Request) {
	settings, err := c.service.Get(r.Context())
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.FromSettingsPublic(*settings), c.logger)
}

func (c *Controller) AdminGet(w http.ResponseWriter, r *http.Request) {
	settings, err := c.service.Get(r.Context())
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.FromSettingsAdmin(*settings), c.logger)
}

func (c *Controller) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	var req dto.SettingsRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	// The admin form posts the mask back when the password is untouched.
	in := req.ToDomain()
	if in.SMTP.Password == dto.MaskedSecret {
		in.SMTP.Password = ""
	}

	settings, err := c.service.Update(r.Context(), in)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.FromSettingsAdmin(*settings), c.logger)
}
