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

type AddressService interface {
	List(ctx context.Context, userID int64) ([]domain.Address, error)
	Create(ctx context.Context, userID int64, a domain.Address) (*domain.Address, error)
	Update(ctx context.Context, userID, id int64, a domain.Address) (*domain.Address, error)
	Delete(ctx context.Context, userID, id int64) error
}

type AddressController struct {
	service AddressService
	logger  *zap.Logger
}

func NewAddressController(service AddressService, logger *zap.Logger) *AddressController {
	return &AddressController{service: service, logger: logger}
}

func (c *AddressController) List(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	addresses, err := c.service.List(r.Context(), session.UserID)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	out := make([]dto.AddressDTO, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, dto.FromAddress(a))
	}
	commons.WriteJSON(w, http.StatusOK, out, c.logger)
}

func (c *AddressController) Create(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	var req dto.AddressRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	a, err := c.service.Create(r.Context(), session.UserID, req.ToDomain())
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusCreated, dto.FromAddress(*a), c.logger)
}

func (c *AddressController) Update(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	var req dto.AddressRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	a, err := c.service.Update(r.Context(), session.UserID, id, req.ToDomain())
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.FromAddress(*a), c.logger)
}

func (c *AddressController) Delete(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	if err := c.service.Delete(r.Context(), session.UserID, id); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
