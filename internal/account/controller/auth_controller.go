package controller

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bloom/internal/account/service"
	"bloom/internal/auth"
	"bloom/internal/commons"
	"bloom/internal/domain"
	"bloom/internal/dto"
	apperrors "bloom/internal/errors"
)

type AuthService interface {
	Register(ctx context.Context, in service.NewUser) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*auth.Session, *domain.User, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, name string, phone *string) (*domain.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int, error)
	SetRole(ctx context.Context, actorID, userID int64, role domain.Role) (*domain.User, error)
}

type AuthController struct {
	service AuthService
	logger  *zap.Logger
}

func NewAuthController(service AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{service: service, logger: logger}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	u, err := c.service.Register(r.Context(), service.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusCreated, dto.FromUser(*u), c.logger)
}

// Login returns the session token in the body and as an HttpOnly cookie.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		commons.WriteValidationError(w, r, c.logger, "email and password are required")
		return
	}

	session, u, err := c.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	commons.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      dto.FromUser(*u),
	}, c.logger)
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Logout(r.Context(), auth.TokenFromRequest(r)); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	u, err := c.service.Me(r.Context(), session.UserID)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.FromUser(*u), c.logger)
}

func (c *AuthController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	var req dto.ProfileRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	u, err := c.service.UpdateProfile(r.Context(), session.UserID, req.Name, req.Phone)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.FromUser(*u), c.logger)
}

func (c *AuthController) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := commons.ParsePage(r)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	users, total, err := c.service.ListUsers(r.Context(), page.Limit, page.Offset())
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	items := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		items = append(items, dto.FromUser(u))
	}
	commons.WriteJSON(w, http.StatusOK, commons.NewPagedResponse(items, total, page), c.logger)
}

func (c *AuthController) AdminSetRole(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	id, err := commons.PathID(r, "id")
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}

	var req dto.RoleRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		commons.WriteValidationError(w, r, c.logger, "validation failed", apperrors.ValidationDetail{
			Field:   "role",
			Message: "role must be CUSTOMER or ADMIN",
		})
		return
	}

	u, err := c.service.SetRole(r.Context(), session.UserID, id, role)
	if err != nil {
		commons.WriteError(w, r, c.logger, err)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.FromUser(*u), c.logger)
}
