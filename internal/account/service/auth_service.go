package service

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"bloom/internal/auth"
	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

const MinPasswordLength = 8

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, name string, phone *string) error
	UpdateRole(ctx context.Context, id int64, role domain.Role) error
	List(ctx context.Context, limit, offset int) ([]domain.User, int, error)
}

type SessionStore interface {
	Create(ctx context.Context, user domain.User) (*auth.Session, error)
	Delete(ctx context.Context, token string) error
	RevokeUser(ctx context.Context, userID int64) error
}

type NewUser struct {
	Name     string
	Email    string
	Password string
	Phone    *string
}

type AuthService struct {
	users    UserRepository
	sessions SessionStore
	logger   *zap.Logger
	hashCost int
}

func NewAuthService(users UserRepository, sessions SessionStore, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
	}
}

// NormalizeEmail lower-cases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in NewUser) (*domain.User, error) {
	return s.CreateUser(ctx, in, domain.RoleCustomer)
}

// CreateUser validates and stores a user with the given role.
func (s *AuthService) CreateUser(ctx context.Context, in NewUser, role domain.Role) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	if err := validateNewUser(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, apperrors.NewInternalError("hashing password", err)
	}

	u := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Phone:        in.Phone,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("userId", u.ID), zap.String("role", string(role)))
	return s.users.FindByID(ctx, u.ID)
}

func validateNewUser(in NewUser) error {
	var details []apperrors.ValidationDetail
	if in.Name == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}
	if _, err := mail.ParseAddress(in.Email); err != nil || strings.ContainsAny(in.Email, " <>") {
		details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email must be a valid address"})
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		details = append(details, apperrors.ValidationDetail{Field: "password", Message: "password must be at least 8 characters"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

// Login checks the credentials and opens a session. Unknown emails and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*auth.Session, *domain.User, error) {
	invalid := apperrors.NewUnauthorizedError("invalid email or password")

	u, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return nil, nil, invalid
	}
	if err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("failed login", zap.Int64("userId", u.ID))
		return nil, nil, invalid
	}

	session, err := s.sessions.Create(ctx, *u)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", zap.Int64("userId", u.ID))
	return session, u, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, name string, phone *string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		})
	}
	if phone != nil {
		trimmed := strings.TrimSpace(*phone)
		phone = &trimmed
		if trimmed == "" {
			phone = nil
		}
	}

	if err := s.users.UpdateProfile(ctx, userID, name, phone); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	return s.users.List(ctx, limit, offset)
}

// SetRole changes a user's role and logs the user out everywhere, so the new
// role applies from the next login. Admins cannot change their own role.
func (s *AuthService) SetRole(ctx context.Context, actorID, userID int64, role domain.Role) (*domain.User, error) {
	if actorID == userID {
		return nil, apperrors.NewConflictError("you cannot change your own role")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	if err := s.sessions.RevokeUser(ctx, userID); err != nil {
		return nil, err
	}

	s.logger.Info("user role changed", zap.Int64("userId", userID), zap.Int64("changedBy", actorID), zap.String("role", string(role)))
	return s.users.FindByID(ctx, userID)
}
