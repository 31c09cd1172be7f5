package dto

import (
	"time"

	"bloom/internal/domain"
)

type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserDTO   `json:"user"`
}

type ProfileRequest struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
}

type RoleRequest struct {
	Role string `json:"role"`
}

type UserDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromUser(u domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type AddressRequest struct {
	Label         string `json:"label"`
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postalCode"`
	IsDefault     bool   `json:"isDefault"`
}

type AddressDTO struct {
	ID            int64  `json:"id"`
	Label         string `json:"label"`
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postalCode"`
	IsDefault     bool   `json:"isDefault"`
}

func FromAddress(a domain.Address) AddressDTO {
	return AddressDTO{
		ID:            a.ID,
		Label:         a.Label,
		RecipientName: a.RecipientName,
		Phone:         a.Phone,
		Street:        a.Street,
		City:          a.City,
		State:         a.State,
		PostalCode:    a.PostalCode,
		IsDefault:     a.IsDefault,
	}
}

func (r AddressRequest) ToDomain() domain.Address {
	return domain.Address{
		Label:         r.Label,
		RecipientName: r.RecipientName,
		Phone:         r.Phone,
		Street:        r.Street,
		City:          r.City,
		State:         r.State,
		PostalCode:    r.PostalCode,
		IsDefault:     r.IsDefault,
	}
}
