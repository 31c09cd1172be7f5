package domain

import "time"

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Phone        *string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Address struct {
	ID            int64
	UserID        int64
	Label         string
	RecipientName string
	Phone         string
	Street        string
	City          string
	State         string
	PostalCode    string
	IsDefault     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Favorite struct {
	UserID    int64
	ProductID int64
	CreatedAt time.Time
}

type Review struct {
	ID          int64
	ProductID   int64
	UserID      int64
	UserName    string
	ProductName string
	Rating      int
	Comment     string
	CreatedAt   time.Time
}

const (
	MinRating = 1
	MaxRating = 5
)
