package dto

import (
	"time"

	"github.com/mahapatra12/vitam-cms/domain"
)

// PublicUser is the listing/profile shape: no password hash, no MFA
// material, no ephemeral codes.
type PublicUser struct {
	UUID       string     `json:"uuid"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Department string     `json:"department,omitempty"`
	RollNumber *string    `json:"roll_number,omitempty"`
	Year       *int       `json:"year,omitempty"`
	Phone      string     `json:"phone"`
	Address    string     `json:"address,omitempty"`
	IsActive   bool       `json:"is_active"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

func NewPublicUser(u *domain.User) PublicUser {
	return PublicUser{
		UUID:       u.UUID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		RollNumber: u.RollNumber,
		Year:       u.Year,
		Phone:      u.Phone,
		Address:    u.Address,
		IsActive:   u.IsActive,
		LastLogin:  u.LastLogin,
	}
}

func NewPublicUsers(users []domain.User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for i := range users {
		out = append(out, NewPublicUser(&users[i]))
	}
	return out
}
