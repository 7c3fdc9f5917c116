package dto

import (
	"time"

	"github.com/dopaj/field-service/internal/domain"
)

// UserRequest payload for add/update. Password is optional on update.
type UserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// UserResponse never exposes the password hash.
type UserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	Protected bool        `json:"protected"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewUserResponse maps a domain account.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Protected: user.Protected,
		CreatedAt: user.CreatedAt,
	}
}
