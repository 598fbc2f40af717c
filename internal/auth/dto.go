package auth

import (
	"time"

	"github.com/angelmondragon/secureguard-backend/pkg/enums"
)

// LoginRequest captures the credentials sent to the login endpoint. Missing
// fields fail as invalid credentials rather than validation errors.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the resolved identity plus its bearer token.
type LoginResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      enums.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
	Token     string     `json:"token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// UpdateProfileRequest changes the caller's display name and/or email.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}
