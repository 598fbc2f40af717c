package admins

import (
	"time"

	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
)

// AdminDTO is the transport shape of an administrator; the password hash never leaves the service.
type AdminDTO struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      enums.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

type CreateAdminRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	// Role is accepted for compatibility with older clients; it can only be admin.
	Role string `json:"role,omitempty" validate:"omitempty,oneof=admin"`
}

// UpdateAdminRequest carries a partial update; nil fields keep their value.
type UpdateAdminRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=admin"`
}

// SeedRequest names the bootstrap administrator.
type SeedRequest struct {
	Email    string
	Password string
	Name     string
}

// SeedResult reports what seeding did.
type SeedResult struct {
	Admin            AdminDTO `json:"admin"`
	Created          bool     `json:"created"`
	PasswordReset    bool     `json:"passwordReset"`
	TotalAdmins      int64    `json:"totalAdmins"`
	TotalSupervisors int64    `json:"totalSupervisors"`
}

func FromModel(a *models.Admin) *AdminDTO {
	if a == nil {
		return nil
	}
	return &AdminDTO{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      enums.RoleAdmin,
		CreatedAt: a.CreatedAt,
	}
}
