package supervisors

import (
	"time"

	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
)

type SupervisorDTO struct {
	ID                int64               `json:"id"`
	FullName          string              `json:"fullName"`
	Email             string              `json:"email"`
	Phone             string              `json:"phone"`
	Role              enums.Role          `json:"role"`
	Status            enums.AccountStatus `json:"status"`
	TerminationReason *string             `json:"terminationReason"`
	CreatedDate       time.Time           `json:"createdDate"`
}

type CreateSupervisorRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
	Status   string `json:"status,omitempty"`
}

// UpdateSupervisorRequest is a partial update. A status change goes through the
// lifecycle rules exactly like the dedicated status endpoint.
type UpdateSupervisorRequest struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty"`
	Status   *string `json:"status,omitempty"`
}

type StatusRequest struct {
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"`
}

type TerminationReasonRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// TerminateRequest is the optional body of the soft-delete route.
type TerminateRequest struct {
	Reason *string `json:"reason,omitempty"`
}

type TerminateResponse struct {
	Message    string        `json:"message"`
	Supervisor SupervisorDTO `json:"supervisor"`
}

func FromModel(s *models.Supervisor) *SupervisorDTO {
	if s == nil {
		return nil
	}
	return &SupervisorDTO{
		ID:                s.ID,
		FullName:          s.FullName,
		Email:             s.Email,
		Phone:             s.Phone,
		Role:              enums.RoleSupervisor,
		Status:            s.Status,
		TerminationReason: s.TerminationReason,
		CreatedDate:       s.CreatedDate,
	}
}
