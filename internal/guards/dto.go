package guards

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
)

// DateLayout is the wire format of dateOfBirth.
const DateLayout = "2006-01-02"

const (
	LabelUnassigned      = "Unassigned"
	labelUnknownTemplate = "Unknown (ID: %d)"
)

type GuardDTO struct {
	ID                int64               `json:"id"`
	FullName          string              `json:"fullName"`
	Email             string              `json:"email"`
	Phone             string              `json:"phone"`
	Role              enums.Role          `json:"role"`
	Address           string              `json:"address"`
	DateOfBirth       string              `json:"dateOfBirth"`
	EmergencyContact  string              `json:"emergencyContact"`
	AssignedArea      string              `json:"assignedArea"`
	Status            enums.AccountStatus `json:"status"`
	TerminationReason *string             `json:"terminationReason"`
	SupervisorID      *int64              `json:"supervisorId"`
	HasLogin          bool                `json:"hasLogin"`
	CreatedAt         time.Time           `json:"createdAt"`
}

// GuardDetailDTO adds the display label of the assigned supervisor.
type GuardDetailDTO struct {
	GuardDTO
	SupervisorName string `json:"supervisorName"`
}

type CreateGuardRequest struct {
	FullName         string  `json:"fullName" validate:"required"`
	Email            string  `json:"email" validate:"required,email"`
	Phone            string  `json:"phone" validate:"required"`
	Password         *string `json:"password,omitempty"`
	Address          string  `json:"address" validate:"required"`
	DateOfBirth      string  `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	EmergencyContact string  `json:"emergencyContact" validate:"required"`
	AssignedArea     string  `json:"assignedArea" validate:"required"`
	Status           string  `json:"status,omitempty"`
	SupervisorID     *int64  `json:"supervisorId,omitempty"`
}

// UpdateGuardRequest is a partial update over the editable field set.
type UpdateGuardRequest struct {
	FullName         *string       `json:"fullName,omitempty"`
	Email            *string       `json:"email,omitempty" validate:"omitempty,email"`
	Phone            *string       `json:"phone,omitempty"`
	Password         *string       `json:"password,omitempty"`
	Address          *string       `json:"address,omitempty"`
	DateOfBirth      *string       `json:"dateOfBirth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EmergencyContact *string       `json:"emergencyContact,omitempty"`
	AssignedArea     *string       `json:"assignedArea,omitempty"`
	Status           *string       `json:"status,omitempty"`
	SupervisorID     OptionalInt64 `json:"supervisorId"`
}

// OptionalInt64 distinguishes an absent field from an explicit null.
type OptionalInt64 struct {
	Set   bool
	Value *int64
}

func (o *OptionalInt64) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type StatusRequest struct {
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"`
}

type TerminationReasonRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func FromModel(g *models.Guard) *GuardDTO {
	if g == nil {
		return nil
	}
	return &GuardDTO{
		ID:                g.ID,
		FullName:          g.FullName,
		Email:             g.Email,
		Phone:             g.Phone,
		Role:              enums.RoleGuard,
		Address:           g.Address,
		DateOfBirth:       g.DateOfBirth.Format(DateLayout),
		EmergencyContact:  g.EmergencyContact,
		AssignedArea:      g.AssignedArea,
		Status:            g.Status,
		TerminationReason: g.TerminationReason,
		SupervisorID:      g.SupervisorID,
		HasLogin:          g.HasCredentials(),
		CreatedAt:         g.CreatedAt,
	}
}
