package models

import (
	"time"

	"github.com/angelmondragon/secureguard-backend/pkg/enums"
)

// Guard is a field employee. Password is nil for guards without login access and
// SupervisorID is a weak reference that survives the supervisor's deletion as NULL.
type Guard struct {
	ID                int64               `gorm:"column:id;primaryKey;autoIncrement"`
	FullName          string              `gorm:"column:full_name;not null"`
	Email             string              `gorm:"column:email;not null;uniqueIndex"`
	Phone             string              `gorm:"column:phone;not null"`
	Password          *string             `gorm:"column:password"`
	Role              enums.Role          `gorm:"column:role;not null;default:guard"`
	Address           string              `gorm:"column:address;not null"`
	DateOfBirth       time.Time           `gorm:"column:date_of_birth;type:date;not null"`
	EmergencyContact  string              `gorm:"column:emergency_contact;not null"`
	AssignedArea      string              `gorm:"column:assigned_area;not null"`
	Status            enums.AccountStatus `gorm:"column:status;not null;default:Active"`
	TerminationReason *string             `gorm:"column:termination_reason"`
	SupervisorID      *int64              `gorm:"column:supervisor_id"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (Guard) TableName() string { return "guards" }

// HasCredentials reports whether the guard can authenticate.
func (g Guard) HasCredentials() bool {
	return g.Password != nil && *g.Password != ""
}
