package models

import (
	"time"

	"github.com/angelmondragon/secureguard-backend/pkg/enums"
)

// Supervisor manages a roster of guards.
type Supervisor struct {
	ID                int64               `gorm:"column:id;primaryKey;autoIncrement"`
	FullName          string              `gorm:"column:full_name;not null"`
	Email             string              `gorm:"column:email;not null;uniqueIndex"`
	Phone             string              `gorm:"column:phone;not null"`
	Password          string              `gorm:"column:password;not null"`
	Role              enums.Role          `gorm:"column:role;not null;default:supervisor"`
	Status            enums.AccountStatus `gorm:"column:status;not null;default:Active"`
	TerminationReason *string             `gorm:"column:termination_reason"`
	CreatedDate       time.Time           `gorm:"column:created_date;autoCreateTime"`
}

func (Supervisor) TableName() string { return "supervisors" }
