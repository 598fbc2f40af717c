package models

import (
	"time"

	"github.com/angelmondragon/secureguard-backend/pkg/enums"
)

// Admin is an administrator account. Admins have no lifecycle status.
type Admin struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Email     string     `gorm:"column:email;not null;uniqueIndex"`
	Password  string     `gorm:"column:password;not null"`
	Name      string     `gorm:"column:name;not null;default:Admin"`
	Role      enums.Role `gorm:"column:role;not null;default:admin"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Admin) TableName() string { return "admins" }
