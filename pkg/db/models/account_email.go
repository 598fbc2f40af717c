package models

import "github.com/angelmondragon/secureguard-backend/pkg/enums"

// AccountEmail claims a normalized email for exactly one account across all
// three credential stores. The primary key is what makes the claim atomic.
type AccountEmail struct {
	Email       string     `gorm:"column:email;primaryKey"`
	AccountKind enums.Role `gorm:"column:account_kind;not null"`
	AccountID   int64      `gorm:"column:account_id;not null"`
}

func (AccountEmail) TableName() string { return "account_emails" }
