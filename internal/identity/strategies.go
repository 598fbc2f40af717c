package identity

import (
	"context"

	"github.com/angelmondragon/secureguard-backend/internal/emails"
	"github.com/angelmondragon/secureguard-backend/pkg/db"
	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"gorm.io/gorm"
)

// Strategy looks accounts up in one credential store.
type Strategy interface {
	Role() enums.Role
	FindByID(ctx context.Context, id int64) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
}

// StoreStrategies returns the GORM-backed strategies for all three stores.
func StoreStrategies(conn *gorm.DB) []Strategy {
	return []Strategy{
		adminStrategy{db: conn},
		supervisorStrategy{db: conn},
		guardStrategy{db: conn},
	}
}

type adminStrategy struct{ db *gorm.DB }

func (adminStrategy) Role() enums.Role { return enums.RoleAdmin }

func (s adminStrategy) FindByID(ctx context.Context, id int64) (*Account, error) {
	var row models.Admin
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, lookupError(err, "load admin")
	}
	return adminAccount(row), nil
}

func (s adminStrategy) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var row models.Admin
	if err := s.db.WithContext(ctx).Where("LOWER(email) = ?", emails.Normalize(email)).Take(&row).Error; err != nil {
		return nil, lookupError(err, "load admin by email")
	}
	return adminAccount(row), nil
}

func adminAccount(row models.Admin) *Account {
	return &Account{
		Identity: Identity{
			ID:        row.ID,
			Name:      row.Name,
			Email:     row.Email,
			Role:      enums.RoleAdmin,
			CreatedAt: row.CreatedAt,
		},
		PasswordHash: row.Password,
	}
}

type supervisorStrategy struct{ db *gorm.DB }

func (supervisorStrategy) Role() enums.Role { return enums.RoleSupervisor }

func (s supervisorStrategy) FindByID(ctx context.Context, id int64) (*Account, error) {
	var row models.Supervisor
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, lookupError(err, "load supervisor")
	}
	return supervisorAccount(row), nil
}

func (s supervisorStrategy) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var row models.Supervisor
	if err := s.db.WithContext(ctx).Where("LOWER(email) = ?", emails.Normalize(email)).Take(&row).Error; err != nil {
		return nil, lookupError(err, "load supervisor by email")
	}
	return supervisorAccount(row), nil
}

func supervisorAccount(row models.Supervisor) *Account {
	return &Account{
		Identity: Identity{
			ID:        row.ID,
			Name:      row.FullName,
			Email:     row.Email,
			Role:      enums.RoleSupervisor,
			Status:    row.Status,
			CreatedAt: row.CreatedDate,
		},
		PasswordHash: row.Password,
	}
}

type guardStrategy struct{ db *gorm.DB }

func (guardStrategy) Role() enums.Role { return enums.RoleGuard }

func (s guardStrategy) FindByID(ctx context.Context, id int64) (*Account, error) {
	var row models.Guard
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, lookupError(err, "load guard")
	}
	return guardAccount(row), nil
}

func (s guardStrategy) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var row models.Guard
	if err := s.db.WithContext(ctx).Where("LOWER(email) = ?", emails.Normalize(email)).Take(&row).Error; err != nil {
		return nil, lookupError(err, "load guard by email")
	}
	return guardAccount(row), nil
}

func guardAccount(row models.Guard) *Account {
	acct := &Account{
		Identity: Identity{
			ID:        row.ID,
			Name:      row.FullName,
			Email:     row.Email,
			Role:      enums.RoleGuard,
			Status:    row.Status,
			CreatedAt: row.CreatedAt,
		},
	}
	if row.Password != nil {
		acct.PasswordHash = *row.Password
	}
	return acct
}

func lookupError(err error, op string) error {
	if db.IsNotFound(err) {
		return ErrIdentityNotFound
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
