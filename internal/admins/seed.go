package admins

import (
	"context"
	"strings"

	"github.com/angelmondragon/secureguard-backend/pkg/db"
	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"gorm.io/gorm"
)

// Seed makes sure the bootstrap administrator exists. An existing account is left
// untouched unless resetPassword is set, in which case its password is overwritten
// with req.Password.
func (s *service) Seed(ctx context.Context, req SeedRequest, resetPassword bool) (*SeedResult, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial admin email and password are required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Admin"
	}

	result := &SeedResult{}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		admin, err := repo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if resetPassword {
				hash, err := s.hasher.Hash(req.Password)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
				}
				if err := repo.Update(ctx, admin.ID, map[string]any{"password": hash}); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reset admin password")
				}
				result.PasswordReset = true
			}
			if err := s.ensureClaim(ctx, tx, admin); err != nil {
				return err
			}
		case db.IsNotFound(err):
			if err := s.emails.EnsureAvailable(ctx, tx, email, enums.RoleAdmin, 0); err != nil {
				return err
			}
			hash, err := s.hasher.Hash(req.Password)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
			}
			admin = &models.Admin{Name: name, Email: email, Password: hash, Role: enums.RoleAdmin}
			if err := repo.Create(ctx, admin); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin")
			}
			if err := s.emails.Claim(ctx, tx, admin.Email, enums.RoleAdmin, admin.ID); err != nil {
				return err
			}
			result.Created = true
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load admin")
		}
		result.Admin = *FromModel(admin)

		if result.TotalAdmins, err = repo.Count(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count admins")
		}
		if err := tx.WithContext(ctx).Model(&models.Supervisor{}).Count(&result.TotalSupervisors).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count supervisors")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"admin_id":       result.Admin.ID,
		"created":        result.Created,
		"password_reset": result.PasswordReset,
	}), "admins.seeded")
	return result, nil
}

// ensureClaim registers a claim for admins created before the registry existed.
func (s *service) ensureClaim(ctx context.Context, tx *gorm.DB, admin *models.Admin) error {
	owner, err := s.emails.Owner(ctx, tx, admin.Email)
	if err != nil {
		return err
	}
	if owner != nil {
		return nil
	}
	return s.emails.Claim(ctx, tx, admin.Email, enums.RoleAdmin, admin.ID)
}
