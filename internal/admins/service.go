package admins

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/secureguard-backend/internal/emails"
	"github.com/angelmondragon/secureguard-backend/internal/identity"
	"github.com/angelmondragon/secureguard-backend/pkg/db"
	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"github.com/angelmondragon/secureguard-backend/pkg/logger"
	"gorm.io/gorm"
)

const msgAdminNotFound = "admin not found"

// Service manages administrator accounts.
type Service interface {
	List(ctx context.Context) ([]AdminDTO, error)
	Create(ctx context.Context, req CreateAdminRequest) (*AdminDTO, error)
	Update(ctx context.Context, id int64, req UpdateAdminRequest) (*AdminDTO, error)
	Delete(ctx context.Context, callerID, targetID int64) error
	Seed(ctx context.Context, req SeedRequest, resetPassword bool) (*SeedResult, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

type ServiceParams struct {
	DB     *db.Client
	Hasher passwordHasher
	Logger *logger.Logger
}

type service struct {
	db     *db.Client
	hasher passwordHasher
	emails emails.Registry
	logg   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	return &service{
		db:     params.DB,
		hasher: params.Hasher,
		emails: emails.NewRegistry(),
		logg:   params.Logger,
	}, nil
}

func (s *service) List(ctx context.Context) ([]AdminDTO, error) {
	rows, err := NewRepository(s.db.DB()).List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list admins")
	}
	out := make([]AdminDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, req CreateAdminRequest) (*AdminDTO, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email, and password are required")
	}
	if err := s.emails.EnsureAvailable(ctx, s.db.DB(), email, enums.RoleAdmin, 0); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	admin := &models.Admin{Name: name, Email: email, Password: hash, Role: enums.RoleAdmin}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := NewRepository(tx).Create(ctx, admin); err != nil {
			return emails.ConflictFromStore(err, "create admin")
		}
		return s.emails.Claim(ctx, tx, admin.Email, enums.RoleAdmin, admin.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "admin_id", admin.ID), "admins.created")
	return FromModel(admin), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateAdminRequest) (*AdminDTO, error) {
	var updated *models.Admin
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "load admin")
		}

		updates := map[string]any{}
		if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
			updates["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
			email := strings.TrimSpace(*req.Email)
			if err := s.emails.Move(ctx, tx, current.Email, email, enums.RoleAdmin, id); err != nil {
				return err
			}
			updates["email"] = email
		}
		if req.Password != nil && *req.Password != "" {
			hash, err := s.hasher.Hash(*req.Password)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
			}
			updates["password"] = hash
		}

		if len(updates) > 0 {
			if err := repo.Update(ctx, id, updates); err != nil {
				return emails.ConflictFromStore(err, "update admin")
			}
		}
		updated, err = repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload admin")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

// Delete hard-deletes an administrator. Self-deletion is rejected before the store is touched.
func (s *service) Delete(ctx context.Context, callerID, targetID int64) error {
	if err := identity.ForbidSelfDeletion(callerID, targetID); err != nil {
		return err
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		current, err := repo.FindByID(ctx, targetID)
		if err != nil {
			return notFoundOr(err, "load admin")
		}
		deleted, err := repo.Delete(ctx, targetID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete admin")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, msgAdminNotFound)
		}
		return s.emails.Release(ctx, tx, current.Email, enums.RoleAdmin, targetID)
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"admin_id": targetID, "deleted_by": callerID}), "admins.deleted")
	return nil
}

func notFoundOr(err error, op string) error {
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, msgAdminNotFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
