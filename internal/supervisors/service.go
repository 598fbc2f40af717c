package supervisors

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/secureguard-backend/internal/emails"
	"github.com/angelmondragon/secureguard-backend/internal/lifecycle"
	"github.com/angelmondragon/secureguard-backend/pkg/db"
	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"github.com/angelmondragon/secureguard-backend/pkg/logger"
	"gorm.io/gorm"
)

const msgSupervisorNotFound = "supervisor not found"

type Service interface {
	List(ctx context.Context) ([]SupervisorDTO, error)
	Get(ctx context.Context, id int64) (*SupervisorDTO, error)
	Create(ctx context.Context, req CreateSupervisorRequest) (*SupervisorDTO, error)
	Update(ctx context.Context, id int64, req UpdateSupervisorRequest) (*SupervisorDTO, error)
	ChangeStatus(ctx context.Context, id int64, req StatusRequest) (*SupervisorDTO, error)
	UpdateTerminationReason(ctx context.Context, id int64, reason string) (*SupervisorDTO, error)
	Terminate(ctx context.Context, id int64, reason *string) (*SupervisorDTO, error)
	DeletePermanent(ctx context.Context, id int64) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

type statusManager interface {
	Transition(ctx context.Context, kind enums.Role, id int64, target string, reason *string) (lifecycle.Result, error)
	TransitionTx(ctx context.Context, tx *gorm.DB, kind enums.Role, id int64, target string, reason *string) (lifecycle.Result, error)
	UpdateTerminationReason(ctx context.Context, kind enums.Role, id int64, reason string) error
}

type ServiceParams struct {
	DB        *db.Client
	Hasher    passwordHasher
	Lifecycle statusManager
	Logger    *logger.Logger
}

type service struct {
	db        *db.Client
	hasher    passwordHasher
	lifecycle statusManager
	emails    emails.Registry
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if params.Lifecycle == nil {
		return nil, fmt.Errorf("lifecycle manager is required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	return &service{
		db:        params.DB,
		hasher:    params.Hasher,
		lifecycle: params.Lifecycle,
		emails:    emails.NewRegistry(),
		logg:      params.Logger,
	}, nil
}

func (s *service) List(ctx context.Context) ([]SupervisorDTO, error) {
	rows, err := NewRepository(s.db.DB()).List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list supervisors")
	}
	out := make([]SupervisorDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*SupervisorDTO, error) {
	row, err := NewRepository(s.db.DB()).FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load supervisor")
	}
	return FromModel(row), nil
}

func (s *service) Create(ctx context.Context, req CreateSupervisorRequest) (*SupervisorDTO, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(req.Email)
	phone := strings.TrimSpace(req.Phone)
	if fullName == "" || email == "" || phone == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fullName, email, phone, and password are required")
	}
	status := enums.AccountStatusActive
	if req.Status != "" {
		parsed, err := lifecycle.ParseTarget(req.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	if err := s.emails.EnsureAvailable(ctx, s.db.DB(), email, enums.RoleSupervisor, 0); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	row := &models.Supervisor{
		FullName: fullName,
		Email:    email,
		Phone:    phone,
		Password: hash,
		Role:     enums.RoleSupervisor,
		Status:   status,
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := NewRepository(tx).Create(ctx, row); err != nil {
			return emails.ConflictFromStore(err, "create supervisor")
		}
		return s.emails.Claim(ctx, tx, row.Email, enums.RoleSupervisor, row.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "supervisor_id", row.ID), "supervisors.created")
	return FromModel(row), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateSupervisorRequest) (*SupervisorDTO, error) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "load supervisor")
		}

		updates := map[string]any{}
		if v := trimmed(req.FullName); v != "" {
			updates["full_name"] = v
		}
		if v := trimmed(req.Phone); v != "" {
			updates["phone"] = v
		}
		if v := trimmed(req.Email); v != "" {
			if err := s.emails.Move(ctx, tx, current.Email, v, enums.RoleSupervisor, id); err != nil {
				return err
			}
			updates["email"] = v
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
				return emails.ConflictFromStore(err, "update supervisor")
			}
		}
		// A rejected status rolls back the field edits with it.
		if req.Status != nil {
			if _, err := s.lifecycle.TransitionTx(ctx, tx, enums.RoleSupervisor, id, *req.Status, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) ChangeStatus(ctx context.Context, id int64, req StatusRequest) (*SupervisorDTO, error) {
	if _, err := s.lifecycle.Transition(ctx, enums.RoleSupervisor, id, req.Status, req.Reason); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) UpdateTerminationReason(ctx context.Context, id int64, reason string) (*SupervisorDTO, error) {
	if err := s.lifecycle.UpdateTerminationReason(ctx, enums.RoleSupervisor, id, reason); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Terminate is the soft removal of a supervisor. Assigned guards keep their reference.
func (s *service) Terminate(ctx context.Context, id int64, reason *string) (*SupervisorDTO, error) {
	if _, err := s.lifecycle.Transition(ctx, enums.RoleSupervisor, id, string(enums.AccountStatusTerminated), reason); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// DeletePermanent hard-deletes a Suspended or Terminated supervisor, unassigning its
// guards and releasing its email in the same transaction.
func (s *service) DeletePermanent(ctx context.Context, id int64) error {
	var detached int64
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "load supervisor")
		}
		if err := lifecycle.CheckDeletable(current.Status); err != nil {
			return err
		}

		if detached, err = repo.DetachGuards(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unassign guards")
		}
		deleted, err := repo.DeleteInactive(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete supervisor")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, lifecycle.MsgDeleteActive)
		}
		return s.emails.Release(ctx, tx, current.Email, enums.RoleSupervisor, id)
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"supervisor_id":   id,
		"guards_detached": detached,
	}), "supervisors.deleted")
	return nil
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func notFoundOr(err error, op string) error {
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, msgSupervisorNotFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
