package guards

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/secureguard-backend/internal/emails"
	"github.com/angelmondragon/secureguard-backend/internal/lifecycle"
	"github.com/angelmondragon/secureguard-backend/pkg/db"
	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"github.com/angelmondragon/secureguard-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	msgGuardNotFound      = "guard not found"
	msgSupervisorNotFound = "supervisor not found"
	msgUnknownSupervisor  = "supervisorId does not reference an existing supervisor"
)

type Service interface {
	List(ctx context.Context) ([]GuardDTO, error)
	Get(ctx context.Context, id int64) (*GuardDetailDTO, error)
	ListBySupervisor(ctx context.Context, supervisorID int64) ([]GuardDTO, error)
	Create(ctx context.Context, req CreateGuardRequest) (*GuardDTO, error)
	Update(ctx context.Context, id int64, req UpdateGuardRequest) (*GuardDTO, error)
	ChangeStatus(ctx context.Context, id int64, req StatusRequest) (*GuardDTO, error)
	UpdateTerminationReason(ctx context.Context, id int64, reason string) (*GuardDTO, error)
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

func (s *service) List(ctx context.Context) ([]GuardDTO, error) {
	rows, err := NewRepository(s.db.DB()).List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list guards")
	}
	return toDTOs(rows), nil
}

// Get returns the guard with a supervisor label that never fails on a dangling reference.
func (s *service) Get(ctx context.Context, id int64) (*GuardDetailDTO, error) {
	repo := NewRepository(s.db.DB())
	row, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load guard")
	}

	detail := &GuardDetailDTO{GuardDTO: *FromModel(row)}
	detail.SupervisorName, err = s.supervisorLabel(ctx, repo, row.SupervisorID)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) supervisorLabel(ctx context.Context, repo *Repository, supervisorID *int64) (string, error) {
	if supervisorID == nil {
		return LabelUnassigned, nil
	}
	sup, err := repo.FindSupervisor(ctx, *supervisorID)
	switch {
	case err == nil:
		return sup.FullName, nil
	case db.IsNotFound(err):
		return fmt.Sprintf(labelUnknownTemplate, *supervisorID), nil
	default:
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load supervisor")
	}
}

func (s *service) ListBySupervisor(ctx context.Context, supervisorID int64) ([]GuardDTO, error) {
	repo := NewRepository(s.db.DB())
	if _, err := repo.FindSupervisor(ctx, supervisorID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, msgSupervisorNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load supervisor")
	}
	rows, err := repo.ListBySupervisor(ctx, supervisorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list supervisor guards")
	}
	return toDTOs(rows), nil
}

func (s *service) Create(ctx context.Context, req CreateGuardRequest) (*GuardDTO, error) {
	row := &models.Guard{
		FullName:         strings.TrimSpace(req.FullName),
		Email:            strings.TrimSpace(req.Email),
		Phone:            strings.TrimSpace(req.Phone),
		Role:             enums.RoleGuard,
		Address:          strings.TrimSpace(req.Address),
		EmergencyContact: strings.TrimSpace(req.EmergencyContact),
		AssignedArea:     strings.TrimSpace(req.AssignedArea),
		Status:           enums.AccountStatusActive,
		SupervisorID:     req.SupervisorID,
	}
	if row.FullName == "" || row.Email == "" || row.Phone == "" || row.Address == "" ||
		row.EmergencyContact == "" || row.AssignedArea == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fullName, email, phone, address, dateOfBirth, emergencyContact, and assignedArea are required")
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	row.DateOfBirth = dob
	if req.Status != "" {
		if row.Status, err = lifecycle.ParseTarget(req.Status); err != nil {
			return nil, err
		}
	}
	if err := s.emails.EnsureAvailable(ctx, s.db.DB(), row.Email, enums.RoleGuard, 0); err != nil {
		return nil, err
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		row.Password = &hash
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if err := ensureSupervisor(ctx, repo, row.SupervisorID); err != nil {
			return err
		}
		if err := repo.Create(ctx, row); err != nil {
			return emails.ConflictFromStore(err, "create guard")
		}
		return s.emails.Claim(ctx, tx, row.Email, enums.RoleGuard, row.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "guard_id", row.ID), "guards.created")
	return FromModel(row), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateGuardRequest) (*GuardDTO, error) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "load guard")
		}

		updates := map[string]any{}
		setText(updates, "full_name", req.FullName)
		setText(updates, "phone", req.Phone)
		setText(updates, "address", req.Address)
		setText(updates, "emergency_contact", req.EmergencyContact)
		setText(updates, "assigned_area", req.AssignedArea)
		if req.DateOfBirth != nil {
			dob, err := parseDate(*req.DateOfBirth)
			if err != nil {
				return err
			}
			updates["date_of_birth"] = dob
		}
		if req.SupervisorID.Set {
			if err := ensureSupervisor(ctx, repo, req.SupervisorID.Value); err != nil {
				return err
			}
			updates["supervisor_id"] = req.SupervisorID.Value
		}
		if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
			email := strings.TrimSpace(*req.Email)
			if err := s.emails.Move(ctx, tx, current.Email, email, enums.RoleGuard, id); err != nil {
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
				return emails.ConflictFromStore(err, "update guard")
			}
		}
		// A rejected status rolls back the field edits with it.
		if req.Status != nil {
			if _, err := s.lifecycle.TransitionTx(ctx, tx, enums.RoleGuard, id, *req.Status, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *service) ChangeStatus(ctx context.Context, id int64, req StatusRequest) (*GuardDTO, error) {
	if _, err := s.lifecycle.Transition(ctx, enums.RoleGuard, id, req.Status, req.Reason); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *service) UpdateTerminationReason(ctx context.Context, id int64, reason string) (*GuardDTO, error) {
	if err := s.lifecycle.UpdateTerminationReason(ctx, enums.RoleGuard, id, reason); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// DeletePermanent hard-deletes a Suspended or Terminated guard and releases its email.
func (s *service) DeletePermanent(ctx context.Context, id int64) error {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "load guard")
		}
		if err := lifecycle.CheckDeletable(current.Status); err != nil {
			return err
		}
		deleted, err := repo.DeleteInactive(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete guard")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, lifecycle.MsgDeleteActive)
		}
		return s.emails.Release(ctx, tx, current.Email, enums.RoleGuard, id)
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithField(ctx, "guard_id", id), "guards.deleted")
	return nil
}

func (s *service) load(ctx context.Context, id int64) (*GuardDTO, error) {
	row, err := NewRepository(s.db.DB()).FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load guard")
	}
	return FromModel(row), nil
}

func ensureSupervisor(ctx context.Context, repo *Repository, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := repo.FindSupervisor(ctx, *id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeValidation, msgUnknownSupervisor).
				WithDetails(map[string]any{"supervisorId": *id})
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load supervisor")
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "dateOfBirth is required")
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "dateOfBirth must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

func setText(updates map[string]any, column string, value *string) {
	if value == nil {
		return
	}
	if v := strings.TrimSpace(*value); v != "" {
		updates[column] = v
	}
}

func toDTOs(rows []models.Guard) []GuardDTO {
	out := make([]GuardDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

func notFoundOr(err error, op string) error {
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, msgGuardNotFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
