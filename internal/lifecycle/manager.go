package lifecycle

import (
	"context"
	"fmt"

	"github.com/angelmondragon/secureguard-backend/pkg/db"
	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"github.com/angelmondragon/secureguard-backend/pkg/logger"
	"github.com/angelmondragon/secureguard-backend/pkg/metrics"
	"gorm.io/gorm"
)

// Result describes the outcome of a status request.
type Result struct {
	From    enums.AccountStatus
	To      enums.AccountStatus
	Changed bool
}

// Manager applies status transitions and termination reasons to supervisors and guards.
type Manager struct {
	db      *gorm.DB
	logg    *logger.Logger
	metrics *metrics.AuthMetrics
}

func NewManager(conn *gorm.DB, logg *logger.Logger, m *metrics.AuthMetrics) (*Manager, error) {
	if conn == nil {
		return nil, fmt.Errorf("db is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Manager{db: conn, logg: logg, metrics: m}, nil
}

// Transition moves the account to target. reason is only stored when target is
// Terminated; reactivation clears any stored reason.
func (m *Manager) Transition(ctx context.Context, kind enums.Role, id int64, target string, reason *string) (Result, error) {
	return m.TransitionTx(ctx, m.db, kind, id, target, reason)
}

// TransitionTx is Transition run on conn, so a caller can apply it in the same
// transaction as other column writes.
func (m *Manager) TransitionTx(ctx context.Context, conn *gorm.DB, kind enums.Role, id int64, target string, reason *string) (Result, error) {
	if conn == nil {
		conn = m.db
	}
	table, err := tableFor(kind)
	if err != nil {
		return Result{}, err
	}
	to, err := ParseTarget(target)
	if err != nil {
		return Result{}, err
	}

	from, err := m.currentStatus(ctx, conn, table, kind, id)
	if err != nil {
		return Result{}, err
	}

	if from == to {
		if to == enums.AccountStatusTerminated && reason != nil {
			if err := m.writeReason(ctx, conn, table, kind, id, reason); err != nil {
				return Result{}, err
			}
		}
		return Result{From: from, To: to}, nil
	}
	if !CanTransition(from, to) {
		return Result{}, transitionError(from, to)
	}

	updates := map[string]any{"status": to}
	switch to {
	case enums.AccountStatusTerminated:
		updates["termination_reason"] = reason
	case enums.AccountStatusActive:
		updates["termination_reason"] = nil
	}

	res := conn.WithContext(ctx).Table(table.Name).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "update status")
	}
	if res.RowsAffected == 0 {
		return Result{}, m.lostRace(ctx, conn, table, kind, id)
	}

	m.metrics.IncTransition(kind.String(), from.String(), to.String())
	logCtx := m.logg.WithFields(ctx, map[string]any{
		"account_kind": kind,
		"account_id":   id,
		"from":         from,
		"to":           to,
	})
	m.logg.Info(logCtx, "lifecycle.transition")

	return Result{From: from, To: to, Changed: true}, nil
}

// UpdateTerminationReason overwrites the reason of a Terminated account.
func (m *Manager) UpdateTerminationReason(ctx context.Context, kind enums.Role, id int64, reason string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	current, err := m.currentStatus(ctx, m.db, table, kind, id)
	if err != nil {
		return err
	}
	if current != enums.AccountStatusTerminated {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "termination reason can only be set on a Terminated %s", kind)
	}
	return m.writeReason(ctx, m.db, table, kind, id, &reason)
}

func (m *Manager) writeReason(ctx context.Context, conn *gorm.DB, table models.AccountTable, kind enums.Role, id int64, reason *string) error {
	res := conn.WithContext(ctx).Table(table.Name).
		Where("id = ? AND status = ?", id, enums.AccountStatusTerminated).
		Update("termination_reason", reason)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "update termination reason")
	}
	if res.RowsAffected == 0 {
		return m.lostRace(ctx, conn, table, kind, id)
	}
	m.logg.Info(m.logg.WithFields(ctx, map[string]any{
		"account_kind": kind,
		"account_id":   id,
	}), "lifecycle.termination_reason_updated")
	return nil
}

// lostRace re-reads the row after a conditional write matched nothing.
func (m *Manager) lostRace(ctx context.Context, conn *gorm.DB, table models.AccountTable, kind enums.Role, id int64) error {
	if _, err := m.currentStatus(ctx, conn, table, kind, id); err != nil {
		return err
	}
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "%s status changed concurrently, retry the request", kind)
}

func (m *Manager) currentStatus(ctx context.Context, conn *gorm.DB, table models.AccountTable, kind enums.Role, id int64) (enums.AccountStatus, error) {
	var row struct {
		Status enums.AccountStatus
	}
	err := conn.WithContext(ctx).Table(table.Name).Select("status").Where("id = ?", id).Take(&row).Error
	if err != nil {
		if db.IsNotFound(err) {
			return "", pkgerrors.Newf(pkgerrors.CodeNotFound, "%s not found", kind)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load status")
	}
	return row.Status, nil
}

func tableFor(kind enums.Role) (models.AccountTable, error) {
	table, ok := models.AccountTableFor(kind)
	if !ok || !table.HasStatus {
		return models.AccountTable{}, pkgerrors.Newf(pkgerrors.CodeValidation, "%s accounts have no status", kind)
	}
	return table, nil
}
