package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/secureguard-backend/pkg/db/dbtest"
	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func setup(t *testing.T) (*gorm.DB, *Manager) {
	t.Helper()
	conn := dbtest.Open(t)
	m, err := NewManager(conn, nil, nil)
	require.NoError(t, err)
	return conn, m
}

func seedSupervisor(t *testing.T, conn *gorm.DB, status enums.AccountStatus) models.Supervisor {
	t.Helper()
	row := models.Supervisor{FullName: "Sam", Email: "sam" + string(status) + "@example.com", Phone: "1", Password: "h", Role: enums.RoleSupervisor, Status: status}
	require.NoError(t, conn.Create(&row).Error)
	return row
}

func seedGuard(t *testing.T, conn *gorm.DB, status enums.AccountStatus) models.Guard {
	t.Helper()
	row := models.Guard{
		FullName: "Gail", Email: "gail" + string(status) + "@example.com", Phone: "1", Role: enums.RoleGuard,
		Address: "a", DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), EmergencyContact: "e", AssignedArea: "z",
		Status: status,
	}
	require.NoError(t, conn.Create(&row).Error)
	return row
}

func loadSupervisor(t *testing.T, conn *gorm.DB, id int64) models.Supervisor {
	t.Helper()
	var row models.Supervisor
	require.NoError(t, conn.First(&row, id).Error)
	return row
}

func TestTransitionTableClosure(t *testing.T) {
	allowed := map[[2]enums.AccountStatus]bool{
		{enums.AccountStatusActive, enums.AccountStatusSuspended}:     true,
		{enums.AccountStatusSuspended, enums.AccountStatusActive}:     true,
		{enums.AccountStatusActive, enums.AccountStatusTerminated}:    true,
		{enums.AccountStatusSuspended, enums.AccountStatusTerminated}: true,
	}
	for _, from := range enums.AccountStatuses() {
		for _, to := range enums.AccountStatuses() {
			assert.Equal(t, allowed[[2]enums.AccountStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTransitionEveryPairAgainstStore(t *testing.T) {
	for _, from := range enums.AccountStatuses() {
		for _, to := range enums.AccountStatuses() {
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				conn, m := setup(t)
				sup := seedSupervisor(t, conn, from)

				res, err := m.Transition(context.Background(), enums.RoleSupervisor, sup.ID, string(to), nil)
				stored := loadSupervisor(t, conn, sup.ID).Status

				switch {
				case from == to:
					require.NoError(t, err)
					assert.False(t, res.Changed)
					assert.Equal(t, from, stored)
				case CanTransition(from, to):
					require.NoError(t, err)
					assert.True(t, res.Changed)
					assert.Equal(t, to, stored)
				default:
					assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "expected state conflict, got %v", err)
					assert.Equal(t, from, stored, "rejected transition must not write")
				}
			})
		}
	}
}

func TestSuspendThenReactivate(t *testing.T) {
	conn, m := setup(t)
	sup := seedSupervisor(t, conn, enums.AccountStatusActive)
	ctx := context.Background()

	_, err := m.Transition(ctx, enums.RoleSupervisor, sup.ID, "Suspended", nil)
	require.NoError(t, err)
	assert.Equal(t, enums.AccountStatusSuspended, loadSupervisor(t, conn, sup.ID).Status)

	_, err = m.Transition(ctx, enums.RoleSupervisor, sup.ID, "Active", nil)
	require.NoError(t, err)
	row := loadSupervisor(t, conn, sup.ID)
	assert.Equal(t, enums.AccountStatusActive, row.Status)
	assert.Nil(t, row.TerminationReason)
}

func TestTerminateStoresReasonAndLeavesGuardsAlone(t *testing.T) {
	conn, m := setup(t)
	sup := seedSupervisor(t, conn, enums.AccountStatusActive)
	guard := seedGuard(t, conn, enums.AccountStatusActive)
	require.NoError(t, conn.Model(&models.Guard{}).Where("id = ?", guard.ID).Update("supervisor_id", sup.ID).Error)
	ctx := context.Background()

	_, err := m.Transition(ctx, enums.RoleSupervisor, sup.ID, "Terminated", strPtr("contract ended"))
	require.NoError(t, err)

	row := loadSupervisor(t, conn, sup.ID)
	assert.Equal(t, enums.AccountStatusTerminated, row.Status)
	require.NotNil(t, row.TerminationReason)
	assert.Equal(t, "contract ended", *row.TerminationReason)

	var g models.Guard
	require.NoError(t, conn.First(&g, guard.ID).Error)
	assert.Equal(t, enums.AccountStatusActive, g.Status)
	require.NotNil(t, g.SupervisorID)
	assert.Equal(t, sup.ID, *g.SupervisorID)

	_, err = m.Transition(ctx, enums.RoleSupervisor, sup.ID, "Terminated", strPtr("misconduct"))
	require.NoError(t, err, "re-terminating overwrites the reason")
	assert.Equal(t, "misconduct", *loadSupervisor(t, conn, sup.ID).TerminationReason)
}

func TestTerminatedIsTerminal(t *testing.T) {
	conn, m := setup(t)
	guard := seedGuard(t, conn, enums.AccountStatusTerminated)

	for _, target := range []string{"Active", "Suspended"} {
		_, err := m.Transition(context.Background(), enums.RoleGuard, guard.ID, target, nil)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	}
}

func TestTransitionValidation(t *testing.T) {
	conn, m := setup(t)
	sup := seedSupervisor(t, conn, enums.AccountStatusActive)
	ctx := context.Background()

	_, err := m.Transition(ctx, enums.RoleSupervisor, sup.ID, "", nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, "status is required", pkgerrors.As(err).Message())

	_, err = m.Transition(ctx, enums.RoleSupervisor, sup.ID, "Retired", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = m.Transition(ctx, enums.RoleSupervisor, 404, "Suspended", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = m.Transition(ctx, enums.RoleAdmin, 1, "Suspended", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateTerminationReason(t *testing.T) {
	conn, m := setup(t)
	active := seedSupervisor(t, conn, enums.AccountStatusActive)
	terminated := seedSupervisor(t, conn, enums.AccountStatusTerminated)
	ctx := context.Background()

	err := m.UpdateTerminationReason(ctx, enums.RoleSupervisor, active.ID, "nope")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	require.NoError(t, m.UpdateTerminationReason(ctx, enums.RoleSupervisor, terminated.ID, "left the company"))
	assert.Equal(t, "left the company", *loadSupervisor(t, conn, terminated.ID).TerminationReason)

	err = m.UpdateTerminationReason(ctx, enums.RoleSupervisor, 999, "x")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestTransitionLosesCompareAndSwap(t *testing.T) {
	conn, m := setup(t)
	sup := seedSupervisor(t, conn, enums.AccountStatusActive)

	// A concurrent writer terminates the supervisor between our read and our write.
	require.NoError(t, conn.Callback().Update().Before("gorm:update").Register("test:concurrent_writer", func(tx *gorm.DB) {
		if tx.Statement.Table != "supervisors" {
			return
		}
		_ = tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE supervisors SET status = ? WHERE id = ?", enums.AccountStatusTerminated, sup.ID).Error
	}))

	_, err := m.Transition(context.Background(), enums.RoleSupervisor, sup.ID, "Suspended", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "expected state conflict, got %v", err)
	assert.Equal(t, enums.AccountStatusTerminated, loadSupervisor(t, conn, sup.ID).Status)
}

func TestTransitionTxFollowsCallerTransaction(t *testing.T) {
	conn, m := setup(t)
	ctx := context.Background()
	sup := seedSupervisor(t, conn, enums.AccountStatusActive)

	err := conn.Transaction(func(tx *gorm.DB) error {
		res, err := m.TransitionTx(ctx, tx, enums.RoleSupervisor, sup.ID, "Suspended", nil)
		require.NoError(t, err)
		assert.True(t, res.Changed)
		return pkgerrors.New(pkgerrors.CodeValidation, "later write failed")
	})
	require.Error(t, err)
	assert.Equal(t, enums.AccountStatusActive, loadSupervisor(t, conn, sup.ID).Status)

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		_, err := m.TransitionTx(ctx, tx, enums.RoleSupervisor, sup.ID, "Suspended", nil)
		return err
	}))
	assert.Equal(t, enums.AccountStatusSuspended, loadSupervisor(t, conn, sup.ID).Status)
}
