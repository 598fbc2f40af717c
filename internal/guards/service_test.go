package guards

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/angelmondragon/secureguard-backend/internal/emails"
	"github.com/angelmondragon/secureguard-backend/internal/lifecycle"
	"github.com/angelmondragon/secureguard-backend/pkg/config"
	"github.com/angelmondragon/secureguard-backend/pkg/db"
	"github.com/angelmondragon/secureguard-backend/pkg/db/dbtest"
	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"github.com/angelmondragon/secureguard-backend/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*gorm.DB, Service, *security.Hasher) {
	t.Helper()
	conn := dbtest.Open(t)
	manager, err := lifecycle.NewManager(conn, nil, nil)
	require.NoError(t, err)
	hasher := security.NewHasher(config.PasswordConfig{Algorithm: config.PasswordAlgorithmBcrypt, BcryptCost: 4})
	svc, err := NewService(ServiceParams{DB: db.FromGorm(conn), Hasher: hasher, Lifecycle: manager})
	require.NoError(t, err)
	return conn, svc, hasher
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func newSupervisor(t *testing.T, conn *gorm.DB, name, email string) models.Supervisor {
	t.Helper()
	row := models.Supervisor{FullName: name, Email: email, Phone: "1", Password: "h", Role: enums.RoleSupervisor, Status: enums.AccountStatusActive}
	require.NoError(t, conn.Create(&row).Error)
	return row
}

func guardRequest(email string) CreateGuardRequest {
	return CreateGuardRequest{
		FullName:         "Gail Stone",
		Email:            email,
		Phone:            "555-0101",
		Address:          "1 Main St",
		DateOfBirth:      "1991-04-12",
		EmergencyContact: "555-0199",
		AssignedArea:     "North Gate",
	}
}

func TestCreateWithoutPasswordHasNoLogin(t *testing.T) {
	conn, svc, _ := newTestService(t)
	ctx := context.Background()

	g, err := svc.Create(ctx, guardRequest("gail@example.com"))
	require.NoError(t, err)
	assert.False(t, g.HasLogin)
	assert.Equal(t, "1991-04-12", g.DateOfBirth)
	assert.Equal(t, enums.AccountStatusActive, g.Status)
	assert.Nil(t, g.SupervisorID)

	var row models.Guard
	require.NoError(t, conn.First(&row, g.ID).Error)
	assert.Nil(t, row.Password)
}

func TestCreateWithPasswordAndSupervisor(t *testing.T) {
	conn, svc, hasher := newTestService(t)
	ctx := context.Background()
	sup := newSupervisor(t, conn, "Sam", "sam@example.com")

	req := guardRequest("gail@example.com")
	req.Password = strPtr("guard-pw")
	req.SupervisorID = int64Ptr(sup.ID)
	g, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.True(t, g.HasLogin)
	require.NotNil(t, g.SupervisorID)
	assert.Equal(t, sup.ID, *g.SupervisorID)

	var row models.Guard
	require.NoError(t, conn.First(&row, g.ID).Error)
	ok, err := hasher.Verify("guard-pw", *row.Password)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateValidation(t *testing.T) {
	_, svc, _ := newTestService(t)
	ctx := context.Background()

	req := guardRequest("gail@example.com")
	req.DateOfBirth = "12/04/1991"
	_, err := svc.Create(ctx, req)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	req = guardRequest("gail@example.com")
	req.SupervisorID = int64Ptr(77)
	_, err = svc.Create(ctx, req)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	req = guardRequest("")
	_, err = svc.Create(ctx, req)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateRejectsEmailHeldBySupervisor(t *testing.T) {
	conn, svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, emails.NewRegistry().Claim(ctx, conn, "sam@example.com", enums.RoleSupervisor, 1))

	_, err := svc.Create(ctx, guardRequest(" Sam@Example.com"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestDetailSupervisorLabel(t *testing.T) {
	conn, svc, _ := newTestService(t)
	ctx := context.Background()
	sup := newSupervisor(t, conn, "Sam Ward", "sam@example.com")

	unassigned, err := svc.Create(ctx, guardRequest("a@example.com"))
	require.NoError(t, err)
	detail, err := svc.Get(ctx, unassigned.ID)
	require.NoError(t, err)
	assert.Equal(t, LabelUnassigned, detail.SupervisorName)

	req := guardRequest("b@example.com")
	req.SupervisorID = int64Ptr(sup.ID)
	assigned, err := svc.Create(ctx, req)
	require.NoError(t, err)
	require.NoError(t, conn.Model(&models.Supervisor{}).Where("id = ?", sup.ID).Update("status", enums.AccountStatusTerminated).Error)
	detail, err = svc.Get(ctx, assigned.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam Ward", detail.SupervisorName, "terminated supervisors keep their name")

	// A reference left behind by a store without the foreign key.
	require.NoError(t, conn.Exec("PRAGMA foreign_keys = OFF").Error)
	dangling := models.Guard{
		FullName: "Dan", Email: "dan@example.com", Phone: "1", Role: enums.RoleGuard, Address: "a",
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), EmergencyContact: "e", AssignedArea: "z",
		Status: enums.AccountStatusActive, SupervisorID: int64Ptr(7),
	}
	require.NoError(t, conn.Create(&dangling).Error)
	require.NoError(t, conn.Exec("PRAGMA foreign_keys = ON").Error)

	detail, err = svc.Get(ctx, dangling.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unknown (ID: 7)", detail.SupervisorName)

	_, err = svc.Get(ctx, 9999)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateSupervisorReference(t *testing.T) {
	conn, svc, _ := newTestService(t)
	ctx := context.Background()
	sup := newSupervisor(t, conn, "Sam", "sam@example.com")
	g, err := svc.Create(ctx, guardRequest("gail@example.com"))
	require.NoError(t, err)

	var assign UpdateGuardRequest
	require.NoError(t, json.Unmarshal([]byte(`{"supervisorId": `+jsonInt(sup.ID)+`, "assignedArea": "East Wing"}`), &assign))
	updated, err := svc.Update(ctx, g.ID, assign)
	require.NoError(t, err)
	require.NotNil(t, updated.SupervisorID)
	assert.Equal(t, sup.ID, *updated.SupervisorID)
	assert.Equal(t, "East Wing", updated.AssignedArea)

	var untouched UpdateGuardRequest
	require.NoError(t, json.Unmarshal([]byte(`{"phone": "555-0000"}`), &untouched))
	updated, err = svc.Update(ctx, g.ID, untouched)
	require.NoError(t, err)
	require.NotNil(t, updated.SupervisorID, "absent supervisorId keeps the assignment")

	var clear UpdateGuardRequest
	require.NoError(t, json.Unmarshal([]byte(`{"supervisorId": null}`), &clear))
	updated, err = svc.Update(ctx, g.ID, clear)
	require.NoError(t, err)
	assert.Nil(t, updated.SupervisorID)

	var bad UpdateGuardRequest
	require.NoError(t, json.Unmarshal([]byte(`{"supervisorId": 404}`), &bad))
	_, err = svc.Update(ctx, g.ID, bad)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestStatusLifecycleAndPermanentDelete(t *testing.T) {
	conn, svc, _ := newTestService(t)
	ctx := context.Background()
	g, err := svc.Create(ctx, guardRequest("gail@example.com"))
	require.NoError(t, err)

	err = svc.DeletePermanent(ctx, g.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "active guards cannot be hard-deleted")

	got, err := svc.ChangeStatus(ctx, g.ID, StatusRequest{Status: "Terminated", Reason: strPtr("absent")})
	require.NoError(t, err)
	assert.Equal(t, enums.AccountStatusTerminated, got.Status)
	assert.Equal(t, "absent", *got.TerminationReason)

	_, err = svc.ChangeStatus(ctx, g.ID, StatusRequest{Status: "Active"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	got, err = svc.UpdateTerminationReason(ctx, g.ID, "no-show")
	require.NoError(t, err)
	assert.Equal(t, "no-show", *got.TerminationReason)

	require.NoError(t, svc.DeletePermanent(ctx, g.ID))
	var n int64
	require.NoError(t, conn.Model(&models.Guard{}).Where("id = ?", g.ID).Count(&n).Error)
	assert.Zero(t, n)

	owner, err := emails.NewRegistry().Owner(ctx, conn, "gail@example.com")
	require.NoError(t, err)
	assert.Nil(t, owner)

	err = svc.DeletePermanent(ctx, g.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateWithRejectedStatusKeepsFields(t *testing.T) {
	conn, svc, _ := newTestService(t)
	ctx := context.Background()
	g, err := svc.Create(ctx, guardRequest("gail@example.com"))
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, g.ID, StatusRequest{Status: "Terminated"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, g.ID, UpdateGuardRequest{
		FullName:     strPtr("Renamed"),
		AssignedArea: strPtr("South Gate"),
		Email:        strPtr("renamed@example.com"),
		Status:       strPtr("Active"),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	var row models.Guard
	require.NoError(t, conn.First(&row, g.ID).Error)
	assert.Equal(t, "Gail Stone", row.FullName)
	assert.Equal(t, "North Gate", row.AssignedArea)
	assert.Equal(t, "gail@example.com", row.Email)
	assert.Equal(t, enums.AccountStatusTerminated, row.Status)

	owner, err := emails.NewRegistry().Owner(ctx, conn, "renamed@example.com")
	require.NoError(t, err)
	assert.Nil(t, owner)
}

func TestUpdateAppliesFieldsAndStatusTogether(t *testing.T) {
	_, svc, _ := newTestService(t)
	ctx := context.Background()
	g, err := svc.Create(ctx, guardRequest("gail@example.com"))
	require.NoError(t, err)

	got, err := svc.Update(ctx, g.ID, UpdateGuardRequest{AssignedArea: strPtr("Dock 4"), Status: strPtr("Suspended")})
	require.NoError(t, err)
	assert.Equal(t, "Dock 4", got.AssignedArea)
	assert.Equal(t, enums.AccountStatusSuspended, got.Status)
}

func TestListBySupervisor(t *testing.T) {
	conn, svc, _ := newTestService(t)
	ctx := context.Background()
	sup := newSupervisor(t, conn, "Sam", "sam@example.com")
	other := newSupervisor(t, conn, "Ola", "ola@example.com")

	for i, supID := range []int64{sup.ID, other.ID, sup.ID} {
		req := guardRequest(string(rune('a'+i)) + "@example.com")
		req.SupervisorID = int64Ptr(supID)
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	list, err := svc.ListBySupervisor(ctx, sup.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, g := range list {
		assert.Equal(t, sup.ID, *g.SupervisorID)
	}

	_, err = svc.ListBySupervisor(ctx, 999)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
