package emails

import (
	"context"
	"testing"

	"github.com/angelmondragon/secureguard-backend/pkg/db/dbtest"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a@b.com", Normalize("  A@B.Com "))
	assert.Equal(t, "", Normalize("   "))
}

func TestClaimRejectsCrossKindDuplicatesCaseInsensitively(t *testing.T) {
	conn := dbtest.Open(t)
	reg := NewRegistry()
	ctx := context.Background()

	require.NoError(t, reg.Claim(ctx, conn, "x@y.com", enums.RoleSupervisor, 1))

	err := reg.Claim(ctx, conn, " X@Y.COM ", enums.RoleGuard, 9)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, ErrEmailInUse, pkgerrors.As(err).Message())

	owner, err := reg.Owner(ctx, conn, "x@y.com")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, enums.RoleSupervisor, owner.AccountKind)
	assert.Equal(t, int64(1), owner.AccountID)
}

func TestMoveAndRelease(t *testing.T) {
	conn := dbtest.Open(t)
	reg := NewRegistry()
	ctx := context.Background()

	require.NoError(t, reg.Claim(ctx, conn, "old@example.com", enums.RoleAdmin, 3))
	require.NoError(t, reg.Move(ctx, conn, "old@example.com", "New@Example.com", enums.RoleAdmin, 3))

	owner, err := reg.Owner(ctx, conn, "old@example.com")
	require.NoError(t, err)
	assert.Nil(t, owner, "old claim should be released")

	owner, err = reg.Owner(ctx, conn, "new@example.com")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, int64(3), owner.AccountID)

	require.NoError(t, reg.Move(ctx, conn, "new@example.com", " NEW@example.com", enums.RoleAdmin, 3), "same normalized email is a no-op")

	require.NoError(t, reg.Release(ctx, conn, "new@example.com", enums.RoleAdmin, 3))
	owner, err = reg.Owner(ctx, conn, "new@example.com")
	require.NoError(t, err)
	assert.Nil(t, owner)
}

func TestReleaseOnlyDropsOwnClaim(t *testing.T) {
	conn := dbtest.Open(t)
	reg := NewRegistry()
	ctx := context.Background()

	require.NoError(t, reg.Claim(ctx, conn, "shared@example.com", enums.RoleGuard, 5))
	require.NoError(t, reg.Release(ctx, conn, "shared@example.com", enums.RoleSupervisor, 5))

	owner, err := reg.Owner(ctx, conn, "shared@example.com")
	require.NoError(t, err)
	assert.NotNil(t, owner)
}

func TestClaimRequiresEmail(t *testing.T) {
	err := NewRegistry().Claim(context.Background(), dbtest.Open(t), "  ", enums.RoleGuard, 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestEnsureAvailable(t *testing.T) {
	conn := dbtest.Open(t)
	reg := NewRegistry()
	ctx := context.Background()

	require.NoError(t, reg.EnsureAvailable(ctx, conn, "free@example.com", enums.RoleGuard, 0))

	require.NoError(t, reg.Claim(ctx, conn, "taken@example.com", enums.RoleGuard, 4))
	require.NoError(t, reg.EnsureAvailable(ctx, conn, "Taken@example.com", enums.RoleGuard, 4), "own claim is available")

	err := reg.EnsureAvailable(ctx, conn, "taken@example.com", enums.RoleSupervisor, 4)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}
