package identity

import (
	"errors"
	"time"

	"github.com/angelmondragon/secureguard-backend/pkg/enums"
)

// ErrIdentityNotFound is returned when no store holds the requested account.
var ErrIdentityNotFound = errors.New("identity not found")

// Identity is the store-independent view of an authenticated account.
type Identity struct {
	ID        int64               `json:"id"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Role      enums.Role          `json:"role"`
	Status    enums.AccountStatus `json:"status,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}

// HasRole reports whether the identity's role is among roles.
func (i Identity) HasRole(roles ...enums.Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// Account pairs an identity with its stored credential. PasswordHash is empty
// for guards without login access.
type Account struct {
	Identity
	PasswordHash string
}

// CanLogin reports whether the account may start a new session.
func (a Account) CanLogin() bool {
	if a.PasswordHash == "" {
		return false
	}
	return a.Status == "" || a.Status == enums.AccountStatusActive
}

// resolutionOrder is the store priority for subject ids and login emails.
// Ids are not globally unique, so a subject id matching an admin and a guard
// always resolves to the admin.
var resolutionOrder = [...]enums.Role{
	enums.RoleAdmin,
	enums.RoleSupervisor,
	enums.RoleGuard,
}

// ResolutionOrder returns the store priority used by the resolver.
func ResolutionOrder() []enums.Role {
	return resolutionOrder[:]
}
