package middleware

import (
	"net/http"

	"github.com/angelmondragon/secureguard-backend/api/responses"
	"github.com/angelmondragon/secureguard-backend/internal/identity"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"github.com/angelmondragon/secureguard-backend/pkg/logger"
)

type Authorizer interface {
	Authorize(ident identity.Identity, roles ...enums.Role) error
}

// RequireRole admits callers holding any of roles. It must run after Auth.
func RequireRole(gate Authorizer, logg *logger.Logger, roles ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := IdentityFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, identity.MsgNoToken))
				return
			}
			if err := gate.Authorize(ident, roles...); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
