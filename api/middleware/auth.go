package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/secureguard-backend/api/responses"
	"github.com/angelmondragon/secureguard-backend/internal/identity"
	"github.com/angelmondragon/secureguard-backend/pkg/logger"
)

type Authenticator interface {
	Authenticate(ctx context.Context, header string) (identity.Principal, error)
}

// Auth validates the bearer token and seeds the request context with the resolved caller.
func Auth(gate Authenticator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := gate.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithPrincipal(r.Context(), principal)
			if logg != nil {
				ctx = logg.WithUserID(ctx, principal.ID)
				ctx = logg.WithActorRole(ctx, principal.Role.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
