package middleware

import (
	"context"

	"github.com/angelmondragon/secureguard-backend/internal/identity"
)

type contextKey string

const ctxPrincipal contextKey = "principal"

// PrincipalFromContext returns the authenticated caller stored by Auth.
func PrincipalFromContext(ctx context.Context) (identity.Principal, bool) {
	if ctx == nil {
		return identity.Principal{}, false
	}
	p, ok := ctx.Value(ctxPrincipal).(identity.Principal)
	return p, ok
}

// IdentityFromContext is PrincipalFromContext without the token metadata.
func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	p, ok := PrincipalFromContext(ctx)
	return p.Identity, ok
}

// WithPrincipal injects the caller into the context for downstream handlers.
func WithPrincipal(ctx context.Context, p identity.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, p)
}
