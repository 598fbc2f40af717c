package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/secureguard-backend/pkg/auth"
	"github.com/angelmondragon/secureguard-backend/pkg/auth/session"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"github.com/angelmondragon/secureguard-backend/pkg/logger"
	"github.com/angelmondragon/secureguard-backend/pkg/metrics"
)

const (
	MsgNoToken      = "not authorized, no token"
	MsgTokenFailed  = "not authorized, token failed"
	MsgUserNotFound = "not authorized, user not found"
	MsgSelfDelete   = "you cannot delete your own account"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.AccessTokenClaims, error)
}

// SubjectResolver maps a subject id to an identity.
type SubjectResolver interface {
	Resolve(ctx context.Context, subjectID int64) (Identity, error)
}

// Principal is the authenticated caller of a request.
type Principal struct {
	Identity
	TokenID   string
	ExpiresAt time.Time
}

// Gate authenticates bearer headers and authorizes identities against role sets.
type Gate struct {
	tokens      TokenVerifier
	resolver    SubjectResolver
	revocations session.RevocationChecker
	logg        *logger.Logger
	metrics     *metrics.AuthMetrics
}

type GateParams struct {
	Tokens      TokenVerifier
	Resolver    SubjectResolver
	Revocations session.RevocationChecker
	Logger      *logger.Logger
	Metrics     *metrics.AuthMetrics
}

func NewGate(params GateParams) (*Gate, error) {
	if params.Tokens == nil {
		return nil, errors.New("token verifier is required")
	}
	if params.Resolver == nil {
		return nil, errors.New("identity resolver is required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	return &Gate{
		tokens:      params.Tokens,
		resolver:    params.Resolver,
		revocations: params.Revocations,
		logg:        params.Logger,
		metrics:     params.Metrics,
	}, nil
}

// Authenticate turns an Authorization header into the caller's principal.
func (g *Gate) Authenticate(ctx context.Context, header string) (Principal, error) {
	token, ok := bearerToken(header)
	if !ok {
		g.metrics.IncGateRejection("no_token")
		return Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, MsgNoToken)
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		kind := auth.KindMalformed
		if verr, ok := auth.AsVerificationError(err); ok {
			kind = verr.Kind
		}
		g.logg.Warn(g.logg.WithField(ctx, "token_error", string(kind)), "auth.token_rejected")
		g.metrics.IncGateRejection("token_" + string(kind))
		return Principal{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, MsgTokenFailed)
	}

	if g.revocations != nil {
		revoked, err := g.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Principal{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check token revocation")
		}
		if revoked {
			g.metrics.IncGateRejection("token_revoked")
			return Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, MsgTokenFailed)
		}
	}

	ident, err := g.resolver.Resolve(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			g.metrics.IncGateRejection("user_not_found")
			return Principal{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, MsgUserNotFound)
		}
		if pkgerrors.As(err) != nil {
			return Principal{}, err
		}
		return Principal{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve identity")
	}

	p := Principal{Identity: ident, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// Authorize succeeds when ident holds one of roles.
func (g *Gate) Authorize(ident Identity, roles ...enums.Role) error {
	if ident.HasRole(roles...) {
		return nil
	}
	g.metrics.IncGateRejection("forbidden_role")
	return pkgerrors.Newf(pkgerrors.CodeForbidden, "user role %s is not authorized to access this route", ident.Role)
}

// ForbidSelfDeletion rejects an admin deleting their own account.
func ForbidSelfDeletion(callerID, targetID int64) error {
	if callerID == targetID {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgSelfDelete)
	}
	return nil
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
