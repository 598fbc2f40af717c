package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/secureguard-backend/internal/emails"
	"github.com/angelmondragon/secureguard-backend/internal/identity"
	"github.com/angelmondragon/secureguard-backend/pkg/db"
	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"github.com/angelmondragon/secureguard-backend/pkg/logger"
	"github.com/angelmondragon/secureguard-backend/pkg/metrics"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "invalid email or password"
	incorrectPasswordMessage  = "incorrect current password"
	userNotFoundMessage       = "user not found"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	ChangePassword(ctx context.Context, caller identity.Identity, req ChangePasswordRequest) error
	UpdateProfile(ctx context.Context, caller identity.Identity, req UpdateProfileRequest) (*identity.Identity, error)
	Logout(ctx context.Context, caller identity.Principal) error
}

type accountLocator interface {
	LocateByEmail(ctx context.Context, email string) (*identity.Account, error)
	Account(ctx context.Context, role enums.Role, id int64) (*identity.Account, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

type tokenIssuer interface {
	Issue(subjectID int64, now time.Time) (string, error)
	Now() time.Time
}

type tokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt, now time.Time) error
}

// ServiceParams bundles the dependencies required to build an auth service.
// Revoker is optional; without it logout only ends the client session.
type ServiceParams struct {
	DB       *db.Client
	Accounts accountLocator
	Hasher   passwordHasher
	Tokens   tokenIssuer
	Revoker  tokenRevoker
	Metrics  *metrics.AuthMetrics
	Logger   *logger.Logger
}

type service struct {
	db       *db.Client
	accounts accountLocator
	hasher   passwordHasher
	tokens   tokenIssuer
	revoker  tokenRevoker
	emails   emails.Registry
	metrics  *metrics.AuthMetrics
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("account locator is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if params.Tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	return &service{
		db:       params.DB,
		accounts: params.Accounts,
		hasher:   params.Hasher,
		tokens:   params.Tokens,
		revoker:  params.Revoker,
		emails:   emails.NewRegistry(),
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// Login locates the account across all stores in resolution order and issues a token.
// Every credential failure returns the same Unauthorized message.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := emails.Normalize(req.Email)
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	acct, err := s.accounts.LocateByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrIdentityNotFound) {
			return nil, s.rejectLogin(ctx, "", "unknown_email")
		}
		return nil, wrapInternal(err, "locate account")
	}
	if acct.PasswordHash == "" {
		return nil, s.rejectLogin(ctx, acct.Role, "no_credentials")
	}

	ok, err := s.hasher.Verify(req.Password, acct.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, s.rejectLogin(ctx, acct.Role, "bad_password")
	}
	if !acct.CanLogin() {
		return nil, s.rejectLogin(ctx, acct.Role, "inactive")
	}

	token, err := s.tokens.Issue(acct.ID, s.tokens.Now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	s.metrics.IncLogin(acct.Role.String(), "success")
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"user_id": acct.ID, "role": acct.Role}), "auth.login")

	return &LoginResponse{
		ID:        acct.ID,
		Name:      acct.Name,
		Email:     acct.Email,
		Role:      acct.Role,
		CreatedAt: acct.CreatedAt,
		Token:     token,
	}, nil
}

func (s *service) rejectLogin(ctx context.Context, role enums.Role, outcome string) error {
	s.metrics.IncLogin(role.String(), outcome)
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"role": role, "outcome": outcome}), "auth.login_rejected")
	return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
}

// ChangePassword verifies the caller's current password against their own store
// before replacing it.
func (s *service) ChangePassword(ctx context.Context, caller identity.Identity, req ChangePasswordRequest) error {
	if req.NewPassword == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "newPassword is required")
	}
	acct, err := s.account(ctx, caller)
	if err != nil {
		return err
	}

	if acct.PasswordHash == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, incorrectPasswordMessage)
	}
	ok, err := s.hasher.Verify(req.CurrentPassword, acct.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, incorrectPasswordMessage)
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	table, _ := models.AccountTableFor(caller.Role)
	res := s.db.DB().WithContext(ctx).Table(table.Name).Where("id = ?", caller.ID).Update("password", hash)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "update password")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, userNotFoundMessage)
	}

	s.logg.Info(s.logg.WithField(ctx, "user_id", caller.ID), "auth.password_changed")
	return nil
}

// UpdateProfile changes the caller's name and email. The email keeps its
// cross-store uniqueness through the registry.
func (s *service) UpdateProfile(ctx context.Context, caller identity.Identity, req UpdateProfileRequest) (*identity.Identity, error) {
	acct, err := s.account(ctx, caller)
	if err != nil {
		return nil, err
	}
	table, _ := models.AccountTableFor(caller.Role)

	updates := map[string]any{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		updates[table.NameColumn] = strings.TrimSpace(*req.Name)
	}
	newEmail := ""
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		newEmail = strings.TrimSpace(*req.Email)
		updates["email"] = newEmail
	}
	if len(updates) == 0 {
		return &acct.Identity, nil
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if newEmail != "" {
			if err := s.emails.Move(ctx, tx, acct.Email, newEmail, caller.Role, caller.ID); err != nil {
				return err
			}
		}
		res := tx.WithContext(ctx).Table(table.Name).Where("id = ?", caller.ID).Updates(updates)
		if res.Error != nil {
			return emails.ConflictFromStore(res.Error, "update profile")
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, userNotFoundMessage)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.account(ctx, caller)
	if err != nil {
		return nil, err
	}
	return &updated.Identity, nil
}

// Logout revokes the presented token until it would have expired.
func (s *service) Logout(ctx context.Context, caller identity.Principal) error {
	if s.revoker == nil || caller.TokenID == "" {
		s.logg.Info(s.logg.WithField(ctx, "user_id", caller.ID), "auth.logout_without_revocation")
		return nil
	}
	if err := s.revoker.Revoke(ctx, caller.TokenID, caller.ExpiresAt, s.tokens.Now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke token")
	}
	s.logg.Info(s.logg.WithField(ctx, "user_id", caller.ID), "auth.logout")
	return nil
}

// account reloads the caller from the store named by its role.
func (s *service) account(ctx context.Context, caller identity.Identity) (*identity.Account, error) {
	if _, ok := models.AccountTableFor(caller.Role); !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown role %q", caller.Role)
	}
	acct, err := s.accounts.Account(ctx, caller.Role, caller.ID)
	if err != nil {
		if errors.Is(err, identity.ErrIdentityNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, userNotFoundMessage)
		}
		return nil, wrapInternal(err, "load account")
	}
	return acct, nil
}

func wrapInternal(err error, op string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
