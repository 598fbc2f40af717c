package emails

import (
	"context"
	"strings"

	"github.com/angelmondragon/secureguard-backend/pkg/db"
	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"gorm.io/gorm"
)

// ErrEmailInUse is the public message for any cross-store email collision.
const ErrEmailInUse = "email already in use"

// Normalize trims and lower-cases an email address.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Registry maintains the account_emails claims. Every method takes the
// transaction the account write runs in, so claim and write commit together.
type Registry struct{}

func NewRegistry() Registry {
	return Registry{}
}

// Claim reserves email for the account. A taken email yields a Conflict error.
func (Registry) Claim(ctx context.Context, tx *gorm.DB, email string, kind enums.Role, accountID int64) error {
	claim := models.AccountEmail{
		Email:       Normalize(email),
		AccountKind: kind,
		AccountID:   accountID,
	}
	if claim.Email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if err := tx.WithContext(ctx).Create(&claim).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, ErrEmailInUse)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim email")
	}
	return nil
}

// Move transfers the account's claim from oldEmail to newEmail.
func (r Registry) Move(ctx context.Context, tx *gorm.DB, oldEmail, newEmail string, kind enums.Role, accountID int64) error {
	if Normalize(oldEmail) == Normalize(newEmail) {
		return nil
	}
	if err := r.Claim(ctx, tx, newEmail, kind, accountID); err != nil {
		return err
	}
	return r.release(ctx, tx, oldEmail, kind, accountID)
}

// Release drops the account's claim on email.
func (r Registry) Release(ctx context.Context, tx *gorm.DB, email string, kind enums.Role, accountID int64) error {
	return r.release(ctx, tx, email, kind, accountID)
}

func (Registry) release(ctx context.Context, tx *gorm.DB, email string, kind enums.Role, accountID int64) error {
	err := tx.WithContext(ctx).
		Where("email = ? AND account_kind = ? AND account_id = ?", Normalize(email), kind, accountID).
		Delete(&models.AccountEmail{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release email")
	}
	return nil
}

// Owner returns the claim on email, or nil when it is free.
func (Registry) Owner(ctx context.Context, conn *gorm.DB, email string) (*models.AccountEmail, error) {
	var claim models.AccountEmail
	err := conn.WithContext(ctx).Where("email = ?", Normalize(email)).Take(&claim).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load email claim")
	}
	return &claim, nil
}

// EnsureAvailable fails with Conflict when email is claimed by any account other
// than (kind, accountID). It lets callers reject duplicates before hashing a password;
// Claim remains the authoritative check.
func (r Registry) EnsureAvailable(ctx context.Context, conn *gorm.DB, email string, kind enums.Role, accountID int64) error {
	claim, err := r.Owner(ctx, conn, email)
	if err != nil {
		return err
	}
	if claim == nil || (claim.AccountKind == kind && claim.AccountID == accountID) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict, ErrEmailInUse)
}

// ConflictFromStore maps a unique violation raised by an account table's own
// email index to the same Conflict the registry reports.
func ConflictFromStore(err error, op string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, ErrEmailInUse)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
