package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// VerificationErrorKind classifies why a bearer token was rejected.
type VerificationErrorKind string

const (
	KindMalformed        VerificationErrorKind = "malformed"
	KindExpired          VerificationErrorKind = "expired"
	KindSignatureInvalid VerificationErrorKind = "signature_invalid"
)

// VerificationError is returned by token verification. Callers treat every kind
// the same way; the kind only feeds logs and metrics.
type VerificationError struct {
	Kind VerificationErrorKind
	Err  error
}

func (e *VerificationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("token %s", e.Kind)
	}
	return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// AsVerificationError extracts a *VerificationError from err.
func AsVerificationError(err error) (*VerificationError, bool) {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

func classify(err error) *VerificationError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &VerificationError{Kind: KindExpired, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &VerificationError{Kind: KindSignatureInvalid, Err: err}
	default:
		return &VerificationError{Kind: KindMalformed, Err: err}
	}
}
