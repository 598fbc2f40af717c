package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/secureguard-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// MintAccessToken issues a signed JWT for subjectID expiring one TTL after now.
// JWT dates carry whole seconds, so now is truncated first and iat and exp stay
// exactly one TTL apart.
func MintAccessToken(cfg config.JWTConfig, now time.Time, subjectID int64) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	if subjectID <= 0 {
		return "", fmt.Errorf("invalid subject id %d", subjectID)
	}
	now = now.Truncate(time.Second)

	claims := AccessTokenClaims{
		SubjectID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL())),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates tokenString as of now. Every failure is a *VerificationError.
func ParseAccessToken(cfg config.JWTConfig, now time.Time, tokenString string) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, &VerificationError{Kind: KindSignatureInvalid, Err: errors.New("jwt secret is required")}
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &AccessTokenClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
	)
	if err != nil {
		return nil, classify(err)
	}
	if claims.SubjectID <= 0 {
		return nil, &VerificationError{Kind: KindMalformed, Err: errors.New("missing subject id")}
	}

	return claims, nil
}

// TokenService binds the JWT configuration to a clock.
type TokenService struct {
	cfg config.JWTConfig
	now func() time.Time
}

// NewTokenService returns a TokenService. A nil clock means time.Now.
func NewTokenService(cfg config.JWTConfig, clock func() time.Time) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &TokenService{cfg: cfg, now: clock}, nil
}

// Issue mints a token for subjectID valid from now until now plus the TTL.
func (s *TokenService) Issue(subjectID int64, now time.Time) (string, error) {
	return MintAccessToken(s.cfg, now, subjectID)
}

// Verify checks tokenString against the service clock.
func (s *TokenService) Verify(tokenString string) (*AccessTokenClaims, error) {
	return ParseAccessToken(s.cfg, s.now(), tokenString)
}

// Now exposes the service clock so issuance and verification agree on time.
func (s *TokenService) Now() time.Time {
	return s.now()
}
