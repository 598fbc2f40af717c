package auth

import "github.com/golang-jwt/jwt/v5"

// AccessTokenClaims represents the typed JWT issued to clients. SubjectID only
// identifies an account when read through the identity resolver's store order.
type AccessTokenClaims struct {
	SubjectID int64 `json:"id"`
	jwt.RegisteredClaims
}
