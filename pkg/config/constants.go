package config

import "time"

// EnvPrefix is passed to envconfig; every field carries an explicit name so it only
// matters for envconfig's usage output.
const EnvPrefix = "SECUREGUARD"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	PasswordAlgorithmArgon2id = "argon2id"
	PasswordAlgorithmBcrypt   = "bcrypt"
)

// DefaultTokenTTL is the fixed 30-day bearer token lifetime.
const DefaultTokenTTL = 30 * 24 * time.Hour

const (
	EnvAppEnv   = "SECUREGUARD_APP_ENV"
	EnvPort     = "SECUREGUARD_APP_PORT"
	EnvLogLevel = "SECUREGUARD_LOG_LEVEL"

	EnvDBDSN      = "SECUREGUARD_DB_DSN"
	EnvDBHost     = "SECUREGUARD_DB_HOST"
	EnvDBUser     = "SECUREGUARD_DB_USER"
	EnvDBName     = "SECUREGUARD_DB_NAME"
	EnvDBPassword = "SECUREGUARD_DB_PASSWORD"

	EnvRedisURL = "SECUREGUARD_REDIS_URL"

	EnvJWTSecret = "SECUREGUARD_JWT_SECRET"
	EnvJWTIssuer = "SECUREGUARD_JWT_ISSUER"
	EnvJWTTTL    = "SECUREGUARD_JWT_TTL"

	EnvPasswordAlgorithm = "SECUREGUARD_PASSWORD_ALGORITHM"

	EnvInitialAdminEmail    = "SECUREGUARD_INITIAL_ADMIN_EMAIL"
	EnvInitialAdminPassword = "SECUREGUARD_INITIAL_ADMIN_PASSWORD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
