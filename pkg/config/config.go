package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Bootstrap    BootstrapConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Password.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env             string        `envconfig:"SECUREGUARD_APP_ENV" required:"true"`
	Port            string        `envconfig:"SECUREGUARD_APP_PORT" default:"3001"`
	LogLevel        string        `envconfig:"SECUREGUARD_LOG_LEVEL" default:"info"`
	LogWarnStack    bool          `envconfig:"SECUREGUARD_LOG_WARN_STACK" default:"false"`
	CORSOrigins     []string      `envconfig:"SECUREGUARD_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	ReadTimeout     time.Duration `envconfig:"SECUREGUARD_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SECUREGUARD_HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SECUREGUARD_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"SECUREGUARD_DB_DSN"`

	LegacyHost     string `envconfig:"SECUREGUARD_DB_HOST" default:"localhost"`
	LegacyPort     int    `envconfig:"SECUREGUARD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SECUREGUARD_DB_USER" default:"postgres"`
	LegacyPassword string `envconfig:"SECUREGUARD_DB_PASSWORD"`
	LegacyName     string `envconfig:"SECUREGUARD_DB_NAME" default:"secureguard"`
	LegacySSLMode  string `envconfig:"SECUREGUARD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SECUREGUARD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SECUREGUARD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SECUREGUARD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SECUREGUARD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional: with neither URL nor address set, token revocation is disabled.
type RedisConfig struct {
	URL          string        `envconfig:"SECUREGUARD_REDIS_URL"`
	Address      string        `envconfig:"SECUREGUARD_REDIS_ADDR"`
	Password     string        `envconfig:"SECUREGUARD_REDIS_PASSWORD"`
	DB           int           `envconfig:"SECUREGUARD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SECUREGUARD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SECUREGUARD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SECUREGUARD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SECUREGUARD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SECUREGUARD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret string        `envconfig:"SECUREGUARD_JWT_SECRET" required:"true"`
	Issuer string        `envconfig:"SECUREGUARD_JWT_ISSUER" default:"secureguard"`
	TTL    time.Duration `envconfig:"SECUREGUARD_JWT_TTL" default:"720h"`
}

// TokenTTL returns the configured token lifetime, falling back to 30 days.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.TTL <= 0 {
		return DefaultTokenTTL
	}
	return j.TTL
}

type PasswordConfig struct {
	Algorithm        string `envconfig:"SECUREGUARD_PASSWORD_ALGORITHM" default:"argon2id"`
	BcryptCost       int    `envconfig:"SECUREGUARD_BCRYPT_COST" default:"10"`
	ArgonMemoryKB    int    `envconfig:"SECUREGUARD_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int    `envconfig:"SECUREGUARD_ARGON_TIME" default:"3"`
	ArgonParallelism int    `envconfig:"SECUREGUARD_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int    `envconfig:"SECUREGUARD_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int    `envconfig:"SECUREGUARD_ARGON_KEY_LEN" default:"32"`
}

func (p PasswordConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(p.Algorithm)) {
	case "", PasswordAlgorithmArgon2id, PasswordAlgorithmBcrypt:
		return nil
	}
	return fmt.Errorf("unsupported password algorithm %q", p.Algorithm)
}

type BootstrapConfig struct {
	AdminEmail    string `envconfig:"SECUREGUARD_INITIAL_ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string `envconfig:"SECUREGUARD_INITIAL_ADMIN_PASSWORD" default:"admin123"`
	AdminName     string `envconfig:"SECUREGUARD_INITIAL_ADMIN_NAME" default:"Admin"`
	SeedOnStart   bool   `envconfig:"SECUREGUARD_SEED_ON_START" default:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SECUREGUARD_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
