package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Admin         AdminConfig
	CORS          CORSConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.JWT.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Name         string `envconfig:"CHARACTERS_ANALYZER_APP_NAME" default:"Characters Analyzer"`
	Version      string `envconfig:"CHARACTERS_ANALYZER_APP_VERSION" default:"0.1.0"`
	Description  string `envconfig:"CHARACTERS_ANALYZER_APP_DESCRIPTION"`
	Summary      string `envconfig:"CHARACTERS_ANALYZER_APP_SUMMARY"`
	Env          string `envconfig:"CHARACTERS_ANALYZER_APP_ENV" required:"true"`
	Domain       string `envconfig:"CHARACTERS_ANALYZER_DOMAIN" default:"0.0.0.0"`
	Port         string `envconfig:"CHARACTERS_ANALYZER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CHARACTERS_ANALYZER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CHARACTERS_ANALYZER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

// Addr joins the bind domain and port.
func (a AppConfig) Addr() string {
	return a.Domain + ":" + a.Port
}

type AdminConfig struct {
	Name  string `envconfig:"CHARACTERS_ANALYZER_ADMIN_NAME"`
	Email string `envconfig:"CHARACTERS_ANALYZER_ADMIN_EMAIL"`
}

type CORSConfig struct {
	Origins []string `envconfig:"CHARACTERS_ANALYZER_BACKEND_CORS_ORIGINS" default:"http://localhost:3000"`
}

// AllowedOrigins drops blank entries and surrounding whitespace.
func (c CORSConfig) AllowedOrigins() []string {
	out := make([]string, 0, len(c.Origins))
	for _, origin := range c.Origins {
		if o := strings.TrimSpace(origin); o != "" {
			out = append(out, o)
		}
	}
	return out
}

type DBConfig struct {
	DSN string `envconfig:"CHARACTERS_ANALYZER_DATABASE_URL"`

	LegacyHost     string `envconfig:"CHARACTERS_ANALYZER_DATABASE_HOST"`
	LegacyPort     int    `envconfig:"CHARACTERS_ANALYZER_DATABASE_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CHARACTERS_ANALYZER_DATABASE_USER"`
	LegacyPassword string `envconfig:"CHARACTERS_ANALYZER_DATABASE_PASSWORD"`
	LegacyName     string `envconfig:"CHARACTERS_ANALYZER_DATABASE_NAME"`
	LegacySSLMode  string `envconfig:"CHARACTERS_ANALYZER_DATABASE_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CHARACTERS_ANALYZER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CHARACTERS_ANALYZER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CHARACTERS_ANALYZER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CHARACTERS_ANALYZER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CHARACTERS_ANALYZER_REDIS_URL"`
	Address      string        `envconfig:"CHARACTERS_ANALYZER_REDIS_ADDR"`
	Password     string        `envconfig:"CHARACTERS_ANALYZER_REDIS_PASSWORD"`
	DB           int           `envconfig:"CHARACTERS_ANALYZER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CHARACTERS_ANALYZER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CHARACTERS_ANALYZER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CHARACTERS_ANALYZER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CHARACTERS_ANALYZER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CHARACTERS_ANALYZER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret                     string `envconfig:"CHARACTERS_ANALYZER_JWT_SECRET_KEY" required:"true"`
	Algorithm                  string `envconfig:"CHARACTERS_ANALYZER_JWT_ALGORITHM" default:"HS256"`
	AccessTokenLifetimeMinutes int    `envconfig:"CHARACTERS_ANALYZER_ACCESS_TOKEN_LIFETIME_MINUTES" default:"30"`
	RefreshTokenLifetimeDays   int    `envconfig:"CHARACTERS_ANALYZER_REFRESH_TOKEN_LIFETIME_DAYS" default:"30"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.AccessTokenLifetimeMinutes <= 0 {
		return 0
	}
	return time.Duration(j.AccessTokenLifetimeMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime configured in days.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenLifetimeDays <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenLifetimeDays) * 24 * time.Hour
}

// SigningMethod resolves the configured HMAC algorithm.
func (j JWTConfig) SigningMethod() (*jwt.SigningMethodHMAC, error) {
	switch strings.ToUpper(strings.TrimSpace(j.Algorithm)) {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	}
	return nil, fmt.Errorf("unsupported jwt algorithm %q", j.Algorithm)
}

func (j JWTConfig) validate() error {
	if _, err := j.SigningMethod(); err != nil {
		return err
	}
	access, refresh := j.AccessTokenTTL(), j.RefreshTokenTTL()
	if access <= 0 || refresh <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if refresh <= access {
		return fmt.Errorf("refresh token lifetime (%s) must exceed access token lifetime (%s)", refresh, access)
	}
	return nil
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CHARACTERS_ANALYZER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CHARACTERS_ANALYZER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CHARACTERS_ANALYZER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CHARACTERS_ANALYZER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CHARACTERS_ANALYZER_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	SignInWindow        time.Duration `envconfig:"CHARACTERS_ANALYZER_AUTH_RATE_LIMIT_SIGN_IN_WINDOW" default:"1m"`
	SignInUsernameLimit int           `envconfig:"CHARACTERS_ANALYZER_AUTH_RATE_LIMIT_SIGN_IN_USERNAME_LIMIT" default:"5"`
	SignInIPLimit       int           `envconfig:"CHARACTERS_ANALYZER_AUTH_RATE_LIMIT_SIGN_IN_IP_LIMIT" default:"20"`
	SignUpWindow        time.Duration `envconfig:"CHARACTERS_ANALYZER_AUTH_RATE_LIMIT_SIGN_UP_WINDOW" default:"5m"`
	SignUpUsernameLimit int           `envconfig:"CHARACTERS_ANALYZER_AUTH_RATE_LIMIT_SIGN_UP_USERNAME_LIMIT" default:"3"`
	SignUpIPLimit       int           `envconfig:"CHARACTERS_ANALYZER_AUTH_RATE_LIMIT_SIGN_UP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CHARACTERS_ANALYZER_AUTO_MIGRATE" default:"false"`
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
