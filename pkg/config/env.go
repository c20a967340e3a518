package config

// EnvPrefix namespaces every variable consumed by the service.
const EnvPrefix = "CHARACTERS_ANALYZER"

const AppEnvDev = "dev"

const (
	EnvAppName     = "CHARACTERS_ANALYZER_APP_NAME"
	EnvAppVersion  = "CHARACTERS_ANALYZER_APP_VERSION"
	EnvAppEnv      = "CHARACTERS_ANALYZER_APP_ENV"
	EnvPort        = "CHARACTERS_ANALYZER_APP_PORT"
	EnvDomain      = "CHARACTERS_ANALYZER_DOMAIN"
	EnvAdminName   = "CHARACTERS_ANALYZER_ADMIN_NAME"
	EnvAdminEmail  = "CHARACTERS_ANALYZER_ADMIN_EMAIL"
	EnvCORSOrigins = "CHARACTERS_ANALYZER_BACKEND_CORS_ORIGINS"

	EnvDBDSN      = "CHARACTERS_ANALYZER_DATABASE_URL"
	EnvDBHost     = "CHARACTERS_ANALYZER_DATABASE_HOST"
	EnvDBPort     = "CHARACTERS_ANALYZER_DATABASE_PORT"
	EnvDBUser     = "CHARACTERS_ANALYZER_DATABASE_USER"
	EnvDBPassword = "CHARACTERS_ANALYZER_DATABASE_PASSWORD"
	EnvDBName     = "CHARACTERS_ANALYZER_DATABASE_NAME"

	EnvRedisURL = "CHARACTERS_ANALYZER_REDIS_URL"

	EnvJWTSecret          = "CHARACTERS_ANALYZER_JWT_SECRET_KEY"
	EnvJWTAlgorithm       = "CHARACTERS_ANALYZER_JWT_ALGORITHM"
	EnvAccessLifetimeMins = "CHARACTERS_ANALYZER_ACCESS_TOKEN_LIFETIME_MINUTES"
	EnvRefreshLifetimeDay = "CHARACTERS_ANALYZER_REFRESH_TOKEN_LIFETIME_DAYS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
