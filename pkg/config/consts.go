package config

const (
	// EnvPrefix is empty because every field carries its fully-qualified
	// CARTCOMPASS_* variable name in its envconfig tag.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv         = "CARTCOMPASS_APP_ENV"
	EnvPort           = "CARTCOMPASS_APP_PORT"
	EnvRedisURL       = "CARTCOMPASS_REDIS_URL"
	EnvScraperBaseURL = "CARTCOMPASS_SCRAPER_BASE_URL"

	EnvDBDSN  = "CARTCOMPASS_DB_DSN"
	EnvDBHost = "CARTCOMPASS_DB_HOST"
	EnvDBUser = "CARTCOMPASS_DB_USER"
	EnvDBName = "CARTCOMPASS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
