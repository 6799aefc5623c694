package config

const (
	EnvPrefix = "XTN"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"

	EnvAppEnv          = "XTN_APP_ENV"
	EnvAppPort         = "XTN_APP_PORT"
	EnvDBDriver        = "XTN_DB_DRIVER"
	EnvDBDSN           = "XTN_DB_DSN"
	EnvRedisURL        = "XTN_REDIS_URL"
	EnvOrderAPIBaseURL = "XTN_ORDER_API_BASE_URL"
)
