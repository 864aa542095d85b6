package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for fields without a tag.
const EnvPrefix = "RENTARIDE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv                 = "RENTARIDE_APP_ENV"
	EnvPort                   = "RENTARIDE_APP_PORT"
	EnvDBDSN                  = "RENTARIDE_DB_DSN"
	EnvDBHost                 = "RENTARIDE_DB_HOST"
	EnvDBUser                 = "RENTARIDE_DB_USER"
	EnvDBName                 = "RENTARIDE_DB_NAME"
	EnvRedisURL               = "RENTARIDE_REDIS_URL"
	EnvJWTSecret              = "RENTARIDE_JWT_SECRET"
	EnvJWTIssuer              = "RENTARIDE_JWT_ISSUER"
	EnvJWTExpMins             = "RENTARIDE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "RENTARIDE_REFRESH_TOKEN_TTL_MINUTES"
	EnvStripeAPIKey           = "RENTARIDE_STRIPE_API_KEY"
	EnvGCPProjectID           = "RENTARIDE_GCP_PROJECT_ID"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
