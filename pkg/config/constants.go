package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "TILLPOINT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "TILLPOINT_DB_DSN"
	EnvDBHost = "TILLPOINT_DB_HOST"
	EnvDBUser = "TILLPOINT_DB_USER"
	EnvDBName = "TILLPOINT_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
