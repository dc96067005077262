package config

import (
	"github.com/dmitrijs2005/devsync/internal/envx"
)

const envPrefix = "DEVSYNCD_"

// parseEnv overlays Config with DEVSYNCD_* variables after loading the
// optional dotenv file named by DEVSYNCD_ENV_FILE (default ".env").
func parseEnv(cfg *Config) {
	envFile := ""
	envx.String(envPrefix+"ENV_FILE", &envFile)
	if err := envx.Load(envFile); err != nil {
		panic(err)
	}

	envx.String(envPrefix+"ADDR", &cfg.HTTPAddr)
	envx.String(envPrefix+"DATABASE_DSN", &cfg.DatabaseDSN)
	envx.String(envPrefix+"SECRET_KEY", &cfg.SecretKey)
	envx.String(envPrefix+"S3_ROOT_USER", &cfg.S3RootUser)
	envx.String(envPrefix+"S3_ROOT_PASSWORD", &cfg.S3RootPassword)
	envx.String(envPrefix+"S3_BUCKET", &cfg.S3Bucket)
	envx.String(envPrefix+"S3_REGION", &cfg.S3Region)
	envx.String(envPrefix+"S3_BASE_ENDPOINT", &cfg.S3BaseEndpoint)
	envx.String(envPrefix+"LOG_BACKEND", &cfg.Log.Backend)
	envx.String(envPrefix+"LOG_LEVEL", &cfg.Log.Level)
	envx.String(envPrefix+"LOG_FORMAT", &cfg.Log.Format)

	for _, err := range []error{
		envx.Duration(envPrefix+"ACCESS_TOKEN_VALIDITY", &cfg.AccessTokenValidityDuration),
		envx.Int(envPrefix+"MAX_AVATAR_SIZE", &cfg.MaxAvatarSize),
	} {
		if err != nil {
			panic(err)
		}
	}
}
