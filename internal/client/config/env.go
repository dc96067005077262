package config

import (
	"github.com/dmitrijs2005/devsync/internal/envx"
)

const envPrefix = "DEVSYNC_"

// parseEnv overlays Config with DEVSYNC_* variables. A .env file in the
// working directory (or the one named by DEVSYNC_ENV_FILE) is loaded first.
// Malformed values panic, like the other loaders.
func parseEnv(cfg *Config) {
	envFile := ""
	envx.String(envPrefix+"ENV_FILE", &envFile)
	if err := envx.Load(envFile); err != nil {
		panic(err)
	}

	envx.String(envPrefix+"API_URL", &cfg.APIBaseURL)
	envx.String(envPrefix+"NOTIFICATIONS_URL", &cfg.NotificationsURL)
	envx.String(envPrefix+"DB", &cfg.DatabasePath)
	envx.String(envPrefix+"LOG_BACKEND", &cfg.Log.Backend)
	envx.String(envPrefix+"LOG_LEVEL", &cfg.Log.Level)
	envx.String(envPrefix+"LOG_FORMAT", &cfg.Log.Format)

	for _, err := range []error{
		envx.Int(envPrefix+"PAGE_SIZE", &cfg.PageSize),
		envx.Duration(envPrefix+"REQUEST_TIMEOUT", &cfg.RequestTimeout),
		envx.Duration(envPrefix+"RECONNECT_DELAY", &cfg.ReconnectDelay),
		envx.Duration(envPrefix+"ONLINE_CHECK_INTERVAL", &cfg.OnlineCheckInterval),
	} {
		if err != nil {
			panic(err)
		}
	}
}
