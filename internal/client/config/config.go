package config

import (
	"time"

	"github.com/dmitrijs2005/devsync/internal/logging"
)

// Config holds runtime settings for the devsync CLI.
type Config struct {
	APIBaseURL          string
	NotificationsURL    string
	DatabasePath        string
	PageSize            int
	RequestTimeout      time.Duration
	ReconnectDelay      time.Duration
	OnlineCheckInterval time.Duration
	Log                 logging.Config
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080/api"
	c.NotificationsURL = "ws://localhost:8080/notifications"
	c.DatabasePath = "devsync.db"
	c.PageSize = 10
	c.RequestTimeout = 10 * time.Second
	c.ReconnectDelay = 2 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.Log = logging.Config{Backend: logging.BackendSlog, Level: "warn", Format: logging.FormatConsole}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
