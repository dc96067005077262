package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/devsync/internal/flagx"
	"github.com/dmitrijs2005/devsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals use
// timex.Duration so they can be written as "3s" or as integer nanoseconds.
type JsonConfig struct {
	APIBaseURL          string         `json:"api_base_url"`
	NotificationsURL    string         `json:"notifications_url"`
	DatabasePath        string         `json:"database_path"`
	PageSize            int            `json:"page_size"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	ReconnectDelay      timex.Duration `json:"reconnect_delay"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	LogBackend          string         `json:"log_backend"`
	LogLevel            string         `json:"log_level"`
	LogFormat           string         `json:"log_format"`
}

// parseJson overlays Config with the values present in the JSON file given by
// -c or -config. Without the flag it does nothing. Read or decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.NotificationsURL, jc.NotificationsURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.Log.Backend, jc.LogBackend)
	setString(&cfg.Log.Level, jc.LogLevel)
	setString(&cfg.Log.Format, jc.LogFormat)
	if jc.PageSize > 0 {
		cfg.PageSize = jc.PageSize
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ReconnectDelay.Duration > 0 {
		cfg.ReconnectDelay = jc.ReconnectDelay.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
