package config

import (
	"strconv"
	"strings"
)

const (
	DefaultBackendURL = "https://alarma-production.up.railway.app"
	DefaultLogFile    = "alerta.log"
)

// ClientConfig configures the terminal mini-app.
type ClientConfig struct {
	BackendURL   string
	PageURL      string
	InitData     string
	LogFile      string
	LogLevel     string
	GeoLookupURL string
	// GeoLat and GeoLon are set together or not at all.
	GeoLat *float64
	GeoLon *float64
}

// HasStaticPosition reports whether GEO_LAT and GEO_LON were both provided.
func (c ClientConfig) HasStaticPosition() bool {
	return c.GeoLat != nil && c.GeoLon != nil
}

func LoadClient() *ClientConfig {
	cfg := &ClientConfig{
		BackendURL:   strings.TrimRight(getEnv("BACKEND_URL", DefaultBackendURL), "/"),
		PageURL:      strings.TrimSpace(getEnv("ALERTA_PAGE_URL", "")),
		InitData:     strings.TrimSpace(getEnv("TELEGRAM_INIT_DATA", "")),
		LogFile:      strings.TrimSpace(getEnv("ALERTA_LOG_FILE", DefaultLogFile)),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
		GeoLookupURL: strings.TrimSpace(getEnv("GEO_LOOKUP_URL", "")),
	}
	lat, latOK := parseFloatEnv("GEO_LAT")
	lon, lonOK := parseFloatEnv("GEO_LON")
	if latOK && lonOK {
		cfg.GeoLat = &lat
		cfg.GeoLon = &lon
	}
	return cfg
}

func parseFloatEnv(key string) (float64, bool) {
	v := strings.TrimSpace(getEnv(key, ""))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
