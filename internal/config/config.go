package config

import (
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	HTTPPort          string
	Env               string
	LogLevel          string
	DatabaseDSN       string
	DBDriver          string
	CommunitiesDir    string
	SeedCommunities   bool
	DataDir           string
	EventLogDir       string
	MetricsEnable     bool
	SwaggerEnable     bool
	NotifyConcurrency int
	Postgres          PostgresConfig
	Storage           StorageConfig
	Telegram          TelegramConfig
	Twilio            TwilioConfig
	WhatsApp          WhatsAppConfig
	AlertEvents       AlertEventsConfig
}

type TelegramConfig struct {
	BotToken  string
	APIURL    string
	WebAppURL string
}

func (t TelegramConfig) Enabled() bool {
	return t.BotToken != ""
}

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
	APIURL      string
}

func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.PhoneNumber != ""
}

type WhatsAppConfig struct {
	Enabled bool
	Session string
}

// AlertEventsConfig points at the optional webhook that receives every accepted alert.
type AlertEventsConfig struct {
	WebhookURL string
	Token      string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string
}

func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != "" && s.Bucket != ""
}

func Load() *AppConfig {
	pg := PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnv("POSTGRES_PORT", ""),
		User:     getEnv("POSTGRES_USER", ""),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		DBName:   getEnv("POSTGRES_DB", ""),
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}

	// MINIO_* names are accepted as aliases of STORAGE_*.
	storage := StorageConfig{
		Endpoint:  firstEnv("STORAGE_ENDPOINT", "MINIO_ENDPOINT"),
		AccessKey: firstEnv("STORAGE_ACCESS_KEY", "MINIO_ACCESS_KEY"),
		SecretKey: firstEnv("STORAGE_SECRET_KEY", "MINIO_SECRET_KEY"),
		Bucket:    firstEnv("STORAGE_BUCKET", "MINIO_BUCKET"),
		Region:    firstEnv("STORAGE_REGION", "MINIO_REGION"),
		UseSSL:    firstEnv("STORAGE_USE_SSL", "MINIO_USE_SSL") == "true",
		PublicURL: firstEnv("STORAGE_PUBLIC_URL", "MINIO_PUBLIC_URL"),
	}

	dsn := getEnv("DATABASE_DSN", "")
	driver := strings.ToLower(getEnv("DB_DRIVER", ""))

	if driver == "" {
		lower := strings.ToLower(dsn)
		switch {
		case strings.HasPrefix(lower, "postgres"):
			driver = "postgres"
		case pg.Host != "":
			driver = "postgres"
		case dsn != "":
			driver = "sqlite"
		default:
			driver = "file"
		}
	}

	if driver == "postgres" && dsn == "" {
		dsn = buildPostgresDSN(pg)
	}
	if driver == "sqlite" && dsn == "" {
		dsn = "file:alerta.db?_pragma=foreign_keys(1)"
	}

	port := getEnv("HTTP_PORT", "")
	if port == "" {
		port = getEnv("PORT", "5000")
	}

	cfg := &AppConfig{
		HTTPPort:          port,
		Env:               getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		DatabaseDSN:       dsn,
		DBDriver:          driver,
		CommunitiesDir:    getEnv("COMMUNITIES_DIR", "comunidades"),
		SeedCommunities:   getEnv("SEED_COMMUNITIES", "false") == "true",
		DataDir:           getEnv("DATA_DIR", "data"),
		EventLogDir:       strings.TrimSpace(getEnv("EVENT_LOG_DIR", "")),
		MetricsEnable:     getEnv("METRICS_ENABLE", "true") == "true",
		SwaggerEnable:     getEnv("SWAGGER_ENABLE", "false") == "true",
		NotifyConcurrency: getEnvInt("NOTIFY_CONCURRENCY", 8),
		Postgres:          pg,
		Storage:           storage,
		Telegram: TelegramConfig{
			BotToken:  strings.TrimSpace(getEnv("TELEGRAM_BOT_TOKEN", "")),
			APIURL:    strings.TrimRight(getEnv("TELEGRAM_API_URL", "https://api.telegram.org"), "/"),
			WebAppURL: strings.TrimSpace(getEnv("WEBAPP_URL", DefaultBackendURL)),
		},
		Twilio: TwilioConfig{
			AccountSID:  strings.TrimSpace(getEnv("TWILIO_ACCOUNT_SID", "")),
			AuthToken:   strings.TrimSpace(getEnv("TWILIO_AUTH_TOKEN", "")),
			PhoneNumber: strings.TrimSpace(getEnv("TWILIO_PHONE_NUMBER", "")),
			APIURL:      strings.TrimRight(getEnv("TWILIO_API_URL", "https://api.twilio.com"), "/"),
		},
		WhatsApp: WhatsAppConfig{
			Enabled: getEnv("WA_ENABLED", "false") == "true",
			Session: getEnv("WA_SESSION", "alerta"),
		},
		AlertEvents: AlertEventsConfig{
			WebhookURL: strings.TrimSpace(getEnv("ALERT_EVENTS_WEBHOOK_URL", "")),
			Token:      strings.TrimSpace(getEnv("ALERT_EVENTS_TOKEN", "")),
		},
	}
	return cfg
}

func buildPostgresDSN(pg PostgresConfig) string {
	u := &url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(orDefault(pg.Host, "localhost"), orDefault(pg.Port, "5432")),
		Path:     "/" + pg.DBName,
		RawQuery: url.Values{"sslmode": {orDefault(pg.SSLMode, "disable")}}.Encode(),
	}
	switch {
	case pg.User != "" && pg.Password != "":
		u.User = url.UserPassword(pg.User, pg.Password)
	case pg.User != "":
		u.User = url.User(pg.User)
	}
	return u.String()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// firstEnv returns the first non-empty variable among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func MustLoad() *AppConfig {
	cfg := Load()
	if cfg.HTTPPort == "" {
		log.Fatal("HTTP_PORT required")
	}
	switch cfg.DBDriver {
	case "file", "sqlite", "postgres":
	default:
		log.Fatalf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.DBDriver == "postgres" && cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN required for postgres driver")
	}
	return cfg
}
