package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faeln1/alerta-roja/internal/app/controllers"
	"github.com/faeln1/alerta-roja/internal/app/repositories"
	"github.com/faeln1/alerta-roja/internal/app/services"
	"github.com/faeln1/alerta-roja/internal/config"
	"github.com/faeln1/alerta-roja/internal/platform/database"
	httpPlatform "github.com/faeln1/alerta-roja/internal/platform/http"
	"github.com/faeln1/alerta-roja/internal/platform/metrics"
	"github.com/faeln1/alerta-roja/internal/platform/whatsapp"
	"github.com/faeln1/alerta-roja/pkg/eventlog"
	"github.com/faeln1/alerta-roja/pkg/logger"
	storagepkg "github.com/faeln1/alerta-roja/pkg/storage"
	minioStorage "github.com/faeln1/alerta-roja/pkg/storage/minio"
	"github.com/joho/godotenv"
	waLog "go.mau.fi/whatsmeow/util/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.MustLoad()
	loggers := logger.New(cfg.LogLevel)
	appLog := loggers.App

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLog.Infof("configuration: env=%s driver=%s communities=%s", cfg.Env, cfg.DBDriver, cfg.CommunitiesDir)

	var objectStorage storagepkg.Service
	if cfg.Storage.Enabled() {
		store, err := minioStorage.New(ctx, minioStorage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			UseSSL:    cfg.Storage.UseSSL,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			log.Fatalf("storage initialization error: %v", err)
		}
		objectStorage = store
		appLog.Infof("alert archive enabled bucket=%s endpoint=%s", cfg.Storage.Bucket, cfg.Storage.Endpoint)
	}

	communities, alerts, closeDB := openRepositories(ctx, cfg, loggers.Component("Repo"))
	defer closeDB()

	var collector *metrics.Collector
	if cfg.MetricsEnable {
		collector = metrics.New()
	}

	deps := services.AlertDeps{
		Communities: communities,
		Alerts:      alerts,
		Metrics:     collector,
		Concurrency: cfg.NotifyConcurrency,
		Events:      services.NewAlertEventsDispatcher(cfg.AlertEvents.WebhookURL, cfg.AlertEvents.Token, nil, loggers.Component("AlertWebhook")),
		Log:         loggers.Component("Alerts"),
	}
	if w := eventlog.NewWriter(cfg.EventLogDir, loggers.Component("EventLog")); w.Enabled() {
		deps.EventLog = w
	}
	if objectStorage != nil {
		deps.Archive = services.NewAlertArchiver(objectStorage)
	}

	var telegram services.TelegramSender
	if cfg.Telegram.Enabled() {
		telegram = services.NewTelegramClient(cfg.Telegram.APIURL, cfg.Telegram.BotToken, nil, loggers.Component("Telegram"))
		deps.Telegram = telegram
	} else {
		appLog.Warnf("TELEGRAM_BOT_TOKEN not set: telegram notifications disabled")
	}
	if cfg.Twilio.Enabled() {
		deps.Calls = services.NewTwilioCaller(cfg.Twilio.APIURL, cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.PhoneNumber, nil, loggers.Component("Twilio"))
	} else {
		appLog.Warnf("twilio not configured: phone calls disabled")
	}

	var waMgr *whatsapp.Manager
	if cfg.WhatsApp.Enabled {
		waMgr = whatsapp.NewManager(loggers.Component("WA"))
		storeFactory := whatsapp.NewStoreFactory(cfg.DataDir, loggers.Component("Store"))
		bootstrap := services.NewChannelBootstrap(storeFactory, waMgr, loggers.Component("Bootstrap"))
		if err := bootstrap.Start(ctx, cfg.WhatsApp.Session); err != nil {
			appLog.Errorf("whatsapp channel %s unavailable: %v", cfg.WhatsApp.Session, err)
		} else {
			deps.WhatsApp = services.NewWhatsAppMessenger(waMgr, cfg.WhatsApp.Session)
			defer waMgr.Disconnect(cfg.WhatsApp.Session)
		}
	}

	alertSvc := services.NewAlertService(deps)
	communitySvc := services.NewCommunityService(communities, collector)
	registrationSvc := services.NewRegistrationService(telegram, cfg.Telegram.WebAppURL, loggers.Component("Register"))

	router := httpPlatform.NewRouter(httpPlatform.RouterConfig{
		CommunityCtrl: controllers.NewCommunityController(communitySvc, loggers.Component("Community")),
		AlertCtrl:     controllers.NewAlertController(alertSvc, loggers.Component("Alert")),
		TelegramCtrl:  controllers.NewTelegramController(registrationSvc, loggers.Component("Webhook")),
		Logger:        loggers.HTTP,
		Metrics:       collector,
		WAManager:     waMgr,
		WAChannel:     cfg.WhatsApp.Session,
		SwaggerEnable: cfg.SwaggerEnable,
		Features: map[string]bool{
			"telegram": cfg.Telegram.Enabled(),
			"twilio":   cfg.Twilio.Enabled(),
			"whatsapp": deps.WhatsApp != nil,
			"archive":  deps.Archive != nil,
			"eventlog": deps.EventLog != nil,
			"metrics":  collector != nil,
		},
	})

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		appLog.Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	appLog.Infof("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Errorf("shutdown: %v", err)
	}
}

// openRepositories picks the roster store for cfg.DBDriver. SQL stores are
// seeded from the communities directory when SEED_COMMUNITIES is set.
func openRepositories(ctx context.Context, cfg *config.AppConfig, log waLog.Logger) (repositories.CommunityRepository, repositories.AlertRepository, func()) {
	fileRepo, fileErr := repositories.NewFileCommunityRepo(cfg.CommunitiesDir)

	switch cfg.DBDriver {
	case "postgres":
		log.Infof("initializing postgres repositories with GORM")
		db, err := database.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Errorf("database connection error: %v", err)
			os.Exit(1)
		}
		sqlDB, err := db.DB()
		if err != nil {
			log.Errorf("database handle retrieval error: %v", err)
			os.Exit(1)
		}
		communities, err := repositories.NewSQLCommunityRepo(sqlDB, repositories.DialectPostgres)
		if err != nil {
			log.Errorf("community repository initialization error: %v", err)
			os.Exit(1)
		}
		alerts, err := repositories.NewGormAlertRepo(db)
		if err != nil {
			log.Errorf("alert repository initialization error: %v", err)
			os.Exit(1)
		}
		seed(ctx, cfg, fileRepo, fileErr, communities, log)
		return communities, alerts, closer(sqlDB.Close, log)

	case "sqlite":
		log.Infof("initializing sqlite community repository")
		sqlDB, err := database.OpenSQLite(cfg.DatabaseDSN)
		if err != nil {
			log.Errorf("sqlite open error: %v", err)
			os.Exit(1)
		}
		communities, err := repositories.NewSQLCommunityRepo(sqlDB, repositories.DialectSQLite)
		if err != nil {
			log.Errorf("community repository initialization error: %v", err)
			os.Exit(1)
		}
		seed(ctx, cfg, fileRepo, fileErr, communities, log)
		return communities, repositories.NewInMemoryAlertRepo(), closer(sqlDB.Close, log)

	default:
		if fileErr != nil {
			log.Errorf("communities directory %s: %v", cfg.CommunitiesDir, fileErr)
			os.Exit(1)
		}
		log.Infof("serving community rosters from %s", cfg.CommunitiesDir)
		return fileRepo, repositories.NewInMemoryAlertRepo(), func() {}
	}
}

func seed(ctx context.Context, cfg *config.AppConfig, src repositories.CommunityRepository, srcErr error, dst repositories.CommunityRepository, log waLog.Logger) {
	if !cfg.SeedCommunities {
		return
	}
	if srcErr != nil {
		log.Warnf("seed skipped: %v", srcErr)
		return
	}
	if _, err := repositories.SeedCommunities(ctx, src, dst, log); err != nil {
		log.Errorf("seed communities: %v", err)
	}
}

func closer(fn func() error, log waLog.Logger) func() {
	return func() {
		if err := fn(); err != nil {
			log.Errorf("error closing database: %v", err)
		}
	}
}
