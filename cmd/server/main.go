package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/pkg/config"
	"github.com/dikoweii/XianTu/pkg/di"
	"github.com/dikoweii/XianTu/pkg/logger"
	"github.com/dikoweii/XianTu/pkg/observability"
	"github.com/dikoweii/XianTu/pkg/router"
	"github.com/dikoweii/XianTu/pkg/secrets"

	"gorm.io/gorm"
)

func main() {
	cfg := config.New()

	log := logger.New(logger.Config{
		Level: cfg.Logging.Level,
		JSON:  cfg.Logging.Format == "json",
	})
	logger.SetGlobal(log)

	db, err := config.NewDB()
	if err != nil {
		log.Error("database connection failed", "error", err.Error())
		os.Exit(1)
	}
	if err := autoMigrate(db); err != nil {
		log.Error("database migration failed", "error", err.Error())
		os.Exit(1)
	}

	secretManager, err := secrets.NewVaultManager(log)
	if err != nil {
		log.Error("secrets manager init failed", "error", err.Error())
		os.Exit(1)
	}

	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		jwtSecret, err = secretManager.GetSecret(context.Background(), secrets.KeyJWTSecret)
		if err != nil || jwtSecret == "" {
			log.Error("no JWT secret configured")
			os.Exit(1)
		}
	}

	shutdownTracing, err := observability.SetupTracing("xiantu-server")
	if err != nil {
		log.Warn("tracing setup failed", "error", err.Error())
	} else {
		defer shutdownTracing()
	}
	if _, err := observability.SetupPrometheusMetrics(cfg.MetricsPort); err != nil {
		log.Warn("metrics exporter setup failed", "error", err.Error())
	}
	metrics, err := observability.NewMetrics()
	if err != nil {
		log.Warn("metrics registration failed", "error", err.Error())
		metrics = nil
	}

	container := di.New(db, cfg, log, secretManager, jwtSecret, metrics)

	if cfg.Seed.Enabled {
		if err := container.Seeder.Run(container.SystemConfigs, cfg.Seed.AdminUserName, cfg.Seed.AdminPassword); err != nil {
			log.Error("seeding failed", "error", err.Error())
			os.Exit(1)
		}
	} else if err := container.SystemConfigs.InitDefaults(); err != nil {
		log.Error("system config init failed", "error", err.Error())
		os.Exit(1)
	}

	r := router.New(container, cfg)
	r.SetupRoutes()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r.Engine,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		log.Info("server listening", "port", cfg.Server.Port, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err.Error())
	}
	log.Info("server stopped")
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.PlayerAccount{},
		&models.AdminAccount{},
		&models.World{},
		&models.TalentTier{},
		&models.Origin{},
		&models.SpiritRoot{},
		&models.Talent{},
		&models.Realm{},
		&models.CharacterBase{},
		&models.CharacterGameState{},
		&models.RedemptionCode{},
		&models.SystemConfig{},
		&models.IPRateLimitRecord{},
		&models.EmailVerificationCode{},
	)
}
