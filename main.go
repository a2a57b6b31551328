package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"therapy-cards/config"
	"therapy-cards/services"
	"therapy-cards/storage"
)

// app bündelt die Abhängigkeiten der HTTP-Routen.
type app struct {
	cfg      *config.Config
	db       *gorm.DB
	importer *services.Importer
	cards    *services.CardService
	backfill *services.Backfill
	log      *zap.Logger
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to card database.")

	logging.Info("Running database auto-migration...")
	if err := storage.Migrate(db); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Setup Object Storage
	var objects storage.ObjectStore
	if cfg.S3Enabled() {
		s3Store, err := storage.NewS3Store(cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		objects = s3Store
	} else {
		logging.Warn("S3_URL not set, uploads are kept in memory only")
		objects = storage.NewMemoryStore()
	}

	// Setup Services
	cardStore := storage.NewCardStore(db)
	a := &app{
		cfg:      cfg,
		db:       db,
		importer: services.NewImporter(cardStore, storage.NewFileStore(db), objects, logging),
		cards:    services.NewCardService(cardStore, logging),
		backfill: services.NewBackfill(cardStore, logging, cfg.BackfillBatchSize),
		log:      logging,
	}

	router := newRouter(a)

	// Setup Cron
	cronScheduler := cron.New()
	_, err = cronScheduler.AddFunc(cfg.BackfillSchedule, func() {
		logging.Info("Running scheduled backfill job...")
		report, err := a.backfill.Run(context.Background(), services.BackfillScope{})
		if err != nil {
			logging.Error("Backfill job failed", zap.Error(err), zap.String("last_id", report.LastID))
			return
		}
		logging.Info("Backfill job completed", zap.Int("scanned", report.Scanned), zap.Int("updated", report.Updated))
	})
	if err != nil {
		logging.Fatal("Invalid backfill schedule", zap.String("schedule", cfg.BackfillSchedule), zap.Error(err))
	}
	cronScheduler.Start()
	defer cronScheduler.Stop()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func newRouter(a *app) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(a.cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api")
	setupHealthRoutes(public, a.db, a.log)
	setupTemplateRoutes(public, a.log)

	api := router.Group("/api")
	api.Use(authMiddleware(a.cfg.JWTSecret, a.log))
	setupFileRoutes(api, a.cfg, a.importer, a.log)
	setupCardRoutes(api, a.cards, a.log)
	setupMaintenanceRoutes(api, a.backfill, a.log)

	return router
}

func setupHealthRoutes(rg *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	rg.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			log.Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
