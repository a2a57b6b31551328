package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"therapy-cards/config"
	"therapy-cards/services"
	"therapy-cards/storage"
)

func main() {
	owner := flag.String("owner", "", "nur Karten dieses Besitzers bearbeiten")
	after := flag.String("after", "", "Lauf nach dieser Karten-ID fortsetzen")
	batch := flag.Int("batch", 0, "Seitengröße, 0 übernimmt BACKFILL_BATCH_SIZE")
	flag.Parse()

	logging, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	logging.Info("Starte Backfill-Prozess...")

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Fehler beim Laden der Konfiguration", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Datenbankverbindung fehlgeschlagen", zap.Error(err))
	}
	if err := storage.Migrate(db); err != nil {
		logging.Fatal("Migration fehlgeschlagen", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backfill := services.NewBackfill(storage.NewCardStore(db), logging, cfg.BackfillBatchSize)
	report, err := backfill.Run(ctx, services.BackfillScope{
		OwnerID:   *owner,
		AfterID:   *after,
		BatchSize: *batch,
	})
	if err != nil {
		// last_id erlaubt die Fortsetzung mit -after
		logging.Fatal("Backfill abgebrochen", zap.Error(err), zap.String("last_id", report.LastID))
	}

	logging.Info("Backfill-Prozess erfolgreich abgeschlossen.",
		zap.Int("scanned", report.Scanned),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
		zap.String("last_id", report.LastID),
	)
	if report.Failed > 0 {
		os.Exit(1)
	}
}
