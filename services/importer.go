package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"therapy-cards/models"
	"therapy-cards/normalize"
	"therapy-cards/storage"
)

// ErrInvalidFile wird geliefert, wenn eine hochgeladene Datei nicht gelesen
// werden kann.
var ErrInvalidFile = errors.New("invalid spreadsheet")

// Owner ist der authentifizierte Aufrufer.
type Owner struct {
	ID       string
	Username string
}

// ImportReport fasst einen Importlauf zusammen.
type ImportReport struct {
	CardsCreated int      `json:"cards_created"`
	RowsFailed   int      `json:"rows_failed"`
	Warnings     []string `json:"warnings"`
	CardIDs      []string `json:"card_ids"`
}

// Importer verarbeitet hochgeladene Tabellen zu Karten.
type Importer struct {
	Cards   *storage.CardStore
	Files   *storage.FileStore
	Objects storage.ObjectStore
	Logger  *zap.Logger

	now func() time.Time
}

// NewImporter erstellt eine neue Instanz des Importers.
func NewImporter(cards *storage.CardStore, files *storage.FileStore, objects storage.ObjectStore, logger *zap.Logger) *Importer {
	return &Importer{
		Cards:   cards,
		Files:   files,
		Objects: objects,
		Logger:  logger,
		now:     time.Now,
	}
}

// Upload legt die Datei im Objektspeicher ab und speichert ihre Metadaten.
func (im *Importer) Upload(ctx context.Context, owner Owner, filename string, data []byte) (models.UploadedFile, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if !SupportedUpload(filename) {
		return models.UploadedFile{}, ErrUnsupportedFormat
	}

	id := uuid.NewString()
	file := models.UploadedFile{
		ID:        id,
		OwnerID:   owner.ID,
		Filename:  filename,
		ObjectKey: fmt.Sprintf("uploads/%s/%s%s", owner.ID, id, strings.ToLower(filepath.Ext(filename))),
		Size:      int64(len(data)),
	}
	if err := im.Objects.Put(ctx, file.ObjectKey, data); err != nil {
		im.Logger.Error("Upload in den Objektspeicher fehlgeschlagen", zap.String("key", file.ObjectKey), zap.Error(err))
		return models.UploadedFile{}, storageErr("store upload", err)
	}
	if err := im.Files.Insert(ctx, &file); err != nil {
		im.Logger.Error("Dateimetadaten konnten nicht gespeichert werden", zap.String("file_id", id), zap.Error(err))
		return models.UploadedFile{}, storageErr("record upload", err)
	}
	im.Logger.Info("Datei hochgeladen",
		zap.String("file_id", id),
		zap.String("owner_id", owner.ID),
		zap.String("filename", filename),
		zap.Int64("size", file.Size),
	)
	return file, nil
}

// Generate erzeugt aus einer hochgeladenen Datei Karten. Jede Zeile wird
// einzeln verarbeitet; eine fehlerhafte Zeile bricht den Lauf nicht ab.
func (im *Importer) Generate(ctx context.Context, owner Owner, fileID string) (ImportReport, error) {
	report := ImportReport{Warnings: []string{}, CardIDs: []string{}}

	file, err := im.Files.FindOne(ctx, fileID, owner.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return report, ErrNotFound
		}
		return report, storageErr("load file", err)
	}

	data, err := im.Objects.Get(ctx, file.ObjectKey)
	if err != nil {
		im.Logger.Error("Datei nicht im Objektspeicher", zap.String("file_id", file.ID), zap.Error(err))
		return report, storageErr("read upload", err)
	}

	sheet, err := ReadSheet(file.Filename, data)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return report, err
		}
		return report, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if missing := normalize.MissingColumns(sheet.Headers); len(missing) > 0 {
		return report, &ValidationError{Missing: missing}
	}

	var lastErr error
	for _, row := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		card, warnings, err := normalize.Assemble(row.Values, normalize.AssembleInput{
			OwnerID:  owner.ID,
			Username: owner.Username,
			FileID:   file.ID,
			Line:     row.Line,
			Now:      im.now(),
		})
		for _, w := range warnings {
			im.Logger.Warn("Feld auf Standardwert gesetzt", zap.String("file_id", file.ID), zap.Error(w))
			report.Warnings = append(report.Warnings, w.Error())
		}
		if err != nil {
			im.Logger.Error("Zeile konnte nicht verarbeitet werden", zap.Int("line", row.Line), zap.Error(err))
			report.RowsFailed++
			lastErr = err
			continue
		}

		if err := im.Cards.Insert(ctx, &card); err != nil {
			im.Logger.Error("Karte konnte nicht gespeichert werden",
				zap.Int("line", row.Line),
				zap.String("file_id", file.ID),
				zap.Error(err),
			)
			report.RowsFailed++
			lastErr = err
			continue
		}
		report.CardsCreated++
		report.CardIDs = append(report.CardIDs, card.ID)
	}

	cardsCreatedCounter.Add(float64(report.CardsCreated))
	rowsFailedCounter.Add(float64(report.RowsFailed))
	im.Logger.Info("Import abgeschlossen",
		zap.String("file_id", file.ID),
		zap.Int("cards_created", report.CardsCreated),
		zap.Int("rows_failed", report.RowsFailed),
		zap.Int("warnings", len(report.Warnings)),
	)

	if report.CardsCreated == 0 && lastErr != nil {
		return report, storageErr("insert cards", lastErr)
	}
	return report, nil
}
