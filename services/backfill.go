package services

import (
	"context"
	"encoding/json"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"therapy-cards/models"
	"therapy-cards/normalize"
	"therapy-cards/storage"
)

// BackfillScope begrenzt einen Backfill-Lauf. Ein leerer OwnerID wählt alle
// Besitzer; AfterID setzt einen abgebrochenen Lauf fort.
type BackfillScope struct {
	OwnerID   string
	AfterID   string
	BatchSize int
}

// BackfillReport fasst einen Lauf zusammen.
type BackfillReport struct {
	Scanned int    `json:"scanned"`
	Updated int    `json:"updated"`
	Failed  int    `json:"failed"`
	LastID  string `json:"last_id"`
}

// Backfill schreibt gespeicherte Karten in ihrer kanonischen Form zurück.
// Ein zweiter Lauf ändert nichts mehr.
type Backfill struct {
	Cards     *storage.CardStore
	Logger    *zap.Logger
	BatchSize int
}

func NewBackfill(cards *storage.CardStore, logger *zap.Logger, batchSize int) *Backfill {
	return &Backfill{Cards: cards, Logger: logger, BatchSize: batchSize}
}

// Run durchläuft die Karten seitenweise nach ID. Fehler beim Schreiben einzelner
// Karten werden gezählt; nur Lesefehler beenden den Lauf.
func (b *Backfill) Run(ctx context.Context, scope BackfillScope) (BackfillReport, error) {
	batch := scope.BatchSize
	if batch <= 0 {
		batch = b.BatchSize
	}
	if batch <= 0 {
		batch = 200
	}

	report := BackfillReport{LastID: scope.AfterID}
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		page, err := b.Cards.ListAfter(ctx, report.LastID, scope.OwnerID, batch)
		if err != nil {
			b.Logger.Error("Backfill: Karten konnten nicht gelesen werden", zap.String("after_id", report.LastID), zap.Error(err))
			return report, storageErr("list cards", err)
		}

		for _, card := range page {
			report.Scanned++
			report.LastID = card.ID

			canonical := normalize.Canonicalize(card, normalize.ViewOptions{}).Card()
			if !needsBackfill(card, canonical) {
				backfillCounter.WithLabelValues("unchanged").Inc()
				continue
			}
			if err := b.Cards.UpdateDocuments(ctx, canonical); err != nil {
				b.Logger.Error("Backfill: Karte konnte nicht aktualisiert werden", zap.String("card_id", card.ID), zap.Error(err))
				backfillCounter.WithLabelValues("failed").Inc()
				report.Failed++
				continue
			}
			backfillCounter.WithLabelValues("updated").Inc()
			report.Updated++
		}

		if len(page) < batch {
			break
		}
	}

	b.Logger.Info("Backfill abgeschlossen",
		zap.String("owner_id", scope.OwnerID),
		zap.Int("scanned", report.Scanned),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// needsBackfill vergleicht die dekodierten Dokumente, da jsonb die
// Schlüsselreihenfolge nicht erhält.
func needsBackfill(stored, canonical models.Card) bool {
	if stored.PlanName != canonical.PlanName ||
		stored.Disease != canonical.Disease ||
		stored.TemplateType != canonical.TemplateType ||
		stored.DataSource != canonical.DataSource ||
		stored.Uploader != canonical.Uploader {
		return true
	}
	return !sameDocument(stored.MainPage, canonical.MainPage) ||
		!sameDocument(stored.DetailPage, canonical.DetailPage)
}

func sameDocument(a, b datatypes.JSON) bool {
	var va, vb any
	if err := json.Unmarshal(a, &va); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &vb); err != nil {
		return false
	}
	return cmp.Equal(va, vb)
}
