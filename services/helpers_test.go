package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"therapy-cards/normalize"
	"therapy-cards/storage"
)

type testEnv struct {
	db       *gorm.DB
	cards    *storage.CardStore
	files    *storage.FileStore
	objects  *storage.MemoryStore
	importer *Importer
	service  *CardService
	backfill *Backfill
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := zap.NewNop()
	cards := storage.NewCardStore(db)
	files := storage.NewFileStore(db)
	objects := storage.NewMemoryStore()
	return &testEnv{
		db:       db,
		cards:    cards,
		files:    files,
		objects:  objects,
		importer: NewImporter(cards, files, objects, log),
		service:  NewCardService(cards, log),
		backfill: NewBackfill(cards, log, 2),
	}
}

// buildXLSX erzeugt eine Tabelle im Speicher; die erste Zeile ist die Kopfzeile.
func buildXLSX(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &values))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// fullRow liefert eine Zeile in der Reihenfolge der Vorlage.
func fullRow(values map[string]string) []string {
	row := make([]string, len(normalize.TemplateColumns))
	for i, col := range normalize.TemplateColumns {
		row[i] = values[col]
	}
	return row
}

func requiredValues(plan, disease string) map[string]string {
	return map[string]string{
		normalize.ColDisease:   disease,
		normalize.ColPlanName:  plan,
		normalize.ColIntro:     "简介",
		normalize.ColDuration:  "4周",
		normalize.ColCostRange: "100-200元",
	}
}
