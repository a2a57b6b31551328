package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"therapy-cards/models"
	"therapy-cards/normalize"
)

var (
	alice = Owner{ID: "u-alice", Username: "alice"}
	bob   = Owner{ID: "u-bob", Username: "bob"}
)

func TestImporterGenerate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := requiredValues("针灸方案", "失眠")
	first[normalize.ColTotalPatients] = "100"
	first[normalize.ColEffectivePatients] = "85"
	first[normalize.ColEffectiveRate] = "0%"
	first[normalize.ColCureRate] = "92%"
	first[normalize.ColOperationDifficulty] = "4"

	second := requiredValues("中药方案", "湿疹")
	second[normalize.ColTotalPatients] = "约一百"

	data := buildXLSX(t, [][]string{normalize.TemplateColumns, fullRow(first), fullRow(second)})

	file, err := env.importer.Upload(ctx, alice, "cards.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), file.Size)

	createdBefore := testutil.ToFloat64(cardsCreatedCounter)
	report, err := env.importer.Generate(ctx, alice, file.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.CardsCreated)
	assert.Equal(t, 2.0, testutil.ToFloat64(cardsCreatedCounter)-createdBefore)
	assert.Equal(t, 0, report.RowsFailed)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "row 3")
	assert.Contains(t, report.Warnings[0], normalize.ColTotalPatients)
	require.Len(t, report.CardIDs, 2)

	view, err := env.service.Get(ctx, alice.ID, report.CardIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "针灸方案", view.MainPage.PlanName)
	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, "alice", view.Uploader)
	assert.Equal(t, "general", view.TemplateType)
	require.NotNil(t, view.DetailPage)
	assert.Equal(t, "85.0%", view.DetailPage.EffectiveRate)
	assert.Equal(t, "92%", view.DetailPage.CureRate)
	assert.Equal(t, 4.0, view.Scores["complexity_score"])

	stored, err := env.cards.FindOne(ctx, report.CardIDs[0], alice.ID)
	require.NoError(t, err)
	assert.Equal(t, file.ID, stored.FileID)
}

func TestImporterMissingColumns(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	data := buildXLSX(t, [][]string{
		{normalize.ColDisease, normalize.ColPlanName},
		{"失眠", "针灸"},
	})
	file, err := env.importer.Upload(ctx, alice, "short.xlsx", data)
	require.NoError(t, err)

	report, err := env.importer.Generate(ctx, alice, file.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{normalize.ColIntro, normalize.ColDuration, normalize.ColCostRange}, verr.Missing)
	assert.Zero(t, report.CardsCreated)

	var count int64
	require.NoError(t, env.db.Model(&models.Card{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestImporterOtherOwnersFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	data := buildXLSX(t, [][]string{normalize.TemplateColumns, fullRow(requiredValues("p", "d"))})
	file, err := env.importer.Upload(ctx, alice, "cards.xlsx", data)
	require.NoError(t, err)

	_, err = env.importer.Generate(ctx, bob, file.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.importer.Generate(ctx, alice, "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImporterUploadRejectsUnknownFormat(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.importer.Upload(context.Background(), alice, "legacy.xls", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestImporterInvalidFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	file, err := env.importer.Upload(ctx, alice, "broken.xlsx", []byte("not a zip"))
	require.NoError(t, err)

	_, err = env.importer.Generate(ctx, alice, file.ID)
	assert.ErrorIs(t, err, ErrInvalidFile)
}

func TestImporterCSV(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	csvData := "\xef\xbb\xbf 疾病 ,方案名称,方案简介,治疗时间,费用范围,有效率\n" +
		"失眠,针灸,每周三次,4周,100元,0.85\n" +
		",,,,,\n" +
		"湿疹,中药,,,,\n"
	file, err := env.importer.Upload(ctx, alice, "cards.CSV", []byte(csvData))
	require.NoError(t, err)

	report, err := env.importer.Generate(ctx, alice, file.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.CardsCreated)

	res, err := env.service.Search(ctx, alice.ID, SearchParams{Keyword: "湿疹", ShowDetails: true})
	require.NoError(t, err)
	require.Len(t, res.Cards, 1)
	assert.Equal(t, normalize.DefaultIntro, res.Cards[0].DetailPage.Intro)

	res, err = env.service.Search(ctx, alice.ID, SearchParams{Keyword: "失眠", ShowDetails: true})
	require.NoError(t, err)
	require.Len(t, res.Cards, 1)
	assert.Equal(t, "85.0%", res.Cards[0].DetailPage.EffectiveRate)
}

func TestImporterAllRowsFailing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	data := buildXLSX(t, [][]string{normalize.TemplateColumns, fullRow(requiredValues("p", "d"))})
	file, err := env.importer.Upload(ctx, alice, "cards.xlsx", data)
	require.NoError(t, err)
	require.NoError(t, env.db.Migrator().DropTable(&models.Card{}))

	report, err := env.importer.Generate(ctx, alice, file.ID)
	var serr *StorageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 1, report.RowsFailed)
	assert.Zero(t, report.CardsCreated)
}
