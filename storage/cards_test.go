package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"therapy-cards/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func card(id, owner, plan, disease string, created time.Time) *models.Card {
	return &models.Card{
		ID:         id,
		CreatedAt:  created,
		OwnerID:    owner,
		PlanName:   plan,
		Disease:    disease,
		DataSource: "指南",
		MainPage:   datatypes.JSON(`{"plan_name":"` + plan + `"}`),
		DetailPage: datatypes.JSON(`{}`),
	}
}

func TestCardStoreFind(t *testing.T) {
	ctx := context.Background()
	store := NewCardStore(openTestDB(t))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, card("a", "u1", "Acupuncture", "失眠", base)))
	require.NoError(t, store.Insert(ctx, card("b", "u1", "中药", "湿疹", base.Add(time.Hour))))
	require.NoError(t, store.Insert(ctx, card("c", "u1", "Massage", "Back Pain", base.Add(2*time.Hour))))
	require.NoError(t, store.Insert(ctx, card("d", "u2", "Acupuncture", "失眠", base)))

	cards, total, err := store.Find(ctx, CardQuery{OwnerID: "u1", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, cards, 3)
	assert.Equal(t, "c", cards[0].ID, "newest first")

	cards, total, err = store.Find(ctx, CardQuery{OwnerID: "u1", Keyword: "acu", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, cards, 1)
	assert.Equal(t, "a", cards[0].ID)

	cards, total, err = store.Find(ctx, CardQuery{OwnerID: "u1", Keyword: "BACK", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "c", cards[0].ID)

	_, total, err = store.Find(ctx, CardQuery{OwnerID: "u1", Keyword: "湿疹", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = store.Find(ctx, CardQuery{OwnerID: "u1", Keyword: "%", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	cards, total, err = store.Find(ctx, CardQuery{OwnerID: "u1", Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, cards, 1)
	assert.Equal(t, "a", cards[0].ID)
}

func TestCardStoreFindOneAndDeleteAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	store := NewCardStore(openTestDB(t))
	require.NoError(t, store.Insert(ctx, card("a", "u1", "p", "d", time.Now())))

	_, err := store.FindOne(ctx, "a", "u2")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	err = store.Delete(ctx, "a", "u2")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	got, err := store.FindOne(ctx, "a", "u1")
	require.NoError(t, err)
	assert.Equal(t, "p", got.PlanName)

	require.NoError(t, store.Delete(ctx, "a", "u1"))
	_, err = store.FindOne(ctx, "a", "u1")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestCardStoreUpdateDocuments(t *testing.T) {
	ctx := context.Background()
	store := NewCardStore(openTestDB(t))
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, card("a", "u1", "old", "d", created)))

	err := store.UpdateDocuments(ctx, models.Card{
		ID:           "a",
		OwnerID:      "ignored",
		PlanName:     "new",
		Disease:      "d2",
		TemplateType: "general",
		MainPage:     datatypes.JSON(`{"plan_name":"new"}`),
		DetailPage:   datatypes.JSON(`{"intro":"x"}`),
	})
	require.NoError(t, err)

	got, err := store.FindOne(ctx, "a", "u1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.PlanName)
	assert.Equal(t, "d2", got.Disease)
	assert.Equal(t, "u1", got.OwnerID)
	assert.JSONEq(t, `{"intro":"x"}`, string(got.DetailPage))
	assert.True(t, created.Equal(got.CreatedAt))

	err = store.UpdateDocuments(ctx, models.Card{ID: "missing"})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestCardStoreListAfter(t *testing.T) {
	ctx := context.Background()
	store := NewCardStore(openTestDB(t))
	for _, id := range []string{"c", "a", "e", "b", "d"} {
		owner := "u1"
		if id == "d" {
			owner = "u2"
		}
		require.NoError(t, store.Insert(ctx, card(id, owner, "p", "d", time.Now())))
	}

	page, err := store.ListAfter(ctx, "", "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(page))

	page, err = store.ListAfter(ctx, "b", "", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d", "e"}, ids(page))

	page, err = store.ListAfter(ctx, "", "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "e"}, ids(page))
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(openTestDB(t))
	require.NoError(t, store.Insert(ctx, &models.UploadedFile{ID: "f1", OwnerID: "u1", Filename: "a.xlsx", ObjectKey: "k"}))

	got, err := store.FindOne(ctx, "f1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "k", got.ObjectKey)

	_, err = store.FindOne(ctx, "f1", "u2")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	data := []byte("xlsx")
	require.NoError(t, m.Put(ctx, "k", data))
	data[0] = 'X'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", string(got))

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func ids(cards []models.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}
