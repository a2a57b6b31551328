package storage

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"therapy-cards/models"
)

// CardStore kapselt alle Datenbankzugriffe auf Karten.
type CardStore struct {
	db *gorm.DB
}

// NewCardStore erstellt einen CardStore auf der gegebenen Verbindung.
func NewCardStore(db *gorm.DB) *CardStore {
	return &CardStore{db: db}
}

// CardQuery beschreibt eine Suche innerhalb der Karten eines Besitzers.
type CardQuery struct {
	OwnerID string
	Keyword string
	Offset  int
	Limit   int
}

// Insert speichert eine neue Karte.
func (s *CardStore) Insert(ctx context.Context, card *models.Card) error {
	return s.db.WithContext(ctx).Create(card).Error
}

// Find liefert eine Seite passender Karten und die Gesamtzahl der Treffer.
// Die Stichwortsuche ignoriert Groß-/Kleinschreibung und prüft Planname,
// Krankheit und Quelle.
func (s *CardStore) Find(ctx context.Context, q CardQuery) ([]models.Card, int64, error) {
	scope := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Card{}).Where("owner_id = ?", q.OwnerID)
		if kw := strings.TrimSpace(q.Keyword); kw != "" {
			pattern := "%" + escapeLike(strings.ToLower(kw)) + "%"
			query = query.Where(
				"LOWER(plan_name) LIKE ? ESCAPE '\\' OR LOWER(disease) LIKE ? ESCAPE '\\' OR LOWER(data_source) LIKE ? ESCAPE '\\'",
				pattern, pattern, pattern,
			)
		}
		return query
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cards []models.Card
	err := scope().Order("created_at DESC").Order("id").
		Offset(q.Offset).Limit(q.Limit).
		Find(&cards).Error
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// FindOne lädt eine Karte des Besitzers. Fremde und fehlende Karten liefern
// gorm.ErrRecordNotFound.
func (s *CardStore) FindOne(ctx context.Context, id, ownerID string) (models.Card, error) {
	var card models.Card
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&card).Error
	return card, err
}

// UpdateDocuments schreibt die kanonischen Dokumente und Kopfdaten zurück.
// Besitzer, ID und Erstellungszeit bleiben unverändert.
func (s *CardStore) UpdateDocuments(ctx context.Context, card models.Card) error {
	res := s.db.WithContext(ctx).Model(&models.Card{}).
		Where("id = ?", card.ID).
		Updates(map[string]any{
			"main_page":     card.MainPage,
			"detail_page":   card.DetailPage,
			"plan_name":     card.PlanName,
			"disease":       card.Disease,
			"template_type": card.TemplateType,
			"data_source":   card.DataSource,
			"uploader":      card.Uploader,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete entfernt eine Karte des Besitzers.
func (s *CardStore) Delete(ctx context.Context, id, ownerID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Card{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAfter liefert bis zu limit Karten mit einer ID größer als afterID,
// aufsteigend sortiert. Ein leerer ownerID wählt alle Besitzer.
func (s *CardStore) ListAfter(ctx context.Context, afterID, ownerID string, limit int) ([]models.Card, error) {
	query := s.db.WithContext(ctx).Where("id > ?", afterID)
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	var cards []models.Card
	err := query.Order("id").Limit(limit).Find(&cards).Error
	return cards, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
