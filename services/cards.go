package services

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"therapy-cards/normalize"
	"therapy-cards/storage"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// maxPage hält den Offset auch bei MaxPageSize im int-Bereich.
	maxPage = math.MaxInt / MaxPageSize
)

// SearchParams sind die Parameter der Kartensuche.
type SearchParams struct {
	Keyword     string
	Page        int
	Limit       int
	ShowDetails bool
}

// Pagination beschreibt die ausgelieferte Seite.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// SearchResult enthält die kanonisierten Karten einer Seite.
type SearchResult struct {
	Cards      []normalize.CardView
	Pagination Pagination
}

// CardService liefert Karten ausschließlich in kanonischer Form aus.
type CardService struct {
	Cards  *storage.CardStore
	Logger *zap.Logger
}

func NewCardService(cards *storage.CardStore, logger *zap.Logger) *CardService {
	return &CardService{Cards: cards, Logger: logger}
}

// Search sucht in den Karten des Besitzers.
func (s *CardService) Search(ctx context.Context, ownerID string, p SearchParams) (SearchResult, error) {
	page, limit := p.Page, p.Limit
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	cards, total, err := s.Cards.Find(ctx, storage.CardQuery{
		OwnerID: ownerID,
		Keyword: p.Keyword,
		Offset:  (page - 1) * limit,
		Limit:   limit,
	})
	if err != nil {
		s.Logger.Error("Kartensuche fehlgeschlagen", zap.String("owner_id", ownerID), zap.Error(err))
		return SearchResult{}, storageErr("search cards", err)
	}

	opts := normalize.ViewOptions{ShowDetails: p.ShowDetails}
	views := make([]normalize.CardView, len(cards))
	for i, c := range cards {
		views[i] = normalize.Canonicalize(c, opts)
	}
	cardsReadCounter.Add(float64(len(views)))

	return SearchResult{
		Cards: views,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}, nil
}

// Get lädt eine Karte des Besitzers mit Detailseite.
func (s *CardService) Get(ctx context.Context, ownerID, id string) (normalize.CardView, error) {
	card, err := s.Cards.FindOne(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return normalize.CardView{}, ErrNotFound
		}
		s.Logger.Error("Karte konnte nicht geladen werden", zap.String("card_id", id), zap.Error(err))
		return normalize.CardView{}, storageErr("load card", err)
	}
	cardsReadCounter.Inc()
	return normalize.Canonicalize(card, normalize.ViewOptions{ShowDetails: true}), nil
}

// Delete entfernt eine Karte des Besitzers.
func (s *CardService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.Cards.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		s.Logger.Error("Karte konnte nicht gelöscht werden", zap.String("card_id", id), zap.Error(err))
		return storageErr("delete card", err)
	}
	s.Logger.Info("Karte gelöscht", zap.String("card_id", id), zap.String("owner_id", ownerID))
	return nil
}
