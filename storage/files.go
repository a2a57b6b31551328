package storage

import (
	"context"

	"gorm.io/gorm"

	"therapy-cards/models"
)

// FileStore verwaltet die Metadaten hochgeladener Tabellen.
type FileStore struct {
	db *gorm.DB
}

func NewFileStore(db *gorm.DB) *FileStore {
	return &FileStore{db: db}
}

// Insert speichert die Metadaten einer Datei.
func (s *FileStore) Insert(ctx context.Context, f *models.UploadedFile) error {
	return s.db.WithContext(ctx).Create(f).Error
}

// FindOne lädt eine Datei des Besitzers oder liefert gorm.ErrRecordNotFound.
func (s *FileStore) FindOne(ctx context.Context, id, ownerID string) (models.UploadedFile, error) {
	var f models.UploadedFile
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&f).Error
	return f, err
}
