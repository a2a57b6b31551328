package storage

import (
	"gorm.io/gorm"

	"therapy-cards/models"
)

// Migrate legt die Tabellen für Karten und Uploads an.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Card{}, &models.UploadedFile{})
}
