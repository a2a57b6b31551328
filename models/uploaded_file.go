package models

import "time"

// UploadedFile beschreibt eine hochgeladene Tabelle, deren Inhalt im Objektspeicher liegt.
type UploadedFile struct {
	ID        string    `json:"file_id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`

	OwnerID   string `json:"user_id" gorm:"index;not null"`
	Filename  string `json:"filename"`
	ObjectKey string `json:"object_key" gorm:"not null"`
	Size      int64  `json:"size"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (UploadedFile) TableName() string {
	return "uploaded_files"
}
