package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Share is an external reference to a file, e.g. a public link.
// Rows are only created by the sharing feature; this module removes them with their file.
type Share struct {
	ID        string `gorm:"primaryKey;type:text"`
	FileID    string `gorm:"type:text;not null;index:idx_file_shares"`
	OwnerID   string `gorm:"type:text;not null"`
	Token     string `gorm:"type:text;not null;uniqueIndex"`
	ExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Share) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
