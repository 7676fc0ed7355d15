package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File represents metadata for an object stored in the object store
type File struct {
	ID           string `gorm:"primaryKey;type:text"`
	Filename     string `gorm:"type:text;not null"`
	OriginalName string `gorm:"type:text;not null"`
	MimeType     string `gorm:"type:text;not null;index"`
	Size         int64  `gorm:"not null"`

	// Object store location, fixed at creation
	Path   string `gorm:"type:text;not null;uniqueIndex:idx_bucket_path"`
	Bucket string `gorm:"type:text;not null;uniqueIndex:idx_bucket_path"`

	FolderID *string `gorm:"type:text;index:idx_owner_folder"`
	OwnerID  string  `gorm:"type:text;not null;index:idx_owner_folder"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Shares []Share `gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
