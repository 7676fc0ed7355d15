package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Folder is a node within an owner's folder forest. A nil ParentID marks a root-level folder.
type Folder struct {
	ID       string  `gorm:"primaryKey;type:text"`
	Name     string  `gorm:"type:text;not null;index:idx_folder_sibling"`
	ParentID *string `gorm:"type:text;index:idx_folder_sibling"`
	OwnerID  string  `gorm:"type:text;not null;index:idx_folder_sibling"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (f *Folder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// IsRoot reports whether the folder is placed directly below the owner's root.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
