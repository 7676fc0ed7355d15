package models

import "time"

// OrphanObject records an object whose metadata row could not be written
// and whose immediate removal failed as well.
type OrphanObject struct {
	ID       uint   `gorm:"primaryKey"`
	Bucket   string `gorm:"type:text;not null"`
	Path     string `gorm:"type:text;not null;index"`
	Reason   string `gorm:"type:text"`
	Attempts int    `gorm:"default:0"`

	LastError string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
