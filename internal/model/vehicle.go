package model

import "time"

// Vehicle represents a fleet vehicle.
type Vehicle struct {
	ID        string `gorm:"primaryKey;size:64"`
	UserID    string `gorm:"index;size:64"` // assigned driver
	Plate     string `gorm:"uniqueIndex;size:32;not null"`
	Make      string `gorm:"size:64"`
	Model     string `gorm:"size:64"`
	Year      int
	Status    string     `gorm:"size:16;default:active"` // active | inactive
	Photos    StringList `gorm:"type:text"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}
