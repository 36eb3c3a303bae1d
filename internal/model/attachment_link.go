package model

import "time"

// AttachmentLink maps a normalized slug to a stored attachment URL,
// exposed through the short-lived redirect endpoint.
type AttachmentLink struct {
	Slug      string    `gorm:"primaryKey;size:128"`
	URL       string    `gorm:"size:2048;not null"`
	Title     string    `gorm:"size:256"`
	CreatedAt time.Time `gorm:"not null"`
}
