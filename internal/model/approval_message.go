package model

import "time"

// ApprovalMessage tracks one approval request sent to a director. The
// WhatsApp-button webhook answers it by id.
type ApprovalMessage struct {
	ID            string `gorm:"primaryKey;size:64"`
	MaintenanceID string `gorm:"index;not null;size:64"`
	Recipient     string `gorm:"size:64"` // director phone number
	Status        string `gorm:"size:16;default:pending"`
	RespondedBy   string `gorm:"size:64"`
	RespondedAt   *time.Time
	CreatedAt     time.Time `gorm:"not null"`
}
