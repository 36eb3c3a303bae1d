package model

import "time"

// Approval states for maintenance costs.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Maintenance represents one maintenance event logged by a driver.
type Maintenance struct {
	ID           string `gorm:"primaryKey;size:64"`
	VehicleID    string `gorm:"index;not null;size:64"`
	UserID       string `gorm:"index;size:64"`
	Description  string `gorm:"size:1024"`
	Kind         string `gorm:"size:64"` // oil change, tires, ...
	Date         time.Time
	OdometerKm   *float64
	Cost         float64
	CostApproval string     `gorm:"size:16;default:pending"`
	ScheduledFor *time.Time // set by a manager when scheduling follow-up work
	Photos       StringList `gorm:"type:text"`
	AudioURL     string     `gorm:"size:1024"`
	AudioHistory StringList `gorm:"type:text"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}
