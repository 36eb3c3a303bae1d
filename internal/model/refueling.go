package model

import "time"

// Refueling represents one refueling event logged by a driver.
// OdometerKm is a pointer because drivers may skip the reading; the
// consumption report tolerates the gap instead of treating it as zero.
type Refueling struct {
	ID           string    `gorm:"primaryKey;size:64"`
	VehicleID    string    `gorm:"index;not null;size:64"`
	UserID       string    `gorm:"index;size:64"`
	Date         time.Time `gorm:"index"`
	OdometerKm   *float64
	Liters       float64
	TotalCost    float64
	FullTank     bool
	Photos       StringList `gorm:"type:text"`
	AudioURL     string     `gorm:"size:1024"`
	AudioHistory StringList `gorm:"type:text"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}
