package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// Managers subscribe from the admin dashboard to hear about costs that
// await approval.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	UserID    string    `gorm:"index;size:64"`
	CreatedAt time.Time `gorm:"not null"`
}
