package model

import "time"

// User roles. Managers receive approval pushes; directors answer the
// approval webhook.
const (
	RoleDriver   = "driver"
	RoleManager  = "manager"
	RoleDirector = "director"
)

// User represents a driver, manager or director profile.
type User struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"size:128;not null"`
	Email     string    `gorm:"uniqueIndex;size:256"`
	Phone     string    `gorm:"size:32"`
	Role      string    `gorm:"size:16;not null;default:driver"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
