package model

import "time"

type User struct {
	ID            string `gorm:"primaryKey"`
	Email         string `gorm:"unique"`
	Username      string `gorm:"unique;not null"`
	ShareLocation bool   `gorm:"default:false"` // opt-in, owned by the profile subsystem
	LastLogin     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
