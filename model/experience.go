package model

import "time"

// Experience is an itinerary template: an ordered list of planned activities.
// The engine treats it as read-only input; authoring lives in the planning subsystem.
type Experience struct {
	ID          string `json:"id" gorm:"primaryKey"`
	UserID      string `json:"user_id" gorm:"not null;index"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relationship
	Activities []Activity `json:"activities" gorm:"foreignKey:ExperienceID"`
}

// Activity is one planned stop within an Experience. Position gives the order
// the session pointer walks through.
type Activity struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	ExperienceID string     `json:"experience_id" gorm:"not null;index"`
	Title        string     `json:"title" gorm:"not null"`
	Description  string     `json:"description" gorm:"type:text"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	Position     int        `json:"position" gorm:"not null"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
