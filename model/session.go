package model

import "time"

// ActiveExperience is one live session instantiated from an Experience.
// CurrentActivityIndex is a 0-based pointer into the source itinerary's
// activity list and only ever moves forward.
type ActiveExperience struct {
	ID                   string     `json:"id" gorm:"primaryKey"`
	ExperienceID         string     `json:"experience_id" gorm:"not null;index"`
	UserID               string     `json:"user_id" gorm:"not null;index"`
	CurrentActivityIndex int        `json:"current_activity_index" gorm:"default:0"`
	Active               bool       `json:"active" gorm:"default:true"`
	Completed            bool       `json:"completed" gorm:"default:false"`
	StartTime            time.Time  `json:"start_time"`
	EndTime              *time.Time `json:"end_time"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// ActiveActivity is a concrete in-progress instance of one Activity within a
// session. Rows are retained as session history and never deleted.
type ActiveActivity struct {
	ID                 string     `json:"id" gorm:"primaryKey"`
	ActiveExperienceID string     `json:"active_experience_id" gorm:"not null;index"`
	ActivityID         string     `json:"activity_id" gorm:"not null"`
	ActivityIndex      int        `json:"activity_index" gorm:"not null"`
	StartTime          time.Time  `json:"start_time"`
	PhotoPromptTime    time.Time  `json:"photo_prompt_time"`
	PhotoURL           string     `json:"photo_url"`
	PhotoSubmitted     bool       `json:"photo_submitted" gorm:"default:false"`
	CompletedAt        *time.Time `json:"completed_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Participant is a user's membership record in a session. Location fields are
// only written when the user's ShareLocation flag is on.
type Participant struct {
	ID                 string     `json:"id" gorm:"primaryKey"`
	ActiveExperienceID string     `json:"active_experience_id" gorm:"not null;index:idx_participant_session_user,unique"`
	UserID             string     `json:"user_id" gorm:"not null;index:idx_participant_session_user,unique"`
	Latitude           *float64   `json:"latitude"`
	Longitude          *float64   `json:"longitude"`
	LastLocationUpdate *time.Time `json:"last_location_update"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
