package dto

import "time"

// Session DTOs
type StartSessionResponse struct {
	SessionID            string    `json:"session_id"`
	ExperienceID         string    `json:"experience_id"`
	CurrentActivityIndex int       `json:"current_activity_index"`
	StartTime            time.Time `json:"start_time"`
}

type ActiveExperienceResponse struct {
	ID                   string     `json:"id"`
	ExperienceID         string     `json:"experience_id"`
	UserID               string     `json:"user_id"`
	CurrentActivityIndex int        `json:"current_activity_index"`
	Active               bool       `json:"active"`
	Completed            bool       `json:"completed"`
	StartTime            time.Time  `json:"start_time"`
	EndTime              *time.Time `json:"end_time,omitempty"`
}

type SessionDetailResponse struct {
	Session      ActiveExperienceResponse `json:"session"`
	Participants []ParticipantResponse    `json:"participants"`
}

type ParticipantResponse struct {
	UserID             string     `json:"user_id"`
	Latitude           *float64   `json:"latitude,omitempty"`
	Longitude          *float64   `json:"longitude,omitempty"`
	LastLocationUpdate *time.Time `json:"last_location_update,omitempty"`
}

// Activity DTOs
type ActivityResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Position    int        `json:"position"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

type ActiveActivityResponse struct {
	ID                 string    `json:"id"`
	ActiveExperienceID string    `json:"active_experience_id"`
	ActivityID         string    `json:"activity_id"`
	ActivityIndex      int       `json:"activity_index"`
	StartTime          time.Time `json:"start_time"`
	PhotoPromptTime    time.Time `json:"photo_prompt_time"`
	PhotoURL           string    `json:"photo_url,omitempty"`
	PhotoSubmitted     bool      `json:"photo_submitted"`
}

type CheckInRequest struct {
	// No required tag: 0 is a legal coordinate (equator, prime meridian).
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

type PhotoUploadResponse struct {
	ActiveActivityID string `json:"active_activity_id"`
	PhotoURL         string `json:"photo_url"`
}
