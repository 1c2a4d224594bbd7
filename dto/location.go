package dto

import "time"

type ReportLocationRequest struct {
	// No required tag: 0 is a legal coordinate (equator, prime meridian).
	Latitude  float64    `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64    `json:"longitude" validate:"gte=-180,lte=180"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// LocationEvent is the transient fan-out payload published to a session's
// location topic. It is never persisted.
type LocationEvent struct {
	UserID    string    `json:"user_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}
