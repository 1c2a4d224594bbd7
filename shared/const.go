package shared

const (
	UserID = "user_id"

	// EarthRadiusMeters is the mean earth radius used by the spherical
	// distance approximation.
	EarthRadiusMeters = 6371000.0

	LocationTopicPrefix = "active_experience"
)

// LocationTopic names the pub/sub topic carrying location events for one session.
func LocationTopic(sessionID string) string {
	return LocationTopicPrefix + ":" + sessionID + ":location"
}
