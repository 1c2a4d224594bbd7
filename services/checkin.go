package services

import (
	"os"
	"strconv"

	"github.com/roamline/live_api/shared"
)

const defaultCheckInRadiusMeters = 10.0

// CheckInResult is the outcome of a geofence validation. DistanceMeters is
// always the exact computed distance so callers can tell the user how far off
// they are.
type CheckInResult struct {
	Allowed        bool
	DistanceMeters float64
}

// CheckInValidator decides whether a reported position is close enough to an
// activity's location to permit starting it.
type CheckInValidator struct {
	ThresholdMeters float64
}

func NewCheckInValidator(thresholdMeters float64) *CheckInValidator {
	if thresholdMeters <= 0 {
		thresholdMeters = defaultCheckInRadiusMeters
	}
	return &CheckInValidator{ThresholdMeters: thresholdMeters}
}

func (v *CheckInValidator) Validate(reportedLat, reportedLon, activityLat, activityLon float64) CheckInResult {
	dist := shared.HaversineMeters(reportedLat, reportedLon, activityLat, activityLon)
	return CheckInResult{
		Allowed:        dist <= v.ThresholdMeters,
		DistanceMeters: dist,
	}
}

// checkInRadiusFromEnv reads CHECKIN_RADIUS_METERS for per-deployment tuning.
func checkInRadiusFromEnv() float64 {
	if v := os.Getenv("CHECKIN_RADIUS_METERS"); v != "" {
		if radius, err := strconv.ParseFloat(v, 64); err == nil && radius > 0 {
			return radius
		}
	}
	return defaultCheckInRadiusMeters
}
