package shared_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roamline/live_api/shared"
)

func TestHaversineMeters_SamePointIsZero(t *testing.T) {
	assert.Zero(t, shared.HaversineMeters(10, 10, 10, 10))
	assert.Zero(t, shared.HaversineMeters(-33.8688, 151.2093, -33.8688, 151.2093))
}

func TestHaversineMeters_Symmetric(t *testing.T) {
	a := shared.HaversineMeters(48.8566, 2.3522, 51.5074, -0.1278)
	b := shared.HaversineMeters(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, a, b, 1e-9)
}

func TestHaversineMeters_OneDegreeAtEquator(t *testing.T) {
	// One degree of longitude on the equator is R * pi / 180.
	got := shared.HaversineMeters(0, 0, 0, 1)
	assert.InDelta(t, 111194.93, got, 0.5)
}

func TestHaversineMeters_ShortHop(t *testing.T) {
	// ~7.8 m: the short-distance regime the geofence check-in operates in.
	got := shared.HaversineMeters(10, 10, 10.00005, 10.00005)
	assert.InDelta(t, 7.8, got, 0.2)
}
