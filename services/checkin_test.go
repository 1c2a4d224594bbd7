package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckInValidatorAllowsNearby(t *testing.T) {
	v := NewCheckInValidator(10)

	t.Run("same point", func(t *testing.T) {
		result := v.Validate(10, 10, 10, 10)
		assert.True(t, result.Allowed)
		assert.Zero(t, result.DistanceMeters)
	})

	t.Run("a few meters off", func(t *testing.T) {
		// Roughly 7.8m from (10,10).
		result := v.Validate(10.00005, 10.00005, 10, 10)
		assert.True(t, result.Allowed)
		assert.InDelta(t, 7.8, result.DistanceMeters, 0.2)
	})
}

func TestCheckInValidatorRejectsFar(t *testing.T) {
	v := NewCheckInValidator(10)

	// Roughly 15.6m from (10,10).
	result := v.Validate(10.0001, 10.0001, 10, 10)
	assert.False(t, result.Allowed)
	assert.InDelta(t, 15.6, result.DistanceMeters, 0.5)
}

func TestCheckInValidatorThresholdIsInclusive(t *testing.T) {
	v := NewCheckInValidator(10)

	// Pick a point and set the threshold to its exact distance: at the
	// boundary the check-in passes.
	result := v.Validate(10.00005, 10.00005, 10, 10)
	exact := NewCheckInValidator(result.DistanceMeters)
	assert.True(t, exact.Validate(10.00005, 10.00005, 10, 10).Allowed)
}

func TestCheckInValidatorCustomRadius(t *testing.T) {
	wide := NewCheckInValidator(50)
	result := wide.Validate(10.0001, 10.0001, 10, 10)
	assert.True(t, result.Allowed)
}

func TestNewCheckInValidatorDefault(t *testing.T) {
	assert.Equal(t, 10.0, NewCheckInValidator(0).ThresholdMeters)
	assert.Equal(t, 10.0, NewCheckInValidator(-5).ThresholdMeters)
	assert.Equal(t, 25.0, NewCheckInValidator(25).ThresholdMeters)
}

func TestCheckInRadiusFromEnv(t *testing.T) {
	t.Setenv("CHECKIN_RADIUS_METERS", "")
	assert.Equal(t, 10.0, checkInRadiusFromEnv())

	t.Setenv("CHECKIN_RADIUS_METERS", "25.5")
	assert.Equal(t, 25.5, checkInRadiusFromEnv())

	t.Setenv("CHECKIN_RADIUS_METERS", "bogus")
	assert.Equal(t, 10.0, checkInRadiusFromEnv())
}
