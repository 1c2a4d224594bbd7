package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckInRequestAcceptsZeroCoordinates(t *testing.T) {
	// Greenwich sits on the prime meridian; longitude 0 must validate.
	assert.NoError(t, GetValidator().Struct(CheckInRequest{Latitude: 51.4779, Longitude: 0}))

	// Equator crossing the prime meridian.
	assert.NoError(t, GetValidator().Struct(CheckInRequest{Latitude: 0, Longitude: 0}))
}

func TestCheckInRequestRejectsOutOfRange(t *testing.T) {
	assert.Error(t, GetValidator().Struct(CheckInRequest{Latitude: 90.1, Longitude: 0}))
	assert.Error(t, GetValidator().Struct(CheckInRequest{Latitude: -90.1, Longitude: 0}))
	assert.Error(t, GetValidator().Struct(CheckInRequest{Latitude: 0, Longitude: 180.1}))
	assert.Error(t, GetValidator().Struct(CheckInRequest{Latitude: 0, Longitude: -180.1}))
}

func TestReportLocationRequestAcceptsZeroCoordinates(t *testing.T) {
	assert.NoError(t, GetValidator().Struct(ReportLocationRequest{Latitude: 0, Longitude: -78.5}))
	assert.NoError(t, GetValidator().Struct(ReportLocationRequest{Latitude: 0, Longitude: 0}))
}

func TestReportLocationRequestRejectsOutOfRange(t *testing.T) {
	assert.Error(t, GetValidator().Struct(ReportLocationRequest{Latitude: 91, Longitude: 0}))
	assert.Error(t, GetValidator().Struct(ReportLocationRequest{Latitude: 0, Longitude: -181}))
}
