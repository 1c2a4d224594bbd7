package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamline/live_api/dto"
	"github.com/roamline/live_api/model"
	"github.com/roamline/live_api/shared"
)

type spyBroadcaster struct {
	published []dto.LocationEvent
	channels  []string
	fail      error
}

func (s *spyBroadcaster) Publish(ctx context.Context, channel string, payload interface{}) error {
	if s.fail != nil {
		return s.fail
	}
	s.channels = append(s.channels, channel)
	s.published = append(s.published, payload.(dto.LocationEvent))
	return nil
}

func newTestLocationService(t *testing.T) (*LocationService, *sessionStore, *spyBroadcaster) {
	t.Helper()

	store := newTestStore(t)
	spy := &spyBroadcaster{}
	svc := &LocationService{store: store, broadcaster: spy}
	return svc, store, spy
}

func seedParticipant(t *testing.T, store *sessionStore, sessionID, userID string) *model.Participant {
	t.Helper()

	p := &model.Participant{
		ID:                 sessionID + "_" + userID,
		ActiveExperienceID: sessionID,
		UserID:             userID,
	}
	require.NoError(t, store.CreateParticipant(p))
	return p
}

func TestReportLocationPublishes(t *testing.T) {
	svc, store, spy := newTestLocationService(t)
	seedUser(t, store, "alice", true)
	seedParticipant(t, store, "sess1", "alice")

	err := svc.ReportLocation(context.Background(), "sess1", "alice", 38.71, -9.13, nil)
	require.NoError(t, err)

	require.Len(t, spy.published, 1)
	event := spy.published[0]
	assert.Equal(t, "alice", event.UserID)
	assert.Equal(t, 38.71, event.Latitude)
	assert.Equal(t, -9.13, event.Longitude)
	assert.Equal(t, shared.LocationTopic("sess1"), spy.channels[0])

	p, err := store.GetParticipant("sess1", "alice")
	require.NoError(t, err)
	require.NotNil(t, p.Latitude)
	assert.Equal(t, 38.71, *p.Latitude)
	require.NotNil(t, p.LastLocationUpdate)
}

func TestReportLocationNotAParticipant(t *testing.T) {
	svc, store, spy := newTestLocationService(t)
	seedUser(t, store, "mallory", true)

	err := svc.ReportLocation(context.Background(), "sess1", "mallory", 38.71, -9.13, nil)
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.StatusCode)
	assert.Empty(t, spy.published)
}

func TestReportLocationPrivacyGate(t *testing.T) {
	svc, store, spy := newTestLocationService(t)
	seedUser(t, store, "carla", false)
	seedParticipant(t, store, "sess1", "carla")

	// Sharing is off: the report succeeds but nothing is stored or broadcast.
	err := svc.ReportLocation(context.Background(), "sess1", "carla", 38.71, -9.13, nil)
	require.NoError(t, err)
	assert.Empty(t, spy.published)

	p, err := store.GetParticipant("sess1", "carla")
	require.NoError(t, err)
	assert.Nil(t, p.Latitude)
	assert.Nil(t, p.LastLocationUpdate)
}

func TestReportLocationDropsStaleSamples(t *testing.T) {
	svc, store, spy := newTestLocationService(t)
	seedUser(t, store, "alice", true)
	seedParticipant(t, store, "sess1", "alice")

	newer := time.Now()
	older := newer.Add(-time.Minute)

	require.NoError(t, svc.ReportLocation(context.Background(), "sess1", "alice", 1, 1, &newer))
	require.NoError(t, svc.ReportLocation(context.Background(), "sess1", "alice", 2, 2, &older))

	// The late-arriving older sample was dropped.
	require.Len(t, spy.published, 1)
	p, err := store.GetParticipant("sess1", "alice")
	require.NoError(t, err)
	require.NotNil(t, p.Latitude)
	assert.Equal(t, 1.0, *p.Latitude)
}

func TestReportLocationPublishFailureIsSwallowed(t *testing.T) {
	svc, store, spy := newTestLocationService(t)
	seedUser(t, store, "alice", true)
	seedParticipant(t, store, "sess1", "alice")
	spy.fail = errors.New("broker down")

	// Broadcast is best-effort: the stored update survives a failed publish.
	err := svc.ReportLocation(context.Background(), "sess1", "alice", 38.71, -9.13, nil)
	require.NoError(t, err)

	p, err := store.GetParticipant("sess1", "alice")
	require.NoError(t, err)
	require.NotNil(t, p.Latitude)
	assert.Equal(t, 38.71, *p.Latitude)
}
