package services

import (
	"context"
	"errors"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/roamline/live_api/dto"
	"github.com/roamline/live_api/shared"
)

// Broadcaster is the publish side of the per-session location topic. Redis
// pub/sub in production, a spy in tests.
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

// LocationService applies participant position updates and fans them out to
// everyone subscribed to the session's location topic. Delivery is
// best-effort: a failed publish is logged and swallowed, never rolling back
// the stored update. The next periodic report converges any missed state.
type LocationService struct {
	appContext.DefaultService

	store       SqlStore
	broadcaster Broadcaster
	redisSvc    *RedisService
}

const LOCATION_SVC = "location_svc"

func (svc LocationService) Id() string {
	return LOCATION_SVC
}

func (svc *LocationService) Start() error {
	svc.store = svc.Service(SqlStoreID()).(SqlStore)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.broadcaster = svc.redisSvc
	return nil
}

// ReportLocation stores a participant's position and broadcasts it.
//
// Privacy gate: when the user has not opted into location sharing the update
// is silently dropped — nothing stored, nothing broadcast, success returned.
// Stale samples (older than the stored timestamp) are likewise dropped.
func (svc *LocationService) ReportLocation(ctx context.Context, sessionID, userID string, lat, lon float64, at *time.Time) error {
	participant, err := svc.store.GetParticipant(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewForbiddenError(err, "Not a participant of this session")
		}
		return shared.NewInternalError(err, "Failed to look up participant")
	}

	user, err := svc.store.GetUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewForbiddenError(err, "Not a participant of this session")
		}
		return shared.NewInternalError(err, "Failed to look up user")
	}

	if !user.ShareLocation {
		return nil
	}

	timestamp := time.Now()
	if at != nil {
		timestamp = *at
	}

	applied, err := svc.store.UpdateParticipantLocation(participant.ID, lat, lon, timestamp)
	if err != nil {
		return shared.NewInternalError(err, "Failed to store location")
	}
	if !applied {
		locationEventsDroppedTotal.Inc()
		log.WithFields(log.Fields{
			"session_id": sessionID,
			"user_id":    userID,
		}).Debug("Stale location update dropped")
		return nil
	}

	event := dto.LocationEvent{
		UserID:    userID,
		Latitude:  lat,
		Longitude: lon,
		Timestamp: timestamp,
	}

	if err := svc.broadcaster.Publish(ctx, shared.LocationTopic(sessionID), event); err != nil {
		// Best-effort: the update is committed, subscribers catch up on the
		// next report.
		locationPublishFailuresTotal.Inc()
		log.WithError(err).WithFields(log.Fields{
			"session_id": sessionID,
			"user_id":    userID,
		}).Warn("Location broadcast failed")
		return nil
	}

	locationEventsPublishedTotal.Inc()
	return nil
}

// Subscribe opens the location event stream for one session. The caller owns
// the subscription and must Close it.
func (svc *LocationService) Subscribe(ctx context.Context, sessionID string) (*redis.PubSub, error) {
	return svc.redisSvc.Subscribe(ctx, shared.LocationTopic(sessionID))
}
