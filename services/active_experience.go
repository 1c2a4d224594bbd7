package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/roamline/live_api/dto"
	"github.com/roamline/live_api/model"
	"github.com/roamline/live_api/shared"
)

// ActiveExperienceService drives the session state machine: it instantiates
// live sessions from experiences and owns every pointer transition
// (start/complete/skip/check-in). All transitions for one session serialize
// through a keyed mutex, and the underlying UPDATE is guarded so a lost race
// surfaces as a conflict instead of a double advance.
type ActiveExperienceService struct {
	context.DefaultService

	store         SqlStore
	experienceSvc *ExperienceService
	activitySvc   *ActiveActivityService
	checkin       *CheckInValidator
	sessions      *shared.KeyedMutex
}

const ACTIVE_EXPERIENCE_SVC = "active_experience_svc"

func (svc ActiveExperienceService) Id() string {
	return ACTIVE_EXPERIENCE_SVC
}

func (svc *ActiveExperienceService) Configure(ctx *context.Context) error {
	svc.checkin = NewCheckInValidator(checkInRadiusFromEnv())
	svc.sessions = shared.NewKeyedMutex()
	return svc.DefaultService.Configure(ctx)
}

func (svc *ActiveExperienceService) Start() error {
	svc.store = svc.Service(SqlStoreID()).(SqlStore)
	svc.experienceSvc = svc.Service(EXPERIENCE_SVC).(*ExperienceService)
	svc.activitySvc = svc.Service(ACTIVE_ACTIVITY_SVC).(*ActiveActivityService)
	return nil
}

// StartSession instantiates a live session from an experience and enrolls the
// starting user as its first participant.
func (svc *ActiveExperienceService) StartSession(experienceID, userID string) (*dto.StartSessionResponse, error) {
	experience, err := svc.experienceSvc.GetExperience(experienceID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	sessionID, err := uuid.NewV7()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to generate session id")
	}

	session := &model.ActiveExperience{
		ID:           sessionID.String(),
		ExperienceID: experience.ID,
		UserID:       userID,
		Active:       true,
		StartTime:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := svc.store.CreateActiveExperience(session); err != nil {
		return nil, shared.NewInternalError(err, "Failed to create session")
	}

	if _, err := svc.addParticipant(session.ID, userID); err != nil {
		return nil, err
	}

	sessionsStartedTotal.Inc()

	log.WithFields(log.Fields{
		"session_id":    session.ID,
		"experience_id": experience.ID,
		"user_id":       userID,
	}).Info("Session started")

	return &dto.StartSessionResponse{
		SessionID:            session.ID,
		ExperienceID:         session.ExperienceID,
		CurrentActivityIndex: session.CurrentActivityIndex,
		StartTime:            session.StartTime,
	}, nil
}

// GetSession returns the session and its participant roster.
func (svc *ActiveExperienceService) GetSession(sessionID string) (*dto.SessionDetailResponse, error) {
	session, err := svc.loadSession(sessionID)
	if err != nil {
		return nil, err
	}

	participants, err := svc.store.ListParticipants(session.ID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load participants")
	}

	resp := &dto.SessionDetailResponse{
		Session:      *toActiveExperienceResponse(session),
		Participants: make([]dto.ParticipantResponse, 0, len(participants)),
	}
	for i := range participants {
		resp.Participants = append(resp.Participants, *toParticipantResponse(&participants[i]))
	}
	return resp, nil
}

// JoinSession enrolls a user as a participant. Joining twice is a no-op that
// returns the existing membership.
func (svc *ActiveExperienceService) JoinSession(sessionID, userID string) (*dto.ParticipantResponse, error) {
	session, err := svc.loadSession(sessionID)
	if err != nil {
		return nil, err
	}

	if existing, err := svc.store.GetParticipant(session.ID, userID); err == nil {
		return toParticipantResponse(existing), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewInternalError(err, "Failed to look up participant")
	}

	return svc.addParticipant(session.ID, userID)
}

// GetCurrentActivity returns the activity the pointer currently rests on, or
// nil when the itinerary is empty or exhausted.
func (svc *ActiveExperienceService) GetCurrentActivity(sessionID string) (*dto.ActivityResponse, error) {
	session, err := svc.loadSession(sessionID)
	if err != nil {
		return nil, err
	}

	experience, err := svc.experienceSvc.GetExperience(session.ExperienceID)
	if err != nil {
		return nil, err
	}

	activity, ok := svc.experienceSvc.ActivityAt(experience, session.CurrentActivityIndex)
	if !ok || session.Completed {
		return nil, nil
	}
	return toActivityResponse(activity), nil
}

// StartCurrentActivity opens an ActiveActivity for the activity under the
// pointer. Starting an index that is already open is rejected rather than
// silently duplicated.
func (svc *ActiveExperienceService) StartCurrentActivity(sessionID string) (*dto.ActiveActivityResponse, error) {
	svc.sessions.Lock(sessionID)
	defer svc.sessions.Unlock(sessionID)

	session, err := svc.loadSession(sessionID)
	if err != nil {
		return nil, err
	}

	return svc.startCurrentLocked(session)
}

// CheckInAndStart is the geofenced start path: the participant's reported
// position must be within the configured radius of the referenced activity's
// location. On success, if that activity is the one already open under the
// pointer the check-in simply confirms arrival; otherwise the current activity
// is started. A rejected check-in mutates nothing.
func (svc *ActiveExperienceService) CheckInAndStart(sessionID, activeActivityID string, lat, lon float64) (*dto.ActiveActivityResponse, error) {
	svc.sessions.Lock(sessionID)
	defer svc.sessions.Unlock(sessionID)

	session, err := svc.loadSession(sessionID)
	if err != nil {
		return nil, err
	}

	aa, err := svc.activitySvc.GetActiveActivity(activeActivityID)
	if err != nil {
		return nil, err
	}
	if aa.ActiveExperienceID != session.ID {
		return nil, shared.NewNotFoundError(nil, "Active activity not found in session")
	}

	if session.Completed {
		return nil, shared.NewConflictError(nil, "No more activities to start")
	}

	experience, err := svc.experienceSvc.GetExperience(session.ExperienceID)
	if err != nil {
		return nil, err
	}

	activity := findActivity(experience, aa.ActivityID)
	if activity == nil {
		return nil, shared.NewNotFoundError(nil, "Activity definition not found")
	}

	result := svc.checkin.Validate(lat, lon, activity.Latitude, activity.Longitude)
	if !result.Allowed {
		checkinsRejectedTotal.Inc()
		return nil, shared.NewForbiddenError(nil,
			fmt.Sprintf("You are %.0fm away from the activity location", result.DistanceMeters)).
			WithData(map[string]interface{}{"distance_meters": result.DistanceMeters})
	}
	checkinsAllowedTotal.Inc()

	// Arrival at the already-open activity: confirm without duplicating rows.
	if aa.CompletedAt == nil && aa.ActivityIndex == session.CurrentActivityIndex {
		return toActiveActivityResponse(aa), nil
	}

	return svc.startCurrentLocked(session)
}

// CompleteCurrentActivity closes the open activity (if any) and advances the
// pointer. Advancing past the last activity completes the session.
func (svc *ActiveExperienceService) CompleteCurrentActivity(sessionID string) (*dto.ActiveExperienceResponse, error) {
	return svc.advanceCurrent(sessionID, "completed")
}

// SkipCurrentActivity advances the pointer without requiring an open activity.
func (svc *ActiveExperienceService) SkipCurrentActivity(sessionID string) (*dto.ActiveExperienceResponse, error) {
	return svc.advanceCurrent(sessionID, "skipped")
}

// EndSession terminates a session explicitly, regardless of pointer position.
func (svc *ActiveExperienceService) EndSession(sessionID string) (*dto.ActiveExperienceResponse, error) {
	svc.sessions.Lock(sessionID)
	defer svc.sessions.Unlock(sessionID)

	session, err := svc.loadSession(sessionID)
	if err != nil {
		return nil, err
	}

	ok, err := svc.store.EndActiveExperience(session.ID, time.Now())
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to end session")
	}
	if !ok {
		return nil, shared.NewConflictError(nil, "Session already completed")
	}

	sessionsCompletedTotal.Inc()

	return svc.reloadResponse(session.ID)
}

func (svc *ActiveExperienceService) startCurrentLocked(session *model.ActiveExperience) (*dto.ActiveActivityResponse, error) {
	if session.Completed {
		return nil, shared.NewConflictError(nil, "No more activities to start")
	}

	experience, err := svc.experienceSvc.GetExperience(session.ExperienceID)
	if err != nil {
		return nil, err
	}

	index := session.CurrentActivityIndex
	activity, ok := svc.experienceSvc.ActivityAt(experience, index)
	if !ok {
		return nil, shared.NewConflictError(nil, "No more activities to start")
	}

	if _, err := svc.store.GetOpenActiveActivity(session.ID); err == nil {
		return nil, shared.NewConflictError(nil, "Activity already open")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewInternalError(err, "Failed to check open activities")
	}

	return svc.activitySvc.StartActivity(session, activity, index)
}

func (svc *ActiveExperienceService) advanceCurrent(sessionID, reason string) (*dto.ActiveExperienceResponse, error) {
	svc.sessions.Lock(sessionID)
	defer svc.sessions.Unlock(sessionID)

	session, err := svc.loadSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, shared.NewConflictError(nil, "Session already completed")
	}

	experience, err := svc.experienceSvc.GetExperience(session.ExperienceID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	total := len(experience.Activities)

	// An empty itinerary has nothing to advance through: completing it just
	// ends the session.
	if total == 0 {
		ok, err := svc.store.EndActiveExperience(session.ID, now)
		if err != nil {
			return nil, shared.NewInternalError(err, "Failed to complete session")
		}
		if !ok {
			return nil, shared.NewConflictError(nil, "Session already completed")
		}
		sessionsCompletedTotal.Inc()
		return svc.reloadResponse(session.ID)
	}

	fromIndex := session.CurrentActivityIndex
	toIndex := fromIndex + 1
	complete := toIndex >= total

	var endTime *time.Time
	if complete {
		endTime = &now
	}

	// Closing the open activity and moving the pointer commit together or not
	// at all.
	ok, err := svc.store.CloseAndAdvance(session.ID, fromIndex, toIndex, complete, endTime, now)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to advance session")
	}
	if !ok {
		return nil, shared.NewConflictError(nil, "Session state changed, re-read and retry")
	}

	if complete {
		sessionsCompletedTotal.Inc()
	}

	log.WithFields(log.Fields{
		"session_id": session.ID,
		"from_index": fromIndex,
		"to_index":   toIndex,
		"reason":     reason,
		"completed":  complete,
	}).Info("Session pointer advanced")

	return svc.reloadResponse(session.ID)
}

func (svc *ActiveExperienceService) addParticipant(sessionID, userID string) (*dto.ParticipantResponse, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to generate participant id")
	}

	now := time.Now()
	participant := &model.Participant{
		ID:                 id.String(),
		ActiveExperienceID: sessionID,
		UserID:             userID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := svc.store.CreateParticipant(participant); err != nil {
		return nil, shared.NewInternalError(err, "Failed to add participant")
	}
	return toParticipantResponse(participant), nil
}

func (svc *ActiveExperienceService) loadSession(sessionID string) (*model.ActiveExperience, error) {
	session, err := svc.store.GetActiveExperience(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Session not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load session")
	}
	return session, nil
}

func (svc *ActiveExperienceService) reloadResponse(sessionID string) (*dto.ActiveExperienceResponse, error) {
	session, err := svc.loadSession(sessionID)
	if err != nil {
		return nil, err
	}
	return toActiveExperienceResponse(session), nil
}

func findActivity(experience *model.Experience, activityID string) *model.Activity {
	for i := range experience.Activities {
		if experience.Activities[i].ID == activityID {
			return &experience.Activities[i]
		}
	}
	return nil
}

func toActiveExperienceResponse(session *model.ActiveExperience) *dto.ActiveExperienceResponse {
	return &dto.ActiveExperienceResponse{
		ID:                   session.ID,
		ExperienceID:         session.ExperienceID,
		UserID:               session.UserID,
		CurrentActivityIndex: session.CurrentActivityIndex,
		Active:               session.Active,
		Completed:            session.Completed,
		StartTime:            session.StartTime,
		EndTime:              session.EndTime,
	}
}

func toParticipantResponse(p *model.Participant) *dto.ParticipantResponse {
	return &dto.ParticipantResponse{
		UserID:             p.UserID,
		Latitude:           p.Latitude,
		Longitude:          p.Longitude,
		LastLocationUpdate: p.LastLocationUpdate,
	}
}
