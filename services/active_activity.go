package services

import (
	"errors"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/roamline/live_api/dto"
	"github.com/roamline/live_api/model"
	"github.com/roamline/live_api/shared"
)

// PhotoStore persists submitted photo bytes and hands back a URL. The engine
// never keeps the bytes, only the URL.
type PhotoStore interface {
	SavePhoto(data []byte, filename, contentType string) (string, error)
}

// ActiveActivityService owns in-progress activity instances: it creates them
// with a randomized photo-prompt time and records submitted photos.
type ActiveActivityService struct {
	context.DefaultService

	store  SqlStore
	photos PhotoStore
	prompt *PromptScheduler
}

const ACTIVE_ACTIVITY_SVC = "active_activity_svc"

func (svc ActiveActivityService) Id() string {
	return ACTIVE_ACTIVITY_SVC
}

func (svc *ActiveActivityService) Configure(ctx *context.Context) error {
	svc.prompt = NewPromptScheduler(promptWindowFromEnv())
	return svc.DefaultService.Configure(ctx)
}

func (svc *ActiveActivityService) Start() error {
	svc.store = svc.Service(SqlStoreID()).(SqlStore)
	svc.photos = svc.Service(MINIO_SVC).(*MinIOService)
	return nil
}

// StartActivity opens an ActiveActivity for the activity at index within the
// session. Callers hold the session lock and have already verified the
// pointer; this only creates the row.
func (svc *ActiveActivityService) StartActivity(session *model.ActiveExperience, activity *model.Activity, index int) (*dto.ActiveActivityResponse, error) {
	now := time.Now()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to generate activity id")
	}

	aa := &model.ActiveActivity{
		ID:                 id.String(),
		ActiveExperienceID: session.ID,
		ActivityID:         activity.ID,
		ActivityIndex:      index,
		StartTime:          now,
		PhotoPromptTime:    svc.prompt.Next(now),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := svc.store.CreateActiveActivity(aa); err != nil {
		return nil, shared.NewInternalError(err, "Failed to start activity")
	}

	activitiesStartedTotal.Inc()

	log.WithFields(log.Fields{
		"session_id":       session.ID,
		"active_activity":  aa.ID,
		"activity_index":   index,
		"photo_prompt_due": aa.PhotoPromptTime,
	}).Info("Activity started")

	return toActiveActivityResponse(aa), nil
}

// GetActiveActivity returns a single in-progress or historical activity row.
func (svc *ActiveActivityService) GetActiveActivity(id string) (*model.ActiveActivity, error) {
	aa, err := svc.store.GetActiveActivity(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Active activity not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load active activity")
	}
	return aa, nil
}

// SubmitPhoto stores the photo bytes and marks the activity's prompt as
// answered. Resubmission overwrites the previous URL; the latest photo wins.
func (svc *ActiveActivityService) SubmitPhoto(activeActivityID string, data []byte, filename, contentType string) (*dto.PhotoUploadResponse, error) {
	aa, err := svc.GetActiveActivity(activeActivityID)
	if err != nil {
		return nil, err
	}

	photoURL, err := svc.photos.SavePhoto(data, filename, contentType)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to store photo")
	}

	if err := svc.store.SaveActivityPhoto(aa.ID, photoURL); err != nil {
		return nil, shared.NewInternalError(err, "Failed to record photo")
	}

	log.WithFields(log.Fields{
		"active_activity": aa.ID,
		"session_id":      aa.ActiveExperienceID,
	}).Info("Activity photo submitted")

	return &dto.PhotoUploadResponse{
		ActiveActivityID: aa.ID,
		PhotoURL:         photoURL,
	}, nil
}

func toActiveActivityResponse(aa *model.ActiveActivity) *dto.ActiveActivityResponse {
	return &dto.ActiveActivityResponse{
		ID:                 aa.ID,
		ActiveExperienceID: aa.ActiveExperienceID,
		ActivityID:         aa.ActivityID,
		ActivityIndex:      aa.ActivityIndex,
		StartTime:          aa.StartTime,
		PhotoPromptTime:    aa.PhotoPromptTime,
		PhotoURL:           aa.PhotoURL,
		PhotoSubmitted:     aa.PhotoSubmitted,
	}
}
