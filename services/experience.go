package services

import (
	"errors"

	"github.com/alphabatem/common/context"
	"gorm.io/gorm"

	"github.com/roamline/live_api/dto"
	"github.com/roamline/live_api/model"
	"github.com/roamline/live_api/shared"
)

// ExperienceService is the read-only itinerary lookup used by the live engine.
// Authoring and editing of experiences live in the planning subsystem.
type ExperienceService struct {
	context.DefaultService

	store SqlStore
}

const EXPERIENCE_SVC = "experience_svc"

func (svc ExperienceService) Id() string {
	return EXPERIENCE_SVC
}

func (svc *ExperienceService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *ExperienceService) Start() error {
	svc.store = svc.Service(SqlStoreID()).(SqlStore)
	return nil
}

// GetExperience returns the experience with its activities ordered by position.
func (svc *ExperienceService) GetExperience(id string) (*model.Experience, error) {
	experience, err := svc.store.GetExperience(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Experience not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load experience")
	}
	return experience, nil
}

// ActivityAt returns the activity at the given pointer index, or false when
// the pointer sits past the end of the itinerary.
func (svc *ExperienceService) ActivityAt(experience *model.Experience, index int) (*model.Activity, bool) {
	if index < 0 || index >= len(experience.Activities) {
		return nil, false
	}
	return &experience.Activities[index], true
}

func toActivityResponse(a *model.Activity) *dto.ActivityResponse {
	return &dto.ActivityResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
		Position:    a.Position,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
	}
}
