package handlers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roamline/live_api/dto"
)

type SessionServiceInterface interface {
	StartSession(experienceID, userID string) (*dto.StartSessionResponse, error)
	GetSession(sessionID string) (*dto.SessionDetailResponse, error)
	JoinSession(sessionID, userID string) (*dto.ParticipantResponse, error)
	GetCurrentActivity(sessionID string) (*dto.ActivityResponse, error)
	StartCurrentActivity(sessionID string) (*dto.ActiveActivityResponse, error)
	CheckInAndStart(sessionID, activeActivityID string, lat, lon float64) (*dto.ActiveActivityResponse, error)
	CompleteCurrentActivity(sessionID string) (*dto.ActiveExperienceResponse, error)
	SkipCurrentActivity(sessionID string) (*dto.ActiveExperienceResponse, error)
	EndSession(sessionID string) (*dto.ActiveExperienceResponse, error)
}

type ActivityServiceInterface interface {
	SubmitPhoto(activeActivityID string, data []byte, filename, contentType string) (*dto.PhotoUploadResponse, error)
}

type LocationServiceInterface interface {
	ReportLocation(ctx context.Context, sessionID, userID string, lat, lon float64, at *time.Time) error
	Subscribe(ctx context.Context, sessionID string) (*redis.PubSub, error)
}
