package services

import (
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/roamline/live_api/model"
)

// SqlStore is the canonical state of live sessions. Every mutation of
// ActiveExperience / ActiveActivity / Participant rows goes through these
// accessors so the progression and broadcast services stay the only writers.
type SqlStore interface {
	Db() *gorm.DB

	GetUser(id string) (*model.User, error)
	GetExperience(id string) (*model.Experience, error)

	CreateActiveExperience(ae *model.ActiveExperience) error
	GetActiveExperience(id string) (*model.ActiveExperience, error)
	CloseAndAdvance(sessionID string, fromIndex, toIndex int, complete bool, endTime *time.Time, at time.Time) (bool, error)
	EndActiveExperience(sessionID string, endTime time.Time) (bool, error)

	CreateActiveActivity(aa *model.ActiveActivity) error
	GetActiveActivity(id string) (*model.ActiveActivity, error)
	GetOpenActiveActivity(sessionID string) (*model.ActiveActivity, error)
	SaveActivityPhoto(activeActivityID, photoURL string) error

	CreateParticipant(p *model.Participant) error
	GetParticipant(sessionID, userID string) (*model.Participant, error)
	ListParticipants(sessionID string) ([]model.Participant, error)
	UpdateParticipantLocation(participantID string, lat, lon float64, at time.Time) (bool, error)
}

// SqlStoreID resolves which database service backs the store for this
// deployment. Sqlite is the default, postgres opts in via DB_DRIVER.
func SqlStoreID() string {
	if os.Getenv("DB_DRIVER") == "postgres" {
		return POSTGRES_SVC
	}
	return SQLITE_SVC
}

// sessionStore carries the accessor methods shared by the sqlite and postgres
// services, both of which embed it after opening their gorm handle.
type sessionStore struct {
	db *gorm.DB
}

func (s *sessionStore) GetUser(id string) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *sessionStore) GetExperience(id string) (*model.Experience, error) {
	var experience model.Experience
	err := s.db.
		Preload("Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&experience, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &experience, nil
}

func (s *sessionStore) CreateActiveExperience(ae *model.ActiveExperience) error {
	return s.db.Create(ae).Error
}

func (s *sessionStore) GetActiveExperience(id string) (*model.ActiveExperience, error) {
	var session model.ActiveExperience
	if err := s.db.First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// CloseAndAdvance closes the session's open activity (if any) and moves the
// pointer from fromIndex to toIndex in one transaction. The pointer UPDATE is
// guarded; when the row no longer matches (someone else advanced first, or the
// session completed) the transaction rolls back, nothing is written, and the
// return is false.
func (s *sessionStore) CloseAndAdvance(sessionID string, fromIndex, toIndex int, complete bool, endTime *time.Time, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"current_activity_index": toIndex,
		"updated_at":             time.Now(),
	}
	if complete {
		updates["completed"] = true
		updates["active"] = false
		updates["end_time"] = endTime
	}

	applied := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ActiveExperience{}).
			Where("id = ? AND current_activity_index = ? AND completed = ?", sessionID, fromIndex, false).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		return closeOpenActivities(tx, sessionID, at)
	})
	return applied, err
}

// EndActiveExperience terminates the session and closes any open activity in
// one transaction. A false return means the session was already completed.
func (s *sessionStore) EndActiveExperience(sessionID string, endTime time.Time) (bool, error) {
	applied := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ActiveExperience{}).
			Where("id = ? AND completed = ?", sessionID, false).
			Updates(map[string]interface{}{
				"completed":  true,
				"active":     false,
				"end_time":   endTime,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		return closeOpenActivities(tx, sessionID, endTime)
	})
	return applied, err
}

func (s *sessionStore) CreateActiveActivity(aa *model.ActiveActivity) error {
	return s.db.Create(aa).Error
}

func (s *sessionStore) GetActiveActivity(id string) (*model.ActiveActivity, error) {
	var aa model.ActiveActivity
	if err := s.db.First(&aa, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &aa, nil
}

func (s *sessionStore) GetOpenActiveActivity(sessionID string) (*model.ActiveActivity, error) {
	var aa model.ActiveActivity
	err := s.db.
		First(&aa, "active_experience_id = ? AND completed_at IS NULL", sessionID).Error
	if err != nil {
		return nil, err
	}
	return &aa, nil
}

func closeOpenActivities(tx *gorm.DB, sessionID string, at time.Time) error {
	return tx.Model(&model.ActiveActivity{}).
		Where("active_experience_id = ? AND completed_at IS NULL", sessionID).
		Updates(map[string]interface{}{
			"completed_at": at,
			"updated_at":   time.Now(),
		}).Error
}

func (s *sessionStore) SaveActivityPhoto(activeActivityID, photoURL string) error {
	return s.db.Model(&model.ActiveActivity{}).
		Where("id = ?", activeActivityID).
		Updates(map[string]interface{}{
			"photo_url":       photoURL,
			"photo_submitted": true,
			"updated_at":      time.Now(),
		}).Error
}

func (s *sessionStore) CreateParticipant(p *model.Participant) error {
	return s.db.Create(p).Error
}

func (s *sessionStore) GetParticipant(sessionID, userID string) (*model.Participant, error) {
	var p model.Participant
	err := s.db.First(&p, "active_experience_id = ? AND user_id = ?", sessionID, userID).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *sessionStore) ListParticipants(sessionID string) ([]model.Participant, error) {
	var participants []model.Participant
	err := s.db.
		Where("active_experience_id = ?", sessionID).
		Order("created_at ASC").
		Find(&participants).Error
	return participants, err
}

// UpdateParticipantLocation applies a location sample last-write-wins. Samples
// older than the stored timestamp are dropped (stale retries), reported by the
// false return.
func (s *sessionStore) UpdateParticipantLocation(participantID string, lat, lon float64, at time.Time) (bool, error) {
	tx := s.db.Model(&model.Participant{}).
		Where("id = ? AND (last_location_update IS NULL OR last_location_update <= ?)", participantID, at).
		Updates(map[string]interface{}{
			"latitude":             lat,
			"longitude":            lon,
			"last_location_update": at,
			"updated_at":           time.Now(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
