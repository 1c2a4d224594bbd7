package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/roamline/live_api/model"
	"github.com/roamline/live_api/shared"
)

type fakePhotoStore struct {
	mu    sync.Mutex
	saved int
	fail  error
}

func (f *fakePhotoStore) SavePhoto(data []byte, filename, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return "", f.fail
	}
	f.saved++
	return "https://photos.test/" + filename, nil
}

func newTestStore(t *testing.T) *sessionStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Experience{},
		&model.Activity{},
		&model.ActiveExperience{},
		&model.ActiveActivity{},
		&model.Participant{},
	))

	return &sessionStore{db: db}
}

func newTestEngine(t *testing.T) (*ActiveExperienceService, *sessionStore) {
	t.Helper()

	store := newTestStore(t)
	experienceSvc := &ExperienceService{store: store}
	activitySvc := &ActiveActivityService{
		store:  store,
		photos: &fakePhotoStore{},
		prompt: NewPromptScheduler(20 * time.Minute),
	}
	svc := &ActiveExperienceService{
		store:         store,
		experienceSvc: experienceSvc,
		activitySvc:   activitySvc,
		checkin:       NewCheckInValidator(10),
		sessions:      shared.NewKeyedMutex(),
	}
	return svc, store
}

func seedUser(t *testing.T, store *sessionStore, id string, shareLocation bool) {
	t.Helper()
	require.NoError(t, store.db.Create(&model.User{
		ID:            id,
		Email:         id + "@example.com",
		Username:      id,
		ShareLocation: shareLocation,
	}).Error)
}

// seedExperience creates an experience with one activity per coordinate pair.
func seedExperience(t *testing.T, store *sessionStore, id string, coords ...[2]float64) {
	t.Helper()

	experience := &model.Experience{
		ID:     id,
		UserID: "owner",
		Title:  "Test itinerary",
	}
	for i, c := range coords {
		experience.Activities = append(experience.Activities, model.Activity{
			ID:           id + "_act_" + string(rune('a'+i)),
			ExperienceID: id,
			Title:        "Stop",
			Latitude:     c[0],
			Longitude:    c[1],
			Position:     i,
		})
	}
	require.NoError(t, store.db.Create(experience).Error)
}

func TestStartSession(t *testing.T) {
	svc, store := newTestEngine(t)
	seedExperience(t, store, "exp1", [2]float64{10, 10}, [2]float64{10.001, 10.001})

	resp, err := svc.StartSession("exp1", "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "exp1", resp.ExperienceID)
	assert.Equal(t, 0, resp.CurrentActivityIndex)

	// Starting user is enrolled as the first participant.
	participants, err := store.ListParticipants(resp.SessionID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, "alice", participants[0].UserID)
}

func TestStartSessionUnknownExperience(t *testing.T) {
	svc, _ := newTestEngine(t)

	_, err := svc.StartSession("missing", "alice")
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode)
}

func TestJoinSessionIdempotent(t *testing.T) {
	svc, store := newTestEngine(t)
	seedExperience(t, store, "exp1", [2]float64{10, 10})
	started, err := svc.StartSession("exp1", "alice")
	require.NoError(t, err)

	first, err := svc.JoinSession(started.SessionID, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", first.UserID)

	second, err := svc.JoinSession(started.SessionID, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", second.UserID)

	participants, err := store.ListParticipants(started.SessionID)
	require.NoError(t, err)
	assert.Len(t, participants, 2)
}

func TestGetCurrentActivityWalksPointer(t *testing.T) {
	svc, store := newTestEngine(t)
	seedExperience(t, store, "exp1", [2]float64{10, 10}, [2]float64{20, 20})
	started, err := svc.StartSession("exp1", "alice")
	require.NoError(t, err)

	current, err := svc.GetCurrentActivity(started.SessionID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "exp1_act_a", current.ID)

	_, err = svc.SkipCurrentActivity(started.SessionID)
	require.NoError(t, err)

	current, err = svc.GetCurrentActivity(started.SessionID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "exp1_act_b", current.ID)

	_, err = svc.SkipCurrentActivity(started.SessionID)
	require.NoError(t, err)

	// Pointer past the end: no current activity.
	current, err = svc.GetCurrentActivity(started.SessionID)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestStartCurrentActivity(t *testing.T) {
	svc, store := newTestEngine(t)
	seedExperience(t, store, "exp1", [2]float64{10, 10}, [2]float64{20, 20})
	started, err := svc.StartSession("exp1", "alice")
	require.NoError(t, err)

	before := time.Now()
	aa, err := svc.StartCurrentActivity(started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "exp1_act_a", aa.ActivityID)
	assert.Equal(t, 0, aa.ActivityIndex)

	// Prompt time lands inside [start, start+20min).
	assert.False(t, aa.PhotoPromptTime.Before(before))
	assert.True(t, aa.PhotoPromptTime.Before(aa.StartTime.Add(20*time.Minute)))

	// Starting again while the activity is open is a conflict.
	_, err = svc.StartCurrentActivity(started.SessionID)
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.StatusCode)

	// Only one row was created.
	var count int64
	require.NoError(t, store.db.Model(&model.ActiveActivity{}).
		Where("active_experience_id = ?", started.SessionID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCheckInTooFarMutatesNothing(t *testing.T) {
	svc, store := newTestEngine(t)
	seedExperience(t, store, "exp1", [2]float64{10, 10})
	started, err := svc.StartSession("exp1", "alice")
	require.NoError(t, err)

	aa, err := svc.StartCurrentActivity(started.SessionID)
	require.NoError(t, err)

	// Roughly 156m away from (10, 10).
	_, err = svc.CheckInAndStart(started.SessionID, aa.ID, 10.001, 10.001)
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.StatusCode)
	assert.Contains(t, appErr.Message, "away from the activity location")
	require.NotNil(t, appErr.Data)
	data, ok := appErr.Data.(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 156.0, data["distance_meters"].(float64), 5)

	// Nothing changed: the session pointer and the open activity are as before.
	session, err := store.GetActiveExperience(started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, session.CurrentActivityIndex)
	open, err := store.GetOpenActiveActivity(started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, aa.ID, open.ID)
}

func TestCheckInNearbyConfirmsOpenActivity(t *testing.T) {
	svc, store := newTestEngine(t)
	seedExperience(t, store, "exp1", [2]float64{10, 10}, [2]float64{20, 20})
	started, err := svc.StartSession("exp1", "alice")
	require.NoError(t, err)

	aa, err := svc.StartCurrentActivity(started.SessionID)
	require.NoError(t, err)

	// Roughly 7.8m away: inside the 10m radius. The open activity is
	// confirmed, not duplicated.
	confirmed, err := svc.CheckInAndStart(started.SessionID, aa.ID, 10.00005, 10.00005)
	require.NoError(t, err)
	assert.Equal(t, aa.ID, confirmed.ID)

	var count int64
	require.NoError(t, store.db.Model(&model.ActiveActivity{}).
		Where("active_experience_id = ?", started.SessionID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCheckInStartsNextActivity(t *testing.T) {
	svc, store := newTestEngine(t)
	// Two stops at the same square.
	seedExperience(t, store, "exp1", [2]float64{10, 10}, [2]float64{10, 10})
	started, err := svc.StartSession("exp1", "alice")
	require.NoError(t, err)

	first, err := svc.StartCurrentActivity(started.SessionID)
	require.NoError(t, err)

	_, err = svc.CompleteCurrentActivity(started.SessionID)
	require.NoError(t, err)

	// Checking in against the finished first instance while still in range
	// starts the activity now under the pointer.
	next, err := svc.CheckInAndStart(started.SessionID, first.ID, 10.00003, 10.00003)
	require.NoError(t, err)
	assert.Equal(t, "exp1_act_b", next.ActivityID)
	assert.Equal(t, 1, next.ActivityIndex)
}

func TestCompleteAdvancesAndClosesActivity(t *testing.T) {
	svc, store := newTestEngine(t)
	seedExperience(t, store, "exp1", [2]float64{10, 10}, [2]float64{20, 20})
	started, err := svc.StartSession("exp1", "alice")
	require.NoError(t, err)

	aa, err := svc.StartCurrentActivity(started.SessionID)
	require.NoError(t, err)

	resp, err := svc.CompleteCurrentActivity(started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.CurrentActivityIndex)
	assert.False(t, resp.Completed)
	assert.True(t, resp.Active)

	// The open instance was closed, not deleted.
	closed, err := store.GetActiveActivity(aa.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.CompletedAt)
}

func TestCompletingLastActivityEndsSession(t *testing.T) {
	svc, store := newTestEngine(t)
	seedExperience(t, store, "exp1", [2]float64{10, 10})
	started, err := svc.StartSession("exp1", "alice")
	require.NoError(t, err)

	resp, err := svc.CompleteCurrentActivity(started.SessionID)
	require.NoError(t, err)
	assert.True(t, resp.Completed)
	assert.False(t, resp.Active)
	assert.Equal(t, 1, resp.CurrentActivityIndex)
	require.NotNil(t, resp.EndTime)

	// Further progression is rejected.
	_, err = svc.CompleteCurrentActivity(started.SessionID)
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.StatusCode)

	_, err = svc.StartCurrentActivity(started.SessionID)
	require.Error(t, err)
	appErr, ok = shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.StatusCode)
}

func TestCompleteEmptyItinerary(t *testing.T) {
	svc, store := newTestEngine(t)
	seedExperience(t, store, "empty")
	started, err := svc.StartSession("empty", "alice")
	require.NoError(t, err)

	// Nothing to walk through: completing just ends the session.
	resp, err := svc.CompleteCurrentActivity(started.SessionID)
	require.NoError(t, err)
	assert.True(t, resp.Completed)
	assert.Equal(t, 0, resp.CurrentActivityIndex)
}

func TestEndSession(t *testing.T) {
	svc, store := newTestEngine(t)
	seedExperience(t, store, "exp1", [2]float64{10, 10}, [2]float64{20, 20})
	started, err := svc.StartSession("exp1", "alice")
	require.NoError(t, err)

	aa, err := svc.StartCurrentActivity(started.SessionID)
	require.NoError(t, err)

	resp, err := svc.EndSession(started.SessionID)
	require.NoError(t, err)
	assert.True(t, resp.Completed)
	assert.False(t, resp.Active)

	// The open activity is closed when the session terminates.
	closed, err := store.GetActiveActivity(aa.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.CompletedAt)

	_, err = svc.EndSession(started.SessionID)
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.StatusCode)
}

func TestConcurrentAdvanceSingleWinner(t *testing.T) {
	svc, store := newTestEngine(t)
	seedExperience(t, store, "exp1", [2]float64{10, 10})
	started, err := svc.StartSession("exp1", "alice")
	require.NoError(t, err)

	const workers = 16

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CompleteCurrentActivity(started.SessionID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		appErr, ok := shared.GetAppError(err)
		require.True(t, ok, "unexpected error type: %v", err)
		require.Equal(t, 409, appErr.StatusCode)
		conflicted++
	}

	// Exactly one goroutine completes the single-stop session.
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicted)

	session, err := store.GetActiveExperience(started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, session.CurrentActivityIndex)
	assert.True(t, session.Completed)
}

func TestSubmitPhoto(t *testing.T) {
	svc, store := newTestEngine(t)
	seedExperience(t, store, "exp1", [2]float64{10, 10})
	started, err := svc.StartSession("exp1", "alice")
	require.NoError(t, err)

	aa, err := svc.StartCurrentActivity(started.SessionID)
	require.NoError(t, err)

	resp, err := svc.activitySvc.SubmitPhoto(aa.ID, []byte("jpeg-bytes"), "sunset.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, aa.ID, resp.ActiveActivityID)
	assert.NotEmpty(t, resp.PhotoURL)

	stored, err := store.GetActiveActivity(aa.ID)
	require.NoError(t, err)
	assert.True(t, stored.PhotoSubmitted)
	assert.Equal(t, resp.PhotoURL, stored.PhotoURL)
}
