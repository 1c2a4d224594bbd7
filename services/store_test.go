package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/roamline/live_api/model"
)

func TestCloseAndAdvanceRollsBackOnGuardMismatch(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CreateActiveExperience(&model.ActiveExperience{
		ID:           "sess1",
		ExperienceID: "exp1",
		UserID:       "alice",
		Active:       true,
		StartTime:    time.Now(),
	}))
	require.NoError(t, store.CreateActiveActivity(&model.ActiveActivity{
		ID:                 "aa1",
		ActiveExperienceID: "sess1",
		ActivityID:         "act1",
		ActivityIndex:      0,
		StartTime:          time.Now(),
	}))

	// Guard mismatch: the transaction rolls back, so the activity stays open
	// and the pointer stays put.
	ok, err := store.CloseAndAdvance("sess1", 3, 4, false, nil, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	open, err := store.GetOpenActiveActivity("sess1")
	require.NoError(t, err)
	assert.Equal(t, "aa1", open.ID)

	session, err := store.GetActiveExperience("sess1")
	require.NoError(t, err)
	assert.Equal(t, 0, session.CurrentActivityIndex)

	// Matching guard: close and advance commit together.
	ok, err = store.CloseAndAdvance("sess1", 0, 1, false, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = store.GetOpenActiveActivity("sess1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	session, err = store.GetActiveExperience("sess1")
	require.NoError(t, err)
	assert.Equal(t, 1, session.CurrentActivityIndex)

	closed, err := store.GetActiveActivity("aa1")
	require.NoError(t, err)
	require.NotNil(t, closed.CompletedAt)
}

func TestEndActiveExperienceClosesOpenActivity(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CreateActiveExperience(&model.ActiveExperience{
		ID:           "sess1",
		ExperienceID: "exp1",
		UserID:       "alice",
		Active:       true,
		StartTime:    time.Now(),
	}))
	require.NoError(t, store.CreateActiveActivity(&model.ActiveActivity{
		ID:                 "aa1",
		ActiveExperienceID: "sess1",
		ActivityID:         "act1",
		ActivityIndex:      0,
		StartTime:          time.Now(),
	}))

	endTime := time.Now()
	ok, err := store.EndActiveExperience("sess1", endTime)
	require.NoError(t, err)
	assert.True(t, ok)

	closed, err := store.GetActiveActivity("aa1")
	require.NoError(t, err)
	require.NotNil(t, closed.CompletedAt)

	// A second end finds the session already completed and writes nothing.
	ok, err = store.EndActiveExperience("sess1", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}
