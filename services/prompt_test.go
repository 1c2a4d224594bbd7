package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptSchedulerNextWithinWindow(t *testing.T) {
	s := NewPromptScheduler(20 * time.Minute)
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 1000; i++ {
		prompt := s.Next(start)
		assert.False(t, prompt.Before(start), "prompt before activity start")
		assert.True(t, prompt.Before(start.Add(20*time.Minute)), "prompt at or past window end")
	}
}

func TestPromptSchedulerBounds(t *testing.T) {
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("lower bound inclusive", func(t *testing.T) {
		s := NewPromptSchedulerWithSource(20*time.Minute, func(n int64) int64 { return 0 })
		assert.Equal(t, start, s.Next(start))
	})

	t.Run("upper bound exclusive", func(t *testing.T) {
		s := NewPromptSchedulerWithSource(20*time.Minute, func(n int64) int64 { return n - 1 })
		prompt := s.Next(start)
		assert.True(t, prompt.Before(start.Add(20*time.Minute)))
		assert.Equal(t, start.Add(20*time.Minute-time.Nanosecond), prompt)
	})
}

func TestPromptSchedulerDefaultWindow(t *testing.T) {
	s := NewPromptScheduler(0)
	assert.Equal(t, 20*time.Minute, s.Window())

	s = NewPromptScheduler(-time.Minute)
	assert.Equal(t, 20*time.Minute, s.Window())

	s = NewPromptScheduler(5 * time.Minute)
	assert.Equal(t, 5*time.Minute, s.Window())
}

func TestPromptSchedulerSpread(t *testing.T) {
	// Uniform draws over 20 minutes should land in both halves of the window.
	s := NewPromptScheduler(20 * time.Minute)
	start := time.Now()
	mid := start.Add(10 * time.Minute)

	var early, late int
	for i := 0; i < 500; i++ {
		if s.Next(start).Before(mid) {
			early++
		} else {
			late++
		}
	}
	require.Greater(t, early, 0, "no prompts in the first half of the window")
	require.Greater(t, late, 0, "no prompts in the second half of the window")
}

func TestPromptWindowFromEnv(t *testing.T) {
	t.Setenv("PHOTO_PROMPT_WINDOW_MIN", "")
	assert.Equal(t, 20*time.Minute, promptWindowFromEnv())

	t.Setenv("PHOTO_PROMPT_WINDOW_MIN", "5")
	assert.Equal(t, 5*time.Minute, promptWindowFromEnv())

	t.Setenv("PHOTO_PROMPT_WINDOW_MIN", "not-a-number")
	assert.Equal(t, 20*time.Minute, promptWindowFromEnv())
}
