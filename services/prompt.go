package services

import (
	"math/rand"
	"os"
	"strconv"
	"time"
)

const defaultPromptWindow = 20 * time.Minute

// PromptScheduler draws the surprise photo-prompt moment for a freshly started
// activity, uniformly over [start, start+window). The default source is the
// process-global math/rand, which is safe for concurrent callers; tests inject
// a deterministic one.
type PromptScheduler struct {
	window    time.Duration
	randInt63 func(n int64) int64
}

func NewPromptScheduler(window time.Duration) *PromptScheduler {
	if window <= 0 {
		window = defaultPromptWindow
	}
	return &PromptScheduler{
		window:    window,
		randInt63: rand.Int63n,
	}
}

// NewPromptSchedulerWithSource is NewPromptScheduler with an injected random
// source, used by tests.
func NewPromptSchedulerWithSource(window time.Duration, randInt63 func(n int64) int64) *PromptScheduler {
	s := NewPromptScheduler(window)
	s.randInt63 = randInt63
	return s
}

// Next returns a timestamp in [start, start+window).
func (s *PromptScheduler) Next(start time.Time) time.Time {
	return start.Add(time.Duration(s.randInt63(int64(s.window))))
}

// Window reports the configured prompt window.
func (s *PromptScheduler) Window() time.Duration {
	return s.window
}

// promptWindowFromEnv reads PHOTO_PROMPT_WINDOW_MIN, falling back to the
// 20 minute default on absence or garbage.
func promptWindowFromEnv() time.Duration {
	if v := os.Getenv("PHOTO_PROMPT_WINDOW_MIN"); v != "" {
		if mins, err := strconv.Atoi(v); err == nil && mins > 0 {
			return time.Duration(mins) * time.Minute
		}
	}
	return defaultPromptWindow
}
