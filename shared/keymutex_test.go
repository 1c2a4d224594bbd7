package shared_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamline/live_api/shared"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := shared.NewKeyedMutex()

	const workers = 32
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			km.Lock("session-1")
			defer km.Unlock("session-1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyedMutex_IndependentKeysDoNotBlock(t *testing.T) {
	km := shared.NewKeyedMutex()

	km.Lock("session-a")
	defer km.Unlock("session-a")

	done := make(chan struct{})
	go func() {
		km.Lock("session-b")
		km.Unlock("session-b")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.Fail(t, "lock on an unrelated key blocked")
	}
}

func TestKeyedMutex_UnlockUnheldPanics(t *testing.T) {
	km := shared.NewKeyedMutex()
	assert.Panics(t, func() { km.Unlock("never-locked") })
}
