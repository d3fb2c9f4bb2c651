package pbft

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/finalitylabs/qcert/utils/unittest"
)

func TestQuorumTracker(t *testing.T) {
	t.Run("fires once", func(t *testing.T) {
		var fired atomic.Uint32
		tracker := quorumTracker{onQuorum: func() bool {
			fired.Inc()
			return true
		}}

		assert.False(t, tracker.Track(func() bool { return false }))
		assert.Equal(t, uint32(0), fired.Load())

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tracker.Track(func() bool { return true })
			}()
		}
		unittest.RequireReturnsBefore(t, wg.Wait, unittest.DefaultReturnTimeout, "trackers did not return")
		assert.Equal(t, uint32(1), fired.Load())
	})

	// a callback that fails to produce its result leaves the tracker armed for later votes
	t.Run("failed callback re-arms", func(t *testing.T) {
		succeed := false
		calls := 0
		tracker := quorumTracker{onQuorum: func() bool {
			calls++
			return succeed
		}}

		require.False(t, tracker.Track(func() bool { return true }))
		assert.False(t, tracker.done.Load())

		succeed = true
		require.True(t, tracker.Track(func() bool { return true }))
		assert.False(t, tracker.Track(func() bool { return true }))
		assert.Equal(t, 2, calls)
	})
}
