package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSessions(t *testing.T) {
	s := newMemoryStore()
	assert.Equal(t, 0, s.Active())

	require.NoError(t, s.Add(SessionInfo{ID: "a", Upstream: "ws://up", StartedAt: time.Now()}))
	require.NoError(t, s.Add(SessionInfo{ID: "b", Upstream: "ws://up", StartedAt: time.Now()}))
	assert.Error(t, s.Add(SessionInfo{ID: "a"}), "duplicate id must be rejected")
	assert.Equal(t, 2, s.Active())

	s.Remove("a")
	s.Remove("a") // removing twice is harmless
	assert.Equal(t, 1, s.Active())

	total, failures := s.Totals()
	assert.Equal(t, int64(2), total, "totals keep counting removed sessions")
	assert.Equal(t, int64(0), failures)

	s.IncUpstreamFailure()
	_, failures = s.Totals()
	assert.Equal(t, int64(1), failures)
}

func TestMemoryStoreFlags(t *testing.T) {
	s := newMemoryStore()
	assert.False(t, s.Ready())
	assert.False(t, s.Closing())
	s.SetReady(true)
	s.SetClosing(true)
	assert.True(t, s.Ready())
	assert.True(t, s.Closing())
	assert.NoError(t, s.Close())
}

func TestFactoryDefaultsToMemory(t *testing.T) {
	s, err := New("", "", 0)
	require.NoError(t, err)
	_, ok := s.(*memoryStore)
	assert.True(t, ok)
}
