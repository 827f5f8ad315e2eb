package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/marble-roulette/internal/config"
)

func newTestManager(t *testing.T, cfg *config.Config) *SessionManager {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	gm := NewSessionManager(ctx, nil, nil, cfg, nil)
	t.Cleanup(func() {
		gm.Shutdown()
		cancel()
	})
	return gm
}

func TestCreateAndEndSession(t *testing.T) {
	gm := newTestManager(t, &config.Config{DefaultSeed: 5, TickHz: 60, BroadcastHz: 20})

	x := 300.0
	s, err := gm.CreateSession(CreateSessionRequest{
		Catalog: testCatalog(2),
		Counts:  map[string]int{"Ruby-id": 3, "missing": 4},
		DropX:   &x,
	})
	require.NoError(t, err)
	assert.Len(t, s.Token, 32)
	assert.Equal(t, DefaultPresetName, s.Preset)
	assert.Equal(t, 1, gm.Count())

	snap := s.Snapshot()
	assert.Equal(t, uint32(5), snap.Seed)
	assert.Equal(t, map[string]int{"Ruby-id": 3, "Sapphire-id": 1}, snap.Counts)
	assert.Equal(t, 300.0, snap.DropX)

	got, err := gm.Get(s.Token)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, gm.End(s.Token))
	assert.Equal(t, 0, gm.Count())
	_, err = gm.Get(s.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, gm.End(s.Token), ErrSessionNotFound)
}

func TestCreateSessionErrors(t *testing.T) {
	gm := newTestManager(t, &config.Config{MaxSessions: 1})

	_, err := gm.CreateSession(CreateSessionRequest{Preset: "nope", Catalog: testCatalog(1)})
	assert.ErrorIs(t, err, ErrUnknownPreset)

	_, err = gm.CreateSession(CreateSessionRequest{})
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = gm.CreateSession(CreateSessionRequest{Preset: "zigzag", Catalog: testCatalog(1)})
	require.NoError(t, err)
	_, err = gm.CreateSession(CreateSessionRequest{Catalog: testCatalog(1)})
	assert.ErrorIs(t, err, ErrTooManySessions)
}

func TestExpireIdleSessions(t *testing.T) {
	gm := newTestManager(t, &config.Config{SessionExpiryMinutes: 30})

	s, err := gm.CreateSession(CreateSessionRequest{Catalog: testCatalog(1)})
	require.NoError(t, err)

	assert.Equal(t, 0, gm.ExpireIdleSessions(time.Now()))
	assert.Equal(t, 1, gm.ExpireIdleSessions(s.LastActive().Add(31*time.Minute)))
	assert.Equal(t, 0, gm.Count())
}

func TestExpiryDisabled(t *testing.T) {
	gm := newTestManager(t, &config.Config{})
	_, err := gm.CreateSession(CreateSessionRequest{Catalog: testCatalog(1)})
	require.NoError(t, err)
	assert.Equal(t, 0, gm.ExpireIdleSessions(time.Now().Add(24*time.Hour)))
}

func TestWinnerReachesLocalListener(t *testing.T) {
	gm := newTestManager(t, &config.Config{DefaultSeed: 12})
	events := make(chan WinnerEvent, 4)
	gm.SetWinnerListener(func(ev WinnerEvent) { events <- ev })

	s, err := gm.CreateSession(CreateSessionRequest{Catalog: testCatalog(2)})
	require.NoError(t, err)
	require.True(t, s.TryStart())
	for i := 0; i < 180 && s.Snapshot().Winner == nil; i++ {
		require.NoError(t, s.AdvanceTime(context.Background(), 1000))
	}

	select {
	case ev := <-events:
		assert.Equal(t, s.Token, ev.Token)
		assert.Equal(t, uint32(12), ev.Seed)
		assert.Equal(t, 2, ev.Total)
	case <-time.After(2 * time.Second):
		t.Fatal("winner listener not called")
	}
}

func TestStorageWithoutBackends(t *testing.T) {
	gm := newTestManager(t, nil)
	ctx := context.Background()

	id, err := gm.RecordRun(ctx, "classic", WinnerEvent{Token: "t"})
	assert.NoError(t, err)
	assert.Zero(t, id)

	runs, err := gm.RecentRuns(ctx, 10)
	assert.NoError(t, err)
	assert.Empty(t, runs)

	_, err = gm.CachedSnapshot(ctx, "t")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
