package hub

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/omw/internal/game"
)

func startServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Run(ctx)
	return s
}

func TestRegister_UpdatesOnline(t *testing.T) {
	s := startServer(t)

	h := s.Register("alice")
	_, err := uuid.Parse(h.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", h.Name)
	require.Eventually(t, func() bool { return s.Stats().Online == 1 }, time.Second, time.Millisecond)

	s.Unregister(h.ID)
	require.Eventually(t, func() bool { return s.Stats().Online == 0 }, time.Second, time.Millisecond)
	_, open := <-h.Events
	assert.False(t, open, "events channel closed on unregister")
}

func TestReport_AggregatesCounters(t *testing.T) {
	s := startServer(t)
	h := s.Register("bob")

	s.Report(h.ID, game.Outcome{Kind: game.OutcomeValid, Latency: 300 * time.Millisecond})
	s.Report(h.ID, game.Outcome{Kind: game.OutcomeTooSoon})
	s.Report(h.ID, game.Outcome{Kind: game.OutcomeValid, Latency: 180 * time.Millisecond})
	s.Report(h.ID, game.Outcome{Kind: game.OutcomeValid, Latency: 220 * time.Millisecond})
	s.Report(h.ID, game.Outcome{})

	require.Eventually(t, func() bool { return s.Stats().Trials == 4 }, time.Second, time.Millisecond)
	got := s.Stats()
	assert.Equal(t, uint64(3), got.Valid)
	assert.Equal(t, uint64(1), got.TooSoon)
	assert.Equal(t, 180*time.Millisecond, got.Best)
}

func TestShutdown_NotifiesAndWaits(t *testing.T) {
	s := startServer(t)
	h := s.Register("carol")
	require.Eventually(t, func() bool { return s.Stats().Online == 1 }, time.Second, time.Millisecond)

	go func() {
		ev := <-h.Events
		if ev.Type == EventShutdown {
			s.Unregister(h.ID)
		}
	}()

	done := make(chan struct{})
	go func() {
		s.Shutdown(5 * time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("shutdown did not return after the session left")
	}
	require.Eventually(t, func() bool { return s.Stats().Online == 0 }, time.Second, time.Millisecond)
}

func TestShutdown_Timeout(t *testing.T) {
	s := startServer(t)
	s.Register("dave")
	require.Eventually(t, func() bool { return s.Stats().Online == 1 }, time.Second, time.Millisecond)

	start := time.Now()
	s.Shutdown(50 * time.Millisecond)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 1, s.Stats().Online)
}

func TestStoppedHub_DoesNotBlockSessions(t *testing.T) {
	s := NewServer()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()
	live := s.Register("dave")
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		defer close(done)
		// More than the channel buffers hold.
		for range 40 {
			late := s.Register("late")
			_, open := <-late.Events
			assert.False(t, open, "late sessions are told to leave")
			s.Unregister(late.ID)
		}
		s.Unregister(live.ID)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("register or unregister blocked after the hub stopped")
	}
}
