package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/omw/internal/game"
)

type fakePlayer struct {
	mu      sync.Mutex
	playing map[Track]bool
	log     []string
	refuse  map[Track]bool
	stuck   map[Track]bool
	overlap bool
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{playing: map[Track]bool{}, refuse: map[Track]bool{}, stuck: map[Track]bool{}}
}

func (p *fakePlayer) Start(t Track) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refuse[t] {
		return errors.New("autoplay refused")
	}
	p.playing[t] = true
	if p.playing[TrackAmbient] && p.playing[TrackAlarm] {
		p.overlap = true
	}
	p.log = append(p.log, "start "+t.String())
	return nil
}

func (p *fakePlayer) Stop(t Track) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stuck[t] {
		return errors.New("device busy")
	}
	p.playing[t] = false
	p.log = append(p.log, "stop "+t.String())
	return nil
}

func TestApply_SwitchesTracksExclusively(t *testing.T) {
	p := newFakePlayer()
	c := NewCoordinator(p)

	c.Apply(game.CueAmbient)
	assert.Equal(t, TrackAmbient, c.Active())
	c.Apply(game.CueAlarm)
	assert.Equal(t, TrackAlarm, c.Active())
	c.Apply(game.CueResumeAmbient)
	assert.Equal(t, TrackAmbient, c.Active())

	assert.False(t, p.overlap)
	assert.Equal(t, []string{
		"start ambient",
		"stop ambient", "start alarm",
		"stop alarm", "start ambient",
	}, p.log)
}

func TestApply_RetriggerIsNoop(t *testing.T) {
	p := newFakePlayer()
	c := NewCoordinator(p)

	c.Apply(game.CueAmbient)
	c.Apply(game.CueAmbient)
	c.Apply(game.CueResumeAmbient)
	c.Apply(game.CueAlarm)
	c.Apply(game.CueAlarm)

	assert.Equal(t, []string{"start ambient", "stop ambient", "start alarm"}, p.log)
}

func TestApply_RefusedPlaybackIsSoftFailure(t *testing.T) {
	p := newFakePlayer()
	p.refuse[TrackAmbient] = true
	var got []error
	c := NewCoordinator(p, WithErrorHandler(func(err error) { got = append(got, err) }))

	c.Apply(game.CueAmbient)
	assert.Equal(t, TrackNone, c.Active())
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Error(), "start ambient")

	c.Apply(game.CueAlarm)
	assert.Equal(t, TrackAlarm, c.Active())
}

func TestApply_FailedStopKeepsTracksExclusive(t *testing.T) {
	p := newFakePlayer()
	var got []error
	c := NewCoordinator(p, WithErrorHandler(func(err error) { got = append(got, err) }))

	c.Apply(game.CueAmbient)
	p.mu.Lock()
	p.stuck[TrackAmbient] = true
	p.mu.Unlock()

	c.Apply(game.CueAlarm)
	assert.Equal(t, TrackAmbient, c.Active())
	assert.False(t, p.overlap)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Error(), "stop ambient")

	// The next intent retries the stop.
	p.mu.Lock()
	p.stuck[TrackAmbient] = false
	p.mu.Unlock()
	c.Apply(game.CueAlarm)
	assert.Equal(t, TrackAlarm, c.Active())
	assert.False(t, p.overlap)
	assert.Equal(t, []string{"start ambient", "stop ambient", "start alarm"}, p.log)
}

func TestRun_AppliesQueuedCuesInOrder(t *testing.T) {
	p := newFakePlayer()
	c := NewCoordinator(p)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	c.Cue(game.CueAmbient)
	c.Cue(game.CueAlarm)
	require.Eventually(t, func() bool { return c.Active() == TrackAlarm }, time.Second, time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, TrackNone, c.Active())
}

func TestBellPlayer_RingsWhileAlarmActive(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var rings atomic.Int32
	b := NewBellPlayer(func() { rings.Add(1) }, clock, 100*time.Millisecond)

	require.NoError(t, b.Start(TrackAmbient))
	assert.Equal(t, int32(0), rings.Load())

	require.NoError(t, b.Start(TrackAlarm))
	assert.Equal(t, int32(1), rings.Load())

	clock.Advance(100 * time.Millisecond)
	require.Eventually(t, func() bool { return rings.Load() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, b.Stop(TrackAlarm))
	clock.Advance(time.Second)
	assert.Never(t, func() bool { return rings.Load() > 2 }, 50*time.Millisecond, 5*time.Millisecond)
}
