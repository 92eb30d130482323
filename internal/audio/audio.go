// Package audio turns the controller's cue intents into track changes on a
// playback backend, keeping the ambient and alarm tracks mutually exclusive.
package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomz197/omw/internal/game"
)

// Track identifies a looping audio track.
type Track int

const (
	TrackNone Track = iota
	TrackAmbient
	TrackAlarm
)

func (t Track) String() string {
	switch t {
	case TrackAmbient:
		return "ambient"
	case TrackAlarm:
		return "alarm"
	default:
		return "none"
	}
}

// Player is a playback backend. Start may fail, for example when the
// platform refuses autoplay.
type Player interface {
	Start(t Track) error
	Stop(t Track) error
}

// queueSize bounds the number of intents waiting for the playback goroutine.
const queueSize = 32

// Coordinator implements game.CueSink. Intents are queued and applied in
// order by Run, so the controller never waits on playback.
type Coordinator struct {
	player  Player
	log     zerolog.Logger
	onError func(error)
	cueCh   chan game.Cue

	mu     sync.Mutex
	active Track
}

// Compile-time check that Coordinator is a cue sink.
var _ game.CueSink = (*Coordinator)(nil)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger used for playback failures.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithErrorHandler registers a callback for playback failures. It is called
// from the playback goroutine.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Coordinator) { c.onError = fn }
}

// NewCoordinator creates a coordinator driving p.
func NewCoordinator(p Player, opts ...Option) *Coordinator {
	c := &Coordinator{
		player: p,
		log:    zerolog.Nop(),
		cueCh:  make(chan game.Cue, queueSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cue queues an intent. It never blocks; when the queue is full the intent
// is dropped.
func (c *Coordinator) Cue(cue game.Cue) {
	select {
	case c.cueCh <- cue:
	default:
		c.log.Warn().Stringer("cue", cue).Msg("audio queue full, dropping cue")
	}
}

// Run applies queued intents until ctx is cancelled, then silences every track.
func (c *Coordinator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.silence()
			return
		case cue := <-c.cueCh:
			c.Apply(cue)
		}
	}
}

// Apply performs one intent synchronously. Re-issuing the intent that is
// already in effect does nothing.
func (c *Coordinator) Apply(cue game.Cue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch cue {
	case game.CueAmbient, game.CueResumeAmbient:
		c.switchLocked(TrackAmbient)
	case game.CueAlarm:
		c.switchLocked(TrackAlarm)
	}
}

// switchLocked stops whatever is playing and starts want. If the stop fails
// want is not started and the old track stays active, so the next intent
// retries the stop.
func (c *Coordinator) switchLocked(want Track) {
	if c.active == want {
		return
	}
	if c.active != TrackNone {
		if err := c.player.Stop(c.active); err != nil {
			c.fail(fmt.Errorf("stop %s: %w", c.active, err))
			return
		}
		c.active = TrackNone
	}
	if err := c.player.Start(want); err != nil {
		c.fail(fmt.Errorf("start %s: %w", want, err))
		return
	}
	c.active = want
}

func (c *Coordinator) silence() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == TrackNone {
		return
	}
	if err := c.player.Stop(c.active); err != nil {
		c.fail(fmt.Errorf("stop %s: %w", c.active, err))
		return
	}
	c.active = TrackNone
}

func (c *Coordinator) fail(err error) {
	c.log.Warn().Err(err).Msg("audio playback failed")
	if c.onError != nil {
		c.onError(err)
	}
}

// Active returns the track currently playing.
func (c *Coordinator) Active() Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
