package game

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Observer is notified with a fresh snapshot after every transition and
// every display tick. It is called without the controller lock held.
type Observer func(Snapshot)

// Options configures a Controller. Zero values fall back to defaults.
type Options struct {
	Clock        clockwork.Clock
	Delay        DelaySource
	Tiers        Tiers
	Cues         CueSink
	Observer     Observer
	TickInterval time.Duration
	Logger       zerolog.Logger
}

// Controller owns the trial state machine. Every mutation, whether it comes
// from Start, Press, Reset or the delay timer, runs to completion under mu.
type Controller struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	delay   DelaySource
	tiers   Tiers
	cues    CueSink
	observe Observer
	log     zerolog.Logger

	trial   Trial
	watch   *Stopwatch
	live    time.Duration
	trials  uint64
	pending clockwork.Timer
	gen     uint64 // Identifies the pending delay; bumped on every cancel
}

// New creates a controller in PhaseIdle.
func New(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Delay == nil {
		opts.Delay = UniformDelay{Range: DefaultDelayRange()}
	}
	if opts.Tiers == (Tiers{}) {
		opts.Tiers = DefaultTiers()
	}
	if opts.Cues == nil {
		opts.Cues = NopCues
	}
	return &Controller{
		clock:   opts.Clock,
		delay:   opts.Delay,
		tiers:   opts.Tiers,
		cues:    opts.Cues,
		observe: opts.Observer,
		log:     opts.Logger,
		trial:   Trial{Phase: PhaseIdle},
		watch:   NewStopwatch(opts.Clock, opts.TickInterval),
	}
}

// Tiers returns the tier boundaries used for classification.
func (c *Controller) Tiers() Tiers {
	return c.tiers
}

// StartTrial arms a new trial. Any pending delay is cancelled first, so
// calling it repeatedly never leaves more than one delay outstanding.
func (c *Controller) StartTrial() {
	c.mu.Lock()
	c.cancelPendingLocked()
	c.watch.Reset()
	c.live = 0

	now := c.clock.Now()
	d := c.delay.Next()
	c.trials++
	c.trial = Trial{Phase: PhaseArmed, ArmedAt: now}

	gen := c.gen
	c.pending = c.clock.AfterFunc(d, func() { c.fire(gen) })
	c.cues.Cue(CueAmbient)

	c.log.Debug().
		Uint64("trial", c.trials).
		Dur("delay", d).
		Msg("trial armed")
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// fire performs the Armed -> AlertActive transition for the delay identified by gen.
func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.trial.Phase != PhaseArmed {
		// Cancelled after the timer had already fired; drop it.
		c.log.Debug().Uint64("gen", gen).Uint64("current", c.gen).Msg("stale alert timer discarded")
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.gen++

	now := c.clock.Now()
	c.trial.Phase = PhaseAlertActive
	c.trial.AlertAt = now
	c.live = 0
	c.cues.Cue(CueAlarm)
	c.watch.Start(now, c.tick)

	c.log.Debug().Uint64("trial", c.trials).Msg("alert raised")
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// tick refreshes the display reading. It never changes phase or outcome.
func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if !c.watch.Live(gen) {
		c.mu.Unlock()
		return
	}
	c.live = c.watch.Read()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Press adjudicates a press made now. The boolean is false when the press
// was ignored because no trial was in flight.
func (c *Controller) Press() (Outcome, bool) {
	return c.PressAt(c.clock.Now())
}

// PressAt adjudicates a press made at the given instant, such as the time the
// key arrived from the terminal. A press stamped before the alert was raised
// is too soon even if it is handled after.
func (c *Controller) PressAt(at time.Time) (Outcome, bool) {
	c.mu.Lock()

	var out Outcome
	switch c.trial.Phase {
	case PhaseArmed:
		c.cancelPendingLocked()
		c.watch.Stop()
		out = Outcome{Kind: OutcomeTooSoon}
	case PhaseAlertActive:
		latency := c.watch.ReadAt(at)
		c.watch.Stop()
		if latency < 0 {
			c.live = 0
			out = Outcome{Kind: OutcomeTooSoon}
			c.trial.AlertAt = time.Time{}
			break
		}
		c.live = latency
		out = Outcome{Kind: OutcomeValid, Latency: latency}
	default:
		c.mu.Unlock()
		return Outcome{}, false
	}

	c.trial.Phase = PhaseResolved
	c.trial.Outcome = &out
	c.cues.Cue(CueResumeAmbient)

	c.log.Debug().
		Uint64("trial", c.trials).
		Stringer("outcome", out.Kind).
		Int64("latency_ms", out.LatencyMs()).
		Msg("trial resolved")
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return out, true
}

// Reset returns to PhaseIdle from any phase. It is idempotent.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.resetLocked()
	c.cues.Cue(CueResumeAmbient)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Close cancels everything without issuing audio intents. Used when the
// owning session goes away.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Controller) resetLocked() {
	c.cancelPendingLocked()
	c.watch.Reset()
	c.live = 0
	c.trial = Trial{Phase: PhaseIdle}
}

// cancelPendingLocked stops the outstanding delay, if any. Bumping gen makes
// a callback that already fired but is waiting on mu a no-op.
func (c *Controller) cancelPendingLocked() {
	c.gen++
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

// Snapshot returns the current display projection.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:       c.trial.Phase,
		LiveElapsed: c.live,
		ArmedAt:     c.trial.ArmedAt,
		AlertAt:     c.trial.AlertAt,
		Trial:       c.trials,
	}
	if c.trial.Outcome != nil {
		out := *c.trial.Outcome
		snap.Outcome = &out
	}
	return snap
}

// Pending returns the number of outstanding delay timers (0 or 1).
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		return 1
	}
	return 0
}

func (c *Controller) notify(snap Snapshot) {
	if c.observe != nil {
		c.observe(snap)
	}
}
