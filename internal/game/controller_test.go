package game

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cueRecorder struct {
	mu   sync.Mutex
	cues []Cue
}

func (r *cueRecorder) Cue(c Cue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cues = append(r.cues, c)
}

func (r *cueRecorder) all() []Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Cue(nil), r.cues...)
}

func (r *cueRecorder) count(c Cue) int {
	n := 0
	for _, got := range r.all() {
		if got == c {
			n++
		}
	}
	return n
}

func newTestController(delay time.Duration) (*Controller, *clockwork.FakeClock, *cueRecorder) {
	clock := clockwork.NewFakeClock()
	cues := &cueRecorder{}
	c := New(Options{
		Clock:  clock,
		Delay:  FixedDelay(delay),
		Cues:   cues,
		Logger: zerolog.Nop(),
	})
	return c, clock, cues
}

func waitForPhase(t *testing.T, c *Controller, want Phase) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.Snapshot().Phase == want
	}, time.Second, time.Millisecond, "phase never became %s", want)
}

func TestNewController_StartsIdle(t *testing.T) {
	c, _, _ := newTestController(time.Second)
	snap := c.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Nil(t, snap.Outcome)
	assert.Equal(t, 0, c.Pending())
}

func TestEndToEnd_ValidPress(t *testing.T) {
	c, clock, cues := newTestController(4000 * time.Millisecond)
	start := clock.Now()

	c.StartTrial()
	assert.Equal(t, PhaseArmed, c.Snapshot().Phase)
	assert.Equal(t, start, c.Snapshot().ArmedAt)

	clock.Advance(4000 * time.Millisecond)
	waitForPhase(t, c, PhaseAlertActive)
	assert.Equal(t, start.Add(4000*time.Millisecond), c.Snapshot().AlertAt)

	clock.Advance(180 * time.Millisecond)
	out, ok := c.Press()
	require.True(t, ok)
	assert.Equal(t, OutcomeValid, out.Kind)
	assert.Equal(t, int64(180), out.LatencyMs())
	assert.Equal(t, CategoryLightning, c.Tiers().Classify(out.Latency))

	snap := c.Snapshot()
	assert.Equal(t, PhaseResolved, snap.Phase)
	require.NotNil(t, snap.Outcome)
	assert.Equal(t, out, *snap.Outcome)
	assert.Equal(t, []Cue{CueAmbient, CueAlarm, CueResumeAmbient}, cues.all())
}

func TestEndToEnd_PressBeforeAlertIsTooSoon(t *testing.T) {
	c, clock, cues := newTestController(4000 * time.Millisecond)

	c.StartTrial()
	clock.Advance(500 * time.Millisecond)
	out, ok := c.Press()
	require.True(t, ok)
	assert.Equal(t, OutcomeTooSoon, out.Kind)
	assert.Equal(t, PhaseResolved, c.Snapshot().Phase)
	assert.Equal(t, 0, c.Pending())

	// The cancelled delay must not raise the alert later.
	clock.Advance(10 * time.Second)
	assert.Never(t, func() bool {
		return c.Snapshot().Phase == PhaseAlertActive
	}, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, 0, cues.count(CueAlarm))
}

func TestPressWhileArmed_AlwaysTooSoon(t *testing.T) {
	for _, wait := range []time.Duration{0, time.Millisecond, 2999 * time.Millisecond} {
		c, clock, _ := newTestController(3000 * time.Millisecond)
		c.StartTrial()
		clock.Advance(wait)
		out, ok := c.Press()
		require.True(t, ok)
		assert.Equal(t, OutcomeTooSoon, out.Kind, "wait %s", wait)
	}
}

func TestPressWhileIdleOrResolved_Ignored(t *testing.T) {
	c, clock, cues := newTestController(time.Second)

	_, ok := c.Press()
	assert.False(t, ok)
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)

	c.StartTrial()
	clock.Advance(time.Second)
	waitForPhase(t, c, PhaseAlertActive)
	clock.Advance(300 * time.Millisecond)
	first, ok := c.Press()
	require.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Press()
	assert.False(t, ok)
	snap := c.Snapshot()
	require.NotNil(t, snap.Outcome)
	assert.Equal(t, first, *snap.Outcome)
	assert.Equal(t, 1, cues.count(CueResumeAmbient))
}

func TestReset_Idempotent(t *testing.T) {
	c, clock, _ := newTestController(time.Second)
	c.StartTrial()

	c.Reset()
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
	assert.Equal(t, 0, c.Pending())

	c.Reset()
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
	assert.Equal(t, 0, c.Pending())
	assert.Nil(t, c.Snapshot().Outcome)

	clock.Advance(5 * time.Second)
	assert.Never(t, func() bool {
		return c.Snapshot().Phase != PhaseIdle
	}, 50*time.Millisecond, 5*time.Millisecond)
}

func TestStartThenReset_DelayNeverFires(t *testing.T) {
	c, clock, cues := newTestController(4000 * time.Millisecond)
	c.StartTrial()
	c.Reset()

	clock.Advance(8 * time.Second)
	assert.Never(t, func() bool {
		return c.Snapshot().Phase == PhaseAlertActive
	}, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, 0, cues.count(CueAlarm))
	assert.True(t, c.Snapshot().AlertAt.IsZero())
}

func TestStartTwice_SinglePendingDelay(t *testing.T) {
	c, clock, cues := newTestController(4000 * time.Millisecond)
	c.StartTrial()
	clock.Advance(1000 * time.Millisecond)
	c.StartTrial()
	assert.Equal(t, 1, c.Pending())

	// The first delay would have fired here.
	clock.Advance(3000 * time.Millisecond)
	assert.Never(t, func() bool {
		return c.Snapshot().Phase == PhaseAlertActive
	}, 50*time.Millisecond, 5*time.Millisecond)

	clock.Advance(1000 * time.Millisecond)
	waitForPhase(t, c, PhaseAlertActive)
	assert.Equal(t, 1, cues.count(CueAlarm))
	assert.Equal(t, 0, c.Pending())
	assert.Equal(t, uint64(2), c.Snapshot().Trial)
}

func TestStaleTimerCallback_Discarded(t *testing.T) {
	c, _, cues := newTestController(time.Hour)
	c.StartTrial()

	c.mu.Lock()
	stale := c.gen
	c.mu.Unlock()

	c.Reset()
	c.fire(stale)
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
	assert.Equal(t, 0, cues.count(CueAlarm))
}

func TestStartAfterResolved_ClearsOutcome(t *testing.T) {
	c, clock, _ := newTestController(time.Second)
	c.StartTrial()
	_, ok := c.Press()
	require.True(t, ok)
	require.NotNil(t, c.Snapshot().Outcome)

	c.StartTrial()
	snap := c.Snapshot()
	assert.Equal(t, PhaseArmed, snap.Phase)
	assert.Nil(t, snap.Outcome)
	assert.True(t, snap.AlertAt.IsZero())

	clock.Advance(time.Second)
	waitForPhase(t, c, PhaseAlertActive)
}

func TestDisplayTicks_UpdateLiveElapsedOnly(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var mu sync.Mutex
	var seen []Snapshot
	c := New(Options{
		Clock:        clock,
		Delay:        FixedDelay(time.Second),
		TickInterval: 10 * time.Millisecond,
		Logger:       zerolog.Nop(),
		Observer: func(s Snapshot) {
			mu.Lock()
			seen = append(seen, s)
			mu.Unlock()
		},
	})

	c.StartTrial()
	clock.Advance(time.Second)
	waitForPhase(t, c, PhaseAlertActive)

	clock.Advance(10 * time.Millisecond)
	require.Eventually(t, func() bool {
		return c.Snapshot().LiveElapsed == 10*time.Millisecond
	}, time.Second, time.Millisecond)
	assert.Equal(t, PhaseAlertActive, c.Snapshot().Phase)
	assert.Nil(t, c.Snapshot().Outcome)

	clock.Advance(25 * time.Millisecond)
	out, ok := c.Press()
	require.True(t, ok)
	assert.Equal(t, 35*time.Millisecond, out.Latency)

	// Ticks after the press must not move the reading.
	clock.Advance(100 * time.Millisecond)
	assert.Never(t, func() bool {
		return c.Snapshot().LiveElapsed != 35*time.Millisecond
	}, 50*time.Millisecond, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	var resolved int
	for _, s := range seen {
		if s.Phase == PhaseResolved {
			resolved++
		}
	}
	assert.Equal(t, 1, resolved)
}

func TestSnapshot_IsACopy(t *testing.T) {
	c, _, _ := newTestController(time.Second)
	c.StartTrial()
	c.Press()

	snap := c.Snapshot()
	require.NotNil(t, snap.Outcome)
	snap.Outcome.Kind = OutcomeValid
	assert.Equal(t, OutcomeTooSoon, c.Snapshot().Outcome.Kind)
}

func TestPressAt_MeasuresFromKeyArrival(t *testing.T) {
	c, clock, _ := newTestController(time.Second)
	c.StartTrial()
	clock.Advance(time.Second)
	waitForPhase(t, c, PhaseAlertActive)

	clock.Advance(200 * time.Millisecond)
	arrived := clock.Now()
	// The press is handled later than it arrived.
	clock.Advance(50 * time.Millisecond)

	out, ok := c.PressAt(arrived)
	require.True(t, ok)
	assert.Equal(t, OutcomeValid, out.Kind)
	assert.Equal(t, 200*time.Millisecond, out.Latency)
	assert.Equal(t, 200*time.Millisecond, c.Snapshot().LiveElapsed)
}

func TestPressAt_StampedBeforeAlertIsTooSoon(t *testing.T) {
	c, clock, cues := newTestController(time.Second)
	c.StartTrial()
	clock.Advance(990 * time.Millisecond)
	arrived := clock.Now()

	clock.Advance(10 * time.Millisecond)
	waitForPhase(t, c, PhaseAlertActive)

	out, ok := c.PressAt(arrived)
	require.True(t, ok)
	assert.Equal(t, OutcomeTooSoon, out.Kind)
	snap := c.Snapshot()
	assert.Equal(t, PhaseResolved, snap.Phase)
	assert.True(t, snap.AlertAt.IsZero())
	assert.Equal(t, 1, cues.count(CueResumeAmbient))
}
