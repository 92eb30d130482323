package game

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTickInterval is the display refresh cadence of the stopwatch.
const DefaultTickInterval = 10 * time.Millisecond

// Stopwatch measures time since a zero reference. While running it also
// emits periodic ticks for the display; those ticks are cosmetic and carry
// the generation they were started with so late ones can be recognised.
type Stopwatch struct {
	clock    clockwork.Clock
	interval time.Duration

	mu      sync.Mutex
	zero    time.Time
	frozen  time.Duration // Reading at the moment of Stop
	running bool
	gen     uint64
	ticker  clockwork.Ticker
	done    chan struct{}
}

// NewStopwatch creates a stopped stopwatch ticking every interval once started.
func NewStopwatch(clock clockwork.Clock, interval time.Duration) *Stopwatch {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Stopwatch{clock: clock, interval: interval}
}

// Start sets the zero reference to at and begins periodic ticks. onTick
// receives the generation of this run; use Live to check it is still current.
// Starting a running stopwatch restarts it.
func (s *Stopwatch) Start(at time.Time, onTick func(gen uint64)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	s.zero = at
	s.frozen = 0
	s.running = true

	if onTick != nil {
		s.ticker = s.clock.NewTicker(s.interval)
		s.done = make(chan struct{})
		go s.tickLoop(s.ticker, s.done, s.gen, onTick)
	}
	return s.gen
}

func (s *Stopwatch) tickLoop(t clockwork.Ticker, done <-chan struct{}, gen uint64, onTick func(uint64)) {
	for {
		select {
		case <-done:
			return
		case <-t.Chan():
			select {
			case <-done:
				return
			default:
			}
			onTick(gen)
		}
	}
}

// Read returns the time elapsed since the zero reference. After Stop it
// returns the reading taken when the stopwatch was stopped.
func (s *Stopwatch) Read() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return s.frozen
	}
	return s.clock.Since(s.zero)
}

// ReadAt returns the time elapsed between the zero reference and at.
func (s *Stopwatch) ReadAt(at time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return at.Sub(s.zero)
}

// Stop halts the ticks and freezes the reading. Stopping twice is harmless.
func (s *Stopwatch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Stopwatch) stopLocked() {
	if !s.running {
		return
	}
	s.frozen = s.clock.Since(s.zero)
	s.running = false
	s.gen++ // invalidates ticks already in flight
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
}

// Reset stops the stopwatch and zeroes the frozen reading.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.frozen = 0
}

// Running reports whether the stopwatch is running.
func (s *Stopwatch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Live reports whether gen belongs to the current, still running, run.
func (s *Stopwatch) Live(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && s.gen == gen
}
