package session

import (
	"time"

	"github.com/tomz197/omw/internal/game"
)

// Screen is what the session is currently showing.
type Screen int

const (
	ScreenInstructions Screen = iota // How to play
	ScreenPlay                       // Button and live timer
	ScreenResult                     // Result or too-soon modal
	ScreenShutdown                   // Server is shutting down
)

func (s Screen) String() string {
	switch s {
	case ScreenInstructions:
		return "instructions"
	case ScreenPlay:
		return "play"
	case ScreenResult:
		return "result"
	case ScreenShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// State holds per-player presentation state. It is only touched by the
// session loop goroutine.
type State struct {
	Screen     Screen
	prevScreen Screen
	Snap       game.Snapshot // Latest controller projection
	Running    bool

	// Result of the most recently resolved trial
	Result      *game.Outcome
	resultTrial uint64

	// Session history
	Attempts int
	Best     time.Duration // Fastest valid latency this session, zero when none

	toast      string
	toastUntil time.Time

	lastInput     time.Time
	isInactive    bool
	wasInactive   bool
	shutdownTimer float64 // Countdown before auto-disconnect on shutdown
	forceClear    bool
}

// NewState creates the state of a fresh session.
func NewState(now time.Time) *State {
	return &State{
		Screen:     ScreenInstructions,
		prevScreen: ScreenInstructions,
		Snap:       game.Snapshot{Phase: game.PhaseIdle},
		Running:    true,
		lastInput:  now,
		forceClear: true,
	}
}

// record folds a resolved outcome into the session history.
func (s *State) record(out game.Outcome, trial uint64) {
	s.Result = &out
	s.resultTrial = trial
	s.Attempts++
	if out.Valid() && (s.Best == 0 || out.Latency < s.Best) {
		s.Best = out.Latency
	}
}

// Toast returns the active soft notification, if any.
func (s *State) Toast(now time.Time) string {
	if s.toast == "" || now.After(s.toastUntil) {
		return ""
	}
	return s.toast
}
