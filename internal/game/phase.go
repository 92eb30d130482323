// Package game implements the reaction trial: a random delay, an alert, and
// the adjudication of a single press against the running clock.
package game

import "time"

// Phase is the state of the current trial.
type Phase int

const (
	PhaseIdle        Phase = iota // Nothing scheduled
	PhaseArmed                    // Delay timer running, alert not shown yet
	PhaseAlertActive              // Alert shown, stopwatch running
	PhaseResolved                 // Press adjudicated, waiting for the next trial
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseArmed:
		return "armed"
	case PhaseAlertActive:
		return "alert"
	case PhaseResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// OutcomeKind tells how a trial ended.
type OutcomeKind int

const (
	OutcomeNone    OutcomeKind = iota
	OutcomeTooSoon             // Pressed before the alert
	OutcomeValid               // Pressed after the alert; Latency is set
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeTooSoon:
		return "too_soon"
	case OutcomeValid:
		return "valid"
	default:
		return "none"
	}
}

// Outcome is the result of a resolved trial.
type Outcome struct {
	Kind    OutcomeKind
	Latency time.Duration // Only meaningful for OutcomeValid
}

// LatencyMs returns the latency in whole milliseconds.
func (o Outcome) LatencyMs() int64 {
	return o.Latency.Milliseconds()
}

// Valid reports whether the outcome carries a latency.
func (o Outcome) Valid() bool {
	return o.Kind == OutcomeValid
}

// Trial is the mutable record of one play attempt. It is owned by the
// Controller and never handed out; readers get a Snapshot.
type Trial struct {
	Phase   Phase
	ArmedAt time.Time // When the delay was scheduled (diagnostic)
	AlertAt time.Time // Zero reference of the stopwatch; set only once the alert fired
	Outcome *Outcome  // Set on entry to PhaseResolved
}

// Snapshot is an immutable projection of the trial for the display layer.
type Snapshot struct {
	Phase       Phase
	LiveElapsed time.Duration // Last display reading while the alert is active
	Outcome     *Outcome
	ArmedAt     time.Time
	AlertAt     time.Time
	Trial       uint64 // Sequence number of the trial, 0 before the first start
}
