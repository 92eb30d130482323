package game

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// DelayRange is the interval the alert delay is drawn from: [Min, Min+Window).
type DelayRange struct {
	Min    time.Duration
	Window time.Duration
}

// DefaultDelayRange returns the product range of 3 to 8 seconds.
func DefaultDelayRange() DelayRange {
	return DelayRange{
		Min:    3000 * time.Millisecond,
		Window: 5000 * time.Millisecond,
	}
}

// Validate checks that the range is usable.
func (r DelayRange) Validate() error {
	if r.Min <= 0 {
		return fmt.Errorf("minimum delay must be positive, got %s", r.Min)
	}
	if r.Window < 0 {
		return fmt.Errorf("delay window must not be negative, got %s", r.Window)
	}
	return nil
}

// DelaySource produces the delay before the next alert.
type DelaySource interface {
	Next() time.Duration
}

// UniformDelay draws delays uniformly from Range. A nil Rand uses the
// package-level generator.
type UniformDelay struct {
	Range DelayRange
	Rand  *rand.Rand
}

// Next implements DelaySource.
func (u UniformDelay) Next() time.Duration {
	if u.Range.Window <= 0 {
		return u.Range.Min
	}
	var n int64
	if u.Rand != nil {
		n = u.Rand.Int64N(int64(u.Range.Window))
	} else {
		n = rand.Int64N(int64(u.Range.Window))
	}
	return u.Range.Min + time.Duration(n)
}

// FixedDelay always returns the same delay.
type FixedDelay time.Duration

// Next implements DelaySource.
func (f FixedDelay) Next() time.Duration {
	return time.Duration(f)
}
