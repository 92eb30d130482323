package game

import (
	"fmt"
	"time"
)

// Category is the reaction-speed tier of a valid latency.
type Category string

const (
	CategoryLightning Category = "Lightning Fast"
	CategoryQuick     Category = "Quick Reflexes"
	CategoryGood      Category = "Good Reaction"
)

// Tiers holds the tier boundaries. Both bounds are exclusive upper limits,
// so a latency equal to a bound falls into the slower tier.
type Tiers struct {
	LightningBelow time.Duration
	QuickBelow     time.Duration
}

// DefaultTiers returns the product boundaries (250 ms and 400 ms).
func DefaultTiers() Tiers {
	return Tiers{
		LightningBelow: 250 * time.Millisecond,
		QuickBelow:     400 * time.Millisecond,
	}
}

// Validate checks that the bounds are positive and ordered.
func (t Tiers) Validate() error {
	if t.LightningBelow <= 0 {
		return fmt.Errorf("lightning bound must be positive, got %s", t.LightningBelow)
	}
	if t.QuickBelow <= t.LightningBelow {
		return fmt.Errorf("quick bound %s must exceed lightning bound %s", t.QuickBelow, t.LightningBelow)
	}
	return nil
}

// Classify maps a latency to its tier.
func (t Tiers) Classify(latency time.Duration) Category {
	switch {
	case latency < t.LightningBelow:
		return CategoryLightning
	case latency < t.QuickBelow:
		return CategoryQuick
	default:
		return CategoryGood
	}
}

// Classify maps a latency to its tier using DefaultTiers.
func Classify(latency time.Duration) Category {
	return DefaultTiers().Classify(latency)
}
