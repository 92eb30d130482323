package object

import (
	"time"

	"github.com/tomz197/omw/internal/draw"
	"github.com/tomz197/omw/internal/physics"
)

// ButtonLook selects how the button is drawn.
type ButtonLook int

const (
	ButtonIdle  ButtonLook = iota // Outline, waiting to be started
	ButtonArmed                   // Outline, waiting for the alert
	ButtonAlert                   // Filled red, press now
	ButtonDone                    // Filled, trial resolved
)

// pressAnimation is how long the button stays shrunk after a press.
const pressAnimation = 120 * time.Millisecond

// Button is the round OMW button.
type Button struct {
	physics.Circle
	Look    ButtonLook
	pressed time.Duration // Remaining press animation
}

// NewButton creates a button centred at (x, y).
func NewButton(x, y, radius float64) *Button {
	return &Button{Circle: physics.Circle{X: x, Y: y, Radius: radius}}
}

// hitMargin absorbs the quantisation of pointer positions to terminal cells.
const hitMargin = 2.0

// Hit reports whether the logical point (x, y) lands on the button.
func (b *Button) Hit(x, y float64) bool {
	return b.Grow(hitMargin).Contains(x, y)
}

// Press starts the press animation.
func (b *Button) Press() {
	b.pressed = pressAnimation
}

// Pressed reports whether the press animation is running.
func (b *Button) Pressed() bool {
	return b.pressed > 0
}

// Update advances the press animation. The button is never removed.
func (b *Button) Update(ctx UpdateContext) (bool, error) {
	if b.pressed > 0 {
		b.pressed -= ctx.Delta
		if b.pressed < 0 {
			b.pressed = 0
		}
	}
	return false, nil
}

// Draw draws the button on the canvas and sets the canvas style for its look.
func (b *Button) Draw(ctx DrawContext) error {
	radius := b.Radius
	if b.pressed > 0 {
		radius *= 0.9
	}

	switch b.Look {
	case ButtonAlert:
		ctx.Canvas.SetStyle(draw.ColorRed)
		ctx.Canvas.DrawCircle(b.X, b.Y, radius, true)
	case ButtonDone:
		ctx.Canvas.SetStyle(draw.ColorGreen)
		ctx.Canvas.DrawCircle(b.X, b.Y, radius, true)
	case ButtonArmed:
		ctx.Canvas.SetStyle(draw.ColorYellow)
		ctx.Canvas.DrawCircle(b.X, b.Y, radius, false)
		ctx.Canvas.DrawCircle(b.X, b.Y, radius*0.8, false)
	default:
		ctx.Canvas.SetStyle("")
		ctx.Canvas.DrawCircle(b.X, b.Y, radius, false)
	}
	return nil
}
