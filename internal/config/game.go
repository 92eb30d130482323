package config

import "time"

// Game tunables that are not exposed through the environment.
// Grouped the same way the frame loop uses them.

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// View resolution - logical canvas units; rendering scales to the terminal.
const (
	ViewWidth  = 120 // Logical viewport width
	ViewHeight = 80  // Logical viewport height (in sub-pixels, so 40 terminal rows)
)

// Max render resolution - larger terminals get a centred, bordered area.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 50
)

// Button
const (
	ButtonRadius  = 22.0 // Logical units
	ButtonCenterY = 0.6  // Fraction of the view height (button sits below centre)
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Notifications
const (
	ToastSeconds = 3.0 // How long a soft notification stays on screen
)
