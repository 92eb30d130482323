package game

// Cue is an audio intent issued by the controller. The controller never
// touches playback state itself.
type Cue int

const (
	CueAmbient       Cue = iota // Begin ambient track if it is not playing
	CueAlarm                    // Switch from ambient to the alarm
	CueResumeAmbient            // Stop the alarm and resume ambient
)

func (c Cue) String() string {
	switch c {
	case CueAmbient:
		return "ambient"
	case CueAlarm:
		return "alarm"
	case CueResumeAmbient:
		return "resume_ambient"
	default:
		return "unknown"
	}
}

// CueSink receives audio intents. Cue is called with the controller lock
// held and must not block or call back into the controller.
type CueSink interface {
	Cue(c Cue)
}

// CueFunc adapts a function to CueSink.
type CueFunc func(c Cue)

// Cue implements CueSink.
func (f CueFunc) Cue(c Cue) { f(c) }

// NopCues discards every intent.
var NopCues CueSink = CueFunc(func(Cue) {})
