// Package session runs one player's game: it reads terminal input, drives a
// reaction controller and renders the screens.
package session

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"github.com/tomz197/omw/internal/audio"
	"github.com/tomz197/omw/internal/config"
	"github.com/tomz197/omw/internal/draw"
	"github.com/tomz197/omw/internal/game"
	"github.com/tomz197/omw/internal/hub"
	"github.com/tomz197/omw/internal/input"
	"github.com/tomz197/omw/internal/object"
	"github.com/tomz197/omw/internal/share"
)

// Client handles rendering and input for a single connection.
type Client struct {
	hub    hub.Hub
	handle *hub.Handle
	cfg    config.Config
	clock  clockwork.Clock
	log    zerolog.Logger

	ctrl      *game.Controller
	audio     *audio.Coordinator
	bell      *audio.BellPlayer
	clipboard *share.Clipboard

	state       *State
	scene       object.Scene
	hud         *hud
	button      *object.Button
	canvas      *draw.Canvas
	chunkWriter *draw.ChunkWriter // Accumulates UI text for chunked output
	styles      styles
	writer      io.Writer
	inputStream *input.Stream

	termSizeFunc draw.TermSizeFunc

	changed     chan struct{}      // Controller state changed since last read
	resultCh    chan uint64        // Trial whose result delay elapsed
	noticeCh    chan string        // Soft notifications from other goroutines
	resultTimer clockwork.Timer
	ringPending atomic.Bool
	lastFrame   time.Time
}

// Options configures the client.
type Options struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Config       config.Config
	Clock        clockwork.Clock
	Logger       zerolog.Logger
	Delay        game.DelaySource // Overrides the configured delay range
	Tmux         bool             // Wrap clipboard sequences for tmux
	ColorProfile termenv.Profile
}

// NewClient creates a new client registered with the given hub.
func NewClient(h hub.Hub, r io.Reader, w io.Writer, opts Options) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	handle := h.Register(opts.Username)
	log := opts.Logger.With().Str("session", handle.ID).Logger()

	termWidth, termHeight, err := termSizeFunc()
	if err != nil {
		termWidth, termHeight = config.ViewWidth, config.ViewHeight/2
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.ViewWidth, config.ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)
	chunkWriter := draw.NewChunkWriter(w, offsetCol, offsetRow)

	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(opts.ColorProfile)

	c := &Client{
		hub:          h,
		handle:       handle,
		cfg:          opts.Config,
		clock:        clock,
		log:          log,
		state:        NewState(clock.Now()),
		lastFrame:    clock.Now(),
		canvas:       canvas,
		chunkWriter:  chunkWriter,
		styles:       newStyles(renderer),
		hud:          newHUD(),
		writer:       w,
		inputStream:  input.StartStream(r, clock),
		termSizeFunc: termSizeFunc,
		changed:      make(chan struct{}, 1),
		resultCh:     make(chan uint64, 1),
		noticeCh:     make(chan string, 4),
		button: object.NewButton(
			config.ViewWidth/2,
			config.ViewHeight*config.ButtonCenterY,
			config.ButtonRadius,
		),
	}
	c.scene.Add(c.button)

	c.bell = audio.NewBellPlayer(func() { c.ringPending.Store(true) }, clock, 0)
	c.audio = audio.NewCoordinator(c.bell,
		audio.WithLogger(log),
		audio.WithErrorHandler(func(err error) { c.notify("Audio unavailable") }),
	)
	c.clipboard = share.NewClipboard(chunkWriter, opts.Tmux)

	delay := opts.Delay
	if delay == nil {
		delay = game.UniformDelay{Range: opts.Config.Game.DelayRange()}
	}
	c.ctrl = game.New(game.Options{
		Clock:        clock,
		Delay:        delay,
		Tiers:        opts.Config.Game.Tiers(),
		Cues:         c.audio,
		Observer:     c.observe,
		TickInterval: opts.Config.Game.TickInterval,
		Logger:       log,
	})
	return c
}

// Run starts the client loop. Blocks until the client disconnects or the hub
// shuts the session down.
func (c *Client) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.audio.Run(ctx)

	draw.HideCursor(c.writer)
	draw.EnableMouse(c.writer)
	draw.ClearScreen(c.writer)
	defer func() {
		draw.DisableMouse(c.writer)
		draw.ShowCursor(c.writer)
	}()

	frames := c.clock.NewTicker(config.ClientTargetFrameTime)
	defer frames.Stop()
	c.lastFrame = c.clock.Now()

	events := c.inputStream.Events()
	var err error
	for c.state.Running && err == nil {
		select {
		case ev, ok := <-events:
			if !ok {
				c.state.Running = false
				break
			}
			c.handleInput(ev)
		case <-c.changed:
			c.state.Snap = c.ctrl.Snapshot()
		case trial := <-c.resultCh:
			c.showResult(trial)
		case msg := <-c.noticeCh:
			c.toast(msg)
		case ev, ok := <-c.handle.Events:
			if !ok {
				c.state.Running = false
				break
			}
			c.handleHubEvent(ev)
		case <-frames.Chan():
			err = c.frame()
		}
	}

	c.stopResultTimer()
	c.ctrl.Close()
	c.scene.Clear()
	c.hub.Unregister(c.handle.ID)

	draw.ClearScreen(c.writer)
	if err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	return nil
}

// observe is the controller observer. It runs on controller goroutines, so
// it only wakes the loop; the loop reads a fresh snapshot itself because
// notifications from different goroutines may arrive out of order.
func (c *Client) observe(game.Snapshot) {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

// notify queues a soft notification from any goroutine.
func (c *Client) notify(msg string) {
	select {
	case c.noticeCh <- msg:
	default:
	}
}

func (c *Client) toast(msg string) {
	c.state.toast = msg
	c.state.toastUntil = c.clock.Now().Add(time.Duration(config.ToastSeconds * float64(time.Second)))
}

// handleInput dispatches a single input event. Presses reach the controller
// as soon as they are dequeued, not on the next frame.
func (c *Client) handleInput(ev input.Event) {
	c.state.lastInput = c.clock.Now()
	if c.state.isInactive {
		c.state.isInactive = false
		// A press during an alert is still judged; any other key only
		// dismisses the warning.
		if !c.isAlertPress(ev) {
			return
		}
	}

	if ev.Key == input.KeyQuit {
		c.state.Running = false
		return
	}

	switch c.state.Screen {
	case ScreenShutdown:
		return
	case ScreenInstructions:
		switch ev.Key {
		case input.KeyStart, input.KeyPress:
			c.startTrial()
		case input.KeyEscape:
			c.setScreen(ScreenPlay)
		}
	case ScreenPlay:
		switch ev.Key {
		case input.KeyPress:
			c.press(ev.At)
		case input.KeyClick:
			if c.clickHitsButton(ev) {
				c.press(ev.At)
			}
		case input.KeyStart:
			if c.state.Snap.Phase == game.PhaseIdle {
				c.startTrial()
			}
		case input.KeyReset:
			c.reset()
		case input.KeyHelp:
			c.showInstructions()
		}
	case ScreenResult:
		switch ev.Key {
		case input.KeyStart, input.KeyPress:
			c.startTrial()
		case input.KeyShare:
			c.copyShareLink()
		case input.KeyCard:
			c.copyCardLink()
		case input.KeyReset, input.KeyEscape:
			c.reset()
		case input.KeyHelp:
			c.showInstructions()
		}
	}
}

func (c *Client) clickHitsButton(ev input.Event) bool {
	x, y, ok := c.canvas.TerminalToLogical(ev.Col, ev.Row)
	return ok && c.button.Hit(x, y)
}

// isAlertPress reports whether ev presses the button while the alert is up.
func (c *Client) isAlertPress(ev input.Event) bool {
	if c.state.Screen != ScreenPlay || c.state.Snap.Phase != game.PhaseAlertActive {
		return false
	}
	return ev.Key == input.KeyPress || (ev.Key == input.KeyClick && c.clickHitsButton(ev))
}

// startTrial arms a new trial and switches to the play screen.
func (c *Client) startTrial() {
	c.stopResultTimer()
	c.state.Result = nil
	c.bell.Click()
	c.ctrl.StartTrial()
	c.state.Snap = c.ctrl.Snapshot()
	c.button.Look = object.ButtonArmed
	c.setScreen(ScreenPlay)
}

// press forwards a press made at to the controller and, if it resolved the
// trial, schedules the result screen. A zero at means now.
func (c *Client) press(at time.Time) {
	if at.IsZero() {
		at = c.clock.Now()
	}
	c.button.Press()
	out, ok := c.ctrl.PressAt(at)
	if !ok {
		return
	}
	c.bell.Click()
	snap := c.ctrl.Snapshot()
	c.state.Snap = snap
	c.state.record(out, snap.Trial)
	c.hub.Report(c.handle.ID, out)

	c.button.Look = object.ButtonDone
	if out.Valid() {
		object.SpawnBurst(c.button.X, c.button.Y, c.button.Radius, 40, 40, 0.8, &c.scene)
	}

	c.log.Info().
		Stringer("outcome", out.Kind).
		Int64("latency_ms", out.LatencyMs()).
		Msg("trial resolved")

	trial := snap.Trial
	delay := c.cfg.Game.ResultDelay
	if delay <= 0 {
		c.showResult(trial)
		return
	}
	c.resultTimer = c.clock.AfterFunc(delay, func() {
		select {
		case c.resultCh <- trial:
		default:
		}
	})
}

// showResult opens the result modal for trial, unless the player has moved on.
func (c *Client) showResult(trial uint64) {
	if c.state.Result == nil || c.state.resultTrial != trial || c.state.Screen != ScreenPlay {
		return
	}
	c.resultTimer = nil
	c.setScreen(ScreenResult)
}

func (c *Client) stopResultTimer() {
	if c.resultTimer != nil {
		c.resultTimer.Stop()
		c.resultTimer = nil
	}
	select {
	case <-c.resultCh:
	default:
	}
}

// reset cancels whatever is in flight and returns to the idle play screen.
func (c *Client) reset() {
	c.stopResultTimer()
	c.state.Result = nil
	c.ctrl.Reset()
	c.state.Snap = c.ctrl.Snapshot()
	c.button.Look = object.ButtonIdle
	c.setScreen(ScreenPlay)
}

// showInstructions opens the how-to-play screen. A trial in flight is reset.
func (c *Client) showInstructions() {
	c.bell.Click()
	if c.state.Snap.Phase != game.PhaseIdle || c.state.Result != nil {
		c.reset()
	}
	c.setScreen(ScreenInstructions)
}

func (c *Client) copyShareLink() {
	res, ok := c.shareResult()
	if !ok {
		return
	}
	text := share.PostText(res, c.cfg.PublicURL, c.cfg.Brand.Share())
	if err := c.clipboard.Copy(share.IntentURL(text)); err != nil {
		c.log.Warn().Err(err).Msg("copy share link")
		c.toast("Could not copy the link")
		return
	}
	c.toast("Post link copied to clipboard")
}

func (c *Client) copyCardLink() {
	res, ok := c.shareResult()
	if !ok {
		return
	}
	if err := c.clipboard.Copy(share.CardURL(c.cfg.PublicURL, res)); err != nil {
		c.log.Warn().Err(err).Msg("copy card link")
		c.toast("Could not copy the link")
		return
	}
	c.toast("Card link copied to clipboard")
}

func (c *Client) shareResult() (share.Result, bool) {
	if c.state.Result == nil {
		return share.Result{}, false
	}
	res, err := share.NewResult(*c.state.Result, c.ctrl.Tiers())
	if err != nil {
		c.toast("Only valid reactions can be shared")
		return share.Result{}, false
	}
	return res, true
}

// handleHubEvent handles an event from the hub.
func (c *Client) handleHubEvent(ev hub.Event) {
	switch ev.Type {
	case hub.EventShutdown:
		c.stopResultTimer()
		c.ctrl.Close()
		c.state.Snap = c.ctrl.Snapshot()
		c.state.shutdownTimer = config.ShutdownDisplaySeconds
		c.setScreen(ScreenShutdown)
	}
}

func (c *Client) setScreen(s Screen) {
	if c.state.Screen == s {
		return
	}
	c.log.Debug().Stringer("from", c.state.Screen).Stringer("to", s).Msg("screen")
	c.state.Screen = s
}

// frame advances timers and draws one frame.
func (c *Client) frame() error {
	now := c.clock.Now()
	delta := now.Sub(c.lastFrame)
	c.lastFrame = now

	idle := now.Sub(c.state.lastInput)
	switch {
	case idle > time.Duration(config.InactivityDisconnectUser)*time.Second:
		c.log.Info().Dur("idle", idle).Msg("disconnecting inactive session")
		c.state.Running = false
		return nil
	case idle > time.Duration(config.InactivityWarnUser)*time.Second:
		c.state.isInactive = true
	}

	if c.state.Screen == ScreenShutdown {
		c.state.shutdownTimer -= delta.Seconds()
		if c.state.shutdownTimer <= 0 {
			c.state.Running = false
			return nil
		}
	}

	c.updateButtonLook()
	if err := c.scene.Update(delta); err != nil {
		return err
	}
	c.updateScreen()
	return c.drawFrame()
}

func (c *Client) updateButtonLook() {
	switch c.state.Snap.Phase {
	case game.PhaseIdle:
		c.button.Look = object.ButtonIdle
	case game.PhaseArmed:
		c.button.Look = object.ButtonArmed
	case game.PhaseAlertActive:
		c.button.Look = object.ButtonAlert
	case game.PhaseResolved:
		c.button.Look = object.ButtonDone
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		c.state.forceClear = true
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}
