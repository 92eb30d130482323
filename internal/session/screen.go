package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/omw/internal/config"
	"github.com/tomz197/omw/internal/draw"
	"github.com/tomz197/omw/internal/game"
	"github.com/tomz197/omw/internal/object"
)

// statusWidth is the width status lines are padded to, so a shorter line
// overwrites a longer one.
const statusWidth = 48

// hud is the text drawn over the play screen, laid out around the button.
type hud struct {
	scene  object.Scene
	title  *object.Text
	status *object.Text
	timer  *object.Text
	hint   *object.Text
}

func newHUD() *hud {
	h := &hud{
		title:  &object.Text{Width: statusWidth},
		status: &object.Text{Width: statusWidth},
		timer:  &object.Text{Width: statusWidth},
		hint:   &object.Text{Width: statusWidth},
	}
	h.scene.Add(h.title)
	h.scene.Add(h.status)
	h.scene.Add(h.timer)
	h.scene.Add(h.hint)
	return h
}

// layout puts the title on top, the status and timer above the button and
// the hint above the footer.
func (h *hud) layout(canvas *draw.Canvas, button *object.Button) {
	centerX, top := canvas.LogicalToTerminal(button.X, button.Y-button.Radius)
	h.title.CenterX, h.title.Row = centerX, 2
	h.status.CenterX, h.status.Row = centerX, max(top-4, 3)
	h.timer.CenterX, h.timer.Row = centerX, max(top-2, h.status.Row+1)
	h.hint.CenterX, h.hint.Row = centerX, canvas.TerminalHeight()-1
}

type styles struct {
	title   lipgloss.Style
	hint    lipgloss.Style
	armed   lipgloss.Style
	alert   lipgloss.Style
	latency lipgloss.Style
	bad     lipgloss.Style
	toast   lipgloss.Style
	box     lipgloss.Style
	tiers   map[game.Category]lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")),
		hint:    r.NewStyle().Faint(true),
		armed:   r.NewStyle().Foreground(lipgloss.Color("#f1c40f")),
		alert:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#e74c3c")),
		latency: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff41")),
		bad:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#e74c3c")),
		toast:   r.NewStyle().Foreground(lipgloss.Color("#16213e")).Background(lipgloss.Color("#f39c12")).Padding(0, 1),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#0f3460")).
			Padding(1, 3).
			Align(lipgloss.Center),
		tiers: map[game.Category]lipgloss.Style{
			game.CategoryLightning: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#f39c12")),
			game.CategoryQuick:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#3498db")),
			game.CategoryGood:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("#27ae60")),
		},
	}
}

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	cw := c.chunkWriter

	// On screen or inactivity transitions, do a full terminal clear so UI
	// elements from the previous screen don't persist.
	if c.state.forceClear || c.state.Screen != c.state.prevScreen || c.state.isInactive != c.state.wasInactive {
		cw.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevScreen = c.state.Screen
		c.state.wasInactive = c.state.isInactive
		c.state.forceClear = false
	}

	if c.ringPending.Swap(false) {
		cw.WriteString(draw.Bell)
	}

	c.canvas.Clear()
	if !c.state.isInactive && (c.state.Screen == ScreenPlay || c.state.Screen == ScreenResult) {
		ctx := object.DrawContext{
			Canvas: c.canvas,
			Writer: cw,
			View:   object.NewScreen(config.ViewWidth, config.ViewHeight),
		}
		if err := c.scene.Draw(ctx); err != nil {
			return err
		}
	}
	c.canvas.Render(cw)
	c.canvas.RenderBorder(cw)

	if err := c.drawUI(); err != nil {
		return err
	}

	return cw.Flush()
}

// drawUI draws the text overlay for the current screen.
func (c *Client) drawUI() error {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if c.state.Screen == ScreenShutdown {
		c.drawShutdownScreen(centerX, centerY)
		return nil
	}
	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return nil
	}

	switch c.state.Screen {
	case ScreenInstructions:
		c.drawInstructionsScreen(centerX, centerY)
	case ScreenPlay:
		if err := c.drawPlayScreen(termWidth, termHeight); err != nil {
			return err
		}
	case ScreenResult:
		if err := c.drawPlayScreen(termWidth, termHeight); err != nil {
			return err
		}
		c.drawResultScreen(centerX, centerY)
	}
	return c.drawToast(centerX, termHeight-2)
}

// writeBlock writes a multi-line block centred on (centerX, centerY).
func (c *Client) writeBlock(centerX, centerY int, block string) {
	lines := strings.Split(block, "\n")
	width := lipgloss.Width(block)
	col := max(centerX-width/2, 1)
	top := max(centerY-len(lines)/2, 1)
	for i, line := range lines {
		c.chunkWriter.WriteAt(col, top+i, line)
	}
}

func (c *Client) blinkOn() bool {
	return c.clock.Now().UnixMilli()/600%2 == 0
}

func formatMs(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

// drawPlayScreen draws the title, status, timer and footer around the button.
func (c *Client) drawPlayScreen(termWidth, termHeight int) error {
	st := c.styles
	snap := c.state.Snap

	var status, timer string
	switch snap.Phase {
	case game.PhaseIdle:
		if c.blinkOn() {
			status = ">>  Press ENTER to start  <<"
		}
	case game.PhaseArmed:
		status = st.armed.Render("Wait for it...")
	case game.PhaseAlertActive:
		status = st.alert.Render("!!  PRESS NOW  !!")
		timer = st.latency.Render(formatMs(snap.LiveElapsed))
	case game.PhaseResolved:
		if out := snap.Outcome; out != nil && out.Valid() {
			cat := c.ctrl.Tiers().Classify(out.Latency)
			status = st.tiers[cat].Render(string(cat))
			timer = st.latency.Render(formatMs(out.Latency))
		} else {
			status = st.bad.Render("Too soon!")
		}
	}
	c.hud.title.Value = st.title.Render(c.cfg.Brand.Title)
	c.hud.status.Value = status
	c.hud.timer.Value = timer
	c.hud.hint.Value = st.hint.Render("SPACE / click  press    R  reset    H  help    Q  quit")
	c.hud.layout(c.canvas, c.button)
	if err := c.hud.scene.Draw(object.DrawContext{Canvas: c.canvas, Writer: c.chunkWriter}); err != nil {
		return err
	}

	stats := c.hub.Stats()
	best := "-"
	if stats.Best > 0 {
		best = formatMs(stats.Best)
	}
	left := fmt.Sprintf("Online: %-4d Server best: %-8s", stats.Online, best)
	c.chunkWriter.WriteAt(2, termHeight, left)

	mine := "-"
	if c.state.Best > 0 {
		mine = formatMs(c.state.Best)
	}
	right := fmt.Sprintf("Tries: %-4d Your best: %-8s", c.state.Attempts, mine)
	c.chunkWriter.WriteAt(max(termWidth-len(right), 1), termHeight, right)
	return nil
}

// tierMessage is the encouragement shown under a valid result.
func tierMessage(cat game.Category) string {
	switch cat {
	case game.CategoryLightning:
		return "Amazing! You have lightning reflexes"
	case game.CategoryQuick:
		return "Excellent! Very good reaction speed"
	default:
		return "Well done! Keep practicing to improve"
	}
}

// drawResultScreen draws the result modal over the play screen.
func (c *Client) drawResultScreen(centerX, centerY int) {
	st := c.styles
	out := c.state.Result
	if out == nil {
		return
	}

	var lines []string
	if out.Valid() {
		cat := c.ctrl.Tiers().Classify(out.Latency)
		lines = []string{
			st.title.Render("Reaction Time!"),
			"",
			st.latency.Render(formatMs(out.Latency)),
			st.tiers[cat].Render(string(cat)),
			tierMessage(cat),
			"",
			"X  copy post link      C  copy card link",
			"ENTER  play again      H  how to play",
		}
	} else {
		lines = []string{
			st.bad.Render("Too Soon!"),
			"",
			"You pressed before the alert signal appeared!",
			"Wait for the alert before pressing the OMW button.",
			"",
			"ENTER  try again       H  how to play",
		}
	}
	c.writeBlock(centerX, centerY, st.box.Render(strings.Join(lines, "\n")))
}

// drawInstructionsScreen draws the how-to-play modal.
func (c *Client) drawInstructionsScreen(centerX, centerY int) {
	st := c.styles
	tiers := c.ctrl.Tiers()
	prompt := ""
	if c.blinkOn() {
		prompt = ">>  Press ENTER to start  <<"
	}
	lines := []string{
		st.title.Render("On My Way - Reaction Test"),
		"",
		"Welcome, adventurer!",
		"",
		"Keep your eyes on the OMW button.",
		"At any moment an " + st.alert.Render("ALERT SIGNAL") + " will appear.",
		"Press SPACE or click the button as fast as possible!",
		st.bad.Render("WARNING!") + " If you press before the alert, you lose!",
		"",
		"Reaction categories:",
		st.tiers[game.CategoryLightning].Render(string(game.CategoryLightning)) +
			fmt.Sprintf("  < %s", formatMs(tiers.LightningBelow)),
		st.tiers[game.CategoryQuick].Render(string(game.CategoryQuick)) +
			fmt.Sprintf("  %s - %s", formatMs(tiers.LightningBelow), formatMs(tiers.QuickBelow)),
		st.tiers[game.CategoryGood].Render(string(game.CategoryGood)) +
			fmt.Sprintf("  >= %s", formatMs(tiers.QuickBelow)),
		"",
		prompt,
	}
	c.writeBlock(centerX, centerY, st.box.Render(strings.Join(lines, "\n")))
}

func (c *Client) drawToast(centerX, row int) error {
	msg := c.state.Toast(c.clock.Now())
	if msg != "" {
		msg = c.styles.toast.Render(msg)
	}
	toast := object.Text{CenterX: centerX, Row: row, Width: statusWidth, Value: msg}
	return toast.Draw(object.DrawContext{Writer: c.chunkWriter})
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	cw := c.chunkWriter
	cw.WriteCentered(centerX, centerY-2, draw.ColorBold, "INACTIVITY WARNING")

	remaining := time.Duration(config.InactivityDisconnectUser)*time.Second - c.clock.Since(c.state.lastInput)
	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(remaining.Seconds()),
	)
	cw.WriteCentered(centerX, centerY, "", msg)
	cw.WriteCentered(centerX, centerY+2, "", "Press any key to continue")
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	cw := c.chunkWriter
	cw.WriteCentered(centerX, centerY-3, draw.ColorBold, "SERVER SHUTTING DOWN")
	cw.WriteCentered(centerX, centerY-1, "", "The server is restarting for maintenance.")
	cw.WriteCentered(centerX, centerY, "", "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	cw.WriteCentered(centerX, centerY+2, "", fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	cw.WriteCentered(centerX, centerY+4, draw.ColorDim, "Press Q to disconnect now")
}
