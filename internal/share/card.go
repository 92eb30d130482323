package share

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Card dimensions match the social network's large preview.
const (
	CardWidth  = 1200
	CardHeight = 675
)

var (
	cardTop     = color.RGBA{0x1a, 0x1a, 0x2e, 0xff}
	cardBottom  = color.RGBA{0x16, 0x21, 0x3e, 0xff}
	cardBorder  = color.RGBA{0x0f, 0x34, 0x60, 0xff}
	cardWhite   = color.RGBA{0xff, 0xff, 0xff, 0xff}
	cardShadow  = color.RGBA{0x00, 0x00, 0x00, 0xff}
	cardLatency = color.RGBA{0x00, 0xff, 0x41, 0xff}
	cardTier    = color.RGBA{0xf3, 0x9c, 0x12, 0xff}
	cardGlow    = color.RGBA{0x00, 0x33, 0x00, 0xff}
)

// cardLine is one centred line of text on the card.
type cardLine struct {
	text     string
	baseline int // Y of the baseline in card pixels
	scale    int // Integer upscale of the 7x13 face
	fg       color.Color
	shadow   color.Color
}

// RenderCard writes the PNG result card for r to w.
func RenderCard(w io.Writer, r Result, b Brand) error {
	img := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	fillGradient(img, cardTop, cardBottom)
	strokeRect(img, image.Rect(20, 20, CardWidth-20, CardHeight-20), 6, cardBorder)

	lines := []cardLine{
		{text: b.Title, baseline: 120, scale: 5, fg: cardWhite, shadow: cardShadow},
		{text: b.Subtitle, baseline: 180, scale: 5, fg: cardWhite, shadow: cardShadow},
		{text: fmt.Sprintf("%dms", r.LatencyMs()), baseline: 300, scale: 9, fg: cardLatency, shadow: cardGlow},
		{text: string(r.Category), baseline: 370, scale: 4, fg: cardTier, shadow: cardShadow},
		{text: "Test your reaction time!", baseline: 480, scale: 3, fg: cardWhite, shadow: cardShadow},
		{text: b.Handle, baseline: 530, scale: 3, fg: cardWhite, shadow: cardShadow},
	}
	for _, l := range lines {
		if l.text == "" {
			continue
		}
		drawCentered(img, l)
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode card: %w", err)
	}
	return nil
}

func fillGradient(img *image.RGBA, from, to color.RGBA) {
	bounds := img.Bounds()
	h := bounds.Dy()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		t := float64(y-bounds.Min.Y) / float64(h-1)
		c := color.RGBA{
			R: lerp(from.R, to.R, t),
			G: lerp(from.G, to.G, t),
			B: lerp(from.B, to.B, t),
			A: 0xff,
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

func strokeRect(img *image.RGBA, r image.Rectangle, width int, c color.Color) {
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e, src, image.Point{}, draw.Src)
	}
}

// drawCentered renders l with the bitmap face and scales it up so it reads
// at card size. The shadow is drawn first, offset down and right.
func drawCentered(dst *image.RGBA, l cardLine) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, l.text).Ceil()
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	height := ascent + metrics.Descent.Ceil()

	scaledW := width * l.scale
	scaledH := height * l.scale
	x := (dst.Bounds().Dx() - scaledW) / 2
	y := l.baseline - ascent*l.scale

	offset := l.scale / 2
	if offset < 1 {
		offset = 1
	}
	for _, pass := range []struct {
		c  color.Color
		dx int
	}{{l.shadow, offset}, {l.fg, 0}} {
		glyphs := image.NewRGBA(image.Rect(0, 0, width, height))
		d := &font.Drawer{
			Dst:  glyphs,
			Src:  image.NewUniform(pass.c),
			Face: face,
			Dot:  fixed.P(0, ascent),
		}
		d.DrawString(l.text)
		target := image.Rect(x+pass.dx, y+pass.dx, x+pass.dx+scaledW, y+pass.dx+scaledH)
		draw.NearestNeighbor.Scale(dst, target, glyphs, glyphs.Bounds(), draw.Over, nil)
	}
}
