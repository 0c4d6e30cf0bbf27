package lumen

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Scanline is a faint horizontal line that sweeps down the frame on a loop,
// drawn over the finished background.
type Scanline struct {
	Color   Color
	Opacity float64
	// Period is the time for one sweep from just above the top edge to just
	// below the bottom edge, in seconds.
	Period float64
	// Thickness is the line height in pixels.
	Thickness float64
}

// DefaultScanline returns the Computing backdrop's overlay.
func DefaultScanline() Scanline {
	return Scanline{Color: Hex(0x22d3ee), Opacity: 0.03, Period: 8, Thickness: 1}
}

// Y returns the top of the line in a frame of height h at time t. The sweep
// runs from -5% to 105% of h.
func (s Scanline) Y(t float64, h int) float64 {
	if !(s.Period > 0) || !finite(t) {
		return -0.05 * float64(h)
	}
	phase := math.Mod(t, s.Period) / s.Period
	if phase < 0 {
		phase++
	}
	return (-0.05 + 1.1*phase) * float64(h)
}

// scanlineLayer draws a Scanline with a 1x1 white texture.
type scanlineLayer struct {
	line  Scanline
	pixel *ebiten.Image
	op    ebiten.DrawImageOptions
}

func (l *scanlineLayer) Draw(dst *ebiten.Image, t float64) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || l.line.Opacity <= 0 {
		return
	}
	if l.pixel == nil {
		l.pixel = ebiten.NewImage(1, 1)
		l.pixel.Fill(Hex(0xffffff).RGBA8())
	}
	op := &l.op
	op.GeoM.Reset()
	op.GeoM.Scale(float64(w), max(l.line.Thickness, 1))
	op.GeoM.Translate(float64(b.Min.X), float64(b.Min.Y)+l.line.Y(t, h))
	op.ColorScale.Reset()
	a := float32(clamp01(l.line.Opacity))
	c := l.line.Color
	op.ColorScale.Scale(float32(c.R)*a, float32(c.G)*a, float32(c.B)*a, a)
	op.Blend = BlendNormal.EbitenBlend()
	dst.DrawImage(l.pixel, op)
}

func (l *scanlineLayer) Dispose() {
	if l.pixel != nil {
		l.pixel.Deallocate()
		l.pixel = nil
	}
}
