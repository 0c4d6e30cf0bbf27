package lumen

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GridConfig controls a GridField: a horizontal plane of evenly spaced lines
// sampled as points, fading out with distance from FadeOrigin.
type GridConfig struct {
	// Y is the height of the plane.
	Y float64
	// Spacing is the distance between neighbouring lines.
	Spacing float64
	// Skip drops lines that fall on multiples of Skip, so a coarser grid can
	// draw them instead. Zero keeps every line.
	Skip float64
	// Step is the sample spacing along each line.
	Step float64
	// FadeOrigin is the (x, z) the fade distance is measured from.
	FadeOrigin   Vec2
	FadeDistance float64
	FadeStrength float64
	Style        PointStyle
}

// GridCells returns the fine cell lines of the Computing preset's grids.
func GridCells(y float64) GridConfig {
	return GridConfig{
		Y:            y,
		Spacing:      1,
		Skip:         5,
		Step:         1,
		FadeOrigin:   Vec2{X: 0, Y: 20},
		FadeDistance: 50,
		FadeStrength: 5,
		Style: PointStyle{
			Color:     Hex(0x082f49),
			Size:      0.06,
			Opacity:   1,
			BlendMode: BlendNormal,
		},
	}
}

// GridSections returns the bright section lines drawn every five cells.
func GridSections(y float64) GridConfig {
	cfg := GridCells(y)
	cfg.Spacing = 5
	cfg.Skip = 0
	cfg.Step = 0.25
	cfg.Style.Color = Hex(0x06b6d4)
	cfg.Style.Size = 0.09
	return cfg
}

// GridField is a static grid plane. Points too faint to draw are dropped at
// construction, so the buffer holds only the visible disc around FadeOrigin.
type GridField struct {
	cfg     GridConfig
	buf     *ParticleBuffer
	weights []float32
}

// minGridWeight is the faintest sample a GridField keeps.
const minGridWeight = 1.0 / 255

// NewGridField samples the grid. It takes no random source.
func NewGridField(cfg GridConfig) *GridField {
	f := &GridField{cfg: cfg}
	if !(cfg.Spacing > 0) || !(cfg.Step > 0) || !(cfg.FadeDistance > 0) {
		f.buf = newParticleBuffer(0)
		return f
	}

	type sample struct {
		x, z float64
		w    float32
	}
	var samples []sample
	add := func(x, z float64) {
		if w := f.weight(x, z); w >= minGridWeight {
			samples = append(samples, sample{x, z, w})
		}
	}

	ox, oz, r := cfg.FadeOrigin.X, cfg.FadeOrigin.Y, cfg.FadeDistance
	first := func(o float64) float64 { return math.Ceil((o-r)/cfg.Spacing) * cfg.Spacing }
	steps := int(2 * r / cfg.Step)
	for line := first(oz); line <= oz+r; line += cfg.Spacing {
		if f.skipped(line) {
			continue
		}
		for k := 0; k <= steps; k++ {
			add(ox-r+float64(k)*cfg.Step, line)
		}
	}
	for line := first(ox); line <= ox+r; line += cfg.Spacing {
		if f.skipped(line) {
			continue
		}
		for k := 0; k <= steps; k++ {
			z := oz - r + float64(k)*cfg.Step
			if f.onLine(z) {
				continue // already sampled by the crossing line
			}
			add(line, z)
		}
	}

	f.buf = newParticleBuffer(len(samples))
	f.weights = make([]float32, len(samples))
	for i, s := range samples {
		f.buf.set(i, s.x, cfg.Y, s.z)
		f.weights[i] = s.w
	}
	return f
}

// weight is the fade at (x, z): (1 - d/FadeDistance)^FadeStrength.
func (f *GridField) weight(x, z float64) float32 {
	d := math.Hypot(x-f.cfg.FadeOrigin.X, z-f.cfg.FadeOrigin.Y) / f.cfg.FadeDistance
	return float32(math.Pow(1-math.Min(d, 1), f.cfg.FadeStrength))
}

func (f *GridField) onLine(v float64) bool {
	q := v / f.cfg.Spacing
	return math.Abs(q-math.Round(q)) < 1e-6 && !f.skipped(v)
}

func (f *GridField) skipped(v float64) bool {
	if !(f.cfg.Skip > 0) {
		return false
	}
	q := v / f.cfg.Skip
	return math.Abs(q-math.Round(q)) < 1e-6
}

// Buffer implements Generator.
func (f *GridField) Buffer() *ParticleBuffer { return f.buf }

// Style implements Generator.
func (f *GridField) Style() PointStyle { return f.cfg.Style }

// Weights implements Weighted.
func (f *GridField) Weights() []float32 { return f.weights }

// Update implements Generator. The grid never moves.
func (f *GridField) Update(_, _ float64) bool { return false }

// Transform implements Generator.
func (f *GridField) Transform() mgl32.Mat4 { return mgl32.Ident4() }
