package lumen

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// StreamConfig controls a StreamField.
type StreamConfig struct {
	Count int
	// Spread is the side of the square the streams fall in, centered on 0.
	Spread float64
	// Y is the vertical domain. Particles falling below Y.Min re-enter at the top.
	Y Range
	// FallSpeed is the per-particle distance fallen per 60 Hz frame.
	FallSpeed Range
	Style     PointStyle
}

// DefaultStreamConfig returns the binary streams used by the Computing preset.
func DefaultStreamConfig(count int) StreamConfig {
	return StreamConfig{
		Count:     count,
		Spread:    60,
		Y:         Range{Min: -30, Max: 30},
		FallSpeed: Range{Min: 0.05, Max: 0.1},
		Style: PointStyle{
			Color:     Hex(0x06b6d4),
			Size:      0.08,
			Opacity:   0.3,
			BlendMode: BlendAdd,
		},
	}
}

// StreamField is a rain of particles falling through a vertical domain with
// toroidal recycling: only y changes, x and z are fixed for life.
type StreamField struct {
	cfg   StreamConfig
	buf   *ParticleBuffer
	speed []float32
}

// NewStreamField builds a stream field with positions and fall speeds drawn from rng.
func NewStreamField(cfg StreamConfig, rng *rand.Rand) *StreamField {
	if cfg.Y.Max < cfg.Y.Min {
		cfg.Y.Min, cfg.Y.Max = cfg.Y.Max, cfg.Y.Min
	}
	f := &StreamField{cfg: cfg, buf: newParticleBuffer(cfg.Count)}
	n := f.buf.Count()
	f.speed = make([]float32, n)
	for i := 0; i < n; i++ {
		f.buf.set(i, centered(rng, cfg.Spread), cfg.Y.Random(rng), centered(rng, cfg.Spread))
		f.speed[i] = float32(cfg.FallSpeed.Random(rng))
	}
	return f
}

// Buffer implements Generator.
func (f *StreamField) Buffer() *ParticleBuffer { return f.buf }

// Style implements Generator.
func (f *StreamField) Style() PointStyle { return f.cfg.Style }

// Transform implements Generator.
func (f *StreamField) Transform() mgl32.Mat4 { return mgl32.Ident4() }

// Update implements Generator.
func (f *StreamField) Update(_, dt float64) bool {
	dt = clampDelta(dt)
	if dt == 0 || len(f.speed) == 0 {
		return false
	}
	frames := dt * referenceFPS
	lo, hi := f.cfg.Y.Min, f.cfg.Y.Max
	span := hi - lo
	pos := f.buf.pos
	for i, s := range f.speed {
		j := i*3 + 1
		y := float64(pos[j]) - float64(s)*frames
		if y < lo {
			if span > 0 {
				y = hi - math.Mod(lo-y, span)
			} else {
				y = hi
			}
		}
		pos[j] = float32(y)
	}
	return true
}
