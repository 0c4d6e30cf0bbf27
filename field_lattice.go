package lumen

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// goldenAngle spreads per-node phases without repeating.
const goldenAngle = 2.399963229728653

// LatticeConfig controls a LatticeField.
type LatticeConfig struct {
	Count int
	// Scale multiplies the base placement extents (15, 10, 10).
	Scale float64
	// FloatSpeed and FloatIntensity shape each node's vertical oscillation.
	FloatSpeed     float64
	FloatIntensity float64
	// RotationSpeed is the group rotation rate around Y in radians per second.
	RotationSpeed float64
	Style         PointStyle
}

// DefaultLatticeConfig returns the technical lattice used by the Computing preset.
func DefaultLatticeConfig(count int) LatticeConfig {
	return LatticeConfig{
		Count:          count,
		Scale:          1,
		FloatSpeed:     2,
		FloatIntensity: 1,
		RotationSpeed:  0.05,
		Style: PointStyle{
			Color:     Hex(0x38bdf8),
			Size:      0.4,
			Opacity:   1,
			BlendMode: BlendAdd,
			Lit:       true,
		},
	}
}

// LatticeField is a small set of nodes placed by a fixed trigonometric
// function of their index, so the arrangement is identical on every mount.
// Each node floats independently and the group rotates slowly.
type LatticeField struct {
	cfg   LatticeConfig
	buf   *ParticleBuffer
	base  []mgl32.Vec3
	phase []float64
	clock float64
}

// NewLatticeField builds a lattice. It takes no random source.
func NewLatticeField(cfg LatticeConfig) *LatticeField {
	if cfg.Scale == 0 {
		cfg.Scale = 1
	}
	f := &LatticeField{cfg: cfg, buf: newParticleBuffer(cfg.Count)}
	n := f.buf.Count()
	f.base = make([]mgl32.Vec3, n)
	f.phase = make([]float64, n)
	for i := 0; i < n; i++ {
		fi := float64(i)
		f.base[i] = mgl32.Vec3{
			float32(math.Sin(fi) * 15 * cfg.Scale),
			float32(math.Cos(fi) * 10 * cfg.Scale),
			float32(math.Sin(fi*0.5) * 10 * cfg.Scale),
		}
		f.phase[i] = math.Mod(fi*goldenAngle, 2*math.Pi)
	}
	f.place()
	return f
}

// Buffer implements Generator.
func (f *LatticeField) Buffer() *ParticleBuffer { return f.buf }

// Style implements Generator.
func (f *LatticeField) Style() PointStyle { return f.cfg.Style }

// Update implements Generator. Oscillation runs on the field's own clock,
// advanced by the clamped dt.
func (f *LatticeField) Update(_, dt float64) bool {
	dt = clampDelta(dt)
	if dt == 0 || len(f.base) == 0 {
		return false
	}
	f.clock += dt
	f.place()
	return true
}

func (f *LatticeField) place() {
	m := FloatMotion{Speed: f.cfg.FloatSpeed, FloatIntensity: f.cfg.FloatIntensity}
	for i, b := range f.base {
		dy := m.Lift(f.clock, f.phase[i])
		f.buf.set(i, float64(b[0]), float64(b[1])+dy, float64(b[2]))
	}
}

// Transform implements Generator.
func (f *LatticeField) Transform() mgl32.Mat4 {
	return mgl32.HomogRotate3DY(float32(math.Mod(f.clock*f.cfg.RotationSpeed, 2*math.Pi)))
}
