package lumen

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// DriftConfig controls a DriftField.
type DriftConfig struct {
	Count int
	// Spread is the side of the cube particles are scattered in.
	Spread float64
	// PointerInfluence is how far, in world units, the field shifts toward a
	// pointer at the edge of the screen.
	PointerInfluence float64
	// PointerLerp is the fraction of the remaining distance closed per 60 Hz frame.
	PointerLerp float64
	Style       PointStyle
}

// DefaultDriftConfig returns the ambient data particles used by the Elite preset.
func DefaultDriftConfig(count int) DriftConfig {
	return DriftConfig{
		Count:            count,
		Spread:           50,
		PointerInfluence: 2,
		PointerLerp:      0.05,
		Style: PointStyle{
			Color:     Hex(0x38bdf8),
			Size:      0.15,
			Opacity:   0.4,
			BlendMode: BlendAdd,
		},
	}
}

// DriftField is a static cloud that slowly turns and leans toward the
// pointer. All motion is a bulk transform.
type DriftField struct {
	cfg              DriftConfig
	buf              *ParticleBuffer
	clock            float64
	offX, offY       float64
	targetX, targetY float64
}

// NewDriftField builds a drift cloud with positions drawn from rng.
func NewDriftField(cfg DriftConfig, rng *rand.Rand) *DriftField {
	f := &DriftField{cfg: cfg, buf: newParticleBuffer(cfg.Count)}
	for i := 0; i < f.buf.Count(); i++ {
		f.buf.set(i, centered(rng, cfg.Spread), centered(rng, cfg.Spread), centered(rng, cfg.Spread))
	}
	return f
}

// Buffer implements Generator.
func (f *DriftField) Buffer() *ParticleBuffer { return f.buf }

// Style implements Generator.
func (f *DriftField) Style() PointStyle { return f.cfg.Style }

// SetPointer implements PointerFollower.
func (f *DriftField) SetPointer(x, y float64) {
	if !finite(x) || !finite(y) {
		return
	}
	f.targetX = clamp(x, -1, 1) * f.cfg.PointerInfluence
	f.targetY = clamp(y, -1, 1) * f.cfg.PointerInfluence
}

// Offset returns the current pointer-follow translation.
func (f *DriftField) Offset() (x, y float64) { return f.offX, f.offY }

// Update implements Generator. The buffer is never dirtied.
func (f *DriftField) Update(_, dt float64) bool {
	dt = clampDelta(dt)
	f.clock += dt
	k := frameLerp(f.cfg.PointerLerp, dt)
	f.offX = lerp(f.offX, f.targetX, k)
	f.offY = lerp(f.offY, f.targetY, k)
	return false
}

// Transform implements Generator.
func (f *DriftField) Transform() mgl32.Mat4 {
	rotY := float32(math.Mod(f.clock*0.05, 2*math.Pi))
	rotX := float32(math.Sin(f.clock*0.1) * 0.1)
	return mgl32.Translate3D(float32(f.offX), float32(f.offY), 0).
		Mul4(mgl32.HomogRotate3DY(rotY)).
		Mul4(mgl32.HomogRotate3DX(rotX))
}
