package lumen

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxFrameDelta caps the delta time a generator integrates in one update. A
// tab resuming after a long suspension produces one large delta; capping it
// keeps positions bounded and finite.
const MaxFrameDelta = 0.1

// referenceFPS converts per-frame constants into per-second rates.
const referenceFPS = 60.0

// clampDelta returns dt limited to [0, MaxFrameDelta]. NaN, infinities and
// negative values collapse to 0.
func clampDelta(dt float64) float64 {
	if !finite(dt) || dt <= 0 {
		return 0
	}
	if dt > MaxFrameDelta {
		return MaxFrameDelta
	}
	return dt
}

// ParticleBuffer is a fixed-length sequence of xyz positions. It is allocated
// once and never resized; Len() == 3*Count() holds for its whole lifetime.
type ParticleBuffer struct {
	pos []float32
}

// newParticleBuffer allocates a zeroed buffer for count particles. Negative
// counts are treated as zero.
func newParticleBuffer(count int) *ParticleBuffer {
	if count < 0 {
		count = 0
	}
	return &ParticleBuffer{pos: make([]float32, 3*count)}
}

// Count returns the number of particles.
func (b *ParticleBuffer) Count() int { return len(b.pos) / 3 }

// Len returns the number of float32 components (3 per particle).
func (b *ParticleBuffer) Len() int { return len(b.pos) }

// At returns the position of particle i.
func (b *ParticleBuffer) At(i int) mgl32.Vec3 {
	j := i * 3
	return mgl32.Vec3{b.pos[j], b.pos[j+1], b.pos[j+2]}
}

// Positions returns the raw component slice. Callers must treat it as read-only;
// only the owning generator mutates it.
func (b *ParticleBuffer) Positions() []float32 { return b.pos }

func (b *ParticleBuffer) set(i int, x, y, z float64) {
	j := i * 3
	b.pos[j] = float32(x)
	b.pos[j+1] = float32(y)
	b.pos[j+2] = float32(z)
}

// PointStyle describes how a generator's particles are drawn.
type PointStyle struct {
	Color Color
	// Size is the point diameter in world units, attenuated by depth.
	Size float64
	// Opacity multiplies Color.A.
	Opacity   float64
	BlendMode BlendMode
	// Lit points receive the scene's light contribution on top of Color.
	Lit bool
}

// Generator owns a particle buffer and advances it deterministically.
type Generator interface {
	// Buffer returns the generator's particle buffer.
	Buffer() *ParticleBuffer
	// Update advances the simulation. elapsed is the scene clock in seconds and
	// dt the time since the previous frame. It reports whether the buffer was
	// mutated and needs to be re-uploaded.
	Update(elapsed, dt float64) (dirty bool)
	// Transform returns the group model matrix applied to every particle.
	Transform() mgl32.Mat4
	// Style returns the draw style.
	Style() PointStyle
}

// PointerFollower is implemented by generators that react to the pointer.
// x and y are normalized to [-1, 1] with Y up.
type PointerFollower interface {
	SetPointer(x, y float64)
}

// Weighted is implemented by generators whose particles carry their own
// alpha weight in [0, 1], one per particle.
type Weighted interface {
	Weights() []float32
}

// frameLerp converts a per-frame lerp factor at referenceFPS into the factor
// for a frame of dt seconds.
func frameLerp(perFrame, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	return 1 - math.Pow(1-perFrame, dt*referenceFPS)
}
