package lumen

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// VortexConfig controls a VortexField.
type VortexConfig struct {
	// Count is the number of particles. Zero yields an empty field.
	Count int
	// Radius is the band of distances from the vortex axis.
	Radius Range
	// Height is the vertical band particles are scattered in, centered on 0.
	Height float64
	// RotationSpeed is the base precession rate in radians per second.
	RotationSpeed float64
	// BobAmplitude is the peak vertical offset of the whole swarm.
	BobAmplitude float64
	Style        PointStyle
}

// DefaultVortexConfig returns the data vortex used by the Aetheris preset.
func DefaultVortexConfig(count int) VortexConfig {
	return VortexConfig{
		Count:         count,
		Radius:        Range{Min: 5, Max: 20},
		Height:        30,
		RotationSpeed: 0.05,
		BobAmplitude:  2,
		Style: PointStyle{
			Color:     Hex(0x06b6d4),
			Size:      0.08,
			Opacity:   0.3,
			BlendMode: BlendAdd,
		},
	}
}

// VortexField is a swarm of particles on a cylinder band that precesses with
// a breathing speed and bobs vertically. Rotation and bob are bulk
// transforms; the buffer itself is written once at construction.
type VortexField struct {
	cfg   VortexConfig
	buf   *ParticleBuffer
	angle float64
	bob   float64
}

// NewVortexField builds a vortex with positions drawn from rng.
func NewVortexField(cfg VortexConfig, rng *rand.Rand) *VortexField {
	f := &VortexField{cfg: cfg, buf: newParticleBuffer(cfg.Count)}
	for i := 0; i < f.buf.Count(); i++ {
		r := cfg.Radius.Random(rng)
		a := rng.Float64() * 2 * math.Pi
		f.buf.set(i, math.Cos(a)*r, centered(rng, cfg.Height), math.Sin(a)*r)
	}
	return f
}

// Buffer implements Generator.
func (f *VortexField) Buffer() *ParticleBuffer { return f.buf }

// Style implements Generator.
func (f *VortexField) Style() PointStyle { return f.cfg.Style }

// Angle returns the current precession angle in radians.
func (f *VortexField) Angle() float64 { return f.angle }

// Update implements Generator. The buffer is never dirtied.
func (f *VortexField) Update(elapsed, dt float64) bool {
	dt = clampDelta(dt)
	if !finite(elapsed) {
		elapsed = 0
	}
	breathing := 1 + math.Sin(elapsed*0.2)*0.3
	f.angle = math.Mod(f.angle+dt*f.cfg.RotationSpeed*breathing, 2*math.Pi)
	f.bob = math.Sin(elapsed*0.2) * f.cfg.BobAmplitude
	return false
}

// Transform implements Generator.
func (f *VortexField) Transform() mgl32.Mat4 {
	return mgl32.Translate3D(0, float32(f.bob), 0).Mul4(mgl32.HomogRotate3DY(float32(f.angle)))
}
