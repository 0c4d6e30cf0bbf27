package lumen

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// EnergyConfig controls an EnergyField.
type EnergyConfig struct {
	Count int
	// Radius places node i at (sin(i), cos(i)) * Radius on the ring plane.
	Radius float64
	// Depth is the ring plane's z.
	Depth float64
	// SpinPerFrame is the group rotation around Z per 60 Hz frame, in radians.
	SpinPerFrame float64
	// BaseSpeed is node 0's float speed; node i floats at BaseSpeed+i.
	BaseSpeed      float64
	FloatIntensity float64
	Style          PointStyle
}

// DefaultEnergyConfig returns the five glowing flow nodes of the Elite preset.
func DefaultEnergyConfig() EnergyConfig {
	return EnergyConfig{
		Count:          5,
		Radius:         10,
		Depth:          -5,
		SpinPerFrame:   0.01,
		BaseSpeed:      5,
		FloatIntensity: 1,
		Style: PointStyle{
			Color:     Hex(0x06b6d4),
			Size:      0.5,
			Opacity:   1,
			BlendMode: BlendAdd,
		},
	}
}

// EnergyField is a handful of bright nodes on a spinning ring, each floating
// at its own speed. Placement is deterministic.
type EnergyField struct {
	cfg   EnergyConfig
	buf   *ParticleBuffer
	base  []mgl32.Vec3
	phase []float64
	clock float64
	spin  float64
}

// NewEnergyField builds the ring. It takes no random source.
func NewEnergyField(cfg EnergyConfig) *EnergyField {
	f := &EnergyField{cfg: cfg, buf: newParticleBuffer(cfg.Count)}
	n := f.buf.Count()
	f.base = make([]mgl32.Vec3, n)
	f.phase = make([]float64, n)
	for i := 0; i < n; i++ {
		fi := float64(i)
		f.base[i] = mgl32.Vec3{
			float32(math.Sin(fi) * cfg.Radius),
			float32(math.Cos(fi) * cfg.Radius),
			float32(cfg.Depth),
		}
		f.phase[i] = math.Mod(fi*goldenAngle, 2*math.Pi)
	}
	f.place()
	return f
}

// Buffer implements Generator.
func (f *EnergyField) Buffer() *ParticleBuffer { return f.buf }

// Style implements Generator.
func (f *EnergyField) Style() PointStyle { return f.cfg.Style }

// Spin returns the current group rotation around Z in radians.
func (f *EnergyField) Spin() float64 { return f.spin }

// Update implements Generator.
func (f *EnergyField) Update(_, dt float64) bool {
	dt = clampDelta(dt)
	if dt == 0 || len(f.base) == 0 {
		return false
	}
	f.clock += dt
	f.spin = math.Mod(f.spin+f.cfg.SpinPerFrame*dt*referenceFPS, 2*math.Pi)
	f.place()
	return true
}

func (f *EnergyField) place() {
	for i, b := range f.base {
		m := FloatMotion{Speed: f.cfg.BaseSpeed + float64(i), FloatIntensity: f.cfg.FloatIntensity}
		f.buf.set(i, float64(b[0]), float64(b[1])+m.Lift(f.clock, f.phase[i]), float64(b[2]))
	}
}

// Transform implements Generator.
func (f *EnergyField) Transform() mgl32.Mat4 {
	return mgl32.HomogRotate3DZ(float32(f.spin))
}
