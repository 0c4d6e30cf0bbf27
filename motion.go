package lumen

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FloatMotion is the gentle hover applied to floating objects: a vertical
// bob plus a small wobble on every axis, all driven by one sine of the clock.
type FloatMotion struct {
	Speed             float64
	RotationIntensity float64
	FloatIntensity    float64
}

func (m FloatMotion) angle(t, phase float64) float64 {
	return t/4*m.Speed + phase
}

// Lift returns the vertical offset at time t for an object with the given phase.
func (m FloatMotion) Lift(t, phase float64) float64 {
	return math.Sin(m.angle(t, phase)) / 10 * m.FloatIntensity
}

// Transform returns the hover as a model matrix at time t: translation on Y,
// then rotation in X, Y, Z order.
func (m FloatMotion) Transform(t float64) mgl32.Mat4 {
	a := m.angle(t, 0)
	if !finite(a) {
		return mgl32.Ident4()
	}
	s, c := math.Sin(a), math.Cos(a)
	rx := c / 8 * m.RotationIntensity
	ry := s / 8 * m.RotationIntensity
	rz := s / 20 * m.RotationIntensity
	return mgl32.Translate3D(0, float32(m.Lift(t, 0)), 0).
		Mul4(mgl32.HomogRotate3DX(float32(rx))).
		Mul4(mgl32.HomogRotate3DY(float32(ry))).
		Mul4(mgl32.HomogRotate3DZ(float32(rz)))
}
