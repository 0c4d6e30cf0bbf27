package lumen

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestFloatMotionZeroIsIdentity(t *testing.T) {
	if got := (FloatMotion{}).Transform(12.5); got != mgl32.Ident4() {
		t.Errorf("zero motion = %v, want identity", got)
	}
}

func TestFloatMotionLift(t *testing.T) {
	m := FloatMotion{Speed: 2, FloatIntensity: 1}
	assertNear(t, "at rest", m.Lift(0, 0), 0)
	// sin(t/4*speed) peaks at t = pi/speed*2.
	assertNear(t, "peak", m.Lift(math.Pi, 0), 0.1)
	assertNear(t, "phase shift", m.Lift(0, math.Pi/2), 0.1)
	for i := 0; i < 100; i++ {
		if v := m.Lift(float64(i)*0.37, 0); math.Abs(v) > 0.1+1e-12 {
			t.Fatalf("Lift = %v exceeds intensity/10", v)
		}
	}
}

func TestFloatMotionTransform(t *testing.T) {
	m := FloatMotion{Speed: 1.5, RotationIntensity: 0.2, FloatIntensity: 0.4}
	tt := 3.0
	p := m.Transform(tt).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assertNear(t, "origin x", float64(p.X()), 0)
	assertNear(t, "origin lifted", float64(p.Y()), m.Lift(tt, 0))
	assertNear(t, "origin z", float64(p.Z()), 0)

	// The wobble stays small: rotation at most intensity/8 rad on any axis.
	q := m.Transform(tt).Mul4x1(mgl32.Vec4{10, 0, 0, 1})
	if d := math.Hypot(float64(q.Y()-p.Y()), float64(q.Z())); d > 10*math.Sin(0.2/8*2)+1e-4 {
		t.Errorf("wobble moved a point 10 units out by %v", d)
	}
}

func TestFloatMotionNonFiniteClock(t *testing.T) {
	m := FloatMotion{Speed: 1, RotationIntensity: 1, FloatIntensity: 1}
	if got := m.Transform(math.Inf(1)); got != mgl32.Ident4() {
		t.Errorf("Transform(+Inf) = %v, want identity", got)
	}
}
