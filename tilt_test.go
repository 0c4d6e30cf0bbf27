package lumen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var card = Rect{X: 100, Y: 100, Width: 200, Height: 100}

func settle(t *Tilt, seconds float64) {
	for i := 0; i < int(seconds*60); i++ {
		t.Update(1.0 / 60)
	}
}

func TestSpringParams(t *testing.T) {
	freq, ratio := DefaultSpring.params()
	assert.InDelta(t, 10, freq, 1e-9)
	assert.InDelta(t, 0.5, ratio, 1e-9)

	freq, ratio = TiltPortrait.Spring.params()
	assert.InDelta(t, 10, freq, 1e-9)
	assert.InDelta(t, 1, ratio, 1e-9, "damping 20 is critically damped")

	freq, ratio = SpringConfig{}.params()
	assert.InDelta(t, 10, freq, 1e-9, "zero stiffness falls back to the default")
	assert.InDelta(t, 0, ratio, 1e-9)
}

func TestPointerOffset(t *testing.T) {
	tests := []struct {
		name   string
		px, py float64
		bounds Rect
		wx, wy float64
	}{
		{"center", 200, 150, card, 0, 0},
		{"top-left", 100, 100, card, -0.5, -0.5},
		{"bottom-right", 300, 200, card, 0.5, 0.5},
		{"outside clamps", 1000, -1000, card, 0.5, -0.5},
		{"zero width", 10, 10, Rect{Width: 0, Height: 10}, 0, 0},
		{"zero height", 10, 10, Rect{Width: 10, Height: 0}, 0, 0},
		{"nan", math.NaN(), 0, card, 0, 0},
	}
	for _, tt := range tests {
		x, y := pointerOffset(tt.px, tt.py, tt.bounds)
		assert.InDelta(t, tt.wx, x, 1e-9, tt.name)
		assert.InDelta(t, tt.wy, y, 1e-9, tt.name)
	}
}

func TestTiltRotationMapping(t *testing.T) {
	tl := NewTilt(TiltHero)
	tl.PointerMove(300, 100, card) // top-right corner
	settle(tl, 3)

	rotX, rotY := tl.Rotation()
	assert.InDelta(t, 10, rotX, 1e-3, "pointer at top tilts top away")
	assert.InDelta(t, 10, rotY, 1e-3, "pointer at right turns right")
	assert.Equal(t, TiltTracking, tl.State())
}

func TestTiltRotationIsNeverOutOfRange(t *testing.T) {
	tl := NewTilt(TiltConfig{MaxAngle: 12, Spring: SpringConfig{Stiffness: 300, Damping: 2, Mass: 1}})
	tl.PointerMove(1e9, 1e9, card)
	for i := 0; i < 200; i++ {
		tl.Update(1.0 / 60)
		rx, ry := tl.Rotation()
		require.LessOrEqual(t, math.Abs(rx), 12.0)
		require.LessOrEqual(t, math.Abs(ry), 12.0)
	}
}

func TestTiltLeaveRelaxesToRest(t *testing.T) {
	tl := NewTilt(TiltCard)
	tl.PointerMove(100, 200, card)
	settle(tl, 1)
	tl.PointerLeave()

	tx, ty := tl.Target()
	assert.Equal(t, 0.0, tx)
	assert.Equal(t, 0.0, ty)
	sx, _ := tl.Smoothed()
	assert.NotEqual(t, 0.0, sx, "smoothing continues after leave")
	assert.Equal(t, TiltRelaxing, tl.State())

	settle(tl, 5)
	rx, ry := tl.Rotation()
	assert.Equal(t, 0.0, rx)
	assert.Equal(t, 0.0, ry)
	assert.False(t, math.Signbit(rx), "no negative zero at rest")
	assert.Equal(t, TiltIdle, tl.State())
}

func TestTiltSmoothingLags(t *testing.T) {
	tl := NewTilt(TiltHero)
	tl.PointerMove(300, 150, card)
	tl.Update(1.0 / 60)
	x, _ := tl.Smoothed()
	assert.Greater(t, x, 0.0)
	assert.Less(t, x, 0.5)
}

func TestTiltIgnoresBadDelta(t *testing.T) {
	tl := NewTilt(TiltHero)
	tl.PointerMove(300, 150, card)
	tl.Update(math.NaN())
	tl.Update(-1)
	x, _ := tl.Smoothed()
	assert.Equal(t, 0.0, x)
}

func TestTiltReset(t *testing.T) {
	tl := NewTilt(TiltBadge)
	tl.PointerMove(300, 150, card)
	settle(tl, 0.5)
	tl.Reset()
	assert.Equal(t, TiltIdle, tl.State())
	rx, ry := tl.Rotation()
	assert.Zero(t, rx)
	assert.Zero(t, ry)
}

func TestTiltStateString(t *testing.T) {
	assert.Equal(t, "idle", TiltIdle.String())
	assert.Equal(t, "tracking", TiltTracking.String())
	assert.Equal(t, "relaxing", TiltRelaxing.String())
	assert.Equal(t, "unknown", TiltState(9).String())
}

type fixedElement Rect

func (e fixedElement) Bounds() Rect { return Rect(e) }

func TestBindingAttachDetach(t *testing.T) {
	loop := NewFrameLoop()
	b := Bind(fixedElement(card), TiltTimeline)
	b.Attach(loop)
	b.Attach(loop)
	assert.Equal(t, 1, loop.Len(), "re-attach replaces the subscription")

	b.OnPointerMove(300, 150)
	tickN(loop, 240, 1.0/60)
	_, ry := b.Rotation()
	assert.InDelta(t, 5, ry, 1e-3)

	b.OnPointerLeave()
	b.Detach()
	b.Detach()
	assert.Equal(t, 0, loop.Len())

	tickN(loop, 60, 1.0/60)
	_, ry = b.Rotation()
	assert.InDelta(t, 5, ry, 1e-3, "detached binding no longer updates")
}

func TestBindingNilElement(t *testing.T) {
	b := Bind(nil, TiltHero)
	b.OnPointerMove(10, 10)
	x, y := b.Tilt.Target()
	assert.Zero(t, x)
	assert.Zero(t, y)
	b.Attach(nil)
}
