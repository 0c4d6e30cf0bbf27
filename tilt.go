package lumen

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// SpringConfig describes a damped spring in physical terms.
type SpringConfig struct {
	Stiffness float64
	Damping   float64
	Mass      float64
}

// DefaultSpring is a lightly underdamped spring with a little overshoot.
var DefaultSpring = SpringConfig{Stiffness: 100, Damping: 10, Mass: 1}

// params converts the spring to harmonica's angular frequency and damping ratio.
func (c SpringConfig) params() (freq, ratio float64) {
	k, d, m := c.Stiffness, c.Damping, c.Mass
	if !(k > 0) {
		k = DefaultSpring.Stiffness
	}
	if !(m > 0) {
		m = DefaultSpring.Mass
	}
	if d < 0 || !finite(d) {
		d = DefaultSpring.Damping
	}
	return math.Sqrt(k / m), d / (2 * math.Sqrt(k*m))
}

// TiltConfig configures one tilt instance.
type TiltConfig struct {
	// MaxAngle is the rotation in degrees reached at the element's edge.
	MaxAngle float64
	Spring   SpringConfig
}

// Tilt presets used across the site's surfaces.
var (
	TiltHero       = TiltConfig{MaxAngle: 10, Spring: DefaultSpring}
	TiltCard       = TiltConfig{MaxAngle: 12, Spring: DefaultSpring}
	TiltBadge      = TiltConfig{MaxAngle: 15, Spring: DefaultSpring}
	TiltTimeline   = TiltConfig{MaxAngle: 5, Spring: DefaultSpring}
	TiltPortrait   = TiltConfig{MaxAngle: 15, Spring: SpringConfig{Stiffness: 100, Damping: 20, Mass: 1}}
	TiltSubtleCard = TiltConfig{MaxAngle: 3, Spring: DefaultSpring}
)

// TiltState is the coarse phase of a tilt instance.
type TiltState uint8

const (
	TiltIdle     TiltState = iota // at rest with a zero target
	TiltTracking                  // following the pointer
	TiltRelaxing                  // pointer left; settling back to rest
)

func (s TiltState) String() string {
	switch s {
	case TiltIdle:
		return "idle"
	case TiltTracking:
		return "tracking"
	case TiltRelaxing:
		return "relaxing"
	default:
		return "unknown"
	}
}

const (
	tiltRestDelta = 0.0005
	tiltRestSpeed = 0.005
)

// Tilt maps a pointer over an element to a spring-smoothed 3D rotation.
// Pointer handlers only write the target; Update integrates the smoothed
// values from the target and the previous state.
type Tilt struct {
	maxAngle float64
	freq     float64
	ratio    float64

	spring   harmonica.Spring
	springDt float64

	targetX, targetY float64
	x, vx            float64
	y, vy            float64
	tracking         bool
}

// NewTilt creates a tilt instance at rest.
func NewTilt(cfg TiltConfig) *Tilt {
	t := &Tilt{maxAngle: cfg.MaxAngle}
	if !finite(t.maxAngle) {
		t.maxAngle = 0
	}
	t.freq, t.ratio = cfg.Spring.params()
	return t
}

// PointerMove sets the target from a pointer at (px, py) over bounds.
// A zero-sized element yields a neutral target.
func (t *Tilt) PointerMove(px, py float64, bounds Rect) {
	t.tracking = true
	t.targetX, t.targetY = pointerOffset(px, py, bounds)
}

// PointerLeave resets the target to rest. The smoothed value keeps relaxing
// across subsequent updates.
func (t *Tilt) PointerLeave() {
	t.tracking = false
	t.targetX, t.targetY = 0, 0
}

// pointerOffset returns the pointer position relative to the element center
// as a fraction of its size, clamped to [-0.5, 0.5] per axis.
func pointerOffset(px, py float64, bounds Rect) (float64, float64) {
	if bounds.Empty() || !finite(px) || !finite(py) {
		return 0, 0
	}
	ox := (px-bounds.X)/bounds.Width - 0.5
	oy := (py-bounds.Y)/bounds.Height - 0.5
	if !finite(ox) || !finite(oy) {
		return 0, 0
	}
	return clamp(ox, -0.5, 0.5), clamp(oy, -0.5, 0.5)
}

// Update advances both springs by dt seconds.
func (t *Tilt) Update(dt float64) {
	dt = clampDelta(dt)
	if dt == 0 {
		return
	}
	if dt != t.springDt {
		t.spring = harmonica.NewSpring(dt, t.freq, t.ratio)
		t.springDt = dt
	}
	t.x, t.vx = t.step(t.x, t.vx, t.targetX)
	t.y, t.vy = t.step(t.y, t.vy, t.targetY)
}

func (t *Tilt) step(pos, vel, target float64) (float64, float64) {
	pos, vel = t.spring.Update(pos, vel, target)
	if math.Abs(pos-target) < tiltRestDelta && math.Abs(vel) < tiltRestSpeed {
		return target, 0
	}
	return pos, vel
}

// Target returns the raw pointer offset the springs are moving toward.
func (t *Tilt) Target() (x, y float64) { return t.targetX, t.targetY }

// Smoothed returns the spring-filtered offset.
func (t *Tilt) Smoothed() (x, y float64) { return t.x, t.y }

// Rotation returns the derived rotation in degrees around the X and Y axes.
// Pointer toward the top tilts the top away (positive X); pointer toward the
// right turns the element right (positive Y).
func (t *Tilt) Rotation() (rotX, rotY float64) {
	rotX = mapRange(t.y, -0.5, 0.5, t.maxAngle, -t.maxAngle)
	rotY = mapRange(t.x, -0.5, 0.5, -t.maxAngle, t.maxAngle)
	return rotX, rotY
}

// State reports the current phase.
func (t *Tilt) State() TiltState {
	switch {
	case t.tracking:
		return TiltTracking
	case t.x != 0 || t.y != 0 || t.vx != 0 || t.vy != 0:
		return TiltRelaxing
	default:
		return TiltIdle
	}
}

// Reset returns the instance to rest immediately.
func (t *Tilt) Reset() {
	*t = Tilt{maxAngle: t.maxAngle, freq: t.freq, ratio: t.ratio}
}

// mapRange maps v from [inLo, inHi] to [outLo, outHi], clamping to the output range.
func mapRange(v, inLo, inHi, outLo, outHi float64) float64 {
	if inHi == inLo {
		return outLo
	}
	t := clamp01((v - inLo) / (inHi - inLo))
	r := lerp(outLo, outHi, t)
	if r == 0 {
		return 0 // normalize -0
	}
	return r
}

// Element is anything that can report its on-screen bounds.
type Element interface {
	Bounds() Rect
}

// TiltBinding ties a Tilt to one element. The caller attaches OnPointerMove
// and OnPointerLeave to the element's events and reads Rotation when drawing.
type TiltBinding struct {
	Tilt    *Tilt
	element Element
	handle  FrameHandle
}

// Bind creates a tilt instance for el.
func Bind(el Element, cfg TiltConfig) *TiltBinding {
	return &TiltBinding{Tilt: NewTilt(cfg), element: el}
}

// OnPointerMove handles a pointer at screen position (x, y).
func (b *TiltBinding) OnPointerMove(x, y float64) {
	var r Rect
	if b.element != nil {
		r = b.element.Bounds()
	}
	b.Tilt.PointerMove(x, y, r)
}

// OnPointerLeave handles the pointer leaving the element.
func (b *TiltBinding) OnPointerLeave() {
	b.Tilt.PointerLeave()
}

// Rotation returns the current derived rotation in degrees.
func (b *TiltBinding) Rotation() (rotX, rotY float64) {
	return b.Tilt.Rotation()
}

// Attach drives the spring from loop until Detach. Attaching again first
// detaches from the previous loop.
func (b *TiltBinding) Attach(loop *FrameLoop) {
	b.Detach()
	if loop == nil {
		return
	}
	b.handle = loop.Subscribe(func(ft FrameTime) {
		b.Tilt.Update(ft.Delta)
	})
}

// Detach stops the per-frame spring updates. Safe to call more than once.
func (b *TiltBinding) Detach() {
	b.handle.Remove()
	b.handle = FrameHandle{}
}
