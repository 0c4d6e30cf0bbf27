package lumen

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Default perspective used by every background scene.
const (
	DefaultFOV  = 60
	DefaultNear = 0.1
	DefaultFar  = 1000
)

// dollyAnim holds an active move of the camera along its view axis.
type dollyAnim struct {
	tween *gween.Tween
}

// Camera is a perspective camera looking down -Z at Target.
type Camera struct {
	// Position is the eye in world space.
	Position mgl32.Vec3
	// Target is the point the camera looks at.
	Target mgl32.Vec3
	// FOV is the vertical field of view in degrees.
	FOV float32
	// Near and Far bound the clip volume.
	Near, Far float32
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect

	view     mgl32.Mat4
	proj     mgl32.Mat4
	viewProj mgl32.Mat4
	dirty    bool
	version  uint64

	dolly *dollyAnim
}

// NewCamera creates a camera at (0, 0, 20) with a 60 degree field of view.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		Position: mgl32.Vec3{0, 0, 20},
		FOV:      DefaultFOV,
		Near:     DefaultNear,
		Far:      DefaultFar,
		Viewport: viewport,
		dirty:    true,
	}
}

// Resize updates the viewport and with it the aspect ratio.
func (c *Camera) Resize(w, h int) {
	vp := Rect{Width: float64(w), Height: float64(h)}
	if vp == c.Viewport {
		return
	}
	c.Viewport = vp
	c.dirty = true
}

// Aspect returns width over height, 1 for an empty viewport.
func (c *Camera) Aspect() float32 {
	if c.Viewport.Empty() {
		return 1
	}
	return float32(c.Viewport.Width / c.Viewport.Height)
}

// DollyTo moves the camera to distance z from its target over duration seconds.
func (c *Camera) DollyTo(z float32, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.OutCubic
	}
	c.dolly = &dollyAnim{tween: gween.New(c.Position.Z(), z, duration, easeFn)}
}

// Dollying reports whether a DollyTo move is in progress.
func (c *Camera) Dollying() bool {
	return c.dolly != nil
}

// update advances the dolly tween.
func (c *Camera) update(dt float32) {
	if c.dolly == nil {
		return
	}
	z, done := c.dolly.tween.Update(dt)
	if z != c.Position.Z() {
		c.Position[2] = z
		c.dirty = true
	}
	if done {
		c.dolly = nil
	}
}

// Version changes every time the cached matrices are rebuilt.
func (c *Camera) Version() uint64 {
	c.compute()
	return c.version
}

func (c *Camera) compute() {
	if !c.dirty {
		return
	}
	c.dirty = false
	c.version++
	up := mgl32.Vec3{0, 1, 0}
	c.view = mgl32.LookAtV(c.Position, c.Target, up)
	c.proj = mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect(), c.Near, c.Far)
	c.viewProj = c.proj.Mul4(c.view)
}

// View returns the world-to-eye matrix.
func (c *Camera) View() mgl32.Mat4 {
	c.compute()
	return c.view
}

// Projection returns the eye-to-clip matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	c.compute()
	return c.proj
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	c.compute()
	return c.viewProj
}

// Project maps a world point through mvp to screen pixels. depth is the
// eye-space distance along the view axis. ok is false for points behind the
// near plane.
func (c *Camera) Project(mvp mgl32.Mat4, p mgl32.Vec3) (sx, sy, depth float32, ok bool) {
	clip := mvp.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w < c.Near || math.IsNaN(float64(w)) {
		return 0, 0, 0, false
	}
	ndcX, ndcY := clip.X()/w, clip.Y()/w
	vx, vy := float32(c.Viewport.X), float32(c.Viewport.Y)
	vw, vh := float32(c.Viewport.Width), float32(c.Viewport.Height)
	sx = vx + (ndcX+1)*0.5*vw
	sy = vy + (1-ndcY)*0.5*vh
	return sx, sy, w, true
}

// PointScale returns the pixel size of a world-space unit at the given
// depth, so a point of size s spans s*PointScale(depth) pixels.
func (c *Camera) PointScale(depth float32) float32 {
	if depth <= 0 {
		return 0
	}
	return float32(c.Viewport.Height) / 2 / depth
}
