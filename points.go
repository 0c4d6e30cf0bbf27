package lumen

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// pointSpriteSize is the edge of the soft disc texture every point quad samples.
const pointSpriteSize = 32

// maxQuadsPerDraw keeps a single DrawTriangles32 call under the 16-bit
// vertex budget some backends still enforce.
const maxQuadsPerDraw = 65532 / 4

// Fog fades points between Near and Far eye distance with a smoothstep ramp. A zero Far
// disables fog.
type Fog struct {
	Color     Color
	Near, Far float64
}

// Visibility returns 1 for points in front of Near and 0 past Far.
func (f Fog) Visibility(depth float32) float32 {
	if !(f.Far > 0) {
		return 1
	}
	return float32(1 - smoothstep(f.Near, f.Far, float64(depth)))
}

// PointLight is an omni light with inverse-square falloff scaled by Range.
type PointLight struct {
	Position  mgl32.Vec3
	Color     Color
	Intensity float64
	// Range is the distance at which the light drops to half strength.
	Range float64
}

// Lighting tints points whose style is Lit. Unlit points ignore it.
type Lighting struct {
	Ambient float64
	Points  []PointLight
}

// Shade returns base lit by the ambient term plus every point light at world
// position p. Channels are clamped to [0, 1].
func (l Lighting) Shade(base Color, p mgl32.Vec3) Color {
	r, g, b := l.Ambient, l.Ambient, l.Ambient
	for _, pl := range l.Points {
		rng := pl.Range
		if !(rng > 0) {
			rng = 10
		}
		d := float64(pl.Position.Sub(p).Len()) / rng
		k := pl.Intensity / (1 + d*d)
		r += k * pl.Color.R
		g += k * pl.Color.G
		b += k * pl.Color.B
	}
	return Color{
		R: clamp01(base.R * r),
		G: clamp01(base.G * g),
		B: clamp01(base.B * b),
		A: base.A,
	}
}

// pointBatch caches the projected quads of one generator.
type pointBatch struct {
	gen   Generator
	verts []ebiten.Vertex
	inds  []uint32

	dirty      bool
	model      mgl32.Mat4
	camVersion uint64
	opacity    float32
}

// quads returns the number of quads currently projected.
func (b *pointBatch) quads() int { return len(b.verts) / 4 }

// PointRenderer projects generator buffers to screen-space quads and draws
// each generator with one triangle batch.
type PointRenderer struct {
	batches []*pointBatch
	fog     Fog
	light   Lighting
	opacity float32
	group   mgl32.Mat4
	sprite  *ebiten.Image
	triOp   ebiten.DrawTrianglesOptions
}

// NewPointRenderer creates a renderer for gens. Nothing touches the GPU
// until the first Draw.
func NewPointRenderer(gens []Generator, fog Fog, light Lighting) *PointRenderer {
	r := &PointRenderer{fog: fog, light: light, opacity: 1, group: mgl32.Ident4()}
	for _, g := range gens {
		r.batches = append(r.batches, &pointBatch{gen: g, dirty: true})
	}
	return r
}

// MarkDirty flags generator i for re-projection on the next Prepare.
func (r *PointRenderer) MarkDirty(i int) {
	if i >= 0 && i < len(r.batches) {
		r.batches[i].dirty = true
	}
}

// SetOpacity scales every point's alpha. Used by the mount reveal.
func (r *PointRenderer) SetOpacity(v float32) {
	r.opacity = float32(clamp01(float64(v)))
}

// SetFogFar moves the far fog plane.
func (r *PointRenderer) SetFogFar(far float64) {
	if r.fog.Far == far {
		return
	}
	r.fog.Far = far
	for _, b := range r.batches {
		b.dirty = true
	}
}

// SetGroup sets the transform applied on top of every generator's own
// transform, for scenes that move as a whole.
func (r *PointRenderer) SetGroup(m mgl32.Mat4) {
	r.group = m
}

// Fog returns the current fog.
func (r *PointRenderer) Fog() Fog { return r.fog }

// Prepare re-projects every batch whose buffer, group transform, camera or
// opacity changed since the last call.
func (r *PointRenderer) Prepare(cam *Camera) {
	version := cam.Version()
	vp := cam.ViewProjection()
	for _, b := range r.batches {
		model := r.group.Mul4(b.gen.Transform())
		if !b.dirty && b.camVersion == version && b.model == model && b.opacity == r.opacity {
			continue
		}
		r.project(b, cam, vp, model)
		b.dirty = false
		b.camVersion = version
		b.model = model
		b.opacity = r.opacity
	}
}

func (r *PointRenderer) project(b *pointBatch, cam *Camera, vp, model mgl32.Mat4) {
	style := b.gen.Style()
	mvp := vp.Mul4(model)
	buf := b.gen.Buffer()

	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
	if r.opacity <= 0 || style.Opacity <= 0 {
		return
	}

	vw, vh := float32(cam.Viewport.Width), float32(cam.Viewport.Height)
	vx, vy := float32(cam.Viewport.X), float32(cam.Viewport.Y)
	base := style.Color
	var weights []float32
	if wg, ok := b.gen.(Weighted); ok {
		weights = wg.Weights()
	}

	for i := 0; i < buf.Count(); i++ {
		p := buf.At(i)
		sx, sy, depth, ok := cam.Project(mvp, p)
		if !ok {
			continue
		}
		half := float32(style.Size) * cam.PointScale(depth) / 2
		if half < 0.5 {
			half = 0.5
		}
		if sx+half < vx || sy+half < vy || sx-half > vx+vw || sy-half > vy+vh {
			continue
		}
		alpha := float32(style.Opacity*base.A) * r.opacity * r.fog.Visibility(depth)
		if i < len(weights) {
			alpha *= weights[i]
		}
		if alpha < 1.0/255 {
			continue
		}
		c := base
		if style.Lit {
			c = r.light.Shade(base, model.Mul4x1(p.Vec4(1)).Vec3())
		}
		cr, cg, cb := float32(c.R)*alpha, float32(c.G)*alpha, float32(c.B)*alpha

		qx := [4]float32{sx - half, sx + half, sx - half, sx + half}
		qy := [4]float32{sy - half, sy - half, sy + half, sy + half}
		us := [4]float32{0, pointSpriteSize, 0, pointSpriteSize}
		vs := [4]float32{0, 0, pointSpriteSize, pointSpriteSize}

		idx := uint32(len(b.verts))
		for j := 0; j < 4; j++ {
			b.verts = append(b.verts, ebiten.Vertex{
				DstX:   qx[j],
				DstY:   qy[j],
				SrcX:   us[j],
				SrcY:   vs[j],
				ColorR: cr,
				ColorG: cg,
				ColorB: cb,
				ColorA: alpha,
			})
		}
		b.inds = append(b.inds,
			idx+0, idx+1, idx+2,
			idx+1, idx+3, idx+2,
		)
	}
}

// Draw submits every prepared batch into target.
func (r *PointRenderer) Draw(target *ebiten.Image) {
	if r.sprite == nil {
		r.sprite = ebiten.NewImage(pointSpriteSize, pointSpriteSize)
		r.sprite.WritePixels(pointSpritePixels(pointSpriteSize))
	}
	op := &r.triOp
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	op.Filter = ebiten.FilterLinear
	for _, b := range r.batches {
		op.Blend = b.gen.Style().BlendMode.EbitenBlend()
		for start := 0; start < b.quads(); start += maxQuadsPerDraw {
			end := min(start+maxQuadsPerDraw, b.quads())
			verts := b.verts[start*4 : end*4]
			inds := b.inds[start*6 : end*6]
			if start > 0 {
				inds = rebaseIndices(inds, uint32(start*4))
			}
			target.DrawTriangles32(verts, inds, r.sprite, op)
		}
	}
}

// rebaseIndices returns a copy of inds shifted down by off.
func rebaseIndices(inds []uint32, off uint32) []uint32 {
	out := make([]uint32, len(inds))
	for i, v := range inds {
		out[i] = v - off
	}
	return out
}

// Dispose releases the sprite texture and the vertex caches.
func (r *PointRenderer) Dispose() {
	if r.sprite != nil {
		r.sprite.Deallocate()
		r.sprite = nil
	}
	for _, b := range r.batches {
		b.verts, b.inds = nil, nil
		b.dirty = true
	}
}

// pointSpritePixels rasterizes a premultiplied white disc with a smoothstep
// edge, 1 at the center and 0 at the rim.
func pointSpritePixels(size int) []byte {
	if size < 1 {
		size = 1
	}
	pix := make([]byte, size*size*4)
	radius := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - radius
			dy := float64(y) + 0.5 - radius
			dist := math.Sqrt(dx*dx+dy*dy) / radius
			var alpha float64
			if dist < 1 {
				t := 1 - dist
				alpha = t * t * (3 - 2*t)
			}
			a := uint8(alpha * 255)
			off := (y*size + x) * 4
			pix[off+0] = a
			pix[off+1] = a
			pix[off+2] = a
			pix[off+3] = a
		}
	}
	return pix
}
