package lumen

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrUnsupported reports that an effect cannot run on the current runtime.
// The pipeline skips such stages and passes the frame through.
var ErrUnsupported = errors.New("lumen: effect unsupported")

// Effect is one full-screen post-processing stage. Apply renders on the GPU;
// Process is the CPU reference used for headless rendering and tests. Both
// write a frame with the same dimensions as src and keep no state between
// calls beyond their exported parameters and reusable scratch images.
type Effect interface {
	Name() string
	// Apply renders src into dst with the effect. dst is cleared by the caller.
	Apply(src, dst *ebiten.Image) error
	// Process writes the effect of src into dst. Both have identical bounds.
	Process(src, dst *image.RGBA) error
	// Dispose releases GPU scratch images.
	Dispose()
}

// --- Kage shader sources ---
// All shaders use //kage:unit pixels. Ebitengine uses premultiplied alpha and
// so does image.RGBA, so the CPU paths below operate on the same values.

const thresholdShaderSrc = `//kage:unit pixels
package main

var Threshold float
var Smoothing float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	l := dot(c.rgb, vec3(0.2126, 0.7152, 0.0722))
	t := clamp((l-Threshold)/max(Smoothing, 0.0001), 0, 1)
	return c * (t * t * (3 - 2*t))
}
`

const aberrationShaderSrc = `//kage:unit pixels
package main

var Offset vec2

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	origin := imageSrc0Origin()
	size := imageSrc0Size()
	c := imageSrc0At(src)
	d := Offset * size
	r := imageSrc0At(clamp(src+d, origin, origin+size-1)).r
	b := imageSrc0At(clamp(src-d, origin, origin+size-1)).b
	return vec4(r, c.g, b, c.a)
}
`

const vignetteShaderSrc = `//kage:unit pixels
package main

var Darkness float
var Offset float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	uv := (src - imageSrc0Origin()) / imageSrc0Size()
	d := distance(uv, vec2(0.5)) * (Darkness + Offset)
	e0 := 0.8
	e1 := Offset * 0.799
	t := clamp((d-e0)/(e1-e0), 0, 1)
	return vec4(c.rgb*(t*t*(3-2*t)), c.a)
}
`

const grainShaderSrc = `//kage:unit pixels
package main

var Opacity float
var Seed float

func hash(p vec2) float {
	return fract(sin(dot(p, vec2(12.9898, 78.233))+Seed) * 43758.5453)
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	n := hash(floor(src - imageSrc0Origin()))
	screen := 1 - (1-c.rgb)*(1-n)
	return vec4(mix(c.rgb, screen, Opacity), c.a)
}
`

// --- Lazy shader compilation (single-threaded, owned per effect) ---

type lazyShader struct {
	src    string
	shader *ebiten.Shader
	err    error
	tried  bool
}

func (l *lazyShader) get() (*ebiten.Shader, error) {
	if !l.tried {
		l.tried = true
		s, err := ebiten.NewShader([]byte(l.src))
		if err != nil {
			l.err = fmt.Errorf("%w: compile shader: %v", ErrUnsupported, err)
		} else {
			l.shader = s
		}
	}
	return l.shader, l.err
}

func (l *lazyShader) dispose() {
	if l.shader != nil {
		l.shader.Deallocate()
	}
	*l = lazyShader{src: l.src}
}

// --- BloomEffect ---

// BloomEffect adds a blurred copy of the frame's bright areas back onto it.
type BloomEffect struct {
	Intensity float64
	// Threshold is the luminance where pixels start to bloom.
	Threshold float64
	// Smoothing is the luminance range over which bloom fades in above Threshold.
	Smoothing float64

	shader   lazyShader
	uniforms map[string]any
	shaderOp ebiten.DrawRectShaderOptions
	imgOp    ebiten.DrawImageOptions
	bright   *ebiten.Image
	blur     kawaseBlur
}

// NewBloomEffect creates a bloom stage.
func NewBloomEffect(intensity, threshold, smoothing float64) *BloomEffect {
	return &BloomEffect{
		Intensity: intensity,
		Threshold: threshold,
		Smoothing: smoothing,
		shader:    lazyShader{src: thresholdShaderSrc},
		uniforms:  make(map[string]any, 2),
		blur:      kawaseBlur{passes: bloomPasses},
	}
}

const (
	bloomPasses    = 4 // GPU downscale passes
	bloomDownscale = 4 // CPU downscale factor
	bloomBoxRadius = 2
)

func (f *BloomEffect) Name() string { return "bloom" }

// Apply extracts bright pixels, blurs them and composites them additively over src.
func (f *BloomEffect) Apply(src, dst *ebiten.Image) error {
	shader, err := f.shader.get()
	if err != nil {
		return err
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if f.bright == nil || f.bright.Bounds().Dx() != w || f.bright.Bounds().Dy() != h {
		if f.bright != nil {
			f.bright.Deallocate()
		}
		f.bright = ebiten.NewImage(w, h)
	} else {
		f.bright.Clear()
	}
	f.uniforms["Threshold"] = float32(f.Threshold)
	f.uniforms["Smoothing"] = float32(f.Smoothing)
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	f.bright.DrawRectShader(w, h, shader, &f.shaderOp)
	blurred := f.blur.apply(f.bright)

	op := &f.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendCopy
	op.Filter = ebiten.FilterNearest
	dst.DrawImage(src, op)

	op.GeoM.Reset()
	op.GeoM.Scale(float64(w)/float64(blurred.Bounds().Dx()), float64(h)/float64(blurred.Bounds().Dy()))
	k := float32(f.Intensity)
	op.ColorScale.Scale(k, k, k, k)
	op.Blend = ebiten.BlendLighter
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(blurred, op)
	return nil
}

// Process is the CPU bloom: threshold, downscale, box blur, upscale, add.
func (f *BloomEffect) Process(src, dst *image.RGBA) error {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	bright := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			so := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			r, g, bl := float64(src.Pix[so]), float64(src.Pix[so+1]), float64(src.Pix[so+2])
			l := (0.2126*r + 0.7152*g + 0.0722*bl) / 255
			k := smoothstep(f.Threshold, f.Threshold+math.Max(f.Smoothing, 0.0001), l)
			o := bright.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				bright.Pix[o+c] = uint8(float64(src.Pix[so+c])*k + 0.5)
			}
		}
	}
	glow := blurRGBA(bright, bloomDownscale, bloomBoxRadius)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			so := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			do := dst.PixOffset(b.Min.X+x, b.Min.Y+y)
			g := glow.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				dst.Pix[do+c] = addClamp(src.Pix[so+c], float64(glow.Pix[g+c])*f.Intensity)
			}
		}
	}
	return nil
}

// Dispose releases scratch images and the compiled shader.
func (f *BloomEffect) Dispose() {
	if f.bright != nil {
		f.bright.Deallocate()
		f.bright = nil
	}
	f.blur.dispose()
	f.shader.dispose()
}

// --- ChromaticAberrationEffect ---

// ChromaticAberrationEffect shifts the red channel by +Offset and the blue
// channel by -Offset. Offset is a fraction of the frame size per axis.
type ChromaticAberrationEffect struct {
	Offset Vec2

	shader   lazyShader
	uniforms map[string]any
	offset   [2]float32
	shaderOp ebiten.DrawRectShaderOptions
}

// NewChromaticAberrationEffect creates an aberration stage.
func NewChromaticAberrationEffect(offset Vec2) *ChromaticAberrationEffect {
	f := &ChromaticAberrationEffect{
		Offset:   offset,
		shader:   lazyShader{src: aberrationShaderSrc},
		uniforms: make(map[string]any, 1),
	}
	f.uniforms["Offset"] = f.offset[:]
	return f
}

func (f *ChromaticAberrationEffect) Name() string { return "chromatic-aberration" }

// Apply renders the channel split from src into dst.
func (f *ChromaticAberrationEffect) Apply(src, dst *ebiten.Image) error {
	shader, err := f.shader.get()
	if err != nil {
		return err
	}
	f.offset[0] = float32(f.Offset.X)
	f.offset[1] = float32(f.Offset.Y)
	b := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), shader, &f.shaderOp)
	return nil
}

// Process is the CPU channel split with nearest-pixel sampling, clamped at the edges.
func (f *ChromaticAberrationEffect) Process(src, dst *image.RGBA) error {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dx := int(math.Round(f.Offset.X * float64(w)))
	dy := int(math.Round(f.Offset.Y * float64(h)))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := dst.PixOffset(b.Min.X+x, b.Min.Y+y)
			rs := src.PixOffset(b.Min.X+clampInt(x+dx, 0, w-1), b.Min.Y+clampInt(y+dy, 0, h-1))
			bs := src.PixOffset(b.Min.X+clampInt(x-dx, 0, w-1), b.Min.Y+clampInt(y-dy, 0, h-1))
			so := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			dst.Pix[o] = src.Pix[rs]
			dst.Pix[o+1] = src.Pix[so+1]
			dst.Pix[o+2] = src.Pix[bs+2]
			dst.Pix[o+3] = src.Pix[so+3]
		}
	}
	return nil
}

func (f *ChromaticAberrationEffect) Dispose() { f.shader.dispose() }

// --- VignetteEffect ---

// VignetteEffect darkens the frame toward its corners.
type VignetteEffect struct {
	Darkness float64
	// Offset controls the falloff; larger values widen the lit center.
	Offset float64

	shader   lazyShader
	uniforms map[string]any
	shaderOp ebiten.DrawRectShaderOptions
}

// NewVignetteEffect creates a vignette stage.
func NewVignetteEffect(darkness, offset float64) *VignetteEffect {
	return &VignetteEffect{
		Darkness: darkness,
		Offset:   offset,
		shader:   lazyShader{src: vignetteShaderSrc},
		uniforms: make(map[string]any, 2),
	}
}

func (f *VignetteEffect) Name() string { return "vignette" }

// Apply renders the vignette from src into dst.
func (f *VignetteEffect) Apply(src, dst *ebiten.Image) error {
	shader, err := f.shader.get()
	if err != nil {
		return err
	}
	f.uniforms["Darkness"] = float32(f.Darkness)
	f.uniforms["Offset"] = float32(f.Offset)
	b := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), shader, &f.shaderOp)
	return nil
}

// Process is the CPU vignette.
func (f *VignetteEffect) Process(src, dst *image.RGBA) error {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		v := (float64(y)+0.5)/float64(h) - 0.5
		for x := 0; x < w; x++ {
			u := (float64(x)+0.5)/float64(w) - 0.5
			d := math.Hypot(u, v) * (f.Darkness + f.Offset)
			k := smoothstep(0.8, f.Offset*0.799, d)
			so := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			o := dst.PixOffset(b.Min.X+x, b.Min.Y+y)
			dst.Pix[o] = uint8(float64(src.Pix[so])*k + 0.5)
			dst.Pix[o+1] = uint8(float64(src.Pix[so+1])*k + 0.5)
			dst.Pix[o+2] = uint8(float64(src.Pix[so+2])*k + 0.5)
			dst.Pix[o+3] = src.Pix[so+3]
		}
	}
	return nil
}

func (f *VignetteEffect) Dispose() { f.shader.dispose() }

// --- GrainEffect ---

// GrainEffect screens per-pixel noise over the frame. The pattern depends
// only on the pixel position and Seed, so identical inputs give identical
// frames; animate the grain by changing Seed.
type GrainEffect struct {
	Opacity float64
	Seed    uint32

	shader   lazyShader
	uniforms map[string]any
	shaderOp ebiten.DrawRectShaderOptions
}

// NewGrainEffect creates a grain stage.
func NewGrainEffect(opacity float64, seed uint32) *GrainEffect {
	return &GrainEffect{
		Opacity:  opacity,
		Seed:     seed,
		shader:   lazyShader{src: grainShaderSrc},
		uniforms: make(map[string]any, 2),
	}
}

func (f *GrainEffect) Name() string { return "grain" }

// Apply renders the grain from src into dst.
func (f *GrainEffect) Apply(src, dst *ebiten.Image) error {
	shader, err := f.shader.get()
	if err != nil {
		return err
	}
	f.uniforms["Opacity"] = float32(f.Opacity)
	f.uniforms["Seed"] = float32(f.Seed % 4096)
	b := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), shader, &f.shaderOp)
	return nil
}

// Process is the CPU grain using an integer hash of the pixel position.
func (f *GrainEffect) Process(src, dst *image.RGBA) error {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	op := clamp01(f.Opacity)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := float64(grainHash(uint32(x), uint32(y), f.Seed)) / float64(math.MaxUint32)
			so := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			o := dst.PixOffset(b.Min.X+x, b.Min.Y+y)
			for c := 0; c < 3; c++ {
				v := float64(src.Pix[so+c]) / 255
				screen := 1 - (1-v)*(1-n)
				dst.Pix[o+c] = uint8(clamp01(lerp(v, screen, op))*255 + 0.5)
			}
			dst.Pix[o+3] = src.Pix[so+3]
		}
	}
	return nil
}

func (f *GrainEffect) Dispose() { f.shader.dispose() }

// grainHash mixes a pixel position and seed into 32 bits (lowbias32 finalizer).
func grainHash(x, y, seed uint32) uint32 {
	h := x*0x8da6b343 ^ y*0xd8163841 ^ seed*0xcb1ab31f
	h ^= h >> 16
	h *= 0x7feb352d
	h ^= h >> 15
	h *= 0x846ca68b
	h ^= h >> 16
	return h
}

// --- Kawase blur (GPU) ---

// kawaseBlur blurs by iterative bilinear downscale then upscale. Scratch
// images are reallocated when the source size changes.
type kawaseBlur struct {
	passes int
	temps  []*ebiten.Image
	imgOp  ebiten.DrawImageOptions
}

// apply returns a blurred copy of src, owned by the blur, at the size of the
// first downscale pass.
func (k *kawaseBlur) apply(src *ebiten.Image) *ebiten.Image {
	passes := max(k.passes, 1)
	for len(k.temps) < passes {
		k.temps = append(k.temps, nil)
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	op := &k.imgOp
	op.Blend = ebiten.BlendSourceOver
	current := src
	for i := 0; i < passes; i++ {
		w = max(w/2, 1)
		h = max(h/2, 1)
		if k.temps[i] == nil || k.temps[i].Bounds().Dx() != w || k.temps[i].Bounds().Dy() != h {
			if k.temps[i] != nil {
				k.temps[i].Deallocate()
			}
			k.temps[i] = ebiten.NewImage(w, h)
		} else {
			k.temps[i].Clear()
		}
		k.draw(k.temps[i], current)
		current = k.temps[i]
	}
	for i := passes - 2; i >= 0; i-- {
		k.temps[i].Clear()
		k.draw(k.temps[i], current)
		current = k.temps[i]
	}
	return current
}

func (k *kawaseBlur) draw(dst, src *ebiten.Image) {
	op := &k.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	sw := float64(src.Bounds().Dx())
	sh := float64(src.Bounds().Dy())
	op.GeoM.Scale(float64(dst.Bounds().Dx())/sw, float64(dst.Bounds().Dy())/sh)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(src, op)
}

func (k *kawaseBlur) dispose() {
	for i, img := range k.temps {
		if img != nil {
			img.Deallocate()
		}
		k.temps[i] = nil
	}
	k.temps = k.temps[:0]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func addClamp(a uint8, b float64) uint8 {
	v := float64(a) + b
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
