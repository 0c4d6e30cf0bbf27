package lumen

import (
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"
)

// BloomConfig parametrizes the bloom stage.
type BloomConfig struct {
	Disabled  bool
	Intensity float64
	Threshold float64
	Smoothing float64
}

// AberrationConfig parametrizes the chromatic aberration stage.
type AberrationConfig struct {
	Disabled bool
	// Offset is the per-axis channel shift as a fraction of the frame size.
	Offset Vec2
}

// VignetteConfig parametrizes the vignette stage.
type VignetteConfig struct {
	Disabled bool
	Darkness float64
	Offset   float64
}

// NoiseConfig parametrizes the grain stage.
type NoiseConfig struct {
	Disabled bool
	Opacity  float64
	Seed     uint32
}

// PipelineConfig holds every stage's parameters. Stage order is fixed:
// bloom, chromatic aberration, vignette, grain.
type PipelineConfig struct {
	Bloom      BloomConfig
	Aberration AberrationConfig
	Vignette   VignetteConfig
	Noise      NoiseConfig
}

// DefaultPipelineConfig returns the site's background grade.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Bloom:      BloomConfig{Intensity: 0.8, Threshold: 0.2, Smoothing: 0.9},
		Aberration: AberrationConfig{Offset: Vec2{X: 0.0015, Y: 0.0015}},
		Vignette:   VignetteConfig{Darkness: 0.5, Offset: 0.5},
		Noise:      NoiseConfig{Opacity: 0.05},
	}
}

// Pipeline runs an ordered, fixed chain of full-screen effects.
type Pipeline struct {
	stages      []Effect
	unsupported []bool
	log         Logger

	pool    renderTexturePool
	backing [2]*ebiten.Image
	scratch [2]*ebiten.Image
	w, h    int
	imgOp   ebiten.DrawImageOptions
}

// NewPipeline builds the chain from cfg. Disabled stages are left out; the
// remaining stages keep their relative order.
func NewPipeline(cfg PipelineConfig, log Logger) *Pipeline {
	p := &Pipeline{log: orNop(log)}
	if !cfg.Bloom.Disabled {
		p.stages = append(p.stages, NewBloomEffect(cfg.Bloom.Intensity, cfg.Bloom.Threshold, cfg.Bloom.Smoothing))
	}
	if !cfg.Aberration.Disabled {
		p.stages = append(p.stages, NewChromaticAberrationEffect(cfg.Aberration.Offset))
	}
	if !cfg.Vignette.Disabled {
		p.stages = append(p.stages, NewVignetteEffect(cfg.Vignette.Darkness, cfg.Vignette.Offset))
	}
	if !cfg.Noise.Disabled {
		p.stages = append(p.stages, NewGrainEffect(cfg.Noise.Opacity, cfg.Noise.Seed))
	}
	p.unsupported = make([]bool, len(p.stages))
	return p
}

// Stages returns the chain in application order. The returned slice MUST NOT be mutated.
func (p *Pipeline) Stages() []Effect {
	return p.stages
}

// Process runs the CPU chain over src and returns a new frame with the same
// bounds. src is not modified. A stage that fails is skipped and the frame
// continues unmodified to the next stage.
func (p *Pipeline) Process(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	current := image.NewRGBA(b)
	draw.Draw(current, b, src, b.Min, draw.Src)
	if b.Empty() {
		return current
	}
	next := image.NewRGBA(b)
	for _, e := range p.stages {
		if err := e.Process(current, next); err != nil {
			p.log.Debugf("post: skip %s: %v", e.Name(), err)
			continue
		}
		current, next = next, current
	}
	return current
}

// Draw runs the GPU chain from src into dst. Scratch targets follow the size
// of src, so a resized viewport never renders through stale buffers. Stages
// that report ErrUnsupported are disabled for the pipeline's lifetime.
func (p *Pipeline) Draw(dst, src *ebiten.Image) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return
	}
	p.ensureSize(w, h)

	current := src
	flip := 0
	for i, e := range p.stages {
		if p.unsupported[i] {
			continue
		}
		out := p.scratch[flip]
		out.Clear()
		if err := e.Apply(current, out); err != nil {
			if errors.Is(err, ErrUnsupported) {
				p.unsupported[i] = true
				p.log.Warnf("post: disabling %s: %v", e.Name(), err)
			} else {
				p.log.Debugf("post: skip %s: %v", e.Name(), err)
			}
			continue
		}
		current = out
		flip ^= 1
	}

	op := &p.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.GeoM.Translate(float64(dst.Bounds().Min.X), float64(dst.Bounds().Min.Y))
	op.Blend = ebiten.BlendSourceOver
	dst.DrawImage(current, op)
}

// Supported reports whether stage i is still enabled on the GPU path.
func (p *Pipeline) Supported(i int) bool {
	return i >= 0 && i < len(p.unsupported) && !p.unsupported[i]
}

// ensureSize acquires scratch targets for a w x h frame. Targets are
// sub-images of pooled power-of-two textures, cut to the exact frame size.
func (p *Pipeline) ensureSize(w, h int) {
	if p.w == w && p.h == h && p.scratch[0] != nil {
		return
	}
	p.releaseScratch()
	rect := image.Rect(0, 0, w, h)
	for i := range p.scratch {
		p.backing[i] = p.pool.Acquire(w, h)
		p.scratch[i] = p.backing[i].SubImage(rect).(*ebiten.Image)
	}
	p.w, p.h = w, h
}

func (p *Pipeline) releaseScratch() {
	for i, img := range p.backing {
		if img == nil {
			continue
		}
		p.pool.Release(img)
		p.backing[i] = nil
		p.scratch[i] = nil
	}
}

// Dispose releases every GPU resource the pipeline owns.
func (p *Pipeline) Dispose() {
	p.releaseScratch()
	p.pool.Dispose()
	for _, e := range p.stages {
		e.Dispose()
	}
	p.w, p.h = 0, 0
}

// blurRGBA returns a soft copy of src at full size: bilinear downscale by
// factor, separable box blur of the given radius, bilinear upscale.
func blurRGBA(src *image.RGBA, factor, radius int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	sw, sh := max(w/factor, 1), max(h/factor, 1)
	small := image.NewRGBA(image.Rect(0, 0, sw, sh))
	draw.BiLinear.Scale(small, small.Bounds(), src, b, draw.Src, nil)
	tmp := image.NewRGBA(small.Bounds())
	boxBlur(tmp, small, radius, true)
	boxBlur(small, tmp, radius, false)
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(out, out.Bounds(), small, small.Bounds(), draw.Src, nil)
	return out
}

// boxBlur writes a one-dimensional box blur of src into dst, clamping at edges.
func boxBlur(dst, src *image.RGBA, radius int, horizontal bool) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	n := 2*radius + 1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum [4]int
			for k := -radius; k <= radius; k++ {
				sx, sy := x, y
				if horizontal {
					sx = clampInt(x+k, 0, w-1)
				} else {
					sy = clampInt(y+k, 0, h-1)
				}
				o := src.PixOffset(b.Min.X+sx, b.Min.Y+sy)
				for c := 0; c < 4; c++ {
					sum[c] += int(src.Pix[o+c])
				}
			}
			o := dst.PixOffset(b.Min.X+x, b.Min.Y+y)
			for c := 0; c < 4; c++ {
				dst.Pix[o+c] = uint8((sum[c] + n/2) / n)
			}
		}
	}
}
