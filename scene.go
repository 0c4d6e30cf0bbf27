package lumen

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

var (
	// ErrSurfaceUnavailable is returned by Activate when the surface has no
	// drawable area yet.
	ErrSurfaceUnavailable = errors.New("lumen: surface unavailable")
	// ErrDisposed is returned when a disposed Background is used.
	ErrDisposed = errors.New("lumen: background disposed")
	// ErrUnknownPreset is returned for preset names and values outside the set.
	ErrUnknownPreset = errors.New("lumen: unknown preset")
)

// Surface is the drawable area a Background attaches to.
type Surface interface {
	Size() (w, h int)
}

// SurfaceSize is a fixed-size Surface.
type SurfaceSize struct{ W, H int }

// Size implements Surface.
func (s SurfaceSize) Size() (int, int) { return s.W, s.H }

// Reveal timings for a freshly activated background. The camera starts
// revealDollyFrom units out and settles at its default distance.
const (
	revealOpacityDuration = 1.5
	revealFogDuration     = 2.5
	revealDollyFrom       = 24
)

// BackgroundOptions configures a Background.
type BackgroundOptions struct {
	// Seed fixes generator layouts. Zero draws a fresh seed.
	Seed uint64
	// CountScale multiplies particle counts. Zero means 1. See ScaleForTier.
	CountScale float64
	// PostFX enables the post-processing chain.
	PostFX bool
	// Post holds stage parameters when PostFX is set. nil selects
	// DefaultPipelineConfig.
	Post *PipelineConfig
	// NoReveal starts fully visible instead of fading in.
	NoReveal bool
	Logger   Logger
}

// Background is one composed scene bound to a host frame loop. It starts
// unready; Activate allocates everything once the surface has a size.
type Background struct {
	id     uuid.UUID
	preset Preset
	opts   BackgroundOptions
	loop   *FrameLoop
	log    Logger

	ready    bool
	disposed bool
	warned   bool

	recipe sceneRecipe
	gens   []Generator
	cam    *Camera
	points *PointRenderer
	post   *Pipeline
	scan   *scanlineLayer
	handle FrameHandle

	clock   float64
	opacity *Fade
	fogFar  *Fade

	pool     renderTexturePool
	frameBuf *ebiten.Image
	frame    *ebiten.Image
	w, h     int

	stats frameStats
}

// NewBackground creates an unready background bound to loop. No GPU work
// happens here. Activate fails while loop is nil.
func NewBackground(loop *FrameLoop, preset Preset, opts BackgroundOptions) *Background {
	return &Background{
		id:     uuid.New(),
		preset: preset,
		opts:   opts,
		loop:   loop,
		log:    orNop(opts.Logger),
	}
}

// ID returns the background's unique id, used in log lines.
func (b *Background) ID() uuid.UUID { return b.id }

// Preset returns the scene this background composes.
func (b *Background) Preset() Preset { return b.preset }

// Ready reports whether Activate succeeded and Dispose has not been called.
func (b *Background) Ready() bool { return b.ready }

// Disposed reports whether Dispose has been called.
func (b *Background) Disposed() bool { return b.disposed }

// Generators returns the active generators. The returned slice MUST NOT be mutated.
func (b *Background) Generators() []Generator { return b.gens }

// Camera returns the scene camera, nil before activation.
func (b *Background) Camera() *Camera { return b.cam }

// Pipeline returns the post chain, nil when PostFX is off or before activation.
func (b *Background) Pipeline() *Pipeline { return b.post }

// Size returns the current drawable size.
func (b *Background) Size() (w, h int) { return b.w, b.h }

// Activate moves the background to ready once surface reports a non-zero
// size. Calling it again while ready is a no-op. On failure the background
// stays unready and Draw draws nothing.
func (b *Background) Activate(surface Surface) error {
	if b.disposed {
		return fmt.Errorf("activate %s: %w", b.id, ErrDisposed)
	}
	if b.ready {
		return nil
	}
	w, h := 0, 0
	if surface != nil {
		w, h = surface.Size()
	}
	if w <= 0 || h <= 0 {
		err := fmt.Errorf("activate %s: %dx%d: %w", b.id, w, h, ErrSurfaceUnavailable)
		if !b.warned {
			b.log.Warnf("background %s: %v", b.preset, err)
			b.warned = true
		} else {
			b.log.Debugf("background %s: %v", b.preset, err)
		}
		return err
	}
	if b.loop == nil {
		err := fmt.Errorf("activate %s: no frame loop: %w", b.id, ErrSurfaceUnavailable)
		b.log.Errorf("background %s: %v", b.preset, err)
		return err
	}
	recipe, err := b.preset.recipe()
	if err != nil {
		b.log.Errorf("background %s: %v", b.id, err)
		return fmt.Errorf("activate %s: %w", b.id, err)
	}

	scale := b.opts.CountScale
	if !(scale > 0) {
		scale = 1
	}
	rng := NewSource(b.opts.Seed)

	b.recipe = recipe
	b.gens = recipe.build(rng, scale)
	b.cam = NewCamera(Rect{Width: float64(w), Height: float64(h)})
	b.points = NewPointRenderer(b.gens, recipe.fog, recipe.light)
	if b.opts.PostFX {
		cfg := DefaultPipelineConfig()
		if b.opts.Post != nil {
			cfg = *b.opts.Post
		}
		b.post = NewPipeline(cfg, b.log)
	}
	if recipe.scanline.Opacity > 0 {
		b.scan = &scanlineLayer{line: recipe.scanline}
	}
	b.w, b.h = w, h
	b.clock = 0
	b.moveGroup()
	b.startReveal()

	b.handle = b.loop.Subscribe(b.onFrame)
	b.ready = true
	b.stats.reset(time.Now())
	b.log.Infof("background %s: %s ready at %dx%d (%d points)", b.id, b.preset, w, h, b.pointCount())
	return nil
}

func (b *Background) startReveal() {
	fog := b.recipe.fog
	if b.opts.NoReveal {
		b.opacity = doneFade(1)
		b.fogFar = doneFade(fog.Far)
		return
	}
	b.opacity = NewFade(0, 1, revealOpacityDuration, ease.OutCubic)
	b.points.SetOpacity(0)
	rest := b.cam.Position.Z()
	b.cam.Position[2] = revealDollyFrom
	b.cam.DollyTo(rest, revealFogDuration, ease.OutCubic)
	if fog.Far > 0 {
		b.fogFar = NewFade(fog.Near, fog.Far, revealFogDuration, ease.OutQuart)
		b.points.SetFogFar(fog.Near)
	} else {
		b.fogFar = doneFade(0)
	}
}

func (b *Background) pointCount() int {
	n := 0
	for _, g := range b.gens {
		n += g.Buffer().Count()
	}
	return n
}

// onFrame advances every generator and the reveal.
func (b *Background) onFrame(ft FrameTime) {
	dt := clampDelta(ft.Delta)
	b.clock += dt
	for i, g := range b.gens {
		if g.Update(b.clock, dt) {
			b.points.MarkDirty(i)
		}
	}
	b.moveGroup()
	if b.cam.Dollying() {
		b.cam.update(float32(dt))
	}
	if !b.opacity.Done {
		b.points.SetOpacity(float32(b.opacity.Update(float32(dt))))
	}
	if !b.fogFar.Done {
		b.points.SetFogFar(b.fogFar.Update(float32(dt)))
	}
	b.stats.frames++
}

// moveGroup applies the preset's whole-scene hover at the current clock.
func (b *Background) moveGroup() {
	if b.recipe.group != nil {
		b.points.SetGroup(b.recipe.group.Transform(b.clock))
	}
}

// Opacity returns the current reveal opacity.
func (b *Background) Opacity() float64 {
	if b.opacity == nil {
		return 0
	}
	return b.opacity.Value()
}

// FogFar returns the current far fog distance.
func (b *Background) FogFar() float64 {
	if b.points == nil {
		return 0
	}
	return b.points.Fog().Far
}

// Elapsed returns the scene clock in seconds since activation.
func (b *Background) Elapsed() float64 { return b.clock }

// SetPointer forwards a normalized pointer position in [-1, 1] (y up) to
// every generator that follows the pointer.
func (b *Background) SetPointer(x, y float64) {
	for _, g := range b.gens {
		if pf, ok := g.(PointerFollower); ok {
			pf.SetPointer(x, y)
		}
	}
}

// Resize follows a change of the drawable size. Scratch targets are
// reacquired lazily on the next Draw.
func (b *Background) Resize(w, h int) {
	if !b.ready || (w == b.w && h == b.h) {
		return
	}
	b.releaseFrame()
	b.w, b.h = w, h
	if w > 0 && h > 0 {
		b.cam.Resize(w, h)
	}
	b.log.Debugf("background %s: resized to %dx%d", b.id, w, h)
}

// Draw renders the scene into screen. It is a no-op until Activate succeeds.
func (b *Background) Draw(screen *ebiten.Image) {
	if !b.ready {
		return
	}
	bounds := screen.Bounds()
	b.Resize(bounds.Dx(), bounds.Dy())
	if b.w <= 0 || b.h <= 0 {
		return
	}

	t0 := time.Now()
	b.points.Prepare(b.cam)
	b.stats.prepare += time.Since(t0)

	t0 = time.Now()
	if b.post == nil {
		screen.Fill(b.clearColor())
		b.points.Draw(screen)
	} else {
		target := b.ensureFrame()
		target.Fill(b.clearColor())
		b.points.Draw(target)
		b.post.Draw(screen, target)
	}
	if b.scan != nil {
		b.scan.Draw(screen, b.clock)
	}
	b.stats.draw += time.Since(t0)
	b.stats.maybeLog(b.log, b.id, b.points, time.Now())
}

func (b *Background) clearColor() color.Color {
	return SceneBackdrop.RGBA8()
}

func (b *Background) ensureFrame() *ebiten.Image {
	if b.frame != nil {
		return b.frame
	}
	b.frameBuf = b.pool.Acquire(b.w, b.h)
	b.frame = b.frameBuf.SubImage(image.Rect(0, 0, b.w, b.h)).(*ebiten.Image)
	return b.frame
}

func (b *Background) releaseFrame() {
	if b.frameBuf != nil {
		b.pool.Release(b.frameBuf)
	}
	b.frameBuf, b.frame = nil, nil
}

// Dispose stops the frame callback, then releases every image and buffer.
// It is safe to call more than once.
func (b *Background) Dispose() {
	if b.disposed {
		return
	}
	b.handle.Remove()
	b.disposed = true
	b.ready = false

	b.releaseFrame()
	b.pool.Dispose()
	if b.points != nil {
		b.points.Dispose()
	}
	if b.post != nil {
		b.post.Dispose()
	}
	if b.scan != nil {
		b.scan.Dispose()
	}
	b.gens = nil
	b.points = nil
	b.post = nil
	b.scan = nil
	b.log.Debugf("background %s: disposed", b.id)
}
