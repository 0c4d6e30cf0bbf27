package lumen

import (
	"fmt"
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBackgroundUnready(t *testing.T) {
	loop := NewFrameLoop()
	bg := NewBackground(loop, PresetComputing, BackgroundOptions{})

	assert.False(t, bg.Ready())
	assert.NotEqual(t, uuid.Nil, bg.ID())
	assert.Nil(t, bg.Camera())
	assert.Empty(t, bg.Generators())
	assert.Equal(t, 0, loop.Len(), "no frame callback before activation")
}

func TestActivateEmptySurface(t *testing.T) {
	loop := NewFrameLoop()
	log := newRecLogger()
	bg := NewBackground(loop, PresetComputing, BackgroundOptions{Logger: log})

	err := bg.Activate(SurfaceSize{W: 0, H: 600})
	require.ErrorIs(t, err, ErrSurfaceUnavailable)
	err = bg.Activate(nil)
	require.ErrorIs(t, err, ErrSurfaceUnavailable)

	assert.False(t, bg.Ready())
	assert.Equal(t, 0, loop.Len())
	assert.Len(t, log.lines["warn"], 1, "warn once, then debug")
	assert.Len(t, log.lines["debug"], 1)
}

func TestActivateOnce(t *testing.T) {
	loop := NewFrameLoop()
	bg := NewBackground(loop, PresetComputing, BackgroundOptions{Seed: 7})

	require.NoError(t, bg.Activate(SurfaceSize{W: 800, H: 600}))
	assert.True(t, bg.Ready())
	assert.Equal(t, 1, loop.Len())
	gens := bg.Generators()
	require.Len(t, gens, 6, "streams, lattice and two grids of two layers")

	require.NoError(t, bg.Activate(SurfaceSize{W: 1024, H: 768}))
	assert.Equal(t, 1, loop.Len(), "second Activate must not subscribe again")
	assert.Same(t, gens[0], bg.Generators()[0])
	w, h := bg.Size()
	assert.Equal(t, [2]int{800, 600}, [2]int{w, h})
}

func TestActivateRetryAfterEmptySurface(t *testing.T) {
	loop := NewFrameLoop()
	bg := NewBackground(loop, PresetAetheris, BackgroundOptions{})

	require.Error(t, bg.Activate(SurfaceSize{}))
	require.NoError(t, bg.Activate(SurfaceSize{W: 320, H: 200}))
	assert.True(t, bg.Ready())
}

func TestActivateUnknownPreset(t *testing.T) {
	loop := NewFrameLoop()
	bg := NewBackground(loop, Preset(42), BackgroundOptions{})
	err := bg.Activate(SurfaceSize{W: 100, H: 100})
	require.ErrorIs(t, err, ErrUnknownPreset)
	assert.False(t, bg.Ready())
	assert.Equal(t, 0, loop.Len())
}

func TestBackgroundReveal(t *testing.T) {
	loop := NewFrameLoop()
	bg := NewBackground(loop, PresetComputing, BackgroundOptions{})
	require.NoError(t, bg.Activate(SurfaceSize{W: 800, H: 600}))

	assert.Equal(t, 0.0, bg.Opacity())
	assert.Equal(t, 10.0, bg.FogFar())

	tickN(loop, 6, 0.1)
	assert.Greater(t, bg.Opacity(), 0.0)
	assert.Less(t, bg.Opacity(), 1.0)
	assert.Greater(t, bg.FogFar(), 10.0)

	tickN(loop, 30, 0.1)
	assert.InDelta(t, 1.0, bg.Opacity(), 1e-6)
	assert.InDelta(t, 50.0, bg.FogFar(), 1e-4)
}

func TestBackgroundNoReveal(t *testing.T) {
	loop := NewFrameLoop()
	bg := NewBackground(loop, PresetElite, BackgroundOptions{NoReveal: true})
	require.NoError(t, bg.Activate(SurfaceSize{W: 800, H: 600}))
	assert.Equal(t, 1.0, bg.Opacity())
	assert.Equal(t, 45.0, bg.FogFar())
}

func TestBackgroundClampsLongFrames(t *testing.T) {
	loop := NewFrameLoop()
	bg := NewBackground(loop, PresetAetheris, BackgroundOptions{})
	require.NoError(t, bg.Activate(SurfaceSize{W: 800, H: 600}))

	loop.Tick(5)
	assert.InDelta(t, MaxFrameDelta, bg.Elapsed(), 1e-9)
}

func TestBackgroundSeedDeterminism(t *testing.T) {
	build := func() []float32 {
		bg := NewBackground(NewFrameLoop(), PresetElite, BackgroundOptions{Seed: 99, CountScale: 0.1})
		require.NoError(t, bg.Activate(SurfaceSize{W: 64, H: 64}))
		var all []float32
		for _, g := range bg.Generators() {
			all = append(all, g.Buffer().Positions()...)
		}
		return all
	}
	assert.Equal(t, build(), build())
}

func TestBackgroundCountScale(t *testing.T) {
	bg := NewBackground(NewFrameLoop(), PresetComputing, BackgroundOptions{CountScale: ScaleForTier(TierLow)})
	require.NoError(t, bg.Activate(SurfaceSize{W: 64, H: 64}))
	gens := bg.Generators()
	assert.Equal(t, 1200, gens[0].Buffer().Count(), "streams scale with the tier")
	assert.Equal(t, 20, gens[1].Buffer().Count(), "the lattice is fixed")
}

func TestBackgroundResize(t *testing.T) {
	bg := NewBackground(NewFrameLoop(), PresetAetheris, BackgroundOptions{})
	bg.Resize(100, 100) // unready: ignored
	require.NoError(t, bg.Activate(SurfaceSize{W: 800, H: 600}))

	bg.Resize(1200, 600)
	w, h := bg.Size()
	assert.Equal(t, 1200, w)
	assert.Equal(t, 600, h)
	assert.InDelta(t, 2.0, bg.Camera().Aspect(), 1e-6)
}

func TestBackgroundPointer(t *testing.T) {
	loop := NewFrameLoop()
	bg := NewBackground(loop, PresetElite, BackgroundOptions{CountScale: 0.01})
	require.NoError(t, bg.Activate(SurfaceSize{W: 800, H: 600}))

	bg.SetPointer(1, -1)
	tickN(loop, 120, 1.0/60)
	drift, ok := bg.Generators()[0].(*DriftField)
	require.True(t, ok)
	x, y := drift.Offset()
	assert.InDelta(t, 2, x, 0.01)
	assert.InDelta(t, -2, y, 0.01)
}

func TestBackgroundDispose(t *testing.T) {
	loop := NewFrameLoop()
	bg := NewBackground(loop, PresetComputing, BackgroundOptions{PostFX: true})
	require.NoError(t, bg.Activate(SurfaceSize{W: 800, H: 600}))
	require.NotNil(t, bg.Pipeline())

	bg.Dispose()
	assert.True(t, bg.Disposed())
	assert.False(t, bg.Ready())
	assert.Equal(t, 0, loop.Len())
	assert.Nil(t, bg.Generators())
	assert.Nil(t, bg.Pipeline())

	bg.Dispose()
	assert.ErrorIs(t, bg.Activate(SurfaceSize{W: 800, H: 600}), ErrDisposed)

	loop.Tick(0.016) // no callback left to run
}

func TestBackgroundDisposeBeforeActivate(t *testing.T) {
	loop := NewFrameLoop()
	bg := NewBackground(loop, PresetComputing, BackgroundOptions{})
	bg.Dispose()
	assert.True(t, bg.Disposed())
	assert.Equal(t, 0, loop.Len())
}

func TestBackgroundDisposeDuringTick(t *testing.T) {
	loop := NewFrameLoop()
	bg := NewBackground(loop, PresetAetheris, BackgroundOptions{})
	loop.Subscribe(func(FrameTime) { bg.Dispose() })
	require.NoError(t, bg.Activate(SurfaceSize{W: 800, H: 600}))

	loop.Tick(0.016)
	assert.Equal(t, 0.0, bg.Elapsed(), "removed callback must not run in the same tick")
}

func TestParsePreset(t *testing.T) {
	for _, p := range []Preset{PresetComputing, PresetAetheris, PresetElite} {
		got, err := ParsePreset(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	got, err := ParsePreset("  Elite ")
	require.NoError(t, err)
	assert.Equal(t, PresetElite, got)

	_, err = ParsePreset("vaporwave")
	assert.ErrorIs(t, err, ErrUnknownPreset)
	assert.Equal(t, "Preset(9)", Preset(9).String())
}

func TestScaleForTier(t *testing.T) {
	assert.InDelta(t, 1.0, ScaleForTier(TierHigh), 1e-9)
	assert.InDelta(t, 0.6, ScaleForTier(TierMedium), 1e-9)
	assert.InDelta(t, 0.3, ScaleForTier(TierLow), 1e-9)
}

func TestActivateWithoutLoop(t *testing.T) {
	log := newRecLogger()
	bg := NewBackground(nil, PresetAetheris, BackgroundOptions{Logger: log})

	err := bg.Activate(SurfaceSize{W: 800, H: 600})
	require.ErrorIs(t, err, ErrSurfaceUnavailable)
	assert.False(t, bg.Ready())
	assert.Len(t, log.lines["error"], 1)
	bg.Dispose()
}

func TestPresetComposition(t *testing.T) {
	tests := []struct {
		preset   Preset
		kinds    []string
		group    bool
		scanline bool
	}{
		{PresetComputing, []string{"*lumen.StreamField", "*lumen.LatticeField", "*lumen.GridField", "*lumen.GridField", "*lumen.GridField", "*lumen.GridField"}, false, true},
		{PresetAetheris, []string{"*lumen.VortexField"}, false, false},
		{PresetElite, []string{"*lumen.DriftField", "*lumen.VortexField", "*lumen.EnergyField"}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.preset.String(), func(t *testing.T) {
			bg := NewBackground(NewFrameLoop(), tt.preset, BackgroundOptions{CountScale: 0.01})
			require.NoError(t, bg.Activate(SurfaceSize{W: 320, H: 200}))
			var kinds []string
			for _, g := range bg.Generators() {
				kinds = append(kinds, fmt.Sprintf("%T", g))
			}
			assert.Equal(t, tt.kinds, kinds)
			assert.Equal(t, tt.group, bg.recipe.group != nil)
			assert.Equal(t, tt.scanline, bg.scan != nil)
		})
	}
}

func TestComputingGridPlanes(t *testing.T) {
	bg := NewBackground(NewFrameLoop(), PresetComputing, BackgroundOptions{CountScale: 0.01})
	require.NoError(t, bg.Activate(SurfaceSize{W: 320, H: 200}))
	heights := map[float32]int{}
	for _, g := range bg.Generators()[2:] {
		require.Positive(t, g.Buffer().Count())
		heights[g.Buffer().At(0).Y()]++
	}
	assert.Equal(t, map[float32]int{-5: 2, 25: 2}, heights)
}

func TestRevealDollyIn(t *testing.T) {
	loop := NewFrameLoop()
	bg := NewBackground(loop, PresetAetheris, BackgroundOptions{})
	require.NoError(t, bg.Activate(SurfaceSize{W: 800, H: 600}))

	cam := bg.Camera()
	assert.InDelta(t, revealDollyFrom, cam.Position.Z(), 1e-6)
	assert.True(t, cam.Dollying())
	tickN(loop, 30, 0.05)
	z := cam.Position.Z()
	assert.Less(t, z, float32(revealDollyFrom))
	assert.Greater(t, z, float32(20))

	tickN(loop, 40, 0.05)
	assert.InDelta(t, 20, cam.Position.Z(), 1e-6)
	assert.False(t, cam.Dollying())
}

func TestNoRevealSkipsDolly(t *testing.T) {
	bg := NewBackground(NewFrameLoop(), PresetAetheris, BackgroundOptions{NoReveal: true})
	require.NoError(t, bg.Activate(SurfaceSize{W: 800, H: 600}))
	assert.InDelta(t, 20, bg.Camera().Position.Z(), 1e-6)
	assert.False(t, bg.Camera().Dollying())
}

func TestEliteGroupHovers(t *testing.T) {
	loop := NewFrameLoop()
	bg := NewBackground(loop, PresetElite, BackgroundOptions{CountScale: 0.01})
	require.NoError(t, bg.Activate(SurfaceSize{W: 800, H: 600}))

	start := bg.points.group
	tickN(loop, 60, 1.0/60)
	moved := bg.points.group
	assert.NotEqual(t, start, moved)
	assert.Equal(t, bg.recipe.group.Transform(bg.Elapsed()), moved)

	other := NewBackground(NewFrameLoop(), PresetAetheris, BackgroundOptions{})
	require.NoError(t, other.Activate(SurfaceSize{W: 800, H: 600}))
	assert.Equal(t, mgl32.Ident4(), other.points.group)
}

func TestBackgroundDrawDirect(t *testing.T) {
	loop := NewFrameLoop()
	bg := NewBackground(loop, PresetAetheris, BackgroundOptions{CountScale: 0.05, NoReveal: true})
	screen := ebiten.NewImage(320, 200)

	bg.Draw(screen) // unready: nothing happens
	assert.Equal(t, 0, bg.stats.draws)

	require.NoError(t, bg.Activate(SurfaceSize{W: 320, H: 200}))
	loop.Tick(1.0 / 60)
	bg.Draw(screen)
	assert.Equal(t, 1, bg.stats.draws)
	assert.Nil(t, bg.frame, "no offscreen frame without PostFX")
	quads, _ := bg.points.counts()
	assert.Positive(t, quads)
	bg.Dispose()
}

func TestBackgroundDrawPostFX(t *testing.T) {
	loop := NewFrameLoop()
	bg := NewBackground(loop, PresetComputing, BackgroundOptions{CountScale: 0.05, PostFX: true, NoReveal: true})
	require.NoError(t, bg.Activate(SurfaceSize{W: 320, H: 200}))
	loop.Tick(1.0 / 60)

	bg.Draw(ebiten.NewImage(320, 200))
	require.NotNil(t, bg.frame)
	assert.Equal(t, image.Rect(0, 0, 320, 200), bg.frame.Bounds())
	assert.Equal(t, image.Rect(0, 0, 512, 256), bg.frameBuf.Bounds())
	assert.Equal(t, [2]int{320, 200}, [2]int{bg.post.w, bg.post.h})
	require.NotNil(t, bg.scan)
	assert.NotNil(t, bg.scan.pixel)

	bg.Draw(ebiten.NewImage(640, 360))
	assert.Equal(t, image.Rect(0, 0, 640, 360), bg.frame.Bounds())
	assert.Equal(t, [2]int{640, 360}, [2]int{bg.post.w, bg.post.h})
	assert.Equal(t, 1, bg.pool.Idle(), "the old frame went back to the pool")

	bg.Dispose()
	assert.Nil(t, bg.frame)
	assert.Equal(t, 0, bg.pool.Idle())
}
