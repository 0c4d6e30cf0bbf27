package lumen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(preset Preset) (*game, *Mount) {
	m := NewMount(NewFrameLoop(), BackgroundOptions{CountScale: 0.05})
	g := newGame(m, RunConfig{Width: 800, Height: 600, Preset: preset})
	g.cursor = func() (int, int) { return 400, 300 }
	return g, m
}

func TestRunRejectsBadConfig(t *testing.T) {
	assert.Error(t, Run(nil, RunConfig{Width: 1, Height: 1}))
	assert.Error(t, Run(NewMount(NewFrameLoop(), BackgroundOptions{}), RunConfig{}))
}

func TestGameLayoutTracksWindow(t *testing.T) {
	g, m := newTestGame(PresetAetheris)
	w, h := g.Layout(1024, 768)
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)

	g.activate()
	bg := m.Current()
	require.NotNil(t, bg)
	require.True(t, bg.Ready())
	bw, bh := bg.Size()
	assert.Equal(t, [2]int{1024, 768}, [2]int{bw, bh})

	g.Layout(640, 480)
	bw, bh = bg.Size()
	assert.Equal(t, [2]int{640, 480}, [2]int{bw, bh})
}

func TestGameActivatesOnce(t *testing.T) {
	g, m := newTestGame(PresetComputing)
	g.activate()
	first := m.Current()
	g.activate()
	assert.Same(t, first, m.Current())
	assert.Equal(t, 1, m.Loop().Len())
}

func TestGameRetriesEmptySurface(t *testing.T) {
	g, m := newTestGame(PresetComputing)
	g.Layout(0, 0)
	g.activate()
	require.NotNil(t, m.Current())
	assert.False(t, m.Current().Ready())

	g.Layout(800, 600)
	g.activate()
	assert.True(t, m.Current().Ready())
}

func TestGameUpdateTicksLoop(t *testing.T) {
	g, m := newTestGame(PresetElite)
	g.activate()
	g.cursor = func() (int, int) { return 800, 0 } // top-right corner

	var seen []float64
	g.cfg.Update = func(dt float64) error {
		seen = append(seen, dt)
		return nil
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, g.Update())
	}
	assert.Equal(t, uint64(3), m.Loop().Now().Frame)
	assert.Len(t, seen, 3)
	assert.InDelta(t, 1.0/60, seen[0], 1e-9)

	drift := m.Current().Generators()[0].(*DriftField)
	x, y := drift.Offset()
	assert.Greater(t, x, 0.0)
	assert.Greater(t, y, 0.0, "screen top maps to world up")
}

func TestGameUpdateError(t *testing.T) {
	g, _ := newTestGame(PresetAetheris)
	stop := errors.New("stop")
	g.cfg.Update = func(float64) error { return stop }
	assert.ErrorIs(t, g.Update(), stop)
}
