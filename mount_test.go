package lumen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// watchedSurface reports a size and records what it saw when queried.
type watchedSurface struct {
	w, h   int
	onSize func()
}

func (s watchedSurface) Size() (int, int) {
	if s.onSize != nil {
		s.onSize()
	}
	return s.w, s.h
}

func TestMountSwap(t *testing.T) {
	loop := NewFrameLoop()
	m := NewMount(loop, BackgroundOptions{CountScale: 0.05})
	assert.Nil(t, m.Current())

	first, err := m.Swap(PresetComputing, SurfaceSize{W: 800, H: 600})
	require.NoError(t, err)
	assert.True(t, first.Ready())
	assert.Same(t, first, m.Current())
	assert.Equal(t, 1, loop.Len())

	oldDisposed := false
	second, err := m.Swap(PresetAetheris, watchedSurface{w: 800, h: 600, onSize: func() {
		oldDisposed = first.Disposed() && loop.Len() == 0
	}})
	require.NoError(t, err)
	assert.True(t, oldDisposed, "old background must be gone before the new one activates")
	assert.True(t, first.Disposed())
	assert.True(t, second.Ready())
	assert.Equal(t, PresetAetheris, second.Preset())
	assert.Equal(t, 1, loop.Len(), "one active background per mount")
}

func TestMountSwapUnavailableSurface(t *testing.T) {
	loop := NewFrameLoop()
	m := NewMount(loop, BackgroundOptions{})

	bg, err := m.Swap(PresetElite, SurfaceSize{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSurfaceUnavailable))
	require.NotNil(t, bg)
	assert.False(t, bg.Ready())
	assert.Same(t, bg, m.Current())
	assert.Equal(t, 0, loop.Len())

	require.NoError(t, bg.Activate(SurfaceSize{W: 10, H: 10}))
	assert.Equal(t, 1, loop.Len())
}

func TestMountUnmount(t *testing.T) {
	loop := NewFrameLoop()
	m := NewMount(loop, BackgroundOptions{CountScale: 0.05})
	bg, err := m.Swap(PresetAetheris, SurfaceSize{W: 320, H: 240})
	require.NoError(t, err)

	m.Unmount()
	assert.Nil(t, m.Current())
	assert.True(t, bg.Disposed())
	assert.Equal(t, 0, loop.Len())

	m.Unmount()
	m.Draw(nil) // empty mount draws nothing
}
