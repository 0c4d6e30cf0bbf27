package lumen

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// Mount is a mount point holding at most one active Background.
type Mount struct {
	loop    *FrameLoop
	opts    BackgroundOptions
	log     Logger
	current *Background
}

// NewMount creates an empty mount point driven by loop. opts is applied to
// every background the mount creates.
func NewMount(loop *FrameLoop, opts BackgroundOptions) *Mount {
	return &Mount{loop: loop, opts: opts, log: orNop(opts.Logger)}
}

// Current returns the mounted background or nil.
func (m *Mount) Current() *Background { return m.current }

// Loop returns the frame loop backgrounds subscribe to.
func (m *Mount) Loop() *FrameLoop { return m.loop }

// Swap fully disposes the current background, then creates one for preset
// and activates it against surface. A failed activation keeps the new
// background mounted but unready; Activate can be retried through Current.
func (m *Mount) Swap(preset Preset, surface Surface) (*Background, error) {
	m.Unmount()
	bg := NewBackground(m.loop, preset, m.opts)
	m.current = bg
	if err := bg.Activate(surface); err != nil {
		return bg, fmt.Errorf("swap to %s: %w", preset, err)
	}
	return bg, nil
}

// Unmount disposes the current background, leaving the mount empty.
func (m *Mount) Unmount() {
	if m.current == nil {
		return
	}
	m.current.Dispose()
	m.log.Debugf("mount: unmounted %s", m.current.ID())
	m.current = nil
}

// Draw renders the current background, if any.
func (m *Mount) Draw(screen *ebiten.Image) {
	if m.current != nil {
		m.current.Draw(screen)
	}
}
