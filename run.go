package lumen

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig configures Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// Preset is the scene mounted on the first frame.
	Preset Preset
	// ShowFPS draws the current frame rate in the top-left corner.
	ShowFPS bool
	// Update runs once per tick after the frame loop, with the raw tick delta.
	// A non-nil error stops the game.
	Update func(dt float64) error
	// Overlay draws on top of the background every frame.
	Overlay func(screen *ebiten.Image)
	Logger  Logger
}

// game adapts a Mount to ebiten.Game.
type game struct {
	mount   *Mount
	cfg     RunConfig
	log     Logger
	dt      float64
	w, h    int
	started bool
	cursor  func() (int, int)
}

func newGame(mount *Mount, cfg RunConfig) *game {
	return &game{
		mount:  mount,
		cfg:    cfg,
		log:    orNop(cfg.Logger),
		dt:     1 / float64(ebiten.DefaultTPS),
		w:      cfg.Width,
		h:      cfg.Height,
		cursor: ebiten.CursorPosition,
	}
}

// Run opens a window and drives mount until the window closes or Update
// returns an error. The background is activated on the first Draw, once the
// window has reported its size.
func Run(mount *Mount, cfg RunConfig) error {
	if mount == nil {
		return fmt.Errorf("run: nil mount")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("run: window size %dx%d must be positive", cfg.Width, cfg.Height)
	}
	g := newGame(mount, cfg)
	g.dt = 1 / float64(ebiten.TPS())

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	defer mount.Unmount()
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

func (g *game) Update() error {
	if bg := g.mount.Current(); bg != nil && bg.Ready() && g.w > 0 && g.h > 0 {
		cx, cy := g.cursor()
		bg.SetPointer(
			float64(cx)/float64(g.w)*2-1,
			1-float64(cy)/float64(g.h)*2,
		)
	}
	g.mount.Loop().Tick(g.dt)
	if g.cfg.Update != nil {
		return g.cfg.Update(g.dt)
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.activate()
	g.mount.Draw(screen)
	if g.cfg.Overlay != nil {
		g.cfg.Overlay(screen)
	}
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

// activate mounts the first background, or retries activation of one that
// saw an empty surface.
func (g *game) activate() {
	surface := SurfaceSize{W: g.w, H: g.h}
	if !g.started {
		g.started = true
		if _, err := g.mount.Swap(g.cfg.Preset, surface); err != nil {
			g.log.Debugf("run: %v", err)
		}
		return
	}
	if bg := g.mount.Current(); bg != nil && !bg.Ready() && !bg.Disposed() {
		_ = bg.Activate(surface)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.w, g.h = outsideWidth, outsideHeight
	if bg := g.mount.Current(); bg != nil {
		bg.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
