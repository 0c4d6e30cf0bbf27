// Package lumen renders animated 3D particle backgrounds and the small
// presentation helpers that sit on top of them, for [Ebitengine].
//
// A background is one of three presets ([PresetComputing], [PresetAetheris],
// [PresetElite]), each a fixed composition of particle generators, fog and
// point lights viewed through a perspective [Camera]. Generators simulate on
// the CPU; [PointRenderer] projects them into billboarded quads and an
// optional [Pipeline] grades the frame with bloom, chromatic aberration,
// vignette and grain.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	loop := lumen.NewFrameLoop()
//	mount := lumen.NewMount(loop, lumen.BackgroundOptions{PostFX: true})
//	lumen.Run(mount, lumen.RunConfig{
//		Title: "Lumen", Width: 1280, Height: 720,
//		Preset: lumen.PresetAetheris,
//	})
//
// For full control, implement [ebiten.Game] yourself. Tick the [FrameLoop]
// from Update, activate the background once the surface has a size, and
// draw it from Draw:
//
//	bg := lumen.NewBackground(loop, lumen.PresetElite, lumen.BackgroundOptions{})
//	if err := bg.Activate(lumen.SurfaceSize{W: 1280, H: 720}); err != nil {
//		// retry on a later frame
//	}
//	loop.Tick(1.0 / 60)
//	bg.Draw(screen)
//
// # Frame loop
//
// Every animated piece subscribes to a shared [FrameLoop] and receives the
// elapsed time and clamped delta of each tick. Handles returned by
// [FrameLoop.Subscribe] may be removed at any time, including from inside a
// callback.
//
// # Lifecycle
//
// [Mount] owns at most one background. [Mount.Swap] disposes the current
// background before the next one acquires GPU resources, and a background
// whose surface has no size yet stays inert until a later Activate succeeds.
// [Background.Dispose] is idempotent.
//
// # Tilt and reveal
//
// [Tilt] drives a damped spring (via [harmonica]) toward a rotation derived
// from the pointer position over an element; [Bind] ties one to an
// [Element] and a loop. [FadeIn], [SlideUp] and [StaggerReveal] are
// one-shot entrance animations built on [gween].
//
// # Configuration
//
// [LoadConfig] reads LUMEN_* environment variables. [Config.Tier] maps the
// host to a [Tier] and [ScaleForTier] turns that into particle counts.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [harmonica]: https://github.com/charmbracelet/harmonica
package lumen
