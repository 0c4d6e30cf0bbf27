package lumen

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// RevealState is the animated presentation of a revealed element. Hosts
// apply it to whatever they draw: alpha, a vertical offset in pixels, and a
// uniform scale.
type RevealState struct {
	Opacity float64
	OffsetY float64
	Scale   float64
}

// Reveal animates up to 3 fields of a RevealState simultaneously after an
// optional delay. Call Update(dt) each frame; there is no global manager.
type Reveal struct {
	tweens [3]*gween.Tween
	fields [3]*float64
	count  int
	delay  float32
	state  RevealState
	Done   bool
}

func newReveal(from RevealState, delay float32) *Reveal {
	if delay < 0 {
		delay = 0
	}
	return &Reveal{state: from, delay: delay}
}

func (r *Reveal) add(field *float64, to float64, duration float32, fn ease.TweenFunc) {
	r.tweens[r.count] = gween.New(float32(*field), float32(to), duration, fn)
	r.fields[r.count] = field
	r.count++
}

// Update advances the reveal by dt seconds. Negative dt is ignored.
func (r *Reveal) Update(dt float32) {
	if r.Done || !(dt > 0) {
		return
	}
	if r.delay > 0 {
		if dt <= r.delay {
			r.delay -= dt
			return
		}
		dt -= r.delay
		r.delay = 0
	}
	allDone := true
	for i := 0; i < r.count; i++ {
		val, finished := r.tweens[i].Update(dt)
		*r.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	r.Done = allDone
}

// Finish jumps to the end state.
func (r *Reveal) Finish() {
	r.delay = 0
	for i := 0; i < r.count; i++ {
		val, _ := r.tweens[i].Update(1 << 20)
		*r.fields[i] = float64(val)
	}
	r.Done = true
}

// State returns the current values.
func (r *Reveal) State() RevealState { return r.state }

// FadeIn rises 60px into place while fading in over 0.8s.
func FadeIn(delay float32) *Reveal {
	r := newReveal(RevealState{Opacity: 0, OffsetY: 60, Scale: 1}, delay)
	r.add(&r.state.Opacity, 1, 0.8, ease.OutQuart)
	r.add(&r.state.OffsetY, 0, 0.8, ease.OutQuart)
	return r
}

// SlideUp rises 100px into place while fading in over 1s.
func SlideUp(delay float32) *Reveal {
	r := newReveal(RevealState{Opacity: 0, OffsetY: 100, Scale: 1}, delay)
	r.add(&r.state.Opacity, 1, 1, ease.OutQuint)
	r.add(&r.state.OffsetY, 0, 1, ease.OutQuint)
	return r
}

// StaggerStep is the delay between consecutive StaggerReveal items.
const StaggerStep = 0.1

// StaggerReveal returns n reveals that grow from 95% scale with a slight
// overshoot, each starting StaggerStep after the previous one.
func StaggerReveal(n int, delay float32) []*Reveal {
	if n <= 0 {
		return nil
	}
	out := make([]*Reveal, n)
	for i := range out {
		r := newReveal(RevealState{Opacity: 0, OffsetY: 0, Scale: 0.95}, delay+float32(i)*StaggerStep)
		r.add(&r.state.Opacity, 1, 0.6, outBack(1.2))
		r.add(&r.state.Scale, 1, 0.6, outBack(1.2))
		out[i] = r
	}
	return out
}

// outBack is ease.OutBack with a configurable overshoot.
func outBack(s float32) ease.TweenFunc {
	return func(t, b, c, d float32) float32 {
		t = t/d - 1
		return c*(t*t*((s+1)*t+s)+1) + b
	}
}

// Fade is a single-value tween used for scene-level crossfades.
type Fade struct {
	tween *gween.Tween
	value float64
	Done  bool
}

// NewFade tweens from -> to over duration seconds.
func NewFade(from, to float64, duration float32, fn ease.TweenFunc) *Fade {
	if fn == nil {
		fn = ease.OutCubic
	}
	return &Fade{tween: gween.New(float32(from), float32(to), duration, fn), value: from}
}

func doneFade(v float64) *Fade {
	return &Fade{value: v, Done: true}
}

// Update advances the fade and returns the current value.
func (f *Fade) Update(dt float32) float64 {
	if f.Done || !(dt > 0) {
		return f.value
	}
	val, done := f.tween.Update(dt)
	f.value = float64(val)
	f.Done = done
	return f.value
}

// Value returns the current value.
func (f *Fade) Value() float64 { return f.value }
