package lumen

import (
	"image"
	"math/bits"

	"github.com/hajimehoshi/ebiten/v2"
)

// renderTexturePool keeps offscreen targets keyed by power-of-two size so a
// viewport that shrinks and grows again reuses its old textures.
type renderTexturePool struct {
	buckets map[image.Point][]*ebiten.Image
	live    int
}

// Acquire returns a cleared target with at least w x h pixels.
func (p *renderTexturePool) Acquire(w, h int) *ebiten.Image {
	key := image.Pt(nextPowerOfTwo(w), nextPowerOfTwo(h))
	if stack := p.buckets[key]; len(stack) > 0 {
		img := stack[len(stack)-1]
		p.buckets[key] = stack[:len(stack)-1]
		img.Clear()
		p.live++
		return img
	}
	p.live++
	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, key.X, key.Y),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// Release hands img back. Clearing is deferred to the next Acquire.
func (p *renderTexturePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	if p.buckets == nil {
		p.buckets = make(map[image.Point][]*ebiten.Image)
	}
	key := img.Bounds().Size()
	p.buckets[key] = append(p.buckets[key], img)
	if p.live > 0 {
		p.live--
	}
}

// Idle returns the number of released targets waiting for reuse.
func (p *renderTexturePool) Idle() int {
	n := 0
	for _, stack := range p.buckets {
		n += len(stack)
	}
	return n
}

// Dispose deallocates every idle target. Targets still acquired are the
// caller's to release first.
func (p *renderTexturePool) Dispose() {
	for key, stack := range p.buckets {
		for _, img := range stack {
			img.Deallocate()
		}
		delete(p.buckets, key)
	}
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
