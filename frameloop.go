package lumen

// FrameTime is passed to every frame subscriber.
type FrameTime struct {
	// Elapsed is the loop clock in seconds since the first tick.
	Elapsed float64
	// Delta is the raw time since the previous tick. Consumers clamp it.
	Delta float64
	// Frame counts ticks, starting at 1.
	Frame uint64
}

type frameEntry struct {
	id      uint32
	fn      func(FrameTime)
	removed bool
}

// FrameLoop is a host-driven registry of per-frame callbacks. The host calls
// Tick once per display refresh; it never runs on its own. FrameLoop is not
// safe for concurrent use: subscribe, remove and tick from the host loop.
type FrameLoop struct {
	entries []*frameEntry
	tickBuf []*frameEntry
	nextID  uint32
	now     FrameTime
}

// NewFrameLoop creates an empty loop.
func NewFrameLoop() *FrameLoop {
	return &FrameLoop{}
}

// FrameHandle allows removing a registered frame callback.
type FrameHandle struct {
	id    uint32
	entry *frameEntry
	loop  *FrameLoop
}

// Subscribe registers fn to run on every tick until the handle is removed.
func (l *FrameLoop) Subscribe(fn func(FrameTime)) FrameHandle {
	l.nextID++
	e := &frameEntry{id: l.nextID, fn: fn}
	l.entries = append(l.entries, e)
	return FrameHandle{id: e.id, entry: e, loop: l}
}

// Remove unregisters the callback. It is safe to call more than once and
// from inside a tick; a callback removed mid-tick does not run afterwards.
func (h FrameHandle) Remove() {
	if h.loop == nil || h.entry == nil || h.entry.removed {
		return
	}
	h.entry.removed = true
	s := h.loop.entries
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = nil
			h.loop.entries = s[:len(s)-1]
			return
		}
	}
}

// Active reports whether the callback is still registered.
func (h FrameHandle) Active() bool {
	return h.entry != nil && !h.entry.removed
}

// Len returns the number of registered callbacks.
func (l *FrameLoop) Len() int { return len(l.entries) }

// Now returns the time of the most recent tick.
func (l *FrameLoop) Now() FrameTime { return l.now }

// Tick advances the loop clock by dt seconds and runs every callback.
// Non-finite or negative dt advances the frame counter without moving the clock.
func (l *FrameLoop) Tick(dt float64) {
	if !finite(dt) || dt < 0 {
		dt = 0
	}
	l.now.Elapsed += dt
	l.now.Delta = dt
	l.now.Frame++

	// Snapshot so callbacks may subscribe or remove during the tick.
	l.tickBuf = append(l.tickBuf[:0], l.entries...)
	for _, e := range l.tickBuf {
		if e.removed {
			continue
		}
		e.fn(l.now)
	}
	clear(l.tickBuf)
}
