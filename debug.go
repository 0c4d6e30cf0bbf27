package lumen

import (
	"time"

	"github.com/google/uuid"
)

// statsInterval is how often a background reports frame timings at debug level.
const statsInterval = 5 * time.Second

// frameStats accumulates per-background timings between debug reports.
type frameStats struct {
	since   time.Time
	frames  int
	draws   int
	prepare time.Duration
	draw    time.Duration
}

func (s *frameStats) reset(now time.Time) {
	*s = frameStats{since: now}
}

// maybeLog reports averaged timings once per statsInterval and starts a new
// window. Nothing is computed when debug output is off.
func (s *frameStats) maybeLog(log Logger, id uuid.UUID, points *PointRenderer, now time.Time) {
	s.draws++
	if now.Sub(s.since) < statsInterval {
		return
	}
	if log.DebugEnabled() && s.draws > 0 {
		quads, calls := points.counts()
		n := time.Duration(s.draws)
		log.Debugf("background %s: %d frames %d draws, prepare %v draw %v, %d points in %d calls",
			id, s.frames, s.draws, s.prepare/n, s.draw/n, quads, calls)
	}
	s.reset(now)
}

// counts returns the visible quads and the draw calls the last Prepare produced.
func (r *PointRenderer) counts() (quads, calls int) {
	for _, b := range r.batches {
		q := b.quads()
		quads += q
		calls += (q + maxQuadsPerDraw - 1) / maxQuadsPerDraw
	}
	return quads, calls
}
