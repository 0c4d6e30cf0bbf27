package lumen

import (
	"fmt"
	"math"
	"testing"
)

const epsilon = 1e-4

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertNear32(t *testing.T, name string, got, want float32) {
	t.Helper()
	assertNear(t, name, float64(got), float64(want))
}

// recLogger records every line for assertions.
type recLogger struct {
	debug bool
	lines map[string][]string
}

func newRecLogger() *recLogger {
	return &recLogger{lines: map[string][]string{}}
}

func (l *recLogger) rec(level, format string, args ...any) {
	l.lines[level] = append(l.lines[level], fmt.Sprintf(format, args...))
}

func (l *recLogger) DebugEnabled() bool { return l.debug }
func (l *recLogger) Debugf(format string, args ...any) { l.rec("debug", format, args...) }
func (l *recLogger) Infof(format string, args ...any) { l.rec("info", format, args...) }
func (l *recLogger) Warnf(format string, args ...any) { l.rec("warn", format, args...) }
func (l *recLogger) Errorf(format string, args ...any) { l.rec("error", format, args...) }

// tickN advances loop n times by dt.
func tickN(loop *FrameLoop, n int, dt float64) {
	for i := 0; i < n; i++ {
		loop.Tick(dt)
	}
}
