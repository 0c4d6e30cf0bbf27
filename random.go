package lumen

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// NewSource returns a PCG-backed random source for generator construction.
// A zero seed draws a fresh seed from crypto/rand, so layouts differ per mount;
// pass a fixed seed for reproducible layouts.
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = NewSeed()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSeed returns a high-entropy seed. It falls back to the runtime's
// ambient generator if crypto/rand is unavailable.
func NewSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return rand.Uint64()
	}
	return binary.LittleEndian.Uint64(b[:])
}

// Random returns a random float64 in [Min, Max] drawn from rng.
func (r Range) Random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// centered returns a value in [-span/2, span/2).
func centered(rng *rand.Rand, span float64) float64 {
	return (rng.Float64() - 0.5) * span
}
