package lumen

import "runtime"

// Tier is a coarse classification of host capability.
type Tier uint8

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "low"
	}
}

// ParticleCount returns the particle budget for the tier.
func (t Tier) ParticleCount() int {
	switch t {
	case TierHigh:
		return 500
	case TierMedium:
		return 300
	default:
		return 150
	}
}

// DeviceHints are host-reported capability hints. Zero means unknown.
type DeviceHints struct {
	// MemoryGB is the approximate device memory in gigabytes.
	MemoryGB float64
	// Cores is the number of logical CPU cores.
	Cores int
	// Headless is set when no interactive host exists (e.g. a server-side
	// render). It short-circuits to the medium tier.
	Headless bool
}

const defaultCores = 4

// PerformanceTier classifies hints. It is a pure function. Memory wins when
// known; otherwise the core count decides, defaulting to 4 cores.
func PerformanceTier(h DeviceHints) Tier {
	if h.Headless {
		return TierMedium
	}
	if h.MemoryGB > 0 {
		switch {
		case h.MemoryGB >= 8:
			return TierHigh
		case h.MemoryGB >= 4:
			return TierMedium
		default:
			return TierLow
		}
	}
	cores := h.Cores
	if cores <= 0 {
		cores = defaultCores
	}
	switch {
	case cores >= 8:
		return TierHigh
	case cores >= 4:
		return TierMedium
	default:
		return TierLow
	}
}

// ProbeHost collects hints from the Go runtime. memoryGB comes from the
// host configuration since Go has no portable memory query; pass 0 if unknown.
func ProbeHost(memoryGB float64) DeviceHints {
	return DeviceHints{MemoryGB: memoryGB, Cores: runtime.NumCPU()}
}
