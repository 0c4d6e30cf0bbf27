package lumen

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Preset names one of the composed background scenes.
type Preset uint8

// Heights of the Computing preset's floor and ceiling grids.
const (
	gridFloorY   = -5
	gridCeilingY = 25
)

const (
	// PresetComputing is falling binary streams around a floating node lattice,
	// between two grid planes.
	PresetComputing Preset = iota
	// PresetAetheris is the data vortex swirling around a lit core.
	PresetAetheris
	// PresetElite layers a pointer-following drift cloud and a ring of energy
	// nodes over the vortex, all hovering as one group.
	PresetElite
)

var presetNames = [...]string{
	PresetComputing: "computing",
	PresetAetheris:  "aetheris",
	PresetElite:     "elite",
}

func (p Preset) String() string {
	if int(p) < len(presetNames) {
		return presetNames[p]
	}
	return fmt.Sprintf("Preset(%d)", uint8(p))
}

// ParsePreset resolves a preset by case-insensitive name.
func ParsePreset(name string) (Preset, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range presetNames {
		if s == n {
			return Preset(i), nil
		}
	}
	return 0, fmt.Errorf("parse preset %q: %w", name, ErrUnknownPreset)
}

// SceneBackdrop is the clear color shared by every preset.
var SceneBackdrop = Hex(0x020617)

// sceneRecipe is everything a preset contributes to a Background.
type sceneRecipe struct {
	fog   Fog
	light Lighting
	build func(rng *rand.Rand, scale float64) []Generator
	// group moves every generator together when set.
	group *FloatMotion
	// scanline is drawn over the finished frame when its opacity is positive.
	scanline Scanline
}

func scaled(n int, scale float64) int {
	return max(0, int(math.Round(float64(n)*scale)))
}

// ScaleForTier converts a device tier to a particle count multiplier,
// relative to the high tier budget.
func ScaleForTier(t Tier) float64 {
	return float64(t.ParticleCount()) / float64(TierHigh.ParticleCount())
}

func (p Preset) recipe() (sceneRecipe, error) {
	switch p {
	case PresetComputing:
		return sceneRecipe{
			fog: Fog{Color: SceneBackdrop, Near: 10, Far: 50},
			light: Lighting{
				Ambient: 0.2,
				Points: []PointLight{
					{Position: mgl32.Vec3{10, 10, 10}, Color: Hex(0x06b6d4), Intensity: 1.5},
					{Position: mgl32.Vec3{-10, -10, -10}, Color: Hex(0x0891b2), Intensity: 1.5},
				},
			},
			build: func(rng *rand.Rand, scale float64) []Generator {
				return []Generator{
					NewStreamField(DefaultStreamConfig(scaled(4000, scale)), rng),
					NewLatticeField(DefaultLatticeConfig(20)),
					NewGridField(GridCells(gridFloorY)),
					NewGridField(GridSections(gridFloorY)),
					NewGridField(GridCells(gridCeilingY)),
					NewGridField(GridSections(gridCeilingY)),
				}
			},
			scanline: DefaultScanline(),
		}, nil
	case PresetAetheris:
		return sceneRecipe{
			light: Lighting{
				Points: []PointLight{
					{Color: Hex(0x06b6d4), Intensity: 30, Range: 15},
					{Position: mgl32.Vec3{10, 10, 10}, Color: Hex(0x8b5cf6), Intensity: 10},
				},
			},
			build: func(rng *rand.Rand, scale float64) []Generator {
				return []Generator{
					NewVortexField(DefaultVortexConfig(scaled(12000, scale)), rng),
				}
			},
		}, nil
	case PresetElite:
		return sceneRecipe{
			fog: Fog{Color: SceneBackdrop, Near: 5, Far: 45},
			light: Lighting{
				Ambient: 0.2,
				Points: []PointLight{
					{Position: mgl32.Vec3{10, 10, 10}, Color: Hex(0x06b6d4), Intensity: 1},
					{Position: mgl32.Vec3{-10, -10, -10}, Color: Hex(0x8b5cf6), Intensity: 0.5},
				},
			},
			build: func(rng *rand.Rand, scale float64) []Generator {
				return []Generator{
					NewDriftField(DefaultDriftConfig(scaled(3500, scale)), rng),
					NewVortexField(DefaultVortexConfig(scaled(12000, scale)), rng),
					NewEnergyField(DefaultEnergyConfig()),
				}
			},
			group: &FloatMotion{Speed: 1.5, RotationIntensity: 0.2, FloatIntensity: 0.4},
		}, nil
	}
	return sceneRecipe{}, fmt.Errorf("preset %d: %w", uint8(p), ErrUnknownPreset)
}
