package lumen

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds host settings read from the environment.
type Config struct {
	Debug bool `env:"LUMEN_DEBUG"`
	// Seed fixes generator layouts; 0 picks a fresh seed per mount.
	Seed   uint64 `env:"LUMEN_SEED"`
	Preset string `env:"LUMEN_PRESET" envDefault:"computing"`
	// DeviceMemory is the memory hint in GB fed to PerformanceTier; 0 falls back to cores.
	DeviceMemory float64 `env:"LUMEN_DEVICE_MEMORY"`
	PostFX       bool    `env:"LUMEN_POSTFX" envDefault:"true"`
	Width        int     `env:"LUMEN_WIDTH" envDefault:"1280"`
	Height       int     `env:"LUMEN_HEIGHT" envDefault:"720"`
}

// LoadConfig parses Config from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Config{}, fmt.Errorf("parse env: window size %dx%d must be positive", cfg.Width, cfg.Height)
	}
	return cfg, nil
}

// Tier returns the performance tier implied by the configured memory hint
// and the runtime core count.
func (c Config) Tier() Tier {
	return PerformanceTier(ProbeHost(c.DeviceMemory))
}

// Logger returns a DefaultLogger honoring Debug.
func (c Config) Logger() *DefaultLogger {
	return NewDefaultLogger("lumen", c.Debug)
}
