package terrain

import (
	"math"
)

// HeightOracle answers elevation queries for the game world. Implementations
// must be deterministic and cheap: the flight planner issues thousands of
// queries per planning call.
type HeightOracle interface {
	HeightAt(x, z float64) float64
}

// Heightfield is a procedural terrain built from layered sine waves. The same
// seed always produces the same surface, so server and tests agree on every
// elevation without sharing mesh data.
type Heightfield struct {
	seed      int64
	amplitude float64
	baseLevel float64
	phases    [4]float64
}

// NewHeightfield creates a deterministic heightfield for the given seed
func NewHeightfield(seed int64) *Heightfield {
	hf := &Heightfield{
		seed:      seed,
		amplitude: 12,
		baseLevel: 4,
	}

	// Derive stable per-octave phase offsets from the seed
	state := uint64(seed)*6364136223846793005 + 1442695040888963407
	for i := range hf.phases {
		state = state*6364136223846793005 + 1442695040888963407
		hf.phases[i] = float64(state>>11) / float64(1<<53) * 2 * math.Pi
	}

	return hf
}

// HeightAt returns the terrain elevation at the given horizontal position
func (h *Heightfield) HeightAt(x, z float64) float64 {
	elevation := h.baseLevel
	elevation += h.amplitude * math.Sin(x*0.021+h.phases[0]) * math.Cos(z*0.017+h.phases[1])
	elevation += h.amplitude * 0.5 * math.Sin(x*0.053+z*0.041+h.phases[2])
	elevation += h.amplitude * 0.25 * math.Cos(x*0.11-z*0.09+h.phases[3])

	if elevation < 0 {
		return 0
	}
	return elevation
}

// Flat is a constant-elevation oracle, useful for tests and benchmarks
type Flat struct {
	Elevation float64
}

// HeightAt returns the fixed elevation regardless of position
func (f Flat) HeightAt(x, z float64) float64 {
	return f.Elevation
}
