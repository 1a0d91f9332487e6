package terrain

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/IlikeChooros/go-settlement/pkg/geom"
)

// Noise parameters of a generated heightmap
type Params struct {
	Seed        int64   `yaml:"seed" json:"seed"`
	Base        int     `yaml:"base" json:"base"`           // ground height at noise value 0.5
	Amplitude   float64 `yaml:"amplitude" json:"amplitude"` // peak to valley height
	Octaves     int     `yaml:"octaves" json:"octaves"`
	Frequency   float64 `yaml:"frequency" json:"frequency"`
	Persistence float64 `yaml:"persistence" json:"persistence"`
}

func DefaultParams() Params {
	return Params{
		Seed:        1,
		Base:        64,
		Amplitude:   16,
		Octaves:     4,
		Frequency:   0.01,
		Persistence: 0.5,
	}
}

// Generate a rolling heightmap from layered simplex noise
func Generate(area geom.Rect, p Params) *Heightmap {
	noise := opensimplex.NewNormalized(p.Seed)
	octaves := max(1, p.Octaves)
	return FromFunc(area, func(x, z int) int {
		v := octaveNoise(noise, float64(x), float64(z), octaves, p.Frequency, p.Persistence)
		return p.Base + int(math.Round((v-0.5)*p.Amplitude))
	})
}

// Fractal noise by layering multiple frequencies, normalized to [0, 1]
func octaveNoise(noise opensimplex.Noise, x, z float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, z*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
