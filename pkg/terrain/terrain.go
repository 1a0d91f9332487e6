// Package terrain answers the geometric questions the planner asks about the
// world: where the build area is and how high the ground is.
package terrain

import (
	"math"
	"math/rand"

	"github.com/IlikeChooros/go-settlement/pkg/geom"
)

// Environment oracle consumed by the planner and the structure catalog
type Oracle interface {
	BuildArea() geom.Rect
	// Only the x/z bounds are checked
	InsideBuildArea(b geom.Box) bool
	// Whether the ground reaches into the box anywhere in its footprint
	TouchesSurface(b geom.Box) bool
	// Height of the first free cell above the ground, the ground block's
	// height plus one. A structure standing on the terrain starts here
	HeightAt(x, z int) int
	SurfaceStats(r geom.Rect) SurfaceStats
}

type SurfaceStats struct {
	StdDev float64
	Mean   float64
	Max    int
}

// Heightmap covering exactly the build area
type Heightmap struct {
	area    geom.Rect
	heights []int // row major, x changes fastest
}

// Flat heightmap with constant ground height
func Flat(area geom.Rect, height int) *Heightmap {
	h := &Heightmap{area: area, heights: make([]int, max(0, area.Area()))}
	for i := range h.heights {
		h.heights[i] = height
	}
	return h
}

// Heightmap with heights given by 'fn', called once per column
func FromFunc(area geom.Rect, fn func(x, z int) int) *Heightmap {
	h := &Heightmap{area: area, heights: make([]int, max(0, area.Area()))}
	for z := 0; z < area.Size.Z; z++ {
		for x := 0; x < area.Size.X; x++ {
			h.heights[z*area.Size.X+x] = fn(area.Offset.X+x, area.Offset.Z+z)
		}
	}
	return h
}

func (h *Heightmap) BuildArea() geom.Rect {
	return h.area
}

func (h *Heightmap) InsideBuildArea(b geom.Box) bool {
	return h.area.ContainsRect(b.Rect())
}

// Columns outside the area are clamped to the nearest edge
func (h *Heightmap) HeightAt(x, z int) int {
	if len(h.heights) == 0 {
		return 0
	}
	lx := min(max(x-h.area.Offset.X, 0), h.area.Size.X-1)
	lz := min(max(z-h.area.Offset.Z, 0), h.area.Size.Z-1)
	return h.heights[lz*h.area.Size.X+lx]
}

func (h *Heightmap) TouchesSurface(b geom.Box) bool {
	end := b.End()
	for z := b.Offset.Z; z < end.Z; z++ {
		for x := b.Offset.X; x < end.X; x++ {
			if h.HeightAt(x, z) > b.Offset.Y {
				return true
			}
		}
	}
	return false
}

func (h *Heightmap) SurfaceStats(r geom.Rect) SurfaceStats {
	n := r.Area()
	if n <= 0 {
		return SurfaceStats{}
	}

	sum, sumSq := 0.0, 0.0
	top := math.MinInt
	end := r.End()
	for z := r.Offset.Z; z < end.Z; z++ {
		for x := r.Offset.X; x < end.X; x++ {
			v := h.HeightAt(x, z)
			sum += float64(v)
			sumSq += float64(v) * float64(v)
			top = max(top, v)
		}
	}

	mean := sum / float64(n)
	variance := max(0, sumSq/float64(n)-mean*mean)
	return SurfaceStats{StdDev: math.Sqrt(variance), Mean: mean, Max: top}
}

// Square root of the build area surface, the base unit for sampling and exploration sizes
func AreaSqrt(o Oracle) float64 {
	return math.Sqrt(float64(o.BuildArea().Area()))
}

// Random position on the ground inside the build area
func RandomSurfacePosition(o Oracle, rng *rand.Rand) geom.Vec3 {
	area := o.BuildArea()
	x := area.Offset.X + rng.Intn(max(1, area.Size.X))
	z := area.Offset.Z + rng.Intn(max(1, area.Size.Z))
	return geom.V3(x, o.HeightAt(x, z), z)
}
