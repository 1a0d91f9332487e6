package settlement

import (
	"math"

	"github.com/zyedidia/generic/mapset"

	"github.com/IlikeChooros/go-settlement/pkg/geom"
	"github.com/IlikeChooros/go-settlement/pkg/structure"
	"github.com/IlikeChooros/go-settlement/pkg/terrain"
)

const (
	minRootSamples = 16
	// Sites bumpier than this are not considered for the first structure
	maxRootStdDev = 10.0
)

// Synthetic root of a fresh phase, its actions are candidate starting placements
func newRootNode(s *site, policy *Policy, book Bookkeeping) *Node {
	return &Node{
		site:           s,
		policy:         policy,
		settlementType: s.settlementType,
		book:           book,
		slots:          mapset.New[structure.Slot](),
		links:          make(map[structure.Slot]NodeID),
		id:             NoNode,
		ref:            NoNode,
		depth:          -1,
		synthetic:      true,
	}
}

// Sample starting placements over the build area, each costs the surface's
// standard deviation plus the structure's own cost
func (n *Node) rootActions() []*Action {
	oracle := n.site.oracle
	samples := max(minRootSamples, int(terrain.AreaSqrt(oracle)/40))
	actions := make([]*Action, 0, samples)

	for i := 0; i < samples; i++ {
		position := terrain.RandomSurfacePosition(oracle, n.site.rng)
		facing := n.site.rng.Intn(4)

		for _, name := range n.site.rootNames {
			sample, ok := n.site.resolve(name, facing, position, "root")
			if !ok {
				continue
			}
			box := sample.WorldBox()
			if !oracle.InsideBuildArea(box) {
				continue
			}
			stats := oracle.SurfaceStats(box.Rect())
			if stats.StdDev > maxRootStdDev || math.IsNaN(stats.StdDev) {
				continue
			}

			// Highest free cell of the footprint, nothing in it touches the ground
			candidate, ok := n.site.resolve(name, facing, geom.V3(position.X, stats.Max, position.Z), "root")
			if !ok {
				continue
			}
			if cost := n.evaluateCandidate(candidate); cost > 0 {
				actions = append(actions, &Action{
					Structure: candidate,
					Target:    NoNode,
					cost:      stats.StdDev + cost,
				})
			}
		}
	}
	return actions
}
