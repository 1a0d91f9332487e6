package settlement

import (
	"log/slog"

	"github.com/IlikeChooros/go-settlement/pkg/structure"
)

// Cost of attaching 'candidate' to this node, 0 rejects it. Rejected when the
// filter refuses it, it leaves the build area, it stands in the ground
// without being allowed to, or it overlaps a committed structure or a
// structure on the current path
func (n *Node) evaluateCandidate(candidate structure.Structure) float64 {
	if candidate == nil {
		return 0
	}
	if n.policy.Filter != nil && !n.policy.Filter(candidate, n) {
		return 0
	}

	box := candidate.WorldBox()
	oracle := n.site.oracle
	if !oracle.InsideBuildArea(box) {
		return 0
	}
	if !candidate.MayTouchSurface() && oracle.TouchesSurface(box) {
		return 0
	}

	if other := n.site.graph.colliding(box); other != nil {
		slog.Debug("candidate collides", "structure", candidate.Name(), "with", other.structure.Name())
		return 0
	}
	// Views of committed nodes were checked against the graph above, the
	// path may continue with new structures past them after a join
	eroded := box.Eroded(1)
	for a := n; a != nil; a = a.parent {
		if a.transient() && eroded.Collides(a.structure.WorldBox()) {
			return 0
		}
	}

	// NaN and negative costs are rejections too
	if cost := candidate.Evaluate(); cost > 0 {
		return cost
	}
	return 0
}
