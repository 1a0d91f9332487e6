package settlement

import (
	"fmt"

	"github.com/IlikeChooros/go-settlement/pkg/structure"
)

// Run the placement hooks of every committed structure, in commit order:
// first all PrePlace, then all Place, then all PostPlace. Search state is
// never touched, a failing hook only stops the placement
func (s *Settlement) Place(w structure.World) error {
	nodes := s.site.graph.Nodes()

	for _, n := range nodes {
		if err := n.structure.PrePlace(w); err != nil {
			return fmt.Errorf("pre-place #%d %v: %w", n.id, n.structure, err)
		}
	}
	for _, n := range nodes {
		if err := n.structure.Place(w); err != nil {
			return fmt.Errorf("place #%d %v: %w", n.id, n.structure, err)
		}
	}
	for _, n := range nodes {
		if err := n.structure.PostPlace(w, n.placement()); err != nil {
			return fmt.Errorf("post-place #%d %v: %w", n.id, n.structure, err)
		}
	}
	return nil
}

func (n *Node) placement() structure.Placement {
	p := structure.Placement{
		Incoming:    n.incoming,
		HasIncoming: n.hasIncoming,
		Routes:      n.routes,
	}
	if n.parent != nil {
		p.Parent = n.parent.structure
	}
	return p
}
