package settlement

import (
	"fmt"

	"github.com/IlikeChooros/go-settlement/pkg/structure"
)

// Finalize a route returned by the search. For every consecutive pair the
// earlier node reserves the connector leading to the later one and the later
// node's rear slot links back. Everything is validated before the graph is
// touched, a failing commit leaves no reservation behind.
// Returns the route's committed nodes and how many of them are new
func (s *Settlement) commit(phase string, route []*Node) ([]*Node, int, error) {
	if len(route) > 0 && route[0].synthetic {
		route = route[1:]
	}
	if len(route) == 0 {
		return nil, 0, ErrEmptyRoute
	}
	if err := s.validateRoute(route); err != nil {
		return nil, 0, err
	}

	graph := s.site.graph
	committed := make([]*Node, 0, len(route))
	added := 0
	var prev *Node

	for _, n := range route {
		var cur *Node
		switch {
		case n.ref != NoNode:
			cur = graph.Node(n.ref)
			if n.join {
				s.connect(prev, cur, n.incoming)
			}
		default:
			cur = n
			cur.InvalidateActions()
			cur.id = graph.add(cur)
			cur.parent = prev
			added++
			if prev != nil {
				s.connect(prev, cur, n.incoming)
			}
		}

		if len(cur.routes) == 0 || cur.routes[len(cur.routes)-1] != phase {
			cur.routes = append(cur.routes, phase)
		}
		committed = append(committed, cur)
		prev = cur
	}
	return committed, added, nil
}

// Reserve the pair of slots of an edge between two committed nodes
func (s *Settlement) connect(from, to *Node, via structure.Connector) {
	slot := via.Slot()
	from.Reserve(via)
	from.links[slot] = to.id
	to.Reserve(to.rear)
	to.links[to.rear.Slot()] = from.id
	s.site.graph.link(Edge{From: from.id, To: to.id, Slot: slot})
}

func (s *Settlement) validateRoute(route []*Node) error {
	graph := s.site.graph
	fresh := make([]*Node, 0, len(route))

	for i, n := range route {
		if n.synthetic {
			return fmt.Errorf("%w: synthetic root at position %d", ErrBrokenRoute, i)
		}
		if n.Committed() {
			return fmt.Errorf("%w: %v is already committed", ErrBrokenRoute, n)
		}
		if i > 0 && n.parent != route[i-1] {
			return fmt.Errorf("%w: %v is not a child of %v", ErrBrokenRoute, n, route[i-1])
		}

		if n.ref != NoNode {
			target := graph.Node(n.ref)
			if target == nil {
				return fmt.Errorf("%w: %v references a missing node", ErrBrokenRoute, n)
			}
			if n.join && (i == 0 || target.IsOccupied(target.rear)) {
				return fmt.Errorf("%w: cannot join %v", ErrBrokenRoute, target)
			}
		} else {
			box := n.structure.WorldBox()
			if other := graph.colliding(box); other != nil {
				return fmt.Errorf("%w: %v and %v", ErrCollision, n.structure, other.structure)
			}
			eroded := box.Eroded(1)
			for _, f := range fresh {
				if eroded.Collides(f.structure.WorldBox()) {
					return fmt.Errorf("%w: %v and %v", ErrCollision, n.structure, f.structure)
				}
			}
			fresh = append(fresh, n)
		}

		if i > 0 && (n.ref == NoNode || n.join) {
			prev := route[i-1]
			owner := prev
			if prev.ref != NoNode {
				owner = graph.Node(prev.ref)
			}
			if owner.IsOccupied(n.incoming) && owner.Committed() {
				return fmt.Errorf("%w: slot %v of %v is already reserved", ErrBrokenRoute, n.incoming.Slot(), owner)
			}
		}
	}
	return nil
}
