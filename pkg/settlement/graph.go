package settlement

import (
	"github.com/IlikeChooros/go-settlement/pkg/geom"
	"github.com/IlikeChooros/go-settlement/pkg/structure"
)

// Index of a committed node in its graph
type NodeID int

// Reference to no node
const NoNode NodeID = -1

// Arena of the committed nodes of one settlement. Nodes are only added at
// commit time, transient search nodes never show up here
type Graph struct {
	nodes   []*Node
	edges   []Edge
	version int // bumped on every change, stamps cached actions
}

// Committed connection, 'Slot' is the connector of 'From' leading to 'To'
type Edge struct {
	From NodeID
	To   NodeID
	Slot structure.Slot
}

func NewGraph() *Graph {
	return &Graph{}
}

func (g *Graph) add(n *Node) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.version++
	return id
}

func (g *Graph) link(e Edge) {
	g.edges = append(g.edges, e)
	g.version++
}

// Node with given id, nil if out of range
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

// Committed nodes in commit order
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Committed nodes with at least one unreserved connector
func (g *Graph) OpenNodes() []*Node {
	open := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n.HasOpenSlot() {
			open = append(open, n)
		}
	}
	return open
}

// Whether 'box' overlaps any committed structure, tolerating exact adjacency
func (g *Graph) Collides(box geom.Box) bool {
	return g.colliding(box) != nil
}

func (g *Graph) colliding(box geom.Box) *Node {
	eroded := box.Eroded(1)
	for _, n := range g.nodes {
		if eroded.Collides(n.structure.WorldBox()) {
			return n
		}
	}
	return nil
}

// Committed connections in commit order, one per reserved pair of slots
func (g *Graph) Edges() []Edge {
	return g.edges
}
