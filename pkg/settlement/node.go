package settlement

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/IlikeChooros/go-settlement/pkg/geom"
	"github.com/IlikeChooros/go-settlement/pkg/mcts"
	"github.com/IlikeChooros/go-settlement/pkg/structure"
)

// Search state: a placed structure with its reserved slots and bookkeeping.
//
// Nodes created by the search are transient, only a commit adds them to the
// graph. A committed node is never used as a search state directly, the
// search runs on views of it, so it does not change while a phase explores.
type Node struct {
	site           *site
	structure      structure.Structure
	cost           float64 // cumulative cost of the phase's path
	policy         *Policy
	settlementType string
	book           Bookkeeping

	// Reserved slots, always including the rear one when the node was reached
	// through a connector
	slots mapset.Set[structure.Slot]
	// Committed node at the far end of a reserved slot
	links map[structure.Slot]NodeID

	// Connector of the parent used to reach this node
	incoming    structure.Connector
	hasIncoming bool
	rear        structure.Connector
	parent      *Node

	id  NodeID // index in the graph, NoNode until committed
	ref NodeID // committed node this one is a view of
	// The view joins 'ref' through a new edge
	join      bool
	depth     int
	routes    []string
	synthetic bool

	actions []*Action
	cached  bool
	stamp   [2]int
}

func newNode(s *site, st structure.Structure, policy *Policy) *Node {
	return &Node{
		site:           s,
		structure:      st,
		policy:         policy,
		settlementType: s.settlementType,
		slots:          mapset.New[structure.Slot](),
		links:          make(map[structure.Slot]NodeID),
		rear:           st.RearConnector(),
		id:             NoNode,
		ref:            NoNode,
	}
}

// View of the committed node 'n' used as a search state, with its own cost,
// parent and bookkeeping. Reserved slots are copied
func (n *Node) view(parent *Node, policy *Policy, cost float64, book Bookkeeping) *Node {
	v := newNode(n.site, n.structure, policy)
	v.cost = cost
	v.book = book
	v.parent = parent
	v.incoming, v.hasIncoming = n.incoming, n.hasIncoming
	v.ref = n.id
	v.depth = n.depth
	v.routes = n.routes
	n.slots.Each(func(slot structure.Slot) {
		v.slots.Put(slot)
	})
	for slot, id := range n.links {
		v.links[slot] = id
	}
	return v
}

func (n *Node) Structure() structure.Structure {
	return n.structure
}

func (n *Node) Cost() float64 {
	return n.cost
}

func (n *Node) Book() Bookkeeping {
	return n.book
}

func (n *Node) SettlementType() string {
	return n.settlementType
}

// Connector of the parent this node was attached through
func (n *Node) Incoming() (structure.Connector, bool) {
	return n.incoming, n.hasIncoming
}

func (n *Node) Parent() *Node {
	return n.parent
}

// Index in the graph, for views the index of the viewed node
func (n *Node) ID() NodeID {
	if n.id != NoNode {
		return n.id
	}
	return n.ref
}

func (n *Node) Committed() bool {
	return n.id != NoNode
}

// Number of edges from the first structure of the component
func (n *Node) Depth() int {
	return n.depth
}

// Names of the phases whose routes passed through this node
func (n *Node) Routes() []string {
	return n.routes
}

func (n *Node) transient() bool {
	return n.id == NoNode && n.ref == NoNode && !n.synthetic
}

// Mark the connector's slot as occupied
func (n *Node) Reserve(c structure.Connector) {
	n.slots.Put(c.Slot())
	n.InvalidateActions()
}

// Slot matching is by value: facing and offset
func (n *Node) IsOccupied(c structure.Connector) bool {
	return n.slots.Has(c.Slot())
}

// Reserved slots, sorted by facing and offset
func (n *Node) Slots() []structure.Slot {
	slots := make([]structure.Slot, 0, n.slots.Size())
	n.slots.Each(func(s structure.Slot) {
		slots = append(slots, s)
	})
	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.Facing != b.Facing {
			return a.Facing < b.Facing
		}
		if a.Offset.X != b.Offset.X {
			return a.Offset.X < b.Offset.X
		}
		if a.Offset.Y != b.Offset.Y {
			return a.Offset.Y < b.Offset.Y
		}
		return a.Offset.Z < b.Offset.Z
	})
	return slots
}

// Committed node linked through the slot, NoNode if the slot is free
// or the far end is not committed yet
func (n *Node) Link(slot structure.Slot) NodeID {
	if id, ok := n.links[slot]; ok {
		return id
	}
	return NoNode
}

// Whether any connector of the structure is still free
func (n *Node) HasOpenSlot() bool {
	for _, c := range n.structure.Connectors() {
		if !n.IsOccupied(c) {
			return true
		}
	}
	return false
}

// Drop the cached actions, they will be generated again on the next request
func (n *Node) InvalidateActions() {
	n.actions = nil
	n.cached = false
}

func (n *Node) currentStamp() [2]int {
	return [2]int{n.site.graph.version, n.policy.generation}
}

// Legal actions of this state. Computed once, the cache is dropped when the
// graph or the phase's filter changes
func (n *Node) PossibleActions() []*Action {
	if n.cached && n.stamp == n.currentStamp() {
		return n.actions
	}

	if n.synthetic {
		n.actions = n.rootActions()
	} else {
		n.actions = n.connectorActions()
	}
	n.cached = true
	n.stamp = n.currentStamp()
	return n.actions
}

func (n *Node) connectorActions() []*Action {
	actions := make([]*Action, 0)
	facing := n.structure.Facing()
	box := n.structure.WorldBox()
	parentID := NoNode
	if n.parent != nil {
		parentID = n.parent.ID()
	}

	for _, c := range n.structure.Connectors() {
		slot := c.Slot()

		if n.slots.Has(slot) {
			// Never re-descend into the parent
			if (n.parent != nil && slot == n.rear.Slot()) || !n.policy.AllowReuse {
				continue
			}
			if target := n.Link(slot); target != NoNode && target != parentID {
				actions = append(actions, &Action{
					Connector: c,
					Structure: n.site.graph.Node(target).structure,
					Target:    target,
					cost:      reuseCost,
				})
			}
			continue
		}

		rotation := geom.NormalizeFacing(c.Facing + facing)
		for _, name := range c.Next {
			unplaced, ok := n.site.resolve(name, rotation, geom.Vec3{}, n.structure.Name())
			if !ok {
				continue
			}
			position := geom.NextPosition(rotation, box, unplaced.LocalBox().Size, c.Offset)
			candidate, ok := n.site.resolve(name, rotation, position, n.structure.Name())
			if !ok {
				continue
			}

			if n.policy.AllowReuse {
				if target := n.joinTarget(candidate); target != nil {
					actions = append(actions, &Action{
						Connector: c,
						Structure: target.structure,
						Target:    target.id,
						join:      true,
						cost:      reuseCost,
					})
					continue
				}
			}

			if cost := n.evaluateCandidate(candidate); cost > 0 {
				actions = append(actions, &Action{
					Connector: c,
					Structure: candidate,
					Target:    NoNode,
					cost:      cost,
				})
			}
		}
	}
	return actions
}

// Committed node standing exactly where 'candidate' would go, with its
// rear slot free, nil if there is none
func (n *Node) joinTarget(candidate structure.Structure) *Node {
	other := n.site.graph.colliding(candidate.WorldBox())
	if other == nil || other.ID() == n.ID() {
		return nil
	}
	if other.structure.Name() != candidate.Name() ||
		other.structure.WorldBox() != candidate.WorldBox() ||
		other.structure.Facing() != candidate.Facing() ||
		other.IsOccupied(other.rear) {
		return nil
	}
	return other
}

// Create the successor state. The receiver is not modified
func (n *Node) TakeAction(a *Action) *Node {
	if a.IsReuse() {
		target := n.site.graph.Node(a.Target)
		v := target.view(n, n.policy, n.cost+a.cost, n.book)
		v.depth = n.depth + 1
		if a.join {
			v.join = true
			v.incoming, v.hasIncoming = a.Connector, true
			v.slots.Put(v.rear.Slot())
			v.links[v.rear.Slot()] = n.ID()
		}
		return v
	}

	child := newNode(n.site, a.Structure, n.policy)
	child.cost = n.cost + a.cost
	child.book = n.book
	child.depth = n.depth + 1

	// Children of the synthetic root start a new component, their rear stays open
	if !n.synthetic {
		child.parent = n
		child.incoming, child.hasIncoming = a.Connector, true
		child.slots.Put(child.rear.Slot())
	}

	if n.policy.Keeper != nil {
		n.policy.Keeper(child, &child.book)
	}
	return child
}

// Terminal when the phase's predicate holds or there is nothing left to place
func (n *Node) IsTerminal() bool {
	if !n.synthetic && n.policy.Terminate != nil && n.policy.Terminate(n) {
		return true
	}
	return len(n.PossibleActions()) == 0
}

func (n *Node) Reward() mcts.Result {
	if n.synthetic {
		return 0
	}
	reward := n.policy.Reward
	if reward == nil {
		reward = NegativeCost
	}
	return mcts.Result(reward(n))
}

func (n *Node) String() string {
	if n.synthetic {
		return "Node{root}"
	}
	id := "transient"
	switch {
	case n.id != NoNode:
		id = fmt.Sprintf("#%d", n.id)
	case n.ref != NoNode:
		id = fmt.Sprintf("view of #%d", n.ref)
	}
	return fmt.Sprintf("Node{%s %v, cost=%.2f, slots=%d, book=%v}", id, n.structure, n.cost, n.slots.Size(), n.book)
}

var _ mcts.StateLike[*Node, *Action] = (*Node)(nil)
