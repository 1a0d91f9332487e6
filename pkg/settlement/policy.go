package settlement

import (
	"github.com/IlikeChooros/go-settlement/pkg/mcts"
	"github.com/IlikeChooros/go-settlement/pkg/structure"
)

// Reward of a state, maximized by the search. Distance-like objectives
// must return the negated distance
type RewardFunc func(n *Node) float64

// Termination predicate, a state without actions is terminal anyway
type TerminateFunc func(n *Node) bool

// Decides whether 'candidate' may be attached to 'from'
type FilterFunc func(candidate structure.Structure, from *Node) bool

// Callables shared by every state of one phase. Apart from the book-keeper
// they must not modify anything
type Policy struct {
	Reward    RewardFunc
	Terminate TerminateFunc
	// nil accepts every candidate
	Filter FilterFunc
	// nil leaves the bookkeeping untouched
	Keeper BookKeeper
	// Allow joining already committed nodes
	AllowReuse bool

	// Incremented whenever the filter or the keeper changes, cached actions
	// computed under another generation are stale
	generation int
}

// One search of a multi-phase settlement build
type Phase struct {
	Name string
	// Reward, Terminate, AllowReuse are taken as given. A nil Filter or Keeper
	// keeps the one of the previous phase (or the settlement's default)
	Policy
	// UCB1 exploration constant, sqrt(build area)/10 when not positive
	Exploration float64
	// Search limits, the settlement's limits when nil
	Limits *mcts.Limits
	// Start from a new synthetic root instead of an open node of the graph
	Fresh bool
}

// Result of one committed phase
type PhaseResult struct {
	Name string
	// Committed route in order, starting with the node the phase was rooted at
	// (a re-rooted phase) or with the first placed structure (a fresh phase)
	Nodes []*Node
	// Number of nodes added to the graph
	Added      int
	Reward     float64
	Terminal   bool
	Cycles     int
	StopReason mcts.StopReason
}

// Reward used when a phase gives none: cheaper routes are better
func NegativeCost(n *Node) float64 {
	return -n.Cost()
}
