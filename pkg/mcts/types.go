package mcts

import "math/rand"

// Other types, which didn't fit to MCTS or Node files

// Reward of a terminal state, the search always maximizes it. Distance-like
// objectives should return the negated distance
type Result float64
type BestChildPolicy int

// State of the searched problem. Every method must be deterministic, given
// the same state and the same random stream, the search builds the same tree
type StateLike[S any, A any] interface {
	// Legal actions from this state, in a stable order. An empty list
	// makes the state terminal
	PossibleActions() []A
	// Create the successor state, the receiver must stay unchanged
	TakeAction(A) S
	// Whether the caller's termination predicate holds, or there are no actions
	IsTerminal() bool
	// Reward of the state, read when a rollout reaches a terminal state
	Reward() Result
}

// Action with an incremental cost, used by the cost-weighted rollout policy
type CostedAction interface {
	Cost() float64
}

// Picks the next action during the rollout, 'actions' is never empty
type RolloutPolicy[A any] func(actions []A, rng *rand.Rand) A

// Will be called, when we choose this node, as it is the most promising to expand
type SelectionPolicy[S StateLike[S, A], A any] func(parent *NodeBase[S, A], c float64) *NodeBase[S, A]
type SeedGeneratorFnType func() int64
