package mcts

import (
	"errors"
	"time"
)

// Exploration parameter used in UCB1 formula, higher values increase exploration
// while lower values increase exploitation. Theoretical perfect value is sqrt(2),
// but it has to be tuned for each problem, rewards here are not bounded to [0, 1].
// Default is 0.75
var ExplorationParam float64 = 0.75

// Set the default exploration parameter used by new trees
func SetExplorationParam(c float64) {
	ExplorationParam = max(0.0, c)
}

var SeedGeneratorFn SeedGeneratorFnType = func() int64 {
	return time.Now().UnixNano()
}

// Set custom seed generator function for random number generators in MCTS,
// by default uses current time in nanoseconds
func SetSeedGeneratorFn(f SeedGeneratorFnType) {
	if f != nil {
		SeedGeneratorFn = f
	}
}

// A rollout reached a state, which is not terminal, but has no actions.
// That's an implementation issue of the state, not a regular end of a branch
var ErrNoActions = errors.New("mcts: non-terminal state has no actions")

const (
	// When choosing the best child, choose the one with the highest mean reward,
	// used for the final route extraction
	BestChildMeanReward BestChildPolicy = iota

	// Choose the one with most visits
	BestChildMostVisits
)
