package mcts

import "math/rand"

// Credit the reward to every node from 'node' up to the root. There is a single
// maximizing player, so unlike in two player games the result is never flipped
func Backpropagate[S StateLike[S, A], A any](node *NodeBase[S, A], result Result) {
	for node != nil {
		node.Stats.AddQ(result)
		node = node.Parent
	}
}

// Default rollout policy: sample an action with probability inversely
// proportional to its normalized cost, cheaper actions are preferred but
// not always chosen. Weights are 1 - cost/sum, so a lone action is picked directly
func CostWeighted[A CostedAction](actions []A, rng *rand.Rand) A {
	if len(actions) == 1 {
		return actions[0]
	}

	sum := 0.0
	for _, a := range actions {
		sum += a.Cost()
	}
	if sum <= 0 {
		return Uniform(actions, rng)
	}

	// The weights add up to len(actions) - 1
	total := float64(len(actions) - 1)
	r := rng.Float64() * total
	for _, a := range actions {
		r -= 1 - a.Cost()/sum
		if r < 0 {
			return a
		}
	}
	return actions[len(actions)-1]
}

// Pick any action with equal probability
func Uniform[A any](actions []A, rng *rand.Rand) A {
	return actions[rng.Intn(len(actions))]
}
