package mcts

import "math"

// UCB1 selection: mean + c * sqrt(ln(parent_visits)/visits). Unvisited children
// come first, ties go to the first child in expansion order
func UCB1[S StateLike[S, A], A any](parent *NodeBase[S, A], c float64) *NodeBase[S, A] {
	if len(parent.Children) == 0 {
		return nil
	}

	best := math.Inf(-1)
	index := 0
	lnParentVisits := math.Log(float64(max(1, parent.Stats.N())))

	for i, child := range parent.Children {
		visits := child.Stats.N()

		// Pick the unvisited one
		if visits == 0 {
			return child
		}

		// ucb1 = exploitation + exploration
		ucb1 := float64(child.Stats.Q())/float64(visits) +
			c*math.Sqrt(lnParentVisits/float64(visits))

		if ucb1 > best {
			best = ucb1
			index = i
		}
	}

	return parent.Children[index]
}
