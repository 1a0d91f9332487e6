package mcts

import "fmt"

// This function only sets the limits, resets the counters, and the stop flag
// doesn't actually start the search
func (mcts *MCTS[S, A]) setupSearch() {
	mcts.Limiter.Reset()
	mcts.cps = 0
	mcts.cycles = 0
}

func (mcts *MCTS[S, A]) finishSearch() {
	mcts.Limiter.EvaluateStopReason(mcts.size, uint32(mcts.maxdepth), mcts.cycles)
	mcts.Limiter.SetStop(true)
	mcts.invokeListener(mcts.listener.onStop)
}

// Run the search on the calling goroutine, simply calls:
//
// 1. selection - to choose the most promising node, expanding one new child
//
// 2. rollout - to simulate until a terminal state, and get its reward
//
// 3. backpropagate - to add the reward and a visit up to the root
//
// Until runs out of the allocated cycles, time, nodes or depth, or the stop signal is set.
// Returns ErrNoActions (wrapped) if a rollout got stuck on a non-terminal state
func (mcts *MCTS[S, A]) Search() error {
	mcts.setupSearch()
	defer mcts.finishSearch()

	root := mcts.Root
	root.expandActions()
	if root.Terminal() {
		return nil
	}

	for mcts.Limiter.Ok(mcts.size, uint32(mcts.maxdepth), mcts.cycles) {

		// Choose the most promising node
		node := mcts.Selection(root)
		// Get the result of the rollout/playout
		result, err := mcts.Rollout(node.State)
		if err != nil {
			return fmt.Errorf("rollout from depth %d: %w", node.Depth(), err)
		}
		Backpropagate(node, result)

		// Increment cycle count and store the cps
		mcts.cycles++
		mcts.cps = mcts.cycles * 1000 / mcts.Limiter.Elapsed()
		invokeCycle(mcts.listener, mcts)
	}

	return nil
}

// Selects next node to simulate from, by user-defined selection policy.
// Descends through fully expanded nodes, then expands a single untried action
func (mcts *MCTS[S, A]) Selection(root *NodeBase[S, A]) *NodeBase[S, A] {
	node := root
	depth := 0

	for {
		node.expandActions()
		if node.Terminal() || !node.FullyExpanded() {
			break
		}
		next := mcts.selectionPolicy(node, mcts.explorationParam)
		if next == nil {
			// Expanded, not terminal, yet without actions, the rollout will report it
			break
		}
		node = next
		depth++
	}

	// Add a new child to this node
	if !node.Terminal() && node.Untried() > 0 {
		node = node.expandNext()
		mcts.size++
		depth++
	}

	// Set the 'max depth'
	if depth > mcts.maxdepth {
		mcts.maxdepth = depth
		mcts.invokeListener(mcts.listener.onDepth)
	}

	return node
}

// Play the rollout policy from 'state' until a terminal state, returning its reward
func (mcts *MCTS[S, A]) Rollout(state S) (Result, error) {
	for !state.IsTerminal() {
		actions := state.PossibleActions()
		if len(actions) == 0 {
			return 0, ErrNoActions
		}
		state = state.TakeAction(mcts.rollout(actions, mcts.rng))
	}
	return state.Reward(), nil
}
