package mcts

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

type TreeStats struct {
	maxdepth int
	cps      uint32
	cycles   uint32
}

// Single-threaded monte carlo tree search over states of type S, connected by actions of type A.
// Iterations run sequentially, the only way to interrupt the search is a cooperative
// stop signal, checked at the top of each iteration
type MCTS[S StateLike[S, A], A any] struct {
	TreeStats
	listener         *StatsListener[A]
	Limiter          LimiterLike
	selectionPolicy  SelectionPolicy[S, A]
	rollout          RolloutPolicy[A]
	Root             *NodeBase[S, A]
	size             uint32
	rng              *rand.Rand
	explorationParam float64
}

// Create new tree rooted at 'root'. A nil 'rollout' picks actions uniformly at random,
// a nil 'rng' is seeded with SeedGeneratorFn
func NewMCTS[S StateLike[S, A], A any](root S, rollout RolloutPolicy[A], rng *rand.Rand) *MCTS[S, A] {
	if rollout == nil {
		rollout = Uniform[A]
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(SeedGeneratorFn()))
	}

	mcts := &MCTS[S, A]{
		listener:         &StatsListener[A]{nCycles: 1},
		Limiter:          LimiterLike(NewLimiter()),
		selectionPolicy:  UCB1[S, A],
		rollout:          rollout,
		Root:             newRootNode[S, A](root),
		size:             1,
		rng:              rng,
		explorationParam: ExplorationParam,
	}

	// Set IsSearching to false
	mcts.Limiter.SetStop(true)
	return mcts
}

func (mcts *MCTS[S, A]) invokeListener(f ListenerFunc[A]) {
	if f != nil {
		f(toListenerStats(mcts))
	}
}

func (mcts *MCTS[S, A]) ResetListener() {
	mcts.listener.OnCycle(nil).OnDepth(nil).OnStop(nil)
}

func (mcts *MCTS[S, A]) StatsListener() *StatsListener[A] {
	return mcts.listener
}

func (mcts *MCTS[S, A]) SetListener(listener StatsListener[A]) {
	*mcts.listener = listener
}

// Adds custom context to the limiter, enabling cancellation through it
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
//	defer cancel()
//
//	tree.SetContext(ctx)
//	err := tree.Search()
func (mcts *MCTS[S, A]) SetContext(ctx context.Context) {
	mcts.Limiter.SetContext(ctx)
}

// Exploration constant C of the UCB1 formula, for this tree only
func (mcts *MCTS[S, A]) SetExplorationParam(c float64) {
	mcts.explorationParam = max(0, c)
}

func (mcts *MCTS[S, A]) ExplorationParam() float64 {
	return mcts.explorationParam
}

func (mcts *MCTS[S, A]) SetSelectionPolicy(policy SelectionPolicy[S, A]) {
	if policy != nil {
		mcts.selectionPolicy = policy
	}
}

// Random source shared by the rollouts
func (mcts *MCTS[S, A]) Rand() *rand.Rand {
	return mcts.rng
}

func (mcts *MCTS[S, A]) IsSearching() bool {
	return !mcts.Limiter.Stop()
}

// Stop the search, safe to call from another goroutine
func (mcts *MCTS[S, A]) Stop() {
	mcts.Limiter.SetStop(true)
}

// Maxiumum depth reach during the search, note that usually MaxDepth != len(route)
func (mcts *MCTS[S, A]) MaxDepth() int {
	return mcts.maxdepth
}

// Total number of iterations ran during the last search
func (mcts *MCTS[S, A]) Cycles() int {
	return int(mcts.cycles)
}

// Get cycles per second statistic
func (mcts *MCTS[S, A]) Cps() uint32 {
	return mcts.cps
}

// Get the reason why the search was stopped, valid after search ends
func (mcts *MCTS[S, A]) StopReason() StopReason {
	return mcts.Limiter.StopReason()
}

func (mcts *MCTS[S, A]) SetLimits(limits *Limits) {
	mcts.Limiter.SetLimits(limits)
}

func (mcts *MCTS[S, A]) Limits() *Limits {
	return mcts.Limiter.Limits()
}

func (mcts *MCTS[S, A]) String() string {
	return fmt.Sprintf("MCTS={Size=%d, Stats:{maxdepth=%d, cps=%d, cycles=%d}, Stop=%v, Root=%v}",
		mcts.Size(), mcts.MaxDepth(), mcts.Cps(), mcts.Cycles(), !mcts.IsSearching(), mcts.Root)
}

// Helper function to count tree nodes
func countTreeNodes[S StateLike[S, A], A any](node *NodeBase[S, A]) int {
	nodes := 1
	for _, child := range node.Children {
		nodes += countTreeNodes(child)
	}
	return nodes
}

// Get the size of the tree (by counting)
func (mcts *MCTS[S, A]) Count() int {
	return countTreeNodes(mcts.Root)
}

// Get the size of the tree
func (mcts *MCTS[S, A]) Size() uint32 {
	return mcts.size
}

// Discard the tree and start over from 'root'
func (mcts *MCTS[S, A]) Reset(root S) {
	if mcts.IsSearching() {
		mcts.Stop()
	}

	mcts.Root = newRootNode[S, A](root)
	mcts.size = 1
	mcts.TreeStats = TreeStats{}
}

// Mean reward of the best child of the root
func (mcts *MCTS[S, A]) RootScore() Result {
	if bestChild := mcts.BestChild(mcts.Root, BestChildMeanReward); bestChild != nil {
		return bestChild.Stats.AvgQ()
	}
	return Result(math.NaN())
}

// Return best child, based on the policy. Ties go to the first child
func (mcts *MCTS[S, A]) BestChild(node *NodeBase[S, A], policy BestChildPolicy) *NodeBase[S, A] {
	var bestChild *NodeBase[S, A]

	switch policy {
	case BestChildMostVisits:
		maxVisits := int32(0)
		for _, child := range node.Children {
			if v := child.Stats.N(); v > maxVisits {
				maxVisits = v
				bestChild = child
			}
		}
	case BestChildMeanReward:
		// Exploration constant forced to zero
		best := math.Inf(-1)
		for _, child := range node.Children {
			if child.Stats.N() == 0 {
				continue
			}
			if mean := float64(child.Stats.AvgQ()); mean > best {
				best = mean
				bestChild = child
			}
		}
	}

	return bestChild
}

// Get the principal variation (ie. the best sequence of nodes)
// from given starting 'root' node, based on given best child policy.
// Returns the nodes and whether the last one is terminal
func (mcts *MCTS[S, A]) PvNodes(root *NodeBase[S, A], policy BestChildPolicy, includeRoot bool) ([]*NodeBase[S, A], bool) {
	if root == nil {
		return nil, false
	}

	pv := make([]*NodeBase[S, A], 0, mcts.MaxDepth()+1)
	if includeRoot {
		pv = append(pv, root)
	}

	// Simply select 'best child' until we don't have any children
	// or the node is terminal
	node := root
	for !node.Terminal() && len(node.Children) > 0 {
		next := mcts.BestChild(node, policy)
		if next == nil {
			break
		}
		node = next
		pv = append(pv, node)
	}

	return pv, node.Terminal()
}

// Get the pricipal variation, but only the actions, returns (actions, terminal)
func (mcts *MCTS[S, A]) Pv(root *NodeBase[S, A], policy BestChildPolicy) ([]A, bool) {
	nodes, terminal := mcts.PvNodes(root, policy, false)
	pv := make([]A, len(nodes))
	for i, node := range nodes {
		pv[i] = node.Action
	}
	return pv, terminal
}

// States along the highest mean reward path, starting with the root state.
// Returns the states and whether the path ends in a terminal state
func (mcts *MCTS[S, A]) BestRoute() ([]S, bool) {
	nodes, terminal := mcts.PvNodes(mcts.Root, BestChildMeanReward, true)
	route := make([]S, len(nodes))
	for i, node := range nodes {
		route[i] = node.State
	}
	return route, terminal
}
