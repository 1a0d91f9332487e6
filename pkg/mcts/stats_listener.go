package mcts

type ListenerTreeStats[A any] struct {
	Maxdepth int
	Cycles   int
	TimeMs   int
	Cps      uint32
	Size     uint32
	// Mean reward of the root's best child, NaN before the first cycle
	BestReward float64
	// Actions along the current best route
	Route      []A
	Terminal   bool
	StopReason StopReason
}

// Convert tree stats to 'ListenerTreeStats' struct
func toListenerStats[S StateLike[S, A], A any](tree *MCTS[S, A]) ListenerTreeStats[A] {
	route, terminal := tree.Pv(tree.Root, BestChildMeanReward)
	return ListenerTreeStats[A]{
		Maxdepth:   tree.MaxDepth(),
		Cycles:     tree.Cycles(),
		TimeMs:     int(tree.Limiter.Elapsed()),
		Cps:        tree.Cps(),
		Size:       tree.Size(),
		BestReward: float64(tree.RootScore()),
		Route:      route,
		Terminal:   terminal,
		StopReason: tree.Limiter.StopReason(),
	}
}

// Listener function callback, will recieve current tree statistics, like
// max depth of tree, number of iterations so far
type ListenerFunc[A any] func(ListenerTreeStats[A])

type StatsListener[A any] struct {
	// called when 'max depth' increases
	onDepth ListenerFunc[A]

	// called every N full iterations
	onCycle ListenerFunc[A]
	nCycles int // call 'onCycle' every N cycles

	// called when the search stops (either by limiter or 'stop' signal)
	onStop ListenerFunc[A]
}

func NewStatsListener[A any]() StatsListener[A] {
	return StatsListener[A]{nCycles: 1}
}

// Attach new on max depth change callback, called on the search goroutine
func (listener *StatsListener[A]) OnDepth(onDepth ListenerFunc[A]) *StatsListener[A] {
	listener.onDepth = onDepth
	return listener
}

// Attach new on iteration increase callback, this will slow down the search,
// because of the route evaluation, so use it with a large interval
func (listener *StatsListener[A]) OnCycle(onCycle ListenerFunc[A]) *StatsListener[A] {
	listener.onCycle = onCycle
	return listener
}

func (listener *StatsListener[A]) SetCycleInterval(n int) *StatsListener[A] {
	if n < 1 {
		n = 1
	}
	listener.nCycles = n
	return listener
}

// Attach 'on search end' callback, makes 'StopReason' available in the stats
func (listener *StatsListener[A]) OnStop(onStop ListenerFunc[A]) *StatsListener[A] {
	listener.onStop = onStop
	return listener
}

func invokeCycle[S StateLike[S, A], A any](listener *StatsListener[A], tree *MCTS[S, A]) {
	if listener.onCycle != nil && tree.Cycles()%listener.nCycles == 0 {
		listener.onCycle(toListenerStats(tree))
	}
}
