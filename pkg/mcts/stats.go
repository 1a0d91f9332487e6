package mcts

import "fmt"

// visits/reward sum of the node, the search is single-threaded
// so there is no need for atomic counters
type NodeStats struct {
	q float64 // compounded rewards
	n int32   // visit count
}

// Average reward for this node, NaN if never visited
func (stats *NodeStats) AvgQ() Result {
	return Result(stats.q / float64(stats.n))
}

// Cumulated rewards for this node
func (stats *NodeStats) Q() Result {
	return Result(stats.q)
}

// Add new outcome to this node, counting it as a visit
func (stats *NodeStats) AddQ(result Result) {
	stats.q += float64(result)
	stats.n++
}

// Get number of visits to this node
func (stats *NodeStats) N() int32 {
	return stats.n
}

func (stats *NodeStats) Reset() {
	stats.q, stats.n = 0, 0
}

func (stats NodeStats) String() string {
	return fmt.Sprintf("{n=%d, q=%.3f}", stats.n, stats.q)
}
