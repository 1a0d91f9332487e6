package settlement

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/IlikeChooros/go-settlement/pkg/geom"
	"github.com/IlikeChooros/go-settlement/pkg/mcts"
	"github.com/IlikeChooros/go-settlement/pkg/structure"
)

// Settlement type of the observation post preset, selects the catalog
// variants that lead from bridges into rooms
const VillageObservationPost = "villageObservationPost"

// Distance at which a debug phase counts its target as reached
const debugReach = 8

// Negated weighted manhattan distance from the middle of the node's
// structure to 'target', height counts twice
func DistanceTo(target geom.Vec3) RewardFunc {
	return func(n *Node) float64 {
		return -float64(distance(n, target))
	}
}

func distance(n *Node, target geom.Vec3) int {
	return n.Structure().WorldBox().Middle().Sub(target).Manhattan(1, 2, 1)
}

// One phase per target, each growing towards its target from the node closest to it
func DebugPhases(targets []geom.Vec3, limits *mcts.Limits) []Phase {
	phases := make([]Phase, len(targets))
	for i, target := range targets {
		target := target
		phases[i] = Phase{
			Name: fmt.Sprintf("debug-%d", i+1),
			Policy: Policy{
				Reward: DistanceTo(target),
				Terminate: func(n *Node) bool {
					return distance(n, target) <= debugReach
				},
			},
			Limits: limits,
			Fresh:  i == 0,
		}
	}
	return phases
}

// Capacities an observation post with 'inhabitants' people needs. The number
// of exits is drawn from [3, 6)
func ObservationPostRequirements(inhabitants int, rng *rand.Rand) Bookkeeping {
	var req Bookkeeping
	workers := float64(4 + inhabitants)
	req.Set(WorkerSize, workers)
	req.Set(KitchenSize, workers)
	req.Set(FoodSize, workers)
	req.Set(ArchiveSize, float64(max(1, inhabitants/8)))
	req.Set(StorageSize, math.Max(2, math.Floor(workers/8)))
	req.Set(ObservationSize, 1)
	req.Set(ExitSize, float64(3+rng.Intn(3)))
	return req
}

var observationPostOrder = []struct {
	name  string
	key   Key
	k     float64 // exploration is sqrt(requirement)/k
	fixed float64 // fixed exploration, used when positive
	scale float64
}{
	{"workers", WorkerSize, 1.4, 0, 1},
	{"kitchens", KitchenSize, 2, 0, 1},
	{"food", FoodSize, 1.8, 0, 1},
	{"archive", ArchiveSize, 2, 0, 1},
	{"storage", StorageSize, 2, 0, 1},
	{"observation", ObservationSize, 0, 0.8, 1},
	{"exits", ExitSize, 3.2, 0, 100},
}

// Reward: the key's value, -1 once it is over the requirement
func RequirementReward(key Key, required, scale float64) RewardFunc {
	return func(n *Node) float64 {
		v := n.book.Get(key)
		if v > required {
			return -1
		}
		return v * scale
	}
}

func RequirementMet(key Key, required float64) TerminateFunc {
	return func(n *Node) bool {
		return n.book.Get(key) >= required
	}
}

// Phases of an observation post: one per capacity, in a fixed order, each
// running until its requirement is met
func ObservationPostPhases(req Bookkeeping, limits *mcts.Limits) []Phase {
	phases := make([]Phase, 0, len(observationPostOrder))
	for i, step := range observationPostOrder {
		required := req.Get(step.key)
		exploration := step.fixed
		if exploration <= 0 {
			exploration = math.Sqrt(required) / step.k
		}

		phases = append(phases, Phase{
			Name: step.name,
			Policy: Policy{
				Reward:    RequirementReward(step.key, required, step.scale),
				Terminate: RequirementMet(step.key, required),
			},
			Exploration: exploration,
			Limits:      limits,
			Fresh:       i == 0,
		})
	}
	return phases
}

// Accepts candidates whose footprint stays out of 'inner' but overlaps 'outer'
func RectFilter(inner, outer geom.Rect) FilterFunc {
	return func(candidate structure.Structure, from *Node) bool {
		r := candidate.WorldBox().Rect()
		return !r.Collides(inner) && r.Collides(outer)
	}
}
