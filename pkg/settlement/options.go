package settlement

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/IlikeChooros/go-settlement/pkg/mcts"
)

type Option func(*Settlement)

// Random source shared by the root sampling and every search of the settlement
func WithRand(rng *rand.Rand) Option {
	return func(s *Settlement) {
		if rng != nil {
			s.site.rng = rng
		}
	}
}

// Structures a fresh phase may start with
func WithRootStructure(names ...string) Option {
	return func(s *Settlement) {
		s.site.rootNames = append(s.site.rootNames, names...)
	}
}

// Tag passed to the catalog, selecting connector variants
func WithSettlementType(t string) Option {
	return func(s *Settlement) {
		s.site.settlementType = t
	}
}

// Book-keeper used until a phase brings its own, AccumulateProperties by default
func WithBookKeeper(k BookKeeper) Option {
	return func(s *Settlement) {
		s.policy.Keeper = k
	}
}

// Filter used until a phase brings its own
func WithActionFilter(f FilterFunc) Option {
	return func(s *Settlement) {
		s.policy.Filter = f
	}
}

// Search limits for phases without their own
func WithLimits(limits *mcts.Limits) Option {
	return func(s *Settlement) {
		if limits != nil {
			s.limits = limits
		}
	}
}

func WithID(id uuid.UUID) Option {
	return func(s *Settlement) {
		s.ID = id
	}
}
