package bench

import (
	"context"

	"github.com/IlikeChooros/go-settlement/pkg/settlement"
)

// Creates the settlement and its phases for a seed
type BuildFunc func(seed int64) (*settlement.Settlement, []settlement.Phase, error)

type ScoreFunc func(s *settlement.Settlement) float64

// Sum of the committed phases' rewards
func TotalReward(s *settlement.Settlement) float64 {
	total := 0.0
	for _, p := range s.Phases() {
		total += p.Reward
	}
	return total
}

// Contender running every phase of the built settlement. A phase failure is
// an error only when nothing was committed
func SettlementContender(name string, build BuildFunc, score ScoreFunc) Contender {
	if score == nil {
		score = TotalReward
	}
	return Contender{
		Name: name,
		Run: func(ctx context.Context, seed int64) Score {
			s, phases, err := build(seed)
			if err != nil {
				return Score{Err: err}
			}

			results, err := s.Run(ctx, phases)
			if err != nil && len(results) == 0 {
				return Score{Err: err}
			}

			terminal := 0
			for _, r := range results {
				if r.Terminal {
					terminal++
				}
			}
			return Score{
				Value:      score(s),
				Structures: s.Graph().Len(),
				Terminal:   terminal,
			}
		},
	}
}
