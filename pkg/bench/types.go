package bench

import (
	"context"
	"sync/atomic"
)

/*
Arena benchmark subpackage, builds the same seeded settlements with two
different search configurations and counts which one scores better.
*/

type VersusMatchResult int

const (
	VersusPl1Win VersusMatchResult = 1
	VersusPl2Win VersusMatchResult = -1
	VersusDraw   VersusMatchResult = 0
)

// Scores closer than this are a draw
const DrawMargin = 1e-6

// Outcome of one settlement build
type Score struct {
	Value      float64
	Structures int
	// Phases that ended in a terminal state
	Terminal int
	Err      error
}

// Named configuration taking part in the arena. Run builds a whole
// settlement for the seed and scores it, higher is better
type Contender struct {
	Name string
	Run  func(ctx context.Context, seed int64) Score
}

type VersusArenaStats struct {
	p1Wins   uint32
	p2Wins   uint32
	draws    uint32
	failures uint32
}

func (vas *VersusArenaStats) Total() int {
	return vas.P1Wins() + vas.P2Wins() + vas.Draws()
}

func (vas *VersusArenaStats) P1Wins() int {
	return int(atomic.LoadUint32(&vas.p1Wins))
}

func (vas *VersusArenaStats) P2Wins() int {
	return int(atomic.LoadUint32(&vas.p2Wins))
}

func (vas *VersusArenaStats) Draws() int {
	return int(atomic.LoadUint32(&vas.draws))
}

// Builds that returned an error
func (vas *VersusArenaStats) Failures() int {
	return int(atomic.LoadUint32(&vas.failures))
}

func (vas *VersusArenaStats) add(result VersusMatchResult) {
	switch result {
	case VersusPl1Win:
		atomic.AddUint32(&vas.p1Wins, 1)
	case VersusPl2Win:
		atomic.AddUint32(&vas.p2Wins, 1)
	default:
		atomic.AddUint32(&vas.draws, 1)
	}
}

func (vas *VersusArenaStats) addFailure() {
	atomic.AddUint32(&vas.failures, 1)
}

type VersusWorkerInfo struct {
	WorkerID      int
	NGames        int
	FinishedGames int
	Seed          int64
	P1Score       Score
	P2Score       Score
	Result        VersusMatchResult
	P1Wins        int
	P2Wins        int
	Draws         int
	P1Name        string
	P2Name        string
}

type VersusSummaryInfo struct {
	TotalGames int     `json:"total_games"`
	P1Wins     int     `json:"player1_wins"`
	P2Wins     int     `json:"player2_wins"`
	Draws      int     `json:"draws"`
	Failures   int     `json:"failures"`
	P1Mean     float64 `json:"player1_mean"`
	P2Mean     float64 `json:"player2_mean"`
	Workers    int     `json:"workers"`
	P1Name     string  `json:"player1_name"`
	P2Name     string  `json:"player2_name"`
}

// Compare two builds of the same seed, a failed build always loses
func compareScores(s1, s2 Score) VersusMatchResult {
	switch {
	case s1.Err != nil && s2.Err != nil:
		return VersusDraw
	case s1.Err != nil:
		return VersusPl2Win
	case s2.Err != nil:
		return VersusPl1Win
	}

	diff := s1.Value - s2.Value
	if diff > DrawMargin {
		return VersusPl1Win
	}
	if diff < -DrawMargin {
		return VersusPl2Win
	}
	return VersusDraw
}
