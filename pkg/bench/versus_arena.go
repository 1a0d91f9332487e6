package bench

import (
	"context"
	"sync"
)

type VersusArena struct {
	VersusArenaStats
	Player1  Contender
	Player2  Contender
	NGames   uint
	NThreads uint
	// Game i builds both settlements with seed Seed+i
	Seed     int64
	wg       sync.WaitGroup
	finished chan struct{}
	ctx      context.Context

	mu     sync.Mutex
	p1Sum  float64
	p2Sum  float64
	scored int
}

func NewVersusArena(p1, p2 Contender) *VersusArena {
	return &VersusArena{
		Player1:  p1,
		Player2:  p2,
		NGames:   10,
		NThreads: 2,
		Seed:     1,
		ctx:      context.Background(),
	}
}

func (va *VersusArena) WithContext(ctx context.Context) *VersusArena {
	va.ctx = ctx
	return va
}

func (va *VersusArena) Setup(nGames, nThreads uint, seed int64) {
	va.NGames = nGames
	va.NThreads = max(1, nThreads)
	va.Seed = seed
}

// Block until the summary has been delivered
func (va *VersusArena) Wait() {
	if va.finished != nil {
		<-va.finished
	}
}

// Start the workers, games are equally distributed between them. The
// listener must be safe for concurrent use
func (va *VersusArena) Start(listener ListenerLike) {
	listener = orDefault(listener)
	nThreads := max(1, va.NThreads)
	nGames := va.NGames / nThreads
	rest := va.NGames % nThreads

	va.finished = make(chan struct{})
	first := 0
	for i := uint(0); i < nThreads; i++ {
		count := int(nGames)
		if rest > 0 {
			count++
			rest--
		}
		va.wg.Add(1)
		go va.worker(int(i), first, count, listener)
		first += count
	}

	go func() {
		va.wg.Wait()
		listener.Summary(va.Summary())
		close(va.finished)
	}()
}

// Start and wait for the summary
func (va *VersusArena) Run(listener ListenerLike) VersusSummaryInfo {
	summary := make(chan VersusSummaryInfo, 1)
	va.Start(summaryListener{ListenerLike: orDefault(listener), out: summary})
	va.Wait()
	return <-summary
}

func (va *VersusArena) Summary() VersusSummaryInfo {
	va.mu.Lock()
	defer va.mu.Unlock()

	info := VersusSummaryInfo{
		TotalGames: va.Total(),
		P1Wins:     va.P1Wins(),
		P2Wins:     va.P2Wins(),
		Draws:      va.Draws(),
		Failures:   va.Failures(),
		Workers:    int(va.NThreads),
		P1Name:     va.Player1.Name,
		P2Name:     va.Player2.Name,
	}
	if va.scored > 0 {
		info.P1Mean = va.p1Sum / float64(va.scored)
		info.P2Mean = va.p2Sum / float64(va.scored)
	}
	return info
}

func (va *VersusArena) worker(id, first, nGames int, listener ListenerLike) {
	defer va.wg.Done()
	local := VersusArenaStats{}

Loop:
	for i := 0; i < nGames; i++ {
		select {
		case <-va.ctx.Done():
			break Loop
		default:
			// continue
		}

		seed := va.Seed + int64(first+i)
		s1, s2, result := va.playGame(seed)
		va.record(s1, s2, result)
		local.add(result)

		listener.OnGameFinished(VersusWorkerInfo{
			WorkerID:      id,
			NGames:        nGames,
			FinishedGames: i + 1,
			Seed:          seed,
			P1Score:       s1,
			P2Score:       s2,
			Result:        result,
			P1Wins:        local.P1Wins(),
			P2Wins:        local.P2Wins(),
			Draws:         local.Draws(),
			P1Name:        va.Player1.Name,
			P2Name:        va.Player2.Name,
		})
	}

	listener.OnFinishedWork(VersusWorkerInfo{
		WorkerID:      id,
		NGames:        nGames,
		FinishedGames: local.Total(),
		P1Wins:        local.P1Wins(),
		P2Wins:        local.P2Wins(),
		Draws:         local.Draws(),
		P1Name:        va.Player1.Name,
		P2Name:        va.Player2.Name,
	})
}

// Build the seed's settlement with both contenders
func (va *VersusArena) playGame(seed int64) (Score, Score, VersusMatchResult) {
	s1 := va.Player1.Run(va.ctx, seed)
	s2 := va.Player2.Run(va.ctx, seed)
	return s1, s2, compareScores(s1, s2)
}

func (va *VersusArena) record(s1, s2 Score, result VersusMatchResult) {
	va.add(result)
	if s1.Err != nil || s2.Err != nil {
		if s1.Err != nil {
			va.addFailure()
		}
		if s2.Err != nil {
			va.addFailure()
		}
		return
	}

	va.mu.Lock()
	va.p1Sum += s1.Value
	va.p2Sum += s2.Value
	va.scored++
	va.mu.Unlock()
}

func orDefault(l ListenerLike) ListenerLike {
	if l == nil {
		return DefaultListener{}
	}
	return l
}

// Forwards the summary to a channel
type summaryListener struct {
	ListenerLike
	out chan<- VersusSummaryInfo
}

func (l summaryListener) Summary(info VersusSummaryInfo) {
	l.ListenerLike.Summary(info)
	l.out <- info
}
