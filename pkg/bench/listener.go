package bench

import "log/slog"

type ListenerLike interface {
	OnGameFinished(info VersusWorkerInfo)
	OnFinishedWork(info VersusWorkerInfo)
	Summary(info VersusSummaryInfo)
}

// Ignores every event
type DefaultListener struct{}

func (DefaultListener) OnGameFinished(VersusWorkerInfo) {}
func (DefaultListener) OnFinishedWork(VersusWorkerInfo) {}
func (DefaultListener) Summary(VersusSummaryInfo)       {}

// Logs every finished game and the summary
type LogListener struct{}

func (LogListener) OnGameFinished(info VersusWorkerInfo) {
	slog.Info("game finished",
		"worker", info.WorkerID,
		"seed", info.Seed,
		info.P1Name, info.P1Score.Value,
		info.P2Name, info.P2Score.Value,
		"result", info.Result,
	)
}

func (LogListener) OnFinishedWork(info VersusWorkerInfo) {
	slog.Debug("worker finished", "worker", info.WorkerID, "games", info.NGames)
}

func (LogListener) Summary(info VersusSummaryInfo) {
	slog.Info("arena finished",
		"games", info.TotalGames,
		info.P1Name+"Wins", info.P1Wins,
		info.P2Name+"Wins", info.P2Wins,
		"draws", info.Draws,
		"failures", info.Failures,
		info.P1Name+"Mean", info.P1Mean,
		info.P2Name+"Mean", info.P2Mean,
	)
}
