package config

import (
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/IlikeChooros/go-settlement/pkg/settlement"
	"github.com/IlikeChooros/go-settlement/pkg/structure"
)

// Variables visible to phase expressions. For filters the structure is the
// candidate and the bookkeeping, depth and cost are the ones of the node it
// would be attached to
type Env struct {
	Name   string `expr:"name"`
	Parent string `expr:"parent"`
	Facing int    `expr:"facing"`

	// Middle of the structure's box
	X int `expr:"x"`
	Y int `expr:"y"`
	Z int `expr:"z"`

	MinX int `expr:"minX"`
	MaxX int `expr:"maxX"`
	MinY int `expr:"minY"`
	MaxY int `expr:"maxY"`
	MinZ int `expr:"minZ"`
	MaxZ int `expr:"maxZ"`

	Cost  float64 `expr:"cost"`
	Depth int     `expr:"depth"`

	WorkerSize      float64 `expr:"workerSize"`
	KitchenSize     float64 `expr:"kitchenSize"`
	FoodSize        float64 `expr:"foodSize"`
	ArchiveSize     float64 `expr:"archiveSize"`
	StorageSize     float64 `expr:"storageSize"`
	ObservationSize float64 `expr:"observationSize"`
	ExitSize        float64 `expr:"exitSize"`

	Required map[string]float64 `expr:"required"`
}

func newEnv(st structure.Structure, from *settlement.Node, required map[string]float64) Env {
	box := st.WorldBox()
	mid, last := box.Middle(), box.Last()
	env := Env{
		Name:   st.Name(),
		Facing: st.Facing(),
		X:      mid.X,
		Y:      mid.Y,
		Z:      mid.Z,
		MinX:   box.Offset.X,
		MaxX:   last.X,
		MinY:   box.Offset.Y,
		MaxY:   last.Y,
		MinZ:   box.Offset.Z,
		MaxZ:   last.Z,
		Cost:   from.Cost(),
		Depth:  from.Depth(),

		Required: required,
	}
	if parent := from.Parent(); parent != nil {
		env.Parent = parent.Structure().Name()
	}

	book := from.Book()
	env.WorkerSize = book.Get(settlement.WorkerSize)
	env.KitchenSize = book.Get(settlement.KitchenSize)
	env.FoodSize = book.Get(settlement.FoodSize)
	env.ArchiveSize = book.Get(settlement.ArchiveSize)
	env.StorageSize = book.Get(settlement.StorageSize)
	env.ObservationSize = book.Get(settlement.ObservationSize)
	env.ExitSize = book.Get(settlement.ExitSize)
	return env
}

func nodeEnv(n *settlement.Node, required map[string]float64) Env {
	return newEnv(n.Structure(), n, required)
}

func filterEnv(candidate structure.Structure, from *settlement.Node, required map[string]float64) Env {
	env := newEnv(candidate, from, required)
	env.Parent = from.Structure().Name()
	env.Depth = from.Depth() + 1
	return env
}

func compile(src string, kind expr.Option) (*vm.Program, error) {
	program, err := expr.Compile(src, expr.Env(Env{}), kind)
	if err != nil {
		return nil, fmt.Errorf("%w: compile %q: %v", ErrInvalid, src, err)
	}
	return program, nil
}

// Reward expression, evaluated to a number. Evaluation errors give 0
func CompileReward(src string, required map[string]float64) (settlement.RewardFunc, error) {
	program, err := compile(src, expr.AsFloat64())
	if err != nil {
		return nil, err
	}
	return func(n *settlement.Node) float64 {
		out, err := vm.Run(program, nodeEnv(n, required))
		if err != nil {
			slog.Warn("reward expression failed", "expr", src, "structure", n.Structure().Name(), "error", err)
			return 0
		}
		return out.(float64)
	}, nil
}

// Termination predicate, evaluation errors do not terminate
func CompileTerminate(src string, required map[string]float64) (settlement.TerminateFunc, error) {
	program, err := compile(src, expr.AsBool())
	if err != nil {
		return nil, err
	}
	return func(n *settlement.Node) bool {
		out, err := vm.Run(program, nodeEnv(n, required))
		if err != nil {
			slog.Warn("terminate expression failed", "expr", src, "structure", n.Structure().Name(), "error", err)
			return false
		}
		return out.(bool)
	}, nil
}

// Candidate filter, evaluation errors reject the candidate
func CompileFilter(src string, required map[string]float64) (settlement.FilterFunc, error) {
	program, err := compile(src, expr.AsBool())
	if err != nil {
		return nil, err
	}
	return func(candidate structure.Structure, from *settlement.Node) bool {
		out, err := vm.Run(program, filterEnv(candidate, from, required))
		if err != nil {
			slog.Debug("filter expression failed", "expr", src, "structure", candidate.Name(), "error", err)
			return false
		}
		return out.(bool)
	}, nil
}
