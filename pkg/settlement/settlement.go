// Package settlement grows a graph of connected structures with a sequence
// of tree searches, each phase optimizing its own reward over the shared graph.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"

	"github.com/IlikeChooros/go-settlement/pkg/geom"
	"github.com/IlikeChooros/go-settlement/pkg/mcts"
	"github.com/IlikeChooros/go-settlement/pkg/structure"
	"github.com/IlikeChooros/go-settlement/pkg/terrain"
)

const DefaultCycles = 500

// Settlement orchestrator, owns the graph all of its phases build on
type Settlement struct {
	ID uuid.UUID

	site   *site
	policy Policy // filter and keeper carried over between phases
	limits *mcts.Limits
	totals Bookkeeping
	phases []PhaseResult
}

func New(catalog structure.Catalog, oracle terrain.Oracle, opts ...Option) *Settlement {
	s := &Settlement{
		ID: uuid.New(),
		site: &site{
			catalog: catalog,
			oracle:  oracle,
			graph:   NewGraph(),
			missing: mapset.New[string](),
		},
		policy: Policy{Keeper: AccumulateProperties},
		limits: mcts.DefaultLimits().SetCycles(DefaultCycles),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.site.rng == nil {
		s.site.rng = rand.New(rand.NewSource(mcts.SeedGeneratorFn()))
	}
	return s
}

func (s *Settlement) Graph() *Graph {
	return s.site.graph
}

func (s *Settlement) Type() string {
	return s.site.settlementType
}

func (s *Settlement) Oracle() terrain.Oracle {
	return s.site.oracle
}

// Bookkeeping merged over the committed phases
func (s *Settlement) Totals() Bookkeeping {
	return s.totals
}

// Results of the committed phases, in order
func (s *Settlement) Phases() []PhaseResult {
	return s.phases
}

// Commit a structure at a known position as the start of a new component,
// without searching. The book-keeper of the settlement applies to it
func (s *Settlement) Anchor(name string, facing int, position geom.Vec3) (*Node, error) {
	st, err := s.site.catalog.Resolve(name, facing, position, s.site.settlementType)
	if err != nil {
		return nil, fmt.Errorf("anchor: %w", err)
	}
	if s.site.graph.Collides(st.WorldBox()) {
		return nil, fmt.Errorf("anchor %v: %w", st, ErrCollision)
	}

	policy := s.policy
	n := newNode(s.site, st, &policy)
	n.book = s.totals
	if policy.Keeper != nil {
		policy.Keeper(n, &n.book)
	}
	n.id = s.site.graph.add(n)
	n.routes = append(n.routes, "anchor")
	s.totals = n.book
	return n, nil
}

// Effective policy of a phase: nil filter and keeper inherit those of the last
// committed phase
func (s *Settlement) phasePolicy(p Phase) *Policy {
	policy := p.Policy
	changed := false
	if policy.Filter == nil {
		policy.Filter = s.policy.Filter
	} else {
		changed = true
	}
	if policy.Keeper == nil {
		policy.Keeper = s.policy.Keeper
	} else {
		changed = true
	}

	policy.generation = s.policy.generation
	if changed {
		policy.generation++
	}
	return &policy
}

// Filter and keeper of a committed phase become the defaults of the next ones
func (s *Settlement) inherit(policy *Policy) {
	s.policy.Filter, s.policy.Keeper, s.policy.generation = policy.Filter, policy.Keeper, policy.generation
}

// Committed node with an open slot, whose view ranks best under the policy's reward
func (s *Settlement) FindConnectionNode(policy *Policy) (*Node, error) {
	var best *Node
	bestReward := math.Inf(-1)

	for _, n := range s.site.graph.OpenNodes() {
		r := float64(n.view(n.parent, policy, 0, s.totals).Reward())
		if best == nil || r > bestReward {
			best, bestReward = n, r
		}
	}

	if best == nil {
		return nil, ErrNoOpenSlot
	}
	return best, nil
}

// Search state the phase starts from
func (s *Settlement) phaseRoot(p Phase, policy *Policy, fresh bool) (*Node, error) {
	if fresh {
		if len(s.site.rootNames) == 0 {
			return nil, ErrNoRootStructure
		}
		return newRootNode(s.site, policy, s.totals), nil
	}

	n, err := s.FindConnectionNode(policy)
	if err != nil {
		return nil, err
	}
	return n.view(n.parent, policy, 0, s.totals), nil
}

func (s *Settlement) exploration(p Phase) float64 {
	if p.Exploration > 0 {
		return p.Exploration
	}
	return terrain.AreaSqrt(s.site.oracle) / 10
}

// Run a single phase: search from a fresh root or an open node of the graph,
// then commit the best route
func (s *Settlement) RunPhase(ctx context.Context, p Phase) (*PhaseResult, error) {
	policy := s.phasePolicy(p)
	fail := func(err error, state string) error {
		return &PhaseError{Phase: p.Name, State: state, Err: err}
	}

	root, err := s.phaseRoot(p, policy, p.Fresh)
	if err != nil {
		return nil, fail(err, fmt.Sprintf("%d committed nodes, %d open", s.site.graph.Len(), len(s.site.graph.OpenNodes())))
	}

	limits := p.Limits
	if limits == nil {
		limits = s.limits
	}

	tree := mcts.NewMCTS[*Node, *Action](root, mcts.CostWeighted[*Action], s.site.rng)
	tree.SetExplorationParam(s.exploration(p))
	tree.SetLimits(limits)
	tree.SetContext(ctx)

	slog.Info("phase started", "phase", p.Name, "root", root, "exploration", tree.ExplorationParam())
	if err := tree.Search(); err != nil {
		return nil, fail(err, root.String())
	}

	route, terminal := tree.BestRoute()
	last := route[len(route)-1]
	if len(route) == 1 {
		if root.synthetic {
			return nil, fail(ErrEmptyRoute, root.String())
		}
		slog.Info("phase has nothing to place", "phase", p.Name, "root", root)
	}

	committed, added, err := s.commit(p.Name, route)
	if err != nil {
		return nil, fail(err, last.String())
	}
	s.inherit(policy)
	if added > 0 {
		s.totals = last.book
	}

	result := PhaseResult{
		Name:       p.Name,
		Nodes:      committed,
		Added:      added,
		Reward:     float64(last.Reward()),
		Terminal:   terminal,
		Cycles:     tree.Cycles(),
		StopReason: tree.StopReason(),
	}
	s.phases = append(s.phases, result)

	slog.Info("phase committed", "phase", p.Name, "nodes", added, "reward", result.Reward,
		"cycles", result.Cycles, "stop", result.StopReason.String(), "totals", s.totals)
	return &result, nil
}

// Run the phases in order, the first one starts fresh when the graph is empty.
// Stops at the first failing phase, returning the results committed so far
func (s *Settlement) Run(ctx context.Context, phases []Phase) ([]PhaseResult, error) {
	results := make([]PhaseResult, 0, len(phases))
	for i, p := range phases {
		if i == 0 && s.site.graph.Len() == 0 {
			p.Fresh = true
		}
		if err := ctx.Err(); err != nil {
			return results, &PhaseError{Phase: p.Name, Err: err}
		}

		r, err := s.RunPhase(ctx, p)
		if err != nil {
			var perr *PhaseError
			if errors.As(err, &perr) {
				slog.Error("phase failed", "phase", perr.Phase, "error", perr.Err, "state", perr.State)
			}
			return results, err
		}
		results = append(results, *r)
	}
	return results, nil
}
