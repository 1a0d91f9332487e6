package settlement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"testing"

	"github.com/IlikeChooros/go-settlement/pkg/catalog"
	"github.com/IlikeChooros/go-settlement/pkg/geom"
	"github.com/IlikeChooros/go-settlement/pkg/mcts"
	"github.com/IlikeChooros/go-settlement/pkg/structure"
	"github.com/IlikeChooros/go-settlement/pkg/terrain"
)

func TestMain(m *testing.M) {
	mcts.SetSeedGeneratorFn(func() int64 {
		return 42
	})
	os.Exit(m.Run())
}

func connectors(next []string, facings ...int) []catalog.ConnectorDef {
	defs := make([]catalog.ConnectorDef, len(facings))
	for i, f := range facings {
		defs[i] = catalog.ConnectorDef{Facing: f, Next: next}
	}
	return defs
}

// Small catalog: hallways chain on both ends, hubs open in 4 directions
func testCatalog(t *testing.T, oracle terrain.Oracle) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New("test", []catalog.Template{
		{Name: "hallway", Size: [3]int{9, 5, 5}, Connectors: connectors([]string{"hallway"}, 0, 2)},
		{Name: "hub", Size: [3]int{5, 5, 5}, Connectors: connectors([]string{"hallway", "room"}, 0, 1, 2, 3)},
		{Name: "room", Size: [3]int{7, 5, 7}, Properties: map[string]float64{"workerCapacity": 2},
			Connectors: connectors([]string{"hallway"}, 0, 2)},
		{Name: "dead_end", Size: [3]int{5, 5, 5}, Connectors: connectors(nil, 0, 1, 2, 3)},
		{Name: "missing_link", Size: [3]int{5, 5, 5}, Connectors: connectors([]string{"ghost", "hallway"}, 0)},
	}, oracle)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func bigArea() geom.Rect {
	return geom.Rect{Size: geom.Vec2{X: 160, Z: 160}}
}

func newTestSettlement(t *testing.T, area geom.Rect, seed int64, opts ...Option) *Settlement {
	t.Helper()
	oracle := terrain.Flat(area, 0)
	opts = append([]Option{WithRand(rand.New(rand.NewSource(seed)))}, opts...)
	return New(testCatalog(t, oracle), oracle, opts...)
}

func towards(target geom.Vec3, cycles uint32) Phase {
	return Phase{
		Name:   fmt.Sprintf("towards %v", target),
		Policy: Policy{Reward: DistanceTo(target)},
		Limits: mcts.DefaultLimits().SetCycles(cycles),
	}
}

func assertNoCollisions(t *testing.T, g *Graph) {
	t.Helper()
	nodes := g.Nodes()
	for i := range nodes {
		for j := range nodes {
			if i == j {
				continue
			}
			a, b := nodes[i].Structure().WorldBox(), nodes[j].Structure().WorldBox()
			if a.Eroded(1).Collides(b) {
				t.Errorf("Committed nodes #%d %v and #%d %v collide", i, a, j, b)
			}
		}
	}
}

func TestTerminalRootWithoutNextStructures(t *testing.T) {
	s := newTestSettlement(t, bigArea(), 1)
	if _, err := s.Anchor("dead_end", 0, geom.V3(50, 0, 50)); err != nil {
		t.Fatal(err)
	}

	policy := s.phasePolicy(Phase{})
	root, err := s.phaseRoot(Phase{}, policy, false)
	if err != nil {
		t.Fatal(err)
	}
	if actions := root.PossibleActions(); len(actions) != 0 {
		t.Fatalf("Expected no actions, got %v", actions)
	}
	if !root.IsTerminal() {
		t.Error("A node without actions must be terminal")
	}

	// Running the phase is not an error, there is just nothing to place
	r, err := s.RunPhase(context.Background(), Phase{Name: "noop", Limits: mcts.DefaultLimits().SetCycles(10)})
	if err != nil {
		t.Fatal(err)
	}
	if r.Added != 0 || s.Graph().Len() != 1 {
		t.Errorf("Expected nothing to be added, got %d (graph %d)", r.Added, s.Graph().Len())
	}
}

func TestBuildAreaBoundsTheSearch(t *testing.T) {
	// Exactly 3 hallways long
	area := geom.Rect{Size: geom.Vec2{X: 27, Z: 5}}
	s := newTestSettlement(t, area, 2)
	anchor, err := s.Anchor("hallway", 0, geom.V3(0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}

	phase := Phase{
		Name: "east",
		Policy: Policy{Reward: func(n *Node) float64 {
			return float64(n.Structure().WorldBox().Middle().X)
		}},
		Limits: mcts.DefaultLimits().SetCycles(200),
	}
	r, err := s.RunPhase(context.Background(), phase)
	if err != nil {
		t.Fatal(err)
	}

	if r.Added != 2 || s.Graph().Len() != 3 {
		t.Fatalf("Expected 2 more hallways, got %d (graph %d)", r.Added, s.Graph().Len())
	}
	if !r.Terminal {
		t.Error("Expected the route to end in a terminal state")
	}
	for _, n := range s.Graph().Nodes() {
		if !s.Oracle().InsideBuildArea(n.Structure().WorldBox()) {
			t.Errorf("%v is outside the build area", n)
		}
	}

	// The 4th hallway is rejected with cost 0
	last := s.Graph().Nodes()[2]
	fourth, err := s.site.catalog.Resolve("hallway", 0, geom.V3(27, 0, 0), "")
	if err != nil {
		t.Fatal(err)
	}
	if cost := last.view(last.parent, last.policy, 0, last.book).evaluateCandidate(fourth); cost != 0 {
		t.Errorf("Expected the 4th hallway to be rejected, cost %v", cost)
	}
	if anchor.Link(structure.Slot{Facing: 0}) != 1 {
		t.Errorf("Expected the anchor to link to the second hallway, got #%d", anchor.Link(structure.Slot{Facing: 0}))
	}
}

func TestReRootedPhaseWithoutGraph(t *testing.T) {
	s := newTestSettlement(t, bigArea(), 3)

	_, err := s.RunPhase(context.Background(), Phase{Name: "second"})
	if !errors.Is(err, ErrNoOpenSlot) {
		t.Fatalf("Expected ErrNoOpenSlot, got %v", err)
	}
	var perr *PhaseError
	if !errors.As(err, &perr) || perr.Phase != "second" {
		t.Errorf("Expected a PhaseError naming the phase, got %#v", err)
	}
	if s.Graph().Len() != 0 {
		t.Error("A failed phase must not add nodes")
	}
}

func TestCommitReservesOneSlotPairPerEdge(t *testing.T) {
	s := newTestSettlement(t, bigArea(), 4)
	if _, err := s.Anchor("hub", 0, geom.V3(78, 0, 78)); err != nil {
		t.Fatal(err)
	}

	r, err := s.RunPhase(context.Background(), towards(geom.V3(150, 2, 80), 300))
	if err != nil {
		t.Fatal(err)
	}
	n := len(r.Nodes)
	if n < 2 {
		t.Fatalf("Expected a route of at least 2 nodes, got %d", n)
	}
	if r.Added != n-1 {
		t.Errorf("Expected %d new nodes, got %d", n-1, r.Added)
	}
	if edges := len(s.Graph().Edges()); edges != n-1 {
		t.Errorf("Expected %d edges, got %d", n-1, edges)
	}

	reserved := 0
	for _, node := range r.Nodes {
		reserved += len(node.Slots())
	}
	if reserved != 2*(n-1) {
		t.Errorf("Expected %d reserved slots, got %d", 2*(n-1), reserved)
	}

	for i := 1; i < n; i++ {
		prev, cur := r.Nodes[i-1], r.Nodes[i]
		incoming, ok := cur.Incoming()
		if !ok {
			t.Fatalf("%v has no incoming connector", cur)
		}
		if got := prev.Link(incoming.Slot()); got != cur.ID() {
			t.Errorf("Forward slot of %v links to #%d, want #%d", prev, got, cur.ID())
		}
		if got := cur.Link(cur.rear.Slot()); got != prev.ID() {
			t.Errorf("Rear slot of %v links to #%d, want #%d", cur, got, prev.ID())
		}
		if cur.Parent() != prev {
			t.Errorf("Parent of %v is %v, want %v", cur, cur.Parent(), prev)
		}
	}
}

func TestNoParentRevisit(t *testing.T) {
	s := newTestSettlement(t, bigArea(), 5)
	if _, err := s.Anchor("hub", 0, geom.V3(78, 0, 78)); err != nil {
		t.Fatal(err)
	}
	policy := s.phasePolicy(Phase{})
	root, err := s.phaseRoot(Phase{}, policy, false)
	if err != nil {
		t.Fatal(err)
	}

	// Walk a few random paths, checking every state on the way
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 20; i++ {
		node := root
		for depth := 0; depth < 6 && !node.IsTerminal(); depth++ {
			actions := node.PossibleActions()
			for _, a := range actions {
				if node.Parent() != nil && a.Connector.Slot() == node.rear.Slot() {
					t.Fatalf("%v offers its rear connector: %v", node, a)
				}
				if a.Cost() <= 0 {
					t.Fatalf("%v offers a non-positive cost action: %v", node, a)
				}
			}
			node = node.TakeAction(actions[rng.Intn(len(actions))])
			if !node.IsOccupied(node.rear) {
				t.Fatalf("%v does not reserve the connector it was reached through", node)
			}
		}
	}
}

func TestEvaluateCandidate(t *testing.T) {
	area := geom.Rect{Size: geom.Vec2{X: 64, Z: 64}}
	oracle := terrain.FromFunc(area, func(x, z int) int {
		if x >= 40 {
			return 10
		}
		return 0
	})
	c := testCatalog(t, oracle)
	s := New(c, oracle, WithRand(rand.New(rand.NewSource(6))))
	anchor, err := s.Anchor("hub", 0, geom.V3(10, 0, 10))
	if err != nil {
		t.Fatal(err)
	}
	policy := s.phasePolicy(Phase{})
	from := anchor.view(anchor.parent, policy, 0, s.totals)

	resolve := func(name string, pos geom.Vec3) structure.Structure {
		st, err := c.Resolve(name, 0, pos, "")
		if err != nil {
			t.Fatal(err)
		}
		return st
	}

	cases := []struct {
		name      string
		candidate structure.Structure
		accept    bool
	}{
		{"free spot", resolve("hallway", geom.V3(15, 0, 10)), true},
		{"outside", resolve("hallway", geom.V3(60, 0, 10)), false},
		{"negative side", resolve("hallway", geom.V3(-3, 0, 10)), false},
		{"in the ground", resolve("hallway", geom.V3(35, 0, 10)), false},
		{"overlapping", resolve("hallway", geom.V3(12, 0, 10)), false},
		{"adjacent", resolve("hallway", geom.V3(1, 0, 10)), true},
	}

	for _, tc := range cases {
		cost := from.evaluateCandidate(tc.candidate)
		if cost < 0 {
			t.Errorf("%s: negative cost %v", tc.name, cost)
		}
		if accepted := cost > 0; accepted != tc.accept {
			t.Errorf("%s: cost %v, want accepted=%v", tc.name, cost, tc.accept)
		}
	}

	// A filter rejection is a zero cost too
	policy.Filter = func(candidate structure.Structure, from *Node) bool { return false }
	if cost := from.evaluateCandidate(cases[0].candidate); cost != 0 {
		t.Errorf("Filtered candidate got cost %v", cost)
	}
}

func TestUnknownStructureIsSkipped(t *testing.T) {
	s := newTestSettlement(t, bigArea(), 7)
	if _, err := s.Anchor("missing_link", 0, geom.V3(50, 0, 50)); err != nil {
		t.Fatal(err)
	}
	policy := s.phasePolicy(Phase{})
	root, err := s.phaseRoot(Phase{}, policy, false)
	if err != nil {
		t.Fatal(err)
	}

	actions := root.PossibleActions()
	if len(actions) != 1 || actions[0].Structure.Name() != "hallway" {
		t.Fatalf("Expected only the hallway, got %v", actions)
	}
	if !s.site.missing.Has("ghost") {
		t.Error("Expected the unknown name to be recorded")
	}
}

func TestCollisionInvariant(t *testing.T) {
	area := bigArea()
	oracle := terrain.Flat(area, 0)
	c, err := catalog.Builtin("debug", oracle)
	if err != nil {
		t.Fatal(err)
	}
	s := New(c, oracle, WithRand(rand.New(rand.NewSource(8))), WithRootStructure("narrow_hub"))

	targets := []geom.Vec3{{X: 20, Y: 2, Z: 20}, {X: 140, Y: 2, Z: 30}, {X: 80, Y: 2, Z: 150}}
	if _, err := s.Run(context.Background(), DebugPhases(targets, mcts.DefaultLimits().SetCycles(150))); err != nil {
		t.Fatal(err)
	}
	if s.Graph().Len() < 2 {
		t.Fatalf("Expected a few committed nodes, got %d", s.Graph().Len())
	}
	assertNoCollisions(t, s.Graph())
}

func TestSettlementDeterminism(t *testing.T) {
	run := func() Snapshot {
		s := newTestSettlement(t, bigArea(), 9, WithRootStructure("hub"))
		phases := []Phase{
			towards(geom.V3(20, 2, 20), 120),
			towards(geom.V3(140, 2, 140), 120),
		}
		if _, err := s.Run(context.Background(), phases); err != nil {
			t.Fatal(err)
		}
		return s.Snapshot()
	}

	a, b := run(), run()
	if len(a.Nodes) != len(b.Nodes) {
		t.Fatalf("Same seed gave %d and %d nodes", len(a.Nodes), len(b.Nodes))
	}
	for i := range a.Nodes {
		na, nb := a.Nodes[i], b.Nodes[i]
		if na.Structure != nb.Structure || na.Box != nb.Box || na.Facing != nb.Facing {
			t.Fatalf("Node %d differs: %+v vs %+v", i, na, nb)
		}
	}
}

func TestFreshPhaseWithoutRootStructure(t *testing.T) {
	s := newTestSettlement(t, bigArea(), 10)
	_, err := s.RunPhase(context.Background(), Phase{Name: "first", Fresh: true})
	if !errors.Is(err, ErrNoRootStructure) {
		t.Fatalf("Expected ErrNoRootStructure, got %v", err)
	}
}

func TestRootStandsOnTheSurface(t *testing.T) {
	oracle := terrain.FromFunc(bigArea(), func(x, z int) int { return x / 16 })
	s := New(testCatalog(t, oracle), oracle,
		WithRand(rand.New(rand.NewSource(23))),
		WithRootStructure("hub"),
	)
	root := newRootNode(s.site, s.phasePolicy(Phase{}), s.totals)

	actions := root.PossibleActions()
	if len(actions) == 0 {
		t.Fatal("Expected sampled starting placements")
	}
	for _, a := range actions {
		box := a.Structure.WorldBox()
		top := math.MinInt
		end := box.End()
		for z := box.Offset.Z; z < end.Z; z++ {
			for x := box.Offset.X; x < end.X; x++ {
				top = max(top, oracle.HeightAt(x, z))
			}
		}
		if box.Offset.Y != top {
			t.Errorf("%v starts at y=%d, want the highest free cell %d", a.Structure, box.Offset.Y, top)
		}
		if oracle.TouchesSurface(box) {
			t.Errorf("%v reaches into the ground", a.Structure)
		}
	}
}

func TestFreshPhaseStartsNewComponent(t *testing.T) {
	s := newTestSettlement(t, bigArea(), 11, WithRootStructure("hub"))
	r, err := s.RunPhase(context.Background(), Phase{
		Name:   "first",
		Fresh:  true,
		Limits: mcts.DefaultLimits().SetCycles(100),
	})
	if err != nil {
		t.Fatal(err)
	}

	first := r.Nodes[0]
	if first.Structure().Name() != "hub" {
		t.Fatalf("Expected the route to start with the root structure, got %v", first)
	}
	if _, ok := first.Incoming(); ok || first.Parent() != nil {
		t.Errorf("The first node of a component has no incoming connector, got %v", first)
	}
	if r.Added != len(r.Nodes) {
		t.Errorf("Every node of a fresh route is new, added %d of %d", r.Added, len(r.Nodes))
	}
}

func TestReuseActions(t *testing.T) {
	s := newTestSettlement(t, bigArea(), 12)
	hub, err := s.Anchor("hub", 0, geom.V3(78, 0, 78))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.RunPhase(context.Background(), towards(geom.V3(150, 2, 80), 100)); err != nil {
		t.Fatal(err)
	}
	if s.Graph().Len() < 2 {
		t.Fatal("Expected the hub to get a neighbour")
	}

	// Find the hub's committed neighbour
	var child NodeID = NoNode
	for _, slot := range hub.Slots() {
		if id := hub.Link(slot); id != NoNode {
			child = id
		}
	}
	if child == NoNode {
		t.Fatal("The hub has no linked slot")
	}

	countReuse := func(allow bool) (int, *Action) {
		policy := s.phasePolicy(Phase{Policy: Policy{AllowReuse: allow}})
		root := hub.view(hub.parent, policy, 0, s.totals)
		n, last := 0, (*Action)(nil)
		for _, a := range root.PossibleActions() {
			if a.IsReuse() {
				n++
				last = a
			}
		}
		return n, last
	}

	if n, _ := countReuse(false); n != 0 {
		t.Errorf("Reuse actions without AllowReuse: %d", n)
	}
	n, action := countReuse(true)
	if n != 1 || action.Target != child {
		t.Fatalf("Expected one reuse action to #%d, got %d (%v)", child, n, action)
	}

	policy := s.phasePolicy(Phase{Policy: Policy{AllowReuse: true}})
	root := hub.view(hub.parent, policy, 0, s.totals)
	next := root.TakeAction(action)
	if next.ID() != child || next.Committed() {
		t.Errorf("Expected a view of #%d, got %v", child, next)
	}
	for _, a := range next.PossibleActions() {
		if a.IsReuse() && a.Target == hub.ID() {
			t.Errorf("The view offers its parent back: %v", a)
		}
	}
}

// Two anchored components: a hub, and a hallway exactly two hallways east of
// it. Growing a hallway from the hub lands the next one on the anchored hallway
func joinSetup(t *testing.T) (*Settlement, *Node, *Node) {
	t.Helper()
	s := newTestSettlement(t, bigArea(), 21)
	hub, err := s.Anchor("hub", 0, geom.V3(50, 0, 50))
	if err != nil {
		t.Fatal(err)
	}
	hallway, err := s.Anchor("hallway", 0, geom.V3(64, 0, 50))
	if err != nil {
		t.Fatal(err)
	}
	return s, hub, hallway
}

// Follow hub -> new hallway -> join of the anchored hallway
func joinPath(t *testing.T, s *Settlement, hub, target *Node) []*Node {
	t.Helper()
	policy := s.phasePolicy(Phase{Policy: Policy{AllowReuse: true}})
	root := hub.view(hub.parent, policy, 0, s.totals)

	var grow *Action
	for _, a := range root.PossibleActions() {
		if !a.IsReuse() && a.Structure.Name() == "hallway" && a.Structure.Position() == geom.V3(55, 0, 50) {
			grow = a
		}
	}
	if grow == nil {
		t.Fatalf("Expected a hallway east of the hub, got %v", root.PossibleActions())
	}
	middle := root.TakeAction(grow)

	var join *Action
	for _, a := range middle.PossibleActions() {
		if a.IsReuse() && a.join && a.Target == target.ID() {
			join = a
		}
	}
	if join == nil {
		t.Fatalf("Expected a join of #%d, got %v", target.ID(), middle.PossibleActions())
	}
	joined := middle.TakeAction(join)
	if joined.ID() != target.ID() || joined.Committed() {
		t.Fatalf("Expected a view of #%d, got %v", target.ID(), joined)
	}
	return []*Node{root, middle, joined}
}

func TestJoinCommit(t *testing.T) {
	s, hub, target := joinSetup(t)
	route := joinPath(t, s, hub, target)

	committed, added, err := s.commit("join", route)
	if err != nil {
		t.Fatal(err)
	}
	if added != 1 || s.Graph().Len() != 3 {
		t.Errorf("Expected only the middle hallway to be added, got %d (graph %d)", added, s.Graph().Len())
	}
	if len(committed) != 3 || committed[0] != hub || committed[2] != target {
		t.Fatalf("Expected the route to map to the anchored nodes, got %v", committed)
	}
	middle := committed[1]

	n := len(committed)
	if edges := len(s.Graph().Edges()); edges != n-1 {
		t.Errorf("Expected %d edges, got %d", n-1, edges)
	}
	last := s.Graph().Edges()[n-2]
	if last.From != middle.ID() || last.To != target.ID() {
		t.Errorf("Expected the join edge #%d -> #%d, got %+v", middle.ID(), target.ID(), last)
	}

	if !target.IsOccupied(target.rear) {
		t.Error("The joined node must reserve its rear slot")
	}
	if got := target.Link(target.rear.Slot()); got != middle.ID() {
		t.Errorf("Rear slot of the joined node links to #%d, want #%d", got, middle.ID())
	}
	incoming, _ := route[2].Incoming()
	if got := middle.Link(incoming.Slot()); got != target.ID() {
		t.Errorf("Forward slot links to #%d, want #%d", got, target.ID())
	}

	reserved := 0
	for _, node := range committed {
		reserved += len(node.Slots())
	}
	if reserved != 2*(n-1) {
		t.Errorf("Expected %d reserved slots, got %d", 2*(n-1), reserved)
	}
	assertNoCollisions(t, s.Graph())

	// The rear slot is taken now, the same spot can't be joined twice
	policy := s.phasePolicy(Phase{Policy: Policy{AllowReuse: true}})
	for _, a := range middle.view(middle.parent, policy, 0, s.totals).PossibleActions() {
		if a.join {
			t.Errorf("Unexpected second join: %v", a)
		}
	}
}

func TestPathCollisionsPastJoin(t *testing.T) {
	s, hub, target := joinSetup(t)
	joined := joinPath(t, s, hub, target)[2]

	// Same spot as the uncommitted hallway before the join
	overlapping, err := s.site.catalog.Resolve("hallway", 0, geom.V3(55, 0, 50), "")
	if err != nil {
		t.Fatal(err)
	}
	if cost := joined.evaluateCandidate(overlapping); cost != 0 {
		t.Errorf("A candidate overlapping the path before the join must be rejected, got cost %v", cost)
	}

	free, err := s.site.catalog.Resolve("hallway", 0, geom.V3(100, 0, 100), "")
	if err != nil {
		t.Fatal(err)
	}
	if cost := joined.evaluateCandidate(free); cost <= 0 {
		t.Errorf("Expected a free spot to be accepted, got cost %v", cost)
	}
}

func TestFailedPhaseKeepsPolicy(t *testing.T) {
	s := newTestSettlement(t, bigArea(), 22)
	reject := func(structure.Structure, *Node) bool { return false }

	_, err := s.RunPhase(context.Background(), Phase{Name: "orphan", Policy: Policy{Filter: reject}})
	if !errors.Is(err, ErrNoOpenSlot) {
		t.Fatalf("Expected ErrNoOpenSlot, got %v", err)
	}
	if p := s.phasePolicy(Phase{}); p.Filter != nil || p.generation != 0 {
		t.Error("A failed phase must not pass its filter on")
	}

	if _, err := s.Anchor("hub", 0, geom.V3(78, 0, 78)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RunPhase(context.Background(), Phase{Name: "closed", Policy: Policy{Filter: reject},
		Limits: mcts.DefaultLimits().SetCycles(10)}); err != nil {
		t.Fatal(err)
	}
	if p := s.phasePolicy(Phase{}); p.Filter == nil || p.generation != 1 {
		t.Error("A committed phase passes its filter on")
	}
}

func TestPhasePolicyInheritance(t *testing.T) {
	s := newTestSettlement(t, bigArea(), 13)
	reject := func(structure.Structure, *Node) bool { return false }

	p1 := s.phasePolicy(Phase{})
	s.inherit(p1)
	p2 := s.phasePolicy(Phase{Policy: Policy{Filter: reject}})
	s.inherit(p2)
	p3 := s.phasePolicy(Phase{})

	if p1.Keeper == nil {
		t.Error("Expected the default book-keeper")
	}
	if p1.generation == p2.generation {
		t.Error("A new filter must change the generation")
	}
	if p3.Filter == nil || p3.generation != p2.generation {
		t.Error("A phase without a filter keeps the previous one and its generation")
	}
}

func TestBookkeepingAcrossPhases(t *testing.T) {
	s := newTestSettlement(t, bigArea(), 14)
	if _, err := s.Anchor("hub", 0, geom.V3(78, 0, 78)); err != nil {
		t.Fatal(err)
	}

	const workers = 4
	phase := Phase{
		Name: "rooms",
		Policy: Policy{
			Reward:    RequirementReward(WorkerSize, workers, 1),
			Terminate: RequirementMet(WorkerSize, workers),
		},
		Limits: mcts.DefaultLimits().SetCycles(300),
	}
	r, err := s.RunPhase(context.Background(), phase)
	if err != nil {
		t.Fatal(err)
	}

	last := r.Nodes[len(r.Nodes)-1]
	if s.Totals() != last.Book() {
		t.Errorf("Totals %v do not match the last node %v", s.Totals(), last.Book())
	}
	rooms := 0
	for _, n := range s.Graph().Nodes() {
		if n.Structure().Name() == "room" {
			rooms++
		}
	}
	if got := s.Totals().Get(WorkerSize); got != float64(2*rooms) {
		t.Errorf("Expected %d workers from %d rooms, got %v", 2*rooms, rooms, got)
	}
}

// Records the hook calls in order
type hookWorld struct {
	calls []string
}

func (w *hookWorld) PlaceStructure(name string, pos geom.Vec3, facing int) error {
	w.calls = append(w.calls, "structure:"+name)
	return nil
}

func (w *hookWorld) PlaceBlock(pos geom.Vec3, block string) error {
	w.calls = append(w.calls, "block")
	return nil
}

func TestPlace(t *testing.T) {
	s := newTestSettlement(t, bigArea(), 15)
	if _, err := s.Anchor("hub", 0, geom.V3(78, 0, 78)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RunPhase(context.Background(), towards(geom.V3(10, 2, 78), 100)); err != nil {
		t.Fatal(err)
	}

	world := &hookWorld{}
	if err := s.Place(world); err != nil {
		t.Fatal(err)
	}
	if len(world.calls) != s.Graph().Len() {
		t.Errorf("Expected one placement per node, got %v", world.calls)
	}
	for i, n := range s.Graph().Nodes() {
		if want := "structure:" + n.Structure().Name(); world.calls[i] != want {
			t.Errorf("Call %d = %s, want %s", i, world.calls[i], want)
		}
	}
}

func TestSnapshot(t *testing.T) {
	s := newTestSettlement(t, bigArea(), 16)
	if _, err := s.Anchor("hub", 0, geom.V3(78, 0, 78)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RunPhase(context.Background(), towards(geom.V3(78, 2, 150), 100)); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if snap.ID != s.ID || len(snap.Nodes) != s.Graph().Len() || len(snap.Edges) != len(s.Graph().Edges()) {
		t.Fatalf("Snapshot does not match the settlement: %+v", snap)
	}
	if snap.Nodes[0].Parent != int(NoNode) || snap.Nodes[0].Incoming != nil {
		t.Errorf("The anchor has no parent, got %+v", snap.Nodes[0])
	}
	if len(snap.Phases) != 1 || snap.Phases[0].Nodes[0] != 0 {
		t.Errorf("Expected one phase rooted at the anchor, got %+v", snap.Phases)
	}
}
