package settlement

import (
	"github.com/google/uuid"

	"github.com/IlikeChooros/go-settlement/pkg/geom"
	"github.com/IlikeChooros/go-settlement/pkg/structure"
)

// Serialisable record of a settlement, consumed by the store and the report
type Snapshot struct {
	ID     uuid.UUID          `json:"id"`
	Type   string             `json:"type,omitempty"`
	Area   geom.Rect          `json:"area"`
	Nodes  []NodeRecord       `json:"nodes"`
	Edges  []EdgeRecord       `json:"edges"`
	Phases []PhaseRecord      `json:"phases"`
	Totals map[string]float64 `json:"totals"`
}

type NodeRecord struct {
	ID        int                `json:"id"`
	Structure string             `json:"structure"`
	Facing    int                `json:"facing"`
	Position  geom.Vec3          `json:"position"`
	Box       geom.Box           `json:"box"`
	Parent    int                `json:"parent"`
	Incoming  *structure.Slot    `json:"incoming,omitempty"`
	Cost      float64            `json:"cost"`
	Routes    []string           `json:"routes"`
	Book      map[string]float64 `json:"book"`
}

type EdgeRecord struct {
	From int            `json:"from"`
	To   int            `json:"to"`
	Slot structure.Slot `json:"slot"`
}

type PhaseRecord struct {
	Name       string  `json:"name"`
	Nodes      []int   `json:"nodes"`
	Added      int     `json:"added"`
	Reward     float64 `json:"reward"`
	Terminal   bool    `json:"terminal"`
	Cycles     int     `json:"cycles"`
	StopReason string  `json:"stopReason"`
}

func (s *Settlement) Snapshot() Snapshot {
	graph := s.site.graph
	snap := Snapshot{
		ID:     s.ID,
		Type:   s.site.settlementType,
		Area:   s.site.oracle.BuildArea(),
		Nodes:  make([]NodeRecord, 0, graph.Len()),
		Edges:  make([]EdgeRecord, 0, len(graph.Edges())),
		Phases: make([]PhaseRecord, 0, len(s.phases)),
		Totals: s.totals.Map(),
	}

	for _, n := range graph.Nodes() {
		rec := NodeRecord{
			ID:        int(n.id),
			Structure: n.structure.Name(),
			Facing:    n.structure.Facing(),
			Position:  n.structure.Position(),
			Box:       n.structure.WorldBox(),
			Parent:    int(NoNode),
			Cost:      n.cost,
			Routes:    n.routes,
			Book:      n.book.Map(),
		}
		if n.parent != nil {
			rec.Parent = int(n.parent.id)
		}
		if n.hasIncoming {
			slot := n.incoming.Slot()
			rec.Incoming = &slot
		}
		snap.Nodes = append(snap.Nodes, rec)
	}

	for _, e := range graph.Edges() {
		snap.Edges = append(snap.Edges, EdgeRecord{From: int(e.From), To: int(e.To), Slot: e.Slot})
	}

	for _, p := range s.phases {
		rec := PhaseRecord{
			Name:       p.Name,
			Nodes:      make([]int, len(p.Nodes)),
			Added:      p.Added,
			Reward:     p.Reward,
			Terminal:   p.Terminal,
			Cycles:     p.Cycles,
			StopReason: p.StopReason.String(),
		}
		for i, n := range p.Nodes {
			rec.Nodes[i] = int(n.id)
		}
		snap.Phases = append(snap.Phases, rec)
	}
	return snap
}
