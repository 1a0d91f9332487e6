package settlement

import (
	"errors"
	"log/slog"
	"math/rand"

	"github.com/zyedidia/generic/mapset"

	"github.com/IlikeChooros/go-settlement/pkg/geom"
	"github.com/IlikeChooros/go-settlement/pkg/structure"
	"github.com/IlikeChooros/go-settlement/pkg/terrain"
)

// Collaborators shared by every node of one settlement
type site struct {
	catalog        structure.Catalog
	oracle         terrain.Oracle
	graph          *Graph
	rng            *rand.Rand
	settlementType string
	rootNames      []string
	// Unknown names already reported
	missing mapset.Set[string]
}

// Resolve a candidate, lookup failures turn into 'no candidate'
func (s *site) resolve(name string, facing int, position geom.Vec3, from string) (structure.Structure, bool) {
	st, err := s.catalog.Resolve(name, facing, position, s.settlementType)
	if err == nil {
		return st, true
	}

	if errors.Is(err, structure.ErrUnknownStructure) {
		if !s.missing.Has(name) {
			s.missing.Put(name)
			slog.Warn("connector references unknown structure", "structure", name, "from", from)
		}
	} else {
		slog.Debug("candidate lookup failed", "structure", name, "from", from, "error", err)
	}
	return nil, false
}
