package settlement

import (
	"fmt"

	"github.com/IlikeChooros/go-settlement/pkg/structure"
)

// Incremental cost of walking into or joining a committed node, every
// placement costs at least 1
const reuseCost = 0.5

// Transition from one state to the next: a new placement, or a reference to a
// committed node reachable through the connector
type Action struct {
	// Connector of the acting node, the zero value for root placements
	Connector structure.Connector
	// Candidate instance, already rotated and positioned. For reuse actions
	// it's the structure of the referenced node
	Structure structure.Structure
	// Referenced committed node, NoNode for a new placement
	Target NodeID
	// The connector is open and the target gets a new edge, otherwise the
	// connector is already linked to it
	join bool
	cost float64
}

// Identity of an action, used to recognize equivalent actions
type ActionKey struct {
	Slot      structure.Slot
	Structure string
}

func (a *Action) Cost() float64 {
	return a.cost
}

func (a *Action) IsReuse() bool {
	return a.Target != NoNode
}

func (a *Action) Key() ActionKey {
	name := ""
	if a.Structure != nil {
		name = a.Structure.Name()
	}
	return ActionKey{Slot: a.Connector.Slot(), Structure: name}
}

func (a *Action) String() string {
	if a.IsReuse() {
		return fmt.Sprintf("reuse(#%d via %v)", a.Target, a.Connector.Slot())
	}
	return fmt.Sprintf("%v via %v cost=%.2f", a.Structure, a.Connector.Slot(), a.cost)
}
