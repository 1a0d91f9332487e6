package structure

import (
	"fmt"

	"github.com/IlikeChooros/go-settlement/pkg/geom"
)

// Rear connectors always face backwards in the structure's local frame
const RearFacing = 2

// Slot identifies a connector inside its structure's local frame. Two
// connectors occupy the same slot when their facing and offset match,
// regardless of where the structure was placed.
type Slot struct {
	Facing int       `json:"facing"`
	Offset geom.Vec3 `json:"offset"`
}

func (s Slot) String() string {
	return fmt.Sprintf("slot{f=%d, off=%v}", s.Facing, s.Offset)
}

// Attachment point of a structure
type Connector struct {
	Facing int       // quarter turns, relative to the structure
	Offset geom.Vec3 // shift applied to the attached structure, in the connector's frame
	// Catalog names allowed on the other side, in priority order
	Next []string
	// Optional decorative piece stamped when the connector is used
	Transition string
}

func NewConnector(facing int, offset geom.Vec3, next ...string) Connector {
	return Connector{
		Facing: geom.NormalizeFacing(facing),
		Offset: offset,
		Next:   next,
	}
}

// Value used for slot matching, only facing and offset take part in it
func (c Connector) Slot() Slot {
	return Slot{Facing: geom.NormalizeFacing(c.Facing), Offset: c.Offset}
}

// Whether the two connectors describe the same slot
func (c Connector) Matches(o Connector) bool {
	return c.Slot() == o.Slot()
}

func (c Connector) String() string {
	return fmt.Sprintf("Connector{f=%d, off=%v, next=%v}", c.Facing, c.Offset, c.Next)
}
