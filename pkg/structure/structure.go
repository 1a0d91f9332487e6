package structure

import (
	"errors"

	"github.com/IlikeChooros/go-settlement/pkg/geom"
)

var ErrUnknownStructure = errors.New("structure: unknown catalog name")

// Placed structure instance, as seen by the search
type Structure interface {
	Name() string
	Facing() int
	Position() geom.Vec3
	// Box at the origin, with the unrotated size
	LocalBox() geom.Box
	// Box in world coordinates, rotated by the facing
	WorldBox() geom.Box
	// Connectors in the structure's local frame
	Connectors() []Connector
	// Connector leading back to the structure this one was attached to
	RearConnector() Connector
	// Strictly positive placement cost, zero means the structure cannot be placed
	Evaluate() float64
	// Whether the structure may be placed where the ground reaches into it
	MayTouchSurface() bool
	// Named custom properties, like 'workerCapacity'
	Property(name string) float64

	PrePlace(w World) error
	Place(w World) error
	PostPlace(w World, p Placement) error
}

// Catalog resolves structure names into instances
type Catalog interface {
	// Returns ErrUnknownStructure (wrapped) if the name is not in the catalog
	Resolve(name string, facing int, position geom.Vec3, settlementType string) (Structure, error)
}

// Target of the placement hooks, implemented by world editors
type World interface {
	PlaceStructure(name string, position geom.Vec3, facing int) error
	PlaceBlock(position geom.Vec3, block string) error
}

// Context given to PostPlace
type Placement struct {
	// Connector of the parent structure this one was attached through
	Incoming    Connector
	HasIncoming bool
	// Parent structure, nil for the first structure of a settlement
	Parent Structure
	Routes []string
}
