package catalog

import (
	"fmt"

	"github.com/IlikeChooros/go-settlement/pkg/geom"
	"github.com/IlikeChooros/go-settlement/pkg/structure"
	"github.com/IlikeChooros/go-settlement/pkg/terrain"
)

// Piece is a template placed at a position with a facing
type Piece struct {
	entry      *entry
	connectors []structure.Connector
	facing     int
	position   geom.Vec3 // attachment point, the box is lifted from here
	oracle     terrain.Oracle
}

func (p *Piece) Name() string {
	return p.entry.Name
}

func (p *Piece) Facing() int {
	return p.facing
}

func (p *Piece) Position() geom.Vec3 {
	return p.position
}

func (p *Piece) LocalBox() geom.Box {
	s := p.entry.Size
	return geom.Box{Size: geom.V3(s[0], s[1], s[2])}
}

func (p *Piece) WorldBox() geom.Box {
	lifted := p.position.Add(geom.V3(0, p.entry.Lift, 0))
	return geom.WorldBox(lifted, p.LocalBox().Size, p.facing)
}

func (p *Piece) Connectors() []structure.Connector {
	return p.connectors
}

// The first backwards facing connector, templates without one get a plain rear slot
func (p *Piece) RearConnector() structure.Connector {
	for _, c := range p.connectors {
		if c.Facing == structure.RearFacing {
			return c
		}
	}
	return structure.NewConnector(structure.RearFacing, geom.Vec3{})
}

func (p *Piece) Evaluate() float64 {
	cost := p.entry.Cost.Base + p.entry.Cost.Extra
	if p.entry.Cost.Pillar > 0 {
		box := p.WorldBox()
		mid := box.Middle()
		d := float64(box.Offset.Y-p.oracle.HeightAt(mid.X, mid.Z)) * p.entry.Cost.Pillar
		pillar := d * d
		if pillar <= 0 {
			pillar = p.entry.Cost.PillarMin
		}
		cost += pillar
	}
	return cost
}

func (p *Piece) MayTouchSurface() bool {
	return p.entry.Surface == SurfaceAllow
}

func (p *Piece) Property(name string) float64 {
	return p.entry.Properties[name]
}

func (p *Piece) PrePlace(w structure.World) error {
	return nil
}

func (p *Piece) Place(w structure.World) error {
	if err := w.PlaceStructure(p.Name(), p.WorldBox().Offset, p.facing); err != nil {
		return fmt.Errorf("place %s: %w", p.Name(), err)
	}
	return nil
}

// Stamp the transition piece of the incoming connector and the supporting pillar
func (p *Piece) PostPlace(w structure.World, placement structure.Placement) error {
	box := p.WorldBox()

	if placement.HasIncoming && placement.Incoming.Transition != "" {
		if err := w.PlaceStructure(placement.Incoming.Transition, p.position, p.facing); err != nil {
			return fmt.Errorf("transition %s of %s: %w", placement.Incoming.Transition, p.Name(), err)
		}
	}

	if p.entry.Cost.Pillar <= 0 {
		return nil
	}
	mid := box.Middle()
	for y := p.oracle.HeightAt(mid.X, mid.Z); y < box.Offset.Y; y++ {
		if err := w.PlaceBlock(geom.V3(mid.X, y, mid.Z), p.entry.PillarBlock); err != nil {
			return fmt.Errorf("pillar of %s: %w", p.Name(), err)
		}
	}
	return nil
}

func (p *Piece) String() string {
	return fmt.Sprintf("%s@%v f=%d", p.Name(), p.position, p.facing)
}
