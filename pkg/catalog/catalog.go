// Package catalog turns JSON structure templates into placeable structures.
package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/IlikeChooros/go-settlement/pkg/geom"
	"github.com/IlikeChooros/go-settlement/pkg/structure"
	"github.com/IlikeChooros/go-settlement/pkg/terrain"
)

type SurfacePolicy string

const (
	// Reject placements where the ground reaches into the structure (default)
	SurfaceAvoid SurfacePolicy = "avoid"
	// Structure is meant to stand in the ground, like an exit
	SurfaceAllow SurfacePolicy = "allow"
)

const defaultPillarBlock = "minecraft:stone_bricks"

type Document struct {
	Name      string     `json:"name"`
	Templates []Template `json:"templates"`
}

type Template struct {
	Name string `json:"name"`
	Size [3]int `json:"size"`
	// Vertical shift of the box relative to the attachment point, stairs going down use -3
	Lift       int                       `json:"lift,omitempty"`
	Surface    SurfacePolicy             `json:"surface,omitempty"`
	Cost       CostModel                 `json:"cost"`
	Properties map[string]float64        `json:"properties,omitempty"`
	Connectors []ConnectorDef            `json:"connectors"`
	Variants   map[string][]ConnectorDef `json:"variants,omitempty"`
	// Block used for the supporting pillar, when the template has a pillar cost
	PillarBlock string `json:"pillarBlock,omitempty"`
}

type ConnectorDef struct {
	Facing     int      `json:"facing"`
	Offset     [3]int   `json:"offset,omitempty"`
	Next       []string `json:"next"`
	Transition string   `json:"transition,omitempty"`
}

// Cost = base + extra + pillar, where pillar = ((y - ground) * Pillar)^2,
// or PillarMin if that is not positive
type CostModel struct {
	Base      float64 `json:"base,omitempty"`
	Extra     float64 `json:"extra,omitempty"`
	Pillar    float64 `json:"pillar,omitempty"`
	PillarMin float64 `json:"pillarMin,omitempty"`
}

type Catalog struct {
	Name   string
	Digest string // sha256 of the source document

	templates map[string]*entry
	oracle    terrain.Oracle
}

type entry struct {
	Template
	connectors []structure.Connector
	variants   map[string][]structure.Connector
}

// Build a catalog out of decoded templates, the oracle is used for pillar costs
func New(name string, templates []Template, oracle terrain.Oracle) (*Catalog, error) {
	c := &Catalog{
		Name:      name,
		templates: make(map[string]*entry, len(templates)),
		oracle:    oracle,
	}

	for _, t := range templates {
		if t.Name == "" {
			return nil, fmt.Errorf("catalog %s: template without a name", name)
		}
		if _, dup := c.templates[t.Name]; dup {
			return nil, fmt.Errorf("catalog %s: duplicate template %q", name, t.Name)
		}
		if t.Size[0] <= 0 || t.Size[1] <= 0 || t.Size[2] <= 0 {
			return nil, fmt.Errorf("catalog %s: template %q: size %v must be positive", name, t.Name, t.Size)
		}
		if t.Cost.Base <= 0 {
			t.Cost.Base = 1
		}
		if t.Cost.PillarMin <= 0 {
			t.Cost.PillarMin = t.Cost.Pillar
		}
		if t.Surface == "" {
			t.Surface = SurfaceAvoid
		}
		if t.PillarBlock == "" {
			t.PillarBlock = defaultPillarBlock
		}

		e := &entry{Template: t, connectors: toConnectors(t.Connectors)}
		if len(t.Variants) > 0 {
			e.variants = make(map[string][]structure.Connector, len(t.Variants))
			for tag, defs := range t.Variants {
				e.variants[tag] = toConnectors(defs)
			}
		}
		c.templates[t.Name] = e
	}

	// Dangling names are allowed, the planner skips them, but they are worth a note
	for _, n := range c.Names() {
		for _, conn := range c.templates[n].connectors {
			for _, next := range conn.Next {
				if _, ok := c.templates[next]; !ok {
					slog.Debug("catalog references unknown structure", "catalog", name, "template", n, "next", next)
				}
			}
		}
	}
	return c, nil
}

// Validate 'data' against the catalog schema and decode it
func Parse(data []byte, oracle terrain.Oracle) (*Catalog, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	c, err := New(doc.Name, doc.Templates, oracle)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	c.Digest = hex.EncodeToString(sum[:])
	return c, nil
}

func Load(path string, oracle terrain.Oracle) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	c, err := Parse(bytes.TrimSpace(data), oracle)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) Resolve(name string, facing int, position geom.Vec3, settlementType string) (structure.Structure, error) {
	e, ok := c.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in catalog %s", structure.ErrUnknownStructure, name, c.Name)
	}

	connectors := e.connectors
	if v, ok := e.variants[settlementType]; ok && settlementType != "" {
		connectors = v
	}

	return &Piece{
		entry:      e,
		connectors: connectors,
		facing:     geom.NormalizeFacing(facing),
		position:   position,
		oracle:     c.oracle,
	}, nil
}

// Get the template with given name
func (c *Catalog) Template(name string) (Template, bool) {
	e, ok := c.templates[name]
	if !ok {
		return Template{}, false
	}
	return e.Template, true
}

// Sorted template names
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.templates))
	for n := range c.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) Len() int {
	return len(c.templates)
}

func toConnectors(defs []ConnectorDef) []structure.Connector {
	out := make([]structure.Connector, len(defs))
	for i, d := range defs {
		out[i] = structure.NewConnector(d.Facing, geom.V3(d.Offset[0], d.Offset[1], d.Offset[2]), d.Next...)
		out[i].Transition = d.Transition
	}
	return out
}
