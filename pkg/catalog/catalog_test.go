package catalog

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/IlikeChooros/go-settlement/pkg/geom"
	"github.com/IlikeChooros/go-settlement/pkg/structure"
	"github.com/IlikeChooros/go-settlement/pkg/terrain"
)

var testArea = geom.Rect{Size: geom.Vec2{X: 128, Z: 128}}

// Records every placement call
type recordingWorld struct {
	structures []string
	blocks     []geom.Vec3
}

func (w *recordingWorld) PlaceStructure(name string, pos geom.Vec3, facing int) error {
	w.structures = append(w.structures, fmt.Sprintf("%s@%v/%d", name, pos, facing))
	return nil
}

func (w *recordingWorld) PlaceBlock(pos geom.Vec3, block string) error {
	w.blocks = append(w.blocks, pos)
	return nil
}

func TestBuiltinCatalogs(t *testing.T) {
	oracle := terrain.Flat(testArea, 0)
	names := BuiltinNames()
	if len(names) < 2 {
		t.Fatalf("Expected at least 2 builtin catalogs, got %v", names)
	}

	for _, name := range names {
		c, err := Builtin(name, oracle)
		if err != nil {
			t.Fatalf("Builtin(%q): %v", name, err)
		}
		if c.Len() == 0 {
			t.Errorf("Catalog %q has no templates", name)
		}
		if len(c.Digest) != 64 {
			t.Errorf("Catalog %q digest = %q", name, c.Digest)
		}

		for _, n := range c.Names() {
			tmpl, _ := c.Template(n)
			if tmpl.Cost.Base <= 0 {
				t.Errorf("%s/%s: base cost %v should default to a positive value", name, n, tmpl.Cost.Base)
			}
		}
	}

	if _, err := Builtin("nope", oracle); err == nil {
		t.Error("Expected an error for an unknown builtin catalog")
	}
}

func TestSchemaRejectsInvalidDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"missing templates", `{"name": "x"}`},
		{"facing out of range", `{"name": "x", "templates": [{"name": "a", "size": [1,1,1], "connectors": [{"facing": 4, "next": []}]}]}`},
		{"zero size", `{"name": "x", "templates": [{"name": "a", "size": [0,1,1], "connectors": []}]}`},
		{"unknown field", `{"name": "x", "templates": [{"name": "a", "size": [1,1,1], "connectors": [], "colour": "red"}]}`},
		{"bad surface", `{"name": "x", "templates": [{"name": "a", "size": [1,1,1], "connectors": [], "surface": "float"}]}`},
		{"not json", `{"name": `},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.doc), terrain.Flat(testArea, 0)); err == nil {
				t.Errorf("Expected %s to be rejected", tc.doc)
			}
		})
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	tmpl := Template{Name: "a", Size: [3]int{1, 1, 1}}
	if _, err := New("dup", []Template{tmpl, tmpl}, terrain.Flat(testArea, 0)); err == nil {
		t.Error("Expected duplicate template names to be rejected")
	}
}

func TestResolveUnknown(t *testing.T) {
	c, err := Builtin("debug", terrain.Flat(testArea, 0))
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Resolve("does_not_exist", 0, geom.Vec3{}, "")
	if !errors.Is(err, structure.ErrUnknownStructure) {
		t.Errorf("Expected ErrUnknownStructure, got %v", err)
	}
}

func TestResolveVariants(t *testing.T) {
	c, err := Builtin("gamma", terrain.Flat(testArea, 0))
	if err != nil {
		t.Fatal(err)
	}

	plain, err := c.Resolve("narrow_short_bridge_1", 0, geom.Vec3{}, "")
	if err != nil {
		t.Fatal(err)
	}
	village, err := c.Resolve("narrow_short_bridge_1", 0, geom.Vec3{}, "villageObservationPost")
	if err != nil {
		t.Fatal(err)
	}
	other, _ := c.Resolve("narrow_short_bridge_1", 0, geom.Vec3{}, "somethingElse")

	hasNext := func(s structure.Structure, name string) bool {
		for _, conn := range s.Connectors() {
			for _, n := range conn.Next {
				if n == name {
					return true
				}
			}
		}
		return false
	}

	if hasNext(plain, "wide_kitchen") {
		t.Error("The default bridge should not lead to rooms")
	}
	if !hasNext(village, "wide_kitchen") {
		t.Error("The village variant should lead to rooms")
	}
	if hasNext(other, "wide_kitchen") {
		t.Error("Unknown settlement types should fall back to the default connectors")
	}
}

func TestRearConnector(t *testing.T) {
	oracle := terrain.Flat(testArea, 0)
	c, err := New("rear", []Template{
		{Name: "with_rear", Size: [3]int{3, 3, 3}, Connectors: []ConnectorDef{
			{Facing: 0, Next: []string{"x"}},
			{Facing: 2, Offset: [3]int{0, 1, 0}, Next: []string{"y"}},
		}},
		{Name: "without_rear", Size: [3]int{3, 3, 3}, Connectors: []ConnectorDef{
			{Facing: 1, Next: []string{"x"}},
		}},
	}, oracle)
	if err != nil {
		t.Fatal(err)
	}

	s, _ := c.Resolve("with_rear", 3, geom.Vec3{}, "")
	if rear := s.RearConnector(); rear.Slot() != (structure.Slot{Facing: 2, Offset: geom.V3(0, 1, 0)}) {
		t.Errorf("Expected the declared rear connector, got %v", rear)
	}

	s, _ = c.Resolve("without_rear", 0, geom.Vec3{}, "")
	if rear := s.RearConnector(); rear.Slot() != (structure.Slot{Facing: structure.RearFacing}) {
		t.Errorf("Expected a synthesised rear connector, got %v", rear)
	}
}

func TestEvaluate(t *testing.T) {
	templates := []Template{
		{Name: "plain", Size: [3]int{3, 3, 3}, Cost: CostModel{Extra: 2}},
		{Name: "pillared", Size: [3]int{3, 3, 3}, Cost: CostModel{Pillar: 2}},
		{Name: "tower", Size: [3]int{3, 3, 3}, Cost: CostModel{Pillar: 2, PillarMin: 9}},
	}
	c, err := New("eval", templates, terrain.Flat(testArea, 10))
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		y    int
		want float64
	}{
		{"plain", 10, 3},
		{"plain", 40, 3},
		{"pillared", 13, 1 + 36},
		// Sitting on the ground, the minimum applies
		{"pillared", 10, 1 + 2},
		{"tower", 10, 1 + 9},
		{"tower", 11, 1 + 4},
	}

	for _, tc := range cases {
		s, err := c.Resolve(tc.name, 0, geom.V3(20, tc.y, 20), "")
		if err != nil {
			t.Fatal(err)
		}
		if got := s.Evaluate(); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s at y=%d: Evaluate() = %v, want %v", tc.name, tc.y, got, tc.want)
		}
		if s.Evaluate() <= 0 {
			t.Errorf("%s: cost must be positive", tc.name)
		}
	}
}

func TestLiftedWorldBox(t *testing.T) {
	c, err := Builtin("debug", terrain.Flat(testArea, 0))
	if err != nil {
		t.Fatal(err)
	}

	s, err := c.Resolve("narrow_short_bridge_stairs_down", 0, geom.V3(10, 20, 10), "")
	if err != nil {
		t.Fatal(err)
	}
	if got := s.WorldBox().Offset.Y; got != 17 {
		t.Errorf("Expected the stairs box to start 3 blocks lower, got y=%d", got)
	}
	if s.Position() != geom.V3(10, 20, 10) {
		t.Errorf("Position should stay the attachment point, got %v", s.Position())
	}
}

func TestPostPlace(t *testing.T) {
	oracle := terrain.Flat(testArea, 4)
	c, err := Builtin("gamma", oracle)
	if err != nil {
		t.Fatal(err)
	}

	s, err := c.Resolve("medium_hub", 1, geom.V3(30, 10, 30), "")
	if err != nil {
		t.Fatal(err)
	}

	world := &recordingWorld{}
	if err := s.PrePlace(world); err != nil {
		t.Fatal(err)
	}
	if err := s.Place(world); err != nil {
		t.Fatal(err)
	}
	incoming := structure.NewConnector(1, geom.Vec3{}, "medium_hub")
	incoming.Transition = "south_west_door"
	if err := s.PostPlace(world, structure.Placement{Incoming: incoming, HasIncoming: true}); err != nil {
		t.Fatal(err)
	}

	if len(world.structures) != 2 {
		t.Fatalf("Expected the structure and its transition, got %v", world.structures)
	}
	if want := fmt.Sprintf("south_west_door@%v/1", geom.V3(30, 10, 30)); world.structures[1] != want {
		t.Errorf("Transition placed as %s, want %s", world.structures[1], want)
	}
	// Pillar from the ground (4) up to the floor (10)
	if len(world.blocks) != 6 {
		t.Errorf("Expected 6 pillar blocks, got %d", len(world.blocks))
	}
}
