package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/muesli/termenv"

	"github.com/IlikeChooros/go-settlement/pkg/geom"
	"github.com/IlikeChooros/go-settlement/pkg/settlement"
)

func testSnapshot() settlement.Snapshot {
	return settlement.Snapshot{
		ID:   uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Area: geom.Rect{Size: geom.Vec2{X: 64, Z: 64}},
		Nodes: []settlement.NodeRecord{
			{ID: 0, Structure: "narrow_hub", Parent: -1},
			{ID: 1, Structure: "narrow_hallway", Parent: 0},
			{ID: 2, Structure: "narrow_hallway", Parent: 1},
			{ID: 3, Structure: "narrow_exit", Parent: 2},
		},
		Edges: []settlement.EdgeRecord{{From: 0, To: 1}, {From: 1, To: 2}, {From: 2, To: 3}},
		Phases: []settlement.PhaseRecord{
			{Name: "first", Nodes: []int{0, 1}, Added: 2, Reward: -12.5, Cycles: 100, StopReason: "Cycles"},
			{Name: "second", Nodes: []int{1, 2, 3}, Added: 2, Reward: 3, Terminal: true, Cycles: 40, StopReason: "Cycles"},
		},
		Totals: map[string]float64{"workerSize": 2, "exitSize": 1},
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	NewPrinterWithProfile(&buf, termenv.Ascii).Print(testSnapshot())
	out := buf.String()

	for _, want := range []string{
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"4 structures, 3 connections",
		"narrow_hub#0 -> narrow_hallway#1",
		"narrow_hallway#1 -> narrow_hallway#2 -> narrow_exit#3",
		"terminal",
		"stopped",
		"2  narrow_hallway",
		"workerSize       2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in the report:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("The Ascii profile must not print escape sequences")
	}
}

func TestBookkeepingRequirements(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterWithProfile(&buf, termenv.ANSI)
	p.Bookkeeping(map[string]float64{"workerSize": 2, "kitchenSize": 5}, map[string]float64{"workerSize": 4, "kitchenSize": 5})
	out := buf.String()

	if !strings.Contains(out, "2/4") || !strings.Contains(out, "5/5") {
		t.Fatalf("Expected value/requirement pairs:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	for _, line := range lines {
		switch {
		case strings.Contains(line, "2/4") && !strings.Contains(line, "\x1b[31m"):
			t.Errorf("Missing requirement should be red: %q", line)
		case strings.Contains(line, "5/5") && !strings.Contains(line, "\x1b[32m"):
			t.Errorf("Met requirement should be green: %q", line)
		}
	}
}
