package family

import (
	"testing"

	"github.com/kortschak/bgcscape/dispatch"
	"github.com/kortschak/bgcscape/scorer"
)

func row(a, b string, dist float64) dispatch.Row {
	return dispatch.Row{A: a, B: b, Class: "PKSI", Result: scorer.Result{Distance: dist}}
}

// S6: d(1,2)=0.1, d(1,3)=0.9, d(2,3)=0.9; cutoff=0.3 -> {1,2},{3};
// cutoff=0.95 -> one family.
func TestFamilyCallerScenarioS6(t *testing.T) {
	rows := []dispatch.Row{
		row("c1", "c2", 0.1),
		row("c1", "c3", 0.9),
		row("c2", "c3", 0.9),
	}
	members := []string{"c1", "c2", "c3"}

	low := Call(rows, members, 0.3)
	if low["c1"] != low["c2"] {
		t.Fatalf("expected c1,c2 in the same family at cutoff 0.3: %v", low)
	}
	if low["c3"] == low["c1"] {
		t.Fatalf("expected c3 separate at cutoff 0.3: %v", low)
	}

	high := Call(rows, members, 0.95)
	if high["c1"] != high["c2"] || high["c2"] != high["c3"] {
		t.Fatalf("expected a single family at cutoff 0.95: %v", high)
	}
}

func TestFamilyPartitionCoversAllMembers(t *testing.T) {
	members := []string{"a", "b", "c", "d"}
	rows := []dispatch.Row{row("a", "b", 0.2)}
	assign := Call(rows, members, 0.5)
	if len(assign) != len(members) {
		t.Fatalf("expected every member assigned, got %v", assign)
	}
	fams := Families(assign)
	total := 0
	for _, f := range fams {
		total += len(f)
	}
	if total != len(members) {
		t.Fatalf("families do not partition all members: %v", fams)
	}
}

func TestThresholdGraphComponentsMatchFamilyCount(t *testing.T) {
	rows := []dispatch.Row{
		row("c1", "c2", 0.1),
		row("c1", "c3", 0.9),
		row("c2", "c3", 0.9),
	}
	members := []string{"c1", "c2", "c3"}

	if n := ThresholdGraph(rows, members, 0.3); n != 2 {
		t.Fatalf("expected 2 components ({c1,c2},{c3}) at cutoff 0.3, got %d", n)
	}
	if n := ThresholdGraph(rows, members, 0.95); n != 1 {
		t.Fatalf("expected 1 component at cutoff 0.95, got %d", n)
	}
}

func TestThresholdGraphEmpty(t *testing.T) {
	if n := ThresholdGraph(nil, nil, 0.5); n != 0 {
		t.Fatalf("expected 0 components for no members, got %d", n)
	}
}

func TestFamilyDegenerateSizes(t *testing.T) {
	if a := Call(nil, nil, 0.5); len(a) != 0 {
		t.Fatalf("expected empty assignment for no members, got %v", a)
	}
	a := Call(nil, []string{"solo"}, 0.5)
	if a["solo"] != 0 {
		t.Fatalf("expected single cluster to be family 0, got %v", a)
	}
}
