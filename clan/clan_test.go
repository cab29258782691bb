package clan

import (
	"testing"

	"github.com/kortschak/bgcscape/dispatch"
	"github.com/kortschak/bgcscape/family"
	"github.com/kortschak/bgcscape/scorer"
)

func row(a, b string, dist float64) dispatch.Row {
	return dispatch.Row{A: a, B: b, Result: scorer.Result{Distance: dist}}
}

// Two families of two clusters each, with uniform 0.9 cross similarity,
// give fam_sim = ((0.9+0.9)/2 + (0.9+0.9)/2) / (2+1) = 0.6. A loose
// cutoff merges them into one clan; a tight one keeps them apart.
func TestCallMergesCloseFamilies(t *testing.T) {
	assign := family.Assignment{"c1": 0, "c2": 0, "c3": 1, "c4": 1}
	rows := []dispatch.Row{
		row("c1", "c3", 0.1), row("c1", "c4", 0.1),
		row("c2", "c3", 0.1), row("c2", "c4", 0.1),
	}

	loose := Call(rows, assign, 0.8)
	if loose[0] != loose[1] {
		t.Fatalf("expected families merged into one clan at loose cutoff: %v", loose)
	}

	tight := Call(rows, assign, 0.39)
	if tight[0] == tight[1] {
		t.Fatalf("expected families kept separate at tight cutoff: %v", tight)
	}
}

func TestCallIsolatedFamilyStaysSeparate(t *testing.T) {
	assign := family.Assignment{"c1": 0, "c2": 0, "c3": 1, "c4": 1, "c5": 2}
	rows := []dispatch.Row{
		row("c1", "c3", 0.1), row("c1", "c4", 0.1),
		row("c2", "c3", 0.1), row("c2", "c4", 0.1),
	}

	out := Call(rows, assign, 0.8)
	if out[2] == out[0] || out[2] == out[1] {
		t.Fatalf("expected the isolated family to stay in its own clan: %v", out)
	}
}

func TestCallDegenerateSizes(t *testing.T) {
	if c := Call(nil, family.Assignment{}, 0.8); len(c) != 0 {
		t.Fatalf("expected no clans for no families, got %v", c)
	}
	single := family.Assignment{"c1": 0, "c2": 0}
	c := Call(nil, single, 0.8)
	if c[0] != 0 {
		t.Fatalf("expected the sole family to form one clan, got %v", c)
	}
}
