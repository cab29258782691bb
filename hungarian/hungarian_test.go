package hungarian

import "testing"

func TestSolveSquare(t *testing.T) {
	cost := [][]float64{
		{1, 2, 3},
		{2, 4, 6},
		{3, 6, 9},
	}
	assign, total := Solve(cost)
	if total != 10 {
		t.Fatalf("total = %v, want 10", total)
	}
	want := []int{2, 1, 0}
	for i, c := range want {
		if assign[i] != c {
			t.Errorf("assign[%d] = %d, want %d", i, assign[i], c)
		}
	}
}

func TestSolveRectangularFewerRows(t *testing.T) {
	// 2 rows, 3 cols: every row matched, one column unused.
	cost := [][]float64{
		{4, 1, 3},
		{2, 0, 5},
	}
	assign, total := Solve(cost)
	if len(assign) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(assign))
	}
	if total != 3 {
		t.Fatalf("total = %v, want 3", total)
	}
	if assign[0] == assign[1] {
		t.Fatalf("rows assigned to same column: %v", assign)
	}
}

func TestSolveRectangularFewerCols(t *testing.T) {
	// 3 rows, 2 cols: transposed path, one row left unmatched (-1).
	cost := [][]float64{
		{4, 2},
		{1, 0},
		{3, 5},
	}
	assign, total := Solve(cost)
	if len(assign) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(assign))
	}
	unmatched := 0
	seenCols := map[int]bool{}
	for _, c := range assign {
		if c == -1 {
			unmatched++
			continue
		}
		if seenCols[c] {
			t.Fatalf("column %d used twice in %v", c, assign)
		}
		seenCols[c] = true
	}
	if unmatched != 1 {
		t.Fatalf("expected exactly 1 unmatched row, got %d in %v", unmatched, assign)
	}
	// Best pairing is row1->col1 (0) and row0->col0 (4), total 4; or
	// row1->col1(0), row2->col0(3) = 3, which is cheaper.
	if total != 3 {
		t.Fatalf("total = %v, want 3", total)
	}
}

func TestSolveEmpty(t *testing.T) {
	assign, total := Solve(nil)
	if assign != nil || total != 0 {
		t.Fatalf("expected zero value for empty input, got %v, %v", assign, total)
	}
}
