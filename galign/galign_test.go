package galign

import "testing"

func TestScoreIdentityAndMismatch(t *testing.T) {
	if s := score('W', 'W'); s != 17 {
		t.Errorf("score(W,W) = %d, want 17", s)
	}
	if s := score('A', 'A'); s != 2 {
		t.Errorf("score(A,A) = %d, want 2", s)
	}
	if s := score('X', 'X'); s != 0 {
		t.Errorf("score(X,X) (identical unknown residues) = %d, want 0", s)
	}
	if s := score('X', 'A'); s != unknownResiduePenalty {
		t.Errorf("score(X,A) = %d, want %d", s, unknownResiduePenalty)
	}
}

func TestNewBuildsSymmetricMatrix(t *testing.T) {
	a := New()
	n := len(a.nw.Matrix)
	if n == 0 {
		t.Fatal("expected non-empty substitution matrix")
	}
	for i := range a.nw.Matrix {
		if len(a.nw.Matrix[i]) != n {
			t.Fatalf("matrix row %d has length %d, want %d", i, len(a.nw.Matrix[i]), n)
		}
	}
	for i := range a.nw.Matrix {
		for j := range a.nw.Matrix[i] {
			if a.nw.Matrix[i][j] != a.nw.Matrix[j][i] {
				t.Fatalf("matrix[%d][%d] = %d != matrix[%d][%d] = %d", i, j, a.nw.Matrix[i][j], j, i, a.nw.Matrix[j][i])
			}
		}
	}
	if a.nw.GapOpen != gapOpen {
		t.Errorf("GapOpen = %d, want %d", a.nw.GapOpen, gapOpen)
	}
}
