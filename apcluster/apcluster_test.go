package apcluster

import "testing"

func TestRunDegenerateSizes(t *testing.T) {
	if got := Run(0, nil, DefaultConfig()); len(got) != 0 {
		t.Fatalf("Run(0) = %v, want empty", got)
	}
	if got := Run(1, nil, DefaultConfig()); len(got) != 1 || got[0] != 0 {
		t.Fatalf("Run(1) = %v, want [0]", got)
	}
}

// S6: three clusters, one strong pair and one isolated point, at a
// cutoff that keeps only the strong edge.
func TestRunSeparatesIsolatedPoint(t *testing.T) {
	edges := []Edge{{I: 0, J: 1, Sim: 0.9}}
	labels := assertValidPartition(t, 3, edges)

	if labels[0] != labels[1] {
		t.Fatalf("expected clusters 0 and 1 to share a family, got %v", labels)
	}
	if labels[2] == labels[0] {
		t.Fatalf("expected isolated cluster 2 to form its own family, got %v", labels)
	}
}

func TestRunSingleFamilyWhenAllSimilar(t *testing.T) {
	edges := []Edge{
		{I: 0, J: 1, Sim: 0.95},
		{I: 0, J: 2, Sim: 0.95},
		{I: 1, J: 2, Sim: 0.95},
	}
	labels := assertValidPartition(t, 3, edges)
	if labels[0] != labels[1] || labels[1] != labels[2] {
		t.Fatalf("expected a single family, got %v", labels)
	}
}

// assertValidPartition runs AP and checks that every label names an
// index that is itself an exemplar (labels[labels[i]] == labels[i]).
func assertValidPartition(t *testing.T, n int, edges []Edge) []int {
	t.Helper()
	labels := Run(n, edges, DefaultConfig())
	if len(labels) != n {
		t.Fatalf("expected %d labels, got %d", n, len(labels))
	}
	for i, k := range labels {
		if labels[k] != k {
			t.Fatalf("label[%d]=%d is not a self-consistent exemplar (labels[%d]=%d)", i, k, k, labels[k])
		}
	}
	return labels
}
