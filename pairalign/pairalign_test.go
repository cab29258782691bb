package pairalign

import (
	"testing"

	"github.com/kortschak/bgcscape/domainstore"
)

func buildCluster(t *testing.T, s *domainstore.Store, in domainstore.ClusterInput) *domainstore.Cluster {
	t.Helper()
	if err := s.AddCluster(in); err != nil {
		t.Fatalf("AddCluster(%s): %v", in.Name, err)
	}
	return s.Cluster(in.Name)
}

// tenGeneCluster builds a 10-gene single-domain-per-gene cluster with
// domain families g0..g9 and an optional core gene position.
func tenGeneCluster(t *testing.T, s *domainstore.Store, name string, corePos int, edge bool) *domainstore.Cluster {
	t.Helper()
	domains := make([]string, 10)
	instances := make([]string, 10)
	dcg := make([]int, 10)
	orient := make([]int8, 10)
	core := make([]bool, 10)
	for i := 0; i < 10; i++ {
		domains[i] = "fam" + string(rune('0'+i))
		instances[i] = name + "/inst" + string(rune('0'+i))
		dcg[i] = 1
		orient[i] = 1
	}
	if corePos >= 0 {
		core[corePos] = true
	}
	return buildCluster(t, s, domainstore.ClusterInput{
		Name: name, DomainList: domains, Instances: instances,
		DCG: dcg, Orientation: orient, Core: core, ContigEdge: edge,
	})
}

func TestGlobalModeUsesFullRange(t *testing.T) {
	s := domainstore.NewStore()
	a := tenGeneCluster(t, s, "A", -1, false)
	b := tenGeneCluster(t, s, "B", -1, false)
	sl := Align(a, b, Global)
	if sl.StartA != 0 || sl.LenA != 10 || sl.StartB != 0 || sl.LenB != 10 {
		t.Fatalf("unexpected global slice: %+v", sl)
	}
}

func TestReverseSeedDetected(t *testing.T) {
	s := domainstore.NewStore()
	aDomains := []string{"PF1", "PF2", "PF3"}
	a := buildCluster(t, s, domainstore.ClusterInput{
		Name: "A", DomainList: aDomains, Instances: []string{"a1", "a2", "a3"},
		DCG: []int{1, 1, 1}, Orientation: []int8{1, 1, 1}, Core: []bool{false, false, false},
	})
	// B is A with gene order reversed and each gene's (single) domain
	// list trivially unaffected; orientation flipped to -1 throughout.
	b := buildCluster(t, s, domainstore.ClusterInput{
		Name: "B", DomainList: []string{"PF3", "PF2", "PF1"}, Instances: []string{"b1", "b2", "b3"},
		DCG: []int{1, 1, 1}, Orientation: []int8{-1, -1, -1}, Core: []bool{false, false, false},
	})
	sl := Align(a, b, Global) // global still always computes the seed
	if !sl.SeedReversed {
		t.Fatalf("expected reversed seed, got %+v", sl)
	}
	if sl.SeedLen != 3 {
		t.Fatalf("expected full 3-gene seed, got %+v", sl)
	}
}

func TestExpansionNeverShrinksBelowSeed(t *testing.T) {
	s := domainstore.NewStore()
	a := tenGeneCluster(t, s, "A", 4, true)
	b := tenGeneCluster(t, s, "B", 4, true)

	sl := Align(a, b, LCS)
	if sl.LenA < sl.SeedLen || sl.LenB < sl.SeedLen {
		t.Fatalf("expansion shrank below seed: %+v", sl)
	}
}

func TestGateFallsBackWithoutCoreGene(t *testing.T) {
	s := domainstore.NewStore()
	a := tenGeneCluster(t, s, "A", -1, true) // no core gene anywhere
	b := tenGeneCluster(t, s, "B", -1, true)
	sl := Align(a, b, LCS)
	if sl.LenA != 10 || sl.LenB != 10 {
		t.Fatalf("expected fallback to full range without a core gene, got %+v", sl)
	}
}

func TestAutoModeSkipsWithoutContigEdge(t *testing.T) {
	s := domainstore.NewStore()
	a := tenGeneCluster(t, s, "A", 4, false)
	b := tenGeneCluster(t, s, "B", 4, false)
	sl := Align(a, b, Auto)
	if sl.LenA != 10 || sl.LenB != 10 {
		t.Fatalf("expected auto mode without contig_edge to use full range, got %+v", sl)
	}
}

// Equal-budget tie: A's own driving expansion (length 3) is strictly
// longer than B's (length 1), so the tie must resolve A-driven even
// though both sides start with the same five-token budget.
func TestExpandSideTieBreaksOnDrivingLength(t *testing.T) {
	aRem := []int32{0, 0, 1, 0, 0}
	bRem := []int32{1, 1, 1, 0, 1}

	got := expandSide(aRem, bRem, true)
	want := sideExpansion{extA: 3, extB: 5}
	if got != want {
		t.Fatalf("expandSide tie-break = %+v, want %+v", got, want)
	}
}
