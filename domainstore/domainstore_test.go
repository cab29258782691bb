package domainstore

import "testing"

func TestAddClusterInvariants(t *testing.T) {
	s := NewStore()
	err := s.AddCluster(ClusterInput{
		Name:        "bgc1",
		DomainList:  []string{"PF1", "PF2", "PF3"},
		Instances:   []string{"bgc1/PF1/1-10", "bgc1/PF2/11-20", "bgc1/PF3/21-30"},
		DCG:         []int{2, 1},
		Orientation: []int8{1, 1},
		Core:        []bool{true, false},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := s.Cluster("bgc1")
	if len(c.GeneTokens) != 2 {
		t.Fatalf("expected 2 gene tokens, got %d", len(c.GeneTokens))
	}
	if _, ok := c.OrderedDomainSet["PF2"]; !ok {
		t.Fatalf("expected PF2 in domain set")
	}
	if got := c.CorePositions(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("expected core positions [0], got %v", got)
	}
}

func TestAddClusterRejectsBadDCG(t *testing.T) {
	s := NewStore()
	err := s.AddCluster(ClusterInput{
		Name:        "bad",
		DomainList:  []string{"PF1", "PF2"},
		Instances:   []string{"t1", "t2"},
		DCG:         []int{1}, // sum=1, but DomainList has 2 entries
		Orientation: []int8{1},
		Core:        []bool{false},
	})
	if err == nil {
		t.Fatal("expected error for mismatched DCG sum")
	}
}

func TestGeneTokensReflectOrientation(t *testing.T) {
	s := NewStore()
	if err := s.AddCluster(ClusterInput{
		Name:        "fwd",
		DomainList:  []string{"PF1", "PF2"},
		Instances:   []string{"t1", "t2"},
		DCG:         []int{2},
		Orientation: []int8{1},
		Core:        []bool{false},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddCluster(ClusterInput{
		Name:        "rev",
		DomainList:  []string{"PF2", "PF1"},
		Instances:   []string{"t3", "t4"},
		DCG:         []int{2},
		Orientation: []int8{-1},
		Core:        []bool{false},
	}); err != nil {
		t.Fatal(err)
	}

	fwd := s.Cluster("fwd").GeneTokens[0]
	rev := s.Cluster("rev").GeneTokens[0]
	if fwd != rev {
		t.Fatalf("expected reversed gene [PF2,PF1] with orientation -1 to match forward [PF1,PF2]: got %d != %d", fwd, rev)
	}
}

func TestClusterLookupPanicsOnMiss(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for missing cluster")
		}
	}()
	NewStore().Cluster("missing")
}

func TestAlignedAndAnchor(t *testing.T) {
	s := NewStore()
	s.SetAlignedSequence("tag1", "AC-GT")
	s.SetAnchor("PF1")

	if seq, ok := s.AlignedSequence("tag1"); !ok || seq != "AC-GT" {
		t.Fatalf("unexpected aligned sequence: %q, %v", seq, ok)
	}
	if !s.IsAnchor("PF1") {
		t.Fatal("expected PF1 to be an anchor domain")
	}
	if s.IsAnchor("PF2") {
		t.Fatal("did not expect PF2 to be an anchor domain")
	}
}
