package dispatch

import (
	"context"
	"testing"

	"github.com/kortschak/bgcscape/bgcclass"
	"github.com/kortschak/bgcscape/domainstore"
	"github.com/kortschak/bgcscape/galign"
	"github.com/kortschak/bgcscape/pairalign"
	"github.com/kortschak/bgcscape/scorer"
)

func buildSmallStore(t *testing.T) *domainstore.Store {
	t.Helper()
	s := domainstore.NewStore()
	names := []string{"c1", "c2", "c3"}
	for _, n := range names {
		if err := s.AddCluster(domainstore.ClusterInput{
			Name: n, DomainList: []string{"PF1", "PF2"}, Instances: []string{n + "/1", n + "/2"},
			DCG: []int{2}, Orientation: []int8{1}, Core: []bool{false},
		}); err != nil {
			t.Fatal(err)
		}
		s.SetAlignedSequence(n+"/1", "ACGT")
		s.SetAlignedSequence(n+"/2", "ACGT")
	}
	return s
}

func TestPairsScoresEveryUnorderedPair(t *testing.T) {
	s := buildSmallStore(t)
	sc := scorer.New(s, galign.New(), nil)
	weights := map[string]bgcclass.Weights{"PKSI": bgcclass.ClassWeights[bgcclass.PKSI]}
	groups := []ClassGroup{{Class: "PKSI", Clusters: []string{"c1", "c2", "c3"}}}

	rows, err := Pairs(context.Background(), s, sc, weights, groups, Config{Cores: 2, Mode: pairalign.Global})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows for 3 clusters, got %d: %+v", len(rows), rows)
	}
}

func TestPairsFailsOnUnknownClass(t *testing.T) {
	s := buildSmallStore(t)
	sc := scorer.New(s, galign.New(), nil)
	groups := []ClassGroup{{Class: "Mystery", Clusters: []string{"c1", "c2"}}}

	_, err := Pairs(context.Background(), s, sc, nil, groups, Config{Cores: 1, Mode: pairalign.Global})
	if err == nil {
		t.Fatal("expected an error for a class with no registered weights")
	}
}

func TestPairsEmptyGroupsReturnsNil(t *testing.T) {
	s := buildSmallStore(t)
	sc := scorer.New(s, galign.New(), nil)
	rows, err := Pairs(context.Background(), s, sc, nil, nil, Config{Cores: 1})
	if err != nil || rows != nil {
		t.Fatalf("expected (nil, nil) for no groups, got (%v, %v)", rows, err)
	}
}
