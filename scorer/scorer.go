// Copyright ©2024 The bgcscape Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scorer computes the Jaccard, Domain-Sequence-Similarity and
// Adjacency-index components of a pair's composite distance, and the
// composite itself (spec.md §4.3). It is the only package that reads
// aligned/raw sequences out of the Domain Store.
package scorer

import (
	"log"
	"sync"

	"github.com/kortschak/bgcscape/bgcclass"
	"github.com/kortschak/bgcscape/domainstore"
	"github.com/kortschak/bgcscape/galign"
	"github.com/kortschak/bgcscape/hungarian"
	"github.com/kortschak/bgcscape/pairalign"
)

// Result is one PairScore (spec.md §3).
type Result struct {
	Distance     float64
	Jaccard      float64
	DSS          float64
	AI           float64
	DSSNonAnchor float64
	DSSAnchor    float64
	S            float64
	SAnchor      float64

	LCSStartA, LCSStartB, SeedLen int
	Reversed                      bool
}

// Scorer holds the shared, read-only state needed to score pairs: the
// Domain Store and a fallback aligner for domain instances that lack a
// precomputed aligned sequence. A Scorer is safe for concurrent use by
// multiple workers; the only mutable state it touches (missing-alignment
// warnings) is synchronized internally.
type Scorer struct {
	store   *domainstore.Store
	aligner *galign.Aligner
	logger  *log.Logger

	warnMu sync.Mutex
	warned map[string]bool
}

// New builds a Scorer over store. logger may be nil to suppress
// diagnostics.
func New(store *domainstore.Store, aligner *galign.Aligner, logger *log.Logger) *Scorer {
	return &Scorer{store: store, aligner: aligner, logger: logger, warned: make(map[string]bool)}
}

func (s *Scorer) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// Score computes the composite PairScore for clusters a and b over the
// given slice, using the BGC-class weights w. When the two slices share
// no domain family, Score returns distance 1 with DSSNonAnchor and
// DSSAnchor both set to 1; those two values are sentinels, not
// similarity measurements.
func (s *Scorer) Score(a, b *domainstore.Cluster, slice pairalign.Slice, w bgcclass.Weights) Result {
	if len(a.DomainList) == 0 || len(b.DomainList) == 0 {
		s.logf("scorer: empty domain list for pair (%s, %s)", a.Name, b.Name)
		return Result{Distance: 1, S: 1, SAnchor: 1}
	}

	startA, endA := a.InstanceRange(slice.StartA, slice.LenA)
	startB, endB := b.InstanceRange(slice.StartB, slice.LenB)

	setA := familySet(a.DomainList[startA:endA])
	setB := familySet(b.DomainList[startB:endB])

	if !intersects(setA, setB) {
		sNonAnchor, sAnchor := s.partitionByAnchor(a, startA, endA, b, startB, endB)
		return Result{
			Distance: 1, Jaccard: 0, DSS: 0, AI: 0,
			DSSNonAnchor: 1, DSSAnchor: 1,
			S: sNonAnchor, SAnchor: sAnchor,
		}
	}

	jaccard := jaccardIndex(setA, setB)
	ai := s.adjacencyIndex(a.DomainList[startA:endA], b.DomainList[startB:endB])
	dssNonAnchor, dssAnchor, sNonAnchor, sAnchor := s.dss(a, startA, endA, b, startB, endB)

	var dss float64
	switch {
	case sNonAnchor > 0 && sAnchor > 0:
		pNonAnchor := sNonAnchor / (sNonAnchor + sAnchor)
		pAnchor := 1 - pNonAnchor
		wAnchor := pAnchor * w.AnchorBoost / (pAnchor*w.AnchorBoost + pNonAnchor)
		wNonAnchor := 1 - wAnchor
		dss = 1 - (wNonAnchor*dssNonAnchor + wAnchor*dssAnchor)
	case sAnchor == 0:
		dss = 1 - dssNonAnchor
	default: // sNonAnchor == 0
		dss = 1 - dssAnchor
	}

	d := 1 - w.Jaccard*jaccard - w.DSS*dss - w.Adjacency*ai
	d = s.clamp(d)

	return Result{
		Distance: d, Jaccard: jaccard, DSS: dss, AI: ai,
		DSSNonAnchor: dssNonAnchor, DSSAnchor: dssAnchor,
		S: sNonAnchor, SAnchor: sAnchor,
		LCSStartA: slice.SeedStartA, LCSStartB: slice.SeedStartB,
		SeedLen: slice.SeedLen, Reversed: slice.Reversed,
	}
}

func (s *Scorer) clamp(d float64) float64 {
	switch {
	case d < -1e-6:
		s.logf("scorer: distance underflow %.6f clamped to 0", d)
		return 0
	case d < 0:
		return 0
	case d > 1:
		return 1
	default:
		return d
	}
}

func familySet(domains []string) map[string]struct{} {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		set[d] = struct{}{}
	}
	return set
}

func intersects(a, b map[string]struct{}) bool {
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for k := range small {
		if _, ok := big[k]; ok {
			return true
		}
	}
	return false
}

func jaccardIndex(a, b map[string]struct{}) float64 {
	inter, union := 0, len(a)
	for k := range b {
		if _, ok := a[k]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

// adjacencyIndex implements the Adjacency index of spec.md §4.3.
func (s *Scorer) adjacencyIndex(domainsA, domainsB []string) float64 {
	if len(domainsA) < 2 || len(domainsB) < 2 {
		return 0
	}
	pairsA := adjacentPairs(domainsA)
	pairsB := adjacentPairs(domainsB)
	inter, union := 0, len(pairsA)
	for p := range pairsB {
		if _, ok := pairsA[p]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

type famPair struct{ x, y string }

func adjacentPairs(domains []string) map[famPair]struct{} {
	pairs := make(map[famPair]struct{}, len(domains))
	for i := 0; i+1 < len(domains); i++ {
		x, y := domains[i], domains[i+1]
		if x > y {
			x, y = y, x
		}
		pairs[famPair{x, y}] = struct{}{}
	}
	return pairs
}

// partitionByAnchor sums instance counts across both slices, split by
// whether the family is an anchor domain, for the disjoint-set
// shortcut's S/S_anchor sentinels (spec.md §4.3.0).
func (s *Scorer) partitionByAnchor(a *domainstore.Cluster, startA, endA int, b *domainstore.Cluster, startB, endB int) (sNonAnchor, sAnchor float64) {
	count := func(domains []string) {
		for _, fam := range domains {
			if s.store.IsAnchor(fam) {
				sAnchor++
			} else {
				sNonAnchor++
			}
		}
	}
	count(a.DomainList[startA:endA])
	count(b.DomainList[startB:endB])
	return sNonAnchor, sAnchor
}

// dss implements the Domain-Sequence-Similarity accumulation of
// spec.md §4.3.
func (s *Scorer) dss(a *domainstore.Cluster, startA, endA int, b *domainstore.Cluster, startB, endB int) (dssNonAnchor, dssAnchor, sNonAnchor, sAnchor float64) {
	instA := instancesByFamily(a.DomainList[startA:endA], a.Instances[startA:endA])
	instB := instancesByFamily(b.DomainList[startB:endB], b.Instances[startB:endB])

	var diffNonAnchor, diffAnchor float64

	seen := make(map[string]struct{}, len(instA)+len(instB))
	for fam, tagsA := range instA {
		seen[fam] = struct{}{}
		tagsB, shared := instB[fam]
		anchor := s.store.IsAnchor(fam)
		switch {
		case !shared:
			n := float64(len(tagsA))
			if anchor {
				diffAnchor += n
				sAnchor += n
			} else {
				diffNonAnchor += n
				sNonAnchor += n
			}
		default:
			acc := s.assignmentCost(fam, tagsA, tagsB)
			diff := absFloat(float64(len(tagsA)-len(tagsB))) + acc
			sMax := float64(len(tagsA))
			if len(tagsB) > len(tagsA) {
				sMax = float64(len(tagsB))
			}
			if anchor {
				diffAnchor += diff
				sAnchor += sMax
			} else {
				diffNonAnchor += diff
				sNonAnchor += sMax
			}
		}
	}
	for fam, tagsB := range instB {
		if _, ok := seen[fam]; ok {
			continue
		}
		n := float64(len(tagsB))
		if s.store.IsAnchor(fam) {
			diffAnchor += n
			sAnchor += n
		} else {
			diffNonAnchor += n
			sNonAnchor += n
		}
	}

	if sNonAnchor > 0 {
		dssNonAnchor = diffNonAnchor / sNonAnchor
	}
	if sAnchor > 0 {
		dssAnchor = diffAnchor / sAnchor
	}
	return dssNonAnchor, dssAnchor, sNonAnchor, sAnchor
}

// assignmentCost solves the minimum-cost one-to-one instance matching
// for one shared domain family and returns its cost sum.
func (s *Scorer) assignmentCost(fam string, tagsA, tagsB []string) float64 {
	cost := make([][]float64, len(tagsA))
	for i, ta := range tagsA {
		cost[i] = make([]float64, len(tagsB))
		for j, tb := range tagsB {
			cost[i][j] = s.pairCost(fam, ta, tb)
		}
	}
	_, total := hungarian.Solve(cost)
	return total
}

// pairCost returns 1 - identity for one pair of domain instances,
// recovering via fallback global alignment when an aligned sequence is
// missing (spec.md §7 MissingAlignment).
func (s *Scorer) pairCost(fam, tagA, tagB string) float64 {
	alignedA, okA := s.store.AlignedSequence(tagA)
	alignedB, okB := s.store.AlignedSequence(tagB)
	if okA && okB {
		if len(alignedA) != len(alignedB) {
			s.logf("scorer: aligned length mismatch in family %s (%s=%d, %s=%d); using shorter prefix", fam, tagA, len(alignedA), tagB, len(alignedB))
		}
		return identityCost(alignedA, alignedB)
	}

	s.warnMu.Lock()
	if !s.warned[fam] {
		s.warned[fam] = true
		s.warnMu.Unlock()
		s.logf("scorer: missing aligned sequence for family %s; falling back to pairwise global alignment", fam)
	} else {
		s.warnMu.Unlock()
	}

	rawA, okRawA := s.store.RawSequence(tagA)
	rawB, okRawB := s.store.RawSequence(tagB)
	if !okRawA || !okRawB {
		s.logf("scorer: no raw sequence available for %s/%s; treating as maximally dissimilar", tagA, tagB)
		return 1
	}
	ga, gb, err := s.aligner.Align(rawA, rawB)
	if err != nil {
		s.logf("scorer: fallback alignment failed for %s/%s: %v", tagA, tagB, err)
		return 1
	}
	return identityCost(ga, gb)
}

// identityCost returns 1 - matches/(length-gaps) over a pair of
// same-length (ideally) aligned sequences, counting columns where both
// sides are '-' as gaps. If the lengths differ the shorter is used.
func identityCost(a, b string) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	matches, gaps := 0, 0
	for i := 0; i < n; i++ {
		ca, cb := a[i], b[i]
		if ca == '-' && cb == '-' {
			gaps++
			continue
		}
		if ca == cb {
			matches++
		}
	}
	denom := n - gaps
	if denom <= 0 {
		return 1
	}
	return 1 - float64(matches)/float64(denom)
}

func instancesByFamily(domains, instances []string) map[string][]string {
	m := make(map[string][]string)
	for i, fam := range domains {
		m[fam] = append(m[fam], instances[i])
	}
	return m
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
