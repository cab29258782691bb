// Copyright ©2024 The bgcscape Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package domainstore holds the per-cluster domain tables that back pair
// alignment and scoring. A Store is built once from parsed input and is
// read-only for the remainder of a run: workers hold a pointer to the same
// Store and never mutate it.
package domainstore

import (
	"fmt"
	"sync"
)

// DomainInstance identifies one hit of a domain family inside one gene of
// one cluster. Tag is the stable label, unique within the cluster, used to
// key aligned and raw sequences.
type DomainInstance struct {
	Cluster string
	Family  string
	Tag     string
}

// ClusterInput is the caller-supplied description of one cluster, as
// parsed from the domain table (see package netio). DomainList,
// Instances and the gene arrays obey the invariants of spec.md §3:
// sum(DCG) == len(DomainList), and len(Orientation) == len(DCG).
type ClusterInput struct {
	Name        string
	DomainList  []string // domain family id per instance, in gene order
	Instances   []string // instance tag per entry, parallel to DomainList
	DCG         []int    // domain count per gene
	Orientation []int8   // +1 or -1 per gene
	Core        []bool   // core-biosynthetic flag per gene
	Class       string
	ContigEdge  bool
	Group       string // optional source-collection label, e.g. "MIBiG"; may be empty
}

// Cluster is the immutable, pre-computed view of one ClusterInput that the
// Pair Aligner and Scorer read from. All fields are built once and never
// mutated afterwards.
type Cluster struct {
	Name        string
	DomainList  []string
	Instances   []string
	DCG         []int
	Orientation []int8
	Core        []bool
	Class       string
	ContigEdge  bool
	Group       string

	// OrderedDomainSet is the cached set of distinct domain families
	// present anywhere in DomainList.
	OrderedDomainSet map[string]struct{}

	// InstancesByFamily maps a domain family id to the ordered list of
	// instance tags for that family, in cluster (gene) order.
	InstancesByFamily map[string][]string

	// GeneTokens is one opaque integer per gene: the domain-family
	// content of that gene, concatenated in 5'->3' order (reversed
	// within the gene when Orientation[g] == -1) and interned to a
	// small integer so that seeding (package pairalign) works over
	// integer slices rather than strings (spec.md §9).
	GeneTokens []int32
}

// CorePositions returns the 0-based gene indices flagged core-biosynthetic.
func (c *Cluster) CorePositions() []int {
	var pos []int
	for i, v := range c.Core {
		if v {
			pos = append(pos, i)
		}
	}
	return pos
}

// InstanceRange returns the half-open domain-instance index range
// covered by the gene range [startGene, startGene+numGenes), usable to
// slice DomainList/Instances directly.
func (c *Cluster) InstanceRange(startGene, numGenes int) (start, end int) {
	for g := 0; g < startGene; g++ {
		start += c.DCG[g]
	}
	end = start
	for g := startGene; g < startGene+numGenes; g++ {
		end += c.DCG[g]
	}
	return start, end
}

// Store owns all per-cluster arrays and the aligned/raw sequence tables
// for the lifetime of a run. It is built once by AddCluster/SetAligned*
// calls and is safe for concurrent read-only use once the last of those
// calls has returned.
type Store struct {
	clusters map[string]*Cluster
	aligned  map[string]string
	raw      map[string]string
	anchors  map[string]struct{}

	interner   map[string]int32
	internNext int32
	internMu   sync.Mutex
}

// NewStore returns an empty Store ready to accept clusters.
func NewStore() *Store {
	return &Store{
		clusters: make(map[string]*Cluster),
		aligned:  make(map[string]string),
		raw:      make(map[string]string),
		anchors:  make(map[string]struct{}),
		interner: make(map[string]int32),
	}
}

// intern returns a stable small-integer token for s, allocating one if s
// has not been seen before. Called only during construction, so the
// locking here is a safety net rather than a hot-path concern.
func (s *Store) intern(str string) int32 {
	s.internMu.Lock()
	defer s.internMu.Unlock()
	if id, ok := s.interner[str]; ok {
		return id
	}
	id := s.internNext
	s.internNext++
	s.interner[str] = id
	return id
}

// AddCluster validates in and builds the immutable Cluster view for it,
// including the cached domain set, per-family instance lists and the
// interned gene-token sequence used by package pairalign.
func (s *Store) AddCluster(in ClusterInput) error {
	if len(in.Instances) != len(in.DomainList) {
		return fmt.Errorf("domainstore: %s: instance tags (%d) != domain list length (%d)", in.Name, len(in.Instances), len(in.DomainList))
	}
	if len(in.Orientation) != len(in.DCG) {
		return fmt.Errorf("domainstore: %s: orientation length (%d) != gene count (%d)", in.Name, len(in.Orientation), len(in.DCG))
	}
	if len(in.Core) != len(in.DCG) {
		return fmt.Errorf("domainstore: %s: core flags length (%d) != gene count (%d)", in.Name, len(in.Core), len(in.DCG))
	}
	var total int
	for _, n := range in.DCG {
		total += n
	}
	if total != len(in.DomainList) {
		return fmt.Errorf("domainstore: %s: sum(DCG)=%d != len(DomainList)=%d", in.Name, total, len(in.DomainList))
	}

	set := make(map[string]struct{})
	byFamily := make(map[string][]string)
	for i, fam := range in.DomainList {
		set[fam] = struct{}{}
		byFamily[fam] = append(byFamily[fam], in.Instances[i])
	}

	tokens := make([]int32, len(in.DCG))
	start := 0
	for g, n := range in.DCG {
		var b []byte
		if in.Orientation[g] >= 0 {
			for _, fam := range in.DomainList[start : start+n] {
				b = append(b, []byte(fam)...)
				b = append(b, 0)
			}
		} else {
			for i := start + n - 1; i >= start; i-- {
				b = append(b, []byte(in.DomainList[i])...)
				b = append(b, 0)
			}
		}
		tokens[g] = s.intern(string(b))
		start += n
	}

	s.clusters[in.Name] = &Cluster{
		Name:              in.Name,
		DomainList:        in.DomainList,
		Instances:         in.Instances,
		DCG:               in.DCG,
		Orientation:       in.Orientation,
		Core:              in.Core,
		Class:             in.Class,
		ContigEdge:        in.ContigEdge,
		Group:             in.Group,
		OrderedDomainSet:  set,
		InstancesByFamily: byFamily,
		GeneTokens:        tokens,
	}
	return nil
}

// SetAlignedSequence records the gap-padded aligned sequence for a domain
// instance tag.
func (s *Store) SetAlignedSequence(tag, seq string) {
	s.aligned[tag] = seq
}

// SetRawSequence records the unaligned residue sequence for a domain
// instance tag, used for the MissingAlignment fallback (spec.md §7).
func (s *Store) SetRawSequence(tag, seq string) {
	s.raw[tag] = seq
}

// SetAnchor flags a domain family id as an anchor domain.
func (s *Store) SetAnchor(family string) {
	s.anchors[family] = struct{}{}
}

// Cluster returns the named cluster. Looking up an absent cluster is a
// programming error: the Domain Store is always built from the same
// cluster set that pair enumeration iterates over, so a miss means the
// caller passed an index that was never registered.
func (s *Store) Cluster(name string) *Cluster {
	c, ok := s.clusters[name]
	if !ok {
		panic(fmt.Sprintf("domainstore: no such cluster: %q", name))
	}
	return c
}

// AlignedSequence returns the aligned sequence for a domain instance tag.
func (s *Store) AlignedSequence(tag string) (string, bool) {
	seq, ok := s.aligned[tag]
	return seq, ok
}

// RawSequence returns the raw (unaligned) sequence for a domain instance
// tag, if known.
func (s *Store) RawSequence(tag string) (string, bool) {
	seq, ok := s.raw[tag]
	return seq, ok
}

// IsAnchor reports whether family is flagged as an anchor domain.
func (s *Store) IsAnchor(family string) bool {
	_, ok := s.anchors[family]
	return ok
}

// Len returns the number of clusters registered in the store.
func (s *Store) Len() int {
	return len(s.clusters)
}
