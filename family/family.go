// Copyright ©2024 The bgcscape Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package family builds the per-cutoff sparse similarity matrix from
// dispatcher rows and runs affinity propagation to assign gene-cluster
// families (spec.md §4.5).
package family

import (
	"sort"

	"github.com/kortschak/bgcscape/apcluster"
	"github.com/kortschak/bgcscape/dispatch"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Assignment maps a cluster name to its 0-based family label, reindexed
// in insertion order of first-seen exemplar (spec.md §4.5 step 3).
type Assignment map[string]int

// Call runs the Family Caller for one BGC class at one distance cutoff
// over rows (dispatcher output already filtered to that class). members
// is the full working set of cluster names for the class, including any
// with no row below distance 1 (isolated singletons).
func Call(rows []dispatch.Row, members []string, cutoff float64) Assignment {
	if len(members) == 0 {
		return Assignment{}
	}
	if len(members) == 1 {
		return Assignment{members[0]: 0}
	}

	index := make(map[string]int, len(members))
	for i, m := range members {
		index[m] = i
	}

	var edges []apcluster.Edge
	for _, r := range rows {
		if r.Distance >= 1 {
			continue
		}
		i, okI := index[r.A]
		j, okJ := index[r.B]
		if !okI || !okJ {
			continue
		}
		sim := 1 - r.Distance
		if sim > 1-cutoff {
			edges = append(edges, apcluster.Edge{I: i, J: j, Sim: sim})
		}
	}

	labels := apcluster.Run(len(members), edges, apcluster.DefaultConfig())
	return reindex(members, labels)
}

// ThresholdGraph reports the number of connected components of the same
// cutoff similarity graph Call feeds to affinity propagation. It is a
// cheap sanity check on family count that doesn't depend on AP
// convergence, not a replacement for Call's result. Grounded on
// cmd/press's thresholdGraph type, which builds a
// simple.WeightedUndirectedGraph over a thresholded similarity matrix and
// reports topo.ConnectedComponents.
func ThresholdGraph(rows []dispatch.Row, members []string, cutoff float64) int {
	if len(members) == 0 {
		return 0
	}

	index := make(map[string]int64, len(members))
	g := simple.NewWeightedUndirectedGraph(1, 0)
	for i, m := range members {
		index[m] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for _, r := range rows {
		if r.Distance >= 1 {
			continue
		}
		i, okI := index[r.A]
		j, okJ := index[r.B]
		if !okI || !okJ {
			continue
		}
		if sim := 1 - r.Distance; sim > 1-cutoff {
			g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(i), T: simple.Node(j), W: sim})
		}
	}
	return len(topo.ConnectedComponents(g))
}

// reindex renumbers AP's exemplar-index labels to 0..F-1 in insertion
// order of first-seen exemplar, per spec.md §4.5 step 3.
func reindex(members []string, labels []int) Assignment {
	next := 0
	seen := make(map[int]int, len(members))
	out := make(Assignment, len(members))
	for i, m := range members {
		ex := labels[i]
		id, ok := seen[ex]
		if !ok {
			id = next
			seen[ex] = id
			next++
		}
		out[m] = id
	}
	return out
}

// Families groups an Assignment back into ordered family member lists,
// label 0..F-1.
func Families(a Assignment) [][]string {
	if len(a) == 0 {
		return nil
	}
	max := -1
	for _, label := range a {
		if label > max {
			max = label
		}
	}
	out := make([][]string, max+1)
	for name, label := range a {
		out[label] = append(out[label], name)
	}
	for _, members := range out {
		sort.Strings(members)
	}
	return out
}
