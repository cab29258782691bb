// Copyright ©2024 The bgcscape Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clan runs the optional second affinity-propagation pass over
// a family-vs-family similarity matrix to group families into clans
// (spec.md §4.6).
package clan

import (
	"github.com/kortschak/bgcscape/apcluster"
	"github.com/kortschak/bgcscape/dispatch"
	"github.com/kortschak/bgcscape/family"
)

// Assignment maps a family label to its clan label.
type Assignment map[int]int

// Call builds the family-vs-family similarity matrix from rows and
// assign, then runs affinity propagation at clanCutoff (the
// clan_distance_cutoff of spec.md §4.6, default 0.8).
//
// For families I, J, the similarity is the mean over members i of I of
// (mean over members j of J of the pairwise cluster similarity,
// absent pairs counting as 0), itself averaged with one prepended 0 —
// i.e. divided by |I|+1. This matches the reference implementation and
// damps single-pair coincidences; see DESIGN.md.
func Call(rows []dispatch.Row, assign family.Assignment, clanCutoff float64) Assignment {
	fams := family.Families(assign)
	F := len(fams)
	if F == 0 {
		return Assignment{}
	}
	if F == 1 {
		return Assignment{0: 0}
	}

	sim := buildSimLookup(rows)

	var edges []apcluster.Edge
	for i := 0; i < F; i++ {
		for j := i + 1; j < F; j++ {
			s := familySim(fams[i], fams[j], sim)
			if s > 1-clanCutoff {
				edges = append(edges, apcluster.Edge{I: i, J: j, Sim: s})
			}
		}
	}

	labels := apcluster.Run(F, edges, apcluster.DefaultConfig())
	return reindex(labels)
}

func reindex(labels []int) Assignment {
	next := 0
	seen := make(map[int]int, len(labels))
	out := make(Assignment, len(labels))
	for i, ex := range labels {
		id, ok := seen[ex]
		if !ok {
			id = next
			seen[ex] = id
			next++
		}
		out[i] = id
	}
	return out
}

// familySim computes the §4.6 family-vs-family similarity between two
// disjoint cluster name sets.
func familySim(membersI, membersJ []string, sim func(a, b string) float64) float64 {
	var sum float64
	for _, i := range membersI {
		var rowSum float64
		for _, j := range membersJ {
			rowSum += sim(i, j)
		}
		sum += rowSum / float64(len(membersJ))
	}
	return sum / float64(len(membersI)+1)
}

type pairKey struct{ a, b string }

func buildSimLookup(rows []dispatch.Row) func(a, b string) float64 {
	m := make(map[pairKey]float64, len(rows))
	for _, r := range rows {
		if r.Distance >= 1 {
			continue
		}
		s := 1 - r.Distance
		m[pairKey{r.A, r.B}] = s
		m[pairKey{r.B, r.A}] = s
	}
	return func(a, b string) float64 {
		return m[pairKey{a, b}]
	}
}
