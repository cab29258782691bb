// Copyright ©2024 The bgcscape Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hungarian solves the rectangular minimum-cost linear assignment
// problem with the Kuhn-Munkres algorithm in O(n^2*m) time. It backs the
// Domain-Sequence-Similarity instance matching of spec.md §4.4, for which
// no library in the dependency pack offers an assignment solver.
package hungarian

import "math"

// Solve finds a minimum-cost assignment of rows to columns of cost, a
// dense rows x cols matrix (rows may be less than, equal to, or greater
// than cols; cost must be non-empty and rectangular).
//
// It returns assignment, indexed by row, giving the column matched to
// that row, or -1 if rows > cols and that row went unmatched, and total,
// the sum of matched cell costs. Every column is used at most once, and
// min(rows, cols) rows are matched.
func Solve(cost [][]float64) (assignment []int, total float64) {
	if len(cost) == 0 || len(cost[0]) == 0 {
		return nil, 0
	}

	origRows := len(cost)
	origCols := len(cost[0])
	a := cost
	transposed := false
	if origRows > origCols {
		a = transpose(cost)
		transposed = true
	}

	// 1-indexed Jonker-Volgenant shortest augmenting path formulation,
	// rows <= cols required here.
	n := len(a) + 1
	m := len(a[0]) + 1
	u := make([]float64, n)
	v := make([]float64, m)
	p := make([]int, m)
	way := make([]int, m)

	for i := 1; i < n; i++ {
		p[0] = i
		j0 := 0
		dist := make([]float64, m)
		for j := range dist {
			dist[j] = math.Inf(1)
		}
		used := make([]bool, m)

		for {
			used[j0] = true
			i0 := p[j0]
			delta := math.Inf(1)
			j1 := -1
			for j := 1; j < m; j++ {
				if used[j] {
					continue
				}
				cur := a[i0-1][j-1] - u[i0] - v[j]
				if cur < dist[j] {
					dist[j] = cur
					way[j] = j0
				}
				if dist[j] < delta {
					delta = dist[j]
					j1 = j
				}
			}
			for j := 0; j < m; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					dist[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	colOfNewRow := make([]int, len(a))
	for j := 1; j < m; j++ {
		if p[j] != 0 {
			colOfNewRow[p[j]-1] = j - 1
		}
	}
	total = -v[0]

	if !transposed {
		return colOfNewRow, total
	}

	assignment = make([]int, origRows)
	for i := range assignment {
		assignment[i] = -1
	}
	for newRow, origRow := range colOfNewRow {
		// a was transposed: new-row index is an original column, its
		// match is an original row.
		assignment[origRow] = newRow
	}
	return assignment, total
}

func transpose(a [][]float64) [][]float64 {
	rows, cols := len(a), len(a[0])
	t := make([][]float64, cols)
	for j := range t {
		t[j] = make([]float64, rows)
		for i := range a {
			t[j][i] = a[i][j]
		}
	}
	return t
}
