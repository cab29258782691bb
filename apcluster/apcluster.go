// Copyright ©2024 The bgcscape Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package apcluster implements sparse affinity propagation, the
// exemplar-based clustering stage shared by the Family and Clan Callers
// (spec.md §4.5, §4.6, §9). Messages are passed only over edges present
// in the input graph plus the diagonal, never over the full N×N matrix.
package apcluster

// Edge is one symmetric similarity edge of the input graph. Only one
// direction need be supplied; self-edges (I == J) are ignored, since the
// diagonal is driven by Config.Preference instead.
type Edge struct {
	I, J int
	Sim  float64
}

// Config holds the affinity propagation parameters of spec.md §4.5.
type Config struct {
	Damping float64
	MaxIter int
}

// DefaultConfig returns the damping/iteration parameters the Family and
// Clan Callers use: damping 0.8, 500 iterations.
func DefaultConfig() Config {
	return Config{Damping: 0.8, MaxIter: 500}
}

// Run clusters n points from a sparse, symmetric similarity graph and
// returns one exemplar index per point; points sharing an exemplar form
// a cluster. The preference (self-similarity) is the minimum finite
// off-diagonal similarity in edges, the standard sparse-AP convention.
// Run always returns a valid partition of 0..n-1, degrading isolated or
// non-converged points to singleton clusters of themselves.
func Run(n int, edges []Edge, cfg Config) []int {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i
	}
	if n <= 1 {
		return labels
	}

	pref := minOffDiagonal(edges)
	neighbors := make([][]int, n)
	sim := make(map[[2]int]float64, len(edges))
	for _, e := range edges {
		if e.I == e.J {
			continue
		}
		addEdge(neighbors, sim, e.I, e.J, e.Sim)
	}

	simOf := func(i, k int) float64 {
		if i == k {
			return pref
		}
		return sim[key(i, k)]
	}
	candidates := make([][]int, n)
	for i := range candidates {
		candidates[i] = append(append([]int{}, neighbors[i]...), i)
	}

	r := make(map[[2]int]float64)
	a := make(map[[2]int]float64)

	for iter := 0; iter < cfg.MaxIter; iter++ {
		// Responsibility update.
		for i := 0; i < n; i++ {
			cands := candidates[i]
			max1, max2 := negInf, negInf
			argmax1 := -1
			for _, k := range cands {
				v := a[key(i, k)] + simOf(i, k)
				if v > max1 {
					max2 = max1
					max1 = v
					argmax1 = k
				} else if v > max2 {
					max2 = v
				}
			}
			for _, k := range cands {
				others := max1
				if k == argmax1 {
					others = max2
				}
				newR := simOf(i, k) - others
				old := r[key(i, k)]
				r[key(i, k)] = cfg.Damping*old + (1-cfg.Damping)*newR
			}
		}

		// Availability update.
		for k := 0; k < n; k++ {
			sum := 0.0
			for _, i := range neighbors[k] {
				if v := r[key(i, k)]; v > 0 {
					sum += v
				}
			}
			rkk := r[key(k, k)]
			old := a[key(k, k)]
			a[key(k, k)] = cfg.Damping*old + (1-cfg.Damping)*sum

			for _, i := range neighbors[k] {
				contrib := 0.0
				if v := r[key(i, k)]; v > 0 {
					contrib = v
				}
				newA := rkk + sum - contrib
				if newA > 0 {
					newA = 0
				}
				oi := a[key(i, k)]
				a[key(i, k)] = cfg.Damping*oi + (1-cfg.Damping)*newA
			}
		}
	}

	for i := 0; i < n; i++ {
		best := negInf
		bestK := i
		for _, k := range candidates[i] {
			v := a[key(i, k)] + r[key(i, k)]
			if v > best {
				best = v
				bestK = k
			}
		}
		labels[i] = bestK
	}

	exemplars := make(map[int]bool)
	for i, k := range labels {
		if k == i {
			exemplars[i] = true
		}
	}
	if len(exemplars) == 0 {
		for i := range labels {
			labels[i] = i
		}
		return labels
	}

	for i := 0; i < n; i++ {
		if exemplars[labels[i]] {
			continue
		}
		best := negInf
		bestEx := -1
		for ex := range exemplars {
			if ex == i {
				bestEx = i
				break
			}
			if v, ok := sim[key(i, ex)]; ok && v > best {
				best = v
				bestEx = ex
			}
		}
		if bestEx < 0 {
			bestEx = i
			exemplars[i] = true
		}
		labels[i] = bestEx
	}
	return labels
}

const negInf = -1e300

func key(i, j int) [2]int { return [2]int{i, j} }

func addEdge(neighbors [][]int, sim map[[2]int]float64, i, j int, s float64) {
	neighbors[i] = append(neighbors[i], j)
	neighbors[j] = append(neighbors[j], i)
	sim[key(i, j)] = s
	sim[key(j, i)] = s
}

func minOffDiagonal(edges []Edge) float64 {
	min := 0.0
	seen := false
	for _, e := range edges {
		if e.I == e.J {
			continue
		}
		if !seen || e.Sim < min {
			min = e.Sim
			seen = true
		}
	}
	return min
}
