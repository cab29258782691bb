// Copyright ©2024 The bgcscape Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pairalign implements the domain-level alignment of two
// clusters: longest-common-contiguous-run seeding over interned gene
// tokens, bidirectional expansion, and the core-biosynthetic validity
// gate (spec.md §4.2). The result is a Slice naming the gene range on
// each cluster that the Scorer should compare.
package pairalign

import (
	"fmt"

	"github.com/kortschak/bgcscape/domainstore"
)

// Mode selects how much of a cluster pair is compared.
type Mode int

const (
	// Global skips seeding and expansion; the full gene range of both
	// clusters is compared.
	Global Mode = iota
	// LCS always seeds, expands and gates.
	LCS
	// Auto seeds, expands and gates only when at least one cluster has
	// its contig_edge flag set; otherwise it behaves like Global.
	Auto
)

// ParseMode parses the mode config string (spec.md §6).
func ParseMode(s string) (Mode, error) {
	switch s {
	case "global":
		return Global, nil
	case "lcs":
		return LCS, nil
	case "auto":
		return Auto, nil
	default:
		return 0, fmt.Errorf("pairalign: unknown mode %q", s)
	}
}

// Slice names the gene range on each cluster (in gene units) that the
// Scorer should compare, plus the LCS seed that produced it.
type Slice struct {
	StartA, LenA int
	StartB, LenB int
	// Reversed reports whether the active slice was produced against
	// B's reverse gene order. False whenever the slice fell back to the
	// full, non-reversed gene range.
	Reversed bool

	SeedStartA, SeedStartB, SeedLen int
	SeedReversed                    bool
}

const (
	matchScore    = 5
	mismatchScore = -3
	gapPenalty    = -2
	minSliceLen   = 5
)

// Align computes the comparison slice for clusters a and b under mode.
func Align(a, b *domainstore.Cluster, mode Mode) Slice {
	aTok := a.GeneTokens
	bTok := b.GeneTokens
	bRev := reverseInt32(bTok)

	fa, fb, fs := longestCommonRun(aTok, bTok)
	ra, rb, rs := longestCommonRun(aTok, bRev)

	var sa, sbWork, s int
	var seedReversed bool
	if rs > fs {
		sa, sbWork, s, seedReversed = ra, rb, rs, true
	} else {
		sa, sbWork, s, seedReversed = fa, fb, fs, false
	}

	seedStartB := sbWork
	if seedReversed {
		seedStartB = len(bTok) - sbWork - s
	}

	fullSlice := Slice{
		StartA: 0, LenA: len(aTok),
		StartB: 0, LenB: len(bTok),
		Reversed:      false,
		SeedStartA:    sa,
		SeedStartB:    seedStartB,
		SeedLen:       s,
		SeedReversed:  seedReversed,
	}

	doExpand := mode == LCS || (mode == Auto && (a.ContigEdge || b.ContigEdge))
	if mode == Global || !doExpand {
		return fullSlice
	}

	workingB := bTok
	if seedReversed {
		workingB = bRev
	}

	startA, lenA, startBWork, lenB := sa, s, sbWork, s
	if s >= 3 {
		up := expandSide(aTok[:sa], workingB[:sbWork], false)
		down := expandSide(aTok[sa+s:], workingB[sbWork+s:], true)
		startA = sa - up.extA
		lenA = s + up.extA + down.extA
		startBWork = sbWork - up.extB
		lenB = s + up.extB + down.extB
	}

	startBReal := startBWork
	if seedReversed {
		startBReal = len(bTok) - startBWork - lenB
	}

	if !passesGate(a, b, startA, lenA, startBReal, lenB) {
		fullSlice.SeedStartA, fullSlice.SeedStartB, fullSlice.SeedLen, fullSlice.SeedReversed = sa, seedStartB, s, seedReversed
		return fullSlice
	}

	return Slice{
		StartA: startA, LenA: lenA,
		StartB: startBReal, LenB: lenB,
		Reversed:     seedReversed,
		SeedStartA:   sa,
		SeedStartB:   seedStartB,
		SeedLen:      s,
		SeedReversed: seedReversed,
	}
}

// passesGate implements the validity gate of spec.md §4.2: the slice
// must cover at least minSliceLen genes on both sides and contain a
// core-biosynthetic gene on each side, using original (non-reversed)
// indices on b.
func passesGate(a, b *domainstore.Cluster, startA, lenA, startBReal, lenB int) bool {
	if lenA < minSliceLen || lenB < minSliceLen {
		return false
	}
	return hasCoreIn(a, startA, lenA) && hasCoreIn(b, startBReal, lenB)
}

func hasCoreIn(c *domainstore.Cluster, start, length int) bool {
	for _, pos := range c.CorePositions() {
		if pos >= start && pos < start+length {
			return true
		}
	}
	return false
}

// sideExpansion is how far to extend a cluster pair's slice on one side
// (upstream or downstream) on each of A and B.
type sideExpansion struct {
	extA, extB int
}

// expandSide applies the expansion policy of spec.md §4.2 to one side
// (upstream or downstream) of the seed: the side with fewer remaining
// genes is fully consumed, and the other side is expanded against it;
// when both sides have equal budgets, both driving directions are tried
// and the higher-scoring one wins, ties broken toward a longer
// expansion on A. aRem and bRem are passed in their natural array
// order, so on the upstream side they end next to the seed; downstream
// selects which way scoreExpansion walks, and the walk always starts
// next to the seed.
func expandSide(aRem, bRem []int32, downstream bool) sideExpansion {
	na, nb := len(aRem), len(bRem)
	switch {
	case na == nb:
		scoreA, aApplied := scoreExpansion(aRem, bRem, downstream)
		scoreB, bApplied := scoreExpansion(bRem, aRem, downstream)
		switch {
		case scoreA > scoreB:
			return sideExpansion{extA: aApplied, extB: nb}
		case scoreB > scoreA:
			return sideExpansion{extA: na, extB: bApplied}
		default:
			if aApplied > bApplied {
				return sideExpansion{extA: aApplied, extB: nb}
			}
			return sideExpansion{extA: na, extB: bApplied}
		}
	case na < nb:
		_, bApplied := scoreExpansion(bRem, aRem, downstream)
		return sideExpansion{extA: na, extB: bApplied}
	default:
		_, aApplied := scoreExpansion(aRem, bRem, downstream)
		return sideExpansion{extA: aApplied, extB: nb}
	}
}

// scoreExpansion walks driving string x token by token, searching for
// each token in y at or after the current pointer, per spec.md §4.2. It
// returns the best cumulative score and the length of x that achieved
// it. When downstream is false both strings are walked in reverse.
func scoreExpansion(x, y []int32, downstream bool) (score, length int) {
	if !downstream {
		x = reverseInt32(x)
		y = reverseInt32(y)
	}

	running, best, bestLen, yPtr := 0, 0, 0, 0
	for i, g := range x {
		idx := indexFrom(y, yPtr, g)
		if idx >= 0 {
			k := idx - yPtr
			running += matchScore + gapPenalty*k
			yPtr = idx + 1
		} else {
			running += mismatchScore
		}
		if running >= best {
			best = running
			bestLen = i + 1
		}
	}
	return best, bestLen
}

func indexFrom(s []int32, from int, v int32) int {
	for i := from; i < len(s); i++ {
		if s[i] == v {
			return i
		}
	}
	return -1
}

// longestCommonRun returns the start offsets and length of the longest
// contiguous run common to a and b.
func longestCommonRun(a, b []int32) (startA, startB, length int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	best, endA, endB := 0, 0, 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
					endA, endB = i, j
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}
	return endA - best, endB - best, best
}

func reverseInt32(s []int32) []int32 {
	r := make([]int32, len(s))
	for i, v := range s {
		r[len(s)-1-i] = v
	}
	return r
}
