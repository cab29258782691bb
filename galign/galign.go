// Copyright ©2024 The bgcscape Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package galign performs the PAM250-scored affine-gap global alignment
// used to regenerate a domain instance's aligned sequence when no
// precomputed alignment is available (the MissingAlignment fallback of
// spec.md §7). It is grounded on the align.SW table-construction idiom
// of cmd/reefer, adapted from Smith-Waterman/DNA to Needleman-Wunsch
// affine-gap/protein.
package galign

import (
	"strings"

	"github.com/biogo/biogo/align"
	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"
)

// gapOpen and gapExtend are the domain-alignment affine gap costs. The
// extend cost is rounded to the nearest integer because align.NWAffine
// scores are integral.
const (
	gapOpen   = -15
	gapExtend = -7 // round(-6.67)
)

var residueOrder = "ARNDCQEGHILKMFPSTWYV"

// pam250 is the classic Dayhoff PAM250 substitution matrix, indexed in
// residueOrder order.
var pam250 = [20][20]int{
	{2, -2, 0, 0, -2, 0, 0, 1, -1, -1, -2, -1, -1, -3, 1, 1, 1, -6, -3, 0},
	{-2, 6, 0, -1, -4, 1, -1, -3, 2, -2, -3, 3, 0, -4, 0, 0, -1, 2, -4, -2},
	{0, 0, 2, 2, -4, 1, 1, 0, 2, -2, -3, 1, -2, -3, 0, 1, 0, -4, -2, -2},
	{0, -1, 2, 4, -5, 2, 3, 1, 1, -2, -4, 0, -3, -6, -1, 0, 0, -7, -4, -2},
	{-2, -4, -4, -5, 12, -5, -5, -3, -3, -2, -6, -5, -5, -4, -3, 0, -2, -8, 0, -2},
	{0, 1, 1, 2, -5, 4, 2, -1, 3, -2, -2, 1, -1, -5, 0, -1, -1, -5, -4, -2},
	{0, -1, 1, 3, -5, 2, 4, 0, 1, -2, -3, 0, -2, -5, -1, 0, 0, -7, -4, -2},
	{1, -3, 0, 1, -3, -1, 0, 5, -2, -3, -4, -2, -3, -5, 0, 1, 0, -7, -5, -1},
	{-1, 2, 2, 1, -3, 3, 1, -2, 6, -2, -2, 0, -2, -2, 0, -1, -1, -3, 0, -2},
	{-1, -2, -2, -2, -2, -2, -2, -3, -2, 5, 2, -2, 2, 1, -2, -1, 0, -5, -1, 4},
	{-2, -3, -3, -4, -6, -2, -3, -4, -2, 2, 6, -3, 4, 2, -3, -3, -2, -2, -1, 2},
	{-1, 3, 1, 0, -5, 1, 0, -2, 0, -2, -3, 5, 0, -5, -1, 0, 0, -3, -4, -2},
	{-1, 0, -2, -3, -5, -1, -2, -3, -2, 2, 4, 0, 6, 0, -2, -2, -1, -4, -2, 2},
	{-3, -4, -3, -6, -4, -5, -5, -5, -2, 1, 2, -5, 0, 9, -5, -3, -3, 0, 7, -1},
	{1, 0, 0, -1, -3, 0, -1, 0, 0, -2, -3, -1, -2, -5, 6, 1, 0, -6, -5, -1},
	{1, 0, 1, 0, 0, -1, 0, 1, -1, -1, -3, 0, -2, -3, 1, 2, 1, -2, -3, -1},
	{1, -1, 0, 0, -2, -1, 0, 0, -1, 0, -2, 0, -1, -3, 0, 1, 3, -5, -3, 0},
	{-6, 2, -4, -7, -8, -5, -7, -7, -3, -5, -2, -3, -4, 0, -6, -2, -5, 17, 0, -6},
	{-3, -4, -2, -4, 0, -4, -4, -5, 0, -1, -1, -4, -2, 7, -5, -3, -3, 0, 10, -2},
	{0, -2, -2, -2, -2, -2, -2, -1, -2, 4, 2, -2, 2, -1, -1, -1, 0, -6, -2, 4},
}

const unknownResiduePenalty = -8

func score(a, b byte) int {
	i := strings.IndexByte(residueOrder, a)
	j := strings.IndexByte(residueOrder, b)
	if i < 0 || j < 0 {
		if a == b {
			return 0
		}
		return unknownResiduePenalty
	}
	return pam250[i][j]
}

// Aligner performs PAM250/affine-gap global alignment over the protein
// alphabet.
type Aligner struct {
	nw align.NWAffine
}

// New builds an Aligner with the PAM250 matrix and the domain-alignment
// gap costs.
func New() *Aligner {
	alpha := alphabet.Protein
	n := alpha.Len()
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	for i := 0; i < n; i++ {
		li := byte(alpha.Letter(i))
		for j := 0; j < n; j++ {
			lj := byte(alpha.Letter(j))
			m[i][j] = score(li, lj)
		}
	}
	gi := alpha.IndexOf(alpha.Gap())
	for i := 0; i < n; i++ {
		m[gi][i] = gapExtend
		m[i][gi] = gapExtend
	}
	return &Aligner{nw: align.NWAffine{Matrix: m, GapOpen: gapOpen}}
}

func toLetters(s string) []alphabet.Letter {
	ls := make([]alphabet.Letter, len(s))
	for i := 0; i < len(s); i++ {
		ls[i] = alphabet.Letter(s[i])
	}
	return ls
}

// Align returns the gap-padded global alignment of raw amino-acid
// sequences a and b.
func (al *Aligner) Align(a, b string) (alignedA, alignedB string, err error) {
	sa := linear.NewSeq("a", toLetters(a), alphabet.Protein)
	sb := linear.NewSeq("b", toLetters(b), alphabet.Protein)

	aln, err := al.nw.Align(sa, sb)
	if err != nil {
		return "", "", err
	}

	var outA, outB strings.Builder
	ca, cb := 0, 0
	for _, p := range aln {
		fa, fb := p.Features()[0], p.Features()[1]
		for ca < fa.Start() {
			outA.WriteByte(a[ca])
			outB.WriteByte('-')
			ca++
		}
		for cb < fb.Start() {
			outA.WriteByte('-')
			outB.WriteByte(b[cb])
			cb++
		}
		for ca < fa.End() && cb < fb.End() {
			outA.WriteByte(a[ca])
			outB.WriteByte(b[cb])
			ca++
			cb++
		}
	}
	for ca < len(a) {
		outA.WriteByte(a[ca])
		outB.WriteByte('-')
		ca++
	}
	for cb < len(b) {
		outA.WriteByte('-')
		outB.WriteByte(b[cb])
		cb++
	}
	return outA.String(), outB.String(), nil
}
