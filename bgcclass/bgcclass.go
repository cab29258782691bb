// Copyright ©2024 The bgcscape Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bgcclass derives a BGC-class label from a product annotation
// string and holds the per-class distance weights (spec.md §4.3, §6).
package bgcclass

import "strings"

// Weights holds the Jaccard, DSS and Adjacency-index weights and the
// anchor-boost factor for one BGC class (spec.md §4.3).
type Weights struct {
	Jaccard     float64
	DSS         float64
	Adjacency   float64
	AnchorBoost float64
}

// Class name constants, closed per spec.md §6.
const (
	PKSI           = "PKSI"
	PKSOther       = "PKSother"
	NRPS           = "NRPS"
	RiPPs          = "RiPPs"
	Saccharides    = "Saccharides"
	Terpene        = "Terpene"
	PKSNRPHybrids  = "PKS-NRP_Hybrids"
	Others         = "Others"
	Mix            = "mix"
)

// ClassWeights is the class weight table of spec.md §4.3.
var ClassWeights = map[string]Weights{
	PKSI:          {Jaccard: 0.22, DSS: 0.76, Adjacency: 0.02, AnchorBoost: 1.0},
	PKSOther:      {Jaccard: 0.0, DSS: 0.32, Adjacency: 0.68, AnchorBoost: 4.0},
	NRPS:          {Jaccard: 0.0, DSS: 1.00, Adjacency: 0.0, AnchorBoost: 4.0},
	RiPPs:         {Jaccard: 0.28, DSS: 0.71, Adjacency: 0.01, AnchorBoost: 1.0},
	Saccharides:   {Jaccard: 0.0, DSS: 0.0, Adjacency: 1.0, AnchorBoost: 1.0},
	Terpene:       {Jaccard: 0.20, DSS: 0.75, Adjacency: 0.05, AnchorBoost: 2.0},
	PKSNRPHybrids: {Jaccard: 0.0, DSS: 0.78, Adjacency: 0.22, AnchorBoost: 1.0},
	Others:        {Jaccard: 0.01, DSS: 0.97, Adjacency: 0.02, AnchorBoost: 4.0},
	Mix:           {Jaccard: 0.20, DSS: 0.75, Adjacency: 0.05, AnchorBoost: 2.0},
}

var ripps = map[string]bool{
	"lantipeptide": true, "thiopeptide": true, "bacteriocin": true,
	"linaridin": true, "cyanobactin": true, "glycocin": true,
	"lap": true, "lassopeptide": true, "sactipeptide": true,
	"bottromycin": true, "head_to_tail": true, "microcin": true,
	"microviridin": true, "proteusin": true,
}

var saccharides = map[string]bool{
	"amglyccycl": true, "oligosaccharide": true, "cf_saccharide": true,
}

var pksOther = map[string]bool{
	"transatpks": true, "t2pks": true, "t3pks": true, "otherks": true, "hglks": true,
}

// single classifies a single (non-hyphenated) product token against the
// closed mapping of spec.md §6. Unrecognised tokens fall back to Others
// per spec.md §7's UnknownBgcClass disposition.
func single(product string) string {
	p := strings.ToLower(product)
	switch {
	case p == "t1pks":
		return PKSI
	case pksOther[p]:
		return PKSOther
	case p == "nrps":
		return NRPS
	case ripps[p]:
		return RiPPs
	case saccharides[p]:
		return Saccharides
	case p == "terpene":
		return Terpene
	default:
		return Others
	}
}

// Classify derives the BGC-class label for a product annotation string.
// When hybrids is false, or product has no hyphenated parts, the whole
// string is classified as a single token (spec.md §6). When hybrids is
// true and product is hyphenated, every part is classified individually:
// if all parts are PKS or NRPS, the result is PKS-NRP_Hybrids when any
// part is NRPS, else PKSother; if all parts are RiPP, the result is
// RiPPs; otherwise Others.
func Classify(product string, hybrids bool) string {
	parts := strings.Split(product, "-")
	if !hybrids || len(parts) == 1 {
		return single(product)
	}

	allPKSOrNRPS := true
	anyNRPS := false
	allRiPP := true
	for _, p := range parts {
		c := single(p)
		switch c {
		case PKSI, PKSOther:
			// still PKS-like
		case NRPS:
			anyNRPS = true
		default:
			allPKSOrNRPS = false
		}
		if c != RiPPs {
			allRiPP = false
		}
	}

	switch {
	case allPKSOrNRPS && anyNRPS:
		return PKSNRPHybrids
	case allPKSOrNRPS:
		return PKSOther
	case allRiPP:
		return RiPPs
	default:
		return Others
	}
}

// Banned is a set of class labels excluded from a run (the banned_classes
// config option of spec.md §6).
type Banned map[string]bool

// NewBanned builds a Banned set from a list of class names.
func NewBanned(classes []string) Banned {
	b := make(Banned, len(classes))
	for _, c := range classes {
		b[c] = true
	}
	return b
}

// Allowed reports whether class is not in the banned set.
func (b Banned) Allowed(class string) bool {
	return !b[class]
}
