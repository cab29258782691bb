// Copyright ©2024 The bgcscape Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bgcscape orchestrates the Domain Store, Pair Dispatcher,
// Family Caller and Clan Caller into one run over a working set of gene
// clusters (spec.md §2).
package bgcscape

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/kortschak/bgcscape/bgcclass"
	"github.com/kortschak/bgcscape/clan"
	"github.com/kortschak/bgcscape/dispatch"
	"github.com/kortschak/bgcscape/domainstore"
	"github.com/kortschak/bgcscape/family"
	"github.com/kortschak/bgcscape/galign"
	"github.com/kortschak/bgcscape/pairalign"
	"github.com/kortschak/bgcscape/scorer"
)

// Config collects the run-wide options of spec.md §6's configuration
// surface.
type Config struct {
	Mode              pairalign.Mode
	Cutoffs           []float64
	Clans             bool
	ClanClassCutoff   float64
	ClanDistCutoff    float64
	Hybrids           bool
	IncludeSingletons bool
	BannedClasses     []string
	Cores             int

	// Logger receives progress messages. A nil Logger defaults to
	// log.New(os.Stderr, "", log.LstdFlags).
	Logger *log.Logger
}

// Result is one (class, cutoff) worth of output, ready to hand to the
// netio writers.
type Result struct {
	Class    string
	Cutoff   float64
	Rows     []dispatch.Row
	Members  []string
	Families family.Assignment

	// Clans is non-nil only when cfg.Clans is set and Cutoff equals
	// cfg.ClanClassCutoff.
	Clans clan.Assignment
}

// Run scores every in-class cluster pair in store, calls families at
// every configured cutoff, and — where configured — calls clans at the
// clan classification cutoff, for every BGC class that cfg does not ban.
//
// products maps a cluster name already registered in store to its raw
// product annotation string, the input bgcclass.Classify expects.
func Run(ctx context.Context, store *domainstore.Store, products map[string]string, cfg Config) ([]Result, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	banned := bgcclass.NewBanned(cfg.BannedClasses)

	byClass := make(map[string][]string)
	for name, product := range products {
		class := bgcclass.Classify(product, cfg.Hybrids)
		if !banned.Allowed(class) {
			continue
		}
		byClass[class] = append(byClass[class], name)
	}

	var groups []dispatch.ClassGroup
	weights := make(map[string]bgcclass.Weights, len(byClass))
	for class, members := range byClass {
		sort.Strings(members)
		groups = append(groups, dispatch.ClassGroup{Class: class, Clusters: members})
		w, ok := bgcclass.ClassWeights[class]
		if !ok {
			return nil, fmt.Errorf("bgcscape: no class weights registered for %q", class)
		}
		weights[class] = w
	}

	aligner := galign.New()
	sc := scorer.New(store, aligner, logger)

	logger.Printf("bgcscape: scoring %d class group(s)", len(groups))
	rows, err := dispatch.Pairs(ctx, store, sc, weights, groups, dispatch.Config{Cores: cfg.Cores, Mode: cfg.Mode})
	if err != nil {
		return nil, fmt.Errorf("bgcscape: pair scoring failed: %w", err)
	}

	rowsByClass := make(map[string][]dispatch.Row)
	for _, r := range rows {
		rowsByClass[r.Class] = append(rowsByClass[r.Class], r)
	}

	var results []Result
	for class, members := range byClass {
		classRows := rowsByClass[class]
		for _, cutoff := range cfg.Cutoffs {
			logger.Printf("bgcscape: calling families: class=%s cutoff=%.3f", class, cutoff)
			assign := family.Call(classRows, members, cutoff)
			logger.Printf("bgcscape: threshold graph components: class=%s cutoff=%.3f components=%d",
				class, cutoff, family.ThresholdGraph(classRows, members, cutoff))

			res := Result{Class: class, Cutoff: cutoff, Rows: classRows, Members: members, Families: assign}
			if cfg.Clans && cutoff == cfg.ClanClassCutoff {
				logger.Printf("bgcscape: calling clans: class=%s cutoff=%.3f", class, cutoff)
				res.Clans = clan.Call(classRows, assign, cfg.ClanDistCutoff)
			}
			results = append(results, res)
		}
	}
	return results, nil
}
