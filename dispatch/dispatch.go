// Copyright ©2024 The bgcscape Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dispatch enumerates cluster pairs per BGC class and drives the
// Pair Aligner and Scorer across a bounded worker pool (spec.md §4.4,
// §5). Pair scoring is CPU-bound and has no inter-pair dependency, so
// the pool is a plain errgroup.SetLimit fan-out, grounded on the
// parallel task executor shape used elsewhere in the ecosystem for the
// same "independent CPU-bound units, fail the whole run on one crash"
// contract.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kortschak/bgcscape/bgcclass"
	"github.com/kortschak/bgcscape/domainstore"
	"github.com/kortschak/bgcscape/pairalign"
	"github.com/kortschak/bgcscape/scorer"
)

// ClassGroup is the working set of cluster names assigned to one BGC
// class (spec.md §4.4: the same cluster may appear in more than one
// group under the hybrids policy; the dispatcher treats each (class,
// pair) independently).
type ClassGroup struct {
	Class    string
	Clusters []string
}

// Row is one scored pair, self-describing with its class and cluster
// names so that downstream consumers need no side table.
type Row struct {
	A, B, Class string
	scorer.Result
}

// Config controls the worker pool.
type Config struct {
	// Cores is the maximum number of concurrent pair scorers. Values
	// less than 1 are treated as 1.
	Cores int
	Mode  pairalign.Mode
}

// Pairs enumerates all unordered pairs within each class group and
// scores them across a worker pool bounded by cfg.Cores. It returns the
// full row set on success. Per spec.md §7's WorkerCrash disposition, any
// single scoring failure or panic is fatal: the run is aborted and no
// partial rows are returned.
func Pairs(ctx context.Context, store *domainstore.Store, sc *scorer.Scorer, weights map[string]bgcclass.Weights, groups []ClassGroup, cfg Config) ([]Row, error) {
	type job struct{ class, a, b string }

	var jobs []job
	for _, grp := range groups {
		for i := 0; i < len(grp.Clusters); i++ {
			for j := i + 1; j < len(grp.Clusters); j++ {
				jobs = append(jobs, job{grp.Class, grp.Clusters[i], grp.Clusters[j]})
			}
		}
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	cores := cfg.Cores
	if cores < 1 {
		cores = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cores)

	var mu sync.Mutex
	rows := make([]Row, 0, len(jobs))

	for _, j := range jobs {
		j := j
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("dispatch: worker crashed scoring (%s, %s) class %s: %v", j.a, j.b, j.class, rec)
				}
			}()

			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			w, ok := weights[j.class]
			if !ok {
				return fmt.Errorf("dispatch: no class weights registered for %q", j.class)
			}

			a := store.Cluster(j.a)
			b := store.Cluster(j.b)
			slice := pairalign.Align(a, b, cfg.Mode)
			res := sc.Score(a, b, slice, w)

			mu.Lock()
			rows = append(rows, Row{A: j.a, B: j.b, Class: j.class, Result: res})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}
