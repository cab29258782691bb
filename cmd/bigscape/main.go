// Copyright ©2024 The bgcscape Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// bigscape groups biosynthetic gene clusters into families and clans by
// domain content similarity.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/kortschak/bgcscape"
	"github.com/kortschak/bgcscape/domainstore"
	"github.com/kortschak/bgcscape/netio"
	"github.com/kortschak/bgcscape/pairalign"
)

var (
	domainsDir   = flag.String("domains", "", "directory of per-cluster domain-table TSV files, one \"<cluster>.domtab\" per cluster (required)")
	clustersFile = flag.String("clusters", "", "cluster metadata TSV: name, product, group, contig_edge (required)")
	coreFile     = flag.String("core", "", "core-biosynthetic gene TSV: cluster, gene_id (one core gene per line)")
	algnDir      = flag.String("algn", "", "directory of per-family aligned-sequence FASTA files")
	rawDir       = flag.String("raw", "", "directory of per-family raw (unaligned) FASTA files")
	anchorsFile  = flag.String("anchors", "", "path to anchor-domain id list, one id per line")
	mode         = flag.String("mode", "auto", "global|lcs|auto")
	cutoffsFlag  = flag.String("cutoffs", "0.3", "comma separated list of cutoffs in (0,1]")
	clans        = flag.Bool("clans", false, "enable clan calling")
	clanClass    = flag.Float64("clan-class", 0.5, "clan classification cutoff")
	clanDist     = flag.Float64("clan-dist", 0.8, "clan distance cutoff")
	hybrids      = flag.Bool("hybrids", false, "enable hybrid class policy")
	banned       = flag.String("banned", "", "comma separated list of banned BGC classes")
	singletons   = flag.Bool("singletons", false, "include singleton self-edges")
	cores        = flag.Int("cores", runtime.NumCPU(), "worker pool width")
	out          = flag.String("out", ".", "output directory")
	errFile      = flag.String("err", "", "output file name (default to stderr)")
)

func main() {
	flag.Parse()
	if *domainsDir == "" || *clustersFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	errStream := os.Stderr
	if *errFile != "" {
		f, err := os.Create(*errFile)
		if err != nil {
			log.Fatalf("failed to create log file: %v", err)
		}
		defer f.Close()
		errStream = f
	}
	logger := log.New(errStream, "", log.LstdFlags)

	metadata, err := readClusterMetadata(*clustersFile)
	if err != nil {
		logger.Fatalf("failed to read cluster metadata: %v", err)
	}

	var coreGenes map[string]map[string]bool
	if *coreFile != "" {
		coreGenes, err = readCoreGenes(*coreFile)
		if err != nil {
			logger.Fatalf("failed to read core-biosynthetic gene list: %v", err)
		}
	}

	store := domainstore.NewStore()
	products := make(map[string]string, len(metadata))
	groupOf := make(map[string]string, len(metadata))
	for _, c := range metadata {
		rows, err := readClusterDomainTable(*domainsDir, c.Name)
		if err != nil {
			logger.Fatalf("failed to read domain table for %q: %v", c.Name, err)
		}
		rows = netio.FilterOverlaps(rows)
		genes := geneMetaFor(coreGenes[c.Name])
		in, err := netio.BuildClusterInput(c.Name, rows, genes, "", c.ContigEdge, c.Group)
		if err != nil {
			logger.Fatalf("failed to build domain store entry for %q: %v", c.Name, err)
		}
		if err := store.AddCluster(in); err != nil {
			logger.Fatalf("failed to register cluster %q: %v", c.Name, err)
		}
		products[c.Name] = c.Product
		groupOf[c.Name] = c.Group
	}

	if *anchorsFile != "" {
		if err := readAnchors(*anchorsFile, store); err != nil {
			logger.Fatalf("failed to read anchor domains: %v", err)
		}
	}
	if *algnDir != "" {
		if err := readFastaDir(*algnDir, store, netio.ReadAlignedSequences); err != nil {
			logger.Fatalf("failed to read aligned sequences: %v", err)
		}
	}
	if *rawDir != "" {
		if err := readFastaDir(*rawDir, store, netio.ReadRawSequences); err != nil {
			logger.Fatalf("failed to read raw sequences: %v", err)
		}
	}

	m, err := pairalign.ParseMode(*mode)
	if err != nil {
		logger.Fatalf("bad -mode: %v", err)
	}
	cutoffs, err := parseCutoffs(*cutoffsFlag)
	if err != nil {
		logger.Fatalf("bad -cutoffs: %v", err)
	}
	var bannedClasses []string
	if *banned != "" {
		bannedClasses = strings.Split(*banned, ",")
	}

	cfg := bgcscape.Config{
		Mode:              m,
		Cutoffs:           cutoffs,
		Clans:             *clans,
		ClanClassCutoff:   *clanClass,
		ClanDistCutoff:    *clanDist,
		Hybrids:           *hybrids,
		IncludeSingletons: *singletons,
		BannedClasses:     bannedClasses,
		Cores:             *cores,
		Logger:            logger,
	}

	results, err := bgcscape.Run(context.Background(), store, products, cfg)
	if err != nil {
		logger.Fatalf("run failed: %v", err)
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		logger.Fatalf("failed to create output directory %q: %v", *out, err)
	}
	for _, r := range results {
		if err := writeResult(*out, r, groupOf, cfg); err != nil {
			logger.Fatalf("failed to write output for class %s cutoff %.3f: %v", r.Class, r.Cutoff, err)
		}
	}
}

type clusterMeta struct {
	Name, Product, Group string
	ContigEdge           bool
}

// readClusterMetadata parses the "-clusters" TSV: name, product, group,
// contig_edge. This is the one piece of per-cluster annotation that has
// to come from outside the domain table, since GenBank ingestion is out
// of scope.
func readClusterMetadata(path string) ([]clusterMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []clusterMeta
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			return nil, fmt.Errorf("malformed cluster metadata row (want 4 fields, got %d): %q", len(fields), line)
		}
		edge, err := strconv.ParseBool(fields[3])
		if err != nil {
			return nil, fmt.Errorf("bad contig_edge value %q: %w", fields[3], err)
		}
		out = append(out, clusterMeta{Name: fields[0], Product: fields[1], Group: fields[2], ContigEdge: edge})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// readCoreGenes parses the "-core" TSV: cluster, gene_id, one
// core-biosynthetic gene per line. This is the only way a gene's
// core-biosynthetic status reaches the validity gate of spec.md §4.2,
// since GenBank ingestion (which would otherwise supply it) is out of
// scope.
func readCoreGenes(path string) (map[string]map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed core-gene row (want 2 fields, got %d): %q", len(fields), line)
		}
		cluster, gene := fields[0], fields[1]
		genes, ok := out[cluster]
		if !ok {
			genes = make(map[string]bool)
			out[cluster] = genes
		}
		genes[gene] = true
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// geneMetaFor builds the GeneMeta map netio.BuildClusterInput expects
// from one cluster's set of core-biosynthetic gene ids.
func geneMetaFor(coreIDs map[string]bool) map[string]netio.GeneMeta {
	if len(coreIDs) == 0 {
		return nil
	}
	genes := make(map[string]netio.GeneMeta, len(coreIDs))
	for id := range coreIDs {
		genes[id] = netio.GeneMeta{Core: true}
	}
	return genes
}

func readClusterDomainTable(dir, name string) ([]netio.DomainRow, error) {
	f, err := os.Open(filepath.Join(dir, name+".domtab"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return netio.ReadDomainTable(f)
}

func readAnchors(path string, store *domainstore.Store) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		store.SetAnchor(line)
	}
	return sc.Err()
}

func readFastaDir(dir string, store *domainstore.Store, read func(r io.Reader, store *domainstore.Store) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		err = read(f, store)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func parseCutoffs(s string) ([]float64, error) {
	var out []float64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad cutoff %q: %w", p, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no cutoffs given")
	}
	return out, nil
}

func writeResult(outDir string, r bgcscape.Result, groupOf map[string]string, cfg bgcscape.Config) error {
	base := fmt.Sprintf("%s_c%.2f", r.Class, r.Cutoff)

	edgeFile, err := os.Create(filepath.Join(outDir, base+".network"))
	if err != nil {
		return err
	}
	err = netio.WriteEdgeTable(edgeFile, r.Rows, r.Members, groupOf, r.Cutoff, cfg.IncludeSingletons)
	edgeFile.Close()
	if err != nil {
		return err
	}

	famFile, err := os.Create(filepath.Join(outDir, base+"_families.tsv"))
	if err != nil {
		return err
	}
	err = netio.WriteFamilyTable(famFile, r.Families)
	famFile.Close()
	if err != nil {
		return err
	}

	if r.Clans == nil {
		return nil
	}
	clanFile, err := os.Create(filepath.Join(outDir, base+"_clans.tsv"))
	if err != nil {
		return err
	}
	err = netio.WriteClanTable(clanFile, r.Families, r.Clans)
	clanFile.Close()
	return err
}
