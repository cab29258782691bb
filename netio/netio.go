// Copyright ©2024 The bgcscape Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package netio reads domain tables and aligned-sequence FASTA blocks
// and writes the edge, family and clan TSV outputs (spec.md §6).
package netio

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/biogo/store/interval"

	"github.com/kortschak/bgcscape/clan"
	"github.com/kortschak/bgcscape/dispatch"
	"github.com/kortschak/bgcscape/domainstore"
	"github.com/kortschak/bgcscape/family"
)

// DomainRow is one raw domain-prediction hit, as described in spec.md §6:
// (score, gene_id, env_from, env_to, pfam_id, domain_name, gene_start,
// gene_end, gene_label).
type DomainRow struct {
	Score      float64
	GeneID     string
	EnvFrom    int
	EnvTo      int
	PfamID     string
	DomainName string
	GeneStart  int
	GeneEnd    int
	GeneLabel  string
}

// ReadDomainTable parses one cluster's tab-separated domain hits.
// Blank lines and lines starting with "#" are skipped.
func ReadDomainTable(r io.Reader) ([]DomainRow, error) {
	var rows []DomainRow
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 9 {
			return nil, fmt.Errorf("netio: malformed domain table row (want 9 fields, got %d): %q", len(fields), line)
		}
		row, err := parseDomainRow(fields)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func parseDomainRow(f []string) (DomainRow, error) {
	score, err := strconv.ParseFloat(f[0], 64)
	if err != nil {
		return DomainRow{}, fmt.Errorf("netio: bad score %q: %w", f[0], err)
	}
	envFrom, err := strconv.Atoi(f[2])
	if err != nil {
		return DomainRow{}, fmt.Errorf("netio: bad env_from %q: %w", f[2], err)
	}
	envTo, err := strconv.Atoi(f[3])
	if err != nil {
		return DomainRow{}, fmt.Errorf("netio: bad env_to %q: %w", f[3], err)
	}
	geneStart, err := strconv.Atoi(f[6])
	if err != nil {
		return DomainRow{}, fmt.Errorf("netio: bad gene_start %q: %w", f[6], err)
	}
	geneEnd, err := strconv.Atoi(f[7])
	if err != nil {
		return DomainRow{}, fmt.Errorf("netio: bad gene_end %q: %w", f[7], err)
	}
	return DomainRow{
		Score:      score,
		GeneID:     f[1],
		EnvFrom:    envFrom,
		EnvTo:      envTo,
		PfamID:     f[4],
		DomainName: f[5],
		GeneStart:  geneStart,
		GeneEnd:    geneEnd,
		GeneLabel:  f[8],
	}, nil
}

// domainHit adapts a DomainRow into the interval.IntInterface biogo/store
// needs, one tree per gene — the same shape as cmd/rinse/rinse.go's
// gffInterval, here scoped to a gene's envelope coordinates instead of a
// reference sequence's feature coordinates.
type domainHit struct {
	DomainRow
	id uintptr
}

func (h domainHit) ID() uintptr { return h.id }

func (h domainHit) Range() interval.IntRange {
	return interval.IntRange{Start: h.EnvFrom, End: h.EnvTo}
}

func (h domainHit) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing, as in cmd/rinse/rinse.go.
	return h.EnvTo > b.Start && h.EnvFrom < b.End
}

// FilterOverlaps drops the lower-scoring of any two hits on the same
// gene that overlap by at least 0.1 of the shorter hit's length
// (spec.md §6). Equal-scoring overlaps are both kept; ties are rare
// enough in practice not to warrant an arbitrary tie-break here.
func FilterOverlaps(rows []DomainRow) []DomainRow {
	byGene := make(map[string][]DomainRow)
	for _, r := range rows {
		byGene[r.GeneID] = append(byGene[r.GeneID], r)
	}

	var kept []DomainRow
	for _, hits := range byGene {
		kept = append(kept, filterGeneOverlaps(hits)...)
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].GeneStart != kept[j].GeneStart {
			return kept[i].GeneStart < kept[j].GeneStart
		}
		return kept[i].EnvFrom < kept[j].EnvFrom
	})
	return kept
}

func filterGeneOverlaps(hits []DomainRow) []DomainRow {
	tree := &interval.IntTree{}
	nodes := make([]domainHit, len(hits))
	for i, h := range hits {
		nodes[i] = domainHit{DomainRow: h, id: uintptr(i)}
		tree.Insert(nodes[i], true)
	}
	tree.AdjustRanges()

	excluded := make([]bool, len(hits))
	for i, h := range nodes {
		if excluded[i] {
			continue
		}
		for _, raw := range tree.Get(h) {
			o := raw.(domainHit)
			j := int(o.id)
			if j == i || excluded[j] {
				continue
			}
			if !overlapsEnough(h.DomainRow, o.DomainRow) {
				continue
			}
			if o.Score > h.Score {
				excluded[i] = true
				break
			}
			if h.Score > o.Score {
				excluded[j] = true
			}
		}
	}

	var out []DomainRow
	for i, h := range hits {
		if !excluded[i] {
			out = append(out, h)
		}
	}
	return out
}

func overlapsEnough(a, b DomainRow) bool {
	lo, hi := a.EnvFrom, a.EnvTo
	if b.EnvFrom > lo {
		lo = b.EnvFrom
	}
	if b.EnvTo < hi {
		hi = b.EnvTo
	}
	overlap := hi - lo
	if overlap <= 0 {
		return false
	}
	shorter := a.EnvTo - a.EnvFrom
	if bl := b.EnvTo - b.EnvFrom; bl < shorter {
		shorter = bl
	}
	if shorter <= 0 {
		return false
	}
	return float64(overlap)/float64(shorter) >= 0.1
}

// GeneMeta carries the one piece of per-gene annotation that neither a
// domain table row nor its gene_label can supply: the core-biosynthetic
// flag. GenBank ingestion is out of scope (spec.md §1 Non-goals); callers
// derive it from whatever upstream annotation source they use, keyed by
// gene_id. A gene absent from the map is treated as not core.
type GeneMeta struct {
	Core bool
}

// parseGeneLabel splits the original collaborator's "id:strand"
// gene_label convention (original_source/functions.py's row[9]) into a
// bare gene id and an orientation. Labels without a recognised ":+"/":-"
// suffix are returned as-is with ok=false.
func parseGeneLabel(label string) (id string, orientation int8, ok bool) {
	switch {
	case strings.HasSuffix(label, ":+"):
		return strings.TrimSuffix(label, ":+"), 1, true
	case strings.HasSuffix(label, ":-"):
		return strings.TrimSuffix(label, ":-"), -1, true
	default:
		return label, 1, false
	}
}

// BuildClusterInput groups already-filtered domain rows by gene, orders
// genes by gene_start, and assembles the domainstore.ClusterInput that
// spec.md §3 requires. Within a gene, hits are ordered by env_from; the
// Domain Store itself (not this function) is responsible for reversing
// that order when a gene's orientation is -1 when building seed tokens.
// Gene orientation is read from each gene's gene_label suffix
// (parseGeneLabel); genes without a recognised suffix default to +1.
func BuildClusterInput(name string, rows []DomainRow, genes map[string]GeneMeta, class string, contigEdge bool, group string) (domainstore.ClusterInput, error) {
	type gene struct {
		start       int
		orientation int8
		hits        []DomainRow
	}
	byGene := make(map[string]*gene)
	var order []string
	for _, r := range rows {
		_, orientation, _ := parseGeneLabel(r.GeneLabel)
		g, ok := byGene[r.GeneID]
		if !ok {
			g = &gene{start: r.GeneStart, orientation: orientation}
			byGene[r.GeneID] = g
			order = append(order, r.GeneID)
		}
		g.hits = append(g.hits, r)
	}
	sort.Slice(order, func(i, j int) bool {
		return byGene[order[i]].start < byGene[order[j]].start
	})

	in := domainstore.ClusterInput{Name: name, Class: class, ContigEdge: contigEdge, Group: group}
	for _, id := range order {
		g := byGene[id]
		sort.Slice(g.hits, func(i, j int) bool { return g.hits[i].EnvFrom < g.hits[j].EnvFrom })
		in.DCG = append(in.DCG, len(g.hits))
		in.Orientation = append(in.Orientation, g.orientation)
		in.Core = append(in.Core, genes[id].Core)
		for _, h := range g.hits {
			in.DomainList = append(in.DomainList, h.PfamID)
			in.Instances = append(in.Instances, fmt.Sprintf("%s/%s/%d-%d", name, h.PfamID, h.EnvFrom, h.EnvTo))
		}
	}
	return in, nil
}

// ReadAlignedSequences parses a FASTA block of per-domain-instance
// aligned sequences (gap characters included), keyed by record name as
// the domain-instance tag, and records them into store.
func ReadAlignedSequences(r io.Reader, store *domainstore.Store) error {
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.Protein)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		store.SetAlignedSequence(s.Name(), s.Seq.String())
	}
	return sc.Error()
}

// ReadRawSequences parses the unaligned fallback sequences used when an
// instance's aligned sequence is missing (spec.md §7 MissingAlignment).
func ReadRawSequences(r io.Reader, store *domainstore.Store) error {
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.Protein)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		store.SetRawSequence(s.Name(), s.Seq.String())
	}
	return sc.Error()
}

var edgeTableHeader = []string{
	"Clustername 1", "Clustername 2", "Raw distance", "Squared similarity",
	"Jaccard index", "DSS index", "Adjacency index", "raw DSS non-anchor",
	"raw DSS anchor", "Non-anchor domains", "Anchor domains",
	"Combined group", "Shared group",
}

// WriteEdgeTable writes the per-(class, cutoff) edge table of spec.md §6.
// Only rows with distance < cutoff are emitted. When includeSingletons is
// set, every member of members that never appears in an emitted row gets
// the sentinel self-edge row.
func WriteEdgeTable(w io.Writer, rows []dispatch.Row, members []string, groupOf map[string]string, cutoff float64, includeSingletons bool) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, strings.Join(edgeTableHeader, "\t"))

	connected := make(map[string]bool, len(members))
	for _, r := range rows {
		if r.Distance >= cutoff {
			continue
		}
		connected[r.A] = true
		connected[r.B] = true
		sim := 1 - r.Distance
		writeEdgeRow(bw, r.A, r.B, r.Distance, sim*sim, r.Jaccard, r.DSS, r.AI,
			r.DSSNonAnchor, r.DSSAnchor, r.S, r.SAnchor,
			combinedGroup(groupOf[r.A], groupOf[r.B]), sharedGroup(groupOf[r.A], groupOf[r.B]))
	}

	if includeSingletons {
		for _, m := range members {
			if connected[m] {
				continue
			}
			writeEdgeRow(bw, m, m, 0, 1, 1, 1, 1, 0, 0, 1, 1, "", "")
		}
	}
	return bw.Flush()
}

func writeEdgeRow(w *bufio.Writer, a, b string, dist, sq, j, dss, ai, dssNA, dssA, s, sAnchor float64, combined, shared string) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		a, b,
		formatFloat(dist), formatFloat(sq), formatFloat(j), formatFloat(dss), formatFloat(ai),
		formatFloat(dssNA), formatFloat(dssA), formatFloat(s), formatFloat(sAnchor),
		combined, shared)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// combinedGroup implements spec.md §6's "sorted A - B (or the non-empty
// one, or NA)".
func combinedGroup(a, b string) string {
	switch {
	case a == "" && b == "":
		return "NA"
	case a == "":
		return b
	case b == "":
		return a
	case a == b:
		return a
	}
	if a > b {
		a, b = b, a
	}
	return a + " - " + b
}

// sharedGroup implements spec.md §6's "the group string iff both equal,
// else empty".
func sharedGroup(a, b string) string {
	if a != "" && a == b {
		return a
	}
	return ""
}

// WriteFamilyTable writes the per-(class, cutoff) family assignment file
// of spec.md §6.
func WriteFamilyTable(w io.Writer, assign family.Assignment) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "#BGC Name\tFamily Number")
	names := sortedKeys(assign)
	for _, name := range names {
		fmt.Fprintf(bw, "%s\t%d\n", name, assign[name])
	}
	return bw.Flush()
}

// WriteClanTable writes the clan/family assignment file of spec.md §6,
// emitted only when clan mode is on and the cutoff matches the clan
// classification cutoff.
func WriteClanTable(w io.Writer, famAssign family.Assignment, clanAssign clan.Assignment) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "#BGC Name\tClan Number\tFamily Number")
	names := sortedKeys(famAssign)
	for _, name := range names {
		fam := famAssign[name]
		fmt.Fprintf(bw, "%s\t%d\t%d\n", name, clanAssign[fam], fam)
	}
	return bw.Flush()
}

func sortedKeys(assign family.Assignment) []string {
	names := make([]string, 0, len(assign))
	for name := range assign {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
