// Package ranking holds the genome-wide motif ranking databases and the
// motif-to-TF annotation tables the enrichment stages score against, plus
// the organism registry resolving which tables a run uses.
package ranking

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Database is one search-space ranking table: for every motif, the rank of
// every gene in the genome (lower is stronger). Read-only after load and
// safe for concurrent use.
type Database struct {
	name    string
	genes   []string
	geneIdx map[string]int
	motifs  []string
	// ranks is column-major: one rank slice per motif, aligned with genes.
	ranks map[string][]int32
}

// Name returns the database tag carried through enrichment rows.
func (d *Database) Name() string { return d.name }

// TotalGenes returns the number of ranked genes.
func (d *Database) TotalGenes() int { return len(d.genes) }

// Motifs returns the motif identifiers in column order.
func (d *Database) Motifs() []string { return d.motifs }

// MotifRanks returns the per-gene ranks for motif, aligned with Genes.
func (d *Database) MotifRanks(motif string) ([]int32, bool) {
	r, ok := d.ranks[motif]
	return r, ok
}

// GeneRank returns the rank of gene under motif.
func (d *Database) GeneRank(motif, gene string) (int32, bool) {
	col, ok := d.ranks[motif]
	if !ok {
		return 0, false
	}
	i, ok := d.geneIdx[gene]
	if !ok {
		return 0, false
	}
	return col[i], true
}

// MemberRanks collects the ranks of the given genes under motif, skipping
// genes absent from the database and reporting how many were skipped.
func (d *Database) MemberRanks(motif string, genes []string) (ranks []int32, missing int) {
	col, ok := d.ranks[motif]
	if !ok {
		return nil, len(genes)
	}
	ranks = make([]int32, 0, len(genes))
	for _, g := range genes {
		i, ok := d.geneIdx[g]
		if !ok {
			missing++
			continue
		}
		ranks = append(ranks, col[i])
	}
	return ranks, missing
}

// NewDatabase builds a ranking database from parallel motif rank columns.
func NewDatabase(name string, genes []string, ranks map[string][]int32) (*Database, error) {
	if len(genes) == 0 || len(ranks) == 0 {
		return nil, fmt.Errorf("ranking database %s is empty", name)
	}
	motifs := make([]string, 0, len(ranks))
	for m, col := range ranks {
		if len(col) != len(genes) {
			return nil, fmt.Errorf("ranking database %s: motif %s has %d ranks for %d genes", name, m, len(col), len(genes))
		}
		motifs = append(motifs, m)
	}
	slices.Sort(motifs)
	idx := make(map[string]int, len(genes))
	for i, g := range genes {
		idx[g] = i
	}
	return &Database{name: name, genes: genes, geneIdx: idx, motifs: motifs, ranks: ranks}, nil
}

// LoadDatabase reads a gene-by-motif rank table: header row of motif names,
// one gene per data row. Files ending in .gz are decompressed.
func LoadDatabase(name, path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load ranking database %s: %w", name, err)
	}
	defer f.Close()

	var rd io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("load ranking database %s: %w", name, err)
		}
		defer gz.Close()
		rd = gz
	}

	cr := csv.NewReader(rd)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ranking database %s: read header: %w", name, err)
	}
	motifs := header[1:]
	cols := make(map[string][]int32, len(motifs))
	for _, m := range motifs {
		cols[m] = nil
	}

	var genes []string
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ranking database %s: %w", name, err)
		}
		if len(rec) != len(motifs)+1 {
			return nil, fmt.Errorf("ranking database %s line %d: %d fields, want %d", name, line, len(rec), len(motifs)+1)
		}
		genes = append(genes, rec[0])
		for i, s := range rec[1:] {
			v, err := strconv.ParseInt(s, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("ranking database %s line %d: %w", name, line, err)
			}
			m := motifs[i]
			cols[m] = append(cols[m], int32(v))
		}
	}
	return NewDatabase(name, genes, cols)
}
