// Package pruning determines which member genes of an enriched module are
// actually recovered by the motif's ranking, using a leading-edge
// maximization over the recovery curve.
package pruning

import (
	"context"
	"log/slog"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/calderabio/regulon/core/enrichment"
	"github.com/calderabio/regulon/core/errors"
	"github.com/calderabio/regulon/core/modules"
	"github.com/calderabio/regulon/core/ranking"
)

// Result is an enrichment record augmented with the recovered member genes,
// ordered by rank under the motif. A record recovering nothing keeps an
// empty, non-nil slice.
type Result struct {
	enrichment.Record
	EnrichedGenes []string
}

// Options configures the pruner.
type Options struct {
	// MaxRank bounds the leading-edge search.
	MaxRank int
}

// DefaultOptions returns the published default.
func DefaultOptions() Options {
	return Options{MaxRank: 5000}
}

// Stats counts pruning outcomes.
type Stats struct {
	Rows         int
	EmptyResults int
	MissingGenes int
}

func (s *Stats) add(o Stats) {
	s.Rows += o.Rows
	s.EmptyResults += o.EmptyResults
	s.MissingGenes += o.MissingGenes
}

// Pruner recovers significant genes for self-motif enrichment records.
type Pruner struct {
	opts   Options
	logger *slog.Logger
}

// NewPruner validates opts and builds a pruner.
func NewPruner(opts Options, logger *slog.Logger) (*Pruner, error) {
	if opts.MaxRank <= 0 {
		return nil, errors.Configf("pruning maxRank %d must be positive", opts.MaxRank)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{opts: opts, logger: logger}, nil
}

// Run prunes all records against their databases, fanning out per database.
// Records are grouped by their Database tag and each group is matched to
// the database carrying that name; a group with no matching database is a
// pipeline programming error.
func (p *Pruner) Run(ctx context.Context, recs []enrichment.Record, mods []modules.Module, dbs []*ranking.Database) ([]Result, Stats, error) {
	byName := make(map[string]*ranking.Database, len(dbs))
	for _, db := range dbs {
		byName[db.Name()] = db
	}
	moduleIdx := indexModules(mods)

	groups := make(map[string][]enrichment.Record)
	for _, r := range recs {
		groups[r.Database] = append(groups[r.Database], r)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		if _, ok := byName[name]; !ok {
			return nil, Stats{}, errors.DatabaseMismatchf("records tagged %q have no matching ranking database", name)
		}
		names = append(names, name)
	}
	slices.Sort(names)

	perGroup := make([][]Result, len(names))
	perStats := make([]Stats, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() error {
			res, st, err := p.pruneGroup(gctx, groups[name], moduleIdx, byName[name])
			if err != nil {
				return err
			}
			perGroup[i] = res
			perStats[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	var out []Result
	var total Stats
	for i := range names {
		out = append(out, perGroup[i]...)
		total.add(perStats[i])
	}
	p.logger.Info("significant-gene pruning",
		slog.Int("rows", total.Rows),
		slog.Int("empty_results", total.EmptyResults),
		slog.Int("missing_genes", total.MissingGenes))
	return out, total, nil
}

func (p *Pruner) pruneGroup(ctx context.Context, recs []enrichment.Record, moduleIdx map[string]modules.Module, db *ranking.Database) ([]Result, Stats, error) {
	var stats Stats
	out := make([]Result, 0, len(recs))
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return nil, Stats{}, err
		}
		if r.Database != db.Name() {
			return nil, Stats{}, errors.DatabaseMismatchf("record tagged %q pruned against database %q", r.Database, db.Name())
		}
		m, ok := moduleIdx[r.GeneSet()]
		if !ok {
			return nil, Stats{}, errors.DatabaseMismatchf("record %s has no originating module", r.GeneSet())
		}

		genes, missing := p.leadingEdge(db, r.Motif, m.Genes)
		stats.Rows++
		stats.MissingGenes += missing
		if len(genes) == 0 {
			stats.EmptyResults++
			p.logger.Warn("no genes recovered",
				slog.String("gene_set", r.GeneSet()),
				slog.String("motif", r.Motif),
				slog.String("database", db.Name()))
		}
		out = append(out, Result{Record: r, EnrichedGenes: genes})
	}
	return out, stats, nil
}

type rankedGene struct {
	gene string
	rank int32
}

// leadingEdge walks the module's members in rank order and keeps everyone
// at or before the maximum of the running hit count minus the expected
// uniform recovery. Evaluating the statistic only at member positions is an
// approximation of the full curve scan that large gene sets need for speed.
func (p *Pruner) leadingEdge(db *ranking.Database, motif string, memberGenes []string) (genes []string, missing int) {
	members := make([]rankedGene, 0, len(memberGenes))
	for _, g := range memberGenes {
		r, ok := db.GeneRank(motif, g)
		if !ok {
			missing++
			continue
		}
		if r >= 1 && int(r) <= p.opts.MaxRank {
			members = append(members, rankedGene{gene: g, rank: r})
		}
	}
	genes = []string{}
	if len(members) == 0 {
		return genes, missing
	}
	slices.SortFunc(members, func(a, b rankedGene) int {
		switch {
		case a.rank < b.rank:
			return -1
		case a.rank > b.rank:
			return 1
		}
		return 0
	})

	perRank := float64(len(members)) / float64(p.opts.MaxRank)
	best, bestAt := -1.0, -1
	for i, m := range members {
		score := float64(i+1) - float64(m.rank)*perRank
		if score > best {
			best, bestAt = score, i
		}
	}
	for _, m := range members[:bestAt+1] {
		genes = append(genes, m.gene)
	}
	return genes, missing
}

func indexModules(mods []modules.Module) map[string]modules.Module {
	idx := make(map[string]modules.Module, len(mods))
	for _, m := range mods {
		idx[m.Name()] = m
	}
	return idx
}
