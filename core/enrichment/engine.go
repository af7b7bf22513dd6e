package enrichment

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/calderabio/regulon/core/errors"
	"github.com/calderabio/regulon/core/modules"
	"github.com/calderabio/regulon/core/ranking"
)

// Annotation marks how a motif's known TF set relates to the gene set's TF.
type Annotation string

const (
	AnnotationNone     Annotation = ""
	AnnotationInferred Annotation = "*"
	AnnotationDirect   Annotation = "**"
)

// Record is one scored (gene set, motif) pair that cleared the NES cutoff.
type Record struct {
	TF         string
	Method     modules.Method
	Motif      string
	Database   string
	AUC        float64
	NES        float64
	Annotation Annotation
}

// GeneSet renders the gene-set identifier the record was scored for.
func (r Record) GeneSet() string { return r.TF + "_" + string(r.Method) }

// Options configures enrichment scoring.
type Options struct {
	// AUCMaxRankFraction bounds the recovery curve at this fraction of the
	// ranked genome.
	AUCMaxRankFraction float64

	// NESCutoff retains only records with NES strictly above it.
	NESCutoff float64
}

// DefaultOptions returns the published defaults.
func DefaultOptions() Options {
	return Options{AUCMaxRankFraction: 0.01, NESCutoff: 3.0}
}

func (o Options) validate() error {
	if o.AUCMaxRankFraction <= 0 || o.AUCMaxRankFraction > 1 {
		return errors.Configf("aucMaxRank fraction %v out of (0, 1]", o.AUCMaxRankFraction)
	}
	if o.NESCutoff < 0 {
		return errors.Configf("NES cutoff %v is negative", o.NESCutoff)
	}
	return nil
}

// Stats counts record attrition through one engine run.
type Stats struct {
	PairsScored  int
	AboveCutoff  int
	SelfMotifs   int
	MissingGenes int
}

func (s *Stats) add(o Stats) {
	s.PairsScored += o.PairsScored
	s.AboveCutoff += o.AboveCutoff
	s.SelfMotifs += o.SelfMotifs
	s.MissingGenes += o.MissingGenes
}

// Engine orchestrates AUC scoring and NES normalization across ranking
// databases. The AUC primitive and the tables are read-only, so databases
// fan out across workers without locking.
type Engine struct {
	anns   *ranking.Annotations
	opts   Options
	logger *slog.Logger
}

// NewEngine validates opts and builds an engine.
func NewEngine(anns *ranking.Annotations, opts Options, logger *slog.Logger) (*Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{anns: anns, opts: opts, logger: logger}, nil
}

// Run scores every module against every motif of every database, in
// parallel over databases, and merges the per-database results once all
// databases have completed. NES normalization is database-relative, so no
// cross-database math happens before the merge point.
func (e *Engine) Run(ctx context.Context, dbs []*ranking.Database, mods []modules.Module) ([]Record, Stats, error) {
	if len(dbs) == 0 {
		return nil, Stats{}, errors.Configf("no ranking databases supplied")
	}

	perDB := make([][]Record, len(dbs))
	perStats := make([]Stats, len(dbs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, db := range dbs {
		g.Go(func() error {
			recs, st, err := e.scoreDatabase(gctx, db, mods)
			if err != nil {
				return err
			}
			perDB[i] = recs
			perStats[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	var merged []Record
	var total Stats
	for i := range dbs {
		merged = append(merged, perDB[i]...)
		total.add(perStats[i])
	}
	e.logger.Info("motif enrichment",
		slog.Int("databases", len(dbs)),
		slog.Int("pairs_scored", total.PairsScored),
		slog.Int("above_cutoff", total.AboveCutoff),
		slog.Int("self_motifs", total.SelfMotifs),
		slog.Int("missing_genes", total.MissingGenes))
	return merged, total, nil
}

// scoreDatabase computes the full AUC pool for one database, z-normalizes
// it into NES values, and keeps annotated records above the cutoff.
func (e *Engine) scoreDatabase(ctx context.Context, db *ranking.Database, mods []modules.Module) ([]Record, Stats, error) {
	maxRank := AUCMaxRank(e.opts.AUCMaxRankFraction, db.TotalGenes())
	motifs := db.Motifs()

	var stats Stats
	type scored struct {
		module int
		motif  string
		auc    float64
	}
	pool := make([]scored, 0, len(mods)*len(motifs))
	aucs := make([]float64, 0, len(mods)*len(motifs))

	for mi, m := range mods {
		if err := ctx.Err(); err != nil {
			return nil, Stats{}, err
		}
		for _, motif := range motifs {
			ranks, missing := db.MemberRanks(motif, m.Genes)
			if missing > 0 {
				stats.MissingGenes += missing
			}
			a := AUC(ranks, maxRank)
			pool = append(pool, scored{module: mi, motif: motif, auc: a})
			aucs = append(aucs, a)
		}
	}
	stats.PairsScored = len(pool)

	mean, std := stat.MeanStdDev(aucs, nil)
	if std == 0 {
		// Degenerate pool, every AUC identical: nothing can clear a
		// positive cutoff.
		std = 1
	}

	var recs []Record
	for _, s := range pool {
		nes := (s.auc - mean) / std
		if nes <= e.opts.NESCutoff {
			continue
		}
		stats.AboveCutoff++
		m := mods[s.module]
		ann := e.annotate(s.motif, m.TF)
		if ann != AnnotationNone {
			stats.SelfMotifs++
		}
		recs = append(recs, Record{
			TF:         m.TF,
			Method:     m.Method,
			Motif:      s.motif,
			Database:   db.Name(),
			AUC:        s.auc,
			NES:        nes,
			Annotation: ann,
		})
	}
	return recs, stats, nil
}

func (e *Engine) annotate(motif, tf string) Annotation {
	switch {
	case e.anns.HasDirect(motif, tf):
		return AnnotationDirect
	case e.anns.HasInferred(motif, tf):
		return AnnotationInferred
	}
	return AnnotationNone
}

// FilterSelfMotifs keeps only records whose motif is annotated, directly or
// by inference, for the gene set's own TF. Only these proceed to pruning.
func FilterSelfMotifs(recs []Record) []Record {
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if r.Annotation != AnnotationNone {
			out = append(out, r)
		}
	}
	return out
}
