package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/calderabio/regulon/core/config"
	"github.com/calderabio/regulon/core/enrichment"
	"github.com/calderabio/regulon/core/gexpr"
	"github.com/calderabio/regulon/core/linklist"
	"github.com/calderabio/regulon/core/modules"
	"github.com/calderabio/regulon/core/pruning"
	"github.com/calderabio/regulon/core/ranking"
	"github.com/calderabio/regulon/core/regulons"
)

// Inputs are the external artifacts a run consumes. All are read-only.
type Inputs struct {
	Weights     *gexpr.WeightMatrix
	Correlation *gexpr.CorrelationMatrix
	Databases   []*ranking.Database
	Annotations *ranking.Annotations

	// KeepTF optionally restricts the run to regulators it accepts.
	KeepTF func(tf string) bool
}

// Outputs are the artifacts of a completed run. Each stage output is built
// once and never mutated by later stages.
type Outputs struct {
	RunID      string
	Links      []linklist.Link
	ModuleRows []modules.Row
	Modules    []modules.Module
	Enrichment []enrichment.Record
	SelfMotifs []enrichment.Record
	Pruned     []pruning.Result
	TargetInfo []regulons.TargetInfo
	Regulons   []regulons.Regulon
	Incidence  *regulons.IncidenceMatrix
	Report     Report
}

// Report carries the attrition counts of every filtering stage so
// over-aggressive thresholds are diagnosable from the output alone.
type Report struct {
	RunID            string `json:"run_id"`
	MatrixCells      int    `json:"matrix_cells"`
	LinksKept        int    `json:"links_kept"`
	ModuleRows       int    `json:"module_rows"`
	RowsActivating   int    `json:"rows_activating"`
	ModulesBefore    int    `json:"modules_before_size_filter"`
	ModulesDropped   int    `json:"modules_dropped"`
	ModulesKept      int    `json:"modules_kept"`
	PairsScored      int    `json:"motif_pairs_scored"`
	MotifsAboveNES   int    `json:"motifs_above_nes_cutoff"`
	SelfMotifs       int    `json:"self_motifs"`
	PrunedRows       int    `json:"pruned_rows"`
	EmptyEnrichments int    `json:"empty_enrichments"`
	MissingGenes     int    `json:"missing_genes"`
	TargetPairs      int    `json:"target_pairs"`
	WeightJoinMisses int    `json:"weight_join_misses"`
	RegulonCount     int    `json:"regulons"`
}

// Run executes the full inference pipeline. Fatal taxonomy errors abort
// immediately; data-quality issues are counted in the report.
func Run(ctx context.Context, cfg *config.Config, in Inputs, store ArtifactStore, logger *slog.Logger) (*Outputs, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		store = nullStore{}
	}
	if in.Weights == nil || in.Correlation == nil {
		return nil, fmt.Errorf("pipeline inputs missing weight or correlation matrix")
	}

	out := &Outputs{RunID: uuid.NewString()}
	out.Report.RunID = out.RunID
	if err := store.Begin(out.RunID); err != nil {
		return nil, fmt.Errorf("begin artifact store: %w", err)
	}
	logger.Info("pipeline run starting", slog.String("run_id", out.RunID))

	rows, cols := in.Weights.Dims()
	out.Report.MatrixCells = rows * cols

	links, err := linklist.Build(in.Weights, cfg.Modules.MinWeight)
	if err != nil {
		return nil, err
	}
	if in.KeepTF != nil {
		kept := links[:0:0]
		for _, l := range links {
			if in.KeepTF(l.TF) {
				kept = append(kept, l)
			}
		}
		links = kept
	}
	out.Links = links
	out.Report.LinksKept = len(links)
	logger.Info("link list built",
		slog.Int("matrix_cells", out.Report.MatrixCells),
		slog.Int("links_kept", len(links)))
	if err := store.Put("links", links); err != nil {
		return nil, err
	}

	moduleRows, err := modules.Construct(links, cfg.ModuleOptions())
	if err != nil {
		return nil, err
	}
	out.ModuleRows = moduleRows
	out.Report.ModuleRows = len(moduleRows)

	tagged, err := modules.SplitByCorrelation(moduleRows, in.Correlation,
		cfg.Modules.CorrelationThreshold.Positive, cfg.Modules.CorrelationThreshold.Negative)
	if err != nil {
		return nil, err
	}
	mods, selStats := modules.SelectActivating(tagged, cfg.Modules.MinModuleSize, logger)
	out.Modules = mods
	out.Report.RowsActivating = selStats.RowsActivating
	out.Report.ModulesBefore = selStats.ModulesBefore
	out.Report.ModulesDropped = selStats.ModulesDropped
	out.Report.ModulesKept = selStats.ModulesKept
	if err := store.Put("modules", mods); err != nil {
		return nil, err
	}

	engine, err := enrichment.NewEngine(in.Annotations, cfg.EnrichmentOptions(), logger)
	if err != nil {
		return nil, err
	}
	records, enrStats, err := engine.Run(ctx, in.Databases, mods)
	if err != nil {
		return nil, err
	}
	out.Enrichment = records
	out.SelfMotifs = enrichment.FilterSelfMotifs(records)
	out.Report.PairsScored = enrStats.PairsScored
	out.Report.MotifsAboveNES = enrStats.AboveCutoff
	out.Report.SelfMotifs = len(out.SelfMotifs)
	out.Report.MissingGenes += enrStats.MissingGenes
	if err := store.Put("enrichment", records); err != nil {
		return nil, err
	}

	pruner, err := pruning.NewPruner(cfg.PruningOptions(), logger)
	if err != nil {
		return nil, err
	}
	pruned, pruneStats, err := pruner.Run(ctx, out.SelfMotifs, mods, in.Databases)
	if err != nil {
		return nil, err
	}
	out.Pruned = pruned
	out.Report.PrunedRows = pruneStats.Rows
	out.Report.EmptyEnrichments = pruneStats.EmptyResults
	out.Report.MissingGenes += pruneStats.MissingGenes
	if err := store.Put("pruned", pruned); err != nil {
		return nil, err
	}

	incidenceRows := regulons.Explode(pruned)
	infos, mergeStats := regulons.Merge(incidenceRows, linklist.Index(links), logger)
	out.TargetInfo = infos
	out.Report.TargetPairs = mergeStats.Pairs
	out.Report.WeightJoinMisses = mergeStats.JoinMisses
	if err := store.Put("target_info", infos); err != nil {
		return nil, err
	}

	out.Regulons = regulons.Assemble(infos)
	out.Incidence = regulons.Incidence(out.Regulons)
	out.Report.RegulonCount = len(out.Regulons)
	if err := store.Put("regulons", out.Regulons); err != nil {
		return nil, err
	}
	if err := store.Put("report", out.Report); err != nil {
		return nil, err
	}

	logger.Info("pipeline run complete",
		slog.String("run_id", out.RunID),
		slog.Int("regulons", out.Report.RegulonCount),
		slog.Int("target_pairs", out.Report.TargetPairs))
	return out, nil
}
