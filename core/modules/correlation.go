package modules

import (
	"log/slog"
	"slices"

	"github.com/calderabio/regulon/core/gexpr"
)

// CorrelatedRow is a module row tagged with its correlation sign.
type CorrelatedRow struct {
	Row
	Corr int // +1, -1 or 0
}

// SplitByCorrelation tags every module row with the sign of the
// TF-target correlation. The sign is elementwise: it depends only on the
// pair, never on the method or weight.
func SplitByCorrelation(rows []Row, cm *gexpr.CorrelationMatrix, posThresh, negThresh float64) ([]CorrelatedRow, error) {
	out := make([]CorrelatedRow, 0, len(rows))
	for _, r := range rows {
		sign, err := cm.Sign(r.TF, r.Target, posThresh, negThresh)
		if err != nil {
			return nil, err
		}
		out = append(out, CorrelatedRow{Row: r, Corr: sign})
	}
	return out, nil
}

// SelectionStats counts module attrition through activating selection.
type SelectionStats struct {
	RowsIn         int
	RowsActivating int
	ModulesBefore  int
	ModulesDropped int
	ModulesKept    int
}

// SelectActivating keeps positively correlated rows, deduplicates targets
// per (TF, method) pair, includes each TF as a target of its own module to
// capture self-regulation, and drops gene sets below minSize. Dropped
// modules are counted and logged, not errors.
func SelectActivating(rows []CorrelatedRow, minSize int, logger *slog.Logger) ([]Module, SelectionStats) {
	if logger == nil {
		logger = slog.Default()
	}
	stats := SelectionStats{RowsIn: len(rows)}

	type key struct {
		tf     string
		method Method
	}
	sets := make(map[key]map[string]struct{})
	for _, r := range rows {
		if r.Corr != 1 {
			continue
		}
		stats.RowsActivating++
		k := key{tf: r.TF, method: r.Method}
		set, ok := sets[k]
		if !ok {
			set = make(map[string]struct{})
			sets[k] = set
		}
		set[r.Target] = struct{}{}
	}

	stats.ModulesBefore = len(sets)
	mods := make([]Module, 0, len(sets))
	for k, set := range sets {
		set[k.tf] = struct{}{} // self-regulation capture
		if len(set) < minSize {
			stats.ModulesDropped++
			logger.Warn("module below minimum size, dropped",
				slog.String("tf", k.tf),
				slog.String("method", string(k.method)),
				slog.Int("genes", len(set)),
				slog.Int("min_size", minSize))
			continue
		}
		genes := make([]string, 0, len(set))
		for g := range set {
			genes = append(genes, g)
		}
		slices.Sort(genes)
		mods = append(mods, Module{TF: k.tf, Method: k.method, Genes: genes})
	}
	sortModules(mods)
	stats.ModulesKept = len(mods)

	logger.Info("activating module selection",
		slog.Int("rows_in", stats.RowsIn),
		slog.Int("rows_activating", stats.RowsActivating),
		slog.Int("modules_before", stats.ModulesBefore),
		slog.Int("modules_dropped", stats.ModulesDropped),
		slog.Int("modules_kept", stats.ModulesKept))
	return mods, stats
}
