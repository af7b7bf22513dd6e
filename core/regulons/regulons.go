// Package regulons merges per-gene motif evidence into final regulons: one
// strict and one extended target set per TF, plus the binary incidence
// matrix over them.
package regulons

import (
	"log/slog"
	"slices"

	"github.com/calderabio/regulon/core/enrichment"
	"github.com/calderabio/regulon/core/linklist"
	"github.com/calderabio/regulon/core/pruning"
)

// IncidenceRow is one (TF, motif, gene) observation of the incidence list,
// the one-row-per-gene explosion of pruned enrichment results.
type IncidenceRow struct {
	TF         string
	Motif      string
	Gene       string
	NES        float64
	Annotation enrichment.Annotation
}

// Explode unnests every pruned result into one row per enriched gene.
// Results with empty gene sets contribute nothing.
func Explode(results []pruning.Result) []IncidenceRow {
	var rows []IncidenceRow
	for _, res := range results {
		for _, g := range res.EnrichedGenes {
			rows = append(rows, IncidenceRow{
				TF:         res.TF,
				Motif:      res.Motif,
				Gene:       g,
				NES:        res.NES,
				Annotation: res.Annotation,
			})
		}
	}
	return rows
}

// TargetInfo is the merged evidence for one (TF, gene) pair.
type TargetInfo struct {
	TF          string
	Gene        string
	NMotifs     int
	BestMotif   string
	NES         float64
	DirectAnnot bool
	// Weight carries the upstream importance weight when the pair appears
	// in the link list; nil otherwise.
	Weight *float64
}

// MergeStats counts weight-join misses.
type MergeStats struct {
	Pairs      int
	JoinMisses int
}

// Merge groups the incidence list by (TF, gene) and applies the tie-break:
// when any row for the pair carries direct annotation, only direct rows
// compete; the winner is the remaining row with maximum NES. NMotifs counts
// every motif row for the pair regardless of tier. weights may be nil to
// skip the join.
func Merge(rows []IncidenceRow, weights map[linklist.Pair]float64, logger *slog.Logger) ([]TargetInfo, MergeStats) {
	if logger == nil {
		logger = slog.Default()
	}
	type key struct{ tf, gene string }
	grouped := make(map[key][]IncidenceRow)
	var order []key
	for _, r := range rows {
		k := key{tf: r.TF, gene: r.Gene}
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], r)
	}
	slices.SortFunc(order, func(a, b key) int {
		if a.tf != b.tf {
			if a.tf < b.tf {
				return -1
			}
			return 1
		}
		switch {
		case a.gene < b.gene:
			return -1
		case a.gene > b.gene:
			return 1
		}
		return 0
	})

	var stats MergeStats
	infos := make([]TargetInfo, 0, len(order))
	for _, k := range order {
		group := grouped[k]
		hasDirect := false
		for _, r := range group {
			if r.Annotation == enrichment.AnnotationDirect {
				hasDirect = true
				break
			}
		}
		var winner *IncidenceRow
		for i := range group {
			r := &group[i]
			if hasDirect && r.Annotation != enrichment.AnnotationDirect {
				continue
			}
			if winner == nil || r.NES > winner.NES {
				winner = r
			}
		}

		info := TargetInfo{
			TF:          k.tf,
			Gene:        k.gene,
			NMotifs:     len(group),
			BestMotif:   winner.Motif,
			NES:         winner.NES,
			DirectAnnot: hasDirect,
		}
		if weights != nil {
			if w, ok := weights[linklist.Pair{TF: k.tf, Target: k.gene}]; ok {
				info.Weight = &w
			} else {
				stats.JoinMisses++
			}
		}
		infos = append(infos, info)
	}
	stats.Pairs = len(infos)
	logger.Info("regulon target merge",
		slog.Int("pairs", stats.Pairs),
		slog.Int("weight_join_misses", stats.JoinMisses))
	return infos, stats
}

// Regulon is a named final target set.
type Regulon struct {
	Name  string
	TF    string
	Genes []string // sorted, unique
}

// ExtendedSuffix names the permissive regulon variant.
const ExtendedSuffix = "_extended"

// Assemble builds the final regulons from merged target info. The strict
// regulon of a TF holds its direct-annotated genes; the extended regulon is
// the union of the strict set and the inferred-only genes. A TF with no
// direct genes gets no strict regulon but still gets an extended one.
func Assemble(infos []TargetInfo) []Regulon {
	direct := make(map[string]map[string]struct{})
	all := make(map[string]map[string]struct{})
	for _, info := range infos {
		if _, ok := all[info.TF]; !ok {
			all[info.TF] = make(map[string]struct{})
			direct[info.TF] = make(map[string]struct{})
		}
		all[info.TF][info.Gene] = struct{}{}
		if info.DirectAnnot {
			direct[info.TF][info.Gene] = struct{}{}
		}
	}

	tfs := make([]string, 0, len(all))
	for tf := range all {
		tfs = append(tfs, tf)
	}
	slices.Sort(tfs)

	var regs []Regulon
	for _, tf := range tfs {
		if len(direct[tf]) > 0 {
			regs = append(regs, Regulon{Name: tf, TF: tf, Genes: sortedKeys(direct[tf])})
		}
		regs = append(regs, Regulon{Name: tf + ExtendedSuffix, TF: tf, Genes: sortedKeys(all[tf])})
	}
	return regs
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
