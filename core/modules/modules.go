// Package modules derives candidate TF modules from the link list using six
// complementary heuristics, then restricts them to activating, adequately
// sized gene sets using the correlation matrix.
package modules

import (
	"fmt"
	"slices"

	"github.com/calderabio/regulon/core/errors"
	"github.com/calderabio/regulon/core/linklist"
)

// Method tags the heuristic a module row came from.
type Method string

const (
	MethodW001           Method = "w001"
	MethodW005           Method = "w005"
	MethodTop50          Method = "top50"
	MethodTop5PerTarget  Method = "top5PerTarget"
	MethodTop10PerTarget Method = "top10PerTarget"
	MethodTop50PerTarget Method = "top50PerTarget"
)

// Methods lists all tags in construction order.
func Methods() []Method {
	return []Method{
		MethodW001, MethodW005, MethodTop50,
		MethodTop5PerTarget, MethodTop10PerTarget, MethodTop50PerTarget,
	}
}

// Row is one (TF, target) membership in a method-tagged module.
type Row struct {
	TF     string
	Target string
	Method Method
	Weight float64
}

// Options controls module construction. The link list is assumed already
// floored at the global minimum weight.
type Options struct {
	// SecondaryWeight is the stricter threshold for the w005 family.
	SecondaryWeight float64

	// TopNPerTF is the per-regulator cap for the top50 family.
	TopNPerTF int

	// TopKPerTarget holds the per-target regulator caps, one family each.
	TopKPerTarget []int
}

// DefaultOptions mirror the published method tags.
func DefaultOptions() Options {
	return Options{
		SecondaryWeight: 0.005,
		TopNPerTF:       50,
		TopKPerTarget:   []int{5, 10, 50},
	}
}

func (o Options) validate() error {
	if o.SecondaryWeight <= 0 {
		return errors.Configf("secondary weight %v must be positive", o.SecondaryWeight)
	}
	if o.TopNPerTF <= 0 {
		return errors.Configf("topN per TF %d must be positive", o.TopNPerTF)
	}
	if len(o.TopKPerTarget) == 0 {
		return errors.Configf("no topK-per-target tiers configured")
	}
	for _, k := range o.TopKPerTarget {
		if k <= 0 {
			return errors.Configf("topK-per-target tier %d must be positive", k)
		}
	}
	return nil
}

// Construct produces the flat, method-tagged module table from a
// weight-sorted link list. The six families of the module-building step:
//
//	w001            every floored link, keyed by TF
//	w005            links above the secondary threshold
//	top50           first TopNPerTF links of each TF
//	topKPerTarget   links whose TF ranks in the target's top K regulators
//
// Link order is preserved within each family, so per-TF groups stay sorted
// by descending weight.
func Construct(links []linklist.Link, opts Options) ([]Row, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, errors.Configf("link list is empty")
	}

	var rows []Row

	// w001: identity of the floored input.
	for _, l := range links {
		rows = append(rows, Row{TF: l.TF, Target: l.Target, Method: MethodW001, Weight: l.Weight})
	}

	// w005: subset above the secondary threshold.
	for _, l := range links {
		if l.Weight > opts.SecondaryWeight {
			rows = append(rows, Row{TF: l.TF, Target: l.Target, Method: MethodW005, Weight: l.Weight})
		}
	}

	// top50: the strongest TopNPerTF links per TF. The input is globally
	// weight-sorted, so a running count per TF suffices.
	taken := make(map[string]int)
	for _, l := range links {
		if taken[l.TF] < opts.TopNPerTF {
			taken[l.TF]++
			rows = append(rows, Row{TF: l.TF, Target: l.Target, Method: MethodTop50, Weight: l.Weight})
		}
	}

	// topKPerTarget tiers: group by target, keep each target's strongest K
	// regulators, re-keyed by TF. Targets with fewer than K regulators
	// contribute what they have.
	byTarget := make(map[string][]linklist.Link)
	var targetOrder []string
	for _, l := range links {
		if _, seen := byTarget[l.Target]; !seen {
			targetOrder = append(targetOrder, l.Target)
		}
		byTarget[l.Target] = append(byTarget[l.Target], l)
	}
	for _, k := range opts.TopKPerTarget {
		method := Method(fmt.Sprintf("top%dPerTarget", k))
		for _, tgt := range targetOrder {
			group := byTarget[tgt]
			n := min(k, len(group))
			for _, l := range group[:n] {
				rows = append(rows, Row{TF: l.TF, Target: l.Target, Method: method, Weight: l.Weight})
			}
		}
	}

	return rows, nil
}

// Module is a named activating gene set ready for motif enrichment.
type Module struct {
	TF     string
	Method Method
	Genes  []string // sorted, unique, includes the TF itself
}

// Name renders the gene-set identifier used in enrichment tables.
func (m Module) Name() string {
	return m.TF + "_" + string(m.Method)
}

// GeneSet returns membership as a set.
func (m Module) GeneSet() map[string]struct{} {
	set := make(map[string]struct{}, len(m.Genes))
	for _, g := range m.Genes {
		set[g] = struct{}{}
	}
	return set
}

func sortModules(mods []Module) {
	slices.SortFunc(mods, func(a, b Module) int {
		if c := compareStrings(a.TF, b.TF); c != 0 {
			return c
		}
		return compareStrings(string(a.Method), string(b.Method))
	})
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
