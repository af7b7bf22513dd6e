// Package linklist converts the dense regulator-by-target weight matrix into
// the sparse, weight-sorted link list every downstream stage consumes.
package linklist

import (
	"slices"

	"github.com/calderabio/regulon/core/errors"
	"github.com/calderabio/regulon/core/gexpr"
)

// Link is one regulator-target edge above the weight floor.
type Link struct {
	TF     string
	Target string
	Weight float64
}

// Build flattens w into links with weight strictly above minWeight, sorted
// by descending weight. Ties keep row-major matrix order so repeated runs
// produce identical output.
func Build(w *gexpr.WeightMatrix, minWeight float64) ([]Link, error) {
	if w == nil {
		return nil, errors.Configf("weight matrix is nil")
	}
	if minWeight < 0 {
		return nil, errors.Configf("minWeight %v is negative", minWeight)
	}
	rows, cols := w.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.Configf("weight matrix is empty")
	}

	tfs, targets := w.TFs(), w.Targets()
	links := make([]Link, 0, rows*cols/8)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := w.At(i, j)
			if v > minWeight {
				links = append(links, Link{TF: tfs[i], Target: targets[j], Weight: v})
			}
		}
	}
	slices.SortStableFunc(links, func(a, b Link) int {
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		}
		return 0
	})
	return links, nil
}

// Pair keys a link by its endpoints.
type Pair struct {
	TF     string
	Target string
}

// Index builds a (TF, target) to weight lookup used by the regulon
// assembler's weight join.
func Index(links []Link) map[Pair]float64 {
	idx := make(map[Pair]float64, len(links))
	for _, l := range links {
		idx[Pair{TF: l.TF, Target: l.Target}] = l.Weight
	}
	return idx
}
