// Package gexpr holds the expression-derived input matrices consumed by the
// pipeline: the regulator-by-target importance weights and the gene-gene
// correlation matrix. Both are read-only after load.
package gexpr

import (
	"gonum.org/v1/gonum/mat"

	"github.com/calderabio/regulon/core/errors"
)

// WeightMatrix is a regulator (rows) by target gene (columns) importance
// matrix produced by an upstream inference step.
type WeightMatrix struct {
	data    *mat.Dense
	tfs     []string
	targets []string
	tfIdx   map[string]int
	tgtIdx  map[string]int
}

// NewWeightMatrix wraps row-major values with regulator and target names.
func NewWeightMatrix(tfs, targets []string, values []float64) (*WeightMatrix, error) {
	if len(tfs) == 0 || len(targets) == 0 {
		return nil, errors.Configf("weight matrix is empty: %d regulators, %d targets", len(tfs), len(targets))
	}
	if len(values) != len(tfs)*len(targets) {
		return nil, errors.Configf("weight matrix shape mismatch: %d values for %dx%d", len(values), len(tfs), len(targets))
	}
	return &WeightMatrix{
		data:    mat.NewDense(len(tfs), len(targets), values),
		tfs:     tfs,
		targets: targets,
		tfIdx:   index(tfs),
		tgtIdx:  index(targets),
	}, nil
}

// TFs returns the regulator names in row order.
func (w *WeightMatrix) TFs() []string { return w.tfs }

// Targets returns the target gene names in column order.
func (w *WeightMatrix) Targets() []string { return w.targets }

// Weight reports the importance of tf on target, and whether the pair is
// present in the matrix.
func (w *WeightMatrix) Weight(tf, target string) (float64, bool) {
	i, ok := w.tfIdx[tf]
	if !ok {
		return 0, false
	}
	j, ok := w.tgtIdx[target]
	if !ok {
		return 0, false
	}
	return w.data.At(i, j), true
}

// At returns the weight at row i, column j.
func (w *WeightMatrix) At(i, j int) float64 { return w.data.At(i, j) }

// Dims returns the matrix dimensions.
func (w *WeightMatrix) Dims() (rows, cols int) { return w.data.Dims() }

// CorrelationMatrix is a regulator-by-gene correlation matrix. Only the sign
// of an entry relative to the configured thresholds is consumed downstream.
type CorrelationMatrix struct {
	data   *mat.Dense
	rowIdx map[string]int
	colIdx map[string]int
}

// NewCorrelationMatrix wraps row-major correlation values.
func NewCorrelationMatrix(rows, cols []string, values []float64) (*CorrelationMatrix, error) {
	if len(rows) == 0 || len(cols) == 0 {
		return nil, errors.Configf("correlation matrix is empty: %d rows, %d cols", len(rows), len(cols))
	}
	if len(values) != len(rows)*len(cols) {
		return nil, errors.Configf("correlation matrix shape mismatch: %d values for %dx%d", len(values), len(rows), len(cols))
	}
	return &CorrelationMatrix{
		data:   mat.NewDense(len(rows), len(cols), values),
		rowIdx: index(rows),
		colIdx: index(cols),
	}, nil
}

// Sign classifies the correlation between tf and gene against exclusive
// thresholds: > posThresh yields +1, < negThresh yields -1, anything in
// between yields 0. A pair absent from the matrix is a fatal lookup error.
func (c *CorrelationMatrix) Sign(tf, gene string, posThresh, negThresh float64) (int, error) {
	i, ok := c.rowIdx[tf]
	if !ok {
		return 0, errors.MissingCorrelationf("regulator %q absent from correlation matrix", tf)
	}
	j, ok := c.colIdx[gene]
	if !ok {
		return 0, errors.MissingCorrelationf("gene %q absent from correlation matrix", gene)
	}
	switch v := c.data.At(i, j); {
	case v > posThresh:
		return 1, nil
	case v < negThresh:
		return -1, nil
	default:
		return 0, nil
	}
}

func index(names []string) map[string]int {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	return idx
}
