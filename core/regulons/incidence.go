package regulons

import (
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// IncidenceMatrix is the binary regulon-by-gene membership matrix derived
// from the final regulons. It is never mutated independently: rebuild it
// from regulons after any change.
type IncidenceMatrix struct {
	Regulons []string
	Genes    []string
	data     *mat.Dense
}

// Incidence flattens regulons into their membership matrix. Row order
// follows the given regulon order; columns are the sorted union of genes.
func Incidence(regs []Regulon) *IncidenceMatrix {
	geneSet := make(map[string]struct{})
	for _, r := range regs {
		for _, g := range r.Genes {
			geneSet[g] = struct{}{}
		}
	}
	genes := sortedKeys(geneSet)
	colIdx := make(map[string]int, len(genes))
	for j, g := range genes {
		colIdx[g] = j
	}

	names := make([]string, len(regs))
	data := mat.NewDense(max(len(regs), 1), max(len(genes), 1), nil)
	for i, r := range regs {
		names[i] = r.Name
		for _, g := range r.Genes {
			data.Set(i, colIdx[g], 1)
		}
	}
	return &IncidenceMatrix{Regulons: names, Genes: genes, data: data}
}

// At reports membership of gene j in regulon i.
func (m *IncidenceMatrix) At(i, j int) float64 { return m.data.At(i, j) }

// Dense exposes the underlying matrix for export.
func (m *IncidenceMatrix) Dense() *mat.Dense { return m.data }

// FromIncidence reconstructs the regulon gene sets from the nonzero entries
// of the matrix. Round-tripping through Incidence is lossless.
func FromIncidence(m *IncidenceMatrix) []Regulon {
	regs := make([]Regulon, 0, len(m.Regulons))
	for i, name := range m.Regulons {
		var genes []string
		for j, g := range m.Genes {
			if m.data.At(i, j) != 0 {
				genes = append(genes, g)
			}
		}
		slices.Sort(genes)
		tf, _ := strings.CutSuffix(name, ExtendedSuffix)
		regs = append(regs, Regulon{Name: name, TF: tf, Genes: genes})
	}
	return regs
}
