// Package enrichment scores candidate TF modules against genome-wide motif
// rankings, normalizes the scores per database, joins TF annotation and
// applies the NES cutoff.
package enrichment

import (
	"math"

	"github.com/viterin/vek"
)

// RecoveryCurve returns the cumulative recovery counts of a gene set under
// a motif ranking: curve[k-1] is how many member genes rank at or better
// than k, for k in [1, maxRank]. Ranks are 1-based; members ranked beyond
// maxRank never contribute.
func RecoveryCurve(ranks []int32, maxRank int) []float64 {
	curve := make([]float64, maxRank)
	for _, r := range ranks {
		if r >= 1 && int(r) <= maxRank {
			curve[r-1]++
		}
	}
	// Prefix-sum the hit markers into the cumulative curve.
	for k := 1; k < maxRank; k++ {
		curve[k] += curve[k-1]
	}
	return curve
}

// AUC integrates the recovery curve over the top maxRank positions,
// normalized to [0, 1] by the perfect-recovery area maxRank * len(ranks).
func AUC(ranks []int32, maxRank int) float64 {
	if len(ranks) == 0 || maxRank <= 0 {
		return 0
	}
	curve := RecoveryCurve(ranks, maxRank)
	return vek.Sum(curve) / (float64(maxRank) * float64(len(ranks)))
}

// AUCMaxRank converts the configured genome fraction into an absolute rank
// cutoff for a database of totalGenes ranked genes, with a floor of one.
func AUCMaxRank(fraction float64, totalGenes int) int {
	n := int(math.Round(fraction * float64(totalGenes)))
	if n < 1 {
		n = 1
	}
	return n
}
