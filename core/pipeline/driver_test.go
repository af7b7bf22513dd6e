package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderabio/regulon/core/config"
	"github.com/calderabio/regulon/core/gexpr"
	"github.com/calderabio/regulon/core/ranking"
	"github.com/calderabio/regulon/core/regulons"
)

// fixtureInputs builds the synthetic scenario: three regulators over ten
// genes, where regulator A has six strong co-expression targets, five of
// them positively correlated, and A's directly annotated motif strongly
// ranks four of those targets.
func fixtureInputs(t *testing.T) Inputs {
	t.Helper()

	targets := []string{"g1", "g2", "g3", "g4", "g5", "g6", "g7", "g8", "g9", "g10"}
	weights := make([]float64, 3*len(targets))
	for i := range weights {
		weights[i] = 0.0005 // below the floor unless overridden
	}
	for j, w := range []float64{0.5, 0.45, 0.4, 0.35, 0.3, 0.25} {
		weights[j] = w // regulator A, g1..g6
	}
	wm, err := gexpr.NewWeightMatrix([]string{"A", "B", "C"}, targets, weights)
	require.NoError(t, err)

	corrTargets := []string{"g1", "g2", "g3", "g4", "g5", "g6"}
	corr := []float64{0.5, 0.5, 0.5, 0.5, 0.5, -0.5}
	cm, err := gexpr.NewCorrelationMatrix([]string{"A"}, corrTargets, corr)
	require.NoError(t, err)

	genes := make([]string, 0, 100)
	genes = append(genes, targets...)
	genes = append(genes, "A", "B", "C")
	for i := len(genes); i < 100; i++ {
		genes = append(genes, fmt.Sprintf("f%d", i))
	}
	ranks := make(map[string][]int32, 4)
	for _, motif := range []string{"motifA", "motifB", "motifC", "motifD"} {
		col := make([]int32, len(genes))
		for i := range col {
			col[i] = int32(i + 11)
		}
		ranks[motif] = col
	}
	// motifA recovers g1..g4 at the top, leaves g5 and A itself too deep
	// to survive the bounded leading edge.
	for i, r := range []int32{1, 2, 3, 4} {
		ranks["motifA"][i] = r
	}
	ranks["motifA"][4] = 50  // g5
	ranks["motifA"][10] = 80 // A
	db, err := ranking.NewDatabase("promoter", genes, ranks)
	require.NoError(t, err)

	anns := ranking.NewAnnotations()
	anns.AddDirect("motifA", "A")

	return Inputs{
		Weights:     wm,
		Correlation: cm,
		Databases:   []*ranking.Database{db},
		Annotations: anns,
	}
}

func fixtureConfig() *config.Config {
	cfg := config.Default()
	cfg.Modules.MinModuleSize = 5
	cfg.Enrichment.AUCMaxRankFraction = 0.05
	cfg.Enrichment.NESCutoff = 1.2
	cfg.Pruning.MaxRank = 40
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	out, err := Run(context.Background(), fixtureConfig(), fixtureInputs(t), nil, nil)
	require.NoError(t, err)

	// Only regulator A clears the weight floor: 6 links, 6 method-tagged
	// modules of identical membership.
	assert.Equal(t, 6, out.Report.LinksKept)
	assert.Equal(t, 6, out.Report.ModulesKept)
	for _, m := range out.Modules {
		assert.Equal(t, "A", m.TF)
		assert.ElementsMatch(t, []string{"A", "g1", "g2", "g3", "g4", "g5"}, m.Genes)
	}

	// Every retained enrichment record is A's direct motif.
	require.NotEmpty(t, out.SelfMotifs)
	for _, r := range out.SelfMotifs {
		assert.Equal(t, "motifA", r.Motif)
		assert.Equal(t, "promoter", r.Database)
	}

	byName := map[string]regulons.Regulon{}
	for _, r := range out.Regulons {
		byName[r.Name] = r
	}
	require.Contains(t, byName, "A")
	assert.Equal(t, []string{"g1", "g2", "g3", "g4"}, byName["A"].Genes)
	// No inferred-only evidence: the extended regulon equals the strict one.
	require.Contains(t, byName, "A_extended")
	assert.Equal(t, byName["A"].Genes, byName["A_extended"].Genes)

	// Weight join hits every (A, gene) pair.
	assert.Equal(t, 4, out.Report.TargetPairs)
	assert.Zero(t, out.Report.WeightJoinMisses)
	for _, info := range out.TargetInfo {
		require.NotNil(t, info.Weight)
		assert.True(t, info.DirectAnnot)
		assert.Equal(t, "motifA", info.BestMotif)
	}

	// Incidence matrix round-trips to the same gene sets.
	back := regulons.FromIncidence(out.Incidence)
	require.Len(t, back, len(out.Regulons))
	for i := range back {
		assert.Equal(t, out.Regulons[i].Name, back[i].Name)
		assert.Equal(t, out.Regulons[i].Genes, back[i].Genes)
	}
}

func TestRunKeepTFFilter(t *testing.T) {
	in := fixtureInputs(t)
	in.KeepTF = func(tf string) bool { return tf != "A" }

	// Dropping the only productive regulator leaves an empty link list,
	// which is a configuration-class failure.
	_, err := Run(context.Background(), fixtureConfig(), in, nil, nil)
	assert.Error(t, err)
}

func TestRunPersistsArtifacts(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenStore(config.ArtifactsConfig{Store: "fs", Path: dir})
	require.NoError(t, err)
	defer store.Close()

	out, err := Run(context.Background(), fixtureConfig(), fixtureInputs(t), store, nil)
	require.NoError(t, err)

	for _, stage := range []string{"links", "modules", "enrichment", "pruned", "target_info", "regulons", "report"} {
		path := filepath.Join(dir, out.RunID, stage+".json")
		_, err := os.Stat(path)
		assert.NoError(t, err, "stage %s", stage)
	}
}
