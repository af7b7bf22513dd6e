package pruning

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderabio/regulon/core/enrichment"
	rerr "github.com/calderabio/regulon/core/errors"
	"github.com/calderabio/regulon/core/modules"
	"github.com/calderabio/regulon/core/ranking"
)

// prunerDB ranks 1000 genes for one motif. Module members g1..g4 sit at the
// very top, g5 sits deep at rank 900 where the expected-recovery penalty
// exceeds its contribution, and g6 is beyond every bound.
func prunerDB(t *testing.T, name string) *ranking.Database {
	t.Helper()
	n := 1000
	genes := make([]string, n)
	col := make([]int32, n)
	for i := range genes {
		genes[i] = fmt.Sprintf("g%d", i+1)
		col[i] = int32(i + 20)
	}
	for i, r := range []int32{2, 5, 9, 14} {
		col[i] = r // g1..g4
	}
	col[4] = 900  // g5
	col[5] = 2000 // g6, outside MaxRank
	db, err := ranking.NewDatabase(name, genes, map[string][]int32{"motifA": col})
	require.NoError(t, err)
	return db
}

func record(db string) enrichment.Record {
	return enrichment.Record{
		TF: "TF1", Method: modules.MethodW001,
		Motif: "motifA", Database: db,
		NES: 4.2, Annotation: enrichment.AnnotationDirect,
	}
}

func module(genes ...string) modules.Module {
	return modules.Module{TF: "TF1", Method: modules.MethodW001, Genes: genes}
}

func TestLeadingEdgeRecovery(t *testing.T) {
	p, err := NewPruner(Options{MaxRank: 1000}, nil)
	require.NoError(t, err)

	res, stats, err := p.Run(context.Background(),
		[]enrichment.Record{record("promoter")},
		[]modules.Module{module("g1", "g2", "g3", "g4", "g5", "g6")},
		[]*ranking.Database{prunerDB(t, "promoter")})
	require.NoError(t, err)

	require.Len(t, res, 1)
	assert.Equal(t, []string{"g1", "g2", "g3", "g4"}, res[0].EnrichedGenes)
	assert.Equal(t, 1, stats.Rows)
	assert.Zero(t, stats.EmptyResults)
}

func TestEmptyRecoveryRetained(t *testing.T) {
	p, err := NewPruner(Options{MaxRank: 1000}, nil)
	require.NoError(t, err)

	// Only member is ranked beyond the bound: empty result, row kept.
	res, stats, err := p.Run(context.Background(),
		[]enrichment.Record{record("promoter")},
		[]modules.Module{module("g6")},
		[]*ranking.Database{prunerDB(t, "promoter")})
	require.NoError(t, err)

	require.Len(t, res, 1)
	assert.NotNil(t, res[0].EnrichedGenes)
	assert.Empty(t, res[0].EnrichedGenes)
	assert.Equal(t, 1, stats.EmptyResults)
}

func TestMissingGenesCountedNotFatal(t *testing.T) {
	p, err := NewPruner(Options{MaxRank: 1000}, nil)
	require.NoError(t, err)

	res, stats, err := p.Run(context.Background(),
		[]enrichment.Record{record("promoter")},
		[]modules.Module{module("g1", "notInDB")},
		[]*ranking.Database{prunerDB(t, "promoter")})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, []string{"g1"}, res[0].EnrichedGenes)
	assert.Equal(t, 1, stats.MissingGenes)
}

func TestDatabaseMismatchIsFatal(t *testing.T) {
	p, err := NewPruner(Options{MaxRank: 1000}, nil)
	require.NoError(t, err)

	_, _, err = p.Run(context.Background(),
		[]enrichment.Record{record("extended")},
		[]modules.Module{module("g1")},
		[]*ranking.Database{prunerDB(t, "promoter")})
	assert.True(t, errors.Is(err, rerr.ErrDatabaseMismatch))
}

func TestEnrichedGenesSubsetOfModule(t *testing.T) {
	p, err := NewPruner(Options{MaxRank: 1000}, nil)
	require.NoError(t, err)

	mod := module("g1", "g3", "g5")
	res, _, err := p.Run(context.Background(),
		[]enrichment.Record{record("promoter")},
		[]modules.Module{mod},
		[]*ranking.Database{prunerDB(t, "promoter")})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Subset(t, mod.Genes, res[0].EnrichedGenes)
}

func TestPrunerRejectsBadMaxRank(t *testing.T) {
	_, err := NewPruner(Options{MaxRank: 0}, nil)
	assert.True(t, errors.Is(err, rerr.ErrConfig))
}
