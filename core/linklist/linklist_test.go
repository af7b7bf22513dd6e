package linklist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerr "github.com/calderabio/regulon/core/errors"
	"github.com/calderabio/regulon/core/gexpr"
)

func matrix(t *testing.T, tfs, targets []string, values []float64) *gexpr.WeightMatrix {
	t.Helper()
	w, err := gexpr.NewWeightMatrix(tfs, targets, values)
	require.NoError(t, err)
	return w
}

func TestBuildFiltersAndSorts(t *testing.T) {
	w := matrix(t,
		[]string{"TF1", "TF2"},
		[]string{"g1", "g2", "g3"},
		[]float64{
			0.5, 0.001, 0.02,
			0.0, 0.9, 0.0005,
		},
	)

	links, err := Build(w, 0.001)
	require.NoError(t, err)

	require.Len(t, links, 3)
	assert.Equal(t, Link{"TF2", "g2", 0.9}, links[0])
	assert.Equal(t, Link{"TF1", "g1", 0.5}, links[1])
	assert.Equal(t, Link{"TF1", "g3", 0.02}, links[2])

	for i := 1; i < len(links); i++ {
		assert.LessOrEqual(t, links[i].Weight, links[i-1].Weight)
	}
	// Entries at or below the floor are excluded: 0.001 and 0.0005 gone.
	for _, l := range links {
		assert.Greater(t, l.Weight, 0.001)
	}
}

func TestBuildStableTieOrder(t *testing.T) {
	w := matrix(t,
		[]string{"TF1", "TF2"},
		[]string{"g1", "g2"},
		[]float64{
			0.25, 0.25,
			0.25, 0.25,
		},
	)

	links, err := Build(w, 0.001)
	require.NoError(t, err)

	want := []Link{
		{"TF1", "g1", 0.25},
		{"TF1", "g2", 0.25},
		{"TF2", "g1", 0.25},
		{"TF2", "g2", 0.25},
	}
	assert.Equal(t, want, links)
}

func TestBuildRejectsBadInput(t *testing.T) {
	w := matrix(t, []string{"TF1"}, []string{"g1"}, []float64{0.5})

	_, err := Build(w, -0.01)
	assert.True(t, errors.Is(err, rerr.ErrConfig))

	_, err = Build(nil, 0.001)
	assert.True(t, errors.Is(err, rerr.ErrConfig))
}

func TestIndex(t *testing.T) {
	idx := Index([]Link{{"TF1", "g1", 0.5}, {"TF2", "g1", 0.1}})
	assert.Equal(t, 0.5, idx[Pair{"TF1", "g1"}])
	_, ok := idx[Pair{"TF1", "g2"}]
	assert.False(t, ok)
}
