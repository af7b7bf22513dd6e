package gexpr

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerr "github.com/calderabio/regulon/core/errors"
)

func TestWeightMatrixLookup(t *testing.T) {
	w, err := NewWeightMatrix(
		[]string{"TF1", "TF2"},
		[]string{"g1", "g2", "g3"},
		[]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6},
	)
	require.NoError(t, err)

	v, ok := w.Weight("TF2", "g3")
	assert.True(t, ok)
	assert.Equal(t, 0.6, v)

	_, ok = w.Weight("TF9", "g1")
	assert.False(t, ok)
	_, ok = w.Weight("TF1", "g9")
	assert.False(t, ok)
}

func TestWeightMatrixEmpty(t *testing.T) {
	_, err := NewWeightMatrix(nil, []string{"g1"}, nil)
	assert.True(t, errors.Is(err, rerr.ErrConfig))
}

func TestCorrelationSignBoundaries(t *testing.T) {
	c, err := NewCorrelationMatrix(
		[]string{"TF1"},
		[]string{"pos", "neg", "atPos", "atNeg", "zero"},
		[]float64{0.5, -0.5, 0.03, -0.03, 0.0},
	)
	require.NoError(t, err)

	cases := []struct {
		gene string
		want int
	}{
		{"pos", 1},
		{"neg", -1},
		// Thresholds are exclusive: exactly 0.03 is not positive.
		{"atPos", 0},
		{"atNeg", 0},
		{"zero", 0},
	}
	for _, tc := range cases {
		got, err := c.Sign("TF1", tc.gene, 0.03, -0.03)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "gene %s", tc.gene)
	}
}

func TestCorrelationSignMissingPair(t *testing.T) {
	c, err := NewCorrelationMatrix([]string{"TF1"}, []string{"g1"}, []float64{0.2})
	require.NoError(t, err)

	_, err = c.Sign("TF1", "absent", 0.03, -0.03)
	assert.True(t, errors.Is(err, rerr.ErrMissingCorrelation))

	_, err = c.Sign("absent", "g1", 0.03, -0.03)
	assert.True(t, errors.Is(err, rerr.ErrMissingCorrelation))
}

func TestLoadWeightMatrixTSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.tsv")
	content := "\tg1\tg2\nTF1\t0.5\t0.001\nTF2\t0\t0.25\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	w, err := LoadWeightMatrix(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"TF1", "TF2"}, w.TFs())
	assert.Equal(t, []string{"g1", "g2"}, w.Targets())
	v, ok := w.Weight("TF2", "g2")
	assert.True(t, ok)
	assert.Equal(t, 0.25, v)
}
