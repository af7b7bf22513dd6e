package gexpr

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadWeightMatrix reads a tab-delimited matrix with target genes on the
// header row and one regulator per data row. Files ending in .gz are
// decompressed transparently.
func LoadWeightMatrix(path string) (*WeightMatrix, error) {
	rows, cols, values, err := loadTSVMatrix(path)
	if err != nil {
		return nil, fmt.Errorf("load weight matrix %s: %w", path, err)
	}
	return NewWeightMatrix(rows, cols, values)
}

// LoadCorrelationMatrix reads a tab-delimited correlation matrix in the same
// layout as LoadWeightMatrix.
func LoadCorrelationMatrix(path string) (*CorrelationMatrix, error) {
	rows, cols, values, err := loadTSVMatrix(path)
	if err != nil {
		return nil, fmt.Errorf("load correlation matrix %s: %w", path, err)
	}
	return NewCorrelationMatrix(rows, cols, values)
}

func loadTSVMatrix(path string) (rowNames, colNames []string, values []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	var rd io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, nil, err
		}
		defer gz.Close()
		rd = gz
	}

	cr := csv.NewReader(rd)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read header: %w", err)
	}
	// Header may or may not carry a corner label for the name column.
	colNames = header[1:]

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, nil, err
		}
		if len(rec) != len(colNames)+1 {
			return nil, nil, nil, fmt.Errorf("line %d: %d fields, want %d", line, len(rec), len(colNames)+1)
		}
		rowNames = append(rowNames, rec[0])
		for _, s := range rec[1:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
			values = append(values, v)
		}
	}
	return rowNames, colNames, values, nil
}
