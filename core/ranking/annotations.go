package ranking

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Annotations maps motifs to the TFs known or believed to bind them, in two
// tiers: direct (curated) and inferred (motif-similarity based).
type Annotations struct {
	direct   map[string]map[string]struct{}
	inferred map[string]map[string]struct{}
}

// NewAnnotations builds an empty annotation table.
func NewAnnotations() *Annotations {
	return &Annotations{
		direct:   make(map[string]map[string]struct{}),
		inferred: make(map[string]map[string]struct{}),
	}
}

// AddDirect records a curated motif-to-TF association.
func (a *Annotations) AddDirect(motif, tf string) {
	addTo(a.direct, motif, tf)
}

// AddInferred records a similarity-inferred motif-to-TF association.
func (a *Annotations) AddInferred(motif, tf string) {
	addTo(a.inferred, motif, tf)
}

// HasDirect reports whether tf is a curated annotation of motif.
func (a *Annotations) HasDirect(motif, tf string) bool {
	_, ok := a.direct[motif][tf]
	return ok
}

// HasInferred reports whether tf is an inferred annotation of motif.
func (a *Annotations) HasInferred(motif, tf string) bool {
	_, ok := a.inferred[motif][tf]
	return ok
}

func addTo(m map[string]map[string]struct{}, motif, tf string) {
	set, ok := m[motif]
	if !ok {
		set = make(map[string]struct{})
		m[motif] = set
	}
	set[tf] = struct{}{}
}

// LoadAnnotations reads a tab-delimited motif annotation table with columns
// motif, tf, tier, where tier is "direct" or "inferred". A header row
// beginning with "motif" is skipped. Files ending in .gz are decompressed.
func LoadAnnotations(path string) (*Annotations, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load annotations %s: %w", path, err)
	}
	defer f.Close()

	var rd io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("load annotations %s: %w", path, err)
		}
		defer gz.Close()
		rd = gz
	}

	cr := csv.NewReader(rd)
	cr.Comma = '\t'
	cr.FieldsPerRecord = 3

	anns := NewAnnotations()
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("annotations %s: %w", path, err)
		}
		if line == 1 && strings.EqualFold(rec[0], "motif") {
			continue
		}
		motif, tf, tier := rec[0], rec[1], strings.ToLower(rec[2])
		switch tier {
		case "direct":
			anns.AddDirect(motif, tf)
		case "inferred":
			anns.AddInferred(motif, tf)
		default:
			return nil, fmt.Errorf("annotations %s line %d: unknown tier %q", path, line, rec[2])
		}
	}
	return anns, nil
}
