package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/calderabio/regulon/core/modules"
	"github.com/calderabio/regulon/core/pipeline"
	"github.com/calderabio/regulon/core/regulons"
)

// writeOutputs renders every final artifact of a run into dir.
func writeOutputs(dir string, out *pipeline.Outputs) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	if err := writeTSV(filepath.Join(dir, "links.tsv"), []string{"TF", "Target", "weight"}, len(out.Links), func(i int) []string {
		l := out.Links[i]
		return []string{l.TF, l.Target, formatFloat(l.Weight)}
	}); err != nil {
		return err
	}

	if err := writeModulesTSV(filepath.Join(dir, "modules.tsv"), out.Modules); err != nil {
		return err
	}

	if err := writeTSV(filepath.Join(dir, "enrichment.tsv"),
		[]string{"geneSet", "motif", "database", "AUC", "NES", "TFinDB"}, len(out.Enrichment), func(i int) []string {
			r := out.Enrichment[i]
			return []string{r.GeneSet(), r.Motif, r.Database, formatFloat(r.AUC), formatFloat(r.NES), string(r.Annotation)}
		}); err != nil {
		return err
	}

	if err := writeTSV(filepath.Join(dir, "target_info.tsv"),
		[]string{"TF", "gene", "nMotifs", "bestMotif", "NES", "directAnnot", "weight"}, len(out.TargetInfo), func(i int) []string {
			ti := out.TargetInfo[i]
			weight := "NA"
			if ti.Weight != nil {
				weight = formatFloat(*ti.Weight)
			}
			return []string{
				ti.TF, ti.Gene, strconv.Itoa(ti.NMotifs), ti.BestMotif,
				formatFloat(ti.NES), strconv.FormatBool(ti.DirectAnnot), weight,
			}
		}); err != nil {
		return err
	}

	if err := writeRegulonsJSON(filepath.Join(dir, "regulons.json"), out.Regulons); err != nil {
		return err
	}
	if err := writeIncidenceTSV(filepath.Join(dir, "incidence.tsv"), out.Incidence); err != nil {
		return err
	}

	report, err := json.MarshalIndent(out.Report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "report.json"), report, 0644)
}

func writeModulesTSV(path string, mods []modules.Module) error {
	rows := 0
	for _, m := range mods {
		rows += len(m.Genes)
	}
	flat := make([][]string, 0, rows)
	for _, m := range mods {
		for _, g := range m.Genes {
			flat = append(flat, []string{g, m.TF, string(m.Method)})
		}
	}
	return writeTSV(path, []string{"Target", "TF", "method"}, len(flat), func(i int) []string {
		return flat[i]
	})
}

func writeRegulonsJSON(path string, regs []regulons.Regulon) error {
	byName := make(map[string][]string, len(regs))
	for _, r := range regs {
		byName[r.Name] = r.Genes
	}
	raw, err := json.MarshalIndent(byName, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

func writeIncidenceTSV(path string, m *regulons.IncidenceMatrix) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'
	if err := w.Write(append([]string{"regulon"}, m.Genes...)); err != nil {
		return err
	}
	for i, name := range m.Regulons {
		row := make([]string, 0, len(m.Genes)+1)
		row = append(row, name)
		for j := range m.Genes {
			row = append(row, strconv.Itoa(int(m.At(i, j))))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeTSV(path string, header []string, rows int, row func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < rows; i++ {
		if err := w.Write(row(i)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
