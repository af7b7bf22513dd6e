package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/calderabio/regulon/core/config"
	"github.com/calderabio/regulon/core/gexpr"
	"github.com/calderabio/regulon/core/pipeline"
	"github.com/calderabio/regulon/core/ranking"
)

var (
	inferWeights     string
	inferCorrelation string
	inferRegistry    string
	inferOrganism    string
	inferConfig      string
	inferTFs         string
	inferOut         string
)

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Run the full module-building and motif-pruning pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		cfg := config.Default()
		if inferConfig != "" {
			var err error
			cfg, err = config.Load(inferConfig)
			if err != nil {
				return err
			}
		}
		if inferRegistry != "" {
			cfg.Databases.Registry = inferRegistry
		}
		if inferOrganism != "" {
			cfg.Databases.Organism = inferOrganism
		}

		in, err := loadInputs(cfg, logger)
		if err != nil {
			return err
		}
		if inferTFs != "" {
			pat, err := glob.Compile(inferTFs)
			if err != nil {
				return fmt.Errorf("bad --tfs pattern %q: %w", inferTFs, err)
			}
			in.KeepTF = pat.Match
		}

		store, err := pipeline.OpenStore(cfg.Artifacts)
		if err != nil {
			return err
		}
		defer store.Close()

		out, err := pipeline.Run(cmd.Context(), cfg, in, store, logger)
		if err != nil {
			return err
		}
		return writeOutputs(inferOut, out)
	},
}

// loadInputs resolves the organism bundle and loads every external table.
func loadInputs(cfg *config.Config, logger *slog.Logger) (pipeline.Inputs, error) {
	var in pipeline.Inputs

	reg, err := ranking.LoadRegistry(cfg.Databases.Registry)
	if err != nil {
		return in, err
	}
	bundle, err := reg.Resolve(cfg.Databases.Organism)
	if err != nil {
		return in, err
	}

	cache, err := ranking.NewCache(cfg.Databases.CacheSize, logger)
	if err != nil {
		return in, err
	}
	for _, ref := range bundle.Rankings {
		db, err := cache.Load(ref)
		if err != nil {
			return in, err
		}
		in.Databases = append(in.Databases, db)
	}
	in.Annotations, err = ranking.LoadAnnotations(bundle.Annotations)
	if err != nil {
		return in, err
	}

	in.Weights, err = gexpr.LoadWeightMatrix(inferWeights)
	if err != nil {
		return in, err
	}
	in.Correlation, err = gexpr.LoadCorrelationMatrix(inferCorrelation)
	if err != nil {
		return in, err
	}
	return in, nil
}

func init() {
	rootCmd.AddCommand(inferCmd)
	inferCmd.Flags().StringVar(&inferWeights, "weights", "", "regulator-by-target weight matrix (TSV, required)")
	inferCmd.Flags().StringVar(&inferCorrelation, "correlation", "", "regulator-by-gene correlation matrix (TSV, required)")
	inferCmd.Flags().StringVar(&inferRegistry, "registry", "", "organism registry file (yaml)")
	inferCmd.Flags().StringVar(&inferOrganism, "organism", "", "organism tag to resolve databases for")
	inferCmd.Flags().StringVar(&inferConfig, "config", "", "pipeline config file (yaml)")
	inferCmd.Flags().StringVar(&inferTFs, "tfs", "", "glob restricting which regulators are analysed (e.g. 'HOX*')")
	inferCmd.Flags().StringVar(&inferOut, "out", "regulon-out", "output directory")
	inferCmd.MarkFlagRequired("weights")
	inferCmd.MarkFlagRequired("correlation")
}
