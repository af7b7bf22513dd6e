package cmd

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/calderabio/regulon/core/config"
	"github.com/calderabio/regulon/core/gexpr"
	"github.com/calderabio/regulon/core/linklist"
	"github.com/calderabio/regulon/core/modules"
)

var (
	modulesWeights     string
	modulesCorrelation string
	modulesConfig      string
	modulesOut         string
)

// modulesCmd stops after activating-module selection, exposing the module
// table for diagnosis without requiring ranking databases.
var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Build candidate TF modules without motif pruning",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		cfg := config.Default()
		if modulesConfig != "" {
			var err error
			cfg, err = config.Load(modulesConfig)
			if err != nil {
				return err
			}
		}

		wm, err := gexpr.LoadWeightMatrix(modulesWeights)
		if err != nil {
			return err
		}
		cm, err := gexpr.LoadCorrelationMatrix(modulesCorrelation)
		if err != nil {
			return err
		}

		links, err := linklist.Build(wm, cfg.Modules.MinWeight)
		if err != nil {
			return err
		}
		rows, err := modules.Construct(links, cfg.ModuleOptions())
		if err != nil {
			return err
		}
		tagged, err := modules.SplitByCorrelation(rows, cm,
			cfg.Modules.CorrelationThreshold.Positive, cfg.Modules.CorrelationThreshold.Negative)
		if err != nil {
			return err
		}
		mods, _ := modules.SelectActivating(tagged, cfg.Modules.MinModuleSize, logger)

		if err := os.MkdirAll(modulesOut, 0755); err != nil {
			return err
		}
		return writeModulesTSV(filepath.Join(modulesOut, "modules.tsv"), mods)
	},
}

func init() {
	rootCmd.AddCommand(modulesCmd)
	modulesCmd.Flags().StringVar(&modulesWeights, "weights", "", "regulator-by-target weight matrix (TSV, required)")
	modulesCmd.Flags().StringVar(&modulesCorrelation, "correlation", "", "regulator-by-gene correlation matrix (TSV, required)")
	modulesCmd.Flags().StringVar(&modulesConfig, "config", "", "pipeline config file (yaml)")
	modulesCmd.Flags().StringVar(&modulesOut, "out", "regulon-out", "output directory")
	modulesCmd.MarkFlagRequired("weights")
	modulesCmd.MarkFlagRequired("correlation")
}
