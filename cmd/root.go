// Package cmd provides the CLI commands of the regulon inference pipeline.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "regulon",
	Short: "Regulon - gene-regulatory-network inference from single-cell expression",
	Long: `Regulon infers transcription-factor regulons from a precomputed
regulator-target importance matrix by building co-expression modules and
pruning them with motif-enrichment statistics.`,
}

func Execute() error {
	return rootCmd.Execute()
}
