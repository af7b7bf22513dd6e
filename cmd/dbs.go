package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calderabio/regulon/core/ranking"
)

var dbsRegistry string

// dbsCmd lists the organism bundles a registry resolves to.
var dbsCmd = &cobra.Command{
	Use:   "dbs",
	Short: "List the ranking databases available per organism",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := ranking.LoadRegistry(dbsRegistry)
		if err != nil {
			return err
		}
		for _, tag := range reg.Tags() {
			bundle, err := reg.Resolve(tag)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t(unresolvable: %v)\n", tag, err)
				continue
			}
			for _, ref := range bundle.Rankings {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", tag, ref.Name, ref.Path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\tannotations\t%s\n", tag, bundle.Annotations)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbsCmd)
	dbsCmd.Flags().StringVar(&dbsRegistry, "registry", "", "organism registry file (yaml, required)")
	dbsCmd.MarkFlagRequired("registry")
}
