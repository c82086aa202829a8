package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/valentimarco/ollamastream/internal/registry"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// providersCmd lists the registered backends and their display metadata
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered LLM providers",
	Long: `List the LLM providers registered in this build, together with their
human-readable name, description, and documentation link.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		nameColor := color.New(color.FgCyan, color.Bold).SprintFunc()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		defer w.Flush()

		fmt.Fprintln(w, "PROVIDER\tNAME\tDESCRIPTION\tDOCS")
		for _, name := range registry.GetAvailableProviders() {
			info, err := registry.Describe(name)
			if err != nil {
				return err
			}
			docs := info.DocsURL
			if docs == "" {
				docs = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", nameColor(name), info.Name, info.Description, docs)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
