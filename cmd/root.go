package cmd

import "github.com/spf13/cobra"

// NewRootCmd builds the tarn command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tarn [subcommand]",
		Short:        "tarn checks programs and computes the instance relations code generation needs",
		SilenceUsage: true,
	}
	AddFlags(root)
	root.AddCommand(CheckCmd)
	root.AddCommand(RelationsCmd)
	return root
}
