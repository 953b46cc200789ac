package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/tarn-lang/tarn/frontend/semantic"
	"github.com/tarn-lang/tarn/tarn"
)

var RelationsCmd = &cobra.Command{
	Use:          "relations [./folder]",
	Short:        "Print the instance relations and the relation imports of each module",
	RunE:         runRelations,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
}

var withStd bool

func init() {
	RelationsCmd.Flags().BoolVar(&withStd, "std", false, "include relations declared in std")
}

func runRelations(cmd *cobra.Command, args []string) error {
	p, err := loadProject(args)
	if err != nil {
		return err
	}
	if err := p.Check(); err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if p.Errors().HasError() {
		return printDiagnostics(w, p)
	}
	printRelations(w, p, withStd)
	return nil
}

func printRelations(w io.Writer, p *tarn.Project, std bool) {
	colors := newPalette(w)
	_, _ = colors.faint.Fprintln(w, "# relations")
	for _, rel := range p.Context.Impls {
		if !std && rel.Module != nil && rel.Module.Package.Name == semantic.StdPackageName {
			continue
		}
		_, _ = io.WriteString(w, rel.String()+"\n")
	}

	for _, m := range p.UserModules() {
		_, _ = colors.faint.Fprintf(w, "# %s: %d upcast sites\n", m.Path, len(m.UpcastSites))
		for _, rel := range m.RelImports {
			_, _ = io.WriteString(w, "  "+rel.String()+"\n")
		}
	}
}
