package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/tarn"
)

var CheckCmd = &cobra.Command{
	Use:          "check [./folder]",
	Short:        "Check a tarn project and print its diagnostics",
	RunE:         runCheck,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
}

func runCheck(cmd *cobra.Command, args []string) error {
	p, err := loadProject(args)
	if err != nil {
		return err
	}
	if err := p.Check(); err != nil {
		return err
	}
	return printDiagnostics(cmd.OutOrStdout(), p)
}

// printDiagnostics writes every diagnostic in report order followed by a
// summary, and fails if any of them is an error
func printDiagnostics(w io.Writer, p *tarn.Project) error {
	colors := newPalette(w)
	diagnostics := p.Errors()
	for _, e := range diagnostics.All() {
		c := colors.warn
		if e.Severity() == ilerr.SeverityError {
			c = colors.err
		}
		_, _ = c.Fprintln(w, p.Format(e))
	}

	nErrs, nWarns := len(diagnostics.Errors()), len(diagnostics.Warnings())
	if !diagnostics.HasError() {
		_, _ = colors.ok.Fprintf(w, "ok: %d modules checked, %d warnings\n", len(p.UserModules()), nWarns)
		return nil
	}
	_, _ = colors.faint.Fprintf(w, "%d errors, %d warnings\n", nErrs, nWarns)
	return fmt.Errorf("found %d errors", nErrs)
}
