package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tarn-lang/tarn/internal/log"
	"github.com/tarn-lang/tarn/tarn"
)

var (
	logLevel string
	noColor  bool
)

// AddFlags registers the flags shared by every subcommand on root
func AddFlags(root *cobra.Command) {
	root.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level, overrides the project manifest")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// loadProject loads the project rooted at the directory in args, or the
// working directory
func loadProject(args []string) (*tarn.Project, error) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute path of target: %w", err)
	}
	stat, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("could not stat target: %w", err)
	}
	if !stat.IsDir() {
		target = filepath.Dir(target)
	}

	p, err := tarn.Load(os.DirFS(target))
	if err != nil {
		return nil, fmt.Errorf("could not load project (this is not a compile error): %w", err)
	}
	if err := configureLogging(p); err != nil {
		return nil, err
	}
	return p, nil
}

func configureLogging(p *tarn.Project) error {
	level, err := p.Manifest.LogLevel()
	if err != nil {
		return err
	}
	if logLevel != "" {
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	log.SetLevel(level)
	if len(p.Manifest.Log.Sections) > 0 {
		log.SetSections(p.Manifest.Log.Sections)
	}
	return nil
}

// palette colors output only when writing to a terminal
type palette struct {
	err, warn, ok, faint *color.Color
}

func newPalette(w io.Writer) palette {
	p := palette{
		err:   color.New(color.FgRed, color.Bold),
		warn:  color.New(color.FgYellow),
		ok:    color.New(color.FgGreen),
		faint: color.New(color.Faint),
	}
	enabled := !noColor && isTerminal(w)
	for _, c := range []*color.Color{p.err, p.warn, p.ok, p.faint} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
