// Package tarn loads projects made of modules produced by the external
// parser and runs the semantic checker over them.
package tarn

import (
	"go/token"
	"io/fs"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/astio"
	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/frontend/semantic"
	"github.com/tarn-lang/tarn/frontend/vid"
	"github.com/tarn-lang/tarn/internal/config"
	"github.com/tarn-lang/tarn/internal/log"
	"github.com/tarn-lang/tarn/util"
)

// ModuleFileSuffix marks the files a package directory is scanned for
const ModuleFileSuffix = ".ast.yaml"

var projectLogger = log.DefaultLogger.With("section", "project")

// Project is a set of packages sharing a single semantic.Context
type Project struct {
	Manifest *config.Manifest
	FileSet  *token.FileSet
	Context  *semantic.Context
	// Files maps each module path to the file it was decoded from
	Files map[string]string
}

// Load reads the manifest at the root of fsys and decodes every module file
// of every package it declares. Errors are about the project files
// themselves; diagnostics about the program are only produced by Check.
func Load(fsys fs.FS, opts ...semantic.Option) (*Project, error) {
	manifest, err := config.Load(fsys)
	if err != nil {
		return nil, err
	}
	p := &Project{
		Manifest: manifest,
		FileSet:  token.NewFileSet(),
		Files:    make(map[string]string),
	}

	if len(manifest.Prelude) > 0 {
		opts = append(opts, semantic.WithPrelude(util.MapSlice(manifest.Prelude, vid.Parse)))
	}
	p.Context = semantic.NewContext(opts...)

	for _, pkg := range manifest.Packages {
		modules, err := p.loadPackage(fsys, pkg)
		if err != nil {
			return nil, errors.Wrapf(err, "could not load package %s", pkg.Name)
		}
		p.Context.AddPackage(pkg.Name, modules)
	}
	return p, nil
}

func (p *Project) loadPackage(fsys fs.FS, pkg config.Package) (map[string]*ast.Module, error) {
	root := path.Clean(pkg.Root)
	modules := make(map[string]*ast.Module)
	err := fs.WalkDir(fsys, root, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(file, ModuleFileSuffix) {
			return nil
		}
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return errors.Wrapf(err, "could not read %s", file)
		}
		m, err := astio.Decode(p.FileSet, file, data)
		if err != nil {
			return err
		}

		v := vid.Parse(m.Path)
		if v.Len() < 2 || v.First() != pkg.Name {
			return errors.Errorf("%s: module %s is not inside package %s", file, m.Path, pkg.Name)
		}
		if other, ok := p.Files[v.Key()]; ok {
			return errors.Errorf("%s: module %s is already declared in %s", file, m.Path, other)
		}
		p.Files[v.Key()] = file
		modules[m.Path] = m.AST
		projectLogger.Debug("decoded module", "module", m.Path, "file", file, "statements", len(m.AST.Statements))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		projectLogger.Warn("package has no modules", "package", pkg.Name, "root", root)
	}
	return modules, nil
}

// Check runs the semantic checker. The returned error is an internal
// failure of the checker, never a diagnostic.
func (p *Project) Check() error {
	if err := p.Context.Check(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Errors returns the diagnostics reported by Check
func (p *Project) Errors() *ilerr.Errors {
	return p.Context.Errors
}

// Format renders a diagnostic with its file position when known
func (p *Project) Format(e ilerr.IleError) string {
	return ilerr.FormatWithSource(e, p.FileSet)
}

// UserModules are the modules of the manifest's packages, std excluded
func (p *Project) UserModules() []*semantic.Module {
	var out []*semantic.Module
	for _, pkg := range p.Manifest.Packages {
		if found, ok := p.Context.Package(pkg.Name); ok {
			out = append(out, found.Modules...)
		}
	}
	return out
}
