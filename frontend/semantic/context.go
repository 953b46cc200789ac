package semantic

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hashicorp/go-set/v3"

	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/frontend/types"
	"github.com/tarn-lang/tarn/frontend/vid"
	ilelog "github.com/tarn-lang/tarn/internal/log"
	"github.com/tarn-lang/tarn/util"
)

// TypeState separates diagnostics about the checked program (Errors) from
// broken compiler assumptions (Failures)
type TypeState struct {
	Failures []error
	Errors   *ilerr.Errors
	logger   *slog.Logger
}

func (s *TypeState) addFailure(f error) {
	s.Failures = append(s.Failures, f)
	s.logger.Error("internal failure", "failure", f)
}

func (s *TypeState) addError(e ilerr.IleError) {
	s.Errors = s.Errors.With(e)
	s.logger.Debug("diagnostic", "code", e.Code(), "module", e.Module(), "error", e.Error())
}

// Context is the state of a single compilation: every package, the
// diagnostics, the instance relation list, memo tables and the stack of
// modules being worked on.
type Context struct {
	TypeState

	// Packages in declaration order; std comes first
	Packages []*Package
	// Prelude lists the Vids every module imports implicitly
	Prelude []vid.Vid
	// Impls is the instance relation list. It is frozen once built.
	Impls      []*InstanceRelation
	implsBuilt bool

	RunID string

	frames util.Stack[*frame]

	glanceStack   util.Stack[*Module]
	glancing      *set.Set[string]
	reportedCycle *set.Set[string]

	relChainsMemo map[string][][]*InstanceRelation
	// chainsInProgress holds the current approximation of the chains of
	// every vid whose FindSuperRelChains call has not returned yet
	chainsInProgress map[string][][]*InstanceRelation
	// assigning holds the isAssignable queries on the call stack
	assigning       *set.Set[string]
	recordedUpcasts *set.Set[upcastKey]
	generics        map[*ast.GenericDecl]*types.Generic
	patternVariants map[*ast.ConPattern]*VariantDef
	assignDepth     int
	// pendingClosures are closures with unannotated parameters that no call
	// or expected function type has typed yet
	pendingClosures []pendingClosure
}

type Option func(*Context)

// WithLogger replaces the default section-filtering logger
func WithLogger(l *slog.Logger) Option {
	return func(ctx *Context) { ctx.logger = l }
}

// WithPrelude overrides the default prelude
func WithPrelude(prelude []vid.Vid) Option {
	return func(ctx *Context) { ctx.Prelude = prelude }
}

// NewContext creates a Context holding the std package
func NewContext(opts ...Option) *Context {
	ctx := &Context{
		RunID:            uuid.NewString(),
		Prelude:          DefaultPrelude(),
		glancing:         set.New[string](4),
		reportedCycle:    set.New[string](0),
		relChainsMemo:    make(map[string][][]*InstanceRelation),
		chainsInProgress: make(map[string][][]*InstanceRelation),
		assigning:        set.New[string](8),
		recordedUpcasts:  set.New[upcastKey](0),
		generics:         make(map[*ast.GenericDecl]*types.Generic),
		patternVariants:  make(map[*ast.ConPattern]*VariantDef),
	}
	ctx.logger = ilelog.DefaultLogger
	for _, opt := range opts {
		opt(ctx)
	}
	ctx.logger = ctx.logger.With("run", ctx.RunID)
	ctx.AddPackage(StdPackageName, StdModules())
	return ctx
}

func (ctx *Context) log(section string) *slog.Logger {
	return ctx.logger.With("section", section)
}

type moduleState int

const (
	unvisited moduleState = iota
	glancing
	glanced
	checking
	checked
)

func (s moduleState) String() string {
	switch s {
	case unvisited:
		return "unvisited"
	case glancing:
		return "glancing"
	case glanced:
		return "glanced"
	case checking:
		return "checking"
	case checked:
		return "checked"
	default:
		return fmt.Sprintf("moduleState(%d)", int(s))
	}
}

// Package is a named set of modules
type Package struct {
	Name    string
	Modules []*Module
	byPath  map[string]*Module
}

// Module returns the module at path, which includes the package name
func (p *Package) Module(path vid.Vid) (*Module, bool) {
	m, ok := p.byPath[path.Key()]
	return m, ok
}

// Module is a single source file, known by its full path (`app::main`)
type Module struct {
	Path    vid.Vid
	Package *Package
	AST     *ast.Module
	// References are the flattened `use` imports, one Vid per imported name
	References []vid.Vid
	// RelImports lists the relations the generated code for this module
	// needs, each at most once
	RelImports []*InstanceRelation
	// UpcastSites lists every recorded upcast, in check order
	UpcastSites []UpcastSite

	state    moduleState
	def      *ModuleDef
	topScope *Scope
	// defs maps each top-level statement to its definition
	defs         map[ast.Statement]Definition
	relImportSet *set.Set[*InstanceRelation]
}

func (m *Module) String() string {
	return m.Path.String()
}

func (m *Module) addRelImport(rel *InstanceRelation) {
	if m.relImportSet.Insert(rel) {
		m.RelImports = append(m.RelImports, rel)
	}
}

// AddPackage registers a package. modules maps each module's full path
// (`app::main`) to its AST; paths must start with the package name.
// Modules are ordered by path so that compilation is deterministic.
func (ctx *Context) AddPackage(name string, modules map[string]*ast.Module) *Package {
	Assert(!ctx.implsBuilt, "package %s added after instance relations were built", name)
	pkg := &Package{Name: name, byPath: make(map[string]*Module, len(modules))}
	for _, path := range util.SortedKeys(modules) {
		v := vid.Parse(path)
		Assert(v.First() == name && v.Len() > 1, "module %s is not inside package %s", path, name)
		m := &Module{
			Path:         v,
			Package:      pkg,
			AST:          modules[path],
			topScope:     newScope(),
			defs:         make(map[ast.Statement]Definition),
			relImportSet: set.New[*InstanceRelation](0),
		}
		m.def = &ModuleDef{Module: m}
		pkg.Modules = append(pkg.Modules, m)
		pkg.byPath[v.Key()] = m
	}
	ctx.Packages = append(ctx.Packages, pkg)
	ctx.log("project").Debug("added package", "package", name, "modules", len(pkg.Modules))
	return pkg
}

// Package returns the package called name
func (ctx *Context) Package(name string) (*Package, bool) {
	for _, p := range ctx.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Module returns the module at the given full path
func (ctx *Context) Module(path string) (*Module, bool) {
	v := vid.Parse(path)
	pkg, ok := ctx.Package(v.First())
	if !ok {
		return nil, false
	}
	return pkg.Module(v)
}

// Modules iterates every module of every package in order
func (ctx *Context) Modules() []*Module {
	var all []*Module
	for _, p := range ctx.Packages {
		all = append(all, p.Modules...)
	}
	return all
}

// frame is the state of the module currently being worked on
type frame struct {
	module *Module
	scopes []*Scope
}

func (f *frame) push(s *Scope) { f.scopes = append(f.scopes, s) }
func (f *frame) pop()          { f.scopes = f.scopes[:len(f.scopes)-1] }

func (ctx *Context) currentFrame() *frame {
	f, ok := ctx.frames.Peek()
	Assert(ok, "no module is being checked")
	return f
}

// currentModule is the module diagnostics are reported against
func (ctx *Context) currentModule() *Module {
	return ctx.currentFrame().module
}

// inModule runs f with m as the current module and only m's top scope visible
func (ctx *Context) inModule(m *Module, f func()) {
	ctx.frames.Push(&frame{module: m, scopes: []*Scope{m.topScope}})
	defer ctx.frames.Pop()
	f()
}

// withScope runs f with s pushed on the current frame
func (ctx *Context) withScope(s *Scope, f func()) {
	fr := ctx.currentFrame()
	fr.push(s)
	defer fr.pop()
	f()
	ctx.typePendingClosures(fr, len(fr.scopes))
}

func (ctx *Context) site(at ast.Node) ilerr.Site {
	path := ""
	if f, ok := ctx.frames.Peek(); ok {
		path = f.module.Path.String()
	}
	return ilerr.Site{ModulePath: path, At: at}
}

// report adds a diagnostic built by ilerr.New
func (ctx *Context) report(e ilerr.IleError) {
	ctx.addError(e)
}

// Check glances every module, builds the instance relations and checks every
// module. Internal failures abort the compilation and are returned as err;
// diagnostics about the program are in ctx.Errors.
func (ctx *Context) Check() (err error) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := asFailure(r)
			if !ok {
				panic(r)
			}
			ctx.addFailure(f)
			err = f
		}
	}()
	ctx.log("check").Info("checking", "packages", len(ctx.Packages))
	for _, m := range ctx.Modules() {
		ctx.glance(m)
	}
	ctx.BuildInstanceRelations()
	for _, m := range ctx.Modules() {
		ctx.checkModule(m)
	}
	ctx.typeTopLevelClosures()
	ctx.log("check").Info("checked", "errors", len(ctx.Errors.Errors()), "warnings", len(ctx.Errors.Warnings()))
	return nil
}
