package semantic

import (
	"sort"

	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/frontend/vid"
)

// glance registers the top-level definitions of m and flattens its `use`
// imports into m.References. Modules m imports from are glanced first.
func (ctx *Context) glance(m *Module) {
	if m.state != unvisited {
		return
	}
	log := ctx.log("glance").With("module", m.Path)
	log.Debug("glancing")
	m.state = glancing
	ctx.glanceStack.Push(m)
	ctx.glancing.Insert(m.Path.Key())
	defer func() {
		ctx.glanceStack.Pop()
		ctx.glancing.Remove(m.Path.Key())
		m.state = glanced
		log.Debug("glanced", "references", len(m.References))
	}()

	ctx.inModule(m, func() {
		for _, stmt := range m.AST.Statements {
			ctx.registerTopLevel(m, stmt)
		}
		for _, use := range m.AST.Uses {
			ctx.flattenUse(nil, use)
		}
	})
}

// ensureGlanced glances m if needed. Reaching a module that is still being
// glanced means the imports form a cycle, which is reported once.
func (ctx *Context) ensureGlanced(m *Module) {
	switch m.state {
	case unvisited:
		ctx.glance(m)
	case glancing:
		if !ctx.glancing.Contains(m.Path.Key()) {
			return
		}
		var cycle []string
		onCycle := false
		for _, other := range ctx.glanceStack.Items() {
			if other == m {
				onCycle = true
			}
			if onCycle {
				cycle = append(cycle, other.Path.String())
			}
		}
		cycle = append(cycle, m.Path.String())
		key := cycleKey(cycle)
		if !ctx.reportedCycle.Insert(key) {
			return
		}
		ctx.report(ilerr.New(ilerr.NewCircularModuleReference{Site: ctx.site(nil), Cycle: cycle}))
	}
}

// cycleKey identifies a cycle independently of where it was entered
func cycleKey(cycle []string) string {
	members := append([]string(nil), cycle[:len(cycle)-1]...)
	sort.Strings(members)
	key := ""
	for _, m := range members {
		key += m + ";"
	}
	return key
}

func (ctx *Context) registerTopLevel(m *Module, stmt ast.Statement) {
	var (
		def  Definition
		name string
	)
	switch stmt := stmt.(type) {
	case *ast.VarDef:
		def, name = &VarDef{Name: stmt.Name, Node: stmt, Binding: stmt, Module: m}, stmt.Name
	case *ast.FnDef:
		def, name = &FnDef{Node: stmt, Vid: m.Path.Append(stmt.Name), Module: m}, stmt.Name
	case *ast.TraitDef:
		def, name = newTraitDef(stmt, m.Path.Append(stmt.Name), m), stmt.Name
	case *ast.TypeDef:
		def, name = newTypeDef(stmt, m.Path.Append(stmt.Name), m), stmt.Name
	case *ast.ImplDef:
		m.defs[stmt] = newImplDef(stmt, m)
		return
	case *ast.ReturnStmt, *ast.ExprStmt:
		return
	default:
		Unreachable(stmt)
	}
	if _, exists := m.topScope.lookup(def.Kind(), name); exists {
		ctx.report(ilerr.New(ilerr.NewRedeclaration{Site: ctx.site(stmt), Name: name}))
		return
	}
	m.topScope.define(def.Kind(), name, def)
	m.defs[stmt] = def
}

// flattenUse turns one `use` expression into References. prefix is the
// path of the enclosing nested use.
func (ctx *Context) flattenUse(prefix []string, use *ast.UseExpr) {
	path := append(append([]string(nil), prefix...), use.Path...)
	if len(path) == 0 {
		ctx.report(ilerr.New(ilerr.NewNotFound{Site: ctx.site(use), What: "import", Name: ""}))
		return
	}
	v := vid.New(path...)
	switch {
	case use.Wildcard:
		r, ok := ctx.resolveQualified(v, ModuleKinds)
		if !ok {
			ctx.report(ilerr.New(ilerr.NewNotFound{Site: ctx.site(use), What: "module", Name: v.String()}))
			return
		}
		target := r.Def.(*ModuleDef).Module
		ctx.ensureGlanced(target)
		current := ctx.currentModule()
		for _, name := range topLevelNames(target) {
			def := topLevelDef(target, name)
			if target != current && !isPublic(def) {
				continue
			}
			current.References = append(current.References, target.Path.Append(name))
		}
	case len(use.Nested) > 0:
		for _, nested := range use.Nested {
			ctx.flattenUse(path, nested)
		}
	default:
		r, ok := ctx.resolveQualified(v, AnyKinds)
		if !ok {
			ctx.report(ilerr.New(ilerr.NewNotFound{Site: ctx.site(use), What: "import", Name: v.String()}))
			return
		}
		if r.Module != nil && r.Module != ctx.currentModule() && !isPublic(r.Def) {
			ctx.report(ilerr.New(ilerr.NewPrivateAccess{Site: ctx.site(use), Name: r.Vid.String()}))
		}
		ctx.currentModule().References = append(ctx.currentModule().References, r.Vid)
	}
}

// topLevelNames lists the names declared at the top of m, sorted
func topLevelNames(m *Module) []string {
	seen := map[string]bool{}
	var names []string
	for key := range m.topScope.defs {
		if !seen[key.name] {
			seen[key.name] = true
			names = append(names, key.name)
		}
	}
	sort.Strings(names)
	return names
}

func topLevelDef(m *Module, name string) Definition {
	def, ok := m.topScope.lookupAny(AnyKinds, name)
	Assert(ok, "%s is not declared in %s", name, m.Path)
	return def
}
