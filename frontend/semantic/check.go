package semantic

import (
	"github.com/pkg/errors"

	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/frontend/types"
	"github.com/tarn-lang/tarn/frontend/vid"
)

// checkModule fills the type slot of every node of m
func (ctx *Context) checkModule(m *Module) {
	if m.state >= checking {
		return
	}
	Assert(m.state == glanced, "module %s checked before it was glanced", m.Path)
	m.state = checking
	log := ctx.log("check").With("module", m.Path)
	log.Debug("checking module")
	ctx.inModule(m, func() {
		for _, stmt := range m.AST.Statements {
			ctx.checkTopLevel(m, stmt)
		}
	})
	m.state = checked
	log.Debug("checked module", "relImports", len(m.RelImports), "upcasts", len(m.UpcastSites))
}

func (ctx *Context) checkTopLevel(m *Module, stmt ast.Statement) {
	switch stmt := stmt.(type) {
	case *ast.VarDef:
		if def, ok := m.defs[stmt].(*VarDef); ok {
			ctx.varType(def)
			return
		}
		ctx.checkVarValue(stmt)
	case *ast.FnDef:
		var sig *types.FnType
		if def, ok := m.defs[stmt].(*FnDef); ok {
			sig = ctx.fnSignature(def)
		} else {
			sig = ctx.signatureOf(stmt, m.Path.Append(stmt.Name))
		}
		ctx.checkFnBody(stmt, sig)
	case *ast.TraitDef:
		def, ok := m.defs[stmt].(*TraitDef)
		if !ok {
			return
		}
		ctx.withScope(ctx.instanceScopeOf(def), func() {
			for _, fn := range stmt.Body {
				sig := ctx.methodSignature(def.Methods[fn.Name])
				if fn.Body != nil {
					ctx.checkFnBody(fn, sig)
				} else {
					fn.Type = sig
				}
			}
		})
	case *ast.ImplDef:
		def := m.defs[stmt].(*ImplDef)
		if def.Rel == nil {
			return
		}
		ctx.withScope(ctx.instanceScopeOf(def), func() {
			for _, fn := range stmt.Body {
				sig := ctx.methodSignature(def.Methods[fn.Name])
				if fn.Body != nil {
					ctx.checkFnBody(fn, sig)
				} else {
					fn.Type = sig
				}
			}
		})
		ctx.checkImplComplete(def)
	case *ast.TypeDef:
		def, ok := m.defs[stmt].(*TypeDef)
		if !ok {
			return
		}
		for _, variant := range stmt.Variants {
			for _, f := range variant.Fields {
				ctx.fieldType(def, f)
			}
		}
	case *ast.ReturnStmt, *ast.ExprStmt:
		ctx.checkStatement(stmt)
	default:
		Unreachable(stmt)
	}
}

// checkImplComplete reports abstract trait methods an impl leaves undefined
func (ctx *Context) checkImplComplete(def *ImplDef) {
	trait, ok := def.Rel.Trait()
	if !ok {
		return
	}
	for _, fn := range trait.Node.Body {
		if fn.Body != nil {
			continue
		}
		if _, ok := def.Methods[fn.Name]; ok {
			continue
		}
		ctx.report(ilerr.New(ilerr.NewMissingMethod{
			Site:     ctx.site(def.Node),
			Method:   fn.Name,
			Trait:    def.Rel.Name(),
			TypeName: def.Rel.ForType.String(),
		}))
	}
}

// checkFnBody checks fn's body against its signature. Bodiless functions
// are declarations implemented outside the checked program.
func (ctx *Context) checkFnBody(fn *ast.FnDef, sig *types.FnType) {
	fn.Type = sig
	if fn.Body == nil {
		return
	}
	scope, _ := ctx.genericScope(fn.Generics, vid.New(fn.Name))
	for _, p := range fn.Params {
		scope.define(KindParam, p.Name, &ParamDef{Node: p})
	}
	scope.fn = &fnScope{name: fn.Name, returnType: sig.ReturnType}
	ctx.withScope(scope, func() {
		bodyType := ctx.checkBlock(fn.Body, sig.ReturnType)
		ctx.checkBodyReturns(fn.Name, fn.Body, bodyType, sig.ReturnType)
	})
}

// checkBodyReturns checks the value a function body falls through with
func (ctx *Context) checkBodyReturns(name string, body *ast.Block, bodyType, returnType types.VirtualType) {
	if types.Equal(returnType, types.Unit) || types.IsNever(bodyType) {
		return
	}
	tail, ok := tailExpr(body)
	if !ok {
		ctx.report(ilerr.New(ilerr.NewMissingReturn{Site: ctx.site(body), Function: name, Expected: returnType}))
		return
	}
	ctx.expectAssignable(tail, bodyType, returnType)
}

// tailExpr is the expression a block evaluates to, if any
func tailExpr(b *ast.Block) (ast.Expr, bool) {
	if len(b.Statements) == 0 {
		return nil, false
	}
	if s, ok := b.Statements[len(b.Statements)-1].(*ast.ExprStmt); ok {
		return s.X, true
	}
	return nil, false
}

// expectAssignable reports a type mismatch at node when got does not fit
// want, and records the upcast otherwise
func (ctx *Context) expectAssignable(node ast.Expr, got, want types.VirtualType) bool {
	if !ctx.isAssignable(got, want) {
		ctx.report(ilerr.New(ilerr.NewTypeMismatch{Site: ctx.site(node), Expected: want, Got: got}))
		return false
	}
	ctx.upcastTo(node, got, want)
	return true
}

// checkBlock checks b in a new scope. Its type is the type of its tail
// expression, Never if it returns unconditionally, and Unit otherwise.
func (ctx *Context) checkBlock(b *ast.Block, expected types.VirtualType) types.VirtualType {
	var result types.VirtualType = types.Unit
	ctx.withScope(newScope(), func() {
		diverges := false
		for i, stmt := range b.Statements {
			if es, ok := stmt.(*ast.ExprStmt); ok && i == len(b.Statements)-1 {
				result = ctx.checkExpr(es.X, expected)
				continue
			}
			ctx.checkStatement(stmt)
			if _, ok := stmt.(*ast.ReturnStmt); ok {
				diverges = true
			}
		}
		if diverges && types.Equal(result, types.Unit) {
			result = types.Never
		}
	})
	b.Type = result
	return result
}

func (ctx *Context) checkStatement(stmt ast.Statement) {
	switch stmt := stmt.(type) {
	case *ast.VarDef:
		ctx.checkVarValue(stmt)
		s := ctx.currentFrame().scopes
		s[len(s)-1].define(KindVar, stmt.Name, &VarDef{Name: stmt.Name, Node: stmt, Binding: stmt})
	case *ast.FnDef:
		def := &FnDef{Node: stmt, Vid: vid.New(stmt.Name)}
		def.sig = ctx.signatureOf(stmt, def.Vid)
		s := ctx.currentFrame().scopes
		s[len(s)-1].define(KindFn, stmt.Name, def)
		ctx.checkFnBody(stmt, def.sig)
	case *ast.TraitDef, *ast.ImplDef, *ast.TypeDef:
		ctx.report(ilerr.New(ilerr.Unclassified{Site: ctx.site(stmt), From: errors.New("trait, impl and type declarations are only allowed at the top level of a module")}))
	case *ast.ReturnStmt:
		ctx.checkReturn(stmt)
	case *ast.ExprStmt:
		ctx.checkExpr(stmt.X, nil)
	default:
		Unreachable(stmt)
	}
}

func (ctx *Context) checkReturn(stmt *ast.ReturnStmt) {
	fs, ok := ctx.fnScope()
	if !ok {
		ctx.report(ilerr.New(ilerr.Unclassified{Site: ctx.site(stmt), From: errors.New("return outside of a function")}))
		if stmt.Value != nil {
			ctx.checkExpr(stmt.Value, nil)
		}
		return
	}
	var t types.VirtualType = types.Unit
	if stmt.Value != nil {
		t = ctx.checkExpr(stmt.Value, fs.returnType)
	}
	if fs.returnType == nil {
		fs.returns = append(fs.returns, t)
		return
	}
	if stmt.Value == nil {
		if !ctx.isAssignable(types.Unit, fs.returnType) {
			ctx.report(ilerr.New(ilerr.NewMissingReturn{Site: ctx.site(stmt), Function: fs.name, Expected: fs.returnType}))
		}
		return
	}
	ctx.expectAssignable(stmt.Value, t, fs.returnType)
}

// checkVarValue types a `let` and returns the type of the binding
func (ctx *Context) checkVarValue(n *ast.VarDef) types.VirtualType {
	declared := ctx.resolveTypeExpr(n.VarType)
	t := ctx.settle(ctx.checkExpr(n.Value, declared))
	if declared == nil {
		n.Type = t
		return t
	}
	t = ctx.settleAgainst(n.Value, t, declared)
	ctx.expectAssignable(n.Value, t, declared)
	n.Type = declared
	return declared
}

// varType is the type of a variable. Top-level variables are checked on
// first use; a variable whose value refers to itself is Unknown.
func (ctx *Context) varType(def *VarDef) types.VirtualType {
	if t := def.Binding.Annotation().Type; t != nil {
		return ctx.settle(t)
	}
	if def.Module == nil || def.Node == nil {
		return types.NewUnknown()
	}
	if def.typing {
		ctx.report(ilerr.New(ilerr.Unclassified{Site: ctx.site(def.Node), From: errors.Errorf("variable `%s` refers to itself", def.Name)}))
		return types.NewUnknown()
	}
	def.typing = true
	defer func() { def.typing = false }()
	var t types.VirtualType
	ctx.inModule(def.Module, func() {
		t = ctx.checkVarValue(def.Node)
	})
	return t
}
