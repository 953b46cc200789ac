package semantic

import (
	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/frontend/types"
	"github.com/tarn-lang/tarn/frontend/vid"
)

// resolveTypeExpr turns a written type into a VirtualType, resolving names
// from the current scope. A nil te yields nil.
func (ctx *Context) resolveTypeExpr(te ast.TypeExpr) types.VirtualType {
	switch te := te.(type) {
	case nil:
		return nil
	case *ast.HoleType:
		return types.NewHole()
	case *ast.FnTypeExpr:
		scope, generics := ctx.genericScope(te.Generics, vid.New("fn"))
		fnType := &types.FnType{Generics: generics}
		ctx.withScope(scope, func() {
			for _, p := range te.Params {
				fnType.ParamTypes = append(fnType.ParamTypes, ctx.resolveTypeExpr(p))
			}
			fnType.ReturnType = ctx.resolveTypeExpr(te.Return)
			if fnType.ReturnType == nil {
				fnType.ReturnType = types.Unit
			}
		})
		return fnType
	case *ast.NamedType:
		return ctx.resolveNamedType(te)
	default:
		Unreachable(te)
		return nil
	}
}

func (ctx *Context) resolveNamedType(te *ast.NamedType) types.VirtualType {
	r, ok := ctx.resolveOrReport(te, vid.New(te.Names...), TypeKinds, "type")
	if !ok {
		return types.NewUnknown()
	}
	args := make([]types.VirtualType, len(te.TypeArgs))
	for i, a := range te.TypeArgs {
		args[i] = ctx.resolveTypeExpr(a)
	}
	switch def := r.Def.(type) {
	case *SelfDef:
		ctx.checkTypeArity(te, 0, len(args))
		return def.Type
	case *GenericDef:
		ctx.checkTypeArity(te, 0, len(args))
		return def.Generic
	case *TypeDef:
		return &types.VidType{Identifier: def.Vid, TypeArgs: ctx.fitTypeArgs(te, len(ctx.typeGenerics(def)), args)}
	case *TraitDef:
		return &types.VidType{Identifier: def.Vid, TypeArgs: ctx.fitTypeArgs(te, len(ctx.traitGenerics(def)), args)}
	default:
		Unreachable(def)
		return nil
	}
}

func (ctx *Context) checkTypeArity(at ast.Node, expected, got int) bool {
	if expected == got {
		return true
	}
	ctx.report(ilerr.New(ilerr.NewArityMismatch{Site: ctx.site(at), What: "type arguments", Expected: expected, Got: got}))
	return false
}

// fitTypeArgs makes args as long as the declared generics. Omitted
// arguments are holes; a wrong count is reported.
func (ctx *Context) fitTypeArgs(at ast.Node, expected int, args []types.VirtualType) []types.VirtualType {
	if len(args) == 0 {
		return holes(expected)
	}
	if !ctx.checkTypeArity(at, expected, len(args)) {
		fitted := make([]types.VirtualType, expected)
		for i := range fitted {
			if i < len(args) {
				fitted[i] = args[i]
			} else {
				fitted[i] = types.NewUnknown()
			}
		}
		return fitted
	}
	return args
}

func holes(n int) []types.VirtualType {
	if n == 0 {
		return nil
	}
	hs := make([]types.VirtualType, n)
	for i := range hs {
		hs[i] = types.NewHole()
	}
	return hs
}

// genericScope declares generics in a fresh scope. Generics are created
// once per declaration; bounds may refer to sibling generics.
func (ctx *Context) genericScope(decls []*ast.GenericDecl, owner vid.Vid) (*Scope, []*types.Generic) {
	scope := newScope()
	generics := make([]*types.Generic, len(decls))
	var fresh []int
	for i, decl := range decls {
		g, ok := ctx.generics[decl]
		if !ok {
			g = &types.Generic{Name: decl.Name, Key: owner.Append(decl.Name).String()}
			ctx.generics[decl] = g
			fresh = append(fresh, i)
		}
		generics[i] = g
		scope.define(KindGeneric, decl.Name, &GenericDef{Node: decl, Generic: g})
	}
	if len(fresh) > 0 {
		ctx.withScope(scope, func() {
			for _, i := range fresh {
				for _, b := range decls[i].Bounds {
					generics[i].Bounds = append(generics[i].Bounds, ctx.resolveTypeExpr(b))
				}
			}
		})
	}
	return scope, generics
}

func (ctx *Context) typeGenerics(def *TypeDef) []*types.Generic {
	if def.generics == nil {
		ctx.inModule(def.Module, func() {
			_, def.generics = ctx.genericScope(def.Node.Generics, def.Vid)
		})
	}
	return def.generics
}

func (ctx *Context) traitGenerics(def *TraitDef) []*types.Generic {
	if def.generics == nil {
		ctx.inModule(def.Module, func() {
			_, def.generics = ctx.genericScope(def.Node.Generics, def.Vid)
		})
	}
	return def.generics
}

// typeSelf is a type definition applied to its own generics, `Option<T>`
func (ctx *Context) typeSelf(def *TypeDef) *types.VidType {
	return &types.VidType{Identifier: def.Vid, TypeArgs: genericsAsTypes(ctx.typeGenerics(def))}
}

// traitSelf is a trait applied to its own generics
func (ctx *Context) traitSelf(def *TraitDef) *types.VidType {
	return &types.VidType{Identifier: def.Vid, TypeArgs: genericsAsTypes(ctx.traitGenerics(def))}
}

// traitSelfGeneric is `Self` inside a trait body: any type implementing it
func (ctx *Context) traitSelfGeneric(def *TraitDef) *types.Generic {
	if def.selfGeneric == nil {
		def.selfGeneric = &types.Generic{
			Name:   SelfGenericName,
			Key:    def.Vid.Append(SelfGenericName).String(),
			Bounds: []types.VirtualType{ctx.traitSelf(def)},
		}
	}
	return def.selfGeneric
}

// SelfGenericName is the generic standing for the receiver type in trait methods
const SelfGenericName = "Self"

func genericsAsTypes(gs []*types.Generic) []types.VirtualType {
	if len(gs) == 0 {
		return nil
	}
	ts := make([]types.VirtualType, len(gs))
	for i, g := range gs {
		ts[i] = g
	}
	return ts
}

// fieldType is the declared type of a field, in terms of the type's generics
func (ctx *Context) fieldType(def *TypeDef, field *ast.FieldDef) types.VirtualType {
	if field.Type == nil {
		ctx.inModule(def.Module, func() {
			scope, _ := ctx.genericScope(def.Node.Generics, def.Vid)
			ctx.withScope(scope, func() {
				field.Type = ctx.resolveTypeExpr(field.FieldType)
			})
		})
	}
	return field.Type
}

// instanceScopeOf is the scope of a trait or impl body: its generics and Self
func (ctx *Context) instanceScopeOf(owner Definition) *Scope {
	switch owner := owner.(type) {
	case *TraitDef:
		if owner.scope == nil {
			generics := ctx.traitGenerics(owner)
			s := newScope()
			for i, g := range generics {
				s.define(KindGeneric, g.Name, &GenericDef{Node: owner.Node.Generics[i], Generic: g})
			}
			s.instance = &SelfDef{Owner: owner, Type: ctx.traitSelfGeneric(owner)}
			owner.scope = s
		}
		return owner.scope
	case *ImplDef:
		Assert(owner.Rel != nil, "impl scope requested before relations were built")
		if owner.scope == nil {
			s := newScope()
			for i, g := range owner.Rel.Generics {
				s.define(KindGeneric, g.Name, &GenericDef{Node: owner.Node.Generics[i], Generic: g})
			}
			s.instance = &SelfDef{Owner: owner, Type: owner.Rel.ForType}
			owner.scope = s
		}
		return owner.scope
	default:
		Unreachable(owner)
		return nil
	}
}

// inDefinition runs f where the signature of def can be resolved: in its
// module, inside its trait or impl body for methods
func (ctx *Context) inDefinition(def Definition, f func()) {
	switch def := def.(type) {
	case *MethodDef:
		ctx.inModule(moduleOf(def), func() {
			ctx.withScope(ctx.instanceScopeOf(def.Owner), f)
		})
	default:
		m := moduleOf(def)
		Assert(m != nil, "%T is not a top-level definition", def)
		ctx.inModule(m, f)
	}
}

// fnSignature is the type of a top-level function
func (ctx *Context) fnSignature(def *FnDef) *types.FnType {
	if def.sig == nil {
		ctx.inDefinition(def, func() {
			def.sig = ctx.signatureOf(def.Node, def.Vid)
		})
	}
	return def.sig
}

// methodSignature is the type of a trait or impl method. The receiver, if
// any, is the first parameter and has type Self.
func (ctx *Context) methodSignature(def *MethodDef) *types.FnType {
	if def.sig == nil {
		ctx.inDefinition(def, func() {
			def.sig = ctx.signatureOf(def.Node, ownerVid(def.Owner).Append(def.Node.Name))
		})
	}
	return def.sig
}

func ownerVid(owner Definition) vid.Vid {
	switch owner := owner.(type) {
	case *TraitDef:
		return owner.Vid
	case *ImplDef:
		if owner.Rel != nil {
			return owner.Rel.ImplType.Identifier
		}
		return owner.Module.Path.Append("impl")
	default:
		Unreachable(owner)
		return vid.Vid{}
	}
}

// signatureOf types the parameters and return type of fn in the current scope
func (ctx *Context) signatureOf(fn *ast.FnDef, owner vid.Vid) *types.FnType {
	scope, generics := ctx.genericScope(fn.Generics, owner)
	sig := &types.FnType{Generics: generics}
	ctx.withScope(scope, func() {
		for _, p := range fn.Params {
			if p.Type == nil {
				p.Type = ctx.paramType(p)
			}
			sig.ParamTypes = append(sig.ParamTypes, p.Type)
		}
		sig.ReturnType = ctx.resolveTypeExpr(fn.ReturnType)
		if sig.ReturnType == nil {
			sig.ReturnType = types.Unit
		}
	})
	return sig
}

func (ctx *Context) paramType(p *ast.Param) types.VirtualType {
	if p.ParamType != nil {
		return ctx.resolveTypeExpr(p.ParamType)
	}
	if p.Name == ast.SelfParamName {
		if self, ok := ctx.instanceScope(); ok {
			return self.Type
		}
	}
	ctx.report(ilerr.New(ilerr.NewNotFound{Site: ctx.site(p), What: "type annotation for parameter", Name: p.Name}))
	return types.NewUnknown()
}
