package semantic

import (
	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/frontend/types"
	"github.com/tarn-lang/tarn/frontend/vid"
)

func (ctx *Context) checkMatch(e *ast.Match, expected types.VirtualType) types.VirtualType {
	scrutinee := ctx.settle(ctx.checkExpr(e.Scrutinee, nil))
	var result types.VirtualType
	for _, clause := range e.Clauses {
		scope := newScope()
		ctx.withScope(scope, func() {
			for _, p := range clause.Patterns {
				ctx.checkPattern(p, scrutinee, scope)
			}
			if clause.Guard != nil {
				ctx.expectAssignable(clause.Guard, ctx.checkExpr(clause.Guard, types.Bool), types.Bool)
			}
			t := ctx.checkBlock(clause.Body, expected)
			if result == nil {
				result = t
				return
			}
			combined, ok := ctx.Combine(result, t)
			if !ok {
				ctx.report(ilerr.New(ilerr.NewBranchMismatch{Site: ctx.site(clause.Body), First: result, Second: t}))
				result = types.NewUnknown()
				return
			}
			result = combined
		})
	}
	ctx.checkExhaustiveness(e)
	if result == nil {
		return types.Never
	}
	return result
}

// checkPattern types p against the scrutinee type and binds its names in scope
func (ctx *Context) checkPattern(p ast.Pattern, expected types.VirtualType, scope *Scope) {
	switch p := p.(type) {
	case *ast.BindPattern:
		p.Type = expected
		scope.define(KindVar, p.Name, &VarDef{Name: p.Name, Binding: p})
	case *ast.HolePattern:
		p.Type = expected
	case *ast.LitPattern:
		t := literalType(p.Lit)
		p.Lit.Type = t
		p.Type = t
		if !ctx.isAssignable(t, expected) {
			ctx.report(ilerr.New(ilerr.NewTypeMismatch{Site: ctx.site(p), Expected: expected, Got: t}))
		}
	case *ast.ConPattern:
		ctx.checkConPattern(p, expected, scope)
	default:
		Unreachable(p)
	}
}

func (ctx *Context) checkConPattern(p *ast.ConPattern, expected types.VirtualType, scope *Scope) {
	r, ok := ctx.resolveOrReport(p.Identifier, vid.New(p.Identifier.Names...), []DefKind{KindVariant}, "variant")
	if !ok {
		p.Type = types.NewUnknown()
		for _, fp := range p.Fields {
			ctx.bindField(fp, types.NewUnknown(), scope)
		}
		return
	}
	variant := r.Def.(*VariantDef)
	ctx.patternVariants[p] = variant
	td := variant.TypeDef

	m := types.EmptyGenericMap()
	self := &types.VidType{Identifier: td.Vid, TypeArgs: holes(len(ctx.typeGenerics(td)))}
	switch e := expected.(type) {
	case *types.VidType:
		if !e.Identifier.Equal(td.Vid) {
			ctx.report(ilerr.New(ilerr.NewTypeMismatch{Site: ctx.site(p), Expected: expected, Got: self}))
			break
		}
		self = e
		m = types.ResolveGenericsOverStructure(e, ctx.typeSelf(td))
	default:
		if !types.IsUnknownOrHole(expected) {
			ctx.report(ilerr.New(ilerr.NewTypeMismatch{Site: ctx.site(p), Expected: expected, Got: self}))
		}
	}
	p.Type = self
	p.Identifier.Type = self

	for _, fp := range p.Fields {
		f, ok := variant.Node.Field(fp.Name)
		if !ok {
			ctx.report(ilerr.New(ilerr.NewNotFound{Site: ctx.site(fp), What: "field", Name: variant.Node.Name + "." + fp.Name}))
			ctx.bindField(fp, types.NewUnknown(), scope)
			continue
		}
		if !f.Pub && td.Module != ctx.currentModule() {
			ctx.report(ilerr.New(ilerr.NewPrivateAccess{Site: ctx.site(fp), Name: td.Vid.String() + "." + f.Name}))
		}
		ctx.bindField(fp, ctx.substituteOrHole(ctx.fieldType(td, f), m), scope)
	}
}

// bindField checks a field sub-pattern; without one the field is bound to
// a variable of the same name
func (ctx *Context) bindField(fp *ast.FieldPattern, t types.VirtualType, scope *Scope) {
	if fp.Pattern != nil {
		ctx.checkPattern(fp.Pattern, t, scope)
		return
	}
	scope.define(KindVar, fp.Name, &VarDef{Name: fp.Name, Binding: &ast.Annot{Type: t}})
}
