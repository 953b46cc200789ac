package semantic

import (
	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/frontend/types"
	"github.com/tarn-lang/tarn/frontend/vid"
)

// ResolveType substitutes every generic of t using maps, highest priority
// first. Generics declared by the enclosing function, trait or impl stay as
// they are. Any other unbound generic is reported at `at` and becomes
// Unknown.
func ResolveType(ctx *Context, t types.VirtualType, maps []types.GenericMap, at ast.Node) types.VirtualType {
	resolved := types.Substitute(t,
		func(g *types.Generic) (types.VirtualType, bool) { return types.Lookup(maps, g.Name) },
		func(g *types.Generic) types.VirtualType {
			if ctx.genericInScope(g) {
				return g
			}
			ctx.report(ilerr.New(ilerr.NewUnresolvedGeneric{Site: ctx.site(at), Name: g.Name}))
			return types.NewUnknown()
		},
	)
	ctx.log("generics").Debug("resolved type", "type", t, "resolved", resolved)
	return resolved
}

// genericInScope reports whether g is declared by an enclosing definition
func (ctx *Context) genericInScope(g *types.Generic) bool {
	if g.Name == SelfGenericName {
		self, ok := ctx.instanceScope()
		if !ok {
			return false
		}
		selfGeneric, ok := self.Type.(*types.Generic)
		return ok && selfGeneric.Key == g.Key
	}
	r, ok := ResolveVid(ctx, vid.New(g.Name), []DefKind{KindGeneric})
	if !ok {
		return false
	}
	return r.Def.(*GenericDef).Generic.Key == g.Key
}

// explicitGenerics maps generics to explicit type arguments by position.
// A count mismatch is reported and binds nothing.
func (ctx *Context) explicitGenerics(at ast.Node, generics []*types.Generic, args []ast.TypeExpr) types.GenericMap {
	m := types.EmptyGenericMap()
	if len(args) == 0 {
		return m
	}
	if !ctx.checkTypeArity(at, len(generics), len(args)) {
		return m
	}
	for i, a := range args {
		m = m.With(generics[i].Name, ctx.resolveTypeExpr(a))
	}
	return m
}
