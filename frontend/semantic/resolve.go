package semantic

import (
	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/frontend/vid"
)

// Resolved is the outcome of resolving a Vid
type Resolved struct {
	// Vid is canonical for top-level definitions (`app::main::foo`) and as
	// written for locals
	Vid vid.Vid
	Def Definition
	// Module declared Def; nil for locals
	Module *Module
}

// ResolveVid finds the definition v refers to from the current scope,
// considering only definitions whose kind is in filter. It tries in order:
//
//  1. `Self` (and `Self::method`) inside a trait or impl body
//  2. the scope stack, innermost first
//  3. v as a fully qualified path `package::module::name`
//  4. v relative to the module's imports and the prelude
//
// Resolving the same Vid twice from the same scope yields the same result.
func ResolveVid(ctx *Context, v vid.Vid, filter []DefKind) (Resolved, bool) {
	r, ok := resolveVid(ctx, v, filter)
	ctx.log("resolve").Debug("resolved vid", "vid", v, "found", ok, "as", r.Vid)
	return r, ok
}

func resolveVid(ctx *Context, v vid.Vid, filter []DefKind) (Resolved, bool) {
	if v.First() == "Self" {
		if self, ok := ctx.instanceScope(); ok {
			switch {
			case v.Len() == 1 && containsKind(filter, KindSelf):
				return Resolved{Vid: v, Def: self}, true
			case v.Len() == 2 && containsKind(filter, KindMethod):
				if m, ok := instanceMethod(self.Owner, v.Last()); ok {
					return Resolved{Vid: v, Def: m, Module: moduleOf(m)}, true
				}
			}
		}
	}

	fr := ctx.currentFrame()
	for i := len(fr.scopes) - 1; i >= 0; i-- {
		var owner *Module
		if i == 0 {
			owner = fr.module
		}
		if r, ok := ctx.lookupInScope(fr.scopes[i], v, filter, owner); ok {
			return r, true
		}
	}

	if r, ok := ctx.resolveQualified(v, filter); ok {
		return r, true
	}

	for _, ref := range append(append([]vid.Vid(nil), fr.module.References...), ctx.Prelude...) {
		if ref.Last() != v.First() {
			continue
		}
		scope, ok := vid.Scope(ref)
		if !ok {
			continue
		}
		if r, ok := ctx.resolveQualified(vid.Concat(scope, v), filter); ok {
			return r, true
		}
	}
	return Resolved{}, false
}

// lookupInScope resolves v (one or two segments) against a single scope.
// owner is the module whose top scope this is, or nil for local scopes.
func (ctx *Context) lookupInScope(s *Scope, v vid.Vid, filter []DefKind, owner *Module) (Resolved, bool) {
	switch v.Len() {
	case 1:
		def, ok := s.lookupAny(filter, v.First())
		if !ok {
			return Resolved{}, false
		}
		if owner == nil {
			return Resolved{Vid: v, Def: def}, true
		}
		return Resolved{Vid: vid.Concat(owner.Path, v), Def: def, Module: owner}, true
	case 2:
		if containsKind(filter, KindVariant) || containsKind(filter, KindMethod) {
			if def, ok := s.lookup(KindType, v.First()); ok {
				typeDef := def.(*TypeDef)
				if variant, ok := typeDef.Variants[v.Last()]; ok && containsKind(filter, KindVariant) {
					return Resolved{Vid: typeDef.Vid.Append(v.Last()), Def: variant, Module: typeDef.Module}, true
				}
				if m, ok := ctx.inherentMethod(typeDef, v.Last()); ok && containsKind(filter, KindMethod) {
					return Resolved{Vid: typeDef.Vid.Append(v.Last()), Def: m, Module: moduleOf(m)}, true
				}
			}
		}
		if containsKind(filter, KindMethod) {
			if def, ok := s.lookup(KindTrait, v.First()); ok {
				trait := def.(*TraitDef)
				if m, ok := trait.Methods[v.Last()]; ok {
					return Resolved{Vid: trait.Vid.Append(v.Last()), Def: m, Module: trait.Module}, true
				}
			}
		}
	}
	return Resolved{}, false
}

// resolveQualified treats v as `package::module::path` and tries
// progressively longer module prefixes. Modules are glanced on demand.
func (ctx *Context) resolveQualified(v vid.Vid, filter []DefKind) (Resolved, bool) {
	pkg, ok := ctx.Package(v.First())
	if !ok {
		return Resolved{}, false
	}
	for i := 2; i <= v.Len(); i++ {
		prefix := vid.New(v.Names[:i]...)
		m, ok := pkg.Module(prefix)
		if !ok {
			continue
		}
		if i == v.Len() {
			if containsKind(filter, KindModule) {
				return Resolved{Vid: prefix, Def: m.def}, true
			}
			continue
		}
		ctx.ensureGlanced(m)
		rest := vid.New(v.Names[i:]...)
		if r, ok := ctx.lookupInScope(m.topScope, rest, filter, m); ok {
			return r, true
		}
	}
	return Resolved{}, false
}

// instanceMethod looks name up in a trait or impl body. An impl of a trait
// also exposes the trait's methods.
func instanceMethod(owner Definition, name string) (*MethodDef, bool) {
	switch owner := owner.(type) {
	case *TraitDef:
		m, ok := owner.Methods[name]
		return m, ok
	case *ImplDef:
		if m, ok := owner.Methods[name]; ok {
			return m, true
		}
		if owner.Rel != nil && !owner.Rel.Inherent {
			if trait, ok := owner.Rel.Trait(); ok {
				m, ok := trait.Methods[name]
				return m, ok
			}
		}
		return nil, false
	default:
		Unreachable(owner)
		return nil, false
	}
}

// inherentMethod finds `Type::name` in the inherent impls of typeDef
func (ctx *Context) inherentMethod(typeDef *TypeDef, name string) (*MethodDef, bool) {
	for _, rel := range ctx.Impls {
		if !rel.Inherent || !rel.ForVid().Equal(typeDef.Vid) {
			continue
		}
		if m, ok := rel.Instance.(*ImplDef).Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// resolveOrReport resolves v and reports not-found and private-access
// diagnostics at node
func (ctx *Context) resolveOrReport(node ast.Node, v vid.Vid, filter []DefKind, what string) (Resolved, bool) {
	r, ok := ResolveVid(ctx, v, filter)
	if !ok {
		ctx.report(ilerr.New(ilerr.NewNotFound{Site: ctx.site(node), What: what, Name: v.String()}))
		return r, false
	}
	if r.Module != nil && r.Module != ctx.currentModule() && !isPublic(r.Def) {
		ctx.report(ilerr.New(ilerr.NewPrivateAccess{Site: ctx.site(node), Name: r.Vid.String()}))
	}
	return r, true
}
