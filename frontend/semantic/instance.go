package semantic

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-set/v3"
	xset "github.com/xtgo/set"

	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/frontend/types"
	"github.com/tarn-lang/tarn/frontend/vid"
)

// InstanceRelation says that ForType can be viewed as ImplType.
//
// An `impl<G> Trait for T` yields ImplType Trait and ForType T. A trait
// declaration yields a self-relation where both are the trait itself. An
// inherent `impl<G> T` has ImplType == ForType == T and Inherent set.
// ForType may be a Generic for blanket impls.
type InstanceRelation struct {
	ImplType *types.VidType
	ForType  types.VirtualType
	Generics []*types.Generic
	// Instance is the *TraitDef or *ImplDef that declared the relation
	Instance Definition
	Module   *Module
	Inherent bool
}

func (r *InstanceRelation) String() string {
	switch {
	case r.Inherent:
		return fmt.Sprintf("impl %v", r.ForType)
	case r.IsSelf():
		return fmt.Sprintf("trait %v", r.ImplType)
	default:
		return fmt.Sprintf("impl %v for %v", r.ImplType, r.ForType)
	}
}

// IsSelf reports whether r is the self-relation of a trait declaration
func (r *InstanceRelation) IsSelf() bool {
	_, ok := r.Instance.(*TraitDef)
	return ok
}

// Name identifies the implemented trait, or the type for inherent impls
func (r *InstanceRelation) Name() string {
	return r.ImplType.Identifier.String()
}

// ForVid is the identifier of ForType, or the zero Vid for blanket impls
func (r *InstanceRelation) ForVid() vid.Vid {
	if t, ok := r.ForType.(*types.VidType); ok {
		return t.Identifier
	}
	return vid.Vid{}
}

// IsBlanket reports whether r applies to every type satisfying bounds
func (r *InstanceRelation) IsBlanket() bool {
	_, ok := r.ForType.(*types.Generic)
	return ok
}

// Trait is the trait definition r implements or declares
func (r *InstanceRelation) Trait() (*TraitDef, bool) {
	switch inst := r.Instance.(type) {
	case *TraitDef:
		return inst, true
	case *ImplDef:
		if r.Inherent {
			return nil, false
		}
		return inst.trait, inst.trait != nil
	default:
		Unreachable(inst)
		return nil, false
	}
}

// Declares looks method up in r's body, then in the implemented trait
func (r *InstanceRelation) Declares(method string) (*MethodDef, bool) {
	return instanceMethod(r.Instance, method)
}

// BuildInstanceRelations collects a relation for every trait declaration
// and impl of every module, in module order. It runs once, after all
// modules were glanced; ctx.Impls is frozen afterwards.
func (ctx *Context) BuildInstanceRelations() {
	if ctx.implsBuilt {
		return
	}
	log := ctx.log("relations")
	for _, m := range ctx.Modules() {
		ctx.inModule(m, func() {
			for _, stmt := range m.AST.Statements {
				switch def := m.defs[stmt].(type) {
				case *TraitDef:
					self := ctx.traitSelf(def)
					def.Rel = &InstanceRelation{
						ImplType: self,
						ForType:  self,
						Generics: ctx.traitGenerics(def),
						Instance: def,
						Module:   m,
					}
					ctx.Impls = append(ctx.Impls, def.Rel)
				case *ImplDef:
					if rel, ok := ctx.implRelation(def); ok {
						def.Rel = rel
						ctx.Impls = append(ctx.Impls, rel)
					}
				}
			}
		})
	}
	for _, rel := range ctx.Impls {
		for _, m := range relMethods(rel) {
			m.Rel = rel
		}
	}
	ctx.implsBuilt = true
	ctx.reportOverlaps()
	log.Debug("built instance relations", "count", len(ctx.Impls))
}

func relMethods(rel *InstanceRelation) map[string]*MethodDef {
	switch inst := rel.Instance.(type) {
	case *TraitDef:
		return inst.Methods
	case *ImplDef:
		return inst.Methods
	default:
		Unreachable(inst)
		return nil
	}
}

func (ctx *Context) implRelation(def *ImplDef) (*InstanceRelation, bool) {
	owner := def.Module.Path.Append("impl")
	scope, generics := ctx.genericScope(def.Node.Generics, owner)
	rel := &InstanceRelation{Generics: generics, Instance: def, Module: def.Module, Inherent: def.Node.Trait == nil}
	ok := true
	ctx.withScope(scope, func() {
		rel.ForType = ctx.resolveTypeExpr(def.Node.ForType)
		if rel.Inherent {
			forType, isVid := rel.ForType.(*types.VidType)
			if !isVid {
				ok = false
				return
			}
			rel.ImplType = forType
			return
		}
		named, isNamed := def.Node.Trait.(*ast.NamedType)
		if !isNamed {
			ctx.report(ilerr.New(ilerr.NewNotATrait{Site: ctx.site(def.Node.Trait), Name: ast.TypeExprString(def.Node.Trait)}))
			ok = false
			return
		}
		r, found := ctx.resolveOrReport(named, vid.New(named.Names...), TypeKinds, "trait")
		if !found {
			ok = false
			return
		}
		trait, isTrait := r.Def.(*TraitDef)
		if !isTrait {
			ctx.report(ilerr.New(ilerr.NewNotATrait{Site: ctx.site(named), Name: r.Vid.String()}))
			ok = false
			return
		}
		def.trait = trait
		rel.ImplType = ctx.resolveTypeExpr(named).(*types.VidType)
	})
	return rel, ok
}

// reportOverlaps reports two impls of the same trait for the same type
func (ctx *Context) reportOverlaps() {
	seen := map[string]*InstanceRelation{}
	for _, rel := range ctx.Impls {
		if rel.Inherent || rel.IsSelf() || rel.IsBlanket() {
			continue
		}
		key := rel.Name() + "|" + rel.ForVid().Key()
		if _, ok := seen[key]; ok {
			impl := rel.Instance.(*ImplDef)
			ctx.inModule(rel.Module, func() {
				ctx.report(ilerr.New(ilerr.NewOverlappingImpl{Site: ctx.site(impl.Node), Trait: rel.Name(), TypeName: rel.ForVid().String()}))
			})
			continue
		}
		seen[key] = rel
	}
}

// FindSuperRelChains lists every chain of trait impls starting at a type
// identified by v: `impl A for T`, then `impl B for A`, and so on. Each
// prefix of a chain is itself a chain. A relation appears at most once per
// chain, and a chain stops at a relation whose generic bounds the type
// viewed so far does not satisfy. Results are memoized by v.
//
// Bounds of blanket impls may ask for the chains of a vid still being
// walked. Such a query sees the chains found so far, and the walk is
// repeated until it finds no new chain.
func (ctx *Context) FindSuperRelChains(v vid.Vid) [][]*InstanceRelation {
	Assert(ctx.implsBuilt, "super relation chains requested before relations were built")
	key := v.Key()
	if chains, ok := ctx.relChainsMemo[key]; ok {
		return chains
	}
	if chains, ok := ctx.chainsInProgress[key]; ok {
		return chains
	}

	outermost := len(ctx.chainsInProgress) == 0
	if outermost {
		// the chains of v do not depend on the assignability queries that
		// asked for them
		assigning, depth := ctx.assigning, ctx.assignDepth
		ctx.assigning, ctx.assignDepth = set.New[string](8), 0
		defer func() { ctx.assigning, ctx.assignDepth = assigning, depth }()
	}

	ctx.chainsInProgress[key] = nil
	var chains [][]*InstanceRelation
	for rounds := 1; ; rounds++ {
		chains = ctx.walkSuperRels(v)
		if len(chains) <= len(ctx.chainsInProgress[key]) {
			break
		}
		ctx.chainsInProgress[key] = chains
		ctx.log("relations").Debug("super relation chains grew", "vid", v, "chains", len(chains), "round", rounds)
	}
	delete(ctx.chainsInProgress, key)
	// results depending on an outer walk's approximation are not final
	if outermost {
		ctx.relChainsMemo[key] = chains
	}
	ctx.log("relations").Debug("super relation chains", "vid", v, "chains", len(chains))
	return chains
}

func (ctx *Context) walkSuperRels(v vid.Vid) [][]*InstanceRelation {
	var chains [][]*InstanceRelation
	var walk func(current *types.VidType, path []*InstanceRelation)
	walk = func(current *types.VidType, path []*InstanceRelation) {
		for _, rel := range ctx.Impls {
			if rel.Inherent || rel.IsSelf() || containsRel(path, rel) {
				continue
			}
			next, _, ok := ctx.stepRelation(current, rel)
			if !ok {
				continue
			}
			chain := append(append([]*InstanceRelation(nil), path...), rel)
			chains = append(chains, chain)
			walk(next, chain)
		}
	}
	walk(&types.VidType{Identifier: v}, nil)
	return chains
}

func containsRel(path []*InstanceRelation, rel *InstanceRelation) bool {
	for _, r := range path {
		if r == rel {
			return true
		}
	}
	return false
}

// instantiateChain follows chain from t and returns the type t is viewed as
// at its end, with the generic map of the last relation. It fails when t
// does not match a relation's for-type or a generic bound is not satisfied.
func (ctx *Context) instantiateChain(t types.VirtualType, chain []*InstanceRelation) (*types.VidType, types.GenericMap, bool) {
	cur := t
	var (
		implType *types.VidType
		m        types.GenericMap
		ok       bool
	)
	for _, rel := range chain {
		implType, m, ok = ctx.stepRelation(cur, rel)
		if !ok {
			return nil, m, false
		}
		cur = implType
	}
	return implType, m, true
}

// stepRelation views cur through rel: it binds rel's generics from cur,
// checks their bounds and returns rel's trait type instantiated with them
func (ctx *Context) stepRelation(cur types.VirtualType, rel *InstanceRelation) (*types.VidType, types.GenericMap, bool) {
	if !rel.IsBlanket() {
		v, ok := cur.(*types.VidType)
		if !ok || !v.Identifier.Equal(rel.ForVid()) {
			return nil, types.EmptyGenericMap(), false
		}
	}
	m := types.ResolveGenericsOverStructure(cur, rel.ForType)
	for _, g := range rel.Generics {
		value, ok := m.Get(g.Name)
		if !ok {
			continue
		}
		for _, bound := range g.Bounds {
			if !ctx.isAssignable(value, types.SubstituteMap(bound, m)) {
				return nil, m, false
			}
		}
	}
	return ctx.substituteOrHole(rel.ImplType, m).(*types.VidType), m, true
}

// substituteOrHole substitutes bound generics and turns the rest into holes
func (ctx *Context) substituteOrHole(t types.VirtualType, maps ...types.GenericMap) types.VirtualType {
	return types.Substitute(t,
		func(g *types.Generic) (types.VirtualType, bool) { return types.Lookup(maps, g.Name) },
		func(*types.Generic) types.VirtualType { return types.NewHole() },
	)
}

// MethodCandidate is a relation that can provide a method for a receiver
type MethodCandidate struct {
	Rel    *InstanceRelation
	Method *MethodDef
	// Chain leads from the receiver type to Rel; empty for direct relations
	Chain []*InstanceRelation
}

// staticallyBound reports whether the method is implemented for the
// receiver's own type, so that the call needs no trait view of the receiver
func (c MethodCandidate) staticallyBound() bool {
	if c.Rel.Inherent {
		return true
	}
	_, own := c.Method.Owner.(*ImplDef)
	return own && len(c.Chain) == 1
}

// FindImplsWithFn lists the relations through which recv has a method
// called name: inherent impls and self-relations of recv itself, and the
// ends of recv's super relation chains. Each relation appears once.
func (ctx *Context) FindImplsWithFn(recv types.VirtualType, name string) []MethodCandidate {
	var candidates []MethodCandidate
	seen := map[*InstanceRelation]bool{}
	add := func(c MethodCandidate) {
		if !seen[c.Rel] {
			seen[c.Rel] = true
			candidates = append(candidates, c)
		}
	}
	switch recv := recv.(type) {
	case *types.VidType:
		for _, rel := range ctx.Impls {
			if !rel.Inherent && !rel.IsSelf() {
				continue
			}
			if !rel.ForVid().Equal(recv.Identifier) {
				continue
			}
			if m, ok := rel.Declares(name); ok {
				add(MethodCandidate{Rel: rel, Method: m})
			}
		}
		for _, chain := range ctx.FindSuperRelChains(recv.Identifier) {
			last := chain[len(chain)-1]
			m, ok := last.Declares(name)
			if !ok {
				continue
			}
			if _, _, ok := ctx.instantiateChain(recv, chain); ok {
				add(MethodCandidate{Rel: last, Method: m, Chain: chain})
			}
		}
	case *types.Generic:
		for _, bound := range recv.Bounds {
			for _, c := range ctx.FindImplsWithFn(bound, name) {
				add(c)
			}
		}
	}
	return candidates
}

// ResolveMethod picks the single relation providing name for recv. No
// candidate is a not-found diagnostic; several are a clashing-method
// diagnostic naming each provider once.
func (ctx *Context) ResolveMethod(at ast.Node, recv types.VirtualType, name string) (MethodCandidate, bool) {
	candidates := ctx.FindImplsWithFn(recv, name)
	switch len(candidates) {
	case 0:
		ctx.report(ilerr.New(ilerr.NewNotFound{Site: ctx.site(at), What: "method", Name: fmt.Sprintf("%v.%s", recv, name)}))
		return MethodCandidate{}, false
	case 1:
		ctx.log("relations").Debug("resolved method", "recv", recv, "method", name, "via", candidates[0].Rel)
		return candidates[0], true
	default:
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.Rel.Name()
		}
		sort.Strings(names)
		names = names[:xset.Uniq(sort.StringSlice(names))]
		ctx.report(ilerr.New(ilerr.NewClashingMethod{Site: ctx.site(at), Method: name, TypeName: recv.String(), Candidates: names}))
		return MethodCandidate{}, false
	}
}
