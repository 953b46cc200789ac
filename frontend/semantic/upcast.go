package semantic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/types"
	"github.com/tarn-lang/tarn/frontend/vid"
)

// Upcast is the evidence that a value can be viewed as a trait. Self maps
// each trait name along the way to the relation providing it. Generics
// holds, for each generic parameter of the impl that was used, one Upcast
// per declared bound of that parameter.
type Upcast struct {
	Self     map[string]*InstanceRelation
	Generics [][]*Upcast
}

// UpcastFn is the evidence for a function value passed where another
// function type is expected. Entries are nil where no conversion is needed.
type UpcastFn struct {
	Params []ast.Evidence
	Return ast.Evidence
}

var (
	_ ast.Evidence = (*Upcast)(nil)
	_ ast.Evidence = (*UpcastFn)(nil)
)

func (*Upcast) IsEvidence()   {}
func (*UpcastFn) IsEvidence() {}

func (u *Upcast) String() string {
	names := make([]string, 0, len(u.Self))
	for name := range u.Self {
		names = append(names, name)
	}
	sort.Strings(names)
	sb := strings.Builder{}
	sb.WriteString("upcast{")
	for i, name := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %v", name, u.Self[name])
	}
	for _, bounds := range u.Generics {
		sb.WriteString("; [")
		for i, b := range bounds {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(b.String())
		}
		sb.WriteString("]")
	}
	sb.WriteString("}")
	return sb.String()
}

func (u *UpcastFn) String() string {
	parts := make([]string, len(u.Params))
	for i, p := range u.Params {
		if p == nil {
			parts[i] = "_"
		} else {
			parts[i] = p.String()
		}
	}
	ret := "_"
	if u.Return != nil {
		ret = u.Return.String()
	}
	return fmt.Sprintf("upcast fn(%s): %s", strings.Join(parts, ", "), ret)
}

// Relations lists every relation the evidence refers to, nested ones included
func Relations(e ast.Evidence) []*InstanceRelation {
	var rels []*InstanceRelation
	var walk func(ast.Evidence)
	walk = func(e ast.Evidence) {
		switch e := e.(type) {
		case nil:
		case *Upcast:
			if e == nil {
				return
			}
			names := make([]string, 0, len(e.Self))
			for name := range e.Self {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				rels = append(rels, e.Self[name])
			}
			for _, bounds := range e.Generics {
				for _, b := range bounds {
					walk(b)
				}
			}
		case *UpcastFn:
			if e == nil {
				return
			}
			for _, p := range e.Params {
				walk(p)
			}
			walk(e.Return)
		default:
			Unreachable(e)
		}
	}
	walk(e)
	return rels
}

// UpcastSite is an upcast recorded at a node
type UpcastSite struct {
	Node     ast.Expr
	From     types.VirtualType
	To       types.VirtualType
	Evidence ast.Evidence
}

// traitRel is the self-relation of the trait identified by v
func (ctx *Context) traitRel(v vid.Vid) (*InstanceRelation, bool) {
	for _, rel := range ctx.Impls {
		if rel.IsSelf() && rel.ImplType.Identifier.Equal(v) {
			return rel, true
		}
	}
	return nil, false
}

func (ctx *Context) isTrait(t types.VirtualType) (*types.VidType, bool) {
	v, ok := t.(*types.VidType)
	if !ok {
		return nil, false
	}
	_, ok = ctx.traitRel(v.Identifier)
	return v, ok
}

// identityUpcast views a value already typed as trait as that trait
func (ctx *Context) identityUpcast(trait *types.VidType) *Upcast {
	rel, ok := ctx.traitRel(trait.Identifier)
	Assert(ok, "%v is not a trait", trait)
	return &Upcast{Self: map[string]*InstanceRelation{rel.Name(): rel}}
}

// MakeUpcast computes the evidence that t can be viewed as trait. It fails
// when t is already that trait or does not implement it.
func (ctx *Context) MakeUpcast(t types.VirtualType, trait *types.VidType) (*Upcast, bool) {
	switch t := t.(type) {
	case *types.VidType:
		if t.Identifier.Equal(trait.Identifier) {
			return nil, false
		}
		chain, ok := ctx.superTypeAs(t, trait)
		if !ok {
			return nil, false
		}
		up := &Upcast{Self: make(map[string]*InstanceRelation, len(chain))}
		for _, rel := range chain {
			up.Self[rel.Name()] = rel
		}
		first := chain[0]
		m := types.ResolveGenericsOverStructure(t, first.ForType)
		for _, g := range first.Generics {
			value, ok := m.Get(g.Name)
			if !ok {
				value = types.NewHole()
			}
			bounds := make([]*Upcast, len(g.Bounds))
			for i, b := range g.Bounds {
				bound, isTrait := ctx.isTrait(types.SubstituteMap(b, m))
				if !isTrait {
					bounds[i] = &Upcast{Self: map[string]*InstanceRelation{}}
					continue
				}
				if inner, ok := ctx.MakeUpcast(value, bound); ok {
					bounds[i] = inner
				} else {
					bounds[i] = ctx.identityUpcast(bound)
				}
			}
			up.Generics = append(up.Generics, bounds)
		}
		return up, true
	case *types.Generic:
		for _, b := range t.Bounds {
			bound, ok := b.(*types.VidType)
			if !ok {
				continue
			}
			if bound.Identifier.Equal(trait.Identifier) {
				return ctx.identityUpcast(trait), true
			}
			if up, ok := ctx.MakeUpcast(bound, trait); ok {
				return up, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

// MakeUpcastFn computes parameter and return evidence for a function of
// type t passed where target is expected. Parameters flow from target to
// t, the return value from t to target.
func (ctx *Context) MakeUpcastFn(t, target *types.FnType) (*UpcastFn, bool) {
	if len(t.ParamTypes) != len(target.ParamTypes) {
		return nil, false
	}
	up := &UpcastFn{Params: make([]ast.Evidence, len(t.ParamTypes))}
	found := false
	for i := range t.ParamTypes {
		if e, ok := ctx.evidence(target.ParamTypes[i], t.ParamTypes[i]); ok {
			up.Params[i] = e
			found = true
		}
	}
	if e, ok := ctx.evidence(types.ReturnOf(t), types.ReturnOf(target)); ok {
		up.Return = e
		found = true
	}
	return up, found
}

// evidence computes the single evidence needed for from to flow into a
// position of type to, if any
func (ctx *Context) evidence(from, to types.VirtualType) (ast.Evidence, bool) {
	switch to := to.(type) {
	case *types.VidType:
		if _, ok := ctx.isTrait(to); ok {
			if up, ok := ctx.MakeUpcast(from, to); ok {
				return up, true
			}
		}
	case *types.FnType:
		if from, ok := from.(*types.FnType); ok {
			if up, ok := ctx.MakeUpcastFn(from, to); ok {
				return up, true
			}
		}
	}
	return nil, false
}

type upcastKey struct {
	node ast.Expr
	from string
	to   string
}

// upcastTo records the evidence for node, of type from, flowing into a
// position of type to. A generic position with bounds records one upcast
// per bound. Each (type, trait) pair is recorded once per node.
func (ctx *Context) upcastTo(node ast.Expr, from, to types.VirtualType) {
	if node == nil || types.IsUnknownOrHole(from) {
		return
	}
	if g, ok := to.(*types.Generic); ok {
		for _, b := range g.Bounds {
			ctx.upcastTo(node, from, b)
		}
		return
	}
	e, ok := ctx.evidence(from, to)
	if !ok {
		return
	}
	key := upcastKey{node: node, from: from.String(), to: to.String()}
	if !ctx.recordedUpcasts.Insert(key) {
		return
	}
	annot := node.Annotation()
	annot.Upcasts = append(annot.Upcasts, e)
	m := ctx.currentModule()
	m.UpcastSites = append(m.UpcastSites, UpcastSite{Node: node, From: from, To: to, Evidence: e})
	for _, rel := range Relations(e) {
		m.addRelImport(rel)
	}
	ctx.log("upcast").Debug("recorded upcast", "from", from, "to", to, "evidence", e)
}
