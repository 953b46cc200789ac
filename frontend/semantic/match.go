package semantic

import (
	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
)

// MatchTree tracks which constructor paths of a scrutinee the clauses of a
// match have covered so far. Each node owns its children.
//
//	Unmatched:    nothing covers this path yet
//	Exhaustive:   every value on this path is covered
//	*TypeNode:    one subtree per variant of a type definition
//	*VariantNode: one subtree per field of a variant
type MatchTree interface {
	isMatchTree()
}

type Unmatched struct{}

type Exhaustive struct{}

type TypeNode struct {
	TypeDef  *TypeDef
	Variants map[string]MatchTree
}

type VariantNode struct {
	Variant *VariantDef
	Fields  map[string]MatchTree
}

func (Unmatched) isMatchTree()    {}
func (Exhaustive) isMatchTree()   {}
func (*TypeNode) isMatchTree()    {}
func (*VariantNode) isMatchTree() {}

func newTypeNode(def *TypeDef) *TypeNode {
	n := &TypeNode{TypeDef: def, Variants: make(map[string]MatchTree, len(def.Node.Variants))}
	for _, v := range def.Node.Variants {
		n.Variants[v.Name] = Unmatched{}
	}
	return n
}

func newVariantNode(def *VariantDef) *VariantNode {
	n := &VariantNode{Variant: def, Fields: make(map[string]MatchTree, len(def.Node.Fields))}
	for _, f := range def.Node.Fields {
		n.Fields[f.Name] = Unmatched{}
	}
	return n
}

// IsExhaustive reports whether every path of tree is covered
func IsExhaustive(tree MatchTree) bool {
	switch tree := tree.(type) {
	case Exhaustive:
		return true
	case Unmatched:
		return false
	case *TypeNode:
		for _, v := range tree.Variants {
			if !IsExhaustive(v) {
				return false
			}
		}
		return true
	case *VariantNode:
		for _, f := range tree.Fields {
			if !IsExhaustive(f) {
				return false
			}
		}
		return true
	default:
		Unreachable(tree)
		return false
	}
}

// matchPattern records that p covers the path at slot and reports whether p
// can match anything not covered before. Patterns of guarded clauses pass
// exhaust=false: they are checked for reachability but cover nothing.
func (ctx *Context) matchPattern(p ast.Pattern, slot *MatchTree, exhaust bool) bool {
	if _, ok := (*slot).(Exhaustive); ok {
		return false
	}
	switch p := p.(type) {
	case *ast.BindPattern, *ast.HolePattern, nil:
		if exhaust {
			*slot = Exhaustive{}
		}
		return true
	case *ast.LitPattern:
		return true
	case *ast.ConPattern:
		variant, ok := ctx.patternVariants[p]
		if !ok {
			return true
		}
		tn, ok := (*slot).(*TypeNode)
		if !ok || tn.TypeDef != variant.TypeDef {
			tn = newTypeNode(variant.TypeDef)
			*slot = tn
		}
		child := tn.Variants[variant.Node.Name]
		if _, ok := child.(Exhaustive); ok {
			return false
		}
		vn, ok := child.(*VariantNode)
		if !ok {
			vn = newVariantNode(variant)
		}
		affected := ctx.matchFields(p, vn, exhaust)
		switch {
		case len(vn.Fields) == 0:
			if exhaust {
				tn.Variants[variant.Node.Name] = Exhaustive{}
			}
		case IsExhaustive(vn):
			tn.Variants[variant.Node.Name] = Exhaustive{}
		default:
			tn.Variants[variant.Node.Name] = vn
		}
		if IsExhaustive(tn) {
			*slot = Exhaustive{}
		}
		return affected
	default:
		Unreachable(p)
		return false
	}
}

// matchFields matches the field patterns of p against vn. Without field
// patterns the whole variant is covered; fields not named are wildcards.
func (ctx *Context) matchFields(p *ast.ConPattern, vn *VariantNode, exhaust bool) bool {
	if len(vn.Fields) == 0 {
		return true
	}
	named := make(map[string]ast.Pattern, len(p.Fields))
	for _, fp := range p.Fields {
		named[fp.Name] = fp.Pattern
	}
	affected := false
	for _, f := range vn.Variant.Node.Fields {
		fieldSlot := vn.Fields[f.Name]
		if ctx.matchPattern(named[f.Name], &fieldSlot, exhaust) {
			affected = true
		}
		vn.Fields[f.Name] = fieldSlot
	}
	return affected
}

// checkExhaustiveness runs every clause of m through a fresh MatchTree,
// warning about unreachable clauses and reporting a match that leaves
// paths uncovered
func (ctx *Context) checkExhaustiveness(m *ast.Match) MatchTree {
	var tree MatchTree = Unmatched{}
	for _, clause := range m.Clauses {
		affected := false
		for _, p := range clause.Patterns {
			if ctx.matchPattern(p, &tree, clause.Guard == nil) {
				affected = true
			}
		}
		if !affected && len(clause.Patterns) > 0 {
			ctx.report(ilerr.New(ilerr.NewUnreachablePattern{Site: ctx.site(clause.Patterns[0])}))
		}
	}
	if !IsExhaustive(tree) {
		ctx.report(ilerr.New(ilerr.NewNonExhaustiveMatch{Site: ctx.site(m)}))
	}
	ctx.log("match").Debug("checked match", "clauses", len(m.Clauses), "exhaustive", IsExhaustive(tree))
	return tree
}
