package semantic

import (
	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/types"
)

const maxAssignDepth = 64

// IsAssignable reports whether a value of type t can be used where target
// is expected
func (ctx *Context) IsAssignable(t, target types.VirtualType) bool {
	return ctx.isAssignable(t, target)
}

func (ctx *Context) isAssignable(t, target types.VirtualType) bool {
	if types.IsUnknownOrHole(t) || types.IsUnknownOrHole(target) {
		return true
	}
	if m, ok := t.(*types.Malleable); ok {
		return malleableAssignable(m, target)
	}
	if types.IsNever(t) {
		return true
	}
	if types.Equal(t, target) {
		return true
	}
	// a query that depends on itself, through blanket impls whose bounds
	// refer to each other, does not hold
	key := t.String() + " <: " + target.String()
	if ctx.assigning.Contains(key) {
		return false
	}
	ctx.assigning.Insert(key)
	defer ctx.assigning.Remove(key)
	ctx.assignDepth++
	defer func() { ctx.assignDepth-- }()
	if ctx.assignDepth > maxAssignDepth {
		return false
	}

	if target, ok := target.(*types.Generic); ok && len(target.Bounds) > 0 {
		for _, bound := range target.Bounds {
			if !ctx.isAssignable(t, bound) {
				return false
			}
		}
		return true
	}
	if t, ok := t.(*types.Generic); ok {
		for _, bound := range t.Bounds {
			if ctx.isAssignable(bound, target) {
				return true
			}
		}
		return false
	}

	switch t := t.(type) {
	case *types.VidType:
		target, ok := target.(*types.VidType)
		if !ok {
			return false
		}
		if t.Identifier.Equal(target.Identifier) {
			if len(t.TypeArgs) != len(target.TypeArgs) {
				return false
			}
			for i := range t.TypeArgs {
				if !ctx.isAssignable(t.TypeArgs[i], target.TypeArgs[i]) {
					return false
				}
			}
			return true
		}
		_, ok = ctx.superTypeAs(t, target)
		return ok
	case *types.FnType:
		target, ok := target.(*types.FnType)
		if !ok || len(t.ParamTypes) != len(target.ParamTypes) {
			return false
		}
		for i := range t.ParamTypes {
			if !ctx.isAssignable(target.ParamTypes[i], t.ParamTypes[i]) {
				return false
			}
		}
		return ctx.isAssignable(types.ReturnOf(t), types.ReturnOf(target))
	default:
		return false
	}
}

// malleableAssignable reports whether a closure not typed yet can flow into
// target: a function type of the closure's arity, another such closure, or
// an unbounded generic
func malleableAssignable(m *types.Malleable, target types.VirtualType) bool {
	arity := func(m *types.Malleable) int {
		if c, ok := m.Node.(*ast.Closure); ok {
			return len(c.Params)
		}
		return -1
	}
	switch target := target.(type) {
	case *types.FnType:
		return len(target.ParamTypes) == arity(m)
	case *types.Malleable:
		return arity(target) == arity(m)
	case *types.Generic:
		return len(target.Bounds) == 0
	default:
		return false
	}
}

// superTypeAs finds a super relation chain from t to target's identifier
// whose instantiation is assignable to target, and returns it
func (ctx *Context) superTypeAs(t *types.VidType, target *types.VidType) ([]*InstanceRelation, bool) {
	for _, chain := range ctx.FindSuperRelChains(t.Identifier) {
		last := chain[len(chain)-1]
		if !last.ImplType.Identifier.Equal(target.Identifier) {
			continue
		}
		super, _, ok := ctx.instantiateChain(t, chain)
		if ok && ctx.isAssignable(super, target) {
			return chain, true
		}
	}
	return nil, false
}

// Combine finds the common type of two branches: a if b accepts it, else b
// if a accepts it. A branch that never produces a value, or whose type is
// unknown, takes the type of the other.
func (ctx *Context) Combine(a, b types.VirtualType) (types.VirtualType, bool) {
	switch {
	case types.IsNever(a) || types.IsUnknownOrHole(a):
		return b, true
	case types.IsNever(b) || types.IsUnknownOrHole(b):
		return a, true
	case ctx.isAssignable(a, b):
		return a, true
	case ctx.isAssignable(b, a):
		return b, true
	default:
		return nil, false
	}
}
