package semantic

import (
	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/frontend/types"
)

func (ctx *Context) checkCall(e *ast.Call, expected types.VirtualType) types.VirtualType {
	var (
		calleeType types.VirtualType
		explicit   []ast.TypeExpr
		callee     Definition
	)
	if id, ok := e.Callee.(*ast.Ident); ok {
		calleeType, callee = ctx.identType(id, nil)
		id.Type = calleeType
		explicit = id.TypeArgs
	} else {
		calleeType = ctx.checkExpr(e.Callee, nil)
	}
	calleeType = ctx.settle(calleeType)

	switch ct := calleeType.(type) {
	case *types.FnType:
		_, isConstructor := callee.(*VariantDef)
		return ctx.applyFn(e, ct, explicit, e.Args, nil, expected, isConstructor)
	case *types.Malleable:
		argTypes := make([]types.VirtualType, len(e.Args))
		for i, a := range e.Args {
			argTypes[i] = ctx.settle(ctx.checkExpr(a, nil))
		}
		c := ct.Node.(*ast.Closure)
		if len(c.Params) != len(argTypes) {
			ctx.report(ilerr.New(ilerr.NewArityMismatch{Site: ctx.site(e), What: "arguments", Expected: len(c.Params), Got: len(argTypes)}))
			return types.NewUnknown()
		}
		ft := ctx.typeClosure(c, argTypes, expected)
		e.Callee.Annotation().Type = ft
		return types.ReturnOf(ft)
	default:
		if !types.IsUnknownOrHole(ct) {
			ctx.report(ilerr.New(ilerr.NewNotCallable{Site: ctx.site(e.Callee), Type: ct}))
		}
		for _, a := range e.Args {
			ctx.checkExpr(a, nil)
		}
		return types.NewUnknown()
	}
}

// applyFn checks a call of sig with args and returns the result type.
//
// Generics are resolved from, highest priority first: explicit type
// arguments, the instance maps of the receiver (method calls), bindings
// inferred from the arguments left to right, and finally the type the
// result is expected to have. Unbound generics in the result are an error,
// except for constructors where they become holes.
func (ctx *Context) applyFn(
	call ast.Node,
	sig *types.FnType,
	explicit []ast.TypeExpr,
	args []ast.Expr,
	instance []types.GenericMap,
	expected types.VirtualType,
	constructor bool,
) types.VirtualType {
	if len(args) != len(sig.ParamTypes) {
		ctx.report(ilerr.New(ilerr.NewArityMismatch{Site: ctx.site(call), What: "arguments", Expected: len(sig.ParamTypes), Got: len(args)}))
	}
	maps := append([]types.GenericMap{ctx.explicitGenerics(call, sig.Generics, explicit)}, instance...)

	inferred := types.EmptyGenericMap()
	argTypes := make([]types.VirtualType, len(args))
	for i, arg := range args {
		if i >= len(sig.ParamTypes) {
			argTypes[i] = ctx.checkExpr(arg, nil)
			continue
		}
		declared := sig.ParamTypes[i]
		hint := types.SubstituteMap(declared, append(maps, inferred)...)
		t := ctx.settle(ctx.checkExpr(arg, hint))
		t = ctx.settleAgainst(arg, t, hint)
		argTypes[i] = t
		for name, bound := range types.ResolveGenericsOverStructure(t, declared).All() {
			inferred = inferred.WithDefault(name, bound)
		}
	}
	maps = append(maps, inferred)
	if expected != nil && !types.IsUnknownOrHole(expected) {
		maps = append(maps, types.ResolveGenericsOverStructure(expected, types.ReturnOf(sig)))
	}
	ctx.log("generics").Debug("call generics", "sig", sig, "maps", len(maps), "inferred", inferred)

	for i, arg := range args {
		if i >= len(sig.ParamTypes) {
			break
		}
		declared := sig.ParamTypes[i]
		target := ctx.substituteOrHole(declared, maps...)
		if !ctx.isAssignable(argTypes[i], target) {
			ctx.report(ilerr.New(ilerr.NewTypeMismatch{Site: ctx.site(arg), Expected: target, Got: argTypes[i]}))
			continue
		}
		ctx.upcastTo(arg, argTypes[i], ctx.upcastTarget(declared, maps))
	}
	ctx.checkBounds(call, sig.Generics, maps)

	if constructor {
		return ctx.substituteOrHole(types.ReturnOf(sig), maps...)
	}
	return ResolveType(ctx, types.ReturnOf(sig), maps, call)
}

// checkBounds reports generics whose resolved type does not satisfy a
// declared bound
func (ctx *Context) checkBounds(at ast.Node, generics []*types.Generic, maps []types.GenericMap) {
	for _, g := range generics {
		value, ok := types.Lookup(maps, g.Name)
		if !ok || types.IsUnknownOrHole(value) {
			continue
		}
		for _, b := range g.Bounds {
			bound := ctx.substituteOrHole(b, maps...)
			if !ctx.isAssignable(value, bound) {
				ctx.report(ilerr.New(ilerr.NewTypeMismatch{Site: ctx.site(at), Expected: bound, Got: value}))
			}
		}
	}
}

// upcastTarget is the position an argument flows into. A bare generic
// parameter keeps its bounds so that the argument is upcast to each of them.
func (ctx *Context) upcastTarget(declared types.VirtualType, maps []types.GenericMap) types.VirtualType {
	if g, ok := declared.(*types.Generic); ok && len(g.Bounds) > 0 {
		bounds := make([]types.VirtualType, len(g.Bounds))
		for i, b := range g.Bounds {
			bounds[i] = ctx.substituteOrHole(b, maps...)
		}
		return &types.Generic{Name: g.Name, Key: g.Key, Bounds: bounds}
	}
	return ctx.substituteOrHole(declared, maps...)
}

// dispatch checks `recv.method<typeArgs>(args)`; operators are dispatched
// the same way and report at the operator node `at`
func (ctx *Context) dispatch(at ast.Expr, recv ast.Expr, method string, typeArgs []ast.TypeExpr, args []ast.Expr, expected types.VirtualType) types.VirtualType {
	rt := ctx.settle(ctx.checkExpr(recv, nil))
	skipArgs := func() types.VirtualType {
		for _, a := range args {
			ctx.checkExpr(a, nil)
		}
		return types.NewUnknown()
	}
	if types.IsUnknownOrHole(rt) {
		return skipArgs()
	}
	cand, ok := ctx.ResolveMethod(at, rt, method)
	if !ok {
		return skipArgs()
	}
	if !cand.Method.Node.HasSelf() {
		ctx.report(ilerr.New(ilerr.NewNotFound{Site: ctx.site(at), What: "method with a receiver", Name: method}))
		return skipArgs()
	}
	sig := ctx.methodSignature(cand.Method)
	instance, implType := ctx.instanceMap(rt, cand, method)
	withoutSelf := &types.FnType{Generics: sig.Generics, ParamTypes: sig.ParamTypes[1:], ReturnType: sig.ReturnType}
	result := ctx.applyFn(at, withoutSelf, typeArgs, args, []types.GenericMap{instance}, expected, false)
	if !cand.staticallyBound() && implType != nil {
		ctx.upcastTo(recv, rt, implType)
	}
	return result
}

// instanceMap binds the generics of the trait or impl providing a method,
// and Self, from the receiver type. It also returns the trait type the
// receiver is viewed as, nil for inherent impls.
func (ctx *Context) instanceMap(rt types.VirtualType, cand MethodCandidate, method string) (types.GenericMap, *types.VidType) {
	view := rt
	if g, ok := rt.(*types.Generic); ok {
		for _, b := range g.Bounds {
			if containsCandidate(ctx.FindImplsWithFn(b, method), cand.Rel) {
				view = b
				break
			}
		}
	}

	var (
		m        = types.EmptyGenericMap()
		implType *types.VidType
	)
	switch {
	case cand.Rel.Inherent:
		m = types.ResolveGenericsOverStructure(view, cand.Rel.ForType)
	case len(cand.Chain) > 0:
		if it, last, ok := ctx.instantiateChain(view, cand.Chain); ok {
			implType, m = it, last
		}
	default:
		implType, _ = view.(*types.VidType)
	}
	if trait, ok := cand.Rel.Trait(); ok && implType != nil {
		for name, t := range types.ResolveGenericsOverStructure(implType, ctx.traitSelf(trait)).All() {
			m = m.WithDefault(name, t)
		}
	}
	return m.With(SelfGenericName, rt), implType
}

func containsCandidate(cs []MethodCandidate, rel *InstanceRelation) bool {
	for _, c := range cs {
		if c.Rel == rel {
			return true
		}
	}
	return false
}
