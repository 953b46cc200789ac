package semantic

import (
	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/frontend/types"
	"github.com/tarn-lang/tarn/frontend/vid"
)

// checkExpr types e, fills its type slot and returns the type. expected
// may be nil; it guides closures, constructors and generic inference but
// is not enforced here.
func (ctx *Context) checkExpr(e ast.Expr, expected types.VirtualType) types.VirtualType {
	var t types.VirtualType
	switch e := e.(type) {
	case *ast.Ident:
		t = ctx.checkIdent(e, expected)
	case *ast.Literal:
		t = literalType(e)
	case *ast.Call:
		t = ctx.checkCall(e, expected)
	case *ast.MethodCall:
		t = ctx.dispatch(e, e.Receiver, e.Method, e.TypeArgs, e.Args, expected)
	case *ast.FieldAccess:
		t = ctx.checkFieldAccess(e)
	case *ast.Binary:
		t = ctx.checkBinary(e, expected)
	case *ast.Unary:
		method, ok := unaryMethods[e.Op]
		Assert(ok, "unknown unary operator %q", e.Op)
		t = ctx.dispatch(e, e.Operand, method, nil, nil, expected)
	case *ast.Closure:
		t = ctx.checkClosure(e, expected)
	case *ast.If:
		t = ctx.checkIf(e, expected)
	case *ast.Match:
		t = ctx.checkMatch(e, expected)
	case *ast.ListLit:
		t = ctx.checkList(e, expected)
	case *ast.Block:
		t = ctx.checkBlock(e, expected)
	default:
		Unreachable(e)
	}
	e.Annotation().Type = t
	return t
}

func literalType(l *ast.Literal) types.VirtualType {
	switch l.Kind {
	case ast.LitInt:
		return types.Int
	case ast.LitFloat:
		return types.Float
	case ast.LitString:
		return types.String
	case ast.LitChar:
		return types.Char
	case ast.LitBool:
		return types.Bool
	default:
		Unreachable(l.Kind)
		return nil
	}
}

// binaryMethods lowers binary operators to trait methods of std::op
var binaryMethods = map[string]string{
	"+":  "add",
	"-":  "sub",
	"*":  "mul",
	"/":  "div",
	"%":  "rem",
	"==": "eq",
	"!=": "ne",
	"<":  "lt",
	">":  "gt",
	"<=": "le",
	">=": "ge",
}

var unaryMethods = map[string]string{
	"-": "neg",
	"!": "not",
}

func (ctx *Context) checkBinary(e *ast.Binary, expected types.VirtualType) types.VirtualType {
	switch e.Op {
	case "&&", "||":
		for _, operand := range []ast.Expr{e.Left, e.Right} {
			ctx.expectAssignable(operand, ctx.checkExpr(operand, types.Bool), types.Bool)
		}
		return types.Bool
	}
	method, ok := binaryMethods[e.Op]
	Assert(ok, "unknown binary operator %q", e.Op)
	return ctx.dispatch(e, e.Left, method, nil, []ast.Expr{e.Right}, expected)
}

// settle replaces a Malleable whose closure was typed by its function type
func (ctx *Context) settle(t types.VirtualType) types.VirtualType {
	if m, ok := t.(*types.Malleable); ok {
		if c, ok := m.Node.(*ast.Closure); ok {
			if ft, ok := c.Type.(*types.FnType); ok {
				return ft
			}
		}
	}
	return t
}

// settleAgainst types a Malleable closure against the function type it
// flows into
func (ctx *Context) settleAgainst(node ast.Expr, t, target types.VirtualType) types.VirtualType {
	m, ok := t.(*types.Malleable)
	if !ok {
		return t
	}
	target = ctx.settle(target)
	ft, ok := target.(*types.FnType)
	if !ok {
		return t
	}
	c := m.Node.(*ast.Closure)
	typed := ctx.typeClosure(c, ft.ParamTypes, types.ReturnOf(ft))
	if node != nil && node != ast.Expr(c) {
		node.Annotation().Type = typed
	}
	return typed
}

func (ctx *Context) checkIdent(e *ast.Ident, expected types.VirtualType) types.VirtualType {
	t, _ := ctx.identType(e, expected)
	if len(e.TypeArgs) == 0 {
		return t
	}
	ft, ok := t.(*types.FnType)
	if !ok || len(ft.Generics) == 0 {
		ctx.checkTypeArity(e, 0, len(e.TypeArgs))
		return t
	}
	return instantiate(ft, ctx.explicitGenerics(e, ft.Generics, e.TypeArgs))
}

// identType types a reference without applying explicit type arguments,
// and returns what it resolved to
func (ctx *Context) identType(e *ast.Ident, expected types.VirtualType) (types.VirtualType, Definition) {
	r, ok := ctx.resolveOrReport(e, vid.New(e.Names...), ValueKinds, "identifier")
	if !ok {
		return types.NewUnknown(), nil
	}
	switch def := r.Def.(type) {
	case *VarDef:
		return ctx.varType(def), def
	case *ParamDef:
		if def.Node.Type == nil {
			return types.NewUnknown(), def
		}
		return ctx.settle(def.Node.Type), def
	case *FnDef:
		return ctx.fnSignature(def), def
	case *VariantDef:
		return ctx.variantType(def, expected), def
	case *MethodDef:
		return ctx.staticMethodType(def), def
	default:
		Unreachable(def)
		return nil, nil
	}
}

// instantiate binds generics of ft found in m and keeps the others
func instantiate(ft *types.FnType, m types.GenericMap) *types.FnType {
	plain := types.SubstituteMap(&types.FnType{ParamTypes: ft.ParamTypes, ReturnType: ft.ReturnType}, m).(*types.FnType)
	for _, g := range ft.Generics {
		if _, ok := m.Get(g.Name); !ok {
			plain.Generics = append(plain.Generics, g)
		}
	}
	return plain
}

// variantType is a fieldless variant's value, or a variant's constructor
func (ctx *Context) variantType(def *VariantDef, expected types.VirtualType) types.VirtualType {
	td := def.TypeDef
	generics := ctx.typeGenerics(td)
	if len(def.Node.Fields) == 0 {
		if e, ok := expected.(*types.VidType); ok && e.Identifier.Equal(td.Vid) && len(e.TypeArgs) == len(generics) {
			return &types.VidType{Identifier: td.Vid, TypeArgs: e.TypeArgs}
		}
		return &types.VidType{Identifier: td.Vid, TypeArgs: holes(len(generics))}
	}
	ctor := &types.FnType{Generics: generics, ReturnType: ctx.typeSelf(td)}
	for _, f := range def.Node.Fields {
		ctor.ParamTypes = append(ctor.ParamTypes, ctx.fieldType(td, f))
	}
	return ctor
}

// staticMethodType is a method referred to by path, `Trait::method`. The
// generics of its trait or impl, and Self for traits, become generics of
// the function.
func (ctx *Context) staticMethodType(def *MethodDef) *types.FnType {
	sig := ctx.methodSignature(def)
	var generics []*types.Generic
	switch owner := def.Owner.(type) {
	case *TraitDef:
		generics = append(generics, ctx.traitGenerics(owner)...)
		generics = append(generics, ctx.traitSelfGeneric(owner))
	case *ImplDef:
		if owner.Rel != nil {
			generics = append(generics, owner.Rel.Generics...)
		}
	default:
		Unreachable(owner)
	}
	return &types.FnType{
		Generics:   append(generics, sig.Generics...),
		ParamTypes: sig.ParamTypes,
		ReturnType: sig.ReturnType,
	}
}

func (ctx *Context) checkFieldAccess(e *ast.FieldAccess) types.VirtualType {
	rt := ctx.settle(ctx.checkExpr(e.Receiver, nil))
	if types.IsUnknownOrHole(rt) {
		return types.NewUnknown()
	}
	vt, ok := rt.(*types.VidType)
	var td *TypeDef
	if ok {
		if r, found := ctx.resolveQualified(vt.Identifier, []DefKind{KindType}); found {
			td = r.Def.(*TypeDef)
		}
	}
	if td == nil {
		ctx.report(ilerr.New(ilerr.NewNotFound{Site: ctx.site(e), What: "field", Name: rt.String() + "." + e.Field}))
		return types.NewUnknown()
	}
	m := types.EmptyGenericMap()
	for i, g := range ctx.typeGenerics(td) {
		if i < len(vt.TypeArgs) {
			m = m.With(g.Name, vt.TypeArgs[i])
		}
	}
	var (
		result        types.VirtualType
		present       int
		narrow        bool
		reportPrivate bool
	)
	for _, variant := range td.Node.Variants {
		f, ok := variant.Field(e.Field)
		if !ok {
			continue
		}
		present++
		if !f.Pub && td.Module != ctx.currentModule() {
			reportPrivate = true
		}
		ft := types.SubstituteMap(ctx.fieldType(td, f), m)
		if result == nil {
			result = ft
			continue
		}
		combined, ok := ctx.Combine(result, ft)
		if !ok {
			narrow = true
			continue
		}
		result = combined
	}
	switch {
	case present == 0:
		ctx.report(ilerr.New(ilerr.NewNotFound{Site: ctx.site(e), What: "field", Name: rt.String() + "." + e.Field}))
		return types.NewUnknown()
	case narrow || present < len(td.Node.Variants):
		ctx.report(ilerr.New(ilerr.NewNarrowFieldAccess{Site: ctx.site(e), Field: e.Field, TypeName: td.Vid.String()}))
		return types.NewUnknown()
	}
	if reportPrivate {
		ctx.report(ilerr.New(ilerr.NewPrivateAccess{Site: ctx.site(e), Name: td.Vid.String() + "." + e.Field}))
	}
	return result
}

func (ctx *Context) checkIf(e *ast.If, expected types.VirtualType) types.VirtualType {
	ctx.expectAssignable(e.Cond, ctx.checkExpr(e.Cond, types.Bool), types.Bool)
	then := ctx.checkBlock(e.Then, expected)
	if e.Else == nil {
		return types.Unit
	}
	els := ctx.checkBlock(e.Else, expected)
	combined, ok := ctx.Combine(then, els)
	if !ok {
		ctx.report(ilerr.New(ilerr.NewBranchMismatch{Site: ctx.site(e), First: then, Second: els}))
		return types.NewUnknown()
	}
	return combined
}

func (ctx *Context) checkList(e *ast.ListLit, expected types.VirtualType) types.VirtualType {
	var elemExpected types.VirtualType
	if l, ok := expected.(*types.VidType); ok && l.Identifier.Equal(types.ListVid) && len(l.TypeArgs) == 1 {
		elemExpected = l.TypeArgs[0]
	}
	var elem types.VirtualType
	for _, el := range e.Elements {
		t := ctx.settle(ctx.checkExpr(el, elemExpected))
		if elem == nil {
			elem = t
			continue
		}
		combined, ok := ctx.Combine(elem, t)
		if !ok {
			ctx.report(ilerr.New(ilerr.NewTypeMismatch{Site: ctx.site(el), Expected: elem, Got: t}))
			continue
		}
		elem = combined
	}
	if elem == nil {
		if elemExpected != nil {
			return types.List(elemExpected)
		}
		return types.List(types.NewHole())
	}
	return types.List(elem)
}

func (ctx *Context) checkClosure(e *ast.Closure, expected types.VirtualType) types.VirtualType {
	if ft, ok := ctx.settle(expected).(*types.FnType); ok && len(ft.ParamTypes) == len(e.Params) {
		return ctx.typeClosure(e, ft.ParamTypes, types.ReturnOf(ft))
	}
	for _, p := range e.Params {
		if p.ParamType == nil {
			fr := ctx.currentFrame()
			ctx.pendingClosures = append(ctx.pendingClosures, pendingClosure{node: e, frame: fr, depth: len(fr.scopes)})
			return &types.Malleable{Node: e}
		}
	}
	return ctx.typeClosure(e, nil, nil)
}

// pendingClosure is a closure returned as Malleable, with the frame and
// scope depth it was created at
type pendingClosure struct {
	node  *ast.Closure
	frame *frame
	depth int
}

// typePendingClosures types, with Unknown parameters, the closures created
// at depth or deeper in fr that are still Malleable. It runs before the
// scope at depth is left, so their bodies resolve names as they were
// written.
func (ctx *Context) typePendingClosures(fr *frame, depth int) {
	for {
		var due, rest []pendingClosure
		for _, p := range ctx.pendingClosures {
			if p.frame == fr && p.depth >= depth {
				due = append(due, p)
			} else {
				rest = append(rest, p)
			}
		}
		if len(due) == 0 {
			return
		}
		ctx.pendingClosures = rest
		for _, p := range due {
			ctx.typeUnusedClosure(p.node)
		}
	}
}

// typeTopLevelClosures types the closures of top-level variables that
// nothing typed in any module
func (ctx *Context) typeTopLevelClosures() {
	for len(ctx.pendingClosures) > 0 {
		p := ctx.pendingClosures[0]
		ctx.pendingClosures = ctx.pendingClosures[1:]
		ctx.inModule(p.frame.module, func() {
			ctx.typeUnusedClosure(p.node)
		})
	}
}

func (ctx *Context) typeUnusedClosure(c *ast.Closure) {
	if _, ok := c.Type.(*types.FnType); ok {
		return
	}
	params := make([]types.VirtualType, len(c.Params))
	for i := range params {
		params[i] = types.NewUnknown()
	}
	ctx.log("check").Debug("typing unused closure", "params", len(params))
	ctx.typeClosure(c, params, nil)
}

// typeClosure checks a closure body with the given parameter types, used
// for parameters without annotation. expectedReturn may be nil.
func (ctx *Context) typeClosure(e *ast.Closure, params []types.VirtualType, expectedReturn types.VirtualType) *types.FnType {
	ft := &types.FnType{}
	scope := newScope()
	for i, p := range e.Params {
		switch {
		case p.ParamType != nil:
			p.Type = ctx.resolveTypeExpr(p.ParamType)
		case i < len(params) && params[i] != nil:
			p.Type = params[i]
		default:
			p.Type = ctx.paramType(p)
		}
		ft.ParamTypes = append(ft.ParamTypes, p.Type)
		scope.define(KindParam, p.Name, &ParamDef{Node: p})
	}
	returnType := ctx.resolveTypeExpr(e.ReturnType)
	if returnType == nil && expectedReturn != nil && len(types.GenericNames(expectedReturn)) == 0 {
		returnType = expectedReturn
	}
	fs := &fnScope{name: "closure", returnType: returnType}
	scope.fn = fs
	// typed before the body so that recursive uses see the function type
	e.Type = ft
	ctx.withScope(scope, func() {
		bodyType := ctx.checkBlock(e.Body, returnType)
		if returnType != nil {
			ctx.checkBodyReturns("closure", e.Body, bodyType, returnType)
			ft.ReturnType = returnType
			return
		}
		ret := bodyType
		for _, r := range fs.returns {
			combined, ok := ctx.Combine(ret, r)
			if !ok {
				ctx.report(ilerr.New(ilerr.NewBranchMismatch{Site: ctx.site(e), First: ret, Second: r}))
				ret = types.NewUnknown()
				break
			}
			ret = combined
		}
		ft.ReturnType = ret
	})
	return ft
}
