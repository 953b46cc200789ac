package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/frontend/types"
)

var (
	shapeT  = types.Named("app::main::Shape")
	circleT = types.Named("app::main::Circle")
)

func TestAssignableIsReflexive(t *testing.T) {
	ctx := checkMain(t, shapes()...)

	T := &types.Generic{Name: "T", Key: "app::main::f::T", Bounds: []types.VirtualType{shapeT}}
	cases := []types.VirtualType{
		types.Int,
		types.List(types.String),
		types.Named("std::option::Option", types.Named("std::option::Option", types.Bool)),
		&types.FnType{ParamTypes: []types.VirtualType{types.Int}, ReturnType: types.Bool},
		shapeT,
		circleT,
		T,
	}
	for _, c := range cases {
		assert.True(t, ctx.IsAssignable(c, c), "%v", c)
	}
}

func TestUnknownIsAssignableBothWays(t *testing.T) {
	ctx := checkMain(t, shapes()...)

	for _, c := range []types.VirtualType{types.Int, types.List(types.Char), circleT, types.NewHole()} {
		assert.True(t, ctx.IsAssignable(types.NewUnknown(), c), "%v", c)
		assert.True(t, ctx.IsAssignable(c, types.NewUnknown()), "%v", c)
	}
}

func TestAssignableThroughImpl(t *testing.T) {
	ctx := checkMain(t, shapes()...)
	require.False(t, ctx.Errors.HasError(), messages(ctx.Errors.All()))

	assert.True(t, ctx.IsAssignable(circleT, shapeT))
	assert.False(t, ctx.IsAssignable(shapeT, circleT))
	assert.False(t, ctx.IsAssignable(types.Int, shapeT))
	assert.False(t, ctx.IsAssignable(types.Int, types.String))
	assert.True(t, ctx.IsAssignable(types.Never, circleT))
}

func TestAssignableThroughSupertraitChain(t *testing.T) {
	ctx := checkMain(t, append(shapes(),
		ast.Pub(ast.Trait("Named", nil)),
		ast.Impl(nil, ast.T("Named"), ast.T("Shape")),
	)...)
	require.False(t, ctx.Errors.HasError(), messages(ctx.Errors.All()))

	named := types.Named("app::main::Named")
	assert.True(t, ctx.IsAssignable(shapeT, named))
	assert.True(t, ctx.IsAssignable(circleT, named))
	assert.False(t, ctx.IsAssignable(named, shapeT))

	chain, ok := ctx.superTypeAs(circleT, named)
	require.True(t, ok)
	require.Len(t, chain, 2)
	assert.Equal(t, "app::main::Shape", chain[0].Name())
	assert.Equal(t, "app::main::Named", chain[1].Name())
}

func TestGenericAssignability(t *testing.T) {
	ctx := checkMain(t, shapes()...)

	bounded := &types.Generic{Name: "T", Key: "app::main::f::T", Bounds: []types.VirtualType{shapeT}}
	unbounded := &types.Generic{Name: "U", Key: "app::main::f::U"}

	assert.True(t, ctx.IsAssignable(bounded, shapeT))
	assert.False(t, ctx.IsAssignable(unbounded, shapeT))
	assert.True(t, ctx.IsAssignable(circleT, bounded))
	assert.False(t, ctx.IsAssignable(types.Int, bounded))
	assert.False(t, ctx.IsAssignable(types.Int, unbounded))
}

func TestFunctionAssignability(t *testing.T) {
	ctx := checkMain(t, shapes()...)

	takesShape := &types.FnType{ParamTypes: []types.VirtualType{shapeT}, ReturnType: circleT}
	takesCircle := &types.FnType{ParamTypes: []types.VirtualType{circleT}, ReturnType: shapeT}

	// parameters are contravariant, returns covariant
	assert.True(t, ctx.IsAssignable(takesShape, takesCircle))
	assert.False(t, ctx.IsAssignable(takesCircle, takesShape))
}

func TestUntypedClosureAssignability(t *testing.T) {
	ctx := checkMain(t)

	identity := &types.Malleable{Node: ast.Lambda(ast.Params(ast.P("a", nil)), nil, ast.Ex(ast.Id("a")))}
	unary := &types.FnType{ParamTypes: []types.VirtualType{types.Int}, ReturnType: types.Int}
	binary := &types.FnType{ParamTypes: []types.VirtualType{types.Int, types.Int}, ReturnType: types.Int}

	assert.True(t, ctx.IsAssignable(identity, unary))
	assert.True(t, ctx.IsAssignable(identity, types.NewUnknown()))
	assert.True(t, ctx.IsAssignable(identity, &types.Generic{Name: "T", Key: "T"}))
	assert.False(t, ctx.IsAssignable(identity, binary))
	assert.False(t, ctx.IsAssignable(identity, types.Int))
	assert.False(t, ctx.IsAssignable(identity, &types.Generic{Name: "T", Key: "T", Bounds: []types.VirtualType{types.Named("std::op::Add")}}))
}

func TestUntypedClosureIsNotAnyType(t *testing.T) {
	identity := func() *ast.Closure {
		return ast.Lambda(ast.Params(ast.P("a", nil)), nil, ast.Ex(ast.Id("a")))
	}
	ctx := checkMain(t,
		ast.Fn("takesInt", nil, ast.Params(ast.P("n", ast.T("Int"))), ast.T("Int"), ast.Ex(ast.Id("n"))),
		ast.Fn("apply", nil, ast.Params(ast.P("f", ast.FnT(ast.Types(ast.T("Int")), ast.T("Int")))), ast.T("Int"),
			ast.Ex(ast.CallE(ast.Id("f"), ast.Int("1"))),
		),
		ast.Let("x", ast.T("Int"), identity()),
		ast.Let("y", nil, ast.CallE(ast.Id("takesInt"), identity())),
		ast.Let("z", ast.T("Int"), ast.CallE(ast.Id("apply"), identity())),
	)

	errs := ctx.Errors.Errors()
	require.Len(t, errs, 2, messages(errs))
	for _, e := range errs {
		assert.Equal(t, ilerr.TypeMismatch, e.Code())
	}
}

func TestCombine(t *testing.T) {
	ctx := checkMain(t, shapes()...)

	tests := []struct {
		name string
		a, b types.VirtualType
		want types.VirtualType
		ok   bool
	}{
		{"equal", types.Int, types.Int, types.Int, true},
		{"never left", types.Never, types.String, types.String, true},
		{"never right", types.String, types.Never, types.String, true},
		{"first when assignable to second", circleT, shapeT, circleT, true},
		{"second when assignable to first", shapeT, circleT, circleT, true},
		{"unrelated", types.Int, types.String, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ctx.Combine(tt.a, tt.b)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, types.Equal(tt.want, got), "got %v", got)
			}
		})
	}
}
