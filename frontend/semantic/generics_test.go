package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/frontend/types"
)

// identity is `fn foo<T>(a: T): T { a }`
func identity() *ast.FnDef {
	return ast.Fn("foo", ast.Generics(ast.Gen("T")), ast.Params(ast.P("a", ast.T("T"))), ast.T("T"),
		ast.Ex(ast.Id("a")),
	)
}

func TestGenericRoundTrip(t *testing.T) {
	ctx := checkMain(t,
		identity(),
		ast.Let("x", ast.T("Int"), ast.CallE(ast.Id("foo"), ast.Int("1"))),
	)
	assert.Empty(t, ctx.Errors.All(), messages(ctx.Errors.All()))
}

func TestGenericRoundTripMismatch(t *testing.T) {
	ctx := checkMain(t,
		identity(),
		ast.Let("x", ast.T("String"), ast.CallE(ast.Id("foo"), ast.Int("1"))),
	)

	errs := ctx.Errors.Errors()
	require.Len(t, errs, 1, messages(errs))
	assert.Equal(t, ilerr.TypeMismatch, errs[0].Code())
	assert.Contains(t, errs[0].Error(), "std::int::Int")
	assert.Contains(t, errs[0].Error(), "std::string::String")
}

func TestExplicitTypeArgumentsWinOverInference(t *testing.T) {
	ctx := checkMain(t,
		identity(),
		ast.Let("x", ast.T("String"), ast.CallE(ast.Id("foo", ast.T("String")), ast.Int("1"))),
	)

	errs := ctx.Errors.Errors()
	require.Len(t, errs, 1, messages(errs))
	assert.Equal(t, ilerr.TypeMismatch, errs[0].Code())
	assert.Equal(t, "type mismatch: expected `std::string::String`, got `std::int::Int`", errs[0].Error())
}

func TestExplicitTypeArgumentArity(t *testing.T) {
	ctx := checkMain(t,
		identity(),
		ast.Let("x", ast.T("Int"), ast.CallE(ast.Id("foo", ast.T("Int"), ast.T("Int")), ast.Int("1"))),
	)

	assert.Len(t, withCode(ctx, ilerr.ArityMismatch), 1, messages(ctx.Errors.All()))
}

func TestExpectedTypeResolvesReturnOnlyGeneric(t *testing.T) {
	ctx := checkMain(t,
		ast.AbstractFn("make", ast.Generics(ast.Gen("T")), nil, ast.T("T")),
		ast.Let("x", ast.T("Int"), ast.CallE(ast.Id("make"))),
	)
	assert.Empty(t, ctx.Errors.All(), messages(ctx.Errors.All()))

	ctx = checkMain(t,
		ast.AbstractFn("make", ast.Generics(ast.Gen("T")), nil, ast.T("T")),
		ast.Let("x", nil, ast.CallE(ast.Id("make"))),
	)
	unresolved := withCode(ctx, ilerr.UnresolvedGeneric)
	require.Len(t, unresolved, 1, messages(ctx.Errors.All()))
	assert.Contains(t, unresolved[0].Error(), "T")
}

func TestResolveTypePrecedence(t *testing.T) {
	ctx := checkMain(t)
	m := requireModule(t, ctx, "app::main")

	T := &types.Generic{Name: "T", Key: "app::main::f::T"}
	explicit := types.GenericMapOf(map[string]types.VirtualType{"T": types.String})
	instance := types.GenericMapOf(map[string]types.VirtualType{"T": types.Bool})
	inferred := types.GenericMapOf(map[string]types.VirtualType{"T": types.Int})

	var got []types.VirtualType
	ctx.inModule(m, func() {
		got = append(got,
			ResolveType(ctx, types.List(T), []types.GenericMap{explicit, instance, inferred}, nil),
			ResolveType(ctx, types.List(T), []types.GenericMap{types.EmptyGenericMap(), instance, inferred}, nil),
			ResolveType(ctx, types.List(T), []types.GenericMap{types.EmptyGenericMap(), inferred}, nil),
		)
	})
	assert.Equal(t, "std::list::List<std::string::String>", got[0].String())
	assert.Equal(t, "std::list::List<std::bool::Bool>", got[1].String())
	assert.Equal(t, "std::list::List<std::int::Int>", got[2].String())
	assert.Empty(t, ctx.Errors.All())
}

func TestResolveTypeReportsUnboundGeneric(t *testing.T) {
	ctx := checkMain(t)
	m := requireModule(t, ctx, "app::main")

	T := &types.Generic{Name: "T", Key: "app::main::f::T"}
	var got types.VirtualType
	ctx.inModule(m, func() {
		got = ResolveType(ctx, &types.FnType{ParamTypes: []types.VirtualType{T}, ReturnType: types.Int}, nil, nil)
	})

	assert.Equal(t, "fn(<unknown>): std::int::Int", got.String())
	assert.Len(t, withCode(ctx, ilerr.UnresolvedGeneric), 1)
}

func TestVariantConstructors(t *testing.T) {
	ctx := checkMain(t,
		ast.Let("some", ast.T("Option", ast.T("Int")), ast.CallE(ast.Id("Option::Some"), ast.Int("1"))),
		ast.Let("none", ast.T("Option", ast.T("Int")), ast.Id("Option::None")),
		ast.Let("bare", nil, ast.Id("Option::None")),
	)
	require.Empty(t, ctx.Errors.All(), messages(ctx.Errors.All()))

	main := requireModule(t, ctx, "app::main")
	bare := main.AST.Statements[2].(*ast.VarDef)
	assert.Equal(t, "std::option::Option<_>", ast.TypeOf(bare.Value).String())
}

func TestVariantConstructorMismatch(t *testing.T) {
	ctx := checkMain(t,
		ast.Let("bad", ast.T("Option", ast.T("String")), ast.CallE(ast.Id("Option::Some"), ast.Int("1"))),
	)

	errs := ctx.Errors.Errors()
	require.Len(t, errs, 1, messages(errs))
	assert.Equal(t, ilerr.TypeMismatch, errs[0].Code())
}

func TestGenericMethodInfersFromClosure(t *testing.T) {
	ctx := checkMain(t,
		ast.Let("ints", ast.T("List", ast.T("Int")), ast.ListE(ast.Int("1"), ast.Int("2"))),
		ast.Let("strs", ast.T("List", ast.T("String")),
			ast.MCall(ast.Id("ints"), "map", ast.Lambda(ast.Params(ast.P("x", nil)), nil, ast.Ex(ast.Str("a")))),
		),
	)
	assert.Empty(t, ctx.Errors.All(), messages(ctx.Errors.All()))
}
