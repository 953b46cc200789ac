package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/frontend/types"
	"github.com/tarn-lang/tarn/frontend/vid"
)

func relationNamed(ctx *Context, s string) (*InstanceRelation, bool) {
	for _, rel := range ctx.Impls {
		if rel.String() == s {
			return rel, true
		}
	}
	return nil, false
}

func TestTraitsHaveSelfRelations(t *testing.T) {
	ctx := checkMain(t, shapes()...)

	rel, ok := relationNamed(ctx, "trait app::main::Shape")
	require.True(t, ok)
	assert.True(t, rel.IsSelf())
	assert.False(t, rel.IsBlanket())
	assert.Equal(t, "app::main::Shape", rel.ForVid().String())

	impl, ok := relationNamed(ctx, "impl app::main::Shape for app::main::Circle")
	require.True(t, ok)
	assert.False(t, impl.IsSelf())
	trait, ok := impl.Trait()
	require.True(t, ok)
	assert.Same(t, rel.Instance, Definition(trait))

	area, ok := impl.Declares("area")
	require.True(t, ok)
	assert.Same(t, impl, area.Rel)
}

func TestStdRelationsAreBuilt(t *testing.T) {
	ctx := checkMain(t)

	for _, s := range []string{
		"trait std::op::Add",
		"impl std::op::Add for std::int::Int",
		"impl std::list::List<T>",
		"impl std::fmt::Display for std::list::List<T>",
	} {
		_, ok := relationNamed(ctx, s)
		assert.True(t, ok, s)
	}
}

func TestFindSuperRelChainsIsMemoized(t *testing.T) {
	ctx := checkMain(t, append(shapes(),
		ast.Pub(ast.Trait("Named", nil)),
		ast.Impl(nil, ast.T("Named"), ast.T("Shape")),
	)...)

	circle := vid.Parse("app::main::Circle")
	chains := ctx.FindSuperRelChains(circle)
	require.Len(t, chains, 2)
	assert.Len(t, chains[0], 1)
	assert.Len(t, chains[1], 2)
	assert.Equal(t, chains, ctx.FindSuperRelChains(circle))
}

func TestRelationCyclesTerminate(t *testing.T) {
	ctx := checkMain(t,
		ast.Pub(ast.Trait("A", nil)),
		ast.Pub(ast.Trait("B", nil)),
		ast.Impl(nil, ast.T("A"), ast.T("B")),
		ast.Impl(nil, ast.T("B"), ast.T("A")),
	)

	chains := ctx.FindSuperRelChains(vid.Parse("app::main::A"))
	assert.Len(t, chains, 2)
	assert.True(t, ctx.IsAssignable(types.Named("app::main::A"), types.Named("app::main::B")))
}

func TestDispatchAmbiguityNamesBothTraits(t *testing.T) {
	nameFn := func() *ast.FnDef {
		return ast.AbstractFn("name", nil, ast.Params(ast.SelfP()), ast.T("String"))
	}
	nameImpl := func(s string) *ast.FnDef {
		return ast.Fn("name", nil, ast.Params(ast.SelfP()), ast.T("String"), ast.Ex(ast.Str(s)))
	}
	ctx := checkMain(t,
		ast.Trait("A", nil, nameFn()),
		ast.Trait("B", nil, nameFn()),
		ast.TypeD("X", nil, ast.V("X")),
		ast.Impl(nil, ast.T("A"), ast.T("X"), nameImpl("a")),
		ast.Impl(nil, ast.T("B"), ast.T("X"), nameImpl("b")),
		ast.Fn("f", nil, ast.Params(ast.P("x", ast.T("X"))), ast.T("String"),
			ast.Ex(ast.MCall(ast.Id("x"), "name")),
		),
	)

	clashes := withCode(ctx, ilerr.ClashingMethod)
	require.Len(t, clashes, 1, messages(ctx.Errors.All()))
	assert.Contains(t, clashes[0].Error(), "app::main::A")
	assert.Contains(t, clashes[0].Error(), "app::main::B")
	assert.Len(t, ctx.Errors.Errors(), 1, messages(ctx.Errors.All()))
}

func TestInherentMethodIsFoundBeforeChains(t *testing.T) {
	ctx := checkMain(t, append(shapes(),
		ast.Impl(nil, nil, ast.T("Circle"),
			ast.Fn("diameter", nil, ast.Params(ast.SelfP()), ast.T("Int"),
				ast.Ex(ast.Bin("*", ast.Field(ast.Id("self"), "radius"), ast.Int("2"))),
			),
		),
		ast.Fn("f", nil, ast.Params(ast.P("c", ast.T("Circle"))), ast.T("Int"),
			ast.Ex(ast.Bin("+", ast.MCall(ast.Id("c"), "diameter"), ast.MCall(ast.Id("c"), "area"))),
		),
	)...)

	assert.False(t, ctx.Errors.HasError(), messages(ctx.Errors.All()))
	candidates := ctx.FindImplsWithFn(circleT, "diameter")
	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].Rel.Inherent)
}

func TestMethodNotFound(t *testing.T) {
	ctx := checkMain(t, append(shapes(),
		ast.Fn("f", nil, ast.Params(ast.P("c", ast.T("Circle"))), ast.T("Int"),
			ast.Ex(ast.MCall(ast.Id("c"), "perimeter")),
		),
	)...)

	notFound := withCode(ctx, ilerr.NotFound)
	require.Len(t, notFound, 1, messages(ctx.Errors.All()))
	assert.Contains(t, notFound[0].Error(), "perimeter")
}

func TestOverlappingImpls(t *testing.T) {
	ctx := checkMain(t,
		ast.Trait("Marker", nil),
		ast.TypeD("X", nil, ast.V("X")),
		ast.Impl(nil, ast.T("Marker"), ast.T("X")),
		ast.Impl(nil, ast.T("Marker"), ast.T("X")),
	)

	overlaps := withCode(ctx, ilerr.OverlappingImpl)
	require.Len(t, overlaps, 1)
	assert.Contains(t, overlaps[0].Error(), "app::main::Marker")
}

func TestImplOfNonTrait(t *testing.T) {
	ctx := checkMain(t,
		ast.TypeD("X", nil, ast.V("X")),
		ast.Impl(nil, ast.T("Int"), ast.T("X")),
	)

	notTrait := withCode(ctx, ilerr.NotATrait)
	require.Len(t, notTrait, 1)
	assert.Contains(t, notTrait[0].Error(), "std::int::Int")
}

func TestImplMissingMethod(t *testing.T) {
	ctx := checkMain(t,
		ast.Trait("Shape", nil,
			ast.AbstractFn("area", nil, ast.Params(ast.SelfP()), ast.T("Int")),
		),
		ast.TypeD("Circle", nil, ast.V("Circle")),
		ast.Impl(nil, ast.T("Shape"), ast.T("Circle")),
	)

	missing := withCode(ctx, ilerr.MissingMethod)
	require.Len(t, missing, 1)
	assert.Contains(t, missing[0].Error(), "area")
}

func TestBlanketImplGatedOnBounds(t *testing.T) {
	ctx := checkMain(t, append(shapes(),
		ast.Trait("Drawable", nil,
			ast.Fn("draw", nil, ast.Params(ast.SelfP()), ast.T("String"), ast.Ex(ast.Str("shape"))),
		),
		ast.Impl(ast.Generics(ast.Gen("T", ast.T("Shape"))), ast.T("Drawable"), ast.T("T")),
	)...)
	require.False(t, ctx.Errors.HasError(), messages(ctx.Errors.All()))

	drawable := types.Named("app::main::Drawable")
	assert.True(t, ctx.IsAssignable(circleT, drawable))
	assert.False(t, ctx.IsAssignable(types.Int, drawable))
	assert.Len(t, ctx.FindImplsWithFn(circleT, "draw"), 1)
	assert.Empty(t, ctx.FindImplsWithFn(types.Int, "draw"))
}

func TestMutualBlanketImplsTerminate(t *testing.T) {
	ctx := checkMain(t,
		ast.Pub(ast.Trait("A", nil)),
		ast.Pub(ast.Trait("B", nil)),
		ast.Impl(ast.Generics(ast.Gen("T", ast.T("B"))), ast.T("A"), ast.T("T")),
		ast.Impl(ast.Generics(ast.Gen("T", ast.T("A"))), ast.T("B"), ast.T("T")),
		ast.Let("x", ast.T("A"), ast.Int("1")),
	)

	errs := ctx.Errors.Errors()
	require.Len(t, errs, 1, messages(errs))
	assert.Equal(t, ilerr.TypeMismatch, errs[0].Code())
	assert.False(t, ctx.IsAssignable(types.Int, types.Named("app::main::A")))
	assert.False(t, ctx.IsAssignable(types.Int, types.Named("app::main::B")))
}

func TestBlanketChainsStopAtUnmetBounds(t *testing.T) {
	stmts := append(shapes(), ast.TypeD("Plain", nil, ast.V("Plain")))
	for _, name := range []string{"Y1", "Y2", "Y3", "Y4", "Y5", "Y6"} {
		stmts = append(stmts,
			ast.Trait(name, nil),
			ast.Impl(ast.Generics(ast.Gen("T", ast.T("Shape"))), ast.T(name), ast.T("T")),
		)
	}
	ctx := checkMain(t, stmts...)
	require.False(t, ctx.Errors.HasError(), messages(ctx.Errors.All()))

	assert.Empty(t, ctx.FindSuperRelChains(vid.Parse("app::main::Plain")))

	// Shape, Shape then one Yi, or one Yi directly
	chains := ctx.FindSuperRelChains(vid.Parse("app::main::Circle"))
	assert.Len(t, chains, 13)
	for _, chain := range chains {
		assert.LessOrEqual(t, len(chain), 2)
	}
	assert.True(t, ctx.IsAssignable(circleT, types.Named("app::main::Y6")))
	assert.False(t, ctx.IsAssignable(types.Named("app::main::Plain"), types.Named("app::main::Y6")))
}
