package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
)

func shapesPackage(mainUses []*ast.UseExpr, main ...ast.Statement) map[string]*ast.Module {
	return map[string]*ast.Module{
		"app::shapes": ast.Mod(nil, append(shapes(),
			ast.Fn("secret", nil, nil, ast.T("Int"), ast.Ex(ast.Int("1"))),
		)...),
		"app::main": ast.Mod(mainUses, main...),
	}
}

func TestResolveVidIsDeterministic(t *testing.T) {
	ctx := checkMain(t, shapes()...)
	m := requireModule(t, ctx, "app::main")

	tests := []struct {
		path string
		want string
		kind DefKind
	}{
		{"Circle", "app::main::Circle", KindType},
		{"Shape", "app::main::Shape", KindTrait},
		{"Circle::Circle", "app::main::Circle::Circle", KindVariant},
		{"Shape::area", "app::main::Shape::area", KindMethod},
		{"app::main::Circle", "app::main::Circle", KindType},
		{"Int", "std::int::Int", KindType},
		{"Option::Some", "std::option::Option::Some", KindVariant},
		{"println", "std::io::println", KindFn},
		{"std::list", "std::list", KindModule},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			first, ok := resolveIn(ctx, m, tt.path, AnyKinds)
			require.True(t, ok)
			second, ok := resolveIn(ctx, m, tt.path, AnyKinds)
			require.True(t, ok)

			assert.Equal(t, tt.want, first.Vid.String())
			assert.Equal(t, tt.kind, first.Def.Kind())
			assert.Equal(t, first.Vid, second.Vid)
			assert.True(t, first.Def == second.Def)
		})
	}
}

func TestResolveVidRespectsFilter(t *testing.T) {
	ctx := checkMain(t, shapes()...)
	m := requireModule(t, ctx, "app::main")

	_, ok := resolveIn(ctx, m, "Circle", ValueKinds)
	assert.False(t, ok)
	_, ok = resolveIn(ctx, m, "println", TypeKinds)
	assert.False(t, ok)
	_, ok = resolveIn(ctx, m, "nothing", AnyKinds)
	assert.False(t, ok)
}

func TestResolveThroughUse(t *testing.T) {
	ctx := checkApp(t, shapesPackage(ast.Uses(ast.Use("app::shapes::Circle")),
		ast.Fn("f", nil, ast.Params(ast.P("c", ast.T("Circle"))), ast.T("Int"),
			ast.Ex(ast.MCall(ast.Id("c"), "area")),
		),
	))
	require.Empty(t, ctx.Errors.All(), messages(ctx.Errors.All()))

	main := requireModule(t, ctx, "app::main")
	r, ok := resolveIn(ctx, main, "Circle", TypeKinds)
	require.True(t, ok)
	assert.Equal(t, "app::shapes::Circle", r.Vid.String())
	assert.Equal(t, "app::shapes", r.Module.Path.String())
}

func TestWildcardUseImportsPublicNames(t *testing.T) {
	ctx := checkApp(t, shapesPackage(ast.Uses(ast.UseAll("app::shapes"))))
	require.Empty(t, ctx.Errors.All(), messages(ctx.Errors.All()))

	main := requireModule(t, ctx, "app::main")
	var refs []string
	for _, ref := range main.References {
		refs = append(refs, ref.String())
	}
	assert.Equal(t, []string{"app::shapes::Circle", "app::shapes::Shape"}, refs)
}

func TestNestedUse(t *testing.T) {
	ctx := checkApp(t, shapesPackage(ast.Uses(ast.UseNested("app", ast.UseNested("shapes", ast.Use("Circle"), ast.Use("Shape"))))))
	require.Empty(t, ctx.Errors.All(), messages(ctx.Errors.All()))

	main := requireModule(t, ctx, "app::main")
	require.Len(t, main.References, 2)
	assert.Equal(t, "app::shapes::Circle", main.References[0].String())
	assert.Equal(t, "app::shapes::Shape", main.References[1].String())
}

func TestPrivateAccess(t *testing.T) {
	ctx := checkApp(t, shapesPackage(nil,
		ast.Let("x", ast.T("Int"), ast.CallE(ast.Id("app::shapes::secret"))),
	))

	private := withCode(ctx, ilerr.PrivateAccess)
	require.Len(t, private, 1, messages(ctx.Errors.All()))
	assert.Contains(t, private[0].Error(), "app::shapes::secret")
	assert.Equal(t, "app::main", private[0].Module())
}

func TestPrivateImport(t *testing.T) {
	ctx := checkApp(t, shapesPackage(ast.Uses(ast.Use("app::shapes::secret"))))

	assert.Len(t, withCode(ctx, ilerr.PrivateAccess), 1, messages(ctx.Errors.All()))
}

func TestCircularModuleReferenceIsReportedOnce(t *testing.T) {
	ctx := checkApp(t, map[string]*ast.Module{
		"app::a": ast.Mod(ast.Uses(ast.Use("app::b::y")),
			ast.Pub(ast.Fn("x", nil, nil, ast.T("Int"), ast.Ex(ast.Int("1")))),
		),
		"app::b": ast.Mod(ast.Uses(ast.Use("app::a::x")),
			ast.Pub(ast.Fn("y", nil, nil, ast.T("Int"), ast.Ex(ast.CallE(ast.Id("x"))))),
		),
	})

	cycles := withCode(ctx, ilerr.CircularModuleReference)
	require.Len(t, cycles, 1, messages(ctx.Errors.All()))
	assert.Contains(t, cycles[0].Error(), "app::a -> app::b -> app::a")
	assert.Len(t, ctx.Errors.All(), 1, messages(ctx.Errors.All()))

	b := requireModule(t, ctx, "app::b")
	require.Len(t, b.References, 1)
	assert.Equal(t, "app::a::x", b.References[0].String())
}

func TestUnknownNames(t *testing.T) {
	ctx := checkApp(t, map[string]*ast.Module{
		"app::main": ast.Mod(ast.Uses(ast.Use("app::nowhere::thing")),
			ast.Let("a", nil, ast.Id("missing")),
			ast.Let("b", ast.T("Missing"), ast.Int("1")),
		),
	})

	notFound := withCode(ctx, ilerr.NotFound)
	require.Len(t, notFound, 3, messages(ctx.Errors.All()))
	assert.Contains(t, messages(notFound), "app::nowhere::thing")
	assert.Contains(t, messages(notFound), "missing")
	assert.Contains(t, messages(notFound), "Missing")
}

func TestRedeclaration(t *testing.T) {
	ctx := checkMain(t,
		ast.Fn("f", nil, nil, ast.T("Int"), ast.Ex(ast.Int("1"))),
		ast.Fn("f", nil, nil, ast.T("Int"), ast.Ex(ast.Int("2"))),
		ast.TypeD("f", nil, ast.V("F")),
	)

	redeclared := withCode(ctx, ilerr.Redeclaration)
	require.Len(t, redeclared, 1, messages(ctx.Errors.All()))
	assert.Contains(t, redeclared[0].Error(), "f")
}

func TestSelfInsideImpl(t *testing.T) {
	ctx := checkMain(t, append(shapes(),
		ast.Impl(nil, nil, ast.T("Circle"),
			ast.Fn("unit", nil, nil, ast.T("Self"),
				ast.Ex(ast.CallE(ast.Id("Self::make"), ast.Int("1"))),
			),
			ast.Fn("make", nil, ast.Params(ast.P("r", ast.T("Int"))), ast.T("Self"),
				ast.Ex(ast.CallE(ast.Id("Circle::Circle"), ast.Id("r"))),
			),
		),
		ast.Let("c", ast.T("Circle"), ast.CallE(ast.Id("Circle::unit"))),
	)...)

	assert.Empty(t, ctx.Errors.All(), messages(ctx.Errors.All()))
}
