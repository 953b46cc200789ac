package semantic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
	"github.com/tarn-lang/tarn/frontend/vid"
)

// checkApp checks the modules of package app and fails the test on an
// internal failure
func checkApp(t *testing.T, modules map[string]*ast.Module) *Context {
	t.Helper()
	ctx := NewContext()
	ctx.AddPackage("app", modules)
	require.NoError(t, ctx.Check())
	require.Empty(t, ctx.Failures)
	return ctx
}

// checkMain checks a single module app::main made of stmts
func checkMain(t *testing.T, stmts ...ast.Statement) *Context {
	t.Helper()
	return checkApp(t, map[string]*ast.Module{"app::main": ast.Mod(nil, stmts...)})
}

func withCode(ctx *Context, code ilerr.ErrCode) []ilerr.IleError {
	var found []ilerr.IleError
	for _, e := range ctx.Errors.All() {
		if e.Code() == code {
			found = append(found, e)
		}
	}
	return found
}

func messages(errs []ilerr.IleError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

func requireModule(t *testing.T, ctx *Context, path string) *Module {
	t.Helper()
	m, ok := ctx.Module(path)
	require.True(t, ok, "module %s", path)
	return m
}

// resolveIn resolves path from the top scope of module
func resolveIn(ctx *Context, m *Module, path string, filter []DefKind) (r Resolved, ok bool) {
	ctx.inModule(m, func() {
		r, ok = ResolveVid(ctx, vid.Parse(path), filter)
	})
	return r, ok
}

// shapes declares trait Shape, type Circle and `impl Shape for Circle`
func shapes() []ast.Statement {
	return ast.Stmts(
		ast.Pub(ast.Trait("Shape", nil,
			ast.AbstractFn("area", nil, ast.Params(ast.SelfP()), ast.T("Int")),
		)),
		ast.Pub(ast.TypeD("Circle", nil, ast.V("Circle", ast.PubF("radius", ast.T("Int"))))),
		ast.Impl(nil, ast.T("Shape"), ast.T("Circle"),
			ast.Fn("area", nil, ast.Params(ast.SelfP()), ast.T("Int"),
				ast.Ex(ast.Bin("*", ast.Field(ast.Id("self"), "radius"), ast.Int("3"))),
			),
		),
	)
}
