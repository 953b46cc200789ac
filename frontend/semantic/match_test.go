package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/ilerr"
)

// matchOn checks `fn f(o: typ): Int { match o { clauses } }`
func matchOn(t *testing.T, typ ast.TypeExpr, clauses ...*ast.MatchClause) *Context {
	t.Helper()
	return checkMain(t,
		ast.Fn("f", nil, ast.Params(ast.P("o", typ)), ast.T("Int"),
			ast.Ex(ast.MatchE(ast.Id("o"), clauses...)),
		),
	)
}

func optionOf(arg ast.TypeExpr) ast.TypeExpr { return ast.T("Option", arg) }

func some(p ast.Pattern) *ast.ConPattern { return ast.PCon("Option::Some", ast.PF("value", p)) }

func none() *ast.ConPattern { return ast.PCon("Option::None") }

func one() *ast.ExprStmt { return ast.Ex(ast.Int("1")) }

func TestOptionMatchIsExhaustive(t *testing.T) {
	ctx := matchOn(t, optionOf(ast.T("Int")),
		ast.Case(some(ast.PHole()), one()),
		ast.Case(none(), one()),
	)
	assert.Empty(t, ctx.Errors.All(), messages(ctx.Errors.All()))
}

func TestOptionMatchMissingNone(t *testing.T) {
	ctx := matchOn(t, optionOf(ast.T("Int")),
		ast.Case(some(ast.PHole()), one()),
	)

	all := ctx.Errors.All()
	require.Len(t, all, 1, messages(all))
	assert.Equal(t, ilerr.NonExhaustiveMatch, all[0].Code())
	assert.Equal(t, "non-exhaustive match expression", all[0].Error())
}

func TestTrailingWildcardIsUnreachable(t *testing.T) {
	ctx := matchOn(t, optionOf(ast.T("Int")),
		ast.Case(some(ast.PHole()), one()),
		ast.Case(none(), one()),
		ast.Case(ast.PHole(), one()),
	)

	assert.Empty(t, ctx.Errors.Errors(), messages(ctx.Errors.All()))
	warnings := ctx.Errors.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, ilerr.UnreachablePattern, warnings[0].Code())
}

func TestGuardedClauseCoversNothing(t *testing.T) {
	ctx := matchOn(t, optionOf(ast.T("Int")),
		ast.CaseIf(some(ast.PBind("x")), ast.Bin(">", ast.Id("x"), ast.Int("0")), one()),
		ast.Case(none(), one()),
	)

	assert.Len(t, withCode(ctx, ilerr.NonExhaustiveMatch), 1, messages(ctx.Errors.All()))
	assert.Len(t, ctx.Errors.All(), 1, messages(ctx.Errors.All()))
}

func TestNestedConstructors(t *testing.T) {
	typ := optionOf(optionOf(ast.T("Int")))
	ctx := matchOn(t, typ,
		ast.Case(some(some(ast.PHole())), one()),
		ast.Case(some(none()), one()),
		ast.Case(none(), one()),
	)
	assert.Empty(t, ctx.Errors.All(), messages(ctx.Errors.All()))

	ctx = matchOn(t, typ,
		ast.Case(some(some(ast.PHole())), one()),
		ast.Case(none(), one()),
	)
	assert.Len(t, withCode(ctx, ilerr.NonExhaustiveMatch), 1, messages(ctx.Errors.All()))
}

func TestFieldBindingByName(t *testing.T) {
	ctx := matchOn(t, optionOf(ast.T("Int")),
		ast.Case(ast.PCon("Option::Some", ast.PF("value", nil)), ast.Ex(ast.Id("value"))),
		ast.Case(ast.PCon("Option::Some"), one()),
		ast.Case(none(), one()),
	)

	assert.Empty(t, ctx.Errors.Errors(), messages(ctx.Errors.All()))
	assert.Len(t, ctx.Errors.Warnings(), 1)
}

func TestAlternativesAndBool(t *testing.T) {
	ctx := matchOn(t, ast.T("Bool"),
		ast.CaseAny([]ast.Pattern{ast.PCon("Bool::True"), ast.PCon("Bool::False")}, one()),
	)
	assert.Empty(t, ctx.Errors.All(), messages(ctx.Errors.All()))

	ctx = matchOn(t, ast.T("Bool"),
		ast.Case(ast.PCon("Bool::True"), one()),
		ast.CaseAny([]ast.Pattern{ast.PCon("Bool::True"), ast.PCon("Bool::False")}, one()),
	)
	assert.Empty(t, ctx.Errors.All(), messages(ctx.Errors.All()))
}

func TestLiteralsNeverExhaust(t *testing.T) {
	ctx := matchOn(t, ast.T("Int"),
		ast.Case(ast.PLit(ast.Int("1")), one()),
		ast.Case(ast.PLit(ast.Int("2")), one()),
	)
	assert.Len(t, withCode(ctx, ilerr.NonExhaustiveMatch), 1, messages(ctx.Errors.All()))

	ctx = matchOn(t, ast.T("Int"),
		ast.Case(ast.PLit(ast.Int("1")), one()),
		ast.Case(ast.PBind("n"), ast.Ex(ast.Id("n"))),
	)
	assert.Empty(t, ctx.Errors.All(), messages(ctx.Errors.All()))
}

func TestPatternOfWrongType(t *testing.T) {
	ctx := matchOn(t, ast.T("Int"),
		ast.Case(none(), one()),
		ast.Case(ast.PHole(), one()),
	)
	assert.Len(t, withCode(ctx, ilerr.TypeMismatch), 1, messages(ctx.Errors.All()))
}

func TestBranchTypesMustCombine(t *testing.T) {
	ctx := matchOn(t, optionOf(ast.T("Int")),
		ast.Case(some(ast.PHole()), ast.Ex(ast.Str("a"))),
		ast.Case(none(), one()),
	)
	assert.Len(t, withCode(ctx, ilerr.BranchMismatch), 1, messages(ctx.Errors.All()))
}

func TestIsExhaustive(t *testing.T) {
	assert.True(t, IsExhaustive(Exhaustive{}))
	assert.False(t, IsExhaustive(Unmatched{}))
	assert.True(t, IsExhaustive(&TypeNode{Variants: map[string]MatchTree{"A": Exhaustive{}}}))
	assert.False(t, IsExhaustive(&TypeNode{Variants: map[string]MatchTree{"A": Exhaustive{}, "B": Unmatched{}}}))
	assert.False(t, IsExhaustive(&TypeNode{Variants: map[string]MatchTree{
		"A": &VariantNode{Fields: map[string]MatchTree{"x": Unmatched{}}},
	}}))
}
