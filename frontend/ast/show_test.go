package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExprString(t *testing.T) {
	cases := map[string]Expr{
		`foo::bar(1, "a")`:            CallE(Id("foo::bar"), Int("1"), Str("a")),
		`x.map<std::int::Int>(y)`:     &MethodCall{Receiver: Id("x"), Method: "map", TypeArgs: Types(T("std::int::Int")), Args: []Expr{Id("y")}},
		`(a + b.c)`:                   Bin("+", Id("a"), Field(Id("b"), "c")),
		`[1, 2]`:                      ListE(Int("1"), Int("2")),
		`|a, b: Int| { ... }`:         Lambda(Params(P("a", nil), P("b", T("Int"))), nil),
		`match x { ... }`:             MatchE(Id("x")),
		`Option<T>`:                   Id("Option", T("T")),
	}
	for expected, expr := range cases {
		t.Run(expected, func(t *testing.T) {
			assert.Equal(t, expected, ExprString(expr))
		})
	}
}

func TestPatternString(t *testing.T) {
	p := PCon("Option::Some", PF("value", PHole()))
	assert.Equal(t, "Option::Some(value: _)", PatternString(p))
	assert.Equal(t, "Option::None", PatternString(PCon("Option::None")))
}

func TestInspectVisitsNestedExpressions(t *testing.T) {
	inner := Int("1")
	fn := Fn("f", nil, nil, nil, Ex(IfE(BoolL(true), Stmts(Ex(inner)), nil)))
	found := false
	Inspect(fn, func(n Node) bool {
		if n == Node(inner) {
			found = true
		}
		return true
	})
	assert.True(t, found)
}

func TestPubMarksStatement(t *testing.T) {
	fn := Pub(Fn("f", nil, nil, nil))
	assert.True(t, fn.Pub)
	td := Pub(TypeD("T", nil))
	assert.True(t, td.Pub)
}
