package astio

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarn-lang/tarn/frontend/ast"
)

const shapesDoc = `
module: app::shapes
uses:
  - std::option::*
  - path: std
    nested:
      - path: list::List
statements:
  - kind: trait
    pub: true
    name: Shape
    methods:
      - kind: fn
        name: area
        params: [self]
        returns: Int
  - kind: type
    pub: true
    name: Circle
    variants:
      - name: Circle
        fields:
          - {name: radius, pub: true, type: Int}
  - kind: impl
    trait: Shape
    for: Circle
    methods:
      - kind: fn
        name: area
        params: [self]
        returns: Int
        body:
          - kind: binary
            op: "*"
            left: {kind: field, receiver: {kind: ident, name: self}, name: radius}
            right: {kind: int, value: "3"}
  - kind: fn
    name: describe
    generics:
      - name: T
        bounds: [Shape]
    params:
      - {name: s, type: T}
      - {name: o, type: {kind: type, name: Option, args: [Int]}}
    returns: String
    body:
      - kind: var
        name: n
        value:
          kind: match
          scrutinee: {kind: ident, name: o}
          clauses:
            - pattern:
                kind: con
                name: Option::Some
                fields:
                  - {name: value, pattern: {kind: bind, name: v}}
              guard: {kind: binary, op: ">", left: {kind: ident, name: v}, right: {kind: int, value: "0"}}
              body: [{kind: ident, name: v}]
            - patterns: [{kind: hole}]
              body: [{kind: method, receiver: {kind: ident, name: s}, name: area}]
      - kind: return
        value: {kind: string, value: "done"}
`

func TestDecodeModule(t *testing.T) {
	fSet := token.NewFileSet()
	m, err := Decode(fSet, "shapes.ast.yaml", []byte(shapesDoc))
	require.NoError(t, err)

	assert.Equal(t, "app::shapes", m.Path)
	require.Len(t, m.AST.Uses, 2)
	assert.True(t, m.AST.Uses[0].Wildcard)
	assert.Equal(t, []string{"std", "option"}, m.AST.Uses[0].Path)
	require.Len(t, m.AST.Uses[1].Nested, 1)
	assert.Equal(t, []string{"list", "List"}, m.AST.Uses[1].Nested[0].Path)

	require.Len(t, m.AST.Statements, 4)
	trait := m.AST.Statements[0].(*ast.TraitDef)
	assert.True(t, trait.Pub)
	require.Len(t, trait.Body, 1)
	assert.Nil(t, trait.Body[0].Body)
	assert.True(t, trait.Body[0].HasSelf())

	impl := m.AST.Statements[2].(*ast.ImplDef)
	assert.Equal(t, "Shape", ast.TypeExprString(impl.Trait))
	area := impl.Body[0].Body.Statements[0].(*ast.ExprStmt)
	assert.Equal(t, "(self.radius * 3)", ast.ExprString(area.X))

	describe := m.AST.Statements[3].(*ast.FnDef)
	require.Len(t, describe.Generics, 1)
	require.Len(t, describe.Generics[0].Bounds, 1)
	assert.Equal(t, "Option<Int>", ast.TypeExprString(describe.Params[1].ParamType))

	match := describe.Body.Statements[0].(*ast.VarDef).Value.(*ast.Match)
	require.Len(t, match.Clauses, 2)
	assert.NotNil(t, match.Clauses[0].Guard)
	con := match.Clauses[0].Patterns[0].(*ast.ConPattern)
	assert.Equal(t, []string{"Option", "Some"}, con.Identifier.Names)
	assert.IsType(t, &ast.BindPattern{}, con.Fields[0].Pattern)
	assert.IsType(t, &ast.HolePattern{}, match.Clauses[1].Patterns[0])

	ret := describe.Body.Statements[1].(*ast.ReturnStmt)
	assert.Equal(t, ast.LitString, ret.Value.(*ast.Literal).Kind)
}

func TestDecodePositions(t *testing.T) {
	fSet := token.NewFileSet()
	m, err := Decode(fSet, "shapes.ast.yaml", []byte(shapesDoc))
	require.NoError(t, err)

	trait := m.AST.Statements[0]
	pos := fSet.Position(trait.Pos())
	assert.Equal(t, "shapes.ast.yaml", pos.Filename)
	assert.Equal(t, 9, pos.Line)
	assert.Equal(t, 5, pos.Column)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not yaml", "module: [", "could not parse"},
		{"missing module", "statements: []", `missing key "module"`},
		{"unknown expression", "module: a\nstatements:\n  - kind: nope\n", `unknown expression kind "nope"`},
		{"unknown type", "module: a\nstatements:\n  - {kind: var, name: x, type: {kind: nope}, value: {kind: int, value: '1'}}\n", `unknown type kind "nope"`},
		{"bad bool", "module: a\nstatements:\n  - {kind: bool, value: maybe}\n", "invalid bool literal"},
		{"clause without patterns", "module: a\nstatements:\n  - {kind: match, scrutinee: {kind: ident, name: x}, clauses: [{body: []}]}\n", "without patterns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(token.NewFileSet(), "bad.ast.yaml", []byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeErrorHasPosition(t *testing.T) {
	_, err := Decode(token.NewFileSet(), "bad.ast.yaml", []byte("module: a\nstatements:\n  - kind: nope\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.ast.yaml:3:5")
}
