package ast

import "strings"

// The functions below build AST nodes without source positions. They are
// used to declare the std package and to write checker tests, since parsing
// happens outside this module.

func splitPath(path string) []string {
	return strings.Split(path, "::")
}

// Mod builds a Module
func Mod(uses []*UseExpr, stmts ...Statement) *Module {
	return &Module{Uses: uses, Statements: stmts}
}

// Uses is a convenience for a list of `use` imports
func Uses(uses ...*UseExpr) []*UseExpr { return uses }

// Use imports a single path, `use a::b::C`
func Use(path string) *UseExpr {
	return &UseExpr{Path: splitPath(path)}
}

// UseAll is `use a::b::*`
func UseAll(path string) *UseExpr {
	return &UseExpr{Path: splitPath(path), Wildcard: true}
}

// UseNested is `use a::b::{...}`
func UseNested(path string, nested ...*UseExpr) *UseExpr {
	return &UseExpr{Path: splitPath(path), Nested: nested}
}

func Let(name string, typ TypeExpr, value Expr) *VarDef {
	return &VarDef{Name: name, VarType: typ, Value: value}
}

func Fn(name string, generics []*GenericDecl, params []*Param, ret TypeExpr, body ...Statement) *FnDef {
	return &FnDef{
		Name:       name,
		Generics:   generics,
		Params:     params,
		ReturnType: ret,
		Body:       &Block{Statements: body},
	}
}

// AbstractFn is a trait method without a body
func AbstractFn(name string, generics []*GenericDecl, params []*Param, ret TypeExpr) *FnDef {
	return &FnDef{Name: name, Generics: generics, Params: params, ReturnType: ret}
}

func Generics(gs ...*GenericDecl) []*GenericDecl { return gs }

func Gen(name string, bounds ...TypeExpr) *GenericDecl {
	return &GenericDecl{Name: name, Bounds: bounds}
}

func Params(ps ...*Param) []*Param { return ps }

func P(name string, typ TypeExpr) *Param {
	return &Param{Name: name, ParamType: typ}
}

// SelfP is the receiver parameter
func SelfP() *Param {
	return &Param{Name: SelfParamName}
}

func Trait(name string, generics []*GenericDecl, methods ...*FnDef) *TraitDef {
	return &TraitDef{Name: name, Generics: generics, Body: methods}
}

// Impl is `impl<generics> trait for forType`; pass a nil trait for an
// inherent impl
func Impl(generics []*GenericDecl, trait TypeExpr, forType TypeExpr, methods ...*FnDef) *ImplDef {
	return &ImplDef{Generics: generics, Trait: trait, ForType: forType, Body: methods}
}

func TypeD(name string, generics []*GenericDecl, variants ...*Variant) *TypeDef {
	return &TypeDef{Name: name, Generics: generics, Variants: variants}
}

func V(name string, fields ...*FieldDef) *Variant {
	return &Variant{Name: name, Fields: fields}
}

func F(name string, typ TypeExpr) *FieldDef {
	return &FieldDef{Name: name, FieldType: typ}
}

func PubF(name string, typ TypeExpr) *FieldDef {
	return &FieldDef{Pub: true, Name: name, FieldType: typ}
}

// Pub marks a top-level statement public and returns it
func Pub[S Statement](s S) S {
	switch s := any(s).(type) {
	case *VarDef:
		s.Pub = true
	case *FnDef:
		s.Pub = true
	case *TraitDef:
		s.Pub = true
	case *ImplDef:
		s.Pub = true
	case *TypeDef:
		s.Pub = true
	}
	return s
}

// T is a named type, `T("std::list::List", T("T"))`
func T(path string, args ...TypeExpr) *NamedType {
	return &NamedType{Names: splitPath(path), TypeArgs: args}
}

func FnT(params []TypeExpr, ret TypeExpr) *FnTypeExpr {
	return &FnTypeExpr{Params: params, Return: ret}
}

func Types(ts ...TypeExpr) []TypeExpr { return ts }

func HoleT() *HoleType { return &HoleType{} }

func Id(path string, typeArgs ...TypeExpr) *Ident {
	return &Ident{Names: splitPath(path), TypeArgs: typeArgs}
}

func Int(v string) *Literal    { return &Literal{Kind: LitInt, Value: v} }
func Float(v string) *Literal  { return &Literal{Kind: LitFloat, Value: v} }
func Str(v string) *Literal    { return &Literal{Kind: LitString, Value: v} }
func Char(v string) *Literal   { return &Literal{Kind: LitChar, Value: v} }
func BoolL(v bool) *Literal {
	if v {
		return &Literal{Kind: LitBool, Value: "true"}
	}
	return &Literal{Kind: LitBool, Value: "false"}
}

func CallE(callee Expr, args ...Expr) *Call {
	return &Call{Callee: callee, Args: args}
}

func MCall(receiver Expr, method string, args ...Expr) *MethodCall {
	return &MethodCall{Receiver: receiver, Method: method, Args: args}
}

func Field(receiver Expr, name string) *FieldAccess {
	return &FieldAccess{Receiver: receiver, Field: name}
}

func Bin(op string, left, right Expr) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

func Un(op string, operand Expr) *Unary {
	return &Unary{Op: op, Operand: operand}
}

func Lambda(params []*Param, ret TypeExpr, body ...Statement) *Closure {
	return &Closure{Params: params, ReturnType: ret, Body: &Block{Statements: body}}
}

// IfE builds an if expression; a nil els means no else branch
func IfE(cond Expr, then []Statement, els []Statement) *If {
	e := &If{Cond: cond, Then: &Block{Statements: then}}
	if els != nil {
		e.Else = &Block{Statements: els}
	}
	return e
}

func Stmts(s ...Statement) []Statement { return s }

func MatchE(scrutinee Expr, clauses ...*MatchClause) *Match {
	return &Match{Scrutinee: scrutinee, Clauses: clauses}
}

func Case(pattern Pattern, body ...Statement) *MatchClause {
	return &MatchClause{Patterns: []Pattern{pattern}, Body: &Block{Statements: body}}
}

func CaseIf(pattern Pattern, guard Expr, body ...Statement) *MatchClause {
	return &MatchClause{Patterns: []Pattern{pattern}, Guard: guard, Body: &Block{Statements: body}}
}

// CaseAny is a clause with alternatives, `p1 | p2 => body`
func CaseAny(patterns []Pattern, body ...Statement) *MatchClause {
	return &MatchClause{Patterns: patterns, Body: &Block{Statements: body}}
}

func ListE(elems ...Expr) *ListLit { return &ListLit{Elements: elems} }

func Blk(stmts ...Statement) *Block { return &Block{Statements: stmts} }

func Ret(value Expr) *ReturnStmt { return &ReturnStmt{Value: value} }

// Ex wraps an expression as a statement
func Ex(x Expr) *ExprStmt { return &ExprStmt{X: x} }

func PBind(name string) *BindPattern { return &BindPattern{Name: name} }

func PHole() *HolePattern { return &HolePattern{} }

func PLit(lit *Literal) *LitPattern { return &LitPattern{Lit: lit} }

func PCon(path string, fields ...*FieldPattern) *ConPattern {
	return &ConPattern{Identifier: Id(path), Fields: fields}
}

// PF matches field name against p; a nil p binds the field by name
func PF(name string, p Pattern) *FieldPattern {
	return &FieldPattern{Name: name, Pattern: p}
}
