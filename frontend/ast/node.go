package ast

import (
	"fmt"

	"github.com/tarn-lang/tarn/frontend/types"
)

// Node is the base interface for all AST nodes.
type Node interface {
	Positioner
}

// Expr is the interface for all expression nodes in the AST.
type Expr interface {
	Node
	Annotated
	exprNode() // Marker method to distinguish expressions
}

// Statement is the interface for all statement nodes in the AST.
type Statement interface {
	Node
	stmtNode() // Marker method to distinguish statements
}

// Pattern is the interface for all match-clause patterns.
type Pattern interface {
	Node
	Annotated
	patternNode()
}

// TypeExpr is a type as written in the source.
type TypeExpr interface {
	Node
	typeExprNode()
}

// Evidence is compile-time dispatch evidence the checker attaches to a node,
// such as an upcast of a concrete value to a trait view. It is read by the
// code generator.
type Evidence interface {
	fmt.Stringer
	IsEvidence()
}

// Annot holds what the checker fills in for a node.
type Annot struct {
	// Type is nil until the node is checked
	Type types.VirtualType
	// Upcasts lists the trait views this value is converted to at this node
	Upcasts []Evidence
}

// Annotated nodes carry an Annot slot
type Annotated interface {
	Annotation() *Annot
}

func (a *Annot) Annotation() *Annot { return a }

// TypeOf returns the checked type of n, or nil if it was not checked
func TypeOf(n Annotated) types.VirtualType {
	if n == nil {
		return nil
	}
	return n.Annotation().Type
}

// Module is the root of a single source file.
type Module struct {
	Range
	Uses       []*UseExpr
	Statements []Statement
}

// UseExpr is a `use` import. Path is the written prefix; a non-empty Nested
// list means `use a::b::{c, d::e}`, and Wildcard means `use a::b::*`.
type UseExpr struct {
	Range
	Pub      bool
	Path     []string
	Nested   []*UseExpr
	Wildcard bool
}

// VarDef is `let name: T = value`.
type VarDef struct {
	Range
	Annot
	Pub     bool
	Name    string
	VarType TypeExpr // may be nil
	Value   Expr
}

// FnDef is a function, or a method when declared inside a trait or impl.
// Body is nil for abstract trait methods.
type FnDef struct {
	Range
	Annot
	Pub        bool
	Name       string
	Generics   []*GenericDecl
	Params     []*Param
	ReturnType TypeExpr // nil means Unit
	Body       *Block
}

// HasSelf reports whether the first parameter is the receiver
func (f *FnDef) HasSelf() bool {
	return len(f.Params) > 0 && f.Params[0].Name == SelfParamName
}

// SelfParamName is the name of a method receiver parameter
const SelfParamName = "self"

// TraitDef declares a trait. Supertraits are declared with `impl Super for Trait`.
type TraitDef struct {
	Range
	Pub      bool
	Name     string
	Generics []*GenericDecl
	Body     []*FnDef
}

// ImplDef is `impl<G> Trait for ForType { ... }`, or an inherent
// `impl<G> ForType { ... }` when Trait is nil.
type ImplDef struct {
	Range
	Pub      bool
	Generics []*GenericDecl
	Trait    TypeExpr // may be nil
	ForType  TypeExpr
	Body     []*FnDef
}

// TypeDef declares a variant type.
type TypeDef struct {
	Range
	Pub      bool
	Name     string
	Generics []*GenericDecl
	Variants []*Variant
}

// Variant is a single constructor of a TypeDef
type Variant struct {
	Range
	Name   string
	Fields []*FieldDef
}

// Field returns the field called name, if any
func (v *Variant) Field(name string) (*FieldDef, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

type FieldDef struct {
	Range
	Annot
	Pub       bool
	Name      string
	FieldType TypeExpr
}

type ReturnStmt struct {
	Range
	Value Expr // may be nil
}

// ExprStmt represents an expression used as a statement.
type ExprStmt struct {
	Range
	X Expr
}

// GenericDecl is a type parameter declaration `T: A + B`
type GenericDecl struct {
	Range
	Name   string
	Bounds []TypeExpr
}

// Param is a function or closure parameter. ParamType may be nil for the
// receiver (typed as Self) and for closure parameters.
type Param struct {
	Range
	Annot
	Name      string
	ParamType TypeExpr
}

func (*VarDef) stmtNode()     {}
func (*FnDef) stmtNode()      {}
func (*TraitDef) stmtNode()   {}
func (*ImplDef) stmtNode()    {}
func (*TypeDef) stmtNode()    {}
func (*ReturnStmt) stmtNode() {}
func (*ExprStmt) stmtNode()   {}

// Ident is a possibly qualified name, `a::b::C<T>`
type Ident struct {
	Range
	Annot
	Names    []string
	TypeArgs []TypeExpr
}

type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitChar
	LitBool
)

func (k LitKind) String() string {
	switch k {
	case LitInt:
		return "int"
	case LitFloat:
		return "float"
	case LitString:
		return "string"
	case LitChar:
		return "char"
	case LitBool:
		return "bool"
	default:
		return fmt.Sprintf("LitKind(%d)", int(k))
	}
}

// Literal represents a literal value. Value is the source syntax.
type Literal struct {
	Range
	Annot
	Kind  LitKind
	Value string
}

type Call struct {
	Range
	Annot
	Callee Expr
	Args   []Expr
}

// MethodCall is `receiver.method<T>(args)`
type MethodCall struct {
	Range
	Annot
	Receiver Expr
	Method   string
	TypeArgs []TypeExpr
	Args     []Expr
}

type FieldAccess struct {
	Range
	Annot
	Receiver Expr
	Field    string
}

type Binary struct {
	Range
	Annot
	Op    string
	Left  Expr
	Right Expr
}

type Unary struct {
	Range
	Annot
	Op      string
	Operand Expr
}

// Closure is `|a, b: Int|: R { ... }`
type Closure struct {
	Range
	Annot
	Params     []*Param
	ReturnType TypeExpr // may be nil
	Body       *Block
}

type If struct {
	Range
	Annot
	Cond Expr
	Then *Block
	Else *Block // may be nil
}

type Match struct {
	Range
	Annot
	Scrutinee Expr
	Clauses   []*MatchClause
}

// MatchClause is `p1 | p2 if guard => { body }`
type MatchClause struct {
	Range
	Patterns []Pattern
	Guard    Expr // may be nil
	Body     *Block
}

type ListLit struct {
	Range
	Annot
	Elements []Expr
}

// Block is a sequence of statements. As an expression, its value is the
// value of its last statement when that is an ExprStmt, and Unit otherwise.
type Block struct {
	Range
	Annot
	Statements []Statement
}

func (*Ident) exprNode()       {}
func (*Literal) exprNode()     {}
func (*Call) exprNode()        {}
func (*MethodCall) exprNode()  {}
func (*FieldAccess) exprNode() {}
func (*Binary) exprNode()      {}
func (*Unary) exprNode()       {}
func (*Closure) exprNode()     {}
func (*If) exprNode()          {}
func (*Match) exprNode()       {}
func (*ListLit) exprNode()     {}
func (*Block) exprNode()       {}

// BindPattern binds the matched value to Name
type BindPattern struct {
	Range
	Annot
	Name string
}

// HolePattern is `_`
type HolePattern struct {
	Range
	Annot
}

type LitPattern struct {
	Range
	Annot
	Lit *Literal
}

// ConPattern is `Type::Variant(field: pattern, ...)`.
type ConPattern struct {
	Range
	Annot
	Identifier *Ident
	Fields     []*FieldPattern
}

// FieldPattern matches a single field. A nil Pattern binds the field to a
// variable of the same name.
type FieldPattern struct {
	Range
	Name    string
	Pattern Pattern
}

func (*BindPattern) patternNode() {}
func (*HolePattern) patternNode() {}
func (*LitPattern) patternNode()  {}
func (*ConPattern) patternNode()  {}

// NamedType is `a::b::C<T, U>`
type NamedType struct {
	Range
	Names    []string
	TypeArgs []TypeExpr
}

// FnTypeExpr is `<G>(A, B) -> R`
type FnTypeExpr struct {
	Range
	Generics []*GenericDecl
	Params   []TypeExpr
	Return   TypeExpr
}

// HoleType is `_` in type position
type HoleType struct {
	Range
}

func (*NamedType) typeExprNode()  {}
func (*FnTypeExpr) typeExprNode() {}
func (*HoleType) typeExprNode()   {}
