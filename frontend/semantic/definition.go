package semantic

import (
	"fmt"

	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/types"
	"github.com/tarn-lang/tarn/frontend/vid"
)

type DefKind int

const (
	KindModule DefKind = iota
	KindVar
	KindFn
	KindTrait
	KindImpl
	KindType
	KindVariant
	KindMethod
	KindGeneric
	KindParam
	KindSelf
)

func (k DefKind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindVar:
		return "variable"
	case KindFn:
		return "function"
	case KindTrait:
		return "trait"
	case KindImpl:
		return "impl"
	case KindType:
		return "type"
	case KindVariant:
		return "variant"
	case KindMethod:
		return "method"
	case KindGeneric:
		return "generic"
	case KindParam:
		return "parameter"
	case KindSelf:
		return "Self"
	default:
		return fmt.Sprintf("DefKind(%d)", int(k))
	}
}

// Kind filters used by the resolver
var (
	ValueKinds  = []DefKind{KindVar, KindParam, KindFn, KindVariant, KindMethod}
	TypeKinds   = []DefKind{KindSelf, KindGeneric, KindType, KindTrait}
	ModuleKinds = []DefKind{KindModule}
	AnyKinds    = []DefKind{KindVar, KindParam, KindFn, KindVariant, KindMethod, KindSelf, KindGeneric, KindType, KindTrait, KindModule}
)

// Definition is what a Vid resolves to. It is a closed union; consumers
// switch over every member and treat anything else as an internal failure.
type Definition interface {
	Kind() DefKind
	isDefinition()
}

var (
	_ Definition = (*ModuleDef)(nil)
	_ Definition = (*VarDef)(nil)
	_ Definition = (*FnDef)(nil)
	_ Definition = (*TraitDef)(nil)
	_ Definition = (*ImplDef)(nil)
	_ Definition = (*TypeDef)(nil)
	_ Definition = (*VariantDef)(nil)
	_ Definition = (*MethodDef)(nil)
	_ Definition = (*GenericDef)(nil)
	_ Definition = (*ParamDef)(nil)
	_ Definition = (*SelfDef)(nil)
)

type ModuleDef struct {
	Module *Module
}

// VarDef is a variable: a `let` statement (Node) or a name bound by a match
// pattern (Node is nil). Binding holds the checked type.
type VarDef struct {
	Name    string
	Node    *ast.VarDef
	Binding ast.Annotated
	Module  *Module
	// typing guards against a top-level variable whose value refers to itself
	typing bool
}

type FnDef struct {
	Node   *ast.FnDef
	Vid    vid.Vid
	Module *Module
	sig    *types.FnType
}

type TraitDef struct {
	Node    *ast.TraitDef
	Vid     vid.Vid
	Module  *Module
	Methods map[string]*MethodDef
	// Rel is the trait's self-relation, set when relations are built
	Rel         *InstanceRelation
	generics    []*types.Generic
	selfGeneric *types.Generic
	scope       *Scope
}

type ImplDef struct {
	Node    *ast.ImplDef
	Module  *Module
	Methods map[string]*MethodDef
	// Rel is set when relations are built
	Rel   *InstanceRelation
	trait *TraitDef
	scope *Scope
}

type TypeDef struct {
	Node     *ast.TypeDef
	Vid      vid.Vid
	Module   *Module
	Variants map[string]*VariantDef
	generics []*types.Generic
}

type VariantDef struct {
	Node    *ast.Variant
	TypeDef *TypeDef
}

// MethodDef is a function declared in a trait or impl body. Rel is a
// non-owning reference to the relation it was declared under.
type MethodDef struct {
	Node  *ast.FnDef
	Owner Definition // *TraitDef or *ImplDef
	Rel   *InstanceRelation
	sig   *types.FnType
}

type GenericDef struct {
	Node    *ast.GenericDecl
	Generic *types.Generic
}

type ParamDef struct {
	Node *ast.Param
}

// SelfDef is `Self` inside a trait or impl body
type SelfDef struct {
	Owner Definition // *TraitDef or *ImplDef
	Type  types.VirtualType
}

func (*ModuleDef) Kind() DefKind  { return KindModule }
func (*VarDef) Kind() DefKind     { return KindVar }
func (*FnDef) Kind() DefKind      { return KindFn }
func (*TraitDef) Kind() DefKind   { return KindTrait }
func (*ImplDef) Kind() DefKind    { return KindImpl }
func (*TypeDef) Kind() DefKind    { return KindType }
func (*VariantDef) Kind() DefKind { return KindVariant }
func (*MethodDef) Kind() DefKind  { return KindMethod }
func (*GenericDef) Kind() DefKind { return KindGeneric }
func (*ParamDef) Kind() DefKind   { return KindParam }
func (*SelfDef) Kind() DefKind    { return KindSelf }

func (*ModuleDef) isDefinition()  {}
func (*VarDef) isDefinition()     {}
func (*FnDef) isDefinition()      {}
func (*TraitDef) isDefinition()   {}
func (*ImplDef) isDefinition()    {}
func (*TypeDef) isDefinition()    {}
func (*VariantDef) isDefinition() {}
func (*MethodDef) isDefinition()  {}
func (*GenericDef) isDefinition() {}
func (*ParamDef) isDefinition()   {}
func (*SelfDef) isDefinition()    {}

func newTraitDef(node *ast.TraitDef, v vid.Vid, m *Module) *TraitDef {
	def := &TraitDef{Node: node, Vid: v, Module: m, Methods: make(map[string]*MethodDef, len(node.Body))}
	for _, fn := range node.Body {
		def.Methods[fn.Name] = &MethodDef{Node: fn, Owner: def}
	}
	return def
}

func newImplDef(node *ast.ImplDef, m *Module) *ImplDef {
	def := &ImplDef{Node: node, Module: m, Methods: make(map[string]*MethodDef, len(node.Body))}
	for _, fn := range node.Body {
		def.Methods[fn.Name] = &MethodDef{Node: fn, Owner: def}
	}
	return def
}

func newTypeDef(node *ast.TypeDef, v vid.Vid, m *Module) *TypeDef {
	def := &TypeDef{Node: node, Vid: v, Module: m, Variants: make(map[string]*VariantDef, len(node.Variants))}
	for _, variant := range node.Variants {
		def.Variants[variant.Name] = &VariantDef{Node: variant, TypeDef: def}
	}
	return def
}

// isPublic reports whether def may be referenced from another module
func isPublic(def Definition) bool {
	switch def := def.(type) {
	case *VarDef:
		return def.Node == nil || def.Node.Pub
	case *FnDef:
		return def.Node.Pub
	case *TraitDef:
		return def.Node.Pub
	case *ImplDef:
		return def.Node.Pub
	case *TypeDef:
		return def.Node.Pub
	case *VariantDef:
		return def.TypeDef.Node.Pub
	case *MethodDef:
		return isPublic(def.Owner)
	case *ModuleDef, *GenericDef, *ParamDef, *SelfDef:
		return true
	default:
		Unreachable(def)
		return false
	}
}

// moduleOf is the module a top-level definition was declared in, or nil
// for local definitions
func moduleOf(def Definition) *Module {
	switch def := def.(type) {
	case *VarDef:
		return def.Module
	case *FnDef:
		return def.Module
	case *TraitDef:
		return def.Module
	case *ImplDef:
		return def.Module
	case *TypeDef:
		return def.Module
	case *VariantDef:
		return def.TypeDef.Module
	case *MethodDef:
		return moduleOf(def.Owner)
	case *ModuleDef, *GenericDef, *ParamDef, *SelfDef:
		return nil
	default:
		Unreachable(def)
		return nil
	}
}
