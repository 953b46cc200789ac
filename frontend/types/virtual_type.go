package types

import (
	"fmt"
	"strings"

	"github.com/tarn-lang/tarn/frontend/vid"
)

// VirtualType is the checker's view of a type.
//
// It is a closed union:
//
//	*VidType:    a named type with type arguments, e.g. std::option::Option<T>
//	*FnType:     a function, possibly generic
//	*Generic:    a generic parameter, with its bounds
//	*Unknown:    the type of an expression after an error was reported
//	*Malleable:  an un-annotated closure, typed at its first use site
//	*Hole:       `_`, accepts anything
type VirtualType interface {
	fmt.Stringer
	isVirtualType()
}

var (
	_ VirtualType = (*VidType)(nil)
	_ VirtualType = (*FnType)(nil)
	_ VirtualType = (*Generic)(nil)
	_ VirtualType = (*Unknown)(nil)
	_ VirtualType = (*Malleable)(nil)
	_ VirtualType = (*Hole)(nil)
)

type VidType struct {
	Identifier vid.Vid
	TypeArgs   []VirtualType
}

type FnType struct {
	Generics   []*Generic
	ParamTypes []VirtualType
	ReturnType VirtualType
}

// Generic is a type parameter. Key identifies the declaration site
// (for example `app::foo::T`), Name is what the user wrote.
type Generic struct {
	Name   string
	Key    string
	Bounds []VirtualType
}

type Unknown struct{}

// Malleable is the type of a closure without parameter annotations.
// Node is the closure expression; the checker types it where it is first used.
type Malleable struct {
	Node any
}

type Hole struct{}

func (*VidType) isVirtualType()   {}
func (*FnType) isVirtualType()    {}
func (*Generic) isVirtualType()   {}
func (*Unknown) isVirtualType()   {}
func (*Malleable) isVirtualType() {}
func (*Hole) isVirtualType()      {}

func (t *VidType) String() string {
	if len(t.TypeArgs) == 0 {
		return t.Identifier.String()
	}
	return t.Identifier.String() + "<" + joinTypes(t.TypeArgs) + ">"
}

func (t *FnType) String() string {
	sb := strings.Builder{}
	sb.WriteString("fn")
	if len(t.Generics) > 0 {
		sb.WriteString("<")
		for i, g := range t.Generics {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(g.declString())
		}
		sb.WriteString(">")
	}
	sb.WriteString("(")
	sb.WriteString(joinTypes(t.ParamTypes))
	sb.WriteString("): ")
	if t.ReturnType == nil {
		sb.WriteString(Unit.String())
	} else {
		sb.WriteString(t.ReturnType.String())
	}
	return sb.String()
}

func (t *Generic) String() string { return t.Name }

func (t *Generic) declString() string {
	if len(t.Bounds) == 0 {
		return t.Name
	}
	bounds := make([]string, len(t.Bounds))
	for i, b := range t.Bounds {
		bounds[i] = b.String()
	}
	return t.Name + ": " + strings.Join(bounds, " + ")
}

func (*Unknown) String() string   { return "<unknown>" }
func (*Malleable) String() string { return "<malleable>" }
func (*Hole) String() string      { return "_" }

func joinTypes(ts []VirtualType) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		if t == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// Named builds a *VidType from a rendered identifier
func Named(identifier string, args ...VirtualType) *VidType {
	return &VidType{Identifier: vid.Parse(identifier), TypeArgs: args}
}

func NewUnknown() VirtualType { return &Unknown{} }

func NewHole() VirtualType { return &Hole{} }

// IsUnknownOrHole is true for the two types that absorb every check
func IsUnknownOrHole(t VirtualType) bool {
	switch t.(type) {
	case *Unknown, *Hole, nil:
		return true
	}
	return false
}

// Equal is structural equality. Generics are equal when their names and
// bounds are.
func Equal(a, b VirtualType) bool {
	switch a := a.(type) {
	case *VidType:
		b, ok := b.(*VidType)
		if !ok || !a.Identifier.Equal(b.Identifier) || len(a.TypeArgs) != len(b.TypeArgs) {
			return false
		}
		for i := range a.TypeArgs {
			if !Equal(a.TypeArgs[i], b.TypeArgs[i]) {
				return false
			}
		}
		return true
	case *FnType:
		b, ok := b.(*FnType)
		if !ok || len(a.ParamTypes) != len(b.ParamTypes) {
			return false
		}
		for i := range a.ParamTypes {
			if !Equal(a.ParamTypes[i], b.ParamTypes[i]) {
				return false
			}
		}
		return Equal(returnOrUnit(a), returnOrUnit(b))
	case *Generic:
		b, ok := b.(*Generic)
		if !ok || a.Name != b.Name || len(a.Bounds) != len(b.Bounds) {
			return false
		}
		for i := range a.Bounds {
			if !Equal(a.Bounds[i], b.Bounds[i]) {
				return false
			}
		}
		return true
	case *Unknown:
		_, ok := b.(*Unknown)
		return ok
	case *Hole:
		_, ok := b.(*Hole)
		return ok
	case *Malleable:
		b, ok := b.(*Malleable)
		return ok && a.Node == b.Node
	case nil:
		return b == nil
	default:
		panic(unhandled(a))
	}
}

func returnOrUnit(t *FnType) VirtualType {
	if t.ReturnType == nil {
		return Unit
	}
	return t.ReturnType
}

// ReturnOf is the return type of t, defaulting to Unit
func ReturnOf(t *FnType) VirtualType {
	return returnOrUnit(t)
}

// InvariantError is the panic value raised when a VirtualType breaks an
// assumption of this package, such as an implementation it does not know
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "type invariant: " + e.Message
}

func unhandled(t VirtualType) *InvariantError {
	return &InvariantError{Message: fmt.Sprintf("unhandled virtual type %T", t)}
}
