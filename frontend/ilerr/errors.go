package ilerr

import (
	"fmt"
	"go/token"
	"runtime/debug"
	"strings"

	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/types"
)

// enableDebugErrorPrinting makes errors include the frame that reported them when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	NotFound
	TypeMismatch
	BranchMismatch
	ClashingMethod
	NarrowFieldAccess
	PrivateAccess
	UnresolvedGeneric
	CircularModuleReference
	NonExhaustiveMatch
	UnreachablePattern
	ArityMismatch
	OverlappingImpl
	NotCallable
	Redeclaration
	NotATrait
	MissingReturn
	MissingMethod
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// IleError is a semantic diagnostic about the checked program
type IleError interface {
	Error() string
	Code() ErrCode
	Severity() Severity
	// Module is the rendered path of the module the diagnostic was reported in
	Module() string
	// Node is the offending node. It may be nil.
	Node() ast.Node
	ast.Positioner

	withStack([]byte) IleError
	getStack() []byte
}

func FormatWithCode(e IleError) string {
	prefix := "E"
	if e.Severity() == SeverityWarning {
		prefix = "W"
	}
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			lines := strings.Split(stack, "\n")
			if len(lines) > 6 {
				stack = lines[6]
			}
		}
		return fmt.Sprintf("%s:(%s%03d) %s", stack, prefix, e.Code(), e.Error())
	}
	return fmt.Sprintf("(%s%03d) %s", prefix, e.Code(), e.Error())
}

// New records the stack of the caller into err
func New[E IleError](err E) IleError {
	return err.withStack(debug.Stack())
}

// Site locates a diagnostic: the module it was found in and the node.
// Embedding a Site makes an error a Positioner.
type Site struct {
	ModulePath string
	At         ast.Node
}

func (s Site) Module() string { return s.ModulePath }
func (s Site) Node() ast.Node { return s.At }

func (s Site) Pos() (p token.Pos) {
	if s.At == nil {
		return p
	}
	return s.At.Pos()
}

func (s Site) End() (p token.Pos) {
	if s.At == nil {
		return p
	}
	return s.At.End()
}

type errorSeverity struct{}

func (errorSeverity) Severity() Severity { return SeverityError }

type warningSeverity struct{}

func (warningSeverity) Severity() Severity { return SeverityWarning }

type Unclassified struct {
	Site
	errorSeverity
	From  error
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

// NewNotFound is reported when a reference fails every resolution step.
// What says what was looked for: identifier, type, method, field, variant, module...
type NewNotFound struct {
	Site
	errorSeverity
	What  string
	Name  string
	stack []byte
}

func (e NewNotFound) Error() string {
	return fmt.Sprintf("%s `%s` not found", e.What, e.Name)
}
func (e NewNotFound) Code() ErrCode    { return NotFound }
func (e NewNotFound) getStack() []byte { return e.stack }
func (e NewNotFound) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewTypeMismatch struct {
	Site
	errorSeverity
	Expected types.VirtualType
	Got      types.VirtualType
	stack    []byte
}

func (e NewTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: expected `%v`, got `%v`", e.Expected, e.Got)
}
func (e NewTypeMismatch) Code() ErrCode    { return TypeMismatch }
func (e NewTypeMismatch) getStack() []byte { return e.stack }
func (e NewTypeMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewBranchMismatch struct {
	Site
	errorSeverity
	First  types.VirtualType
	Second types.VirtualType
	stack  []byte
}

func (e NewBranchMismatch) Error() string {
	return fmt.Sprintf("branch type mismatch: `%v` and `%v` have no common type", e.First, e.Second)
}
func (e NewBranchMismatch) Code() ErrCode    { return BranchMismatch }
func (e NewBranchMismatch) getStack() []byte { return e.stack }
func (e NewBranchMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewClashingMethod struct {
	Site
	errorSeverity
	Method     string
	TypeName   string
	Candidates []string
	stack      []byte
}

func (e NewClashingMethod) Error() string {
	return fmt.Sprintf("clashing method name `%s` on `%s`: provided by %s", e.Method, e.TypeName, strings.Join(e.Candidates, ", "))
}
func (e NewClashingMethod) Code() ErrCode    { return ClashingMethod }
func (e NewClashingMethod) getStack() []byte { return e.stack }
func (e NewClashingMethod) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewNarrowFieldAccess struct {
	Site
	errorSeverity
	Field    string
	TypeName string
	stack    []byte
}

func (e NewNarrowFieldAccess) Error() string {
	return fmt.Sprintf("field `%s` is not defined in all variants of `%s`", e.Field, e.TypeName)
}
func (e NewNarrowFieldAccess) Code() ErrCode    { return NarrowFieldAccess }
func (e NewNarrowFieldAccess) getStack() []byte { return e.stack }
func (e NewNarrowFieldAccess) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewPrivateAccess struct {
	Site
	errorSeverity
	Name  string
	stack []byte
}

func (e NewPrivateAccess) Error() string {
	return fmt.Sprintf("`%s` is private to its module", e.Name)
}
func (e NewPrivateAccess) Code() ErrCode    { return PrivateAccess }
func (e NewPrivateAccess) getStack() []byte { return e.stack }
func (e NewPrivateAccess) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewUnresolvedGeneric struct {
	Site
	errorSeverity
	Name  string
	stack []byte
}

func (e NewUnresolvedGeneric) Error() string {
	return fmt.Sprintf("unresolved generic `%s`", e.Name)
}
func (e NewUnresolvedGeneric) Code() ErrCode    { return UnresolvedGeneric }
func (e NewUnresolvedGeneric) getStack() []byte { return e.stack }
func (e NewUnresolvedGeneric) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewCircularModuleReference struct {
	Site
	errorSeverity
	// Cycle starts and ends with the same module
	Cycle []string
	stack []byte
}

func (e NewCircularModuleReference) Error() string {
	return fmt.Sprintf("circular module reference: %s", strings.Join(e.Cycle, " -> "))
}
func (e NewCircularModuleReference) Code() ErrCode    { return CircularModuleReference }
func (e NewCircularModuleReference) getStack() []byte { return e.stack }
func (e NewCircularModuleReference) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewNonExhaustiveMatch struct {
	Site
	errorSeverity
	stack []byte
}

func (e NewNonExhaustiveMatch) Error() string    { return "non-exhaustive match expression" }
func (e NewNonExhaustiveMatch) Code() ErrCode    { return NonExhaustiveMatch }
func (e NewNonExhaustiveMatch) getStack() []byte { return e.stack }
func (e NewNonExhaustiveMatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewUnreachablePattern struct {
	Site
	warningSeverity
	stack []byte
}

func (e NewUnreachablePattern) Error() string    { return "unreachable pattern" }
func (e NewUnreachablePattern) Code() ErrCode    { return UnreachablePattern }
func (e NewUnreachablePattern) getStack() []byte { return e.stack }
func (e NewUnreachablePattern) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewArityMismatch struct {
	Site
	errorSeverity
	// What is counted, e.g. "arguments" or "type arguments"
	What     string
	Expected int
	Got      int
	stack    []byte
}

func (e NewArityMismatch) Error() string {
	return fmt.Sprintf("expected %d %s, got %d", e.Expected, e.What, e.Got)
}
func (e NewArityMismatch) Code() ErrCode    { return ArityMismatch }
func (e NewArityMismatch) getStack() []byte { return e.stack }
func (e NewArityMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewOverlappingImpl struct {
	Site
	errorSeverity
	Trait    string
	TypeName string
	stack    []byte
}

func (e NewOverlappingImpl) Error() string {
	return fmt.Sprintf("overlapping implementations of `%s` for `%s`", e.Trait, e.TypeName)
}
func (e NewOverlappingImpl) Code() ErrCode    { return OverlappingImpl }
func (e NewOverlappingImpl) getStack() []byte { return e.stack }
func (e NewOverlappingImpl) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewNotCallable struct {
	Site
	errorSeverity
	Type  types.VirtualType
	stack []byte
}

func (e NewNotCallable) Error() string {
	return fmt.Sprintf("type `%v` is not callable", e.Type)
}
func (e NewNotCallable) Code() ErrCode    { return NotCallable }
func (e NewNotCallable) getStack() []byte { return e.stack }
func (e NewNotCallable) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewRedeclaration struct {
	Site
	errorSeverity
	Name  string
	stack []byte
}

func (e NewRedeclaration) Error() string {
	return fmt.Sprintf("`%s` is already declared in this scope", e.Name)
}
func (e NewRedeclaration) Code() ErrCode    { return Redeclaration }
func (e NewRedeclaration) getStack() []byte { return e.stack }
func (e NewRedeclaration) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewNotATrait struct {
	Site
	errorSeverity
	Name  string
	stack []byte
}

func (e NewNotATrait) Error() string {
	return fmt.Sprintf("`%s` is not a trait", e.Name)
}
func (e NewNotATrait) Code() ErrCode    { return NotATrait }
func (e NewNotATrait) getStack() []byte { return e.stack }
func (e NewNotATrait) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

// NewMissingReturn is reported when a function with a non-Unit return type
// can finish without producing a value
type NewMissingReturn struct {
	Site
	errorSeverity
	Function string
	Expected types.VirtualType
	stack    []byte
}

func (e NewMissingReturn) Error() string {
	return fmt.Sprintf("function `%s` must return a value of type `%v`", e.Function, e.Expected)
}
func (e NewMissingReturn) Code() ErrCode    { return MissingReturn }
func (e NewMissingReturn) getStack() []byte { return e.stack }
func (e NewMissingReturn) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

// NewMissingMethod is reported when an impl leaves an abstract trait
// method undefined
type NewMissingMethod struct {
	Site
	errorSeverity
	Method   string
	Trait    string
	TypeName string
	stack    []byte
}

func (e NewMissingMethod) Error() string {
	return fmt.Sprintf("impl of `%s` for `%s` is missing method `%s`", e.Trait, e.TypeName, e.Method)
}
func (e NewMissingMethod) Code() ErrCode    { return MissingMethod }
func (e NewMissingMethod) getStack() []byte { return e.stack }
func (e NewMissingMethod) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}
