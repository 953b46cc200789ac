package semantic

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/types"
)

// InternalFailure is a broken compiler assumption. It is raised with panic
// and recovered only by Context.Check, so that it never mixes with the
// diagnostics about the checked program.
type InternalFailure struct {
	Message string
	// At may be nil
	At    ast.Node
	stack []byte
}

func (f *InternalFailure) Error() string {
	lines := strings.Split(string(f.stack), "\n")
	if len(lines) > 8 {
		return fmt.Sprintf("internal compiler failure: %s ( %s )", f.Message, strings.TrimSpace(lines[8]))
	}
	return "internal compiler failure: " + f.Message
}

func fail(at ast.Node, format string, args ...any) {
	panic(&InternalFailure{Message: fmt.Sprintf(format, args...), At: at, stack: debug.Stack()})
}

// asFailure turns the panic values raised on broken assumptions, here or in
// package types, into an InternalFailure
func asFailure(r any) (*InternalFailure, bool) {
	switch r := r.(type) {
	case *InternalFailure:
		return r, true
	case *types.InvariantError:
		return &InternalFailure{Message: r.Error(), stack: debug.Stack()}, true
	default:
		return nil, false
	}
}

// Unreachable aborts the compilation: a case that cannot happen happened
func Unreachable(what any) {
	fail(nil, "unreachable: %v", what)
}

// Assert aborts the compilation when cond is false
func Assert(cond bool, format string, args ...any) {
	if !cond {
		fail(nil, "assertion failed: "+format, args...)
	}
}
