package semantic

import "github.com/tarn-lang/tarn/frontend/types"

type scopeKey struct {
	kind DefKind
	name string
}

// Scope maps names to definitions, keyed by kind so that a type and a value
// may share a name
type Scope struct {
	defs map[scopeKey]Definition
	// instance is set on the scope of a trait or impl body
	instance *SelfDef
	// fn is set on the scope of a function or closure body
	fn *fnScope
}

type fnScope struct {
	name string
	// returnType is nil while an un-annotated closure body is being checked
	returnType types.VirtualType
	returns    []types.VirtualType
}

func newScope() *Scope {
	return &Scope{defs: make(map[scopeKey]Definition)}
}

// define binds name, shadowing any previous binding of the same kind in
// this scope. It reports whether a binding was replaced.
func (s *Scope) define(kind DefKind, name string, def Definition) (replaced bool) {
	key := scopeKey{kind, name}
	_, replaced = s.defs[key]
	s.defs[key] = def
	return replaced
}

func (s *Scope) lookup(kind DefKind, name string) (Definition, bool) {
	def, ok := s.defs[scopeKey{kind, name}]
	return def, ok
}

// lookupAny tries each kind of filter in order
func (s *Scope) lookupAny(filter []DefKind, name string) (Definition, bool) {
	for _, k := range filter {
		if def, ok := s.lookup(k, name); ok {
			return def, true
		}
	}
	return nil, false
}

// instanceScope returns the innermost trait or impl body being checked
func (ctx *Context) instanceScope() (*SelfDef, bool) {
	scopes := ctx.currentFrame().scopes
	for i := len(scopes) - 1; i >= 0; i-- {
		if scopes[i].instance != nil {
			return scopes[i].instance, true
		}
	}
	return nil, false
}

// fnScope returns the innermost function or closure body being checked
func (ctx *Context) fnScope() (*fnScope, bool) {
	scopes := ctx.currentFrame().scopes
	for i := len(scopes) - 1; i >= 0; i-- {
		if scopes[i].fn != nil {
			return scopes[i].fn, true
		}
	}
	return nil, false
}

func containsKind(filter []DefKind, kind DefKind) bool {
	for _, k := range filter {
		if k == kind {
			return true
		}
	}
	return false
}
