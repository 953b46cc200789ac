package types

import (
	"iter"
	"sort"

	"github.com/benbjohnson/immutable"
)

// GenericMap binds generic names to types. It is persistent: With and
// Merge return new maps and never modify the receiver.
type GenericMap struct {
	m *immutable.Map[string, VirtualType]
}

func EmptyGenericMap() GenericMap {
	return GenericMap{m: immutable.NewMap[string, VirtualType](nil)}
}

// GenericMapOf builds a GenericMap from a plain map
func GenericMapOf(bindings map[string]VirtualType) GenericMap {
	b := immutable.NewMapBuilder[string, VirtualType](nil)
	for k, v := range bindings {
		b.Set(k, v)
	}
	return GenericMap{m: b.Map()}
}

func (g GenericMap) inner() *immutable.Map[string, VirtualType] {
	if g.m == nil {
		return immutable.NewMap[string, VirtualType](nil)
	}
	return g.m
}

func (g GenericMap) Get(name string) (VirtualType, bool) {
	return g.inner().Get(name)
}

func (g GenericMap) Len() int {
	if g.m == nil {
		return 0
	}
	return g.m.Len()
}

// With returns a copy of g where name is bound to t, overwriting any
// previous binding
func (g GenericMap) With(name string, t VirtualType) GenericMap {
	return GenericMap{m: g.inner().Set(name, t)}
}

// WithDefault binds name only if g has no binding for it yet
func (g GenericMap) WithDefault(name string, t VirtualType) GenericMap {
	if _, ok := g.Get(name); ok {
		return g
	}
	return g.With(name, t)
}

// All yields bindings in name order
func (g GenericMap) All() iter.Seq2[string, VirtualType] {
	return func(yield func(string, VirtualType) bool) {
		keys := make([]string, 0, g.Len())
		values := make(map[string]VirtualType, g.Len())
		it := g.inner().Iterator()
		for !it.Done() {
			k, v, _ := it.Next()
			keys = append(keys, k)
			values[k] = v
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !yield(k, values[k]) {
				return
			}
		}
	}
}

func (g GenericMap) String() string {
	s := "{"
	first := true
	for k, v := range g.All() {
		if !first {
			s += ", "
		}
		first = false
		s += k + ": " + v.String()
	}
	return s + "}"
}

// Merge combines maps built in parallel. Maps later in higher take priority
// and overwrite bindings already set for the same key.
func Merge(base GenericMap, higher ...GenericMap) GenericMap {
	merged := base
	for _, m := range higher {
		for k, v := range m.All() {
			merged = merged.With(k, v)
		}
	}
	return merged
}

// Lookup consults maps in priority order (highest first) and returns the
// first binding found
func Lookup(maps []GenericMap, name string) (VirtualType, bool) {
	for _, m := range maps {
		if t, ok := m.Get(name); ok {
			return t, true
		}
	}
	return nil, false
}
