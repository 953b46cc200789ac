package types

// ResolveGenericsOverStructure unifies arg against param structurally.
//
// A bare generic param binds directly to arg. Otherwise type arguments are
// walked pairwise by position; an arity mismatch binds nothing for the
// unmatched tail (arity is reported by the caller, not here). Earlier
// bindings win when the same generic occurs twice.
func ResolveGenericsOverStructure(arg, param VirtualType) GenericMap {
	return resolveOverStructure(arg, param, EmptyGenericMap())
}

func resolveOverStructure(arg, param VirtualType, acc GenericMap) GenericMap {
	if arg == nil || param == nil {
		return acc
	}
	switch param := param.(type) {
	case *Generic:
		if IsUnknownOrHole(arg) {
			return acc
		}
		return acc.WithDefault(param.Name, arg)
	case *VidType:
		arg, ok := arg.(*VidType)
		if !ok {
			return acc
		}
		for i := 0; i < len(param.TypeArgs) && i < len(arg.TypeArgs); i++ {
			acc = resolveOverStructure(arg.TypeArgs[i], param.TypeArgs[i], acc)
		}
		return acc
	case *FnType:
		arg, ok := arg.(*FnType)
		if !ok {
			return acc
		}
		for i := 0; i < len(param.ParamTypes) && i < len(arg.ParamTypes); i++ {
			acc = resolveOverStructure(arg.ParamTypes[i], param.ParamTypes[i], acc)
		}
		return resolveOverStructure(ReturnOf(arg), ReturnOf(param), acc)
	case *Unknown, *Hole, *Malleable:
		return acc
	default:
		panic(unhandled(param))
	}
}

// Substitute rewrites every Generic leaf of t with lookup's result. When
// lookup has no binding, missing decides the replacement.
// VidType and FnType are rebuilt structurally; other kinds pass through.
func Substitute(t VirtualType, lookup func(*Generic) (VirtualType, bool), missing func(*Generic) VirtualType) VirtualType {
	switch t := t.(type) {
	case *Generic:
		if bound, ok := lookup(t); ok {
			return bound
		}
		return missing(t)
	case *VidType:
		if len(t.TypeArgs) == 0 {
			return t
		}
		args := make([]VirtualType, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = Substitute(a, lookup, missing)
		}
		return &VidType{Identifier: t.Identifier, TypeArgs: args}
	case *FnType:
		// generics declared by the function itself stay generic
		own := make(map[string]bool, len(t.Generics))
		for _, g := range t.Generics {
			own[g.Name] = true
		}
		inner := func(g *Generic) (VirtualType, bool) {
			if own[g.Name] {
				return g, true
			}
			return lookup(g)
		}
		params := make([]VirtualType, len(t.ParamTypes))
		for i, p := range t.ParamTypes {
			params[i] = Substitute(p, inner, missing)
		}
		return &FnType{
			Generics:   t.Generics,
			ParamTypes: params,
			ReturnType: Substitute(ReturnOf(t), inner, missing),
		}
	case *Unknown, *Hole, *Malleable, nil:
		return t
	default:
		panic(unhandled(t))
	}
}

// SubstituteMap substitutes using maps in priority order, keeping unbound
// generics as they are
func SubstituteMap(t VirtualType, maps ...GenericMap) VirtualType {
	return Substitute(t,
		func(g *Generic) (VirtualType, bool) { return Lookup(maps, g.Name) },
		func(g *Generic) VirtualType { return g },
	)
}

// GenericNames lists the generic names occurring in t, in first-seen order
func GenericNames(t VirtualType) []string {
	var names []string
	seen := map[string]bool{}
	var walk func(VirtualType)
	walk = func(t VirtualType) {
		switch t := t.(type) {
		case *Generic:
			if !seen[t.Name] {
				seen[t.Name] = true
				names = append(names, t.Name)
			}
		case *VidType:
			for _, a := range t.TypeArgs {
				walk(a)
			}
		case *FnType:
			for _, p := range t.ParamTypes {
				walk(p)
			}
			walk(ReturnOf(t))
		}
	}
	walk(t)
	return names
}
