package ast

// Inspect traverses the tree rooted at node in depth-first order, calling f
// for each node. If f returns false, the children of that node are skipped.
// Type expressions are not visited.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *Module:
		for _, s := range n.Statements {
			Inspect(s, f)
		}
	case *VarDef:
		inspectExpr(n.Value, f)
	case *FnDef:
		for _, p := range n.Params {
			Inspect(p, f)
		}
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *TraitDef:
		for _, m := range n.Body {
			Inspect(m, f)
		}
	case *ImplDef:
		for _, m := range n.Body {
			Inspect(m, f)
		}
	case *TypeDef:
		for _, v := range n.Variants {
			for _, field := range v.Fields {
				Inspect(field, f)
			}
		}
	case *ReturnStmt:
		inspectExpr(n.Value, f)
	case *ExprStmt:
		inspectExpr(n.X, f)
	case *Call:
		inspectExpr(n.Callee, f)
		for _, a := range n.Args {
			inspectExpr(a, f)
		}
	case *MethodCall:
		inspectExpr(n.Receiver, f)
		for _, a := range n.Args {
			inspectExpr(a, f)
		}
	case *FieldAccess:
		inspectExpr(n.Receiver, f)
	case *Binary:
		inspectExpr(n.Left, f)
		inspectExpr(n.Right, f)
	case *Unary:
		inspectExpr(n.Operand, f)
	case *Closure:
		for _, p := range n.Params {
			Inspect(p, f)
		}
		Inspect(n.Body, f)
	case *If:
		inspectExpr(n.Cond, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *Match:
		inspectExpr(n.Scrutinee, f)
		for _, c := range n.Clauses {
			Inspect(c, f)
		}
	case *MatchClause:
		for _, p := range n.Patterns {
			Inspect(p, f)
		}
		inspectExpr(n.Guard, f)
		Inspect(n.Body, f)
	case *ListLit:
		for _, e := range n.Elements {
			inspectExpr(e, f)
		}
	case *Block:
		for _, s := range n.Statements {
			Inspect(s, f)
		}
	case *ConPattern:
		for _, fp := range n.Fields {
			if fp.Pattern != nil {
				Inspect(fp.Pattern, f)
			}
		}
	case *LitPattern:
		Inspect(n.Lit, f)
	}
}

// inspectExpr guards against typed nil interfaces for optional children
func inspectExpr(e Expr, f func(Node) bool) {
	if e == nil {
		return
	}
	Inspect(e, f)
}
