package ast

import (
	"fmt"
	"strings"
)

// ExprString renders expr in source-like syntax, for logs and diagnostics
func ExprString(expr Expr) string {
	ctx := newShowContext()
	ctx.showExpr(expr)
	return ctx.String()
}

// TypeExprString renders a written type
func TypeExprString(t TypeExpr) string {
	ctx := newShowContext()
	ctx.showType(t)
	return ctx.String()
}

// PatternString renders a match pattern
func PatternString(p Pattern) string {
	ctx := newShowContext()
	ctx.showPattern(p)
	return ctx.String()
}

type showContext struct {
	*strings.Builder
}

func newShowContext() *showContext {
	return &showContext{Builder: &strings.Builder{}}
}

func (ctx *showContext) list(n int, each func(i int)) {
	for i := 0; i < n; i++ {
		if i > 0 {
			ctx.WriteString(", ")
		}
		each(i)
	}
}

func (ctx *showContext) typeArgs(args []TypeExpr) {
	if len(args) == 0 {
		return
	}
	ctx.WriteString("<")
	ctx.list(len(args), func(i int) { ctx.showType(args[i]) })
	ctx.WriteString(">")
}

func (ctx *showContext) showExpr(expr Expr) {
	if expr == nil {
		ctx.WriteString("nil")
		return
	}
	switch e := expr.(type) {
	case *Ident:
		ctx.WriteString(strings.Join(e.Names, "::"))
		ctx.typeArgs(e.TypeArgs)
	case *Literal:
		switch e.Kind {
		case LitString:
			ctx.WriteString(fmt.Sprintf("%q", e.Value))
		case LitChar:
			ctx.WriteString("'" + e.Value + "'")
		default:
			ctx.WriteString(e.Value)
		}
	case *Call:
		ctx.showExpr(e.Callee)
		ctx.WriteString("(")
		ctx.list(len(e.Args), func(i int) { ctx.showExpr(e.Args[i]) })
		ctx.WriteString(")")
	case *MethodCall:
		ctx.showExpr(e.Receiver)
		ctx.WriteString("." + e.Method)
		ctx.typeArgs(e.TypeArgs)
		ctx.WriteString("(")
		ctx.list(len(e.Args), func(i int) { ctx.showExpr(e.Args[i]) })
		ctx.WriteString(")")
	case *FieldAccess:
		ctx.showExpr(e.Receiver)
		ctx.WriteString("." + e.Field)
	case *Binary:
		ctx.WriteString("(")
		ctx.showExpr(e.Left)
		ctx.WriteString(" " + e.Op + " ")
		ctx.showExpr(e.Right)
		ctx.WriteString(")")
	case *Unary:
		ctx.WriteString(e.Op)
		ctx.showExpr(e.Operand)
	case *Closure:
		ctx.WriteString("|")
		ctx.list(len(e.Params), func(i int) { ctx.showParam(e.Params[i]) })
		ctx.WriteString("| { ... }")
	case *If:
		ctx.WriteString("if ")
		ctx.showExpr(e.Cond)
		ctx.WriteString(" { ... }")
		if e.Else != nil {
			ctx.WriteString(" else { ... }")
		}
	case *Match:
		ctx.WriteString("match ")
		ctx.showExpr(e.Scrutinee)
		ctx.WriteString(" { ... }")
	case *ListLit:
		ctx.WriteString("[")
		ctx.list(len(e.Elements), func(i int) { ctx.showExpr(e.Elements[i]) })
		ctx.WriteString("]")
	case *Block:
		ctx.WriteString("{ ... }")
	default:
		ctx.WriteString(fmt.Sprintf("<%T>", e))
	}
}

func (ctx *showContext) showParam(p *Param) {
	ctx.WriteString(p.Name)
	if p.ParamType != nil {
		ctx.WriteString(": ")
		ctx.showType(p.ParamType)
	}
}

func (ctx *showContext) showType(t TypeExpr) {
	switch t := t.(type) {
	case nil:
		ctx.WriteString("nil")
	case *NamedType:
		ctx.WriteString(strings.Join(t.Names, "::"))
		ctx.typeArgs(t.TypeArgs)
	case *FnTypeExpr:
		ctx.WriteString("(")
		ctx.list(len(t.Params), func(i int) { ctx.showType(t.Params[i]) })
		ctx.WriteString(") -> ")
		ctx.showType(t.Return)
	case *HoleType:
		ctx.WriteString("_")
	default:
		ctx.WriteString(fmt.Sprintf("<%T>", t))
	}
}

func (ctx *showContext) showPattern(p Pattern) {
	switch p := p.(type) {
	case *BindPattern:
		ctx.WriteString(p.Name)
	case *HolePattern:
		ctx.WriteString("_")
	case *LitPattern:
		ctx.showExpr(p.Lit)
	case *ConPattern:
		ctx.showExpr(p.Identifier)
		if len(p.Fields) == 0 {
			return
		}
		ctx.WriteString("(")
		ctx.list(len(p.Fields), func(i int) {
			fp := p.Fields[i]
			ctx.WriteString(fp.Name)
			if fp.Pattern != nil {
				ctx.WriteString(": ")
				ctx.showPattern(fp.Pattern)
			}
		})
		ctx.WriteString(")")
	default:
		ctx.WriteString(fmt.Sprintf("<%T>", p))
	}
}
