// Package astio reads modules produced by the external parser. Each file is
// a YAML document holding one module; every node is a mapping with a kind
// key. Source positions come from the YAML line and column of each node.
package astio

import (
	"go/token"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tarn-lang/tarn/frontend/ast"
)

// Module is a decoded module and the full path it declares
type Module struct {
	Path string
	AST  *ast.Module
}

// Decode reads a single module document. The file is registered in fSet so
// that diagnostics can be printed with file:line:column positions.
func Decode(fSet *token.FileSet, filename string, data []byte) (*Module, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "could not parse %s", filename)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, errors.Errorf("%s: expected a single YAML document", filename)
	}
	file := fSet.AddFile(filename, -1, len(data)+1)
	file.SetLinesForContent(data)
	d := &decoder{file: file, filename: filename}

	var m *Module
	err := d.catch(func() {
		m = d.module(doc.Content[0])
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// decodeError aborts decoding of a document; it is recovered in catch
type decodeError struct{ err error }

type decoder struct {
	file     *token.File
	filename string
}

func (d *decoder) catch(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			de, ok := r.(decodeError)
			if !ok {
				panic(r)
			}
			err = de.err
		}
	}()
	f()
	return nil
}

func (d *decoder) failf(n *yaml.Node, format string, args ...any) {
	err := errors.Errorf(format, args...)
	panic(decodeError{errors.Wrapf(err, "%s:%d:%d", d.filename, n.Line, n.Column)})
}

func (d *decoder) pos(n *yaml.Node) token.Pos {
	if n.Line < 1 || n.Line > d.file.LineCount() {
		return token.NoPos
	}
	return d.file.LineStart(n.Line) + token.Pos(n.Column-1)
}

func (d *decoder) rangeOf(n *yaml.Node) ast.Range {
	p := d.pos(n)
	return ast.Range{PosStart: p, PosEnd: p}
}

// fields indexes the keys of a mapping node
type fields struct {
	node   *yaml.Node
	values map[string]*yaml.Node
}

func (d *decoder) mapping(n *yaml.Node) fields {
	if n.Kind != yaml.MappingNode {
		d.failf(n, "expected a mapping")
	}
	f := fields{node: n, values: make(map[string]*yaml.Node, len(n.Content)/2)}
	for i := 0; i+1 < len(n.Content); i += 2 {
		f.values[n.Content[i].Value] = n.Content[i+1]
	}
	return f
}

func (f fields) get(key string) (*yaml.Node, bool) {
	n, ok := f.values[key]
	if !ok || n.Tag == "!!null" {
		return nil, false
	}
	return n, true
}

func (d *decoder) required(f fields, key string) *yaml.Node {
	n, ok := f.get(key)
	if !ok {
		d.failf(f.node, "missing key %q", key)
	}
	return n
}

func (d *decoder) str(f fields, key string) string {
	n := d.required(f, key)
	if n.Kind != yaml.ScalarNode {
		d.failf(n, "expected %q to be a scalar", key)
	}
	return n.Value
}

func (d *decoder) optStr(f fields, key string) string {
	n, ok := f.get(key)
	if !ok {
		return ""
	}
	if n.Kind != yaml.ScalarNode {
		d.failf(n, "expected %q to be a scalar", key)
	}
	return n.Value
}

func (d *decoder) flag(f fields, key string) bool {
	n, ok := f.get(key)
	if !ok {
		return false
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		d.failf(n, "expected %q to be a bool", key)
	}
	return b
}

func (d *decoder) seq(f fields, key string) []*yaml.Node {
	n, ok := f.get(key)
	if !ok {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		d.failf(n, "expected %q to be a list", key)
	}
	return n.Content
}

func (d *decoder) kind(f fields) string {
	return d.str(f, "kind")
}

func splitPath(path string) []string {
	return strings.Split(path, "::")
}

func (d *decoder) module(n *yaml.Node) *Module {
	f := d.mapping(n)
	m := &ast.Module{Range: d.rangeOf(n)}
	for _, u := range d.seq(f, "uses") {
		m.Uses = append(m.Uses, d.use(u))
	}
	for _, s := range d.seq(f, "statements") {
		m.Statements = append(m.Statements, d.statement(s))
	}
	return &Module{Path: d.str(f, "module"), AST: m}
}

func (d *decoder) use(n *yaml.Node) *ast.UseExpr {
	if n.Kind == yaml.ScalarNode {
		path, wildcard := strings.CutSuffix(n.Value, "::*")
		return &ast.UseExpr{Range: d.rangeOf(n), Path: splitPath(path), Wildcard: wildcard}
	}
	f := d.mapping(n)
	u := &ast.UseExpr{
		Range:    d.rangeOf(n),
		Pub:      d.flag(f, "pub"),
		Path:     splitPath(d.str(f, "path")),
		Wildcard: d.flag(f, "wildcard"),
	}
	for _, nested := range d.seq(f, "nested") {
		u.Nested = append(u.Nested, d.use(nested))
	}
	return u
}

func (d *decoder) statement(n *yaml.Node) ast.Statement {
	f := d.mapping(n)
	r := d.rangeOf(n)
	switch d.kind(f) {
	case "var":
		return &ast.VarDef{
			Range:   r,
			Pub:     d.flag(f, "pub"),
			Name:    d.str(f, "name"),
			VarType: d.optType(f, "type"),
			Value:   d.expr(d.required(f, "value")),
		}
	case "fn":
		return d.fn(n)
	case "trait":
		return &ast.TraitDef{
			Range:    r,
			Pub:      d.flag(f, "pub"),
			Name:     d.str(f, "name"),
			Generics: d.generics(f),
			Body:     d.methods(f),
		}
	case "impl":
		return &ast.ImplDef{
			Range:    r,
			Pub:      d.flag(f, "pub"),
			Generics: d.generics(f),
			Trait:    d.optType(f, "trait"),
			ForType:  d.typeExpr(d.required(f, "for")),
			Body:     d.methods(f),
		}
	case "type":
		td := &ast.TypeDef{
			Range:    r,
			Pub:      d.flag(f, "pub"),
			Name:     d.str(f, "name"),
			Generics: d.generics(f),
		}
		for _, v := range d.seq(f, "variants") {
			td.Variants = append(td.Variants, d.variant(v))
		}
		return td
	case "return":
		ret := &ast.ReturnStmt{Range: r}
		if v, ok := f.get("value"); ok {
			ret.Value = d.expr(v)
		}
		return ret
	default:
		return &ast.ExprStmt{Range: r, X: d.expr(n)}
	}
}

func (d *decoder) fn(n *yaml.Node) *ast.FnDef {
	f := d.mapping(n)
	if k := d.kind(f); k != "fn" {
		d.failf(n, "expected a fn, got %q", k)
	}
	fn := &ast.FnDef{
		Range:      d.rangeOf(n),
		Pub:        d.flag(f, "pub"),
		Name:       d.str(f, "name"),
		Generics:   d.generics(f),
		Params:     d.params(f),
		ReturnType: d.optType(f, "returns"),
	}
	if body, ok := f.get("body"); ok {
		fn.Body = d.block(body)
	}
	return fn
}

func (d *decoder) methods(f fields) []*ast.FnDef {
	var out []*ast.FnDef
	for _, m := range d.seq(f, "methods") {
		out = append(out, d.fn(m))
	}
	return out
}

func (d *decoder) variant(n *yaml.Node) *ast.Variant {
	f := d.mapping(n)
	v := &ast.Variant{Range: d.rangeOf(n), Name: d.str(f, "name")}
	for _, fieldNode := range d.seq(f, "fields") {
		ff := d.mapping(fieldNode)
		v.Fields = append(v.Fields, &ast.FieldDef{
			Range:     d.rangeOf(fieldNode),
			Pub:       d.flag(ff, "pub"),
			Name:      d.str(ff, "name"),
			FieldType: d.typeExpr(d.required(ff, "type")),
		})
	}
	return v
}

func (d *decoder) generics(f fields) []*ast.GenericDecl {
	var out []*ast.GenericDecl
	for _, g := range d.seq(f, "generics") {
		if g.Kind == yaml.ScalarNode {
			out = append(out, &ast.GenericDecl{Range: d.rangeOf(g), Name: g.Value})
			continue
		}
		gf := d.mapping(g)
		decl := &ast.GenericDecl{Range: d.rangeOf(g), Name: d.str(gf, "name")}
		for _, b := range d.seq(gf, "bounds") {
			decl.Bounds = append(decl.Bounds, d.typeExpr(b))
		}
		out = append(out, decl)
	}
	return out
}

func (d *decoder) params(f fields) []*ast.Param {
	var out []*ast.Param
	for _, p := range d.seq(f, "params") {
		if p.Kind == yaml.ScalarNode {
			out = append(out, &ast.Param{Range: d.rangeOf(p), Name: p.Value})
			continue
		}
		pf := d.mapping(p)
		out = append(out, &ast.Param{
			Range:     d.rangeOf(p),
			Name:      d.str(pf, "name"),
			ParamType: d.optType(pf, "type"),
		})
	}
	return out
}

// block accepts either a list of statements or a block mapping
func (d *decoder) block(n *yaml.Node) *ast.Block {
	b := &ast.Block{Range: d.rangeOf(n)}
	stmts := n.Content
	if n.Kind == yaml.MappingNode {
		f := d.mapping(n)
		if k := d.kind(f); k != "block" {
			d.failf(n, "expected a block, got %q", k)
		}
		stmts = d.seq(f, "statements")
	} else if n.Kind != yaml.SequenceNode {
		d.failf(n, "expected a block")
	}
	for _, s := range stmts {
		b.Statements = append(b.Statements, d.statement(s))
	}
	return b
}

func (d *decoder) optExpr(f fields, key string) ast.Expr {
	n, ok := f.get(key)
	if !ok {
		return nil
	}
	return d.expr(n)
}

func (d *decoder) exprs(f fields, key string) []ast.Expr {
	var out []ast.Expr
	for _, e := range d.seq(f, key) {
		out = append(out, d.expr(e))
	}
	return out
}

func (d *decoder) expr(n *yaml.Node) ast.Expr {
	f := d.mapping(n)
	r := d.rangeOf(n)
	switch k := d.kind(f); k {
	case "ident":
		return &ast.Ident{Range: r, Names: splitPath(d.str(f, "name")), TypeArgs: d.types(f, "args")}
	case "int", "float", "string", "char", "bool":
		return d.literal(n)
	case "call":
		return &ast.Call{Range: r, Callee: d.expr(d.required(f, "callee")), Args: d.exprs(f, "args")}
	case "method":
		return &ast.MethodCall{
			Range:    r,
			Receiver: d.expr(d.required(f, "receiver")),
			Method:   d.str(f, "name"),
			TypeArgs: d.types(f, "type-args"),
			Args:     d.exprs(f, "args"),
		}
	case "field":
		return &ast.FieldAccess{Range: r, Receiver: d.expr(d.required(f, "receiver")), Field: d.str(f, "name")}
	case "binary":
		return &ast.Binary{
			Range: r,
			Op:    d.str(f, "op"),
			Left:  d.expr(d.required(f, "left")),
			Right: d.expr(d.required(f, "right")),
		}
	case "unary":
		return &ast.Unary{Range: r, Op: d.str(f, "op"), Operand: d.expr(d.required(f, "operand"))}
	case "closure":
		return &ast.Closure{
			Range:      r,
			Params:     d.params(f),
			ReturnType: d.optType(f, "returns"),
			Body:       d.block(d.required(f, "body")),
		}
	case "if":
		e := &ast.If{Range: r, Cond: d.expr(d.required(f, "cond")), Then: d.block(d.required(f, "then"))}
		if els, ok := f.get("else"); ok {
			e.Else = d.block(els)
		}
		return e
	case "match":
		m := &ast.Match{Range: r, Scrutinee: d.expr(d.required(f, "scrutinee"))}
		for _, c := range d.seq(f, "clauses") {
			m.Clauses = append(m.Clauses, d.clause(c))
		}
		return m
	case "list":
		return &ast.ListLit{Range: r, Elements: d.exprs(f, "elements")}
	case "block":
		return d.block(n)
	default:
		d.failf(n, "unknown expression kind %q", k)
		return nil
	}
}

func (d *decoder) literal(n *yaml.Node) *ast.Literal {
	f := d.mapping(n)
	lit := &ast.Literal{Range: d.rangeOf(n), Value: d.str(f, "value")}
	switch k := d.kind(f); k {
	case "int":
		lit.Kind = ast.LitInt
	case "float":
		lit.Kind = ast.LitFloat
	case "string":
		lit.Kind = ast.LitString
	case "char":
		lit.Kind = ast.LitChar
	case "bool":
		lit.Kind = ast.LitBool
		if lit.Value != "true" && lit.Value != "false" {
			d.failf(n, "invalid bool literal %q", lit.Value)
		}
	default:
		d.failf(n, "expected a literal, got %q", k)
	}
	return lit
}

func (d *decoder) clause(n *yaml.Node) *ast.MatchClause {
	f := d.mapping(n)
	c := &ast.MatchClause{
		Range: d.rangeOf(n),
		Guard: d.optExpr(f, "guard"),
		Body:  d.block(d.required(f, "body")),
	}
	for _, p := range d.seq(f, "patterns") {
		c.Patterns = append(c.Patterns, d.pattern(p))
	}
	if p, ok := f.get("pattern"); ok {
		c.Patterns = append(c.Patterns, d.pattern(p))
	}
	if len(c.Patterns) == 0 {
		d.failf(n, "match clause without patterns")
	}
	return c
}

func (d *decoder) pattern(n *yaml.Node) ast.Pattern {
	f := d.mapping(n)
	r := d.rangeOf(n)
	switch k := d.kind(f); k {
	case "bind":
		return &ast.BindPattern{Range: r, Name: d.str(f, "name")}
	case "hole":
		return &ast.HolePattern{Range: r}
	case "lit":
		return &ast.LitPattern{Range: r, Lit: d.literal(d.required(f, "value"))}
	case "con":
		name := d.required(f, "name")
		p := &ast.ConPattern{
			Range:      r,
			Identifier: &ast.Ident{Range: d.rangeOf(name), Names: splitPath(name.Value)},
		}
		for _, fieldNode := range d.seq(f, "fields") {
			ff := d.mapping(fieldNode)
			fp := &ast.FieldPattern{Range: d.rangeOf(fieldNode), Name: d.str(ff, "name")}
			if sub, ok := ff.get("pattern"); ok {
				fp.Pattern = d.pattern(sub)
			}
			p.Fields = append(p.Fields, fp)
		}
		return p
	default:
		d.failf(n, "unknown pattern kind %q", k)
		return nil
	}
}

func (d *decoder) optType(f fields, key string) ast.TypeExpr {
	n, ok := f.get(key)
	if !ok {
		return nil
	}
	return d.typeExpr(n)
}

func (d *decoder) types(f fields, key string) []ast.TypeExpr {
	var out []ast.TypeExpr
	for _, t := range d.seq(f, key) {
		out = append(out, d.typeExpr(t))
	}
	return out
}

// typeExpr accepts the shorthand `Int` or `_` for argument-less types
func (d *decoder) typeExpr(n *yaml.Node) ast.TypeExpr {
	r := d.rangeOf(n)
	if n.Kind == yaml.ScalarNode {
		if n.Value == "_" {
			return &ast.HoleType{Range: r}
		}
		return &ast.NamedType{Range: r, Names: splitPath(n.Value)}
	}
	f := d.mapping(n)
	switch k := d.kind(f); k {
	case "type":
		return &ast.NamedType{Range: r, Names: splitPath(d.str(f, "name")), TypeArgs: d.types(f, "args")}
	case "fn-type":
		return &ast.FnTypeExpr{
			Range:    r,
			Generics: d.generics(f),
			Params:   d.types(f, "params"),
			Return:   d.optType(f, "returns"),
		}
	case "hole":
		return &ast.HoleType{Range: r}
	default:
		d.failf(n, "unknown type kind %q", k)
		return nil
	}
}
