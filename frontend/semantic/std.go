package semantic

import (
	"github.com/tarn-lang/tarn/frontend/ast"
	"github.com/tarn-lang/tarn/frontend/vid"
)

// StdPackageName is the package every program can use
const StdPackageName = "std"

var defaultPrelude = []string{
	"std::int::Int",
	"std::float::Float",
	"std::string::String",
	"std::char::Char",
	"std::bool::Bool",
	"std::unit::Unit",
	"std::never::Never",
	"std::list::List",
	"std::option::Option",
	"std::fmt::Display",
	"std::op::Add",
	"std::op::Sub",
	"std::op::Mul",
	"std::op::Div",
	"std::op::Rem",
	"std::op::Eq",
	"std::op::Ord",
	"std::op::Neg",
	"std::op::Not",
	"std::op::And",
	"std::op::Or",
	"std::io::print",
	"std::io::println",
}

// DefaultPrelude lists the Vids imported by every module
func DefaultPrelude() []vid.Vid {
	prelude := make([]vid.Vid, len(defaultPrelude))
	for i, p := range defaultPrelude {
		prelude[i] = vid.Parse(p)
	}
	return prelude
}

// extern declares a method implemented outside the checked program
func extern(name string, params []*ast.Param, ret ast.TypeExpr) *ast.FnDef {
	return ast.AbstractFn(name, nil, params, ret)
}

func selfT() *ast.NamedType { return ast.T("Self") }

func binaryOp(trait, method string) *ast.TraitDef {
	return ast.Pub(ast.Trait(trait, nil, ast.AbstractFn(method, nil, ast.Params(ast.SelfP(), ast.P("other", selfT())), selfT())))
}

func unaryOp(trait, method string) *ast.TraitDef {
	return ast.Pub(ast.Trait(trait, nil, ast.AbstractFn(method, nil, ast.Params(ast.SelfP()), selfT())))
}

// opImpls implements the named std::op traits for typ with extern methods
func opImpls(typ string, traits ...string) []ast.Statement {
	boolType := ast.T("std::bool::Bool")
	var impls []ast.Statement
	for _, trait := range traits {
		var methods []*ast.FnDef
		switch trait {
		case "Add", "Sub", "Mul", "Div", "Rem", "And", "Or":
			methods = append(methods, extern(opMethod[trait], ast.Params(ast.SelfP(), ast.P("other", selfT())), selfT()))
		case "Neg", "Not":
			methods = append(methods, extern(opMethod[trait], ast.Params(ast.SelfP()), selfT()))
		case "Eq":
			methods = append(methods, extern("eq", ast.Params(ast.SelfP(), ast.P("other", selfT())), boolType))
		case "Ord":
			for _, m := range []string{"lt", "gt", "le", "ge"} {
				methods = append(methods, extern(m, ast.Params(ast.SelfP(), ast.P("other", selfT())), boolType))
			}
		default:
			Unreachable(trait)
		}
		impls = append(impls, ast.Impl(nil, ast.T("std::op::"+trait), ast.T(typ), methods...))
	}
	impls = append(impls, ast.Impl(nil, ast.T("std::fmt::Display"), ast.T(typ), extern("show", ast.Params(ast.SelfP()), ast.T("std::string::String"))))
	return impls
}

var opMethod = map[string]string{
	"Add": "add",
	"Sub": "sub",
	"Mul": "mul",
	"Div": "div",
	"Rem": "rem",
	"Neg": "neg",
	"Not": "not",
	"And": "and",
	"Or":  "or",
}

func primitive(name string, traits ...string) *ast.Module {
	return ast.Mod(nil, append([]ast.Statement{ast.Pub(ast.TypeD(name, nil))}, opImpls(name, traits...)...)...)
}

// StdModules builds the std package. Each call returns fresh nodes, since
// checking fills in their type slots.
func StdModules() map[string]*ast.Module {
	listT := ast.T("List", ast.T("T"))
	optionT := ast.T("std::option::Option", ast.T("T"))
	return map[string]*ast.Module{
		"std::int":    primitive("Int", "Add", "Sub", "Mul", "Div", "Rem", "Neg", "Eq", "Ord"),
		"std::float":  primitive("Float", "Add", "Sub", "Mul", "Div", "Rem", "Neg", "Eq", "Ord"),
		"std::string": primitive("String", "Add", "Eq", "Ord"),
		"std::char":   primitive("Char", "Eq", "Ord"),
		"std::bool": ast.Mod(nil, append([]ast.Statement{
			ast.Pub(ast.TypeD("Bool", nil, ast.V("True"), ast.V("False"))),
		}, opImpls("Bool", "Not", "Eq", "And", "Or")...)...),
		"std::unit":  ast.Mod(nil, ast.Pub(ast.TypeD("Unit", nil))),
		"std::never": ast.Mod(nil, ast.Pub(ast.TypeD("Never", nil))),
		"std::list": ast.Mod(nil,
			ast.Pub(ast.TypeD("List", ast.Generics(ast.Gen("T")))),
			ast.Impl(ast.Generics(ast.Gen("T")), nil, listT,
				extern("len", ast.Params(ast.SelfP()), ast.T("std::int::Int")),
				extern("push", ast.Params(ast.SelfP(), ast.P("item", ast.T("T"))), listT),
				extern("get", ast.Params(ast.SelfP(), ast.P("index", ast.T("std::int::Int"))), optionT),
				ast.AbstractFn("map", ast.Generics(ast.Gen("U")), ast.Params(ast.SelfP(), ast.P("f", ast.FnT(ast.Types(ast.T("T")), ast.T("U")))), ast.T("List", ast.T("U"))),
			),
			ast.Impl(ast.Generics(ast.Gen("T", ast.T("std::fmt::Display"))), ast.T("std::fmt::Display"), listT,
				extern("show", ast.Params(ast.SelfP()), ast.T("std::string::String")),
			),
		),
		"std::option": ast.Mod(nil,
			ast.Pub(ast.TypeD("Option", ast.Generics(ast.Gen("T")),
				ast.V("Some", ast.PubF("value", ast.T("T"))),
				ast.V("None"),
			)),
			ast.Impl(ast.Generics(ast.Gen("T")), nil, ast.T("Option", ast.T("T")),
				ast.Fn("unwrap_or", nil, ast.Params(ast.SelfP(), ast.P("default", ast.T("T"))), ast.T("T"),
					ast.Ex(ast.MatchE(ast.Id("self"),
						ast.Case(ast.PCon("Option::Some", ast.PF("value", nil)), ast.Ex(ast.Id("value"))),
						ast.Case(ast.PCon("Option::None"), ast.Ex(ast.Id("default"))),
					)),
				),
				ast.Fn("is_some", nil, ast.Params(ast.SelfP()), ast.T("std::bool::Bool"),
					ast.Ex(ast.MatchE(ast.Id("self"),
						ast.Case(ast.PCon("Option::Some"), ast.Ex(ast.BoolL(true))),
						ast.Case(ast.PHole(), ast.Ex(ast.BoolL(false))),
					)),
				),
			),
		),
		"std::op": ast.Mod(nil,
			binaryOp("Add", "add"),
			binaryOp("Sub", "sub"),
			binaryOp("Mul", "mul"),
			binaryOp("Div", "div"),
			binaryOp("Rem", "rem"),
			binaryOp("And", "and"),
			binaryOp("Or", "or"),
			unaryOp("Neg", "neg"),
			unaryOp("Not", "not"),
			ast.Pub(ast.Trait("Eq", nil,
				ast.AbstractFn("eq", nil, ast.Params(ast.SelfP(), ast.P("other", selfT())), ast.T("std::bool::Bool")),
				ast.Fn("ne", nil, ast.Params(ast.SelfP(), ast.P("other", selfT())), ast.T("std::bool::Bool"),
					ast.Ex(ast.Un("!", ast.MCall(ast.Id("self"), "eq", ast.Id("other")))),
				),
			)),
			ast.Pub(ast.Trait("Ord", nil,
				ast.AbstractFn("lt", nil, ast.Params(ast.SelfP(), ast.P("other", selfT())), ast.T("std::bool::Bool")),
				ast.AbstractFn("gt", nil, ast.Params(ast.SelfP(), ast.P("other", selfT())), ast.T("std::bool::Bool")),
				ast.AbstractFn("le", nil, ast.Params(ast.SelfP(), ast.P("other", selfT())), ast.T("std::bool::Bool")),
				ast.AbstractFn("ge", nil, ast.Params(ast.SelfP(), ast.P("other", selfT())), ast.T("std::bool::Bool")),
			)),
		),
		"std::fmt": ast.Mod(nil,
			ast.Pub(ast.Trait("Display", nil, ast.AbstractFn("show", nil, ast.Params(ast.SelfP()), ast.T("std::string::String")))),
		),
		"std::io": ast.Mod(nil,
			ast.Pub(ast.AbstractFn("print", ast.Generics(ast.Gen("T", ast.T("std::fmt::Display"))), ast.Params(ast.P("value", ast.T("T"))), nil)),
			ast.Pub(ast.AbstractFn("println", ast.Generics(ast.Gen("T", ast.T("std::fmt::Display"))), ast.Params(ast.P("value", ast.T("T"))), nil)),
		),
	}
}
