package types

import "github.com/tarn-lang/tarn/frontend/vid"

// Identifiers of the std types the checker refers to directly
var (
	IntVid    = vid.Parse("std::int::Int")
	FloatVid  = vid.Parse("std::float::Float")
	StringVid = vid.Parse("std::string::String")
	CharVid   = vid.Parse("std::char::Char")
	BoolVid   = vid.Parse("std::bool::Bool")
	UnitVid   = vid.Parse("std::unit::Unit")
	NeverVid  = vid.Parse("std::never::Never")
	ListVid   = vid.Parse("std::list::List")
)

var (
	Int    = &VidType{Identifier: IntVid}
	Float  = &VidType{Identifier: FloatVid}
	String = &VidType{Identifier: StringVid}
	Char   = &VidType{Identifier: CharVid}
	Bool   = &VidType{Identifier: BoolVid}
	Unit   = &VidType{Identifier: UnitVid}
	Never  = &VidType{Identifier: NeverVid}
)

// List is std::list::List<elem>
func List(elem VirtualType) *VidType {
	return &VidType{Identifier: ListVid, TypeArgs: []VirtualType{elem}}
}

// IsNever reports whether t is the bottom type
func IsNever(t VirtualType) bool {
	v, ok := t.(*VidType)
	return ok && v.Identifier.Equal(NeverVid)
}
