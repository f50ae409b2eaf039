// Package types is the canonical type-ID registry (C1): primitive and
// container base IDs, parameterization encoding, and the compatibility
// and implicit-conversion graph every other component queries.
package types

import "fmt"

// ID is a type identifier. Primitive bases are small fixed constants;
// container/iterator bases reserve an offset range and parameterized
// types (list[int], dict[str]) are encoded as base+element.
type ID int32

const (
	None ID = iota
	Int
	Float
	Bool
	String
	Func
	Method
	Class
	Instance
	Any
	Module
)

// Container/iterator bases reserve wide, non-overlapping ranges so
// base+element never collides with the next base's own range.
const (
	ListBase ID = 1000 + iota*1000
	DictBase
	TupleBase
	IterBase
)

// bases lists every base ID in ascending order, used by BaseOf to find
// which range a parameterized ID falls into.
var bases = []ID{None, Int, Float, Bool, String, Func, Method, Class, Instance, Any, Module, ListBase, DictBase, TupleBase, IterBase}

// rangedBases are the bases that admit base+element parameterization;
// everything below ListBase is an exact, non-parameterized ID.
var rangedBases = []ID{ListBase, DictBase, TupleBase, IterBase}

// MakeList returns the type ID for list[elem].
func MakeList(elem ID) ID { return ListBase + elem }

// MakeDict returns the type ID for dict[value] (key type is tracked
// separately on the Dict object, not in the type ID).
func MakeDict(value ID) ID { return DictBase + value }

// MakeTuple returns the type ID for tuple[elem].
func MakeTuple(elem ID) ID { return TupleBase + elem }

// MakeIter returns the type ID for an iterator over elem.
func MakeIter(elem ID) ID { return IterBase + elem }

// BaseOf strips container/iterator parameterization, returning the
// base ID. BaseOf(BaseOf(id)) == BaseOf(id) holds by construction: once
// an ID is an exact member of `bases`, it maps to itself.
func BaseOf(id ID) ID {
	for _, b := range bases {
		if id == b {
			return b
		}
	}
	best := ID(-1)
	for _, rb := range rangedBases {
		if id >= rb && (best == -1 || rb > best) {
			best = rb
		}
	}
	if best == -1 {
		return Any
	}
	return best
}

// ElementOf returns the parameterized element ID for a container or
// iterator type, or Any if id is not parameterized (or is exactly a
// bare base with no element encoded, i.e. element offset 0).
func ElementOf(id ID) ID {
	base := BaseOf(id)
	if base == None || base == Int || base == Float || base == Bool || base == String ||
		base == Func || base == Method || base == Class || base == Instance || base == Any || base == Module {
		return Any
	}
	return id - base
}

var names = map[ID]string{
	None: "None", Int: "int", Float: "float", Bool: "bool", String: "str",
	Func: "function", Method: "method", Class: "class", Instance: "instance",
	Any: "Any", Module: "module",
}

// NameOf returns a printable name for diagnostics.
func NameOf(id ID) string {
	base := BaseOf(id)
	switch base {
	case ListBase:
		return fmt.Sprintf("list[%s]", NameOf(ElementOf(id)))
	case DictBase:
		return fmt.Sprintf("dict[%s]", NameOf(ElementOf(id)))
	case TupleBase:
		return fmt.Sprintf("tuple[%s]", NameOf(ElementOf(id)))
	case IterBase:
		return fmt.Sprintf("iterator[%s]", NameOf(ElementOf(id)))
	}
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("<type %d>", id)
}

func isNumeric(id ID) bool { return id == Int || id == Float || id == Bool }

// AreCompatible is reflexive and symmetric: true if identical base,
// either side is Any, both are numeric, or both share a container base.
func AreCompatible(a, b ID) bool {
	if a == b {
		return true
	}
	if a == Any || b == Any {
		return true
	}
	if isNumeric(a) && isNumeric(b) {
		return true
	}
	ba, bb := BaseOf(a), BaseOf(b)
	if ba == bb && (ba == ListBase || ba == DictBase || ba == TupleBase || ba == IterBase) {
		return true
	}
	return false
}

// ConversionEdge is one directed implicit-conversion edge in the fixed
// conversion graph: Bool→Int→Float, Int→Bool, Float→Int (truncating),
// Any↔T, plus built-in-requested string⇄{int,float,bool}.
type ConversionEdge struct {
	From, To  ID
	Truncates bool
}

// Registry holds the conversion graph and is constructed once per
// compilation (module lowering owns the instance and threads it
// through C2/C6).
type Registry struct {
	edges map[ID][]ConversionEdge
}

// NewRegistry builds the fixed conversion graph: Bool/Int/Float/String
// implicit conversions plus the universal Any edges.
func NewRegistry() *Registry {
	r := &Registry{edges: make(map[ID][]ConversionEdge)}
	add := func(from, to ID, truncates bool) {
		r.edges[from] = append(r.edges[from], ConversionEdge{From: from, To: to, Truncates: truncates})
	}
	add(Bool, Int, false)
	add(Int, Float, false)
	add(Int, Bool, false)
	add(Float, Int, true)
	add(String, Int, false)
	add(String, Float, false)
	add(String, Bool, false)
	add(Int, String, false)
	add(Float, String, false)
	add(Bool, String, false)
	for _, b := range bases {
		if b == Any {
			continue
		}
		add(b, Any, false)
		add(Any, b, false)
	}
	return r
}

// Edges returns the outgoing conversion edges from id.
func (r *Registry) Edges(id ID) []ConversionEdge { return r.edges[id] }

// EdgesAll returns the full adjacency map, keyed by source ID.
func (r *Registry) EdgesAll() map[ID][]ConversionEdge { return r.edges }

// HasDirectEdge reports whether an implicit conversion from→to exists
// without traversing the graph; from == to counts as a direct edge.
func (r *Registry) HasDirectEdge(from, to ID) (ConversionEdge, bool) {
	if from == to {
		return ConversionEdge{From: from, To: to}, true
	}
	for _, e := range r.edges[from] {
		if e.To == to {
			return e, true
		}
	}
	return ConversionEdge{}, false
}
