// Package infer is the type inferencer (C6): derives a type for every
// expression using C1 (types) and C2 (ops), caching results by AST
// node identity.
package infer

import (
	"pyaotc/internal/ast"
	"pyaotc/internal/ops"
	"pyaotc/internal/types"
)

// VarLookup is the minimal surface infer needs from the symbol table
// (C5) to avoid importing symtab, which already imports llir/llvm —
// infer stays IR-free so it can be unit tested without pulling in the
// code generator.
type VarLookup interface {
	LookupType(name string) (types.ID, bool)
	FindFunctionReturnType(name string) (types.ID, bool)
}

// Inferencer computes and caches per-node types.
type Inferencer struct {
	types *types.Registry
	ops   *ops.Registry
	vars  VarLookup
	cache map[ast.Expr]types.ID
}

// New constructs an Inferencer over the given registries and variable lookup.
func New(tr *types.Registry, or *ops.Registry, vars VarLookup) *Inferencer {
	return &Inferencer{types: tr, ops: or, vars: vars, cache: make(map[ast.Expr]types.ID)}
}

// TypeOf returns (and caches) the type of expr.
func (inf *Inferencer) TypeOf(expr ast.Expr) types.ID {
	if t, ok := inf.cache[expr]; ok {
		return t
	}
	t := expr.Accept(inf).(types.ID)
	inf.cache[expr] = t
	return t
}

func (inf *Inferencer) VisitNumberLiteral(n *ast.NumberLiteral) interface{} {
	if n.Kind == ast.FloatLiteral {
		return types.Float
	}
	return types.Int
}

func (inf *Inferencer) VisitStringLiteral(*ast.StringLiteral) interface{} { return types.String }
func (inf *Inferencer) VisitBoolLiteral(*ast.BoolLiteral) interface{}     { return types.Bool }
func (inf *Inferencer) VisitNoneLiteral(*ast.NoneLiteral) interface{}     { return types.None }

func (inf *Inferencer) VisitVariable(n *ast.Variable) interface{} {
	if t, ok := inf.vars.LookupType(n.Name); ok {
		return t
	}
	return types.Any
}

func (inf *Inferencer) VisitBinary(n *ast.Binary) interface{} {
	lt := inf.TypeOf(n.Left)
	rt := inf.TypeOf(n.Right)
	path, err := inf.ops.FindOperablePath(ops.Token(n.Op), lt, rt)
	if err != nil {
		return types.Any
	}
	return path.Descr.ResultID
}

func (inf *Inferencer) VisitUnary(n *ast.Unary) interface{} {
	if n.Op == "not" {
		return types.Bool
	}
	ot := inf.TypeOf(n.Operand)
	if d, ok := inf.ops.LookupUnary(ops.Token(n.Op), ot); ok {
		return d.ResultID
	}
	return types.Any
}

func (inf *Inferencer) VisitCall(n *ast.Call) interface{} {
	if v, ok := n.Callee.(*ast.Variable); ok {
		if rt, ok := inf.vars.FindFunctionReturnType(v.Name); ok {
			return rt
		}
		if rt, ok := builtinCallReturnType(v.Name); ok {
			return rt
		}
	}
	return types.Any
}

func builtinCallReturnType(name string) (types.ID, bool) {
	switch name {
	case "int":
		return types.Int, true
	case "float":
		return types.Float, true
	case "str":
		return types.String, true
	case "bool":
		return types.Bool, true
	case "len":
		return types.Int, true
	}
	return types.Any, false
}

func (inf *Inferencer) VisitIndex(n *ast.Index) interface{} {
	ct := inf.TypeOf(n.Container)
	base := types.BaseOf(ct)
	switch base {
	case types.ListBase, types.DictBase, types.TupleBase:
		return types.ElementOf(ct)
	case types.String:
		return types.String
	}
	return types.Any
}

func (inf *Inferencer) VisitListLiteral(n *ast.ListLiteral) interface{} {
	if len(n.Elements) == 0 {
		return types.MakeList(types.Any)
	}
	elem := inf.TypeOf(n.Elements[0])
	for _, e := range n.Elements[1:] {
		elem = CommonSuperType(elem, inf.TypeOf(e))
	}
	return types.MakeList(elem)
}

func (inf *Inferencer) VisitDictLiteral(n *ast.DictLiteral) interface{} {
	if len(n.Values) == 0 {
		return types.MakeDict(types.Any)
	}
	val := inf.TypeOf(n.Values[0])
	for _, v := range n.Values[1:] {
		val = CommonSuperType(val, inf.TypeOf(v))
	}
	return types.MakeDict(val)
}

func (inf *Inferencer) VisitAttribute(*ast.Attribute) interface{} { return types.Any }

// CommonSuperType implements common_super_type: equal
// types stay as-is; Any absorbs anything; numeric widens Int→Float;
// matching containers recurse element-wise; otherwise Any.
func CommonSuperType(a, b types.ID) types.ID {
	if a == b {
		return a
	}
	if a == types.Any || b == types.Any {
		return types.Any
	}
	numeric := func(x types.ID) bool { return x == types.Int || x == types.Float || x == types.Bool }
	if numeric(a) && numeric(b) {
		if a == types.Float || b == types.Float {
			return types.Float
		}
		return types.Int
	}
	ba, bb := types.BaseOf(a), types.BaseOf(b)
	if ba == bb && (ba == types.ListBase || ba == types.DictBase || ba == types.TupleBase) {
		return ba + CommonSuperType(types.ElementOf(a), types.ElementOf(b))
	}
	return types.Any
}
