// Package astjson bridges a JSON-encoded AST (the shape a real
// lexer/parser front end would hand the compiler — out of scope for
// this module, see internal/ast's package doc) into internal/ast
// nodes, so cmd/pyaotc has something concrete to compile without
// needing a Python front end. No library in the pack does
// interface-typed AST decoding, so this is hand-rolled atop
// encoding/json — every other JSON use in the pack stays stdlib too.
package astjson

import (
	"encoding/json"
	"fmt"

	"pyaotc/internal/ast"
)

type node struct {
	Kind     string          `json:"kind"`
	Line     int             `json:"line"`
	Column   int             `json:"column"`
	Text     string          `json:"text"`
	Base     int             `json:"base"`
	Value    json.RawMessage `json:"value"`
	Name     string          `json:"name"`
	Op       string          `json:"op"`
	Left     json.RawMessage `json:"left"`
	Right    json.RawMessage `json:"right"`
	Operand  json.RawMessage `json:"operand"`
	Callee   json.RawMessage `json:"callee"`
	Args     []json.RawMessage `json:"args"`
	Container json.RawMessage `json:"container"`
	Key      json.RawMessage `json:"key"`
	Elements []json.RawMessage `json:"elements"`
	Keys     []json.RawMessage `json:"keys"`
	Values   []json.RawMessage `json:"values"`
	Object   json.RawMessage `json:"object"`

	Cond     json.RawMessage   `json:"cond"`
	Then     []json.RawMessage `json:"then"`
	Else     []json.RawMessage `json:"else"`
	Body     []json.RawMessage `json:"body"`
	Declared string            `json:"declared"`
	Params   []paramJSON       `json:"params"`
	ReturnType string          `json:"return_type"`
	Base_    string            `json:"base_class"`
	Methods  []json.RawMessage `json:"methods"`
	Stmts    []json.RawMessage `json:"stmts"`
}

type paramJSON struct {
	Name     string `json:"name"`
	Declared string `json:"declared"`
}

func pos(n node) ast.Pos { return ast.Pos{Line: n.Line, Column: n.Column} }

// DecodeModule parses a JSON AST document into an *ast.Module.
func DecodeModule(data []byte) (*ast.Module, error) {
	var doc struct {
		Name     string            `json:"name"`
		IsEntry  bool              `json:"is_entry"`
		TopLevel []json.RawMessage `json:"top_level"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("astjson: decode module: %w", err)
	}
	top, err := decodeStmts(doc.TopLevel)
	if err != nil {
		return nil, err
	}
	return &ast.Module{Name: doc.Name, IsEntry: doc.IsEntry, TopLevel: top}, nil
}

func decodeStmts(raws []json.RawMessage) ([]ast.Stmt, error) {
	out := make([]ast.Stmt, 0, len(raws))
	for _, r := range raws {
		s, err := decodeStmt(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeExprs(raws []json.RawMessage) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(raws))
	for _, r := range raws {
		e, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeExpr(raw json.RawMessage) (ast.Expr, error) {
	if raw == nil {
		return nil, nil
	}
	var n node
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	switch n.Kind {
	case "number":
		kind := ast.IntLiteral
		if n.Base == 0 {
			n.Base = 10
		}
		var textVal struct {
			Float bool `json:"float"`
		}
		_ = json.Unmarshal(n.Value, &textVal)
		if textVal.Float {
			kind = ast.FloatLiteral
		}
		return &ast.NumberLiteral{P: pos(n), Kind: kind, Text: n.Text, Base: n.Base}, nil
	case "string":
		var s string
		json.Unmarshal(n.Value, &s)
		return &ast.StringLiteral{P: pos(n), Value: s}, nil
	case "bool":
		var b bool
		json.Unmarshal(n.Value, &b)
		return &ast.BoolLiteral{P: pos(n), Value: b}, nil
	case "none":
		return &ast.NoneLiteral{P: pos(n)}, nil
	case "variable":
		return &ast.Variable{P: pos(n), Name: n.Name}, nil
	case "binary":
		l, err := decodeExpr(n.Left)
		if err != nil {
			return nil, err
		}
		r, err := decodeExpr(n.Right)
		if err != nil {
			return nil, err
		}
		return &ast.Binary{P: pos(n), Op: n.Op, Left: l, Right: r}, nil
	case "unary":
		o, err := decodeExpr(n.Operand)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{P: pos(n), Op: n.Op, Operand: o}, nil
	case "call":
		callee, err := decodeExpr(n.Callee)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(n.Args)
		if err != nil {
			return nil, err
		}
		return &ast.Call{P: pos(n), Callee: callee, Args: args}, nil
	case "index":
		c, err := decodeExpr(n.Container)
		if err != nil {
			return nil, err
		}
		k, err := decodeExpr(n.Key)
		if err != nil {
			return nil, err
		}
		return &ast.Index{P: pos(n), Container: c, Key: k}, nil
	case "list":
		els, err := decodeExprs(n.Elements)
		if err != nil {
			return nil, err
		}
		return &ast.ListLiteral{P: pos(n), Elements: els}, nil
	case "dict":
		keys, err := decodeExprs(n.Keys)
		if err != nil {
			return nil, err
		}
		vals, err := decodeExprs(n.Values)
		if err != nil {
			return nil, err
		}
		return &ast.DictLiteral{P: pos(n), Keys: keys, Values: vals}, nil
	case "attribute":
		obj, err := decodeExpr(n.Object)
		if err != nil {
			return nil, err
		}
		return &ast.Attribute{P: pos(n), Object: obj, Name: n.Name}, nil
	}
	return nil, fmt.Errorf("astjson: unknown expr kind %q", n.Kind)
}

func decodeStmt(raw json.RawMessage) (ast.Stmt, error) {
	var n node
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	switch n.Kind {
	case "expr_stmt":
		v, err := decodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{P: pos(n), Value: v}, nil
	case "assign":
		v, err := decodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{P: pos(n), Name: n.Name, Value: v, Declared: n.Declared}, nil
	case "index_assign":
		c, err := decodeExpr(n.Container)
		if err != nil {
			return nil, err
		}
		k, err := decodeExpr(n.Key)
		if err != nil {
			return nil, err
		}
		v, err := decodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.IndexAssign{P: pos(n), Container: c, Key: k, Value: v}, nil
	case "if":
		cond, err := decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeStmts(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeStmts(n.Else)
		if err != nil {
			return nil, err
		}
		return &ast.If{P: pos(n), Cond: cond, Then: then, Else: els}, nil
	case "while":
		cond, err := decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.While{P: pos(n), Cond: cond, Body: body}, nil
	case "return":
		v, err := decodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Return{P: pos(n), Value: v}, nil
	case "print":
		v, err := decodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Print{P: pos(n), Value: v}, nil
	case "func_def":
		body, err := decodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		params := make([]ast.Param, 0, len(n.Params))
		for _, p := range n.Params {
			params = append(params, ast.Param{Name: p.Name, Declared: p.Declared})
		}
		return &ast.FuncDef{P: pos(n), Name: n.Name, Params: params, ReturnType: n.ReturnType, Body: body}, nil
	case "class_def":
		methodsRaw, err := decodeStmts(n.Methods)
		if err != nil {
			return nil, err
		}
		methods := make([]*ast.FuncDef, 0, len(methodsRaw))
		for _, m := range methodsRaw {
			fd, ok := m.(*ast.FuncDef)
			if !ok {
				return nil, fmt.Errorf("astjson: class_def method is not a func_def")
			}
			methods = append(methods, fd)
		}
		return &ast.ClassDef{P: pos(n), Name: n.Name, Base: n.Base_, Methods: methods}, nil
	case "block":
		stmts, err := decodeStmts(n.Stmts)
		if err != nil {
			return nil, err
		}
		return &ast.Block{P: pos(n), Stmts: stmts}, nil
	}
	return nil, fmt.Errorf("astjson: unknown stmt kind %q", n.Kind)
}
