package astjson

import (
	"testing"

	"pyaotc/internal/ast"
)

func TestDecodeModuleSimpleAssignAndPrint(t *testing.T) {
	doc := []byte(`{
		"name": "m",
		"is_entry": true,
		"top_level": [
			{"kind": "assign", "name": "x", "declared": "int",
			 "value": {"kind": "number", "text": "2", "base": 10, "value": {"float": false}}},
			{"kind": "print",
			 "value": {"kind": "binary", "op": "+",
			           "left": {"kind": "variable", "name": "x"},
			           "right": {"kind": "number", "text": "3", "value": {"float": false}}}}
		]
	}`)

	mod, err := DecodeModule(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mod.Name != "m" || !mod.IsEntry || len(mod.TopLevel) != 2 {
		t.Fatalf("got %+v", mod)
	}
	assign, ok := mod.TopLevel[0].(*ast.Assign)
	if !ok || assign.Name != "x" || assign.Declared != "int" {
		t.Fatalf("got %+v", mod.TopLevel[0])
	}
	lit, ok := assign.Value.(*ast.NumberLiteral)
	if !ok || lit.Text != "2" || lit.Kind != ast.IntLiteral {
		t.Fatalf("got %+v", assign.Value)
	}

	print, ok := mod.TopLevel[1].(*ast.Print)
	if !ok {
		t.Fatalf("got %+v", mod.TopLevel[1])
	}
	bin, ok := print.Value.(*ast.Binary)
	if !ok || bin.Op != "+" {
		t.Fatalf("got %+v", print.Value)
	}
}

func TestDecodeModuleFuncDefAndCall(t *testing.T) {
	doc := []byte(`{
		"name": "m",
		"top_level": [
			{"kind": "func_def", "name": "add", "return_type": "int",
			 "params": [{"name": "a", "declared": "int"}, {"name": "b", "declared": "int"}],
			 "body": [
				{"kind": "return",
				 "value": {"kind": "binary", "op": "+",
				           "left": {"kind": "variable", "name": "a"},
				           "right": {"kind": "variable", "name": "b"}}}
			 ]},
			{"kind": "expr_stmt",
			 "value": {"kind": "call",
			           "callee": {"kind": "variable", "name": "add"},
			           "args": [{"kind": "number", "text": "1", "value": {"float": false}},
			                    {"kind": "number", "text": "2", "value": {"float": false}}]}}
		]
	}`)

	mod, err := DecodeModule(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn, ok := mod.TopLevel[0].(*ast.FuncDef)
	if !ok || fn.Name != "add" || fn.ReturnType != "int" || len(fn.Params) != 2 {
		t.Fatalf("got %+v", mod.TopLevel[0])
	}
	ret, ok := fn.Body[0].(*ast.Return)
	if !ok {
		t.Fatalf("got %+v", fn.Body[0])
	}
	if _, ok := ret.Value.(*ast.Binary); !ok {
		t.Fatalf("got %+v", ret.Value)
	}

	exprStmt, ok := mod.TopLevel[1].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("got %+v", mod.TopLevel[1])
	}
	call, ok := exprStmt.Value.(*ast.Call)
	if !ok || len(call.Args) != 2 {
		t.Fatalf("got %+v", exprStmt.Value)
	}
}

func TestDecodeModuleClassDef(t *testing.T) {
	doc := []byte(`{
		"name": "m",
		"top_level": [
			{"kind": "class_def", "name": "Dog", "base_class": "",
			 "methods": [
				{"kind": "func_def", "name": "bark", "params": [], "body": []}
			 ]}
		]
	}`)

	mod, err := DecodeModule(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cd, ok := mod.TopLevel[0].(*ast.ClassDef)
	if !ok || cd.Name != "Dog" || len(cd.Methods) != 1 || cd.Methods[0].Name != "bark" {
		t.Fatalf("got %+v", mod.TopLevel[0])
	}
}

func TestDecodeUnknownExprKindErrors(t *testing.T) {
	doc := []byte(`{"name": "m", "top_level": [
		{"kind": "expr_stmt", "value": {"kind": "mystery"}}
	]}`)
	if _, err := DecodeModule(doc); err == nil {
		t.Fatal("expected an error for an unknown expr kind")
	}
}
