package runtime

import (
	"fmt"
	"os"

	"pyaotc/internal/object"
)

// InitializeBuiltinTypeMethods implements py_initialize_builtin_type_methods:
// builds the process-wide method-table registry and wires this
// package's dispatch helpers to it. Module lowering emits exactly one
// call to this, via __runtime_init__, at priority 65535 in the
// generated module's constructor list.
func InitializeBuiltinTypeMethods() {
	object.InitializeBuiltinTypeMethods()
	SetDispatch(object.Dispatch)
	object.SetKeyConverter(SmartConvert)
	Trace("builtin type methods initialized, build=%s", object.BuildID)
}

// RegisterTypeMethods is the Go entry for py_register_type_methods. It
// does not install t: both arguments are ignored and dispatch keeps
// using the built-in tables (classes use the instance/class tables
// directly).
func RegisterTypeMethods(base int32, t *object.MethodTable) {
	// The process-wide registry is private to internal/object; classes
	// and instances register implicitly via NewClass/NewInstance using
	// the fixed instance/class tables.
	_ = base
	_ = t
}

// PrintObject implements py_print_object.
func PrintObject(o *object.Object) {
	fmt.Println(ToStr(o))
}

// RuntimeErrorReport implements py_runtime_error(key, line): prints a
// diagnostic to stderr. The generated code checks sentinels and
// propagates a non-zero exit rather than unwinding.
func RuntimeErrorReport(kind object.ErrorKind, line int) {
	fmt.Fprintf(os.Stderr, "%s at line %d\n", kind, line)
}
