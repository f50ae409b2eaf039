package runtime

import (
	"fmt"
	"os"
)

// traceEnabled is read once, when the package is initialized,
// mirroring the original project's runtime_debug_config.h compile-time
// gate (py_log.cpp) without needing a build tag: set
// PYAOTC_RUNTIME_TRACE=1 in the generated program's environment to see
// refcount-transition tracing on stderr.
var traceEnabled = os.Getenv("PYAOTC_RUNTIME_TRACE") == "1"

// Trace logs a refcount or dispatch event when tracing is enabled. Off
// by default; always a no-op allocation-wise when traceEnabled is false.
func Trace(format string, args ...interface{}) {
	if !traceEnabled {
		return
	}
	fmt.Fprintf(os.Stderr, "[pyaotc runtime] "+format+"\n", args...)
}
