// Package main exports the linter as a C library:
//
//	go build -buildmode=c-shared -o libquicklintjs.so ./capi
//
// The input is a NUL-terminated UTF-8 string. The output is a malloc'd
// NUL-terminated quickfix JSON document owned by the caller, who releases
// it with quick_lint_js_free_json. Both sides of that pair use the C heap,
// so the buffer never crosses allocator boundaries.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"unsafe"

	quicklintjs "github.com/A-thanasios/quick-lint-js"
)

var linter = quicklintjs.New()

//export quick_lint_js_parse_and_lint_to_json
func quick_lint_js_parse_and_lint_to_json(input *C.char) *C.char {
	report, err := linter.LintToJSON(context.Background(), []byte(C.GoString(input)))
	if err != nil {
		return nil
	}
	// C.CString copies the report onto the C heap and appends the one NUL
	// terminator the contract promises.
	return C.CString(string(report))
}

//export quick_lint_js_free_json
func quick_lint_js_free_json(report *C.char) {
	C.free(unsafe.Pointer(report))
}

func main() {}
