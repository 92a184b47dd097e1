//go:build wasip1

// Package main exports the linter as a WASI reactor module:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o quick-lint-js.wasm ./wasm
//
// The host writes source bytes into memory obtained from allocate, calls
// parse_and_lint, and reads the report at the returned address. Returned
// buffers stay pinned until the host passes them back to deallocate, so the
// embedding follows the same allocate/release pairing as the C API.
package main

import (
	"context"
	"sync"
	"unsafe"

	quicklintjs "github.com/A-thanasios/quick-lint-js"
)

var (
	linter = quicklintjs.New()

	mu     sync.Mutex
	pinned = map[uintptr][]byte{}
)

func main() {}

// allocate returns the address of a size-byte buffer for the host to fill.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}
	buf := make([]byte, size)
	ptr := uintptr(unsafe.Pointer(&buf[0]))
	mu.Lock()
	pinned[ptr] = buf
	mu.Unlock()
	return uint32(ptr)
}

// deallocate releases a buffer returned by allocate or parse_and_lint.
//
//go:wasmexport deallocate
func deallocate(ptr uint32) {
	mu.Lock()
	delete(pinned, uintptr(ptr))
	mu.Unlock()
}

// parse_and_lint lints the UTF-8 source at ptr and returns the report
// location packed as length<<32|address. The report is the quickfix JSON
// document followed by exactly one NUL byte; the packed length includes the
// terminator. A zero return means the lint failed.
//
//go:wasmexport parse_and_lint
func parse_and_lint(ptr, size uint32) uint64 {
	var src []byte
	if size > 0 {
		src = unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), size)
	}

	report, err := linter.LintToJSONTerminated(context.Background(), src)
	if err != nil {
		return 0
	}

	out := uintptr(unsafe.Pointer(&report[0]))
	mu.Lock()
	pinned[out] = report
	mu.Unlock()
	return uint64(len(report))<<32 | uint64(uint32(out))
}
