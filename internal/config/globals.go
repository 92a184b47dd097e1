package config

// defaultGroupNames returns the groups enabled when "global-groups" is true
// or absent.
func defaultGroupNames() []string {
	return []string{"ecmascript", "browser", "node"}
}

var globalGroups = map[string]map[string]Global{
	"ecmascript": ecmascriptGlobals,
	"browser":    browserGlobals,
	"node":       nodeGlobals,
}

func group(writable, readonly []string) map[string]Global {
	m := make(map[string]Global, len(writable)+len(readonly))
	for _, name := range writable {
		m[name] = Global{Writable: true}
	}
	for _, name := range readonly {
		m[name] = Global{}
	}
	return m
}

var ecmascriptGlobals = group(
	[]string{
		"AggregateError", "Array", "ArrayBuffer", "BigInt", "BigInt64Array",
		"BigUint64Array", "Boolean", "DataView", "Date", "Error", "EvalError",
		"FinalizationRegistry", "Float32Array", "Float64Array", "Function",
		"Int16Array", "Int32Array", "Int8Array", "JSON", "Map", "Math",
		"Number", "Object", "Promise", "Proxy", "RangeError", "ReferenceError",
		"Reflect", "RegExp", "Set", "SharedArrayBuffer", "String", "Symbol",
		"SyntaxError", "TypeError", "URIError", "Uint16Array", "Uint32Array",
		"Uint8Array", "Uint8ClampedArray", "WeakMap", "WeakRef", "WeakSet",
		"decodeURI", "decodeURIComponent", "encodeURI", "encodeURIComponent",
		"escape", "eval", "isFinite", "isNaN", "parseFloat", "parseInt",
		"unescape",
	},
	[]string{"Infinity", "NaN", "globalThis", "undefined"},
)

var browserGlobals = group(
	[]string{
		"addEventListener", "alert", "atob", "blur", "btoa",
		"cancelAnimationFrame", "clearInterval", "clearTimeout", "close",
		"confirm", "console", "customElements", "devicePixelRatio",
		"dispatchEvent", "document", "fetch", "focus", "frames",
		"getComputedStyle", "getSelection", "history", "indexedDB",
		"innerHeight", "innerWidth", "localStorage", "location", "matchMedia",
		"navigator", "open", "opener", "origin", "outerHeight", "outerWidth",
		"pageXOffset", "pageYOffset", "parent", "performance", "postMessage",
		"print", "prompt", "queueMicrotask", "removeEventListener",
		"requestAnimationFrame", "screen", "scroll", "scrollBy", "scrollTo",
		"scrollX", "scrollY", "self", "sessionStorage", "setInterval",
		"setTimeout", "stop", "top", "window",
	},
	nil,
)

var nodeGlobals = group(
	[]string{
		"Buffer", "TextDecoder", "TextEncoder", "URL", "URLSearchParams",
		"WebAssembly", "clearImmediate", "clearInterval", "clearTimeout",
		"console", "exports", "global", "module", "process", "queueMicrotask",
		"require", "setImmediate", "setInterval", "setTimeout",
		"structuredClone",
	},
	[]string{"__dirname", "__filename"},
)
