// Package rules bundles the default lint rule scripts so the CLI works
// without a rules directory on disk.
package rules

import "embed"

//go:embed *.risor
var FS embed.FS
