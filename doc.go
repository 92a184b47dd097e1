// Package quicklintjs finds bugs in JavaScript programs. It parses source
// with tree-sitter, analyzes variable declarations and uses through nested
// scopes, and reports diagnostics in editor-ready formats.
//
// # Pipeline
//
// Linting a buffer runs in three stages:
//
//  1. Parse: the source is copied into a padded buffer and parsed with
//     tree-sitter into a concrete syntax tree. Syntax problems are reported
//     as the tree is walked.
//
//  2. Analyze: the walk emits declaration, use, and assignment events into a
//     scope-tracking analyzer that reports undeclared uses, const
//     assignments, redeclarations, and uses before declaration. Unresolved
//     names are checked against configurable global groups.
//
//  3. Report: diagnostics stream through a [diagnostic.Reporter]. The
//     Vim-oriented reporter renders one JSON document shaped like the
//     argument to Vim's setqflist() function.
//
// # Usage
//
// Create a Linter and lint a buffer:
//
//	l := quicklintjs.New()
//
//	report, err := l.LintToJSON(ctx, src)
//	if err != nil { ... }
//
// [Linter.LintToJSON] returns the quickfix-list JSON document.
// [Linter.LintToJSONTerminated] appends a single NUL byte for embedding
// hosts that need C-style strings. [Linter.LintToDiagnostics] returns
// structured findings with resolved line and column positions, which is what
// the language server publishes. [Linter.LintFiles] lints many files through
// a worker pool into one combined report.
//
// # Configuration
//
// A quick-lint-js.config.json file selects which global variables exist for
// a project. See the internal/config package for the file format.
//
// # Rules
//
// Projects can extend the built-in checks with lint rules written in Risor,
// loaded from a rules directory. Rules query the syntax tree with
// tree-sitter patterns and report findings alongside built-in diagnostics.
// See the internal/plugin package for the globals exposed to rule scripts.
package quicklintjs
