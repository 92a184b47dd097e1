// Package lint implements variable analysis over the parser's visit events.
// It tracks declarations and references through nested scopes and reports
// undeclared uses, const assignments, redeclarations, and uses of
// block-scoped variables before their declaration.
package lint

import (
	"fmt"

	"github.com/A-thanasios/quick-lint-js/internal/config"
	"github.com/A-thanasios/quick-lint-js/internal/diagnostic"
	"github.com/A-thanasios/quick-lint-js/internal/parse"
	"github.com/A-thanasios/quick-lint-js/internal/source"
)

const (
	codeRedeclaration    diagnostic.Code = "E010"
	codeAssignToConst    diagnostic.Code = "E011"
	codeAssignToGlobal   diagnostic.Code = "E012"
	codeUseUndeclared    diagnostic.Code = "E013"
	codeUseBeforeDecl    diagnostic.Code = "E015"
	codeAssignToImport   diagnostic.Code = "E016"
	codeAssignUndeclared diagnostic.Code = "W014"
)

type decl struct {
	kind parse.DeclKind
	span source.Span
	seq  int
}

type ref struct {
	name       string
	span       source.Span
	seq        int
	assignment bool
	// deferred marks a reference that crossed a function boundary. Such a
	// reference runs when the function is called, so source order against
	// the declaration no longer applies.
	deferred bool
}

type scope struct {
	function bool
	decls    map[string]decl
	refs     []ref
}

// Analyzer consumes parse events and reports variable problems. It keeps a
// stack of scopes; references that no scope declares are resolved against
// the configured globals when the module ends.
type Analyzer struct {
	reporter diagnostic.Reporter
	cfg      *config.Config
	scopes   []*scope
	seq      int
}

var _ parse.Visitor = (*Analyzer)(nil)

// New returns an Analyzer reporting through reporter. A nil cfg uses the
// default global groups.
func New(reporter diagnostic.Reporter, cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Analyzer{
		reporter: reporter,
		cfg:      cfg,
		scopes:   []*scope{newScope(true)},
	}
}

func newScope(function bool) *scope {
	return &scope{function: function, decls: map[string]decl{}}
}

// VisitEnterFunctionScope pushes a scope that hoisted declarations land in.
func (a *Analyzer) VisitEnterFunctionScope() {
	a.scopes = append(a.scopes, newScope(true))
}

// VisitExitFunctionScope resolves the function's references and defers the
// rest to enclosing scopes.
func (a *Analyzer) VisitExitFunctionScope() {
	a.exitScope()
}

// VisitEnterBlockScope pushes a scope for block-scoped declarations.
func (a *Analyzer) VisitEnterBlockScope() {
	a.scopes = append(a.scopes, newScope(false))
}

// VisitExitBlockScope resolves the block's references and propagates the
// rest to enclosing scopes.
func (a *Analyzer) VisitExitBlockScope() {
	a.exitScope()
}

// VisitVariableDeclaration records a declaration. Hoisted kinds land in the
// nearest function scope; the rest stay in the current scope.
func (a *Analyzer) VisitVariableDeclaration(name string, kind parse.DeclKind, span source.Span) {
	a.seq++
	target := a.current()
	if kind.Hoisted() {
		target = a.nearestFunctionScope()
	}
	if prev, ok := target.decls[name]; ok {
		if !redeclarationAllowed(prev.kind, kind) {
			a.report(codeRedeclaration, span, "redeclaration of variable: %s", name)
		}
		// The first declaration stays the binding.
		return
	}
	target.decls[name] = decl{kind: kind, span: span, seq: a.seq}
}

// VisitVariableUse records a read of name in the current scope.
func (a *Analyzer) VisitVariableUse(name string, span source.Span) {
	a.seq++
	cur := a.current()
	cur.refs = append(cur.refs, ref{name: name, span: span, seq: a.seq})
}

// VisitVariableAssignment records a write to name in the current scope.
func (a *Analyzer) VisitVariableAssignment(name string, span source.Span) {
	a.seq++
	cur := a.current()
	cur.refs = append(cur.refs, ref{name: name, span: span, seq: a.seq, assignment: true})
}

// VisitEndOfModule resolves everything the module scope declares and checks
// the remaining references against the configured globals.
func (a *Analyzer) VisitEndOfModule() {
	module := a.scopes[0]
	for _, r := range module.refs {
		if d, ok := module.decls[r.name]; ok {
			a.resolve(d, r)
			continue
		}
		a.resolveGlobal(r)
	}
	module.refs = nil
}

func (a *Analyzer) current() *scope {
	return a.scopes[len(a.scopes)-1]
}

func (a *Analyzer) nearestFunctionScope() *scope {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if a.scopes[i].function {
			return a.scopes[i]
		}
	}
	return a.scopes[0]
}

func (a *Analyzer) exitScope() {
	if len(a.scopes) == 1 {
		return
	}
	exiting := a.current()
	a.scopes = a.scopes[:len(a.scopes)-1]
	parent := a.current()
	for _, r := range exiting.refs {
		if d, ok := exiting.decls[r.name]; ok {
			a.resolve(d, r)
			continue
		}
		if exiting.function {
			r.deferred = true
		}
		parent.refs = append(parent.refs, r)
	}
}

func (a *Analyzer) resolve(d decl, r ref) {
	if d.kind.BlockScoped() && r.seq < d.seq && !r.deferred {
		if r.assignment {
			a.report(codeUseBeforeDecl, r.span, "variable assigned before declaration: %s", r.name)
		} else {
			a.report(codeUseBeforeDecl, r.span, "variable used before declaration: %s", r.name)
		}
		return
	}
	if !r.assignment {
		return
	}
	switch d.kind {
	case parse.DeclConst:
		a.report(codeAssignToConst, r.span, "assignment to const variable: %s", r.name)
	case parse.DeclImport:
		a.report(codeAssignToImport, r.span, "assignment to imported variable: %s", r.name)
	}
}

func (a *Analyzer) resolveGlobal(r ref) {
	g, ok := a.cfg.LookupGlobal(r.name)
	switch {
	case ok && r.assignment && !g.Writable:
		a.report(codeAssignToGlobal, r.span, "assignment to const global variable: %s", r.name)
	case ok:
	case r.assignment:
		a.report(codeAssignUndeclared, r.span, "assignment to undeclared variable: %s", r.name)
	default:
		a.report(codeUseUndeclared, r.span, "use of undeclared variable: %s", r.name)
	}
}

// redeclarationAllowed reports whether declaring name again with the new
// kind is legal JavaScript, as it is for var, function, and parameter
// bindings among themselves.
func redeclarationAllowed(prev, next parse.DeclKind) bool {
	return relaxed(prev) && relaxed(next)
}

func relaxed(k parse.DeclKind) bool {
	switch k {
	case parse.DeclVar, parse.DeclFunction, parse.DeclParameter:
		return true
	default:
		return false
	}
}

func (a *Analyzer) report(code diagnostic.Code, span source.Span, format string, args ...any) {
	a.reporter.Report(diagnostic.Diagnostic{
		Code:     code,
		Severity: code.Severity(),
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	})
}
