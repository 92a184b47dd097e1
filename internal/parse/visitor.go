package parse

import "github.com/A-thanasios/quick-lint-js/internal/source"

// DeclKind classifies how a variable came to be declared.
type DeclKind int

const (
	DeclVar DeclKind = iota
	DeclLet
	DeclConst
	DeclFunction
	DeclClass
	DeclParameter
	DeclImport
	DeclCatch
)

// String returns the keyword or role that introduced the declaration.
func (k DeclKind) String() string {
	switch k {
	case DeclVar:
		return "var"
	case DeclLet:
		return "let"
	case DeclConst:
		return "const"
	case DeclFunction:
		return "function"
	case DeclClass:
		return "class"
	case DeclParameter:
		return "parameter"
	case DeclImport:
		return "import"
	case DeclCatch:
		return "catch"
	default:
		return "unknown"
	}
}

// Hoisted reports whether declarations of this kind bind in the nearest
// function scope rather than in the block where they appear.
func (k DeclKind) Hoisted() bool {
	return k == DeclVar || k == DeclFunction
}

// BlockScoped reports whether using the variable before this declaration is
// an error within the declaring scope.
func (k DeclKind) BlockScoped() bool {
	return k == DeclLet || k == DeclConst || k == DeclClass
}

// Visitor receives parse events in source order while a module is walked.
// Scopes nest strictly; every enter is matched by an exit before
// VisitEndOfModule.
type Visitor interface {
	VisitEnterFunctionScope()
	VisitExitFunctionScope()
	VisitEnterBlockScope()
	VisitExitBlockScope()
	VisitVariableDeclaration(name string, kind DeclKind, span source.Span)
	VisitVariableUse(name string, span source.Span)
	VisitVariableAssignment(name string, span source.Span)
	VisitEndOfModule()
}
