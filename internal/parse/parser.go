package parse

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/A-thanasios/quick-lint-js/internal/diagnostic"
	"github.com/A-thanasios/quick-lint-js/internal/source"
)

const (
	codeUnexpectedToken diagnostic.Code = "E001"
	codeMissingToken    diagnostic.Code = "E002"

	// Caps for pathological input: stop reporting syntax problems after
	// maxSyntaxErrors and stop descending past maxWalkDepth.
	maxSyntaxErrors = 50
	maxWalkDepth    = 1000
)

// Language returns the grammar used for all parsing in this package.
func Language() *sitter.Language {
	return javascript.GetLanguage()
}

// Tree parses buf and returns its concrete syntax tree. The caller owns the
// tree and must Close it.
func Tree(ctx context.Context, buf *source.PaddedBuffer) (*sitter.Tree, error) {
	// Small inputs can finish parsing before the cancellation goroutine
	// inside ParseCtx observes a context that was already done.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(Language())

	tree, err := parser.ParseCtx(ctx, nil, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return tree, nil
}

// Parser drives a Visitor over the module-level parse of one buffer.
// Syntax problems are reported to the bound reporter as they are encountered,
// so they interleave with the visitor-driven findings in source order.
type Parser struct {
	buf         *source.PaddedBuffer
	reporter    diagnostic.Reporter
	visitor     Visitor
	syntaxCount int
}

// New returns a Parser bound to buf and reporter.
func New(buf *source.PaddedBuffer, r diagnostic.Reporter) *Parser {
	return &Parser{buf: buf, reporter: r}
}

// ParseAndVisitModule parses the whole buffer as a module and pushes parse
// events into v, ending with VisitEndOfModule. Malformed input is never an
// error: it becomes diagnostics. The returned error is reserved for parser
// faults such as context cancellation.
func (p *Parser) ParseAndVisitModule(ctx context.Context, v Visitor) error {
	tree, err := Tree(ctx, p.buf)
	if err != nil {
		return err
	}
	defer tree.Close()

	p.visitor = v
	p.syntaxCount = 0
	p.walk(tree.RootNode(), 0)
	v.VisitEndOfModule()
	return nil
}

func (p *Parser) walk(node *sitter.Node, depth int) {
	if node == nil || depth > maxWalkDepth {
		return
	}
	p.checkSyntax(node)

	switch node.Type() {
	case "identifier":
		p.use(node)

	case "shorthand_property_identifier":
		// {x} in an object literal reads the variable x.
		p.use(node)

	case "export_specifier":
		// export {local as exported}: only the local name is a reference.
		p.walk(node.ChildByFieldName("name"), depth+1)

	case "export_statement":
		if node.ChildByFieldName("source") != nil {
			// Re-export from another module; the names are not local.
			return
		}
		p.walkChildren(node, depth)

	case "import_statement":
		p.visitImport(node)

	case "variable_declaration":
		p.visitDeclarationStatement(node, DeclVar, depth)

	case "lexical_declaration":
		kind := DeclLet
		if c := node.Child(0); c != nil && c.Type() == "const" {
			kind = DeclConst
		}
		p.visitDeclarationStatement(node, kind, depth)

	case "function_declaration", "generator_function_declaration":
		// The name binds in the enclosing scope and hoists.
		if name := node.ChildByFieldName("name"); name != nil {
			p.declare(name, DeclFunction)
		}
		p.visitFunction(node, nil, depth)

	case "function", "function_expression", "generator_function":
		// A name on a function expression is visible only inside it.
		p.visitFunction(node, node.ChildByFieldName("name"), depth)

	case "arrow_function":
		p.visitFunction(node, nil, depth)

	case "method_definition":
		// Computed keys are evaluated in the enclosing scope.
		if name := node.ChildByFieldName("name"); name != nil && name.Type() == "computed_property_name" {
			p.walkChildren(name, depth)
		}
		p.visitFunction(node, nil, depth)

	case "class_declaration":
		name := node.ChildByFieldName("name")
		if name != nil {
			p.declare(name, DeclClass)
		}
		p.walkChildrenExcept(node, name, depth)

	case "class":
		// A class expression's name binds only inside the class.
		p.visitor.VisitEnterBlockScope()
		name := node.ChildByFieldName("name")
		if name != nil {
			p.declare(name, DeclClass)
		}
		p.walkChildrenExcept(node, name, depth)
		p.visitor.VisitExitBlockScope()

	case "statement_block", "switch_body":
		p.visitor.VisitEnterBlockScope()
		p.walkChildren(node, depth)
		p.visitor.VisitExitBlockScope()

	case "for_statement":
		// A lexical initializer is scoped to the loop.
		p.visitor.VisitEnterBlockScope()
		p.walkChildren(node, depth)
		p.visitor.VisitExitBlockScope()

	case "for_in_statement":
		p.visitForIn(node, depth)

	case "catch_clause":
		p.visitor.VisitEnterBlockScope()
		if param := node.ChildByFieldName("parameter"); param != nil {
			p.declarePattern(param, DeclCatch, depth)
		}
		if body := node.ChildByFieldName("body"); body != nil {
			// The catch body shares the parameter's scope.
			p.walkChildren(body, depth)
		}
		p.visitor.VisitExitBlockScope()

	case "assignment_expression":
		if right := node.ChildByFieldName("right"); right != nil {
			p.walk(right, depth+1)
		}
		if left := node.ChildByFieldName("left"); left != nil {
			p.assignTarget(left, depth)
		}

	case "augmented_assignment_expression":
		// x += y reads x, evaluates y, then writes x.
		left := node.ChildByFieldName("left")
		if left != nil && left.Type() == "identifier" {
			p.use(left)
		} else {
			p.walk(left, depth+1)
		}
		if right := node.ChildByFieldName("right"); right != nil {
			p.walk(right, depth+1)
		}
		if left != nil && left.Type() == "identifier" {
			p.assign(left)
		}

	case "update_expression":
		arg := node.ChildByFieldName("argument")
		if arg != nil && arg.Type() == "identifier" {
			p.use(arg)
			p.assign(arg)
		} else {
			p.walk(arg, depth+1)
		}

	default:
		p.walkChildren(node, depth)
	}
}

// walkChildren walks every child, including anonymous tokens so missing
// punctuation still surfaces as a diagnostic.
func (p *Parser) walkChildren(node *sitter.Node, depth int) {
	for i := 0; i < int(node.ChildCount()); i++ {
		p.walk(node.Child(i), depth+1)
	}
}

func (p *Parser) walkChildrenExcept(node, except *sitter.Node, depth int) {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if except != nil && sameNode(c, except) {
			continue
		}
		p.walk(c, depth+1)
	}
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// visitDeclarationStatement handles var/let/const statements. Initializers
// are visited before the names they initialize, so self-references like
// "let x = x" surface as use before declaration.
func (p *Parser) visitDeclarationStatement(node *sitter.Node, kind DeclKind, depth int) {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c.Type() == "variable_declarator" {
			if value := c.ChildByFieldName("value"); value != nil {
				p.walk(value, depth+1)
			}
			if name := c.ChildByFieldName("name"); name != nil {
				p.declarePattern(name, kind, depth)
			}
		} else if c.IsNamed() {
			p.walk(c, depth+1)
		}
	}
}

// visitFunction enters a function scope, declares parameters (and the inner
// name of a named function expression), and walks the body inside that same
// scope. Statement bodies are inlined rather than opened as a nested block so
// parameters and top-level body bindings collide the way the language
// requires.
func (p *Parser) visitFunction(node, innerName *sitter.Node, depth int) {
	p.visitor.VisitEnterFunctionScope()
	if innerName != nil {
		p.declare(innerName, DeclFunction)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p.declarePattern(params.NamedChild(i), DeclParameter, depth)
		}
	} else if param := node.ChildByFieldName("parameter"); param != nil {
		p.declarePattern(param, DeclParameter, depth)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		if body.Type() == "statement_block" {
			p.walkChildren(body, depth)
		} else {
			p.walk(body, depth+1)
		}
	}
	p.visitor.VisitExitFunctionScope()
}

func (p *Parser) visitForIn(node *sitter.Node, depth int) {
	p.visitor.VisitEnterBlockScope()
	if right := node.ChildByFieldName("right"); right != nil {
		p.walk(right, depth+1)
	}
	if left := node.ChildByFieldName("left"); left != nil {
		if kind, ok := forInDeclKind(node); ok {
			p.declarePattern(left, kind, depth)
		} else {
			p.assignTarget(left, depth)
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		p.walk(body, depth+1)
	}
	p.visitor.VisitExitBlockScope()
}

func forInDeclKind(node *sitter.Node) (DeclKind, bool) {
	if k := node.ChildByFieldName("kind"); k != nil {
		switch k.Type() {
		case "var":
			return DeclVar, true
		case "let":
			return DeclLet, true
		case "const":
			return DeclConst, true
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		switch node.Child(i).Type() {
		case "var":
			return DeclVar, true
		case "let":
			return DeclLet, true
		case "const":
			return DeclConst, true
		}
	}
	return 0, false
}

func (p *Parser) visitImport(node *sitter.Node) {
	clause := firstChildOfType(node, "import_clause")
	if clause == nil {
		return
	}
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		c := clause.NamedChild(i)
		switch c.Type() {
		case "identifier":
			p.declare(c, DeclImport)
		case "namespace_import":
			if id := firstChildOfType(c, "identifier"); id != nil {
				p.declare(id, DeclImport)
			}
		case "named_imports":
			for j := 0; j < int(c.NamedChildCount()); j++ {
				spec := c.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				target := spec.ChildByFieldName("alias")
				if target == nil {
					target = spec.ChildByFieldName("name")
				}
				if target != nil && target.Type() == "identifier" {
					p.declare(target, DeclImport)
				}
			}
		}
	}
}

// declarePattern declares every name bound by a declaration pattern. Default
// values are visited first; they are ordinary expressions in the enclosing
// scope.
func (p *Parser) declarePattern(node *sitter.Node, kind DeclKind, depth int) {
	if node == nil || depth > maxWalkDepth {
		return
	}
	switch node.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		p.declare(node, kind)
	case "object_pattern", "array_pattern":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			p.declarePattern(node.NamedChild(i), kind, depth+1)
		}
	case "pair_pattern":
		if key := node.ChildByFieldName("key"); key != nil && key.Type() == "computed_property_name" {
			p.walkChildren(key, depth)
		}
		p.declarePattern(node.ChildByFieldName("value"), kind, depth+1)
	case "assignment_pattern", "object_assignment_pattern":
		if right := node.ChildByFieldName("right"); right != nil {
			p.walk(right, depth+1)
		}
		p.declarePattern(node.ChildByFieldName("left"), kind, depth+1)
	case "rest_pattern":
		p.declarePattern(node.NamedChild(0), kind, depth+1)
	default:
		p.walk(node, depth+1)
	}
}

// assignTarget emits assignments for a target expression or destructuring
// assignment pattern.
func (p *Parser) assignTarget(node *sitter.Node, depth int) {
	if node == nil || depth > maxWalkDepth {
		return
	}
	switch node.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		p.assign(node)
	case "object_pattern", "array_pattern":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			p.assignTarget(node.NamedChild(i), depth+1)
		}
	case "pair_pattern":
		if key := node.ChildByFieldName("key"); key != nil && key.Type() == "computed_property_name" {
			p.walkChildren(key, depth)
		}
		p.assignTarget(node.ChildByFieldName("value"), depth+1)
	case "assignment_pattern", "object_assignment_pattern":
		if right := node.ChildByFieldName("right"); right != nil {
			p.walk(right, depth+1)
		}
		p.assignTarget(node.ChildByFieldName("left"), depth+1)
	case "rest_pattern":
		p.assignTarget(node.NamedChild(0), depth+1)
	case "parenthesized_expression":
		p.assignTarget(node.NamedChild(0), depth+1)
	default:
		// Member and subscript targets read their base object.
		p.walk(node, depth+1)
	}
}

func firstChildOfType(node *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

func (p *Parser) declare(node *sitter.Node, kind DeclKind) {
	name := p.text(node)
	if name == "" {
		return
	}
	p.visitor.VisitVariableDeclaration(name, kind, p.span(node))
}

func (p *Parser) use(node *sitter.Node) {
	name := p.text(node)
	if name == "" {
		return
	}
	p.visitor.VisitVariableUse(name, p.span(node))
}

func (p *Parser) assign(node *sitter.Node) {
	name := p.text(node)
	if name == "" {
		return
	}
	p.visitor.VisitVariableAssignment(name, p.span(node))
}

func (p *Parser) checkSyntax(node *sitter.Node) {
	if p.syntaxCount >= maxSyntaxErrors {
		return
	}
	if node.IsError() {
		p.syntaxCount++
		p.reporter.Report(diagnostic.Diagnostic{
			Code:     codeUnexpectedToken,
			Severity: diagnostic.SeverityError,
			Message:  unexpectedTokenMessage(p.text(node)),
			Span:     p.span(node),
		})
	} else if node.IsMissing() {
		p.syntaxCount++
		p.reporter.Report(diagnostic.Diagnostic{
			Code:     codeMissingToken,
			Severity: diagnostic.SeverityError,
			Message:  fmt.Sprintf("missing %s", node.Type()),
			Span:     p.span(node),
		})
	}
}

func unexpectedTokenMessage(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > 30 {
		return "unexpected token"
	}
	return fmt.Sprintf("unexpected token: %s", text)
}

func (p *Parser) span(node *sitter.Node) source.Span {
	return source.NewSpan(int(node.StartByte()), int(node.EndByte()))
}

func (p *Parser) text(node *sitter.Node) string {
	return node.Content(p.buf.Bytes())
}
