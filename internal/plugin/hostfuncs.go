package plugin

import (
	"context"

	"github.com/risor-io/risor/object"
	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/A-thanasios/quick-lint-js/internal/diagnostic"
	"github.com/A-thanasios/quick-lint-js/internal/parse"
	"github.com/A-thanasios/quick-lint-js/internal/source"
)

// nodeArg unwraps a proxied *sitter.Node argument. The second return value
// is a non-nil error object when the argument is not a node.
func nodeArg(fn string, arg object.Object) (*sitter.Node, object.Object) {
	proxy, ok := arg.(*object.Proxy)
	if !ok {
		return nil, object.Errorf("%s: not a syntax node: %s", fn, arg.Type())
	}
	node, ok := proxy.Interface().(*sitter.Node)
	if !ok {
		return nil, object.Errorf("%s: not a syntax node: %T", fn, proxy.Interface())
	}
	return node, nil
}

// stringArg unwraps a string argument.
func stringArg(fn, what string, arg object.Object) (string, object.Object) {
	s, ok := arg.(*object.String)
	if !ok {
		return "", object.Errorf("%s: %s must be a string, got %s", fn, what, arg.Type())
	}
	return s.Value(), nil
}

// makeSourceFn creates the "source" host function.
//
// source() → string
func makeSourceFn(buf *source.PaddedBuffer) *object.Builtin {
	return object.NewBuiltin("source", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("source", 0, len(args))
		}
		return object.NewString(buf.String())
	})
}

// makeQueryFn creates the "query" host function. Patterns always run against
// the module root; rules never see a partial tree.
//
// query(pattern) → []map[string]any
//
// Each map has capture names as keys and proxied Nodes as values.
func makeQueryFn(buf *source.PaddedBuffer, root *sitter.Node) *object.Builtin {
	return object.NewBuiltin("query", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("query", 1, len(args))
		}
		pattern, errObj := stringArg("query", "pattern", args[0])
		if errObj != nil {
			return errObj
		}

		q, err := sitter.NewQuery([]byte(pattern), parse.Language())
		if err != nil {
			return object.Errorf("query: invalid pattern: %v", err)
		}
		defer q.Close()

		cursor := sitter.NewQueryCursor()
		defer cursor.Close()
		cursor.Exec(q, root)

		hits := []object.Object{}
		for match, ok := cursor.NextMatch(); ok; match, ok = cursor.NextMatch() {
			match = cursor.FilterPredicates(match, buf.Bytes())
			row, errObj := captureRow(q, match)
			if errObj != nil {
				return errObj
			}
			hits = append(hits, row)
		}
		return object.NewList(hits)
	})
}

// captureRow converts one query match into a capture-name-to-node map.
func captureRow(q *sitter.Query, match *sitter.QueryMatch) (object.Object, object.Object) {
	row := make(map[string]object.Object, len(match.Captures))
	for _, c := range match.Captures {
		name := q.CaptureNameForId(c.Index)
		p, err := object.NewProxy(c.Node)
		if err != nil {
			return nil, object.Errorf("query: capture %q: %v", name, err)
		}
		row[name] = p
	}
	return object.NewMap(row), nil
}

// makeNodeTextFn creates the "node_text" host function. Risor's proxy layer
// cannot pass []byte to node.Content, so the host does the slicing.
//
// node_text(node) → string
func makeNodeTextFn(buf *source.PaddedBuffer) *object.Builtin {
	return object.NewBuiltin("node_text", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("node_text", 1, len(args))
		}
		node, errObj := nodeArg("node_text", args[0])
		if errObj != nil {
			return errObj
		}
		return object.NewString(node.Content(buf.Bytes()))
	})
}

// makeNodeChildFn creates "node_child". It wraps ChildByFieldName and
// returns Risor nil instead of a proxied Go nil pointer when the field is
// absent.
//
// node_child(node, fieldName) → Node or nil
func makeNodeChildFn() *object.Builtin {
	return object.NewBuiltin("node_child", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("node_child", 2, len(args))
		}
		node, errObj := nodeArg("node_child", args[0])
		if errObj != nil {
			return errObj
		}
		field, errObj := stringArg("node_child", "field", args[1])
		if errObj != nil {
			return errObj
		}

		child := node.ChildByFieldName(field)
		if child == nil {
			return object.Nil
		}
		p, err := object.NewProxy(child)
		if err != nil {
			return object.Errorf("node_child: %v", err)
		}
		return p
	})
}

// makeReportFn creates the "report" host function. Severity comes from the
// code's first letter, the same as built-in diagnostics.
//
// report(node, code, message) → nil
func makeReportFn(reporter diagnostic.Reporter) *object.Builtin {
	return object.NewBuiltin("report", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 3 {
			return object.NewArgsError("report", 3, len(args))
		}
		node, errObj := nodeArg("report", args[0])
		if errObj != nil {
			return errObj
		}
		codeStr, errObj := stringArg("report", "code", args[1])
		if errObj != nil {
			return errObj
		}
		message, errObj := stringArg("report", "message", args[2])
		if errObj != nil {
			return errObj
		}

		code := diagnostic.Code(codeStr)
		reporter.Report(diagnostic.Diagnostic{
			Code:     code,
			Severity: code.Severity(),
			Message:  message,
			Span:     source.NewSpan(int(node.StartByte()), int(node.EndByte())),
		})
		return object.Nil
	})
}

// scriptLog provides log.info/warn/error methods for rule scripts.
type scriptLog struct {
	log *zap.SugaredLogger
}

func (l *scriptLog) Info(msg string) {
	l.log.Infow(msg, "origin", "rule")
}

func (l *scriptLog) Warn(msg string) {
	l.log.Warnw(msg, "origin", "rule")
}

func (l *scriptLog) Error(msg string) {
	l.log.Errorw(msg, "origin", "rule")
}
