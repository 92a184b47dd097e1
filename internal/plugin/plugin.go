// Package plugin runs user-supplied lint rules written in Risor against a
// parsed source file. Rules live in a rules directory as .risor scripts and
// report findings through the same reporter the built-in checks use.
package plugin

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/A-thanasios/quick-lint-js/internal/diagnostic"
	"github.com/A-thanasios/quick-lint-js/internal/parse"
	"github.com/A-thanasios/quick-lint-js/internal/source"
)

// Engine embeds a Risor VM and provides tree-sitter host functions to rule
// scripts.
type Engine struct {
	rulesDir string
	fsys     fs.FS
	log      *zap.SugaredLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithFS loads rule scripts from an fs.FS instead of from disk. Also
// configures the Risor importer to resolve import statements against it.
func WithFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.fsys = fsys
	}
}

// WithLogger sets the logger rule scripts write to through the log global.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		e.log = log.Sugar()
	}
}

// New creates an Engine loading rules from rulesDir.
func New(rulesDir string, opts ...Option) *Engine {
	e := &Engine{
		rulesDir: rulesDir,
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run parses buf once and executes every rule script against the tree.
// Findings go to reporter; script failures are collected and returned after
// all rules have run.
func (e *Engine) Run(ctx context.Context, buf *source.PaddedBuffer, label string, reporter diagnostic.Reporter) error {
	scripts, err := e.listScripts()
	if err != nil {
		return err
	}
	if len(scripts) == 0 {
		return nil
	}

	tree, err := parse.Tree(ctx, buf)
	if err != nil {
		return fmt.Errorf("plugin: %w", err)
	}
	defer tree.Close()
	root := tree.RootNode()

	var errs []error
	for _, name := range scripts {
		src, err := e.loadScript(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := e.eval(ctx, src, name, buf, label, root, reporter); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("plugin: %d rule error(s): %w", len(errs), errs[0])
	}
	return nil
}

// RunSource executes Risor source code directly against buf. Useful for
// testing rules without script files.
func (e *Engine) RunSource(ctx context.Context, ruleSrc string, buf *source.PaddedBuffer, label string, reporter diagnostic.Reporter) error {
	tree, err := parse.Tree(ctx, buf)
	if err != nil {
		return fmt.Errorf("plugin: %w", err)
	}
	defer tree.Close()
	return e.eval(ctx, ruleSrc, "<inline>", buf, label, tree.RootNode(), reporter)
}

func (e *Engine) eval(ctx context.Context, ruleSrc, name string, buf *source.PaddedBuffer, label string, root *sitter.Node, reporter diagnostic.Reporter) error {
	globals := e.buildGlobals(buf, label, root, reporter)

	var opts []risor.Option
	for gname, val := range globals {
		opts = append(opts, risor.WithGlobal(gname, val))
	}
	if imp := e.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	if _, err := risor.Eval(ctx, ruleSrc, opts...); err != nil {
		return fmt.Errorf("plugin: rule %s: %w", name, err)
	}
	return nil
}

// buildImporter returns a Risor importer for the Engine's script source, or
// nil when neither an fs.FS nor a rules directory is configured.
func (e *Engine) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if e.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    e.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if e.rulesDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   e.rulesDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// listScripts returns the rule script names in deterministic order.
func (e *Engine) listScripts() ([]string, error) {
	var entries []os.DirEntry
	var err error
	switch {
	case e.fsys != nil:
		entries, err = fs.ReadDir(e.fsys, ".")
	case e.rulesDir != "":
		entries, err = os.ReadDir(e.rulesDir)
		if os.IsNotExist(err) {
			return nil, nil
		}
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("plugin: list rules: %w", err)
	}

	var scripts []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".risor") {
			continue
		}
		scripts = append(scripts, entry.Name())
	}
	return scripts, nil
}

func (e *Engine) loadScript(name string) (string, error) {
	if e.fsys != nil {
		data, err := fs.ReadFile(e.fsys, name)
		if err != nil {
			return "", fmt.Errorf("plugin: loading rule %s from fs: %w", name, err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(filepath.Join(e.rulesDir, name))
	if err != nil {
		return "", fmt.Errorf("plugin: loading rule %s: %w", name, err)
	}
	return string(data), nil
}

// buildGlobals constructs the host functions exposed to rule scripts.
func (e *Engine) buildGlobals(buf *source.PaddedBuffer, label string, root *sitter.Node, reporter diagnostic.Reporter) map[string]any {
	return map[string]any{
		"source":     makeSourceFn(buf),
		"file_name":  label,
		"query":      makeQueryFn(buf, root),
		"node_text":  makeNodeTextFn(buf),
		"node_child": makeNodeChildFn(),
		"report":     makeReportFn(reporter),
		"log":        mustProxy(&scriptLog{log: e.log}),
	}
}

// Hash computes a SHA-256 hash of all rule scripts, sorted by name, for use
// in cache keys. An engine with no rules hashes to a stable value.
func (e *Engine) Hash() string {
	scripts, err := e.listScripts()
	if err != nil {
		scripts = nil
	}
	h := sha256.New()
	for _, name := range scripts {
		src, err := e.loadScript(name)
		if err != nil {
			continue
		}
		h.Write([]byte(name))
		h.Write([]byte(src))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("plugin: proxy error: %v", err))
	}
	return p
}
