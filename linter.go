package quicklintjs

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/A-thanasios/quick-lint-js/internal/cache"
	"github.com/A-thanasios/quick-lint-js/internal/config"
	"github.com/A-thanasios/quick-lint-js/internal/diagnostic"
	"github.com/A-thanasios/quick-lint-js/internal/lint"
	"github.com/A-thanasios/quick-lint-js/internal/parse"
	"github.com/A-thanasios/quick-lint-js/internal/plugin"
	"github.com/A-thanasios/quick-lint-js/internal/source"
)

// Version is reported by the CLI and the language server.
const Version = "0.2.0"

// WebSourceLabel is the filename attached to diagnostics when the input
// arrives from an embedding host rather than from a file on disk.
const WebSourceLabel = "<web>"

// codeRuleFailure marks a lint rule script that failed to run.
const codeRuleFailure diagnostic.Code = "E090"

// Linter turns JavaScript source into diagnostics. A Linter is safe for
// concurrent use; each lint call builds its own parser and analyzer.
type Linter struct {
	cfg   *config.Config
	log   *zap.SugaredLogger
	rules *plugin.Engine
	cache *cache.Store
	label string
}

// Option configures a Linter.
type Option func(*Linter)

// WithConfig sets the global-variable configuration. The default enables
// every built-in global group.
func WithConfig(cfg *config.Config) Option {
	return func(l *Linter) {
		if cfg != nil {
			l.cfg = cfg
		}
	}
}

// WithLogger sets the logger for lint progress and rule failures. The
// default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(l *Linter) {
		l.log = log.Sugar()
	}
}

// WithRules runs the given rule engine after the built-in checks on every
// lint.
func WithRules(rules *plugin.Engine) Option {
	return func(l *Linter) {
		l.rules = rules
	}
}

// WithCache stores per-file reports in the given cache so LintFiles can skip
// files whose content and configuration have not changed. The caller owns
// the store and closes it.
func WithCache(store *cache.Store) Option {
	return func(l *Linter) {
		l.cache = store
	}
}

// WithSourceLabel sets the filename attached to diagnostics when the caller
// does not provide one, as with LintToJSON. The default is WebSourceLabel.
func WithSourceLabel(label string) Option {
	return func(l *Linter) {
		if label != "" {
			l.label = label
		}
	}
}

// New creates a Linter. Without options it lints with the default global
// groups, no rules, and no logging.
func New(opts ...Option) *Linter {
	l := &Linter{
		cfg:   config.Default(),
		log:   zap.NewNop().Sugar(),
		label: WebSourceLabel,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LintInto lints src and streams diagnostics to reporter under the given
// label. The reporter's source is bound before any diagnostic is reported;
// the caller remains responsible for calling Finish. An empty label uses the
// Linter's default.
func (l *Linter) LintInto(ctx context.Context, src []byte, label string, reporter diagnostic.Reporter) error {
	if label == "" {
		label = l.label
	}
	buf := source.NewPaddedBuffer(src)
	reporter.SetSource(buf, label)
	return l.lint(ctx, buf, label, reporter)
}

// lint runs the parse, analysis, and rule stages over an already-bound
// reporter.
func (l *Linter) lint(ctx context.Context, buf *source.PaddedBuffer, label string, reporter diagnostic.Reporter) error {
	l.log.Debugw("lint", "file", label, "bytes", buf.Len())

	parser := parse.New(buf, reporter)
	if err := parser.ParseAndVisitModule(ctx, lint.New(reporter, l.cfg)); err != nil {
		return fmt.Errorf("quicklintjs: parse %s: %w", label, err)
	}

	if l.rules != nil {
		if err := l.rules.Run(ctx, buf, label, reporter); err != nil {
			// A broken rule script must not hide the built-in findings,
			// so it becomes a diagnostic instead of a hard failure.
			l.log.Warnw("lint rules failed", "file", label, "error", err)
			reporter.Report(diagnostic.Diagnostic{
				Code:     codeRuleFailure,
				Severity: codeRuleFailure.Severity(),
				Message:  fmt.Sprintf("lint rule failed: %v", err),
				Span:     source.NewSpan(0, 0),
			})
		}
	}
	return nil
}

// LintToJSON lints src and returns the complete quickfix-list JSON document.
// The document is always a single object with a "qflist" array, empty when
// the source is clean.
func (l *Linter) LintToJSON(ctx context.Context, src []byte) ([]byte, error) {
	var out bytes.Buffer
	reporter := diagnostic.NewQflistJSONReporter(&out)
	if err := l.LintInto(ctx, src, l.label, reporter); err != nil {
		return nil, err
	}
	if err := reporter.Finish(); err != nil {
		return nil, fmt.Errorf("quicklintjs: %w", err)
	}
	return out.Bytes(), nil
}

// LintToJSONTerminated is LintToJSON plus exactly one trailing NUL byte, for
// embedding hosts that hand the buffer to C-style string consumers. The
// report itself never contains a NUL, so the terminator is unambiguous.
func (l *Linter) LintToJSONTerminated(ctx context.Context, src []byte) ([]byte, error) {
	report, err := l.LintToJSON(ctx, src)
	if err != nil {
		return nil, err
	}
	return append(report, 0), nil
}

// LintToDiagnostics lints src and returns structured findings with resolved
// positions, in report order.
func (l *Linter) LintToDiagnostics(ctx context.Context, src []byte) ([]diagnostic.Located, error) {
	reporter := diagnostic.NewListReporter()
	if err := l.LintInto(ctx, src, l.label, reporter); err != nil {
		return nil, err
	}
	if err := reporter.Finish(); err != nil {
		return nil, fmt.Errorf("quicklintjs: %w", err)
	}
	return reporter.Diagnostics(), nil
}
