package quicklintjs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/A-thanasios/quick-lint-js/internal/cache"
	"github.com/A-thanasios/quick-lint-js/internal/diagnostic"
	"github.com/A-thanasios/quick-lint-js/internal/source"
)

// lintItem holds everything a parallel lint worker needs.
type lintItem struct {
	idx  int
	path string
	buf  *source.PaddedBuffer
	key  string

	// Diagnostics recovered from the cache; when set the worker pool skips
	// this file entirely.
	cached    []diagnostic.Located
	fromCache bool
}

// Summary aggregates a multi-file lint run.
type Summary struct {
	Files     int
	FromCache int
	Errors    int
	Warnings  int
}

// LintFiles lints the given files using a three-phase pipeline:
//
//	Phase A (serial):  Read files, check the report cache.
//	Phase B (parallel): Parse, analyze, and run rules via worker pool.
//	Phase C (serial):  Stream diagnostics to reporter in input order.
//
// All files share one reporter, so a quickfix reporter produces a single
// combined document. The caller remains responsible for calling Finish.
func (l *Linter) LintFiles(ctx context.Context, paths []string, reporter diagnostic.Reporter) (Summary, error) {
	var summary Summary

	// ---- Phase A: Serial file preparation ----
	lintKey := l.lintKey()
	items := make([]lintItem, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return summary, fmt.Errorf("quicklintjs: read %s: %w", path, err)
		}
		item := lintItem{idx: len(items), path: path, buf: source.NewPaddedBuffer(content)}
		if l.cache != nil {
			item.key = cache.Key(content)
			blob, ok, err := l.cache.Get(item.key, lintKey)
			if err != nil {
				l.log.Warnw("cache read failed", "file", path, "error", err)
			} else if ok {
				if diags, derr := decodeCachedReport(blob); derr == nil {
					item.cached = diags
					item.fromCache = true
				}
			}
		}
		items = append(items, item)
	}
	summary.Files = len(items)
	if len(items) == 0 {
		return summary, nil
	}

	// ---- Phase B: Parallel linting ----
	var pending []lintItem
	for _, item := range items {
		if !item.fromCache {
			pending = append(pending, item)
		}
	}

	type outcome struct {
		diags []diagnostic.Located
		err   error
	}
	outcomes := make([]outcome, len(items))

	if len(pending) > 0 {
		numWorkers := min(runtime.NumCPU(), len(pending))
		if numWorkers < 1 {
			numWorkers = 1
		}

		workCh := make(chan lintItem, len(pending))
		for _, item := range pending {
			workCh <- item
		}
		close(workCh)

		type result struct {
			idx int
			out outcome
		}
		resultCh := make(chan result, len(pending))

		var wg sync.WaitGroup
		for range numWorkers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				// Each item gets its own collecting reporter so workers
				// never contend on the shared output reporter.
				for item := range workCh {
					rep := diagnostic.NewListReporter()
					rep.SetSource(item.buf, item.path)
					err := l.lint(ctx, item.buf, item.path, rep)
					resultCh <- result{idx: item.idx, out: outcome{diags: rep.Diagnostics(), err: err}}
				}
			}()
		}

		go func() {
			wg.Wait()
			close(resultCh)
		}()

		for res := range resultCh {
			outcomes[res.idx] = res.out
		}
	}

	// ---- Phase C: Serial reporting in input order ----
	var errs []error
	for _, item := range items {
		diags := item.cached
		if !item.fromCache {
			out := outcomes[item.idx]
			if out.err != nil {
				errs = append(errs, out.err)
				continue
			}
			diags = out.diags
		}

		reporter.SetSource(item.buf, item.path)
		for _, d := range diags {
			reporter.Report(d.Diagnostic)
			switch d.Severity {
			case diagnostic.SeverityError:
				summary.Errors++
			case diagnostic.SeverityWarning:
				summary.Warnings++
			}
		}
		if item.fromCache {
			summary.FromCache++
			continue
		}
		if l.cache != nil {
			blob, err := encodeCachedReport(diags)
			if err == nil {
				err = l.cache.Put(item.key, lintKey, blob)
			}
			if err != nil {
				l.log.Warnw("cache write failed", "file", item.path, "error", err)
			}
		}
	}

	if len(errs) > 0 {
		return summary, fmt.Errorf("quicklintjs: linting had %d error(s): %w", len(errs), errs[0])
	}
	return summary, nil
}

// lintKey identifies everything besides file content that shapes a report:
// the configuration and the rule scripts.
func (l *Linter) lintKey() string {
	key := l.cfg.Hash()
	if l.rules != nil {
		key += "+" + l.rules.Hash()
	}
	return key
}

func encodeCachedReport(diags []diagnostic.Located) ([]byte, error) {
	return json.Marshal(diags)
}

func decodeCachedReport(blob []byte) ([]diagnostic.Located, error) {
	var diags []diagnostic.Located
	if err := json.Unmarshal(blob, &diags); err != nil {
		return nil, fmt.Errorf("decode cached report: %w", err)
	}
	return diags, nil
}
