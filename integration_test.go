package quicklintjs

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-thanasios/quick-lint-js/internal/cache"
	"github.com/A-thanasios/quick-lint-js/internal/config"
	"github.com/A-thanasios/quick-lint-js/internal/diagnostic"
	"github.com/A-thanasios/quick-lint-js/internal/plugin"
)

// findModuleRoot walks up from cwd to find go.mod, returning the repo root.
func findModuleRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find module root")
		}
		dir = parent
	}
}

// bundledRulesDir returns the rules/ directory shipped with the repo.
func bundledRulesDir(t *testing.T) string {
	t.Helper()
	return filepath.Join(findModuleRoot(t), "rules")
}

type qfEntry struct {
	Col      int    `json:"col"`
	Lnum     int    `json:"lnum"`
	Type     string `json:"type"`
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

func runProject(t *testing.T, l *Linter, paths []string) (Summary, []qfEntry) {
	t.Helper()
	var out bytes.Buffer
	reporter := diagnostic.NewQflistJSONReporter(&out)
	summary, err := l.LintFiles(context.Background(), paths, reporter)
	require.NoError(t, err)
	require.NoError(t, reporter.Finish())

	var doc struct {
		Qflist []qfEntry `json:"qflist"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	return summary, doc.Qflist
}

// TestIntegration_FullPipeline drives a small project through the complete
// stack: config file -> bundled rules -> parallel lint -> combined quickfix
// document -> report cache.
func TestIntegration_FullPipeline(t *testing.T) {
	dir := t.TempDir()

	configPath := filepath.Join(dir, "quick-lint-js.config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{
		"globals": {
			"APP_CONFIG": true,
			"window": false
		}
	}`), 0644))

	appPath := filepath.Join(dir, "app.js")
	require.NoError(t, os.WriteFile(appPath, []byte(
		"const settings = APP_CONFIG.load();\nconsole.log(settings);\ndebugger;\n",
	), 0644))
	utilPath := filepath.Join(dir, "util.js")
	require.NoError(t, os.WriteFile(utilPath, []byte(
		"var temp = eval(\"1 + 1\");\nwindow.alert(temp);\n",
	), 0644))

	cfg, err := config.Load(configPath)
	require.NoError(t, err)

	store, err := cache.Open(filepath.Join(dir, "reports.db"))
	require.NoError(t, err)
	defer store.Close()

	l := New(
		WithConfig(cfg),
		WithRules(plugin.New(bundledRulesDir(t))),
		WithCache(store),
	)
	paths := []string{appPath, utilPath}

	summary, entries := runProject(t, l, paths)
	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 0, summary.FromCache)
	assert.Equal(t, 3, summary.Errors)
	assert.Equal(t, 1, summary.Warnings)

	// Per file: built-in findings first, then rule findings in script name
	// order. Files keep input order in the combined document.
	require.Len(t, entries, 4)
	assert.Equal(t, appPath, entries[0].Filename)
	assert.Equal(t, "unexpected console call", entries[0].Text)
	assert.Equal(t, "W", entries[0].Type)
	assert.Equal(t, appPath, entries[1].Filename)
	assert.Equal(t, "debugger statement in source", entries[1].Text)
	assert.Equal(t, utilPath, entries[2].Filename)
	assert.Equal(t, "use of undeclared variable: window", entries[2].Text)
	assert.Equal(t, utilPath, entries[3].Filename)
	assert.Equal(t, "eval is not allowed", entries[3].Text)

	// Second run is served from the cache and produces the same document.
	second, secondEntries := runProject(t, l, paths)
	assert.Equal(t, 2, second.FromCache)
	assert.Equal(t, summary.Errors, second.Errors)
	assert.Equal(t, summary.Warnings, second.Warnings)
	assert.Equal(t, entries, secondEntries)
}

// TestIntegration_CachePersistsAcrossProcesses reopens the cache database
// with a fresh Linter, as separate CLI invocations would.
func TestIntegration_CachePersistsAcrossProcesses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	require.NoError(t, os.WriteFile(path, []byte("mystery;\n"), 0644))
	dbPath := filepath.Join(dir, "reports.db")

	first, err := cache.Open(dbPath)
	require.NoError(t, err)
	summary, _ := runProject(t, New(WithCache(first)), []string{path})
	assert.Equal(t, 0, summary.FromCache)
	require.NoError(t, first.Close())

	second, err := cache.Open(dbPath)
	require.NoError(t, err)
	defer second.Close()
	summary, entries := runProject(t, New(WithCache(second)), []string{path})
	assert.Equal(t, 1, summary.FromCache)
	require.Len(t, entries, 1)
	assert.Equal(t, "use of undeclared variable: mystery", entries[0].Text)
}

// TestIntegration_ConfigChangesInvalidateCache relints when the
// configuration differs even though file content is unchanged.
func TestIntegration_ConfigChangesInvalidateCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	require.NoError(t, os.WriteFile(path, []byte("FEATURE_FLAGS;\n"), 0644))

	store, err := cache.Open(filepath.Join(dir, "reports.db"))
	require.NoError(t, err)
	defer store.Close()

	summary, entries := runProject(t, New(WithCache(store)), []string{path})
	assert.Equal(t, 0, summary.FromCache)
	require.Len(t, entries, 1)

	cfg, err := config.Parse([]byte(`{"globals": {"FEATURE_FLAGS": true}}`))
	require.NoError(t, err)
	summary, entries = runProject(t, New(WithCache(store), WithConfig(cfg)), []string{path})
	assert.Equal(t, 0, summary.FromCache)
	assert.Empty(t, entries)
}

// TestIntegration_BundledRulesAreWellFormed runs every shipped rule against
// a source that triggers none of them, so a rule with a broken query fails
// the test through the rule-failure diagnostic.
func TestIntegration_BundledRulesAreWellFormed(t *testing.T) {
	l := New(WithRules(plugin.New(bundledRulesDir(t))))
	diags, err := l.LintToDiagnostics(context.Background(), []byte("let clean = 1;\nclean;\n"))
	require.NoError(t, err)
	assert.Empty(t, diags)
}
