package quicklintjs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/A-thanasios/quick-lint-js/internal/diagnostic"
	"github.com/A-thanasios/quick-lint-js/internal/plugin"
)

// benchJSSource is a realistic ~70-line JavaScript module with classes,
// closures, and a few problems for exercising the full lint pipeline.
const benchJSSource = `const RETRY_LIMIT = 3;
const BASE_DELAY_MS = 250;

class HttpClient {
  constructor(baseUrl) {
    this.baseUrl = baseUrl;
    this.pending = 0;
  }

  async get(path) {
    this.pending += 1;
    try {
      const response = await fetch(this.baseUrl + path);
      if (!response.ok) {
        throw new Error("request failed: " + response.status);
      }
      return await response.json();
    } finally {
      this.pending -= 1;
    }
  }
}

function backoff(attempt) {
  const jitter = Math.random() * 100;
  return BASE_DELAY_MS * Math.pow(2, attempt) + jitter;
}

async function fetchWithRetry(client, path) {
  let lastError = null;
  for (let attempt = 0; attempt < RETRY_LIMIT; attempt++) {
    try {
      return await client.get(path);
    } catch (err) {
      lastError = err;
      await sleep(backoff(attempt));
    }
  }
  throw lastError;
}

function sleep(ms) {
  return new Promise((resolve) => setTimeout(resolve, ms));
}

const registry = new Map();

function register(name, handler) {
  if (registry.has(name)) {
    console.warn("duplicate handler: " + name);
  }
  registry.set(name, handler);
}

register("users", (params) => {
  const client = new HttpClient(apiBase);
  return fetchWithRetry(client, "/users/" + params.id);
});

totalRequests = 0;

register("health", () => {
  totalRequests += 1;
  return { ok: true, count: totalRequests };
});
`

// BenchmarkLintToJSON measures the full pipeline on one in-memory module:
// parse, analyze, and serialize the quickfix document.
func BenchmarkLintToJSON(b *testing.B) {
	l := New()
	ctx := context.Background()
	src := []byte(benchJSSource)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := l.LintToJSON(ctx, src); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkLintToJSON_WithRules adds one query-based rule script on top of
// the built-in checks.
func BenchmarkLintToJSON_WithRules(b *testing.B) {
	dir := b.TempDir()
	rule := `
matches := query("(call_expression function: (member_expression object: (identifier) @obj)) @call")
for _, m := range matches {
    if node_text(m["obj"]) == "console" {
        report(m["call"], "W100", "console call")
    }
}
`
	if err := os.WriteFile(filepath.Join(dir, "no-console.risor"), []byte(rule), 0644); err != nil {
		b.Fatal(err)
	}

	l := New(WithRules(plugin.New(dir)))
	ctx := context.Background()
	src := []byte(benchJSSource)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := l.LintToJSON(ctx, src); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkLintFiles measures the worker-pool path over a small project of
// identical modules.
func BenchmarkLintFiles(b *testing.B) {
	dir := b.TempDir()
	var paths []string
	for i := 0; i < 16; i++ {
		path := filepath.Join(dir, fmt.Sprintf("mod%02d.js", i))
		if err := os.WriteFile(path, []byte(benchJSSource), 0644); err != nil {
			b.Fatal(err)
		}
		paths = append(paths, path)
	}

	l := New()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var out bytes.Buffer
		reporter := diagnostic.NewQflistJSONReporter(&out)
		if _, err := l.LintFiles(ctx, paths, reporter); err != nil {
			b.Fatal(err)
		}
		if err := reporter.Finish(); err != nil {
			b.Fatal(err)
		}
	}
}
