package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"go.uber.org/zap"

	quicklintjs "github.com/A-thanasios/quick-lint-js"
	"github.com/A-thanasios/quick-lint-js/internal/cache"
	"github.com/A-thanasios/quick-lint-js/internal/config"
	"github.com/A-thanasios/quick-lint-js/internal/diagnostic"
	"github.com/A-thanasios/quick-lint-js/internal/lsp"
	"github.com/A-thanasios/quick-lint-js/internal/plugin"
	"github.com/A-thanasios/quick-lint-js/rules"
)

var (
	flagConfig  string
	flagVerbose bool
)

// errorHandled is set when findings were already printed, so main() doesn't
// repeat them as an error line.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "quick-lint-js",
	Short:         "Find bugs in JavaScript programs",
	Long:          "quick-lint-js parses JavaScript with tree-sitter, checks variable usage against configurable global declarations, and reports findings as text or a vim quickfix JSON document.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to quick-lint-js.config.json (default: built-in global groups)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log progress to stderr")

	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(versionCmd)
}

// buildLogger returns a development logger when --verbose is set and a
// silent one otherwise.
func buildLogger() *zap.Logger {
	if !flagVerbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// buildLinterOptions assembles Linter options shared by lint and lsp.
func buildLinterOptions(log *zap.Logger) ([]quicklintjs.Option, func(), error) {
	opts := []quicklintjs.Option{quicklintjs.WithLogger(log)}
	cleanup := func() {}

	if flagConfig != "" {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return nil, cleanup, err
		}
		opts = append(opts, quicklintjs.WithConfig(cfg))
	}

	switch {
	case flagRulesDir != "":
		opts = append(opts, quicklintjs.WithRules(
			plugin.New(flagRulesDir, plugin.WithLogger(log))))
	case flagRules:
		opts = append(opts, quicklintjs.WithRules(
			plugin.New("", plugin.WithFS(rules.FS), plugin.WithLogger(log))))
	}

	if flagCacheDB != "" {
		store, err := cache.Open(flagCacheDB)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { store.Close() }
		opts = append(opts, quicklintjs.WithCache(store))
	}

	return opts, cleanup, nil
}

var (
	flagOutputFormat string
	flagRules        bool
	flagRulesDir     string
	flagCacheDB      string
)

var lintCmd = &cobra.Command{
	Use:   "lint [files...]",
	Short: "Lint JavaScript files",
	Long:  "Lints each file and prints a combined report. The exit status is 1 when any error-severity finding is reported.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLint,
}

func init() {
	lintCmd.Flags().StringVar(&flagOutputFormat, "output-format", "text", "output format: text|vim-qflist-json")
	lintCmd.Flags().BoolVar(&flagRules, "rules", false, "run the bundled lint rules")
	lintCmd.Flags().StringVar(&flagRulesDir, "rules-dir", "", "load lint rules from a disk path instead of the bundled set")
	lintCmd.Flags().StringVar(&flagCacheDB, "cache-db", "", "reuse reports for unchanged files via this SQLite database")
}

func buildReporter(format string) (diagnostic.Reporter, error) {
	switch format {
	case "text":
		return diagnostic.NewTextReporter(os.Stdout), nil
	case "vim-qflist-json":
		return diagnostic.NewQflistJSONReporter(os.Stdout), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text or vim-qflist-json)", format)
	}
}

func runLint(cmd *cobra.Command, args []string) error {
	start := time.Now()

	log := buildLogger()
	defer log.Sync()

	reporter, err := buildReporter(flagOutputFormat)
	if err != nil {
		return err
	}

	opts, cleanup, err := buildLinterOptions(log)
	if err != nil {
		return err
	}
	defer cleanup()

	linter := quicklintjs.New(opts...)
	summary, err := linter.LintFiles(context.Background(), args, reporter)
	if err != nil {
		return err
	}
	if err := reporter.Finish(); err != nil {
		return err
	}

	if flagVerbose {
		fmt.Fprintf(os.Stderr, "Checked %d file(s) in %s: %d error(s), %d warning(s), %d from cache\n",
			summary.Files,
			time.Since(start).Round(time.Millisecond),
			summary.Errors,
			summary.Warnings,
			summary.FromCache,
		)
	}

	if summary.Errors > 0 {
		// Findings are already on stdout; signal failure via exit status.
		errorHandled = true
		return fmt.Errorf("%d error(s)", summary.Errors)
	}
	return nil
}

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the language server over stdio",
	Long:  "Serves the Language Server Protocol on stdin/stdout, publishing diagnostics for every open document as it changes.",
	Args:  cobra.NoArgs,
	RunE:  runLSP,
}

func runLSP(cmd *cobra.Command, args []string) error {
	log := buildLogger()
	defer log.Sync()

	// The LSP transport logs through commonlog; route it to the simple
	// backend and keep it quiet unless --verbose is set.
	verbosity := 0
	if flagVerbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	opts, cleanup, err := buildLinterOptions(log)
	if err != nil {
		return err
	}
	defer cleanup()

	server := lsp.NewServer(quicklintjs.New(opts...), log)
	return server.RunStdio()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(quicklintjs.Version)
	},
}
