package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/cwbudde/jsstatic/pkg/ast"
	"github.com/cwbudde/jsstatic/pkg/engine"
)

var (
	watchConfig bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <ast.json>",
	Short: "Run the engine over a JSON-encoded ESTree AST",
	Long: `analyze reads an ESTree-shaped JSON AST (as a real JS parser such as
acorn or esprima would emit) and abstractly interprets it, printing a
structured diagnostics report: errors and warnings reported in recovery
mode, and every file the run entered.

jsac does not parse JavaScript source itself — the engine's scope starts
at the AST; feed it a parser's AST output instead of raw source.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&watchConfig, "watch", false, "re-run when --config changes, for a long-running analysis session")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	astPath := args[0]

	cfg, err := loadConfiguration(configPath)
	if err != nil {
		return err
	}

	if err := analyzeOnce(astPath, cfg); err != nil {
		return err
	}

	if !watchConfig || configPath == "" {
		return nil
	}
	return watchAndRerun(astPath)
}

func analyzeOnce(astPath string, cfg *engine.Configuration) error {
	data, err := os.ReadFile(astPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", astPath, err)
	}
	node, err := ast.Decode(data)
	if err != nil {
		return fmt.Errorf("decoding AST %s: %w", astPath, err)
	}
	program, ok := node.(*ast.Program)
	if !ok {
		return fmt.Errorf("%s: top-level AST node must be a Program, got %T", astPath, node)
	}

	eng := engine.New(cfg)
	report, runErr := eng.Run(program, filepath.Base(astPath))
	printReport(report)
	if runErr != nil {
		return runErr
	}
	return nil
}

func printReport(report *engine.Report) {
	color := isatty.IsTerminal(os.Stdout.Fd())
	fmt.Println(colorize(color, "36", fmt.Sprintf("run %s", report.RunID)))
	fmt.Printf("  files entered: %d\n", len(report.EnteredFiles))
	for _, d := range report.Errors {
		fmt.Println(colorize(color, "31", "  error: "+d.String()))
	}
	for _, d := range report.Warnings {
		fmt.Println(colorize(color, "33", "  warning: "+d.String()))
	}
	if names := report.UndeclaredGlobals(); len(names) > 0 {
		fmt.Printf("  undeclared globals created: %v\n", names)
	}
}

// colorize wraps s in an ANSI SGR code when enabled is true (stdout is a
// real terminal, not a pipe or CI log); piped output stays plain so
// redirected reports aren't full of escape sequences.
func colorize(enabled bool, code, s string) string {
	if !enabled {
		return s
	}
	return fmt.Sprintf("\x1b[%sm%s\x1b[0m", code, s)
}

// watchAndRerun watches configPath for edits (e.g. to its blacklist) and
// re-analyzes astPath on every write, for a long-running analyze --watch
// session that shouldn't need restarting to pick up a config change.
func watchAndRerun(astPath string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting config watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("watching %s: %w", configPath, err)
	}

	fmt.Printf("watching %s for changes (ctrl-C to stop)...\n", configPath)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(configPath) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := loadConfiguration(configPath)
			if err != nil {
				fmt.Fprintln(os.Stderr, "reloading config:", err)
				continue
			}
			if err := analyzeOnce(astPath, cfg); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watcher error:", err)
		}
	}
}
