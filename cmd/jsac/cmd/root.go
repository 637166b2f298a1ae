package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// configPath is the --config flag shared by every subcommand that consults
// Configuration (analyze's --watch reload, in particular).
var configPath string

var rootCmd = &cobra.Command{
	Use:   "jsac",
	Short: "Static analysis engine for ECMAScript 5.1 source",
	Long: `jsac interprets ECMAScript (ES5.1) source abstractly at compile time:
it tracks values, object identities, and control flow to the extent
statically knowable, tolerating branches whose runtime outcome can't be
determined ahead of time.

jsac itself does not parse JavaScript source; it consumes an ESTree-shaped
JSON AST (produced by any ES5-compatible parser) and reports what it could
and couldn't determine.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a .jsac.yaml configuration file")
}
