// Command jsac is the CLI driver for the static-analysis engine,
// responsible for loading configuration and feeding a parsed AST to
// pkg/engine.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/jsstatic/cmd/jsac/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
