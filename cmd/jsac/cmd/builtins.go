package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/jsstatic/pkg/engine"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "List every installed native function",
	Long:  `Print the qualified name, category, and description of every ES5.1 built-in the engine installs.`,
	Run: func(cmd *cobra.Command, args []string) {
		eng := engine.New(engine.DefaultConfiguration())
		fns := eng.Registry().AllFunctions()
		for _, fn := range fns {
			fmt.Printf("%-40s %-10s %s\n", fn.Name, fn.Category, fn.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
