package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/jsstatic/internal/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the plugin event catalog",
	Long:  `Print every event kind a registered plugin observer may receive.`,
	Run: func(cmd *cobra.Command, args []string) {
		for _, kind := range []events.Kind{
			events.PropertyReferenced,
			events.PropertySet,
			events.PropertyDefined,
			events.PropertyDeleted,
			events.UndeclaredGlobalVariableCreated,
			events.ErrorReported,
			events.WarningReported,
			events.EnteredFile,
		} {
			fmt.Println(kind)
		}
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
