package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/pluginhost"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the plugin manifest version",
	// PersistentPreRunE on the root command wires the sandbox plugin before
	// every subcommand runs; version doesn't need it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", pluginhost.Name, pluginhost.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
