package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/migration"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/pluginhost"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Import the legacy JSON container registry",
	Long: `Import $WOPR_HOME/sandbox/containers.json into the persistent
registry, if it still exists. Plugin init, which this CLI runs before
every subcommand, performs the same import first, so this command
normally finds the file already renamed and reports 0 records.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	n, err := migration.MigrateLegacyRegistry(pluginhost.LegacyRegistryPath(), plugin.Registry())
	if err != nil {
		return fmt.Errorf("migrating legacy registry: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrated %d record(s)\n", n)
	return nil
}
