package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/sandboxcfg"
)

var (
	pruneAll        bool
	pruneIdleHours  int64
	pruneMaxAgeDays int64
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove idle or aged sandbox containers",
	Long: `Remove sandbox containers past the idle/max-age threshold. With
--all, remove every known container regardless of threshold, the same
teardown the plugin runs on shutdown.`,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneAll, "all", false, "remove every sandbox container regardless of idle/age thresholds")
	pruneCmd.Flags().Int64Var(&pruneIdleHours, "idle-hours", sandboxcfg.DefaultIdleHours, "idle threshold in hours (0 disables)")
	pruneCmd.Flags().Int64Var(&pruneMaxAgeDays, "max-age-days", sandboxcfg.DefaultMaxAgeDays, "max-age threshold in days (0 disables)")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if pruneAll {
		n, err := plugin.PruneAllSandboxes(ctx)
		if err != nil {
			return fmt.Errorf("pruning all sandboxes: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d sandbox container(s)\n", n)
		return nil
	}

	if err := plugin.PruneNow(ctx, sandboxcfg.PruneConfig{IdleHours: pruneIdleHours, MaxAgeDays: pruneMaxAgeDays}); err != nil {
		return fmt.Errorf("pruning sandboxes: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "prune pass complete")
	return nil
}
