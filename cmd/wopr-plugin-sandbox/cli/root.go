// Package cli implements the wopr-plugin-sandbox administration CLI using
// Cobra, mirroring the structure of the teacher's cmd/moat/cli: a root
// command that wires global state once in PersistentPreRunE, with each
// subcommand in its own file registering itself via init().
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/log"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/pluginhost"
)

var (
	verbose bool
	jsonOut bool
)

// plugin is the process-wide wired-up plugin, built once in
// PersistentPreRunE and used by every subcommand.
var plugin *pluginhost.Plugin

var rootCmd = &cobra.Command{
	Use:   "wopr-plugin-sandbox",
	Short: "Operate the wopr Docker sandbox plugin outside the host process",
	Long: `wopr-plugin-sandbox drives the sandbox core directly, for operators
who need to inspect or manage sandbox containers and the registry without
going through the host plugin runtime.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := log.Init(log.Options{
			Verbose:       verbose,
			JSONFormat:    jsonOut,
			DebugDir:      pluginhost.DefaultLogDir(),
			RetentionDays: 14,
		}); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}

		p, err := pluginhost.Init(pluginhost.InitOptions{
			Logger:        packageLogger{},
			GetMainConfig: func() any { return nil },
		})
		if err != nil {
			return fmt.Errorf("initializing sandbox plugin: %w", err)
		}
		plugin = p
		return nil
	},
}

// packageLogger adapts internal/log's package-level functions to
// hostctx.Logger, since the CLI has no host runtime to supply one.
type packageLogger struct{}

func (packageLogger) Debug(msg string, args ...any) { log.Debug(msg, args...) }
func (packageLogger) Info(msg string, args ...any)  { log.Info(msg, args...) }
func (packageLogger) Warn(msg string, args ...any)  { log.Warn(msg, args...) }
func (packageLogger) Error(msg string, args ...any) { log.Error(msg, args...) }

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output machine-readable JSON")
}
