package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/dockerdriver"
)

var execWorkdir string
var execTimeoutSeconds int

var execCmd = &cobra.Command{
	Use:   "exec CONTAINER -- ARGV...",
	Short: "Run a command inside a sandbox container, bypassing any shell",
	Long: `Run ARGV directly inside CONTAINER via execInContainerRaw. Use "--"
before ARGV so flags meant for the sandboxed command aren't parsed by this
CLI.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runExec,
}

func init() {
	execCmd.Flags().StringVar(&execWorkdir, "workdir", "", "working directory inside the container")
	execCmd.Flags().IntVar(&execTimeoutSeconds, "timeout", 0, "timeout in seconds (0 means no timeout)")
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	name := args[0]
	argv := args[1:]

	result, err := dockerdriver.ExecInContainerRaw(name, argv, dockerdriver.ExecInContainerOptions{
		Workdir:        execWorkdir,
		TimeoutSeconds: execTimeoutSeconds,
	})
	if err != nil {
		return fmt.Errorf("exec in %q: %w", name, err)
	}

	fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
	fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
	if result.ExitCode != 0 {
		return fmt.Errorf("command exited with code %d", result.ExitCode)
	}
	return nil
}
