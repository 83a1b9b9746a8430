// Package dockerdriver drives the Docker CLI as a subprocess. The CLI's
// flag grammar and textual stderr output ("No such image", "<no value>")
// are part of this plugin's external contract, so this package shells out
// to "docker" directly rather than using a Go SDK client — grounded on
// other_examples' devsandbox DockerIsolator and addt DockerProvider, both
// of which build docker argument vectors by hand and run them with
// os/exec.
package dockerdriver

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/log"
)

// ExecResult is the outcome of running a docker subprocess.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExecOptions controls execDocker's failure handling.
type ExecOptions struct {
	// AllowFailure makes a non-zero exit code a normal result instead of an
	// error; process-level failures (docker not found, context deadline)
	// still surface as ExitCode 1 rather than an error in this mode.
	AllowFailure bool
}

// ExecDocker runs "docker <args...>", capturing stdout and stderr
// separately. With AllowFailure unset, a non-zero exit becomes an error
// whose message is the trimmed stderr (or a fallback if stderr is blank).
func ExecDocker(ctx context.Context, args []string, opts ExecOptions) (ExecResult, error) {
	cmd := exec.CommandContext(ctx, "docker", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}

	if err == nil {
		result.ExitCode = 0
		return result, nil
	}

	exitErr, isExitErr := err.(*exec.ExitError)
	if isExitErr {
		result.ExitCode = exitErr.ExitCode()
	} else {
		result.ExitCode = 1
	}

	if opts.AllowFailure {
		log.Debug("docker command failed, allowed", "args", args, "exitCode", result.ExitCode, "stderr", result.Stderr)
		return result, nil
	}

	msg := strings.TrimSpace(result.Stderr)
	if msg == "" {
		msg = fmt.Sprintf("docker %s failed with exit code %d", strings.Join(args, " "), result.ExitCode)
	}
	return result, fmt.Errorf("docker: %s", msg)
}

// execDockerWithTimeout applies a per-call timeout in seconds, 0 meaning
// no timeout, used by execInContainer/execInContainerRaw (§5).
func execDockerWithTimeout(args []string, timeoutSeconds int, opts ExecOptions) (ExecResult, error) {
	ctx := context.Background()
	if timeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
		defer cancel()
	}
	result, err := ExecDocker(ctx, args, opts)
	if ctx.Err() == context.DeadlineExceeded {
		result.ExitCode = 1
		return result, nil
	}
	return result, err
}
