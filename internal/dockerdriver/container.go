package dockerdriver

import (
	"context"
	"fmt"
	"sort"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/guard"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/sandboxcfg"
)

// CreateContainerInput is the input to CreateContainer.
type CreateContainerInput struct {
	Name            string
	Cfg             sandboxcfg.DockerConfig
	ScopeKey        string
	WorkspaceDir    string
	WorkspaceAccess sandboxcfg.WorkspaceAccess
	Now             int64
	ConfigHash      string
	Labels          map[string]string
}

// CreateContainer ensures the image exists, builds the create-argument
// vector, creates and starts the container, then runs the setup command
// (if any) inside it.
func CreateContainer(ctx context.Context, in CreateContainerInput) error {
	if err := EnsureDockerImage(ctx, in.Cfg.Image); err != nil {
		return err
	}

	args := BuildSandboxCreateArgs(CreateArgsInput{
		Name:       in.Name,
		Cfg:        in.Cfg,
		ScopeKey:   in.ScopeKey,
		Now:        in.Now,
		ConfigHash: in.ConfigHash,
		Labels:     in.Labels,
	})

	args = append(args, "--workdir", in.Cfg.Workdir)
	bind := in.WorkspaceDir + ":" + in.Cfg.Workdir
	if in.WorkspaceAccess == sandboxcfg.WorkspaceAccessRO {
		bind += ":ro"
	}
	args = append(args, "-v", bind)
	args = append(args, in.Cfg.Image, "sleep", "infinity")

	if _, err := ExecDocker(ctx, args, ExecOptions{}); err != nil {
		return fmt.Errorf("creating container %q: %w", in.Name, err)
	}
	if _, err := ExecDocker(ctx, []string{"start", in.Name}, ExecOptions{}); err != nil {
		return fmt.Errorf("starting container %q: %w", in.Name, err)
	}

	setup := in.Cfg.SetupCommand
	if setup == "" {
		return nil
	}
	cmd, err := guard.ValidateCommand(setup)
	if err != nil {
		return fmt.Errorf("setup command for %q: %w", in.Name, err)
	}
	if _, err := ExecDocker(ctx, []string{"exec", "-i", in.Name, "sh", "-c", "--", cmd}, ExecOptions{}); err != nil {
		return fmt.Errorf("running setup command in %q: %w", in.Name, err)
	}
	return nil
}

// ExecInContainerOptions controls ExecInContainer/ExecInContainerRaw.
type ExecInContainerOptions struct {
	Workdir        string
	Env            map[string]string
	TimeoutSeconds int
}

// ExecInContainer validates command, then runs it via "sh -c --" inside
// name. Env values are not validated here — only keys are validated, and
// only on the raw path; this entry point accepts any keys.
func ExecInContainer(name, command string, opts ExecInContainerOptions) (ExecResult, error) {
	cmd, err := guard.ValidateCommand(command)
	if err != nil {
		return ExecResult{}, err
	}

	args := []string{"exec", "-i"}
	if opts.Workdir != "" {
		args = append(args, "-w", opts.Workdir)
	}
	for _, k := range sortedEnvKeys(opts.Env) {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, opts.Env[k]))
	}
	args = append(args, name, "sh", "-c", "--", cmd)

	return execDockerWithTimeout(args, opts.TimeoutSeconds, ExecOptions{AllowFailure: true})
}

// ExecInContainerRaw runs argv directly inside name, bypassing any shell.
// Every env key is validated; argv must be non-empty.
func ExecInContainerRaw(name string, argv []string, opts ExecInContainerOptions) (ExecResult, error) {
	if len(argv) == 0 {
		return ExecResult{}, fmt.Errorf("execInContainerRaw: argv must not be empty")
	}
	for k := range opts.Env {
		if err := guard.ValidateEnvKey(k); err != nil {
			return ExecResult{}, err
		}
	}

	args := []string{"exec", "-i"}
	if opts.Workdir != "" {
		args = append(args, "-w", opts.Workdir)
	}
	for _, k := range sortedEnvKeys(opts.Env) {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, opts.Env[k]))
	}
	args = append(args, name)
	args = append(args, argv...)

	return execDockerWithTimeout(args, opts.TimeoutSeconds, ExecOptions{AllowFailure: true})
}

func sortedEnvKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
