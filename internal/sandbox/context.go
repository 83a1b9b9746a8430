package sandbox

import (
	"context"
	"fmt"
	"os"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/naming"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/sandboxcfg"
)

// Context is handed back to external collaborators for a sandboxed
// session (§3 SandboxContext): everything they need to run commands
// inside the session's container.
type Context struct {
	Enabled          bool
	SessionKey       string
	WorkspaceDir     string
	WorkspaceAccess  sandboxcfg.WorkspaceAccess
	ContainerName    string
	ContainerWorkdir string
	Docker           sandboxcfg.DockerConfig
	Tools            sandboxcfg.ToolPolicy
}

// ResolveContextOptions is the input to ResolveSandboxContext and
// GetSandboxWorkspaceInfo.
type ResolveContextOptions struct {
	SessionName string
	TrustLevel  sandboxcfg.TrustLevel
	Global      sandboxcfg.GlobalPartial
	Session     sandboxcfg.SessionPartial
}

// WorkspaceInfo is the decision + path derivation GetSandboxWorkspaceInfo
// returns, without touching Docker.
type WorkspaceInfo struct {
	Enabled         bool
	SessionKey      string
	WorkspaceDir    string
	WorkspaceAccess sandboxcfg.WorkspaceAccess
	Cfg             sandboxcfg.Config
}

// GetSandboxWorkspaceInfo resolves whether a session should be sandboxed
// and, if so, derives its scope key, config, and workspace directory,
// without creating the directory or touching Docker.
func GetSandboxWorkspaceInfo(opts ResolveContextOptions) WorkspaceInfo {
	cfg := sandboxcfg.ResolveSandboxConfig(sandboxcfg.ResolveOptions{
		SessionName: opts.SessionName,
		TrustLevel:  opts.TrustLevel,
		Global:      opts.Global,
		Session:     opts.Session,
	})

	if !sandboxcfg.ShouldSandbox(cfg.Mode, opts.SessionName) {
		return WorkspaceInfo{Enabled: false}
	}

	scopeKey := naming.ResolveSandboxScopeKey(string(cfg.Scope), opts.SessionName)

	var workspaceDir string
	if cfg.Scope == sandboxcfg.ScopeShared {
		workspaceDir = cfg.WorkspaceRoot
	} else {
		workspaceDir = naming.ResolveSandboxWorkspaceDir(cfg.WorkspaceRoot, scopeKey)
	}

	return WorkspaceInfo{
		Enabled:         true,
		SessionKey:      scopeKey,
		WorkspaceDir:    workspaceDir,
		WorkspaceAccess: cfg.WorkspaceAccess,
		Cfg:             cfg,
	}
}

// ResolveSandboxContext is the top-level entry point: decides whether to
// sandbox, resolves config, prepares the workspace directory, ensures the
// container, and returns the context callers use for in-container
// execution. Returns (nil, nil) when the session isn't sandboxed.
func (o *Orchestrator) ResolveSandboxContext(ctx context.Context, opts ResolveContextOptions) (*Context, error) {
	info := GetSandboxWorkspaceInfo(opts)
	if !info.Enabled {
		return nil, nil
	}

	o.Pruner.MaybePrune(ctx, nowFunc(), info.Cfg.Prune)

	if err := os.MkdirAll(info.WorkspaceDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sandbox workspace directory %q: %w", info.WorkspaceDir, err)
	}

	containerName, err := o.EnsureSandboxContainer(ctx, EnsureContainerInput{
		SessionKey:   info.SessionKey,
		WorkspaceDir: info.WorkspaceDir,
		Cfg:          info.Cfg,
	})
	if err != nil {
		return nil, err
	}

	return &Context{
		Enabled:          true,
		SessionKey:       info.SessionKey,
		WorkspaceDir:     info.WorkspaceDir,
		WorkspaceAccess:  info.WorkspaceAccess,
		ContainerName:    containerName,
		ContainerWorkdir: info.Cfg.Docker.Workdir,
		Docker:           info.Cfg.Docker,
		Tools:            info.Cfg.Tools,
	}, nil
}
