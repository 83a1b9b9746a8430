package pluginhost

import (
	"context"
	"fmt"
	"time"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/dockerdriver"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/hostctx"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/log"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/migration"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/registry"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/sandbox"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/sandboxcfg"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/toolpolicy"
)

// Plugin is the wired-up sandbox core, exposing every operation the
// extension namespace "sandbox" registers (§6). One Plugin is built at
// host init and lives for the process's lifetime.
type Plugin struct {
	orchestrator *sandbox.Orchestrator
	registry     *registry.Registry
	closeRepo    func() error
}

// InitOptions configures Init. Logger and GetMainConfig are required;
// Repository is optional — when nil, Init opens the default sqlite-backed
// repository under the state directory.
type InitOptions struct {
	Logger        hostctx.Logger
	Repository    registry.Repository
	GetMainConfig func() any
}

// Init wires the process-wide hostctx handles, opens the default registry
// repository if the host didn't supply one, migrates the legacy JSON
// registry if present, and returns a ready-to-use Plugin. Errors from
// migration propagate and abort plugin init, per §7.
func Init(opts InitOptions) (*Plugin, error) {
	repo := opts.Repository
	var closeRepo func() error
	if repo == nil {
		sqlitePath := DefaultSQLitePath()
		sqliteRepo, err := registry.OpenSQLiteRepository(sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("pluginhost: opening default registry at %q: %w", sqlitePath, err)
		}
		repo = sqliteRepo
		closeRepo = sqliteRepo.Close
	}

	hostctx.Init(hostctx.Host{
		Logger:        opts.Logger,
		Repository:    repo,
		GetMainConfig: opts.GetMainConfig,
	})

	reg := registry.New(repo)

	if _, err := migration.MigrateLegacyRegistry(LegacyRegistryPath(), reg); err != nil {
		return nil, fmt.Errorf("pluginhost: migrating legacy registry: %w", err)
	}

	return &Plugin{
		orchestrator: sandbox.NewOrchestrator(reg),
		registry:     reg,
		closeRepo:    closeRepo,
	}, nil
}

// effectiveGlobalPartial merges the host's `.sandbox` config partial with
// the on-disk operator defaults file, host config winning (it's the
// in-process merged view the host computed for this request; the on-disk
// file only backfills what the host didn't set).
func effectiveGlobalPartial() (sandboxcfg.GlobalPartial, error) {
	fromFile, err := sandboxcfg.LoadGlobalDefaultsFile(DefaultGlobalConfigPath())
	if err != nil {
		return sandboxcfg.GlobalPartial{}, err
	}
	fromHost := sandboxcfg.LoadGlobalPartial()
	merged := mergeGlobalPartials(fromFile, fromHost)
	if merged.WorkspaceRoot == nil {
		root := DefaultWorkspaceRoot()
		merged.WorkspaceRoot = &root
	}
	return merged, nil
}

// mergeGlobalPartials overlays override atop base: any non-nil/non-empty
// field on override wins, otherwise base's value is kept.
func mergeGlobalPartials(base, override sandboxcfg.GlobalPartial) sandboxcfg.GlobalPartial {
	out := base
	if override.Mode != nil {
		out.Mode = override.Mode
	}
	if override.Scope != nil {
		out.Scope = override.Scope
	}
	if override.PerSession != nil {
		out.PerSession = override.PerSession
	}
	if override.WorkspaceAccess != nil {
		out.WorkspaceAccess = override.WorkspaceAccess
	}
	if override.WorkspaceRoot != nil {
		out.WorkspaceRoot = override.WorkspaceRoot
	}
	if override.Tools.Allow != nil {
		out.Tools.Allow = override.Tools.Allow
	}
	if override.Tools.Deny != nil {
		out.Tools.Deny = override.Tools.Deny
	}
	if override.Prune.IdleHours != nil {
		out.Prune.IdleHours = override.Prune.IdleHours
	}
	if override.Prune.MaxAgeDays != nil {
		out.Prune.MaxAgeDays = override.Prune.MaxAgeDays
	}
	out.Docker = mergeDockerPartials(base.Docker, override.Docker)
	return out
}

func mergeDockerPartials(base, override sandboxcfg.DockerConfigPartial) sandboxcfg.DockerConfigPartial {
	out := base
	if override.Image != nil {
		out.Image = override.Image
	}
	if override.ContainerPrefix != nil {
		out.ContainerPrefix = override.ContainerPrefix
	}
	if override.Workdir != nil {
		out.Workdir = override.Workdir
	}
	if override.ReadOnlyRoot != nil {
		out.ReadOnlyRoot = override.ReadOnlyRoot
	}
	if override.Tmpfs != nil {
		out.Tmpfs = override.Tmpfs
	}
	if override.Network != nil {
		out.Network = override.Network
	}
	if override.User != nil {
		out.User = override.User
	}
	if override.CapDrop != nil {
		out.CapDrop = override.CapDrop
	}
	if override.Env != nil {
		out.Env = override.Env
	}
	if override.SetupCommand != nil {
		out.SetupCommand = override.SetupCommand
	}
	if override.PidsLimit != nil {
		out.PidsLimit = override.PidsLimit
	}
	if override.Memory != nil {
		out.Memory = override.Memory
	}
	if override.MemorySwap != nil {
		out.MemorySwap = override.MemorySwap
	}
	if override.CPUs != nil {
		out.CPUs = override.CPUs
	}
	if override.Ulimits != nil {
		out.Ulimits = override.Ulimits
	}
	if override.SeccompProfile != nil {
		out.SeccompProfile = override.SeccompProfile
	}
	if override.ApparmorProfile != nil {
		out.ApparmorProfile = override.ApparmorProfile
	}
	if override.DNS != nil {
		out.DNS = override.DNS
	}
	if override.ExtraHosts != nil {
		out.ExtraHosts = override.ExtraHosts
	}
	if override.Binds != nil {
		out.Binds = override.Binds
	}
	if override.Labels != nil {
		out.Labels = override.Labels
	}
	return out
}

// SessionOptions is the caller-supplied, per-session input shared by most
// extension operations: a session name, its trust level, and its own
// `sandbox` config partial (§6).
type SessionOptions struct {
	SessionName string
	TrustLevel  sandboxcfg.TrustLevel
	Session     sandboxcfg.SessionPartial
}

// ResolveSandboxContext is the "resolveSandboxContext" extension
// operation (§4.L, §6).
func (p *Plugin) ResolveSandboxContext(ctx context.Context, opts SessionOptions) (*sandbox.Context, error) {
	global, err := effectiveGlobalPartial()
	if err != nil {
		return nil, err
	}
	return p.orchestrator.ResolveSandboxContext(ctx, sandbox.ResolveContextOptions{
		SessionName: opts.SessionName,
		TrustLevel:  opts.TrustLevel,
		Global:      global,
		Session:     opts.Session,
	})
}

// GetSandboxWorkspaceInfo is the "getSandboxWorkspaceInfo" extension
// operation (§4.L, §6).
func (p *Plugin) GetSandboxWorkspaceInfo(opts SessionOptions) (sandbox.WorkspaceInfo, error) {
	global, err := effectiveGlobalPartial()
	if err != nil {
		return sandbox.WorkspaceInfo{}, err
	}
	return sandbox.GetSandboxWorkspaceInfo(sandbox.ResolveContextOptions{
		SessionName: opts.SessionName,
		TrustLevel:  opts.TrustLevel,
		Global:      global,
		Session:     opts.Session,
	}), nil
}

// ShouldSandbox is the "shouldSandbox" extension operation (§4.E, §6).
func (p *Plugin) ShouldSandbox(opts SessionOptions) (bool, error) {
	info, err := p.GetSandboxWorkspaceInfo(opts)
	if err != nil {
		return false, err
	}
	return info.Enabled, nil
}

// ResolveSandboxConfig is the "resolveSandboxConfig" extension operation
// (§4.E, §6).
func (p *Plugin) ResolveSandboxConfig(opts SessionOptions) (sandboxcfg.Config, error) {
	global, err := effectiveGlobalPartial()
	if err != nil {
		return sandboxcfg.Config{}, err
	}
	return sandboxcfg.ResolveSandboxConfig(sandboxcfg.ResolveOptions{
		SessionName: opts.SessionName,
		TrustLevel:  opts.TrustLevel,
		Global:      global,
		Session:     opts.Session,
	}), nil
}

// ExecDocker is the "execDocker" extension operation: a direct passthrough
// to the Docker driver for host-side diagnostics (§4.J, §6).
func (p *Plugin) ExecDocker(ctx context.Context, args []string, opts dockerdriver.ExecOptions) (dockerdriver.ExecResult, error) {
	return dockerdriver.ExecDocker(ctx, args, opts)
}

// ExecInContainer is the "execInContainer" extension operation (§4.J, §6).
func (p *Plugin) ExecInContainer(name, command string, opts dockerdriver.ExecInContainerOptions) (dockerdriver.ExecResult, error) {
	return dockerdriver.ExecInContainer(name, command, opts)
}

// ExecInContainerRaw is the "execInContainerRaw" extension operation
// (§4.J, §6).
func (p *Plugin) ExecInContainerRaw(name string, argv []string, opts dockerdriver.ExecInContainerOptions) (dockerdriver.ExecResult, error) {
	return dockerdriver.ExecInContainerRaw(name, argv, opts)
}

// IsToolAllowed is the "isToolAllowed" extension operation (§4.G, §6).
func IsToolAllowed(policy sandboxcfg.ToolPolicy, name string) bool {
	return toolpolicy.IsToolAllowed(toolpolicy.Policy{Allow: policy.Allow, Deny: policy.Deny}, name)
}

// FilterToolsByPolicy is the "filterToolsByPolicy" extension operation
// (§4.G, §6).
func FilterToolsByPolicy(tools []string, policy sandboxcfg.ToolPolicy) toolpolicy.FilterResult {
	return toolpolicy.FilterToolsByPolicy(tools, toolpolicy.Policy{Allow: policy.Allow, Deny: policy.Deny})
}

// Registry returns the wired-up registry, for callers (e.g. the
// administration CLI's "migrate" command) that need to drive it directly.
func (p *Plugin) Registry() *registry.Registry {
	return p.registry
}

// ListRegistry returns every registry record, for operator inspection.
func (p *Plugin) ListRegistry() ([]registry.Record, error) {
	return p.registry.ListAll()
}

// PruneNow runs a single threshold-based prune pass immediately,
// bypassing the 5-minute debounce of Pruner.MaybePrune. Used
// by the administration CLI's "prune" command without --all.
func (p *Plugin) PruneNow(ctx context.Context, cfg sandboxcfg.PruneConfig) error {
	return p.orchestrator.Pruner.Prune(ctx, time.Now(), cfg)
}

// PruneAllSandboxes is the "pruneAllSandboxes" extension operation: a
// no-threshold teardown across every known registry record (§4.I, §6).
func (p *Plugin) PruneAllSandboxes(ctx context.Context) (int, error) {
	return p.orchestrator.Pruner.PruneAll(ctx)
}

// Shutdown best-effort purges every sandbox container and closes the
// default repository if this Plugin opened one. It is idempotent: calling
// it more than once, or on a Plugin whose repository is host-owned, is
// safe (§6, §7).
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	if _, err := p.orchestrator.Pruner.PruneAll(ctx); err != nil {
		log.Warn("pluginhost: shutdown prune failed", "error", err)
	}
	if p.closeRepo != nil {
		closeRepo := p.closeRepo
		p.closeRepo = nil
		return closeRepo()
	}
	return nil
}
