// Package sandboxcfg resolves the effective per-session sandbox
// configuration from the host's global defaults and a session's partial
// overrides. Partials are explicit optional-of-struct types, merged
// field-by-field rather than through reflection, per the teacher's own
// config.go: a plain struct filled in by explicit precedence rules, not a
// generic deep-merge helper.
package sandboxcfg

// Mode selects whether and when sessions get sandboxed.
type Mode string

const (
	ModeOff      Mode = "off"
	ModeNonMain  Mode = "non-main"
	ModeAll      Mode = "all"
)

// Scope selects whether a session gets its own container or shares one.
type Scope string

const (
	ScopeSession Scope = "session"
	ScopeShared  Scope = "shared"
)

// WorkspaceAccess selects how (or whether) the session's workspace
// directory is bind-mounted into the container.
type WorkspaceAccess string

const (
	WorkspaceAccessNone WorkspaceAccess = "none"
	WorkspaceAccessRO   WorkspaceAccess = "ro"
	WorkspaceAccessRW   WorkspaceAccess = "rw"
)

// TrustLevel is supplied per-session by the host and forces stricter
// defaults for untrusted callers (§4.E).
type TrustLevel string

const (
	TrustUntrusted    TrustLevel = "untrusted"
	TrustSemiTrusted  TrustLevel = "semi-trusted"
	TrustTrusted      TrustLevel = ""
)

// Ulimit is one entry of the ulimits mapping: either a single numeric
// value applied to both soft and hard limits, or a distinct soft/hard
// pair. Exactly one of Value or {Soft, Hard} is meaningful per entry;
// Soft/Hard may each be nil even when the other is set.
type Ulimit struct {
	Value *int64
	Soft  *int64
	Hard  *int64
}

// DockerConfig is the resolved, post-merge SandboxDockerConfig (§3).
type DockerConfig struct {
	Image           string
	ContainerPrefix string
	Workdir         string
	ReadOnlyRoot    bool
	Tmpfs           []string
	Network         string
	User            string // empty means unset
	CapDrop         []string
	Env             map[string]string
	SetupCommand    string // empty means unset
	PidsLimit       int64  // zero means unset
	Memory          string
	MemorySwap      string
	CPUs            float64 // zero or negative means unset
	Ulimits         map[string]Ulimit
	SeccompProfile  string
	ApparmorProfile string
	DNS             []string
	ExtraHosts      []string
	Binds           []string
	Labels          map[string]string
}

// DockerConfigPartial is a session or global override of DockerConfig;
// every field is optional. Slice/map fields use nil to mean "not
// supplied", distinct from an explicitly empty slice/map.
type DockerConfigPartial struct {
	Image           *string
	ContainerPrefix *string
	Workdir         *string
	ReadOnlyRoot    *bool
	Tmpfs           []string
	Network         *string
	User            *string
	CapDrop         []string
	Env             map[string]string
	SetupCommand    *string
	PidsLimit       *int64
	Memory          *string
	MemorySwap      *string
	CPUs            *float64
	Ulimits         map[string]Ulimit
	SeccompProfile  *string
	ApparmorProfile *string
	DNS             []string
	ExtraHosts      []string
	Binds           []string
	Labels          map[string]string
}

// ToolPolicy mirrors SandboxToolPolicy (§3): raw, uncompiled pattern lists.
type ToolPolicy struct {
	Allow []string
	Deny  []string
}

// ToolPolicyPartial is a session or global override of ToolPolicy. A nil
// slice means "not supplied"; an empty non-nil slice is an explicit
// override to "nothing".
type ToolPolicyPartial struct {
	Allow []string
	Deny  []string
}

// PruneConfig holds the idle/age thresholds the pruner evaluates against.
// A zero value for either field disables that criterion (§4.I).
type PruneConfig struct {
	IdleHours  int64
	MaxAgeDays int64
}

// PruneConfigPartial is a session or global override of PruneConfig.
type PruneConfigPartial struct {
	IdleHours  *int64
	MaxAgeDays *int64
}

// Config is the fully resolved SandboxConfig envelope (§3) passed into the
// lifecycle orchestrator.
type Config struct {
	Mode            Mode
	Scope           Scope
	WorkspaceAccess WorkspaceAccess
	WorkspaceRoot   string
	Docker          DockerConfig
	Tools           ToolPolicy
	Prune           PruneConfig
}

// GlobalPartial is the host-wide `.sandbox` partial read from the host's
// merged configuration (§6): an operator-facing default that every
// session's own partial can further override.
type GlobalPartial struct {
	Mode            *Mode
	Scope           *Scope
	PerSession      *bool
	WorkspaceAccess *WorkspaceAccess
	WorkspaceRoot   *string
	Docker          DockerConfigPartial
	Tools           ToolPolicyPartial
	Prune           PruneConfigPartial
}

// SessionPartial is a single session's own `sandbox` override, arriving
// alongside the session's name and trust level.
type SessionPartial struct {
	Scope      *Scope
	PerSession *bool
	Docker     DockerConfigPartial
	Tools      ToolPolicyPartial
	Prune      PruneConfigPartial
}

// ScopeOptions is the input to ResolveSandboxScope.
type ScopeOptions struct {
	Scope      *Scope
	PerSession *bool
}

// ResolveOptions is the input to ResolveSandboxConfig.
type ResolveOptions struct {
	SessionName string
	TrustLevel  TrustLevel
	Global      GlobalPartial
	Session     SessionPartial
}
