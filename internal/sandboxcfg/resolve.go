package sandboxcfg

// ResolveSandboxScope picks session scope unless overridden: an explicit
// Scope wins outright; otherwise PerSession true/false maps to
// session/shared; the default is session.
func ResolveSandboxScope(opts ScopeOptions) Scope {
	if opts.Scope != nil {
		return *opts.Scope
	}
	if opts.PerSession != nil {
		if *opts.PerSession {
			return ScopeSession
		}
		return ScopeShared
	}
	return ScopeSession
}

// ResolveSandboxDockerConfig merges global and session Docker partials
// over the hard-coded defaults, session winning over global winning over
// default for scalar fields, with explicit merge rules for env, ulimits,
// and binds (§4.E).
func ResolveSandboxDockerConfig(global, session DockerConfigPartial) DockerConfig {
	cfg := DockerConfig{
		Image:           DefaultSandboxImage,
		ContainerPrefix: DefaultContainerPrefix,
		Workdir:         DefaultWorkdir,
		ReadOnlyRoot:    DefaultReadOnlyRoot,
		Tmpfs:           DefaultTmpfsMounts,
		Network:         DefaultNetwork,
		CapDrop:         DefaultCapDrop,
		PidsLimit:       DefaultPidsLimit,
		Memory:          DefaultMemory,
		MemorySwap:      DefaultMemorySwap,
		CPUs:            DefaultCPUs,
	}

	cfg.Image = pickString(cfg.Image, global.Image, session.Image)
	cfg.ContainerPrefix = pickString(cfg.ContainerPrefix, global.ContainerPrefix, session.ContainerPrefix)
	cfg.Workdir = pickString(cfg.Workdir, global.Workdir, session.Workdir)
	cfg.ReadOnlyRoot = pickBool(cfg.ReadOnlyRoot, global.ReadOnlyRoot, session.ReadOnlyRoot)
	cfg.Tmpfs = pickSlice(cfg.Tmpfs, global.Tmpfs, session.Tmpfs)
	cfg.Network = pickString(cfg.Network, global.Network, session.Network)
	cfg.User = pickStringPtr(global.User, session.User)
	cfg.CapDrop = pickSlice(cfg.CapDrop, global.CapDrop, session.CapDrop)
	cfg.SetupCommand = pickStringPtr(global.SetupCommand, session.SetupCommand)
	cfg.PidsLimit = pickInt64(cfg.PidsLimit, global.PidsLimit, session.PidsLimit)
	cfg.Memory = pickString(cfg.Memory, global.Memory, session.Memory)
	cfg.MemorySwap = pickString(cfg.MemorySwap, global.MemorySwap, session.MemorySwap)
	cfg.CPUs = pickFloat64(cfg.CPUs, global.CPUs, session.CPUs)
	cfg.SeccompProfile = pickStringPtr(global.SeccompProfile, session.SeccompProfile)
	cfg.ApparmorProfile = pickStringPtr(global.ApparmorProfile, session.ApparmorProfile)
	cfg.DNS = pickSlice(nil, global.DNS, session.DNS)
	cfg.ExtraHosts = pickSlice(nil, global.ExtraHosts, session.ExtraHosts)
	cfg.Labels = mergeStringMaps(global.Labels, session.Labels)

	cfg.Env = resolveEnv(global.Env, session.Env)
	cfg.Ulimits = resolveUlimits(global.Ulimits, session.Ulimits)
	cfg.Binds = resolveBinds(global.Binds, session.Binds)

	return cfg
}

func resolveEnv(global, session map[string]string) map[string]string {
	base := global
	if base == nil {
		base = DefaultEnv
	}
	if session == nil {
		return cloneStringMap(base)
	}
	return mergeStringMaps(base, session)
}

func resolveUlimits(global, session map[string]Ulimit) map[string]Ulimit {
	if session == nil {
		return cloneUlimitMap(global)
	}
	out := cloneUlimitMap(global)
	for k, v := range session {
		out[k] = v
	}
	return out
}

func resolveBinds(global, session []string) []string {
	out := make([]string, 0, len(global)+len(session))
	out = append(out, global...)
	out = append(out, session...)
	if len(out) == 0 {
		return nil
	}
	return out
}

// ResolveSandboxPruneConfig merges session over global over the
// hard-coded defaults (24h idle, 7 days max age), field-wise.
func ResolveSandboxPruneConfig(global, session PruneConfigPartial) PruneConfig {
	cfg := PruneConfig{IdleHours: DefaultIdleHours, MaxAgeDays: DefaultMaxAgeDays}
	cfg.IdleHours = pickInt64(cfg.IdleHours, global.IdleHours, session.IdleHours)
	cfg.MaxAgeDays = pickInt64(cfg.MaxAgeDays, global.MaxAgeDays, session.MaxAgeDays)
	return cfg
}

// ShouldSandbox decides, from mode and session name, whether a session
// should be sandboxed at all.
func ShouldSandbox(mode Mode, sessionName string) bool {
	switch mode {
	case ModeOff:
		return false
	case ModeAll:
		return true
	case ModeNonMain:
		return sessionName != "main"
	default:
		return false
	}
}

// ResolveSandboxConfig produces the full effective Config for a session,
// applying trust-level overrides for mode and workspace access (§4.E).
func ResolveSandboxConfig(opts ResolveOptions) Config {
	mode := ModeOff
	if opts.Global.Mode != nil {
		mode = *opts.Global.Mode
	}
	switch opts.TrustLevel {
	case TrustUntrusted, TrustSemiTrusted:
		mode = ModeAll
	}

	scope := ResolveSandboxScope(ScopeOptions{
		Scope:      firstNonNilScope(opts.Session.Scope, opts.Global.Scope),
		PerSession: firstNonNilBool(opts.Session.PerSession, opts.Global.PerSession),
	})

	workspaceAccess := WorkspaceAccessNone
	switch opts.TrustLevel {
	case TrustUntrusted:
		workspaceAccess = WorkspaceAccessNone
	case TrustSemiTrusted:
		workspaceAccess = WorkspaceAccessRO
	default:
		if opts.Global.WorkspaceAccess != nil {
			workspaceAccess = *opts.Global.WorkspaceAccess
		}
	}

	workspaceRoot := ""
	if opts.Global.WorkspaceRoot != nil {
		workspaceRoot = *opts.Global.WorkspaceRoot
	}

	tools := resolveToolPolicy(opts.Global.Tools, opts.Session.Tools)

	return Config{
		Mode:            mode,
		Scope:           scope,
		WorkspaceAccess: workspaceAccess,
		WorkspaceRoot:   workspaceRoot,
		Docker:          ResolveSandboxDockerConfig(opts.Global.Docker, opts.Session.Docker),
		Tools:           tools,
		Prune:           ResolveSandboxPruneConfig(opts.Global.Prune, opts.Session.Prune),
	}
}

func resolveToolPolicy(global, session ToolPolicyPartial) ToolPolicy {
	allow := session.Allow
	if allow == nil {
		allow = global.Allow
	}
	if allow == nil {
		allow = DefaultAllowTools
	}
	deny := session.Deny
	if deny == nil {
		deny = global.Deny
	}
	if deny == nil {
		deny = DefaultDenyTools
	}
	return ToolPolicy{Allow: allow, Deny: deny}
}

func pickString(def string, global, session *string) string {
	if session != nil {
		return *session
	}
	if global != nil {
		return *global
	}
	return def
}

func pickStringPtr(global, session *string) string {
	if session != nil {
		return *session
	}
	if global != nil {
		return *global
	}
	return ""
}

func pickBool(def bool, global, session *bool) bool {
	if session != nil {
		return *session
	}
	if global != nil {
		return *global
	}
	return def
}

func pickInt64(def int64, global, session *int64) int64 {
	if session != nil {
		return *session
	}
	if global != nil {
		return *global
	}
	return def
}

func pickFloat64(def float64, global, session *float64) float64 {
	if session != nil {
		return *session
	}
	if global != nil {
		return *global
	}
	return def
}

func pickSlice(def, global, session []string) []string {
	if session != nil {
		return session
	}
	if global != nil {
		return global
	}
	return def
}

func firstNonNilScope(a, b *Scope) *Scope {
	if a != nil {
		return a
	}
	return b
}

func firstNonNilBool(a, b *bool) *bool {
	if a != nil {
		return a
	}
	return b
}

func cloneStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func mergeStringMaps(base, overlay map[string]string) map[string]string {
	out := cloneStringMap(base)
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

func cloneUlimitMap(m map[string]Ulimit) map[string]Ulimit {
	out := make(map[string]Ulimit, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
