package dockerdriver

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/sandboxcfg"
)

// Labels set on every container this plugin creates (§6).
const (
	SandboxLabel    = "wopr.sandbox"
	SessionKeyLabel = "wopr.sessionKey"
	CreatedAtLabel  = "wopr.createdAtMs"
	ConfigHashLabel = "wopr.configHash"
)

// CreateArgsInput is the input to BuildSandboxCreateArgs.
type CreateArgsInput struct {
	Name        string
	Cfg         sandboxcfg.DockerConfig
	ScopeKey    string
	CreatedAtMs int64 // 0 means "use now"
	Now         int64
	Labels      map[string]string
	ConfigHash  string // empty means omit the label
}

// BuildSandboxCreateArgs assembles the argument vector for "docker create"
// from an effective Docker config, in the exact order specified by §4.J so
// that BuildSandboxCreateArgs is deterministic given the same input.
func BuildSandboxCreateArgs(in CreateArgsInput) []string {
	createdAt := in.CreatedAtMs
	if createdAt == 0 {
		createdAt = in.Now
	}

	args := []string{"create", "--name", in.Name}

	args = append(args,
		"--label", fmt.Sprintf("%s=1", SandboxLabel),
		"--label", fmt.Sprintf("%s=%s", SessionKeyLabel, in.ScopeKey),
		"--label", fmt.Sprintf("%s=%d", CreatedAtLabel, createdAt),
	)
	if in.ConfigHash != "" {
		args = append(args, "--label", fmt.Sprintf("%s=%s", ConfigHashLabel, in.ConfigHash))
	}
	for _, k := range sortedLabelKeys(in.Labels) {
		v := in.Labels[k]
		if k == "" || v == "" {
			continue
		}
		args = append(args, "--label", fmt.Sprintf("%s=%s", k, v))
	}

	cfg := in.Cfg

	if cfg.ReadOnlyRoot {
		args = append(args, "--read-only")
	}
	for _, t := range cfg.Tmpfs {
		args = append(args, "--tmpfs", t)
	}
	if cfg.Network != "" {
		args = append(args, "--network", cfg.Network)
	}
	if cfg.User != "" {
		args = append(args, "--user", cfg.User)
	}
	for _, c := range cfg.CapDrop {
		args = append(args, "--cap-drop", c)
	}

	args = append(args, "--security-opt", "no-new-privileges")
	if cfg.SeccompProfile != "" {
		args = append(args, "--security-opt", "seccomp="+cfg.SeccompProfile)
	}
	if cfg.ApparmorProfile != "" {
		args = append(args, "--security-opt", "apparmor="+cfg.ApparmorProfile)
	}

	for _, d := range cfg.DNS {
		if strings.TrimSpace(d) == "" {
			continue
		}
		args = append(args, "--dns", d)
	}
	for _, h := range cfg.ExtraHosts {
		if strings.TrimSpace(h) == "" {
			continue
		}
		args = append(args, "--add-host", h)
	}

	if cfg.PidsLimit > 0 {
		args = append(args, "--pids-limit", strconv.FormatInt(cfg.PidsLimit, 10))
	}
	if mem := strings.TrimSpace(cfg.Memory); mem != "" {
		args = append(args, "--memory", mem)
	}
	if mem := strings.TrimSpace(cfg.MemorySwap); mem != "" {
		args = append(args, "--memory-swap", mem)
	}
	if cfg.CPUs > 0 {
		args = append(args, "--cpus", formatFloat(cfg.CPUs))
	}

	for _, name := range sortedUlimitNames(cfg.Ulimits) {
		if strings.TrimSpace(name) == "" {
			continue
		}
		v, ok := formatUlimit(cfg.Ulimits[name])
		if !ok {
			continue
		}
		args = append(args, "--ulimit", name+"="+v)
	}

	for _, b := range cfg.Binds {
		args = append(args, "-v", b)
	}

	return args
}

// formatUlimit renders a single ulimit entry per §4.J: a bare numeric
// value renders as "value"; a soft/hard pair renders as "soft:hard"; with
// only one side set it renders that side bare, with no dangling colon.
// Both sides missing is skipped entirely. Negative values clamp to zero.
func formatUlimit(u sandboxcfg.Ulimit) (string, bool) {
	if u.Value != nil {
		return strconv.FormatInt(clampNonNegative(*u.Value), 10), true
	}
	if u.Soft == nil && u.Hard == nil {
		return "", false
	}
	if u.Soft == nil {
		return strconv.FormatInt(clampNonNegative(*u.Hard), 10), true
	}
	if u.Hard == nil {
		return strconv.FormatInt(clampNonNegative(*u.Soft), 10), true
	}
	soft := strconv.FormatInt(clampNonNegative(*u.Soft), 10)
	hard := strconv.FormatInt(clampNonNegative(*u.Hard), 10)
	return soft + ":" + hard, true
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// sortedUlimitNames gives buildSandboxCreateArgs a deterministic ulimit
// flag order despite Go's randomized map iteration.
func sortedUlimitNames(m map[string]sandboxcfg.Ulimit) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// sortedLabelKeys keeps custom-label flag ordering deterministic despite
// Go's randomized map iteration.
func sortedLabelKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
