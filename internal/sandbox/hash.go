package sandbox

import (
	"github.com/wopr-network/wopr-plugin-sandbox/internal/confighash"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/sandboxcfg"
)

// dockerConfigHashInput converts a resolved DockerConfig into the plain,
// canonicalizable map confighash.ComputeSandboxConfigHash expects, so that
// package never needs to depend on sandboxcfg's types.
func dockerConfigHashInput(cfg sandboxcfg.DockerConfig) map[string]confighash.Value {
	m := map[string]confighash.Value{
		"image":           cfg.Image,
		"containerPrefix": cfg.ContainerPrefix,
		"workdir":         cfg.Workdir,
		"readOnlyRoot":    cfg.ReadOnlyRoot,
		"tmpfs":           cfg.Tmpfs,
		"network":         cfg.Network,
		"capDrop":         cfg.CapDrop,
		"env":             cfg.Env,
	}
	if cfg.User != "" {
		m["user"] = cfg.User
	}
	if cfg.SetupCommand != "" {
		m["setupCommand"] = cfg.SetupCommand
	}
	if cfg.PidsLimit > 0 {
		m["pidsLimit"] = cfg.PidsLimit
	}
	if cfg.Memory != "" {
		m["memory"] = cfg.Memory
	}
	if cfg.MemorySwap != "" {
		m["memorySwap"] = cfg.MemorySwap
	}
	if cfg.CPUs > 0 {
		m["cpus"] = cfg.CPUs
	}
	if len(cfg.Ulimits) > 0 {
		m["ulimits"] = ulimitsHashValue(cfg.Ulimits)
	}
	if cfg.SeccompProfile != "" {
		m["seccompProfile"] = cfg.SeccompProfile
	}
	if cfg.ApparmorProfile != "" {
		m["apparmorProfile"] = cfg.ApparmorProfile
	}
	if len(cfg.DNS) > 0 {
		m["dns"] = cfg.DNS
	}
	if len(cfg.ExtraHosts) > 0 {
		m["extraHosts"] = cfg.ExtraHosts
	}
	if len(cfg.Binds) > 0 {
		m["binds"] = cfg.Binds
	}
	return m
}

func ulimitsHashValue(ulimits map[string]sandboxcfg.Ulimit) map[string]confighash.Value {
	out := make(map[string]confighash.Value, len(ulimits))
	for name, u := range ulimits {
		entry := map[string]confighash.Value{}
		if u.Value != nil {
			entry["value"] = float64(*u.Value)
		}
		if u.Soft != nil {
			entry["soft"] = float64(*u.Soft)
		}
		if u.Hard != nil {
			entry["hard"] = float64(*u.Hard)
		}
		out[name] = entry
	}
	return out
}

// ComputeConfigHash computes the drift-detection fingerprint for an
// effective config (§4.F).
func ComputeConfigHash(cfg sandboxcfg.Config, workspaceDir string) string {
	return confighash.ComputeSandboxConfigHash(dockerConfigHashInput(cfg.Docker), string(cfg.WorkspaceAccess), workspaceDir)
}
