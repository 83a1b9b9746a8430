package sandboxcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/hostctx"
)

// SandboxPartialHolder is implemented by a host's merged configuration
// value when it exposes a `.sandbox` partial directly (§6: "getMainConfig()
// returns an opaque object from which .sandbox ... is read if present").
// hostctx.Host.GetMainConfig returns `any` specifically so this package,
// not hostctx, owns the type assertion.
type SandboxPartialHolder interface {
	SandboxPartial() GlobalPartial
}

// LoadGlobalPartial reads the `.sandbox` partial out of the host's merged
// configuration. A host config that doesn't implement SandboxPartialHolder
// yields a zero GlobalPartial, matching ".sandbox read if present".
func LoadGlobalPartial() GlobalPartial {
	mainConfig := hostctx.Get().GetMainConfig()
	if holder, ok := mainConfig.(SandboxPartialHolder); ok {
		return holder.SandboxPartial()
	}
	return GlobalPartial{}
}

// yamlGlobalDefaults is the on-disk shape of the operator-facing global
// defaults file ($WOPR_HOME/sandbox/config.yaml), distinct from
// GlobalPartial's pointer-heavy in-memory form so the YAML file stays
// readable by hand.
type yamlGlobalDefaults struct {
	Mode            string            `yaml:"mode"`
	Scope           string            `yaml:"scope"`
	WorkspaceAccess string            `yaml:"workspaceAccess"`
	WorkspaceRoot   string            `yaml:"workspaceRoot"`
	Docker          yamlDockerConfig  `yaml:"docker"`
	Tools           yamlToolPolicy    `yaml:"tools"`
	Prune           yamlPruneConfig   `yaml:"prune"`
}

type yamlDockerConfig struct {
	Image           string            `yaml:"image"`
	ContainerPrefix string            `yaml:"containerPrefix"`
	Workdir         string            `yaml:"workdir"`
	Network         string            `yaml:"network"`
	User            string            `yaml:"user"`
	CapDrop         []string          `yaml:"capDrop"`
	Env             map[string]string `yaml:"env"`
	SetupCommand    string            `yaml:"setupCommand"`
	PidsLimit       int64             `yaml:"pidsLimit"`
	Memory          string            `yaml:"memory"`
	MemorySwap      string            `yaml:"memorySwap"`
	CPUs            float64           `yaml:"cpus"`
	Binds           []string          `yaml:"binds"`
}

type yamlToolPolicy struct {
	Allow []string `yaml:"allow"`
	Deny  []string `yaml:"deny"`
}

type yamlPruneConfig struct {
	IdleHours  int64 `yaml:"idleHours"`
	MaxAgeDays int64 `yaml:"maxAgeDays"`
}

// LoadGlobalDefaultsFile reads an operator-dropped global defaults file,
// returning a zero GlobalPartial if it doesn't exist. Any other read or
// parse error is returned to the caller.
func LoadGlobalDefaultsFile(path string) (GlobalPartial, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return GlobalPartial{}, nil
	}
	if err != nil {
		return GlobalPartial{}, fmt.Errorf("reading global sandbox defaults %q: %w", path, err)
	}

	var doc yamlGlobalDefaults
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return GlobalPartial{}, fmt.Errorf("parsing global sandbox defaults %q: %w", path, err)
	}

	return yamlToGlobalPartial(doc), nil
}

func yamlToGlobalPartial(doc yamlGlobalDefaults) GlobalPartial {
	g := GlobalPartial{}
	if doc.Mode != "" {
		m := Mode(doc.Mode)
		g.Mode = &m
	}
	if doc.Scope != "" {
		s := Scope(doc.Scope)
		g.Scope = &s
	}
	if doc.WorkspaceAccess != "" {
		wa := WorkspaceAccess(doc.WorkspaceAccess)
		g.WorkspaceAccess = &wa
	}
	if doc.WorkspaceRoot != "" {
		g.WorkspaceRoot = &doc.WorkspaceRoot
	}

	g.Docker = DockerConfigPartial{
		Image:           nonEmptyPtr(doc.Docker.Image),
		ContainerPrefix: nonEmptyPtr(doc.Docker.ContainerPrefix),
		Workdir:         nonEmptyPtr(doc.Docker.Workdir),
		Network:         nonEmptyPtr(doc.Docker.Network),
		User:            nonEmptyPtr(doc.Docker.User),
		CapDrop:         doc.Docker.CapDrop,
		Env:             doc.Docker.Env,
		SetupCommand:    nonEmptyPtr(doc.Docker.SetupCommand),
		Memory:          nonEmptyPtr(doc.Docker.Memory),
		MemorySwap:      nonEmptyPtr(doc.Docker.MemorySwap),
		Binds:           doc.Docker.Binds,
	}
	if doc.Docker.PidsLimit != 0 {
		g.Docker.PidsLimit = &doc.Docker.PidsLimit
	}
	if doc.Docker.CPUs != 0 {
		g.Docker.CPUs = &doc.Docker.CPUs
	}

	g.Tools = ToolPolicyPartial{Allow: doc.Tools.Allow, Deny: doc.Tools.Deny}

	if doc.Prune.IdleHours != 0 {
		g.Prune.IdleHours = &doc.Prune.IdleHours
	}
	if doc.Prune.MaxAgeDays != 0 {
		g.Prune.MaxAgeDays = &doc.Prune.MaxAgeDays
	}

	return g
}

func nonEmptyPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
